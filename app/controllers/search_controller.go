package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/klauspost/compress/gzip"
	"go.uber.org/zap"

	"github.com/siniestros-lookup/app/config"
	"github.com/siniestros-lookup/app/models"
	"github.com/siniestros-lookup/app/requests"
	"github.com/siniestros-lookup/app/responses"
	"github.com/siniestros-lookup/app/services"
)

// SessionHeader header mang session id giữa các request
const SessionHeader = "X-Session-ID"

// Version phiên bản API
const Version = "1.0.0"

// SearchController controller xử lý tra cứu siniestros
type SearchController struct {
	searchService *services.SearchService
	logger        *zap.Logger
}

// NewSearchController tạo mới SearchController
func NewSearchController(searchService *services.SearchService, logger *zap.Logger) *SearchController {
	return &SearchController{
		searchService: searchService,
		logger:        logger,
	}
}

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), config.RequestTimeout())
}

// Search tra cứu một trang kết quả (GET query string hoặc POST JSON)
func (sc *SearchController) Search(c *gin.Context) {
	var req requests.SearchRequest
	if err := c.ShouldBind(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "INVALID_REQUEST", "Request không hợp lệ: "+err.Error())
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	startTime := time.Now()
	result, sessionID, err := sc.searchService.Search(ctx, c.GetHeader(SessionHeader), req.Query())
	c.Header(SessionHeader, sessionID)
	if err != nil {
		sc.logger.Warn("Search failed", zap.Error(err), zap.String("region", req.Region), zap.String("comuna", req.Comuna))
		abortWithError(c, err)
		return
	}

	if result.Status == models.StatusNeedsInput {
		errorJSON(c, http.StatusBadRequest, "INPUT_INCOMPLETE", result.Message)
		return
	}

	c.JSON(http.StatusOK, responses.SearchResponse{
		SearchResult:     *result,
		SessionID:        sessionID,
		ProcessingTimeMs: time.Since(startTime).Milliseconds(),
	})
}

// Export trả về toàn bộ rows, NDJSON (mặc định) với hỗ trợ gzip
func (sc *SearchController) Export(c *gin.Context) {
	var req requests.ExportRequest
	if err := c.ShouldBind(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "INVALID_REQUEST", "Request không hợp lệ: "+err.Error())
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	res, err := sc.searchService.Export(ctx, c.GetHeader(SessionHeader), req.Query())
	if err != nil {
		abortWithError(c, err)
		return
	}
	if res.Status == models.StatusNeedsInput {
		errorJSON(c, http.StatusBadRequest, "INPUT_INCOMPLETE", res.Message)
		return
	}

	c.Header("X-Total-Count", strconv.Itoa(len(res.Rows)))
	c.Header("X-Search-Status", string(res.Status))
	if req.Format == "json" {
		c.JSON(http.StatusOK, res.Rows)
		return
	}
	sc.streamNDJSON(c, res.Rows, req.GzipEnabled())
}

// streamNDJSON stream rows theo format NDJSON với hỗ trợ gzip
func (sc *SearchController) streamNDJSON(c *gin.Context, rows []models.AccidentRecord, gzipEnabled bool) {
	c.Header("Content-Type", "application/x-ndjson")
	if gzipEnabled {
		c.Header("Content-Encoding", "gzip")
	}
	c.Status(http.StatusOK)

	var writer gin.ResponseWriter = c.Writer
	if gzipEnabled {
		gzWriter := gzip.NewWriter(c.Writer)
		defer gzWriter.Close()
		writer = &gzipResponseWriter{
			ResponseWriter: c.Writer,
			gzWriter:       gzWriter,
		}
	}

	encoder := json.NewEncoder(writer)
	for i, row := range rows {
		if err := encoder.Encode(row); err != nil {
			sc.logger.Error("Lỗi encode NDJSON", zap.Error(err))
			return
		}
		if i%500 == 499 {
			writer.Flush()
		}
	}
	writer.Flush()
}

// gzipResponseWriter wrapper cho gzip writer
type gzipResponseWriter struct {
	gin.ResponseWriter
	gzWriter *gzip.Writer
}

func (w *gzipResponseWriter) Write(data []byte) (int, error) {
	return w.gzWriter.Write(data)
}

func (w *gzipResponseWriter) WriteString(s string) (int, error) {
	return w.gzWriter.Write([]byte(s))
}

func (w *gzipResponseWriter) Flush() {
	w.gzWriter.Flush()
	w.ResponseWriter.Flush()
}

// Regions danh sách regiones
func (sc *SearchController) Regions(c *gin.Context) {
	c.JSON(http.StatusOK, responses.RegionsResponse{Regions: sc.searchService.ListRegions()})
}

// Comunas danh sách comunas của region
func (sc *SearchController) Comunas(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	region := c.Param("region")
	comunas, sessionID, err := sc.searchService.ListComunas(ctx, c.GetHeader(SessionHeader), region)
	if sessionID != "" {
		c.Header(SessionHeader, sessionID)
	}
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, responses.ComunasResponse{Region: region, Comunas: comunas})
}

// Streets gợi ý tên đường trong comuna
func (sc *SearchController) Streets(c *gin.Context) {
	var req requests.StreetsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "INVALID_REQUEST", "Request không hợp lệ: "+err.Error())
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	region, comuna := c.Param("region"), c.Param("comuna")
	streets, sessionID, err := sc.searchService.SuggestStreets(ctx, c.GetHeader(SessionHeader), region, comuna, req.Q, req.Limit)
	if sessionID != "" {
		c.Header(SessionHeader, sessionID)
	}
	if err != nil {
		abortWithError(c, err)
		return
	}
	if streets == nil {
		streets = []string{}
	}
	c.JSON(http.StatusOK, responses.StreetsResponse{Region: region, Comuna: comuna, Query: req.Q, Streets: streets})
}

// HealthCheck kiểm tra sức khỏe service
func (sc *SearchController) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, responses.HealthCheckResponse{
		Status:    "healthy",
		Timestamp: time.Now().Format(time.RFC3339),
		Uptime:    sc.searchService.Uptime().Round(time.Second).String(),
		Version:   Version,
		Services: map[string]string{
			"search":   "healthy",
			"sessions": strconv.Itoa(sc.searchService.Sessions().Len()),
		},
	})
}
