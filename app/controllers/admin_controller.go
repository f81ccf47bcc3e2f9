package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/siniestros-lookup/app/requests"
	"github.com/siniestros-lookup/app/responses"
	"github.com/siniestros-lookup/app/services"
)

// AdminController controller xử lý các request admin
type AdminController struct {
	adminService *services.AdminService
	logger       *zap.Logger
}

// NewAdminController tạo mới AdminController
func NewAdminController(adminService *services.AdminService, logger *zap.Logger) *AdminController {
	return &AdminController{
		adminService: adminService,
		logger:       logger,
	}
}

func success(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, responses.SuccessResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// GetStats lấy thống kê hệ thống
func (ac *AdminController) GetStats(c *gin.Context) {
	stats, err := ac.adminService.GetSystemStats(c.Request.Context())
	if err != nil {
		ac.logger.Error("Lỗi lấy stats", zap.Error(err))
		errorJSON(c, http.StatusInternalServerError, "STATS_ERROR", "Lỗi lấy thống kê: "+err.Error())
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ClearCache xóa shared cache và sessions
func (ac *AdminController) ClearCache(c *gin.Context) {
	if err := ac.adminService.ClearCache(c.Request.Context()); err != nil {
		ac.logger.Error("Lỗi clear cache", zap.Error(err))
		errorJSON(c, http.StatusInternalServerError, "CACHE_ERROR", err.Error())
		return
	}
	success(c, "Cache đã được xóa", nil)
}

// InvalidateCache invalidate cache theo data version
func (ac *AdminController) InvalidateCache(c *gin.Context) {
	var req requests.InvalidateRequest
	if err := c.ShouldBind(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "INVALID_REQUEST", "Request không hợp lệ: "+err.Error())
		return
	}
	if err := ac.adminService.InvalidateDataVersion(c.Request.Context(), req.DataVersion); err != nil {
		ac.logger.Error("Lỗi invalidate cache", zap.Error(err))
		errorJSON(c, http.StatusInternalServerError, "CACHE_ERROR", err.Error())
		return
	}
	success(c, "Cache đã được invalidate", gin.H{"data_version": req.DataVersion})
}

// ReindexStreets rebuild index gợi ý tên đường
func (ac *AdminController) ReindexStreets(c *gin.Context) {
	var req requests.ReindexRequest
	if err := c.ShouldBind(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "INVALID_REQUEST", "Request không hợp lệ: "+err.Error())
		return
	}
	result, err := ac.adminService.ReindexStreets(c.Request.Context(), req.Region)
	if err != nil {
		ac.logger.Error("Lỗi reindex streets", zap.Error(err))
		abortWithError(c, err)
		return
	}
	success(c, "Reindex hoàn thành", result)
}
