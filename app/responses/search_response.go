package responses

import (
	"github.com/siniestros-lookup/app/models"
)

// SearchResponse response tra cứu một trang
type SearchResponse struct {
	models.SearchResult
	SessionID        string `json:"session_id"`         // ID session để gửi lại qua X-Session-ID
	ProcessingTimeMs int64  `json:"processing_time_ms"` // Thời gian xử lý (ms)
}

// RegionsResponse danh sách regiones
type RegionsResponse struct {
	Regions []models.Region `json:"regions"`
}

// ComunasResponse danh sách comunas của region
type ComunasResponse struct {
	Region  string   `json:"region"`
	Comunas []string `json:"comunas"`
}

// StreetsResponse gợi ý tên đường
type StreetsResponse struct {
	Region  string   `json:"region"`
	Comuna  string   `json:"comuna"`
	Query   string   `json:"q,omitempty"`
	Streets []string `json:"streets"`
}

// ErrorResponse response lỗi
type ErrorResponse struct {
	Error     string      `json:"error"`                // Mã lỗi
	Message   string      `json:"message"`              // Thông báo lỗi
	Details   interface{} `json:"details,omitempty"`    // Chi tiết lỗi
	Timestamp string      `json:"timestamp"`            // Thời gian xảy ra lỗi
	RequestID string      `json:"request_id,omitempty"` // ID của request
}

// SuccessResponse response thành công
type SuccessResponse struct {
	Success   bool        `json:"success"`        // Có thành công không
	Message   string      `json:"message"`        // Thông báo
	Data      interface{} `json:"data,omitempty"` // Dữ liệu
	Timestamp string      `json:"timestamp"`      // Thời gian
}

// HealthCheckResponse response kiểm tra sức khỏe
type HealthCheckResponse struct {
	Status    string            `json:"status"`    // Trạng thái sức khỏe
	Timestamp string            `json:"timestamp"` // Thời gian kiểm tra
	Uptime    string            `json:"uptime"`    // Thời gian hoạt động
	Version   string            `json:"version"`   // Phiên bản
	Services  map[string]string `json:"services"`  // Trạng thái các service
}
