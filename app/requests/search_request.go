package requests

import "github.com/siniestros-lookup/app/models"

// SearchRequest request tra cứu theo giao lộ (query string hoặc JSON body)
type SearchRequest struct {
	Region string `form:"region" json:"region"`                       // Slug hoặc tên region
	Comuna string `form:"comuna" json:"comuna"`                       // Tên comuna
	CalleA string `form:"calle_a" json:"calle_a"`                     // Đường thứ nhất
	CalleB string `form:"calle_b" json:"calle_b"`                     // Đường thứ hai (có thể trống)
	Page   int    `form:"page" json:"page" binding:"omitempty,min=0"` // Trang, bắt đầu từ 1
}

// Query chuyển request sang models.Query
func (r SearchRequest) Query() models.Query {
	return models.Query{
		Region:   r.Region,
		District: r.Comuna,
		StreetA:  r.CalleA,
		StreetB:  r.CalleB,
		Page:     r.Page,
	}
}

// ExportRequest request export toàn bộ kết quả
type ExportRequest struct {
	SearchRequest
	Format string `form:"format" json:"format" binding:"omitempty,oneof=ndjson json"`
	Gzip   string `form:"gzip" json:"gzip"`
}

// GzipEnabled gzip=1 hoặc gzip=true
func (r ExportRequest) GzipEnabled() bool {
	return r.Gzip == "1" || r.Gzip == "true"
}

// StreetsRequest request gợi ý tên đường
type StreetsRequest struct {
	Q     string `form:"q"`
	Limit int    `form:"limit" binding:"omitempty,min=0,max=100"`
}

// InvalidateRequest request invalidate cache theo data version
type InvalidateRequest struct {
	DataVersion string `form:"data_version" json:"data_version" binding:"required"`
}

// ReindexRequest request reindex đường phố; region trống = tất cả
type ReindexRequest struct {
	Region string `form:"region" json:"region"`
}
