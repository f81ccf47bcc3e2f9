package services

import (
	"context"
	"time"
)

// CacheStats thống kê cache
type CacheStats struct {
	HitRate    float64 `json:"hit_rate"`
	TotalHits  int64   `json:"total_hits"`
	TotalMiss  int64   `json:"total_miss"`
	TotalItems int64   `json:"total_items"`
}

// ICacheService cache dùng chung cho resource dữ liệu (comunas, streets,
// packs, buckets) giữa các session. Values are decompressed resource bytes.
type ICacheService interface {
	// Get lấy resource từ cache
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set lưu resource vào cache
	Set(ctx context.Context, key string, value []byte) error

	// Delete xóa resource khỏi cache
	Delete(ctx context.Context, key string) error

	// Clear xóa tất cả cache
	Clear(ctx context.Context) error

	// InvalidateByDataVersion drops entries written for another data version
	InvalidateByDataVersion(ctx context.Context, dataVersion string) error

	// GetStats lấy thống kê cache
	GetStats(ctx context.Context) (*CacheStats, error)

	// Exists kiểm tra key có tồn tại không
	Exists(ctx context.Context, key string) (bool, error)

	// GetTTL lấy TTL còn lại của key
	GetTTL(ctx context.Context, key string) (time.Duration, error)

	// Close đóng kết nối (nếu cần)
	Close() error
}
