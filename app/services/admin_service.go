package services

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/siniestros-lookup/app/models"
	"github.com/siniestros-lookup/internal/normalizer"
)

// StreetIndexer index gợi ý tên đường (Meilisearch)
type StreetIndexer interface {
	BuildIndexes() error
	SeedStreets(region, district string, streets []string) (int, error)
}

// AdminService service quản lý admin functions
type AdminService struct {
	cache   ICacheService
	search  *SearchService
	indexer StreetIndexer
	logger  *zap.Logger
}

// CatalogValidation kết quả validation danh mục đường
type CatalogValidation struct {
	Passed   bool     `json:"passed"`
	Warnings []string `json:"warnings"`
}

// ReindexResult kết quả reindex đường phố
type ReindexResult struct {
	Regions          int   `json:"regions"`
	Comunas          int   `json:"comunas"`
	StreetsIndexed   int   `json:"streets_indexed"`
	ProcessingTimeMs int64 `json:"processing_time_ms"`
}

// SystemStats thống kê hệ thống
type SystemStats struct {
	Uptime         string                 `json:"uptime"`
	ActiveSessions int                    `json:"active_sessions"`
	PageSize       int                    `json:"page_size"`
	MemoryUsage    map[string]interface{} `json:"memory_usage"`
	Goroutines     int                    `json:"goroutines"`
	Cache          *CacheStats            `json:"cache,omitempty"`
}

// NewAdminService tạo mới AdminService. cache and indexer may be nil.
func NewAdminService(cache ICacheService, search *SearchService, indexer StreetIndexer, logger *zap.Logger) *AdminService {
	return &AdminService{
		cache:   cache,
		search:  search,
		indexer: indexer,
		logger:  logger,
	}
}

// ValidateCatalog kiểm tra danh mục đường của một comuna
func ValidateCatalog(streets []string) *CatalogValidation {
	warnings := make([]string, 0)
	if len(streets) == 0 {
		return &CatalogValidation{Passed: false, Warnings: []string{"Catálogo vacío"}}
	}

	seen := make(map[string]int)
	for i, s := range streets {
		if strings.TrimSpace(s) == "" {
			warnings = append(warnings, fmt.Sprintf("Empty street at index %d", i))
			continue
		}
		slug := normalizer.Slug(s)
		if j, ok := seen[slug]; ok {
			warnings = append(warnings, fmt.Sprintf("Duplicate street %q at index %d (first at %d)", s, i, j))
			continue
		}
		seen[slug] = i
	}
	return &CatalogValidation{Passed: len(warnings) == 0, Warnings: warnings}
}

// ReindexStreets rebuild index Meilisearch từ street catalogs. An empty
// region reindexes every region.
func (as *AdminService) ReindexStreets(ctx context.Context, region string) (*ReindexResult, error) {
	if as.indexer == nil {
		return nil, errors.New("Meilisearch no está habilitado")
	}
	startTime := time.Now()

	regions := make([]string, 0, len(models.Regions))
	if region != "" {
		slug, err := regionSlug(region)
		if err != nil {
			return nil, err
		}
		regions = append(regions, slug)
	} else {
		for _, r := range models.Regions {
			regions = append(regions, r.Slug)
		}
	}

	if err := as.indexer.BuildIndexes(); err != nil {
		return nil, fmt.Errorf("lỗi build Meilisearch indexes: %w", err)
	}

	// session riêng cho reindex
	sess, _ := as.search.Sessions().Get("")
	result := &ReindexResult{}
	for _, r := range regions {
		districts, err := sess.Index().LoadDistricts(ctx, r)
		if err != nil {
			as.logger.Warn("Skipping region", zap.String("region", r), zap.Error(err))
			continue
		}
		result.Regions++
		for _, d := range districts {
			if err := ctx.Err(); err != nil {
				return result, err
			}
			streets := sess.Index().LoadStreets(ctx, r, d)
			if v := ValidateCatalog(streets); !v.Passed {
				as.logger.Debug("Catalog warnings", zap.String("comuna", d), zap.Strings("warnings", v.Warnings))
			}
			n, err := as.indexer.SeedStreets(r, d, streets)
			if err != nil {
				return result, fmt.Errorf("seed %s/%s: %w", r, d, err)
			}
			result.Comunas++
			result.StreetsIndexed += n
		}
	}

	result.ProcessingTimeMs = time.Since(startTime).Milliseconds()
	as.logger.Info("Street reindex completed",
		zap.Int("regions", result.Regions),
		zap.Int("comunas", result.Comunas),
		zap.Int("streets", result.StreetsIndexed),
		zap.Duration("processing_time", time.Since(startTime)))
	return result, nil
}

// GetSystemStats lấy thống kê hệ thống
func (as *AdminService) GetSystemStats(ctx context.Context) (*SystemStats, error) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	stats := &SystemStats{
		Uptime:         as.search.Uptime().Round(time.Second).String(),
		ActiveSessions: as.search.Sessions().Len(),
		PageSize:       as.search.PageSize(),
		Goroutines:     runtime.NumGoroutine(),
		MemoryUsage: map[string]interface{}{
			"alloc_mb":       bToMb(m.Alloc),
			"total_alloc_mb": bToMb(m.TotalAlloc),
			"sys_mb":         bToMb(m.Sys),
			"num_gc":         m.NumGC,
		},
	}

	if as.cache != nil {
		cs, err := as.cache.GetStats(ctx)
		if err != nil {
			return nil, fmt.Errorf("lỗi lấy cache stats: %w", err)
		}
		stats.Cache = cs
	}
	return stats, nil
}

// ClearCache xóa shared cache và toàn bộ session
func (as *AdminService) ClearCache(ctx context.Context) error {
	as.search.Sessions().Purge()
	if as.cache == nil {
		return nil
	}
	if err := as.cache.Clear(ctx); err != nil {
		return fmt.Errorf("lỗi clear cache: %w", err)
	}
	as.logger.Info("Cache cleared")
	return nil
}

// InvalidateDataVersion bỏ các entry của data version khác
func (as *AdminService) InvalidateDataVersion(ctx context.Context, dataVersion string) error {
	if dataVersion == "" {
		return errors.New("data_version không được để trống")
	}
	as.search.Sessions().Purge()
	if as.cache == nil {
		return nil
	}
	if err := as.cache.InvalidateByDataVersion(ctx, dataVersion); err != nil {
		return fmt.Errorf("lỗi invalidate cache: %w", err)
	}
	as.logger.Info("Cache invalidated", zap.String("data_version", dataVersion))
	return nil
}

func bToMb(b uint64) uint64 {
	return b / 1024 / 1024
}
