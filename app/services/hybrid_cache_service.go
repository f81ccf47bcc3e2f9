package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// HybridCacheService cache hai tầng: L1 nhanh (Redis) + L2 persistent (MongoDB)
type HybridCacheService struct {
	l1     ICacheService
	l2     ICacheService
	logger *zap.Logger
}

// NewHybridCacheService tạo mới hybrid cache service
func NewHybridCacheService(l1, l2 ICacheService, logger *zap.Logger) *HybridCacheService {
	return &HybridCacheService{l1: l1, l2: l2, logger: logger}
}

// both runs fn against both tiers in parallel and joins their errors.
func (hcs *HybridCacheService) both(fn func(ICacheService) error) error {
	errCh := make(chan error, 2)
	go func() { errCh <- fn(hcs.l1) }()
	go func() { errCh <- fn(hcs.l2) }()

	var errs []error
	for i := 0; i < 2; i++ {
		if err := <-errCh; err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Get lấy resource từ cache (L1 trước, L2 sau)
func (hcs *HybridCacheService) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, found, err := hcs.l1.Get(ctx, key)
	if err != nil {
		hcs.logger.Warn("Lỗi L1 cache, fallback L2", zap.Error(err))
	} else if found {
		return value, true, nil
	}

	value, found, err = hcs.l2.Get(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if !found {
		hcs.logger.Debug("Cache miss (L1 & L2)", zap.String("key", key))
		return nil, false, nil
	}

	// promote to L1
	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := hcs.l1.Set(bgCtx, key, value); err != nil {
			hcs.logger.Warn("Lỗi sync L2->L1", zap.Error(err), zap.String("key", key))
		}
	}()

	hcs.logger.Debug("L2 cache hit", zap.String("key", key))
	return value, true, nil
}

// Set lưu resource vào cả hai tầng
func (hcs *HybridCacheService) Set(ctx context.Context, key string, value []byte) error {
	if err := hcs.both(func(c ICacheService) error { return c.Set(ctx, key, value) }); err != nil {
		return fmt.Errorf("cache errors: %w", err)
	}
	return nil
}

// Delete xóa key khỏi cả hai tầng
func (hcs *HybridCacheService) Delete(ctx context.Context, key string) error {
	if err := hcs.both(func(c ICacheService) error { return c.Delete(ctx, key) }); err != nil {
		return fmt.Errorf("delete errors: %w", err)
	}
	return nil
}

// Clear xóa toàn bộ cache
func (hcs *HybridCacheService) Clear(ctx context.Context) error {
	if err := hcs.both(func(c ICacheService) error { return c.Clear(ctx) }); err != nil {
		return fmt.Errorf("clear errors: %w", err)
	}
	hcs.logger.Info("Cleared hybrid cache")
	return nil
}

// InvalidateByDataVersion xóa cache theo phiên bản dữ liệu
func (hcs *HybridCacheService) InvalidateByDataVersion(ctx context.Context, dataVersion string) error {
	err := hcs.both(func(c ICacheService) error { return c.InvalidateByDataVersion(ctx, dataVersion) })
	if err != nil {
		return fmt.Errorf("invalidate errors: %w", err)
	}
	hcs.logger.Info("Invalidated hybrid cache", zap.String("data_version", dataVersion))
	return nil
}

// GetStats kết hợp thống kê từ cả hai tầng
func (hcs *HybridCacheService) GetStats(ctx context.Context) (*CacheStats, error) {
	l1Stats, l1Err := hcs.l1.GetStats(ctx)
	l2Stats, l2Err := hcs.l2.GetStats(ctx)

	switch {
	case l1Err != nil && l2Err != nil:
		return nil, fmt.Errorf("cả L1 và L2 đều lỗi: %w", errors.Join(l1Err, l2Err))
	case l1Err != nil:
		return l2Stats, nil
	case l2Err != nil:
		return l1Stats, nil
	}

	combined := &CacheStats{
		TotalHits:  l1Stats.TotalHits + l2Stats.TotalHits,
		TotalMiss:  l2Stats.TotalMiss,
		TotalItems: l2Stats.TotalItems,
	}
	if total := combined.TotalHits + combined.TotalMiss; total > 0 {
		combined.HitRate = float64(combined.TotalHits) / float64(total)
	}
	return combined, nil
}

// Exists kiểm tra key có tồn tại không (L1 trước, L2 sau)
func (hcs *HybridCacheService) Exists(ctx context.Context, key string) (bool, error) {
	exists, err := hcs.l1.Exists(ctx, key)
	if err != nil {
		hcs.logger.Warn("Lỗi check L1 exists, fallback L2", zap.Error(err))
	} else if exists {
		return true, nil
	}
	return hcs.l2.Exists(ctx, key)
}

// GetTTL lấy TTL của key (từ L1)
func (hcs *HybridCacheService) GetTTL(ctx context.Context, key string) (time.Duration, error) {
	return hcs.l1.GetTTL(ctx, key)
}

// Close đóng kết nối cả hai tầng
func (hcs *HybridCacheService) Close() error {
	if err := hcs.both(func(c ICacheService) error { return c.Close() }); err != nil {
		return fmt.Errorf("close errors: %w", err)
	}
	return nil
}
