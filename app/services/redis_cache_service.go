package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisCacheService cache service sử dụng Redis.
// Keys are namespaced by data version: prefix + version + ":" + key.
type RedisCacheService struct {
	client      *redis.Client
	logger      *zap.Logger
	prefix      string
	dataVersion atomic.Value // string
	ttl         time.Duration

	hits   atomic.Int64
	misses atomic.Int64
}

// NewRedisCacheService tạo mới Redis cache service
func NewRedisCacheService(redisURL, dataVersion string, logger *zap.Logger) (*RedisCacheService, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("lỗi parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("không thể kết nối Redis: %w", err)
	}

	return NewRedisCacheServiceWithClient(client, dataVersion, logger), nil
}

// NewRedisCacheServiceWithClient dùng client có sẵn
func NewRedisCacheServiceWithClient(client *redis.Client, dataVersion string, logger *zap.Logger) *RedisCacheService {
	rcs := &RedisCacheService{
		client: client,
		logger: logger,
		prefix: "siniestros:",
		ttl:    24 * time.Hour,
	}
	rcs.dataVersion.Store(dataVersion)
	return rcs
}

func (rcs *RedisCacheService) version() string {
	return rcs.dataVersion.Load().(string)
}

func (rcs *RedisCacheService) key(key string) string {
	return rcs.prefix + rcs.version() + ":" + key
}

// Get lấy resource từ cache
func (rcs *RedisCacheService) Get(ctx context.Context, key string) ([]byte, bool, error) {
	cacheKey := rcs.key(key)

	val, err := rcs.client.Get(ctx, cacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		rcs.misses.Add(1)
		return nil, false, nil
	}
	if err != nil {
		rcs.logger.Error("Lỗi get từ Redis", zap.Error(err), zap.String("key", cacheKey))
		return nil, false, err
	}

	rcs.hits.Add(1)
	rcs.logger.Debug("Redis cache hit", zap.String("key", key))
	return val, true, nil
}

// Set lưu resource vào cache
func (rcs *RedisCacheService) Set(ctx context.Context, key string, value []byte) error {
	cacheKey := rcs.key(key)

	if err := rcs.client.Set(ctx, cacheKey, value, rcs.ttl).Err(); err != nil {
		rcs.logger.Error("Lỗi set vào Redis", zap.Error(err), zap.String("key", cacheKey))
		return err
	}

	rcs.logger.Debug("Đã lưu vào Redis cache", zap.String("key", key), zap.Int("bytes", len(value)))
	return nil
}

// Delete xóa key khỏi cache
func (rcs *RedisCacheService) Delete(ctx context.Context, key string) error {
	cacheKey := rcs.key(key)

	if err := rcs.client.Del(ctx, cacheKey).Err(); err != nil {
		rcs.logger.Error("Lỗi delete từ Redis", zap.Error(err), zap.String("key", cacheKey))
		return err
	}
	return nil
}

// deleteMatching removes every key under the prefix for which keep returns false.
func (rcs *RedisCacheService) deleteMatching(ctx context.Context, keep func(string) bool) (int, error) {
	iter := rcs.client.Scan(ctx, 0, rcs.prefix+"*", 500).Iterator()
	var batch []string
	deleted := 0
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := rcs.client.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("lỗi xóa keys: %w", err)
		}
		deleted += len(batch)
		batch = batch[:0]
		return nil
	}

	for iter.Next(ctx) {
		k := iter.Val()
		if keep != nil && keep(k) {
			continue
		}
		batch = append(batch, k)
		if len(batch) >= 500 {
			if err := flush(); err != nil {
				return deleted, err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return deleted, fmt.Errorf("lỗi scan keys: %w", err)
	}
	return deleted, flush()
}

// Clear xóa toàn bộ cache
func (rcs *RedisCacheService) Clear(ctx context.Context) error {
	deleted, err := rcs.deleteMatching(ctx, nil)
	if err != nil {
		return err
	}
	rcs.hits.Store(0)
	rcs.misses.Store(0)
	rcs.logger.Info("Đã clear Redis cache", zap.Int("keys_deleted", deleted))
	return nil
}

// InvalidateByDataVersion xóa các key của phiên bản dữ liệu khác
func (rcs *RedisCacheService) InvalidateByDataVersion(ctx context.Context, dataVersion string) error {
	current := rcs.prefix + dataVersion + ":"
	deleted, err := rcs.deleteMatching(ctx, func(k string) bool {
		return strings.HasPrefix(k, current)
	})
	if err != nil {
		return err
	}
	rcs.dataVersion.Store(dataVersion)
	rcs.logger.Info("Đã invalidate Redis cache",
		zap.String("data_version", dataVersion),
		zap.Int("keys_deleted", deleted))
	return nil
}

// GetStats lấy thống kê cache
func (rcs *RedisCacheService) GetStats(ctx context.Context) (*CacheStats, error) {
	hits, misses := rcs.hits.Load(), rcs.misses.Load()
	hitRate := float64(0)
	if hits+misses > 0 {
		hitRate = float64(hits) / float64(hits+misses)
	}

	totalItems := int64(0)
	iter := rcs.client.Scan(ctx, 0, rcs.prefix+rcs.version()+":*", 500).Iterator()
	for iter.Next(ctx) {
		totalItems++
	}
	if err := iter.Err(); err != nil {
		rcs.logger.Warn("Không thể đếm Redis keys", zap.Error(err))
	}

	return &CacheStats{
		HitRate:    hitRate,
		TotalHits:  hits,
		TotalMiss:  misses,
		TotalItems: totalItems,
	}, nil
}

// Exists kiểm tra key có tồn tại không
func (rcs *RedisCacheService) Exists(ctx context.Context, key string) (bool, error) {
	exists, err := rcs.client.Exists(ctx, rcs.key(key)).Result()
	if err != nil {
		return false, err
	}
	return exists > 0, nil
}

// GetTTL lấy TTL của key
func (rcs *RedisCacheService) GetTTL(ctx context.Context, key string) (time.Duration, error) {
	return rcs.client.TTL(ctx, rcs.key(key)).Result()
}

// Close đóng kết nối Redis
func (rcs *RedisCacheService) Close() error {
	return rcs.client.Close()
}

// SetTTL thiết lập TTL cho service
func (rcs *RedisCacheService) SetTTL(ttl time.Duration) {
	rcs.ttl = ttl
}
