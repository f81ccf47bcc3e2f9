package services

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// CacheService service quản lý cache in-memory
type CacheService struct {
	cache      map[string][]byte
	timestamps map[string]time.Time
	mu         sync.RWMutex
	ttl        time.Duration

	hits   atomic.Int64
	misses atomic.Int64
}

// NewCacheService tạo mới CacheService
func NewCacheService(ttl time.Duration) *CacheService {
	return &CacheService{
		cache:      make(map[string][]byte),
		timestamps: make(map[string]time.Time),
		ttl:        ttl,
	}
}

// Get lấy resource từ cache
func (cs *CacheService) Get(ctx context.Context, key string) ([]byte, bool, error) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	if value, exists := cs.cache[key]; exists {
		if cs.isExpired(key) {
			go cs.deleteExpired(key)
			cs.misses.Add(1)
			return nil, false, nil
		}
		cs.hits.Add(1)
		return value, true, nil
	}

	cs.misses.Add(1)
	return nil, false, nil
}

// Set lưu resource vào cache
func (cs *CacheService) Set(ctx context.Context, key string, value []byte) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.timestamps[key] = time.Now()
	cs.cache[key] = value
	return nil
}

// Delete xóa item khỏi cache
func (cs *CacheService) Delete(ctx context.Context, key string) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	delete(cs.cache, key)
	delete(cs.timestamps, key)
	return nil
}

// Clear xóa toàn bộ cache
func (cs *CacheService) Clear(ctx context.Context) error {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.cache = make(map[string][]byte)
	cs.timestamps = make(map[string]time.Time)
	cs.hits.Store(0)
	cs.misses.Store(0)
	return nil
}

// InvalidateByDataVersion in-memory entries carry no version, so everything goes.
func (cs *CacheService) InvalidateByDataVersion(ctx context.Context, dataVersion string) error {
	return cs.Clear(ctx)
}

// Size lấy kích thước cache
func (cs *CacheService) Size() int {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return len(cs.cache)
}

// GetStats lấy thống kê cache
func (cs *CacheService) GetStats(ctx context.Context) (*CacheStats, error) {
	cs.mu.RLock()
	active := 0
	for key := range cs.cache {
		if !cs.isExpired(key) {
			active++
		}
	}
	cs.mu.RUnlock()

	hits, misses := cs.hits.Load(), cs.misses.Load()
	hitRate := float64(0)
	if hits+misses > 0 {
		hitRate = float64(hits) / float64(hits+misses)
	}
	return &CacheStats{
		HitRate:    hitRate,
		TotalHits:  hits,
		TotalMiss:  misses,
		TotalItems: int64(active),
	}, nil
}

// CleanupExpired xóa các item hết hạn
func (cs *CacheService) CleanupExpired() {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	for key := range cs.cache {
		if cs.isExpired(key) {
			delete(cs.cache, key)
			delete(cs.timestamps, key)
		}
	}
}

// isExpired kiểm tra item có hết hạn không; ttl <= 0 never expires.
func (cs *CacheService) isExpired(key string) bool {
	timestamp, exists := cs.timestamps[key]
	if !exists {
		return true
	}
	return cs.ttl > 0 && time.Since(timestamp) > cs.ttl
}

// deleteExpired xóa item hết hạn (async)
func (cs *CacheService) deleteExpired(key string) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if cs.isExpired(key) {
		delete(cs.cache, key)
		delete(cs.timestamps, key)
	}
}

// Exists kiểm tra key có tồn tại không
func (cs *CacheService) Exists(ctx context.Context, key string) (bool, error) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	_, exists := cs.cache[key]
	return exists && !cs.isExpired(key), nil
}

// GetTTL lấy TTL còn lại của key
func (cs *CacheService) GetTTL(ctx context.Context, key string) (time.Duration, error) {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	timestamp, exists := cs.timestamps[key]
	if !exists || cs.ttl <= 0 {
		return 0, nil
	}
	remaining := cs.ttl - time.Since(timestamp)
	if remaining < 0 {
		return 0, nil
	}
	return remaining, nil
}

// StartCleanupWorker khởi động worker dọn dẹp cache; stops when ctx is done.
func (cs *CacheService) StartCleanupWorker(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cs.CleanupExpired()
			}
		}
	}()
}

// Close đóng kết nối (không cần thiết cho in-memory cache)
func (cs *CacheService) Close() error {
	return nil
}
