package source

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// BlobCache is a shared byte cache keyed by resource path.
type BlobCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// CachingSource wraps a Source with a BlobCache shared by all sessions.
// Not-found results are not cached.
type CachingSource struct {
	inner  Source
	cache  BlobCache
	logger *zap.Logger
}

// NewCachingSource tạo mới CachingSource
func NewCachingSource(inner Source, cache BlobCache, logger *zap.Logger) *CachingSource {
	return &CachingSource{inner: inner, cache: cache, logger: logger}
}

// Fetch serves from the cache, falling back to the wrapped source.
// Cache errors are logged and otherwise ignored.
func (s *CachingSource) Fetch(ctx context.Context, p string) ([]byte, error) {
	key := "res:" + p
	if data, ok, err := s.cache.Get(ctx, key); err != nil {
		s.logger.Warn("Resource cache get failed", zap.String("path", p), zap.Error(err))
	} else if ok {
		s.logger.Debug("Resource cache hit", zap.String("path", p))
		return data, nil
	}

	data, err := s.inner.Fetch(ctx, p)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Warn("Resource fetch failed", zap.String("path", p), zap.Error(err))
		}
		return nil, err
	}

	if err := s.cache.Set(ctx, key, data); err != nil {
		s.logger.Warn("Resource cache set failed", zap.String("path", p), zap.Error(err))
	}
	return data, nil
}
