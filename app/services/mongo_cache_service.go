package services

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/siniestros-lookup/app/models"
)

// MongoCacheService persistent cache service sử dụng MongoDB + LRU in-memory
type MongoCacheService struct {
	collection  *mongo.Collection
	l1Cache     *lru.Cache[string, []byte] // LRU in-memory cache
	logger      *zap.Logger
	dataVersion atomic.Value // string

	totalHits atomic.Int64
	totalMiss atomic.Int64
	l1Hits    atomic.Int64
	mongoHits atomic.Int64
}

// NewMongoCacheService tạo mới MongoCacheService
func NewMongoCacheService(db *mongo.Database, l1Size int, dataVersion string, logger *zap.Logger) (*MongoCacheService, error) {
	l1Cache, err := lru.New[string, []byte](l1Size)
	if err != nil {
		return nil, fmt.Errorf("không thể tạo LRU cache: %w", err)
	}

	collection := db.Collection("resource_cache")

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{bson.E{Key: "fingerprint", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{bson.E{Key: "data_version", Value: 1}},
		},
		{
			Keys: bson.D{bson.E{Key: "last_accessed", Value: 1}},
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := collection.Indexes().CreateMany(ctx, indexModels); err != nil {
		logger.Warn("Không thể tạo indexes cho resource_cache", zap.Error(err))
	}

	mcs := &MongoCacheService{
		collection: collection,
		l1Cache:    l1Cache,
		logger:     logger,
	}
	mcs.dataVersion.Store(dataVersion)
	return mcs, nil
}

func (mcs *MongoCacheService) version() string {
	return mcs.dataVersion.Load().(string)
}

// Get lấy resource từ cache (L1 → MongoDB)
func (mcs *MongoCacheService) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if value, found := mcs.l1Cache.Get(key); found {
		mcs.l1Hits.Add(1)
		mcs.totalHits.Add(1)
		mcs.logger.Debug("L1 cache hit", zap.String("key", key))
		return value, true, nil
	}

	fingerprint := mcs.generateFingerprint(key)

	var entry models.ResourceCache
	filter := bson.M{"fingerprint": fingerprint, "data_version": mcs.version()}
	if err := mcs.collection.FindOne(ctx, filter).Decode(&entry); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			mcs.totalMiss.Add(1)
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("lỗi query MongoDB cache: %w", err)
	}

	mcs.mongoHits.Add(1)
	mcs.totalHits.Add(1)

	go mcs.updateAccessStats(entry.ID)

	mcs.l1Cache.Add(key, entry.Payload)

	mcs.logger.Debug("MongoDB cache hit",
		zap.String("key", key),
		zap.String("fingerprint", fingerprint))

	return entry.Payload, true, nil
}

// Set lưu resource vào cache (L1 + MongoDB)
func (mcs *MongoCacheService) Set(ctx context.Context, key string, value []byte) error {
	mcs.l1Cache.Add(key, value)

	fingerprint := mcs.generateFingerprint(key)
	entry := models.NewResourceCache(fingerprint, key, value, mcs.version())

	opts := options.Replace().SetUpsert(true)
	filter := bson.M{"fingerprint": fingerprint}

	if _, err := mcs.collection.ReplaceOne(ctx, filter, entry, opts); err != nil {
		mcs.logger.Error("Lỗi lưu vào MongoDB cache",
			zap.Error(err),
			zap.String("fingerprint", fingerprint))
		return fmt.Errorf("lỗi lưu vào MongoDB cache: %w", err)
	}

	mcs.logger.Debug("Đã lưu vào cache",
		zap.String("key", key),
		zap.Int("bytes", len(value)))
	return nil
}

// Delete xóa resource khỏi cache
func (mcs *MongoCacheService) Delete(ctx context.Context, key string) error {
	mcs.l1Cache.Remove(key)

	filter := bson.M{"fingerprint": mcs.generateFingerprint(key)}
	if _, err := mcs.collection.DeleteOne(ctx, filter); err != nil {
		return fmt.Errorf("lỗi xóa khỏi MongoDB cache: %w", err)
	}
	return nil
}

// Clear xóa tất cả cache
func (mcs *MongoCacheService) Clear(ctx context.Context) error {
	mcs.l1Cache.Purge()

	if _, err := mcs.collection.DeleteMany(ctx, bson.M{}); err != nil {
		return fmt.Errorf("lỗi clear MongoDB cache: %w", err)
	}

	mcs.totalHits.Store(0)
	mcs.totalMiss.Store(0)
	mcs.l1Hits.Store(0)
	mcs.mongoHits.Store(0)
	return nil
}

// InvalidateByDataVersion xóa records của phiên bản dữ liệu khác
func (mcs *MongoCacheService) InvalidateByDataVersion(ctx context.Context, dataVersion string) error {
	mcs.l1Cache.Purge()
	mcs.dataVersion.Store(dataVersion)

	filter := bson.M{"data_version": bson.M{"$ne": dataVersion}}
	result, err := mcs.collection.DeleteMany(ctx, filter)
	if err != nil {
		return fmt.Errorf("lỗi invalidate cache theo data version: %w", err)
	}

	mcs.logger.Info("Đã invalidate cache",
		zap.String("data_version", dataVersion),
		zap.Int64("deleted_count", result.DeletedCount))
	return nil
}

// GetStats lấy thống kê cache
func (mcs *MongoCacheService) GetStats(ctx context.Context) (*CacheStats, error) {
	mongoCount, err := mcs.collection.CountDocuments(ctx, bson.M{"data_version": mcs.version()})
	if err != nil {
		return nil, fmt.Errorf("lỗi đếm documents trong MongoDB cache: %w", err)
	}

	hits, misses := mcs.totalHits.Load(), mcs.totalMiss.Load()
	hitRate := float64(0)
	if hits+misses > 0 {
		hitRate = float64(hits) / float64(hits+misses)
	}

	mcs.logger.Debug("Cache stats",
		zap.Float64("hit_rate", hitRate),
		zap.Int64("l1_hits", mcs.l1Hits.Load()),
		zap.Int64("mongo_hits", mcs.mongoHits.Load()),
		zap.Int("l1_size", mcs.l1Cache.Len()),
		zap.Int64("mongo_count", mongoCount))

	return &CacheStats{
		HitRate:    hitRate,
		TotalHits:  hits,
		TotalMiss:  misses,
		TotalItems: mongoCount,
	}, nil
}

// Exists kiểm tra key có tồn tại không
func (mcs *MongoCacheService) Exists(ctx context.Context, key string) (bool, error) {
	if mcs.l1Cache.Contains(key) {
		return true, nil
	}

	filter := bson.M{"fingerprint": mcs.generateFingerprint(key), "data_version": mcs.version()}
	count, err := mcs.collection.CountDocuments(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("lỗi check exists trong MongoDB: %w", err)
	}
	return count > 0, nil
}

// GetTTL MongoDB persistent cache không có TTL
func (mcs *MongoCacheService) GetTTL(ctx context.Context, key string) (time.Duration, error) {
	return 0, nil
}

// Close đóng kết nối; the MongoDB client is owned by the caller.
func (mcs *MongoCacheService) Close() error {
	return nil
}

// generateFingerprint sinh fingerprint cho cache key
func (mcs *MongoCacheService) generateFingerprint(key string) string {
	hash := sha256.Sum256([]byte(key))
	return fmt.Sprintf("sha256:%x", hash)
}

// updateAccessStats cập nhật thống kê truy cập (async)
func (mcs *MongoCacheService) updateAccessStats(id primitive.ObjectID) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	filter := bson.M{"_id": id}
	update := bson.M{
		"$set": bson.M{"last_accessed": time.Now()},
		"$inc": bson.M{"access_count": 1},
	}
	if _, err := mcs.collection.UpdateOne(ctx, filter, update); err != nil {
		mcs.logger.Warn("Lỗi update access stats", zap.Error(err))
	}
}

// WarmUp làm nóng L1 từ các resource được truy cập nhiều nhất
func (mcs *MongoCacheService) WarmUp(ctx context.Context, limit int) error {
	opts := options.Find().
		SetSort(bson.D{bson.E{Key: "access_count", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := mcs.collection.Find(ctx, bson.M{"data_version": mcs.version()}, opts)
	if err != nil {
		return fmt.Errorf("lỗi warm up cache: %w", err)
	}
	defer cursor.Close(ctx)

	count := 0
	for cursor.Next(ctx) {
		var entry models.ResourceCache
		if err := cursor.Decode(&entry); err != nil {
			mcs.logger.Warn("Lỗi decode cache entry trong warm up", zap.Error(err))
			continue
		}
		mcs.l1Cache.Add(entry.Key, entry.Payload)
		count++
	}

	mcs.logger.Info("Cache warm up hoàn thành",
		zap.Int("loaded_items", count),
		zap.Int("l1_size", mcs.l1Cache.Len()))
	return nil
}
