// Package index lazily loads and memoizes the per-region and per-comuna
// resources of the dataset for one session.
package index

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/siniestros-lookup/app/models"
	"github.com/siniestros-lookup/internal/normalizer"
	"github.com/siniestros-lookup/internal/source"
)

var (
	// ErrNotFound the required resource does not exist
	ErrNotFound = errors.New("index: not found")
	// ErrFetchFailure a required resource could not be fetched or decoded
	ErrFetchFailure = errors.New("index: fetch failure")
)

// Layout cách pack của một comuna được lưu
type Layout string

const (
	LayoutWhole    Layout = "whole"
	LayoutBucketed Layout = "bucketed"
	LayoutAuto     Layout = "auto"
)

// ParseLayout chuyển chuỗi cấu hình thành Layout, mặc định auto.
func ParseLayout(s string) Layout {
	switch Layout(s) {
	case LayoutWhole, LayoutBucketed:
		return Layout(s)
	}
	return LayoutAuto
}

// Observer nhận thông báo mỗi lần tải resource; may be nil.
type Observer interface {
	ObserveFetch(kind string, found bool, err error, d time.Duration)
}

// PartitionIndex quản lý việc tải comunas, streets và packs cho một session.
type PartitionIndex struct {
	src      source.Source
	cache    *SessionCache
	layout   Layout
	logger   *zap.Logger
	observer Observer
}

// NewPartitionIndex tạo mới PartitionIndex với cache riêng.
func NewPartitionIndex(src source.Source, layout Layout, logger *zap.Logger) *PartitionIndex {
	return &PartitionIndex{
		src:    src,
		cache:  NewSessionCache(),
		layout: layout,
		logger: logger,
	}
}

// WithObserver gắn observer (metrics).
func (pi *PartitionIndex) WithObserver(o Observer) *PartitionIndex {
	pi.observer = o
	return pi
}

// Cache trả về session cache (dùng cho thống kê).
func (pi *PartitionIndex) Cache() *SessionCache { return pi.cache }

func (pi *PartitionIndex) fetch(ctx context.Context, kind, p string) ([]byte, error) {
	start := time.Now()
	data, err := pi.src.Fetch(ctx, p)
	if pi.observer != nil {
		notFound := errors.Is(err, source.ErrNotFound)
		var obsErr error
		if err != nil && !notFound {
			obsErr = err
		}
		pi.observer.ObserveFetch(kind, err == nil, obsErr, time.Since(start))
	}
	return data, err
}

// LoadDistricts returns the comunas of region in stored order.
// A missing resource yields ErrNotFound; any other failure ErrFetchFailure.
func (pi *PartitionIndex) LoadDistricts(ctx context.Context, region string) ([]string, error) {
	return getOrLoad(pi.cache, region, func() ([]string, error) {
		data, err := pi.fetch(ctx, "districts", source.DistrictsPath(region))
		if err != nil {
			if errors.Is(err, source.ErrNotFound) {
				return nil, fmt.Errorf("districts of %s: %w", region, ErrNotFound)
			}
			pi.logger.Error("Failed to load districts", zap.String("region", region), zap.Error(err))
			return nil, fmt.Errorf("districts of %s: %w: %v", region, ErrFetchFailure, err)
		}
		var districts []string
		if err := json.Unmarshal(data, &districts); err != nil {
			return nil, fmt.Errorf("districts of %s: %w: %v", region, ErrFetchFailure, err)
		}
		if districts == nil {
			districts = []string{}
		}
		return districts, nil
	})
}

// LoadStreets returns the street catalog of a comuna. Absence and failures
// both yield an empty catalog.
func (pi *PartitionIndex) LoadStreets(ctx context.Context, region, district string) []string {
	key := streetsKey(region, district)
	streets, err := getOrLoad(pi.cache, key, func() ([]string, error) {
		data, err := pi.fetch(ctx, "streets", source.StreetsPath(region, normalizer.Slug(district)))
		if errors.Is(err, source.ErrNotFound) {
			return []string{}, nil
		}
		if err != nil {
			return nil, err
		}
		var list []string
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, fmt.Errorf("decode streets: %w", err)
		}
		if list == nil {
			list = []string{}
		}
		return list, nil
	})
	if err != nil {
		pi.logger.Warn("Street catalog unavailable",
			zap.String("region", region),
			zap.String("district", district),
			zap.Error(err))
		return []string{}
	}
	return streets
}

// LoadPack returns the intersection pack of a comuna. ok is false when the
// comuna has no accident data.
func (pi *PartitionIndex) LoadPack(ctx context.Context, region, district string) (Pack, bool) {
	ds := normalizer.Slug(district)
	switch pi.layout {
	case LayoutBucketed:
		return pi.bucketed(region, ds), true
	case LayoutWhole:
		pack := pi.wholePack(ctx, region, ds)
		if pack == nil {
			return nil, false
		}
		return &wholePack{pack: pack}, true
	}

	if pack := pi.wholePack(ctx, region, ds); pack != nil {
		return &wholePack{pack: pack}, true
	}
	return pi.bucketed(region, ds), true
}

func (pi *PartitionIndex) bucketed(region, districtSlug string) *bucketedPack {
	return &bucketedPack{index: pi, region: region, district: districtSlug}
}

// wholePack loads pack.json; nil means absent.
func (pi *PartitionIndex) wholePack(ctx context.Context, region, districtSlug string) *models.IntersectionPack {
	key := packKey(region, districtSlug)
	pack, err := getOrLoad(pi.cache, key, func() (*models.IntersectionPack, error) {
		return pi.decodePack(ctx, "pack", source.PackPath(region, districtSlug))
	})
	if err != nil {
		pi.logger.Warn("Intersection pack unavailable",
			zap.String("region", region),
			zap.String("district", districtSlug),
			zap.Error(err))
		return nil
	}
	return pack
}

// loadBucket loads one letter shard; nil means absent.
func (pi *PartitionIndex) loadBucket(ctx context.Context, region, districtSlug, letter string) *models.IntersectionPack {
	key := bucketKey(region, districtSlug, letter)
	pack, err := getOrLoad(pi.cache, key, func() (*models.IntersectionPack, error) {
		return pi.decodePack(ctx, "bucket", source.BucketPath(region, districtSlug, letter))
	})
	if err != nil {
		pi.logger.Warn("Intersection bucket unavailable",
			zap.String("region", region),
			zap.String("district", districtSlug),
			zap.String("letter", letter),
			zap.Error(err))
		return nil
	}
	return pack
}

// decodePack returns (nil, nil) for a missing resource so absence is memoized.
func (pi *PartitionIndex) decodePack(ctx context.Context, kind, p string) (*models.IntersectionPack, error) {
	data, err := pi.fetch(ctx, kind, p)
	if errors.Is(err, source.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var pack models.IntersectionPack
	if err := json.Unmarshal(data, &pack); err != nil {
		return nil, fmt.Errorf("decode %s: %w", p, err)
	}
	return &pack, nil
}

func streetsKey(region, district string) string {
	return "streets:" + region + "::" + normalizer.Slug(district)
}

func packKey(region, districtSlug string) string {
	return "pack:" + region + "::" + districtSlug
}

func bucketKey(region, districtSlug, letter string) string {
	return "bucket:" + region + "::" + districtSlug + "::" + letter
}
