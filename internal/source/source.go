// Package source đọc các resource dữ liệu tĩnh (comunas, streets, packs)
// từ HTTP, thư mục local, S3 hoặc MinIO.
package source

import (
	"context"
	"errors"
	"path"
)

// ErrNotFound resource không tồn tại
var ErrNotFound = errors.New("source: resource not found")

// Source fetches one resource by its relative path.
type Source interface {
	Fetch(ctx context.Context, p string) ([]byte, error)
}

// Resource path helpers. Every argument is already a slug.

// DistrictsPath đường dẫn danh sách comunas của một region
func DistrictsPath(region string) string {
	return path.Join(region, "comunas.json")
}

// StreetsPath đường dẫn danh mục đường của một comuna
func StreetsPath(region, district string) string {
	return path.Join(region, "streets", district+".json")
}

// PackPath đường dẫn pack nguyên khối của một comuna
func PackPath(region, district string) string {
	return path.Join(region, "intersections", district, "pack.json")
}

// BucketPath đường dẫn một bucket theo chữ cái
func BucketPath(region, district, letter string) string {
	return path.Join(region, "intersections", district, letter+"-bucket.json")
}
