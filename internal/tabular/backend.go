// Package tabular định nghĩa Backend cho tra cứu siniestros và một bản
// cài đặt chạy trên SQL (SQLite nhúng hoặc Postgres).
package tabular

import (
	"context"
	"fmt"

	"github.com/siniestros-lookup/app/models"
	"github.com/siniestros-lookup/internal/resolver"
)

// Backend resolves a query into every matching row.
type Backend interface {
	Resolve(ctx context.Context, q models.Query) (*models.Resolution, error)
}

var _ Backend = (*resolver.Resolver)(nil)
var _ Backend = (*SQLBackend)(nil)

// Kind loại backend được cấu hình
type Kind string

const (
	KindPack     Kind = "pack"
	KindSQLite   Kind = "sqlite"
	KindPostgres Kind = "postgres"
)

// ParseKind chuyển chuỗi cấu hình thành Kind
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case "", KindPack:
		return KindPack, nil
	case KindSQLite, KindPostgres:
		return Kind(s), nil
	}
	return "", fmt.Errorf("unknown lookup backend %q", s)
}
