package services

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/siniestros-lookup/app/config"
	"github.com/siniestros-lookup/internal/index"
	"github.com/siniestros-lookup/internal/resolver"
	"github.com/siniestros-lookup/internal/tabular"
)

// NewBackendFactory chọn backend truy vấn theo cfg.Backend.Kind. The
// returned *sql.DB is nil for the pack backend; callers close it otherwise.
func NewBackendFactory(cfg config.LookupCfg, logger *zap.Logger) (BackendFactory, *sql.DB, error) {
	kind, err := tabular.ParseKind(cfg.Backend.Kind)
	if err != nil {
		return nil, nil, err
	}

	if kind == tabular.KindPack {
		opts := resolver.Options{
			MaxCandidates: cfg.Matcher.MaxCandidates,
			Suggestions:   cfg.Matcher.Suggestions,
		}
		return func(idx *index.PartitionIndex) tabular.Backend {
			return resolver.New(idx, opts, logger)
		}, nil, nil
	}

	dialect, err := tabular.DialectFor(kind)
	if err != nil {
		return nil, nil, err
	}
	db, err := tabular.Open(dialect, cfg.Backend.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s backend: %w", kind, err)
	}
	shared := tabular.NewSQLBackend(db, dialect, cfg.Backend.Table, logger)
	logger.Info("Using SQL backend", zap.String("kind", string(kind)), zap.String("table", cfg.Backend.Table))
	return func(*index.PartitionIndex) tabular.Backend { return shared }, db, nil
}
