package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/siniestros-lookup/app/config"
	"github.com/siniestros-lookup/app/models"
	"github.com/siniestros-lookup/internal/resolver"
	"github.com/siniestros-lookup/internal/tabular"
)

func TestBackendFactoryPack(t *testing.T) {
	factory, db, err := NewBackendFactory(config.Defaults(), zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, db)
	_, ok := factory(nil).(*resolver.Resolver)
	assert.True(t, ok)
}

func TestBackendFactorySQLite(t *testing.T) {
	cfg := config.Defaults()
	cfg.Backend.Kind = "sqlite"
	cfg.Backend.DSN = ":memory:"
	factory, db, err := NewBackendFactory(cfg, zap.NewNop())
	require.NoError(t, err)
	require.NotNil(t, db)
	defer db.Close()

	ctx := context.Background()
	_, err = tabular.LoadRecords(ctx, db, tabular.SQLite, cfg.Backend.Table, []models.AccidentRecord{
		{Fecha: "2020-01-01", Region: "Maule", Comuna: "Talca", Calleuno: "1 Sur", Calledos: "2 Oriente"},
	})
	require.NoError(t, err)

	backend := factory(nil)
	assert.Same(t, backend, factory(nil))
	res, err := backend.Resolve(ctx, models.Query{Region: "maule", District: "Talca", StreetA: "sur", StreetB: "oriente"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusFuzzy, res.Status)
	assert.Len(t, res.Rows, 1)
}

func TestBackendFactoryUnknown(t *testing.T) {
	cfg := config.Defaults()
	cfg.Backend.Kind = "duckdb"
	_, _, err := NewBackendFactory(cfg, zap.NewNop())
	assert.Error(t, err)
}
