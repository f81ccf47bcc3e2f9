package resolver

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/siniestros-lookup/app/models"
	"github.com/siniestros-lookup/internal/index"
	"github.com/siniestros-lookup/internal/source"
)

// Talca trong testdata chỉ có bucket a, d, u (không có pack.json).
func newBucketedResolver(layout index.Layout) *Resolver {
	src := source.NewLocalSource(filepath.Join("testdata", "data"))
	idx := index.NewPartitionIndex(src, layout, zap.NewNop())
	return New(idx, Options{Suggestions: 3}, zap.NewNop())
}

func TestResolveBucketedDistrict(t *testing.T) {
	tests := []struct {
		name         string
		query        models.Query
		status       models.Status
		fechas       []models.Cell
		interpretedA string
		interpretedB string
	}{
		{
			name:   "exact both orders",
			query:  models.Query{Region: "maule", District: "Talca", StreetA: "Uno Norte", StreetB: "Dos Sur"},
			status: models.StatusExact,
			fechas: []models.Cell{"2022-10-03", "2021-06-21"},
		},
		{
			name:   "exact reversed",
			query:  models.Query{Region: "maule", District: "Talca", StreetA: "Dos Sur", StreetB: "Uno Norte"},
			status: models.StatusExact,
			fechas: []models.Cell{"2021-06-21", "2022-10-03"},
		},
		{
			name:         "fuzzy hit in another bucket",
			query:        models.Query{Region: "maule", District: "Talca", StreetA: "Libertad", StreetB: "Los Aromos"},
			status:       models.StatusFuzzy,
			fechas:       []models.Cell{"2023-04-11"},
			interpretedA: "Av. Libertad",
			interpretedB: "Los Aromos",
		},
		{
			name:   "single street stored as second member",
			query:  models.Query{Region: "maule", District: "Talca", StreetB: "Los Aromos"},
			status: models.StatusSingleStreet,
			fechas: []models.Cell{"2023-04-11"},
		},
		{
			name:   "single street across buckets",
			query:  models.Query{Region: "maule", District: "Talca", StreetA: "dos sur"},
			status: models.StatusSingleStreet,
			fechas: []models.Cell{"2021-06-21", "2022-10-03"},
		},
		{
			name:   "no match in present district",
			query:  models.Query{Region: "maule", District: "Talca", StreetA: "Colón", StreetB: "Uno Norte"},
			status: models.StatusNoMatch,
		},
		{
			name:   "absent district two streets",
			query:  models.Query{Region: "maule", District: "Linares", StreetA: "Uno Norte", StreetB: "Dos Sur"},
			status: models.StatusNoData,
		},
		{
			name:   "absent district single street",
			query:  models.Query{Region: "maule", District: "Linares", StreetA: "Uno Norte"},
			status: models.StatusNoData,
		},
	}

	for _, layout := range []index.Layout{index.LayoutBucketed, index.LayoutAuto} {
		for _, tt := range tests {
			t.Run(string(layout)+"/"+tt.name, func(t *testing.T) {
				r := newBucketedResolver(layout)
				res, err := r.Resolve(context.Background(), tt.query)
				require.NoError(t, err)
				assert.Equal(t, tt.status, res.Status)

				got := make([]models.Cell, 0, len(res.Rows))
				for _, row := range res.Rows {
					got = append(got, row.Fecha)
				}
				if len(tt.fechas) == 0 {
					assert.Empty(t, got)
				} else {
					assert.ElementsMatch(t, tt.fechas, got)
				}
				if tt.interpretedA != "" {
					assert.Equal(t, tt.interpretedA, res.InterpretedA)
				}
				if tt.interpretedB != "" {
					assert.Equal(t, tt.interpretedB, res.InterpretedB)
				}
			})
		}
	}
}

// Exact lookups in a bucketed comuna still stop before the fuzzy step.
func TestResolveBucketedExactOrder(t *testing.T) {
	r := newBucketedResolver(index.LayoutBucketed)
	res, err := r.Resolve(context.Background(),
		models.Query{Region: "maule", District: "Talca", StreetA: "Uno Norte", StreetB: "Dos Sur"})
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, models.Cell("2022-10-03"), res.Rows[0].Fecha)
	assert.Equal(t, models.Cell("2021-06-21"), res.Rows[1].Fecha)
}
