package tabular

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/siniestros-lookup/app/models"
)

func rec(fecha, hora, comuna, a, b string) models.AccidentRecord {
	return models.AccidentRecord{
		Fecha: models.Cell(fecha), Hora: models.Cell(hora),
		Region: "Maule", Comuna: models.Cell(comuna),
		Calleuno: models.Cell(a), Calledos: models.Cell(b),
		Fallecidos: "0", Leves: "1",
	}
}

func newSQLiteBackend(t *testing.T, records []models.AccidentRecord) *SQLBackend {
	t.Helper()
	db, err := Open(SQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	n, err := LoadRecords(context.Background(), db, SQLite, "", records)
	require.NoError(t, err)
	require.Equal(t, len(records), n)
	return NewSQLBackend(db, SQLite, "", zap.NewNop())
}

func TestSQLBackendTwoStreets(t *testing.T) {
	older := rec("2019-04-01", "08:00", "Talca", "Av. Libertad", "Los Aromos")
	newer := rec("2021-06-01", "19:30", "Talca", "Los Aromos", "Libertad")
	other := rec("2020-01-01", "10:00", "Talca", "Uno Norte", "Dos Sur")
	elsewhere := rec("2022-01-01", "10:00", "Curicó", "Libertad", "Los Aromos")
	b := newSQLiteBackend(t, []models.AccidentRecord{older, newer, other, elsewhere, older})

	res, err := b.Resolve(context.Background(), models.Query{
		Region: "maule", District: "Talca", StreetA: "Avenida Libertad", StreetB: "aromos",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusFuzzy, res.Status)
	assert.Equal(t, []models.AccidentRecord{newer, older}, res.Rows)
	assert.Equal(t, "libertad", res.InterpretedA)
}

func TestSQLBackendSingleStreetAndMisses(t *testing.T) {
	r1 := rec("2020-01-01", "10:00", "Curicó", "Peña", "Yungay")
	r2 := rec("2020-01-02", "10:00", "Curicó", "Merced", "Peña")
	b := newSQLiteBackend(t, []models.AccidentRecord{r1, r2})
	ctx := context.Background()

	res, err := b.Resolve(ctx, models.Query{Region: "maule", District: "Curicó", StreetB: "pena"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusSingleStreet, res.Status)
	assert.Equal(t, []models.AccidentRecord{r2, r1}, res.Rows)

	res, err = b.Resolve(ctx, models.Query{Region: "maule", District: "Curicó", StreetA: "Carmen"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusNoMatch, res.Status)

	res, err = b.Resolve(ctx, models.Query{Region: "maule", District: "Linares", StreetA: "Carmen"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusNoData, res.Status)

	res, err = b.Resolve(ctx, models.Query{Region: "maule", District: "Curicó"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusNeedsInput, res.Status)
}

func TestParseKindAndPlaceholders(t *testing.T) {
	k, err := ParseKind("")
	require.NoError(t, err)
	assert.Equal(t, KindPack, k)

	_, err = ParseKind("duckdb")
	assert.Error(t, err)

	assert.Equal(t, "?", SQLite.Placeholder(3))
	assert.Equal(t, "$3", Postgres.Placeholder(3))

	_, err = DialectFor(KindPack)
	assert.Error(t, err)
}
