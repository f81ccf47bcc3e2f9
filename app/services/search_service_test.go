package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/siniestros-lookup/app/models"
	"github.com/siniestros-lookup/internal/index"
	"github.com/siniestros-lookup/internal/resolver"
	"github.com/siniestros-lookup/internal/source"
	"github.com/siniestros-lookup/internal/tabular"
)

const testPack = `{"intersections":{
 "av-espana__x__yungay":[
  {"Fecha":"2023-03-01","Hora":"08:10","Región":"Maule","Comuna":"Curicó","Calleuno":"Av. España","Calledos":"Yungay","Urbano/Rural":"Urbano","Fallecidos":"0","Graves":"1","M/Grave":"0","Leves":"2","Ilesos":"1"},
  {"Fecha":"2022-11-20","Hora":"19:45","Región":"Maule","Comuna":"Curicó","Calleuno":"Av. España","Calledos":"Yungay","Urbano/Rural":"Urbano","Fallecidos":"0","Graves":"0","M/Grave":"0","Leves":"1","Ilesos":"3"}
 ],
 "av-libertad__x__merced":[
  {"Fecha":"2021-05-04","Hora":"12:00","Región":"Maule","Comuna":"Curicó","Calleuno":"Av. Libertad","Calledos":"Merced","Urbano/Rural":"Urbano","Fallecidos":"1","Graves":"0","M/Grave":"0","Leves":"0","Ilesos":"0"}
 ]
}}`

func writeFixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"maule/comunas.json":                   `["Curicó","Talca"]`,
		"maule/streets/curico.json":            `["Av. España","Yungay","Av. Libertad","Merced"]`,
		"maule/intersections/curico/pack.json": testPack,
	}
	for p, body := range files {
		full := filepath.Join(root, filepath.FromSlash(p))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(body), 0o644))
	}
	return root
}

func newTestSearchService(t *testing.T, capacity, pageSize int) *SearchService {
	t.Helper()
	logger := zap.NewNop()
	factory := func(idx *index.PartitionIndex) tabular.Backend {
		return resolver.New(idx, resolver.Options{}, logger)
	}
	sessions, err := NewSessionManager(capacity, source.NewLocalSource(writeFixture(t)), index.LayoutAuto, factory, logger)
	require.NoError(t, err)
	return NewSearchService(sessions, nil, pageSize, 5, logger)
}

func TestSearchExactAndReversed(t *testing.T) {
	ss := newTestSearchService(t, 8, 0)
	ctx := context.Background()

	res, sid, err := ss.Search(ctx, "", models.Query{Region: "Maule", District: "Curicó", StreetA: "Av. España", StreetB: "Yungay"})
	require.NoError(t, err)
	assert.NotEmpty(t, sid)
	assert.Equal(t, models.StatusExact, res.Status)
	assert.Equal(t, 2, res.Total)
	assert.Len(t, res.Rows, 2)
	assert.Equal(t, 1, res.Page)
	assert.False(t, res.Stale)

	res, sid2, err := ss.Search(ctx, sid, models.Query{Region: "maule", District: "curico", StreetA: "Yungay", StreetB: "Av. España"})
	require.NoError(t, err)
	assert.Equal(t, sid, sid2)
	assert.Equal(t, models.StatusExact, res.Status)
	assert.Equal(t, 2, res.Total)
	assert.Equal(t, uint64(2), res.Token)
}

func TestSearchFuzzy(t *testing.T) {
	ss := newTestSearchService(t, 8, 0)
	res, _, err := ss.Search(context.Background(), "", models.Query{Region: "maule", District: "Curicó", StreetA: "libertad", StreetB: "merced"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusFuzzy, res.Status)
	assert.Equal(t, 1, res.Total)
	assert.Equal(t, "Av. Libertad", res.InterpretedA)
	assert.Equal(t, "Merced", res.InterpretedB)
}

func TestSearchPagination(t *testing.T) {
	ss := newTestSearchService(t, 8, 1)
	q := models.Query{Region: "maule", District: "Curicó", StreetA: "Av. España", StreetB: "Yungay", Page: 2}
	res, _, err := ss.Search(context.Background(), "", q)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Total)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "2022-11-20", string(res.Rows[0].Fecha))

	q.Page = 0
	res, _, err = ss.Search(context.Background(), "", q)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Page)
}

func TestSearchStatuses(t *testing.T) {
	ss := newTestSearchService(t, 8, 0)
	ctx := context.Background()

	res, _, err := ss.Search(ctx, "", models.Query{Region: "maule", District: "Curicó"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusNeedsInput, res.Status)

	res, _, err = ss.Search(ctx, "", models.Query{Region: "maule", District: "Talca", StreetA: "1 Sur", StreetB: "2 Oriente"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusNoData, res.Status)
	assert.Empty(t, res.Rows)

	_, _, err = ss.Search(ctx, "", models.Query{Region: "Narnia", District: "x", StreetA: "a"})
	assert.True(t, errors.Is(err, ErrUnknownRegion))
}

func TestListComunasAndSuggest(t *testing.T) {
	ss := newTestSearchService(t, 8, 0)
	ctx := context.Background()

	comunas, sid, err := ss.ListComunas(ctx, "", "maule")
	require.NoError(t, err)
	assert.Equal(t, []string{"Curicó", "Talca"}, comunas)

	names, _, err := ss.SuggestStreets(ctx, sid, "maule", "Curicó", "liber", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Av. Libertad"}, names)

	names, _, err = ss.SuggestStreets(ctx, sid, "maule", "Curicó", "", 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"Av. España", "Yungay"}, names)

	_, _, err = ss.ListComunas(ctx, "", "narnia")
	assert.ErrorIs(t, err, ErrUnknownRegion)
}

func TestUnknownRegionStillIssuesSession(t *testing.T) {
	ss := newTestSearchService(t, 8, 0)
	ctx := context.Background()

	_, sid, err := ss.ListComunas(ctx, "", "narnia")
	assert.ErrorIs(t, err, ErrUnknownRegion)
	assert.NotEmpty(t, sid)
	assert.Equal(t, 1, ss.Sessions().Len())

	_, again, err := ss.SuggestStreets(ctx, sid, "narnia", "x", "y", 0)
	assert.ErrorIs(t, err, ErrUnknownRegion)
	assert.Equal(t, sid, again)
	assert.Equal(t, 1, ss.Sessions().Len())

	_, other, err := ss.Search(ctx, "gone", models.Query{Region: "narnia", District: "x", StreetA: "a"})
	assert.ErrorIs(t, err, ErrUnknownRegion)
	assert.Equal(t, "gone", other)
	assert.Equal(t, 2, ss.Sessions().Len())
}

type stubSuggester struct {
	names []string
	err   error
}

func (s stubSuggester) SearchStreets(context.Context, string, string, string, int) ([]string, error) {
	return s.names, s.err
}

func TestSuggestPrefersMeilisearch(t *testing.T) {
	ss := newTestSearchService(t, 8, 0)
	ctx := context.Background()

	ss.suggester = stubSuggester{names: []string{"Av. España"}}
	names, _, err := ss.SuggestStreets(ctx, "", "maule", "Curicó", "espna", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"Av. España"}, names)

	ss.suggester = stubSuggester{err: errors.New("down")}
	names, _, err = ss.SuggestStreets(ctx, "", "maule", "Curicó", "merc", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"Merced"}, names)
}

func TestExportReturnsAllRows(t *testing.T) {
	ss := newTestSearchService(t, 8, 1)
	res, err := ss.Export(context.Background(), "", models.Query{Region: "maule", District: "Curicó", StreetA: "Av. España", StreetB: "Yungay"})
	require.NoError(t, err)
	assert.Len(t, res.Rows, 2)
}

func TestSessionManagerEvicts(t *testing.T) {
	ss := newTestSearchService(t, 2, 0)
	m := ss.Sessions()

	first, id1 := m.Get("")
	_, id2 := m.Get("")
	_, id3 := m.Get("")
	assert.NotEqual(t, id1, id2)
	assert.NotEqual(t, id2, id3)
	assert.Equal(t, 2, m.Len())

	again, sameID := m.Get(id1)
	assert.Equal(t, id1, sameID)
	assert.NotSame(t, first, again)

	m.Purge()
	assert.Equal(t, 0, m.Len())
}

func TestSessionTokens(t *testing.T) {
	ss := newTestSearchService(t, 2, 0)
	sess, _ := ss.Sessions().Get("")

	a := sess.NextToken()
	b := sess.NextToken()
	assert.Less(t, a, b)
	assert.False(t, sess.IsLatest(a))
	assert.True(t, sess.IsLatest(b))
	assert.False(t, sess.LastUsed().IsZero())
}
