package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeIndexer struct {
	built  int
	seeded map[string][]string
}

func (f *fakeIndexer) BuildIndexes() error {
	f.built++
	return nil
}

func (f *fakeIndexer) SeedStreets(region, district string, streets []string) (int, error) {
	if f.seeded == nil {
		f.seeded = map[string][]string{}
	}
	f.seeded[region+"/"+district] = streets
	return len(streets), nil
}

func TestValidateCatalog(t *testing.T) {
	v := ValidateCatalog([]string{"Av. España", "Yungay"})
	assert.True(t, v.Passed)

	v = ValidateCatalog([]string{"Yungay", " ", "yungay"})
	assert.False(t, v.Passed)
	assert.Len(t, v.Warnings, 2)

	assert.False(t, ValidateCatalog(nil).Passed)
}

func TestReindexStreets(t *testing.T) {
	ss := newTestSearchService(t, 8, 0)
	idx := &fakeIndexer{}
	as := NewAdminService(nil, ss, idx, zap.NewNop())

	res, err := as.ReindexStreets(context.Background(), "Maule")
	require.NoError(t, err)
	assert.Equal(t, 1, idx.built)
	assert.Equal(t, 1, res.Regions)
	assert.Equal(t, 2, res.Comunas)
	assert.Equal(t, 4, res.StreetsIndexed)
	assert.Len(t, idx.seeded["maule/Curicó"], 4)
	assert.Empty(t, idx.seeded["maule/Talca"])

	noMeili := NewAdminService(nil, ss, nil, zap.NewNop())
	_, err = noMeili.ReindexStreets(context.Background(), "")
	assert.Error(t, err)
}

func TestAdminStatsAndClear(t *testing.T) {
	ctx := context.Background()
	ss := newTestSearchService(t, 8, 0)
	cache := NewCacheService(0)
	require.NoError(t, cache.Set(ctx, "k", []byte("v")))
	as := NewAdminService(cache, ss, nil, zap.NewNop())

	ss.Sessions().Get("")
	stats, err := as.GetSystemStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.ActiveSessions)
	require.NotNil(t, stats.Cache)
	assert.Equal(t, int64(1), stats.Cache.TotalItems)

	require.NoError(t, as.ClearCache(ctx))
	assert.Equal(t, 0, cache.Size())
	assert.Equal(t, 0, ss.Sessions().Len())

	assert.Error(t, as.InvalidateDataVersion(ctx, ""))
	require.NoError(t, as.InvalidateDataVersion(ctx, "v2"))
}
