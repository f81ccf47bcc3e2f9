package packer

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/siniestros-lookup/internal/index"
	"github.com/siniestros-lookup/internal/source"
)

const sampleCSV = "\xEF\xBB\xBFFecha;Hora;Region;Comuna;Calleuno;Calledos;Urbano/Rural;Fallecidos;Graves;M/Grave;Leves;Ilesos\n" +
	"2023-01-01;08:00;Maule;Talca;1 Sur;2 Oriente;Urbano;0;0;0;1;1\n" +
	"2023-02-01;09:00;Maule;Talca;2 Oriente;1 Sur;Urbano;0;1;0;0;2\n" +
	"2023-03-01;10:00;Maule;Curicó;Av. España;Yungay;Urbano;1;0;0;0;0\n" +
	"2023-04-01;11:00;Maule;;Sin comuna;X;Rural;0;0;0;0;1\n"

func TestReadCSV(t *testing.T) {
	recs, err := ReadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	require.Len(t, recs, 4)
	assert.Equal(t, "Maule", string(recs[0].Region))
	assert.Equal(t, "2 Oriente", string(recs[0].Calledos))
	assert.Equal(t, "1", string(recs[2].Fallecidos))

	recs, err = ReadCSV(strings.NewReader("Fecha,Comuna,Calleuno\n2020-01-01,Talca,\"1 Sur, Talca\"\n"))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "1 Sur, Talca", string(recs[0].Calleuno))

	recs, err = ReadCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func build(t *testing.T, opts Options) (string, Stats) {
	t.Helper()
	recs, err := ReadCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	root := t.TempDir()
	b := NewBuilder(opts, zap.NewNop())
	b.Add(recs...)
	stats, err := b.Write(context.Background(), DirSink{Root: root})
	require.NoError(t, err)
	return root, stats
}

func TestBuildWholeLayout(t *testing.T) {
	root, stats := build(t, Options{Layout: index.LayoutWhole})
	assert.Equal(t, 1, stats.Regions)
	assert.Equal(t, 2, stats.Comunas)
	assert.Equal(t, 3, stats.Rows)
	assert.Equal(t, 1, stats.Skipped)
	assert.Equal(t, 3, stats.Keys)

	data, err := os.ReadFile(filepath.Join(root, "maule", "comunas.json"))
	require.NoError(t, err)
	var comunas []string
	require.NoError(t, json.Unmarshal(data, &comunas))
	assert.Equal(t, []string{"Curicó", "Talca"}, comunas)

	data, err = os.ReadFile(filepath.Join(root, "maule", "streets", "talca.json"))
	require.NoError(t, err)
	var streets []string
	require.NoError(t, json.Unmarshal(data, &streets))
	assert.Equal(t, []string{"1 Sur", "2 Oriente"}, streets)

	// the built tree is readable through the partition index
	pi := index.NewPartitionIndex(source.NewLocalSource(root), index.LayoutWhole, zap.NewNop())
	pack, ok := pi.LoadPack(context.Background(), "maule", "Talca")
	require.True(t, ok)
	rows := pack.Lookup(context.Background(), "1-sur", "2-oriente")
	assert.Len(t, rows, 2)
}

func TestBuildBucketedCompressed(t *testing.T) {
	root, stats := build(t, Options{Layout: index.LayoutBucketed, Compress: true})
	assert.Equal(t, 3, stats.Rows)

	_, err := os.Stat(filepath.Join(root, "maule", "intersections", "talca", "1-bucket.json.zst"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(root, "maule", "intersections", "talca", "2-bucket.json.zst"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(root, "maule", "intersections", "curico", "a-bucket.json.zst"))
	require.NoError(t, err)

	pi := index.NewPartitionIndex(source.NewLocalSource(root), index.LayoutBucketed, zap.NewNop())
	ctx := context.Background()
	districts, err := pi.LoadDistricts(ctx, "maule")
	require.NoError(t, err)
	assert.Equal(t, []string{"Curicó", "Talca"}, districts)

	pack, ok := pi.LoadPack(ctx, "maule", "Curicó")
	require.True(t, ok)
	assert.Len(t, pack.Lookup(ctx, "yungay", "av-espana"), 1)
	assert.Len(t, pack.Scan(ctx), 1)
}
