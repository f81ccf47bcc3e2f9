package source

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPaths(t *testing.T) {
	assert.Equal(t, "maule/comunas.json", DistrictsPath("maule"))
	assert.Equal(t, "maule/streets/talca.json", StreetsPath("maule", "talca"))
	assert.Equal(t, "maule/intersections/talca/pack.json", PackPath("maule", "talca"))
	assert.Equal(t, "maule/intersections/talca/a-bucket.json", BucketPath("maule", "talca", "a"))
}

func TestHTTPSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/data/maule/comunas.json":
			_, _ = w.Write([]byte(`["Talca"]`))
		case "/data/maule/forbidden.json":
			w.WriteHeader(http.StatusForbidden)
		case "/data/maule/broken.json":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	src := NewHTTPSource(srv.URL+"/data/", 0)
	ctx := context.Background()

	data, err := src.Fetch(ctx, "maule/comunas.json")
	require.NoError(t, err)
	assert.Equal(t, `["Talca"]`, string(data))

	_, err = src.Fetch(ctx, "maule/missing.json")
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = src.Fetch(ctx, "maule/forbidden.json")
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = src.Fetch(ctx, "maule/broken.json")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestLocalSourceWithCompressedFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "maule", "streets"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "maule", "comunas.json"), []byte(`["Talca"]`), 0o644))

	zst, err := CompressZstd([]byte(`["Uno Norte"]`))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "maule", "streets", "talca.json.zst"), zst, 0o644))

	var gz bytes.Buffer
	zw := gzip.NewWriter(&gz)
	_, _ = zw.Write([]byte(`["Dos Sur"]`))
	require.NoError(t, zw.Close())
	require.NoError(t, os.WriteFile(filepath.Join(dir, "maule", "streets", "curico.json"), gz.Bytes(), 0o644))

	src := NewLocalSource(dir)
	ctx := context.Background()

	data, err := src.Fetch(ctx, "maule/comunas.json")
	require.NoError(t, err)
	assert.Equal(t, `["Talca"]`, string(data))

	data, err = src.Fetch(ctx, "maule/streets/talca.json")
	require.NoError(t, err)
	assert.Equal(t, `["Uno Norte"]`, string(data))

	data, err = src.Fetch(ctx, "maule/streets/curico.json")
	require.NoError(t, err)
	assert.Equal(t, `["Dos Sur"]`, string(data))

	_, err = src.Fetch(ctx, "maule/streets/linares.json")
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = src.Fetch(ctx, "../etc/passwd")
	assert.Error(t, err)
}

func TestDecompressPassThrough(t *testing.T) {
	out, err := Decompress([]byte(`{"a":1}`))
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(out))
}

type mapCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func (c *mapCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *mapCache) Set(_ context.Context, key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

type countingSource struct {
	calls int
	data  map[string]string
}

func (s *countingSource) Fetch(_ context.Context, p string) ([]byte, error) {
	s.calls++
	v, ok := s.data[p]
	if !ok {
		return nil, ErrNotFound
	}
	return []byte(v), nil
}

func TestCachingSource(t *testing.T) {
	inner := &countingSource{data: map[string]string{"a.json": "1"}}
	cache := &mapCache{data: map[string][]byte{}}
	src := NewCachingSource(inner, cache, zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		data, err := src.Fetch(ctx, "a.json")
		require.NoError(t, err)
		assert.Equal(t, "1", string(data))
	}
	assert.Equal(t, 1, inner.calls)

	for i := 0; i < 2; i++ {
		_, err := src.Fetch(ctx, "b.json")
		assert.True(t, errors.Is(err, ErrNotFound))
	}
	assert.Equal(t, 3, inner.calls)
}

func TestOpenSelectsByScheme(t *testing.T) {
	ctx := context.Background()

	src, err := Open(ctx, Config{Root: "https://example.org/data"})
	require.NoError(t, err)
	assert.IsType(t, &HTTPSource{}, src)

	src, err = Open(ctx, Config{Root: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &LocalSource{}, src)

	src, err = Open(ctx, Config{Root: "minio://localhost:9000/siniestros/v1"})
	require.NoError(t, err)
	assert.IsType(t, &MinioSource{}, src)

	_, err = Open(ctx, Config{Root: "minio://localhost:9000"})
	assert.Error(t, err)

	_, err = Open(ctx, Config{Root: "  "})
	assert.Error(t, err)
}
