package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/neoatlantis/na-gribtools/internal/dataset"
	"github.com/neoatlantis/na-gribtools/internal/models"
)

func testManifest(t *testing.T) *dataset.Manifest {
	t.Helper()
	m, err := dataset.NewManifest([]int{6})
	require.NoError(t, err)
	return m
}

func testRef(t *testing.T) models.ResourceRef {
	t.Helper()
	release, err := models.ParseReleaseIdentifier("2017120300")
	require.NoError(t, err)
	return models.ResourceRef{Release: release, VariableID: "temperature_2m", Step: 6}
}

func TestHTTPFetcherURL(t *testing.T) {
	f := NewHTTPFetcher("https://opendata.dwd.de/weather/icon/global/grib/", testManifest(t), zap.NewNop())

	url, err := f.URL(testRef(t))
	require.NoError(t, err)
	assert.Equal(t,
		"https://opendata.dwd.de/weather/icon/global/grib/00/t_2m/ICON_iko_single_level_elements_world_T_2M_2017120300_006.grib2.bz2",
		url)
}

func TestHTTPFetcherURLUnknownVariable(t *testing.T) {
	f := NewHTTPFetcher("https://example.org", testManifest(t), zap.NewNop())

	ref := testRef(t)
	ref.VariableID = "vorticity_500hpa"
	_, err := f.URL(ref)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrFetch)
}

func TestHTTPFetcherFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/00/t_2m/ICON_iko_single_level_elements_world_T_2M_2017120300_006.grib2.bz2", r.URL.Path)
		_, _ = w.Write([]byte("GRIB-payload"))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(srv.URL, testManifest(t), zap.NewNop())

	data, err := f.Fetch(context.Background(), testRef(t))
	require.NoError(t, err)
	assert.Equal(t, []byte("GRIB-payload"), data)
}

func TestHTTPFetcherRetriesTransientFailure(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("GRIB-payload"))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(srv.URL, testManifest(t), zap.NewNop())

	data, err := f.Fetch(context.Background(), testRef(t))
	require.NoError(t, err)
	assert.Equal(t, []byte("GRIB-payload"), data)
	assert.Equal(t, int32(2), calls.Load())
}

func TestHTTPFetcherExhaustsRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(srv.URL, testManifest(t), zap.NewNop())

	_, err := f.Fetch(context.Background(), testRef(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrFetch)
}

func TestDirFetcher(t *testing.T) {
	dir := t.TempDir()
	name := "ICON_iko_single_level_elements_world_T_2M_2017120300_006.grib2"
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("GRIB-mirror"), 0o644))

	f := NewDirFetcher(dir, testManifest(t), zap.NewNop())

	data, err := f.Fetch(context.Background(), testRef(t))
	require.NoError(t, err)
	assert.Equal(t, []byte("GRIB-mirror"), data)
}

func TestDirFetcherMissingFile(t *testing.T) {
	f := NewDirFetcher(t.TempDir(), testManifest(t), zap.NewNop())

	_, err := f.Fetch(context.Background(), testRef(t))
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrFetch)
}

func TestNewSelectsBackend(t *testing.T) {
	m := testManifest(t)

	f, err := New("https://opendata.dwd.de/weather/icon/global/grib", m, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &HTTPFetcher{}, f)

	dir := t.TempDir()
	f, err = New(dir, m, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &DirFetcher{}, f)

	_, err = New(filepath.Join(dir, "missing"), m, zap.NewNop())
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrConfig)
}

type countingFetcher struct {
	calls int
	data  []byte
}

func (c *countingFetcher) Fetch(context.Context, models.ResourceRef) ([]byte, error) {
	c.calls++
	return c.data, nil
}

type mapCache struct{ data map[string][]byte }

func (m *mapCache) Get(key string) ([]byte, bool) {
	v, ok := m.data[key]
	return v, ok
}
func (m *mapCache) Set(key string, val []byte, _ time.Duration) { m.data[key] = val }
func (m *mapCache) Delete(key string)                           { delete(m.data, key) }
func (m *mapCache) Close() error                                { return nil }

func TestCachingFetcher(t *testing.T) {
	next := &countingFetcher{data: []byte("GRIB-payload")}
	cache := &mapCache{data: map[string][]byte{}}
	f := NewCachingFetcher(next, cache, time.Hour)
	ref := testRef(t)

	for i := 0; i < 3; i++ {
		data, err := f.Fetch(context.Background(), ref)
		require.NoError(t, err)
		assert.Equal(t, []byte("GRIB-payload"), data)
	}
	assert.Equal(t, 1, next.calls)
}
