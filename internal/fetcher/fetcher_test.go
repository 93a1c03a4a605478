package fetcher

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsRemote(t *testing.T) {
	assert.True(t, IsRemote("https://example.org/CurrentData.csv"))
	assert.True(t, IsRemote("ftp://ftp.example.org/pub/counties.zip"))
	assert.False(t, IsRemote("CurrentData.csv"))
	assert.False(t, IsRemote("/data/counties.geojson"))
	assert.False(t, IsRemote(`C:\data\counties.geojson`))
}

func TestExt(t *testing.T) {
	assert.Equal(t, ".csv", Ext("data/CurrentData.CSV"))
	assert.Equal(t, ".xlsx", Ext("https://example.org/export/indicators.xlsx?download=1"))
	assert.Equal(t, ".zip", Ext("ftp://ftp.example.org/tl_2021_us_county.zip"))
	assert.Equal(t, "", Ext("README"))
}

func TestOpen_Local(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.csv")
	require.NoError(t, os.WriteFile(path, []byte("FIPS\n1001\n"), 0o644))

	rc, err := Open(context.Background(), path, Options{})
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "FIPS\n1001\n", string(data))
}

func TestOpen_MissingLocal(t *testing.T) {
	_, err := Open(context.Background(), filepath.Join(t.TempDir(), "nope.csv"), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetcher: open")
}

func TestOpen_HTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("FIPS\n1001\n"))
	}))
	defer srv.Close()

	rc, err := Open(context.Background(), srv.URL+"/rows.csv", Options{HTTP: newTestFetcher()})
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "FIPS\n1001\n", string(data))
}

func TestOpen_UnsupportedScheme(t *testing.T) {
	_, err := Open(context.Background(), "s3://bucket/rows.csv", Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported scheme")
}

func TestLocalize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("shape bytes"))
	}))
	defer srv.Close()

	dir := t.TempDir()
	path, err := Localize(context.Background(), srv.URL+"/geo/tl_2021_us_county.zip", dir, Options{HTTP: newTestFetcher()})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "tl_2021_us_county.zip"), path)

	local := filepath.Join(dir, "local.geojson")
	require.NoError(t, os.WriteFile(local, []byte("{}"), 0o644))
	got, err := Localize(context.Background(), local, dir, Options{})
	require.NoError(t, err)
	assert.Equal(t, local, got)

	_, err = Localize(context.Background(), filepath.Join(dir, "missing.shp"), dir, Options{})
	require.Error(t, err)
}
