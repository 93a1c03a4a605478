//go:build !integration

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sells-group/foodmap/internal/config"
	"github.com/sells-group/foodmap/internal/fixture"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

// testConfig writes the fixture rows and boundaries to a temp dir and returns
// a config pointing at them.
func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	rows := filepath.Join(dir, "CurrentData.csv")
	bounds := filepath.Join(dir, "counties.geojson")
	require.NoError(t, os.WriteFile(rows, []byte(fixture.CountyCSV()), 0o644))
	require.NoError(t, os.WriteFile(bounds, []byte(fixture.CountyGeoJSON()), 0o644))

	return &config.Config{
		Data: config.DataConfig{
			Rows:       rows,
			Boundaries: bounds,
			TempDir:    filepath.Join(dir, "tmp"),
		},
		Server: config.ServerConfig{
			Port:        8080,
			CORSOrigins: []string{"*"},
			ChartRate:   5,
			ChartBurst:  10,
		},
		Session: config.SessionConfig{MaxEntries: 10, TTLMinutes: 60},
		Dashboard: config.DashboardConfig{
			BaseYear:      2021,
			DefaultYear:   2021,
			DefaultCounty: "1001",
			MinYear:       2011,
			MaxYear:       2021,
		},
		Log: config.LogConfig{Level: "info", Format: "json"},
	}
}
