package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "CurrentData.csv", cfg.Data.Rows)
	assert.Equal(t, "counties.geojson", cfg.Data.Boundaries)
	assert.Equal(t, "county_indicators", cfg.Data.Table)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.CORSOrigins)
	assert.InDelta(t, 5.0, cfg.Server.ChartRate, 0.001)
	assert.Equal(t, 10, cfg.Server.ChartBurst)
	assert.Equal(t, 1000, cfg.Session.MaxEntries)
	assert.Equal(t, 120, cfg.Session.TTLMinutes)
	assert.Equal(t, 2021, cfg.Dashboard.BaseYear)
	assert.Equal(t, 2021, cfg.Dashboard.DefaultYear)
	assert.Equal(t, "1001", cfg.Dashboard.DefaultCounty)
	assert.False(t, cfg.Dashboard.FilterFollowsYear)
	assert.Equal(t, 2011, cfg.Dashboard.MinYear)
	assert.Equal(t, 2021, cfg.Dashboard.MaxYear)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
data:
  rows: data/indicators.xlsx
  sheet: Counties
log:
  level: debug
  format: console
server:
  port: 9090
dashboard:
  base_year: 2019
  filter_follows_year: true
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "data/indicators.xlsx", cfg.Data.Rows)
	assert.Equal(t, "Counties", cfg.Data.Sheet)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 2019, cfg.Dashboard.BaseYear)
	assert.True(t, cfg.Dashboard.FilterFollowsYear)
	// Defaults still apply for unset values
	assert.Equal(t, "counties.geojson", cfg.Data.Boundaries)
	assert.Equal(t, 2021, cfg.Dashboard.DefaultYear)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
log:
  level: debug
dashboard:
  default_county: "6037"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("FOODMAP_LOG_LEVEL", "warn")
	t.Setenv("FOODMAP_DASHBOARD_DEFAULT_COUNTY", "48201")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "48201", cfg.Dashboard.DefaultCounty)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chdirTemp(t)

	t.Setenv("FOODMAP_SERVER_PORT", "3000")
	t.Setenv("FOODMAP_DATA_BOUNDARIES", "tl_2021_us_county.zip")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "tl_2021_us_county.zip", cfg.Data.Boundaries)
}

func TestLoadMalformedFile(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("server: [port"), 0644))

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config: read file")
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Data.Rows = "CurrentData.csv"
	cfg.Data.Boundaries = "counties.geojson"
	cfg.Server.Port = 8080
	cfg.Server.ChartRate = 5
	cfg.Server.ChartBurst = 10
	cfg.Session.MaxEntries = 1000
	cfg.Session.TTLMinutes = 120
	cfg.Dashboard.BaseYear = 2021
	cfg.Dashboard.DefaultYear = 2021
	cfg.Dashboard.MinYear = 2011
	cfg.Dashboard.MaxYear = 2021
	return cfg
}

func TestValidateData_AllPresent(t *testing.T) {
	assert.NoError(t, validDefaults().Validate("data"))
}

func TestValidateData_AlternateRowSources(t *testing.T) {
	cfg := validDefaults()
	cfg.Data.Rows = ""
	cfg.Data.SQLiteDSN = "file:indicators.db"
	assert.NoError(t, cfg.Validate("data"))

	cfg.Data.SQLiteDSN = ""
	cfg.Data.DatabaseURL = "postgres://localhost/foodmap"
	assert.NoError(t, cfg.Validate("data"))
}

func TestValidateData_MissingSources(t *testing.T) {
	cfg := validDefaults()
	cfg.Data.Rows = ""
	cfg.Data.Boundaries = ""

	err := cfg.Validate("data")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "one of data.rows")
	assert.Contains(t, err.Error(), "data.boundaries is required")
}

func TestValidateData_YearBounds(t *testing.T) {
	cfg := validDefaults()
	cfg.Dashboard.BaseYear = 2025

	err := cfg.Validate("data")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dashboard.base_year")

	cfg.Dashboard.BaseYear = 2021
	cfg.Dashboard.MinYear = 2030
	err = cfg.Validate("data")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dashboard.min_year must be <= dashboard.max_year")
}

func TestValidateServe_ValidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 9090

	assert.NoError(t, cfg.Validate("serve"))
}

func TestValidateServe_InvalidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")
}

func TestValidateServe_SessionBounds(t *testing.T) {
	cfg := validDefaults()
	cfg.Session.MaxEntries = 0
	cfg.Session.TTLMinutes = -1

	err := cfg.Validate("serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "session.max_entries must be > 0")
	assert.Contains(t, err.Error(), "session.ttl_minutes must be > 0")
}

func TestValidateUnknownMode(t *testing.T) {
	cfg := validDefaults()
	err := cfg.Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}
