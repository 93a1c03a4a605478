//go:build !integration

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, name := range []string{"serve", "validate", "chart", "export", "rank", "config"} {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "foodmap", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}

func TestChartCommand_Flags(t *testing.T) {
	for name, def := range map[string]string{
		"fips":   "1001",
		"x":      "Year",
		"y":      "FIR",
		"format": "png",
		"width":  "1000",
		"height": "500",
	} {
		flag := chartCmd.Flags().Lookup(name)
		require.NotNil(t, flag, "chart should have --%s flag", name)
		assert.Equal(t, def, flag.DefValue, name)
	}
}

func TestExportCommand_Flags(t *testing.T) {
	for _, name := range []string{"filter", "year", "out"} {
		assert.NotNil(t, exportCmd.Flags().Lookup(name), "export should have --%s flag", name)
	}
}

func TestRankCommand_Flags(t *testing.T) {
	flag := rankCmd.Flags().Lookup("limit")
	require.NotNil(t, flag)
	assert.Equal(t, "20", flag.DefValue)
	assert.Equal(t, "FIR", rankCmd.Flags().Lookup("field").DefValue)
}

func TestRootCmd_PersistentPreRunE_WithConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	configContent := `
data:
  rows: rows.xlsx
  sheet: CurrentData
dashboard:
  filter_follows_year: true
log:
  level: debug
  format: console
`
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.yaml"), []byte(configContent), 0o644))

	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(tmpDir))
	defer os.Chdir(origDir) //nolint:errcheck

	oldCfg := cfg
	cfg = nil
	defer func() { cfg = oldCfg }()
	defer zap.ReplaceGlobals(zap.NewNop())

	require.NoError(t, rootCmd.PersistentPreRunE(rootCmd, nil))
	require.NotNil(t, cfg)
	assert.Equal(t, "rows.xlsx", cfg.Data.Rows)
	assert.Equal(t, "CurrentData", cfg.Data.Sheet)
	assert.True(t, cfg.Dashboard.FilterFollowsYear)
	assert.Equal(t, 2021, cfg.Dashboard.BaseYear)
}

func TestRootCmd_PersistentPreRunE_BadLogLevel(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.yaml"), []byte("log:\n  level: loud\n"), 0o644))

	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(tmpDir))
	defer os.Chdir(origDir) //nolint:errcheck

	oldCfg := cfg
	defer func() { cfg = oldCfg }()

	err := rootCmd.PersistentPreRunE(rootCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "init logger")
}
