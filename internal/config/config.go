package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Data      DataConfig      `yaml:"data" mapstructure:"data"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Session   SessionConfig   `yaml:"session" mapstructure:"session"`
	Dashboard DashboardConfig `yaml:"dashboard" mapstructure:"dashboard"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// DataConfig locates the county indicator table and the boundary collection.
// Rows come from exactly one of Rows, SQLiteDSN or DatabaseURL, checked in
// that order of precedence: DatabaseURL, SQLiteDSN, Rows.
type DataConfig struct {
	Rows        string `yaml:"rows" mapstructure:"rows"`
	Sheet       string `yaml:"sheet" mapstructure:"sheet"`
	Boundaries  string `yaml:"boundaries" mapstructure:"boundaries"`
	SQLiteDSN   string `yaml:"sqlite_dsn" mapstructure:"sqlite_dsn"`
	SQLiteTable string `yaml:"sqlite_table" mapstructure:"sqlite_table"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	Table       string `yaml:"table" mapstructure:"table"`
	TempDir     string `yaml:"temp_dir" mapstructure:"temp_dir"`
}

// ServerConfig configures the dashboard API server.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
	ChartRate   float64  `yaml:"chart_rate" mapstructure:"chart_rate"`
	ChartBurst  int      `yaml:"chart_burst" mapstructure:"chart_burst"`
}

// SessionConfig bounds the in-memory selection sessions.
type SessionConfig struct {
	MaxEntries int `yaml:"max_entries" mapstructure:"max_entries"`
	TTLMinutes int `yaml:"ttl_minutes" mapstructure:"ttl_minutes"`
}

// DashboardConfig holds the defaults a new session starts from.
type DashboardConfig struct {
	BaseYear          int    `yaml:"base_year" mapstructure:"base_year"`
	DefaultYear       int    `yaml:"default_year" mapstructure:"default_year"`
	DefaultCounty     string `yaml:"default_county" mapstructure:"default_county"`
	FilterFollowsYear bool   `yaml:"filter_follows_year" mapstructure:"filter_follows_year"`
	MinYear           int    `yaml:"min_year" mapstructure:"min_year"`
	MaxYear           int    `yaml:"max_year" mapstructure:"max_year"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("FOODMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("data.rows", "CurrentData.csv")
	v.SetDefault("data.sheet", "")
	v.SetDefault("data.boundaries", "counties.geojson")
	v.SetDefault("data.sqlite_dsn", "")
	v.SetDefault("data.sqlite_table", "county_indicators")
	v.SetDefault("data.database_url", "")
	v.SetDefault("data.table", "county_indicators")
	v.SetDefault("data.temp_dir", "/tmp/foodmap")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.chart_rate", 5.0)
	v.SetDefault("server.chart_burst", 10)
	v.SetDefault("session.max_entries", 1000)
	v.SetDefault("session.ttl_minutes", 120)
	v.SetDefault("dashboard.base_year", 2021)
	v.SetDefault("dashboard.default_year", 2021)
	v.SetDefault("dashboard.default_county", "1001")
	v.SetDefault("dashboard.filter_follows_year", false)
	v.SetDefault("dashboard.min_year", 2011)
	v.SetDefault("dashboard.max_year", 2021)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command mode depends on.
// Modes: "data" (anything that loads the dataset) and "serve" (data plus server).
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "data":
		errs = append(errs, c.validateData()...)
	case "serve":
		errs = append(errs, c.validateData()...)
		if c.Server.Port <= 0 {
			errs = append(errs, "server.port must be > 0")
		}
		if c.Server.ChartRate <= 0 || c.Server.ChartBurst <= 0 {
			errs = append(errs, "server.chart_rate and server.chart_burst must be > 0")
		}
		if c.Session.MaxEntries <= 0 {
			errs = append(errs, "session.max_entries must be > 0")
		}
		if c.Session.TTLMinutes <= 0 {
			errs = append(errs, "session.ttl_minutes must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (c *Config) validateData() []string {
	var errs []string
	if c.Data.Rows == "" && c.Data.SQLiteDSN == "" && c.Data.DatabaseURL == "" {
		errs = append(errs, "one of data.rows, data.sqlite_dsn or data.database_url is required")
	}
	if c.Data.Boundaries == "" {
		errs = append(errs, "data.boundaries is required")
	}
	d := c.Dashboard
	if d.MinYear > d.MaxYear {
		errs = append(errs, "dashboard.min_year must be <= dashboard.max_year")
	}
	if d.BaseYear < d.MinYear || d.BaseYear > d.MaxYear {
		errs = append(errs, "dashboard.base_year must be within [min_year, max_year]")
	}
	if d.DefaultYear < d.MinYear || d.DefaultYear > d.MaxYear {
		errs = append(errs, "dashboard.default_year must be within [min_year, max_year]")
	}
	return errs
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
