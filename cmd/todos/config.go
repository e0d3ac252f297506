package main

import (
	"time"

	"github.com/fluxorio/todos/pkg/config"
	"github.com/fluxorio/todos/pkg/db"
	"github.com/fluxorio/todos/pkg/observability/tracing"
)

// envPrefix prefixes every environment override, e.g. TODOS_DATABASE_DSN
const envPrefix = "TODOS"

// AppConfig is the complete service configuration
type AppConfig struct {
	Server   ServerConfig   `yaml:"server" json:"server"`
	Database DatabaseConfig `yaml:"database" json:"database"`
	CORS     CORSConfig     `yaml:"cors" json:"cors"`
	Log      LogConfig      `yaml:"log" json:"log"`
	Metrics  MetricsConfig  `yaml:"metrics" json:"metrics"`
	Tracing  TracingConfig  `yaml:"tracing" json:"tracing"`
	Events   EventsConfig   `yaml:"events" json:"events"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr" json:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" json:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Driver          string        `yaml:"driver" json:"driver"`
	DSN             string        `yaml:"dsn" json:"dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns" json:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns" json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" json:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time" json:"conn_max_idle_time"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" json:"allowed_origins"`
}

type LogConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Path    string `yaml:"path" json:"path"`
}

type TracingConfig struct {
	Exporter    string  `yaml:"exporter" json:"exporter"`
	Endpoint    string  `yaml:"endpoint" json:"endpoint"`
	ServiceName string  `yaml:"service_name" json:"service_name"`
	SampleRate  float64 `yaml:"sample_rate" json:"sample_rate"`
}

// EventsConfig enables NATS publishing when NATSURL is set
type EventsConfig struct {
	NATSURL string `yaml:"nats_url" json:"nats_url"`
	Prefix  string `yaml:"prefix" json:"prefix"`
}

// DefaultConfig returns a configuration that runs locally on sqlite
func DefaultConfig() AppConfig {
	return AppConfig{
		Server: ServerConfig{
			Addr:            ":8000",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:          db.DriverSQLite,
			DSN:             "todos.db",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 5 * time.Minute,
			ConnMaxIdleTime: 10 * time.Minute,
		},
		CORS: CORSConfig{AllowedOrigins: []string{"*"}},
		Log:  LogConfig{Level: "info", Format: "text"},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Tracing: TracingConfig{
			Exporter:    tracing.ExporterNone,
			ServiceName: "todos",
			SampleRate:  1,
		},
		Events: EventsConfig{Prefix: "todos"},
	}
}

// LoadConfig applies the file at path (optional) and TODOS_* env overrides on top of the defaults
func LoadConfig(path string) (AppConfig, error) {
	cfg := DefaultConfig()
	if err := config.LoadWithEnv(path, envPrefix, &cfg); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// Validate checks the configuration before anything is opened
func (c AppConfig) Validate() error {
	drivers := make([]interface{}, 0, len(db.Drivers))
	for _, d := range db.Drivers {
		drivers = append(drivers, d)
	}
	exporters := make([]interface{}, 0, len(tracing.Exporters))
	for _, e := range tracing.Exporters {
		exporters = append(exporters, e)
	}

	return config.Validate(&c,
		config.RequiredFields("Server.Addr", "Database.Driver", "Database.DSN"),
		config.OneOfValidator("Database.Driver", drivers...),
		config.RangeValidator("Database.MaxOpenConns", 1, 1000),
		config.RangeValidator("Database.MaxIdleConns", 0, 1000),
		config.OneOfValidator("Log.Level", "trace", "debug", "info", "warn", "error"),
		config.OneOfValidator("Log.Format", "text", "json"),
		config.OneOfValidator("Tracing.Exporter", exporters...),
		config.RangeValidator("Tracing.SampleRate", 0, 1),
	)
}
