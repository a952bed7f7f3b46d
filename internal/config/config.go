package config

import (
	"fmt"
	"time"

	"github.com/turtacn/cyberrisk/pkg/constants"
)

// Config holds the client layer's configuration.
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Store   StoreConfig   `mapstructure:"store"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Log     LogConfig     `mapstructure:"log"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Tracing TracingConfig `mapstructure:"tracing"`
	MockAPI MockAPIConfig `mapstructure:"mock_api"`
}

type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type StoreConfig struct {
	Driver    string `mapstructure:"driver"`
	Path      string `mapstructure:"path"`      // sqlite file
	Namespace string `mapstructure:"namespace"` // redis key prefix
}

type RedisConfig struct {
	Mode          string        `mapstructure:"mode"` // standalone | cluster | sentinel
	Address       string        `mapstructure:"address"`
	Addresses     []string      `mapstructure:"addresses"` // cluster nodes or sentinels
	MasterName    string        `mapstructure:"master_name"`
	Password      string        `mapstructure:"password"`
	DB            int           `mapstructure:"db"`
	PoolSize      int           `mapstructure:"pool_size"`
	DialTimeout   time.Duration `mapstructure:"dial_timeout"`
	TLS           bool          `mapstructure:"tls"`
	TLSSkipVerify bool          `mapstructure:"tls_skip_verify"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
}

type TracingConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	JaegerEndpoint string  `mapstructure:"jaeger_endpoint"`
	ServiceName    string  `mapstructure:"service_name"`
	SamplingRate   float64 `mapstructure:"sampling_rate"`
}

// MockAPIConfig configures the local stand-in for the remote risk service.
type MockAPIConfig struct {
	ListenAddr         string        `mapstructure:"listen_addr"`
	JWTSecret          string        `mapstructure:"jwt_secret"`
	TokenTTL           time.Duration `mapstructure:"token_ttl"`
	DatabaseDriver     string        `mapstructure:"database_driver"` // sqlite | postgres
	DatabaseDSN        string        `mapstructure:"database_dsn"`    // empty: private in-memory sqlite
	ScanDelay          time.Duration `mapstructure:"scan_delay"`
	DeterministicScans bool          `mapstructure:"deterministic_scans"`
	PprofEnabled       bool          `mapstructure:"pprof_enabled"`

	// LoginAttemptsPerMinute caps login and register calls per client IP; 0 disables.
	LoginAttemptsPerMinute int `mapstructure:"login_attempts_per_minute"`
}

// Default returns a configuration populated with the built-in defaults.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: constants.DefaultBaseURL,
			Timeout: constants.DefaultRequestTimeout,
		},
		Store: StoreConfig{
			Driver:    string(constants.StoreDriverMemory),
			Namespace: "{cyberrisk}:",
		},
		Redis: RedisConfig{
			Mode:        "standalone",
			Address:     "localhost:6379",
			PoolSize:    10,
			DialTimeout: 2 * time.Second,
		},
		Log:   LogConfig{Level: string(constants.LogLevelInfo), Format: "json"},
		Metrics: MetricsConfig{
			Namespace: "cyberrisk",
		},
		Tracing: TracingConfig{
			JaegerEndpoint: "http://localhost:14268/api/traces",
			ServiceName:    "riskctl",
			SamplingRate:   1.0,
		},
		MockAPI: MockAPIConfig{
			ListenAddr:     ":8080",
			JWTSecret:      "dev-only-secret",
			TokenTTL:       24 * time.Hour,
			DatabaseDriver: "sqlite",

			LoginAttemptsPerMinute: 30,
		},
	}
}

// Validate checks for essential configuration values.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url must not be empty")
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive, got %s", c.API.Timeout)
	}
	switch constants.StoreDriver(c.Store.Driver) {
	case constants.StoreDriverMemory, constants.StoreDriverRedis:
	case constants.StoreDriverSQLite:
		if c.Store.Path == "" {
			return fmt.Errorf("store.path is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("unknown store.driver %q", c.Store.Driver)
	}
	if c.Tracing.Enabled && c.Tracing.JaegerEndpoint == "" {
		return fmt.Errorf("tracing.jaeger_endpoint is required when tracing is enabled")
	}
	switch c.MockAPI.DatabaseDriver {
	case "", "sqlite":
	case "postgres":
		if c.MockAPI.DatabaseDSN == "" {
			return fmt.Errorf("mock_api.database_dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown mock_api.database_driver %q", c.MockAPI.DatabaseDriver)
	}
	if c.MockAPI.LoginAttemptsPerMinute < 0 {
		return fmt.Errorf("mock_api.login_attempts_per_minute must not be negative")
	}
	if c.Tracing.SamplingRate < 0 || c.Tracing.SamplingRate > 1 {
		return fmt.Errorf("tracing.sampling_rate must be within [0, 1], got %v", c.Tracing.SamplingRate)
	}
	return nil
}
