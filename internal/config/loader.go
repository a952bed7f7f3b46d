package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces every environment override, e.g. CYBERRISK_API_BASE_URL.
const EnvPrefix = "CYBERRISK"

// BaseURLEnv is the short-form base URL override honoured ahead of the config file.
const BaseURLEnv = "BACKEND_URL"

// LoadConfig loads the configuration from defaults, an optional config file and
// environment variables. An explicit configFile must exist; the default search
// path may be empty.
func LoadConfig(configFile string) (*Config, error) {
	v, err := newViper(configFile)
	if err != nil {
		return nil, err
	}
	return decode(v)
}

// WatchConfig loads the configuration like LoadConfig and then calls onChange
// with the re-read configuration every time the config file is written. A
// change that fails validation is reported through err and the previous
// configuration stays in effect.
func WatchConfig(configFile string, onChange func(cfg *Config, err error)) (*Config, error) {
	v, err := newViper(configFile)
	if err != nil {
		return nil, err
	}
	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	if v.ConfigFileUsed() == "" {
		return cfg, nil
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		onChange(decode(v))
	})
	v.WatchConfig()
	return cfg, nil
}

func newViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v, Default())

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("riskctl")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "riskctl"))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("api.base_url", EnvPrefix+"_API_BASE_URL", BaseURLEnv); err != nil {
		return nil, err
	}
	return v, nil
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("api.base_url", d.API.BaseURL)
	v.SetDefault("api.timeout", d.API.Timeout)
	v.SetDefault("store.driver", d.Store.Driver)
	v.SetDefault("store.path", d.Store.Path)
	v.SetDefault("store.namespace", d.Store.Namespace)
	v.SetDefault("redis.mode", d.Redis.Mode)
	v.SetDefault("redis.address", d.Redis.Address)
	v.SetDefault("redis.addresses", d.Redis.Addresses)
	v.SetDefault("redis.master_name", d.Redis.MasterName)
	v.SetDefault("redis.pool_size", d.Redis.PoolSize)
	v.SetDefault("redis.dial_timeout", d.Redis.DialTimeout)
	v.SetDefault("redis.tls", d.Redis.TLS)
	v.SetDefault("redis.tls_skip_verify", d.Redis.TLSSkipVerify)
	v.SetDefault("redis.password", d.Redis.Password)
	v.SetDefault("redis.db", d.Redis.DB)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.namespace", d.Metrics.Namespace)
	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.jaeger_endpoint", d.Tracing.JaegerEndpoint)
	v.SetDefault("tracing.service_name", d.Tracing.ServiceName)
	v.SetDefault("tracing.sampling_rate", d.Tracing.SamplingRate)
	v.SetDefault("mock_api.listen_addr", d.MockAPI.ListenAddr)
	v.SetDefault("mock_api.jwt_secret", d.MockAPI.JWTSecret)
	v.SetDefault("mock_api.token_ttl", d.MockAPI.TokenTTL)
	v.SetDefault("mock_api.database_driver", d.MockAPI.DatabaseDriver)
	v.SetDefault("mock_api.database_dsn", d.MockAPI.DatabaseDSN)
	v.SetDefault("mock_api.scan_delay", d.MockAPI.ScanDelay)
	v.SetDefault("mock_api.deterministic_scans", d.MockAPI.DeterministicScans)
	v.SetDefault("mock_api.pprof_enabled", d.MockAPI.PprofEnabled)
	v.SetDefault("mock_api.login_attempts_per_minute", d.MockAPI.LoginAttemptsPerMinute)
}
