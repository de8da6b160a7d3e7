package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g.
// MESALIB_DATABASE_URL for database.url.
const EnvPrefix = "MESALIB"

// Load configuration from environment variables and optionally a config file
// named config.yaml in the working directory or /etc/mesalib.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/mesalib")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks struct tags and the rules that span several fields.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if cfg.Database.Driver == DriverPostgres && cfg.Database.URL == "" {
		return fmt.Errorf("config validation failed: database.url is required for the postgres driver")
	}

	return nil
}

// setDefaults registers every key so AutomaticEnv can override it, including
// keys without a meaningful default.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.shutdown_timeout_seconds", 10)

	v.SetDefault("database.driver", DriverPostgres)
	v.SetDefault("database.url", "")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime_minutes", 5)
	v.SetDefault("database.auto_migrate", false)

	v.SetDefault("auth.jwt_secret", "")

	v.SetDefault("matching.max_pending_per_requester", 3)
	v.SetDefault("matching.needs_weight", 0)
	v.SetDefault("matching.language_weight", 0)
	v.SetDefault("matching.kind_weight", 0)
	v.SetDefault("matching.capacity_weight", 0)

	v.SetDefault("notify.redis_url", "")
	v.SetDefault("notify.stream", "mesalib:notifications")
	v.SetDefault("notify.stream_max_len", 10000)
	v.SetDefault("notify.worker_count", 2)
	v.SetDefault("notify.queue_size", 256)
	v.SetDefault("notify.max_attempts", 5)
	v.SetDefault("notify.sweep_interval_seconds", 60)
	v.SetDefault("notify.stuck_after_seconds", 300)
}
