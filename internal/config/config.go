package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	Matching MatchingConfig `mapstructure:"matching" validate:"required"`
	Notify   NotifyConfig   `mapstructure:"notify" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port                   int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel               string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" validate:"gte=1"`
}

// Supported database drivers
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// DatabaseConfig contains all database-related configuration settings.
// The memory driver keeps everything in process and is meant for local runs
// and tests.
type DatabaseConfig struct {
	Driver                 string `mapstructure:"driver" validate:"required,oneof=postgres memory"`
	URL                    string `mapstructure:"url" validate:"omitempty,url"`
	MaxOpenConns           int    `mapstructure:"max_open_conns" validate:"gte=1"`
	MaxIdleConns           int    `mapstructure:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetimeMinutes int    `mapstructure:"conn_max_lifetime_minutes" validate:"gte=1"`
	AutoMigrate            bool   `mapstructure:"auto_migrate"`
}

// AuthConfig contains bearer token validation settings. Tokens are issued by
// the external identity provider sharing this secret.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32"`
}

// MatchingConfig contains the tunables of the matching engine.
// Zero weights keep the built-in defaults.
type MatchingConfig struct {
	MaxPendingPerRequester int `mapstructure:"max_pending_per_requester" validate:"gte=1"`
	NeedsWeight            int `mapstructure:"needs_weight" validate:"gte=0,lte=100"`
	LanguageWeight         int `mapstructure:"language_weight" validate:"gte=0,lte=100"`
	KindWeight             int `mapstructure:"kind_weight" validate:"gte=0,lte=100"`
	CapacityWeight         int `mapstructure:"capacity_weight" validate:"gte=0,lte=100"`
}

// NotifyConfig contains notification intent dispatch settings. When
// RedisURL is empty intents are delivered to the log sink.
type NotifyConfig struct {
	RedisURL             string `mapstructure:"redis_url" validate:"omitempty,url"`
	Stream               string `mapstructure:"stream" validate:"required"`
	StreamMaxLen         int64  `mapstructure:"stream_max_len" validate:"gte=0"`
	WorkerCount          int    `mapstructure:"worker_count" validate:"gte=1"`
	QueueSize            int    `mapstructure:"queue_size" validate:"gte=1"`
	MaxAttempts          int    `mapstructure:"max_attempts" validate:"gte=1"`
	SweepIntervalSeconds int    `mapstructure:"sweep_interval_seconds" validate:"gte=1"`
	StuckAfterSeconds    int    `mapstructure:"stuck_after_seconds" validate:"gte=1"`
}
