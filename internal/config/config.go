// Package config defines the configuration structures of the coverage
// service.  Only plain data types and validation live in this file; loading
// is in loader.go and defaults in defaults.go.
package config

import (
	"fmt"
	"time"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Host               string        `mapstructure:"host"`
	Port               int           `mapstructure:"port"`
	ReadTimeout        time.Duration `mapstructure:"read_timeout"`
	WriteTimeout       time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout    time.Duration `mapstructure:"shutdown_timeout"`
	CORSAllowedOrigins []string      `mapstructure:"cors_allowed_origins"`
	// RateLimitRequests per RateLimitWindow per client IP.  0 disables it.
	RateLimitRequests int           `mapstructure:"rate_limit_requests"`
	RateLimitWindow   time.Duration `mapstructure:"rate_limit_window"`
}

// DatabaseConfig holds the content-store connection parameters.
type DatabaseConfig struct {
	Host             string        `mapstructure:"host"`
	Port             int           `mapstructure:"port"`
	User             string        `mapstructure:"user"`
	Password         string        `mapstructure:"password"`
	DBName           string        `mapstructure:"db_name"`
	SSLMode          string        `mapstructure:"ssl_mode"`
	MaxOpenConns     int           `mapstructure:"max_open_conns"`
	MaxIdleConns     int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime  time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime  time.Duration `mapstructure:"conn_max_idle_time"`
	StatementTimeout time.Duration `mapstructure:"statement_timeout"`
	MigrationPath    string        `mapstructure:"migration_path"`
}

// RedisConfig holds the parameters of the shared score cache.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// KafkaConfig holds the snapshot producer parameters.
type KafkaConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	Brokers       []string      `mapstructure:"brokers"`
	SnapshotTopic string        `mapstructure:"snapshot_topic"`
	Acks          string        `mapstructure:"acks"` // "none" | "one" | "all"
	Compression   string        `mapstructure:"compression"`
	MaxRetries    int           `mapstructure:"max_retries"`
	WriteTimeout  time.Duration `mapstructure:"write_timeout"`
}

// MinIOConfig holds the snapshot archive parameters.
type MinIOConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	Bucket        string `mapstructure:"bucket"`
	Region        string `mapstructure:"region"`
	UseSSL        bool   `mapstructure:"use_ssl"`
	ArchivePrefix string `mapstructure:"archive_prefix"`
}

// LogConfig holds structured-logging parameters.
type LogConfig struct {
	Level       string   `mapstructure:"level"`  // "debug" | "info" | "warn" | "error"
	Format      string   `mapstructure:"format"` // "json" | "console"
	OutputPaths []string `mapstructure:"output_paths"`
}

// MetricsConfig holds prometheus exposition parameters.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
	Path      string `mapstructure:"path"`
}

// WorkerConfig holds the snapshot worker parameters.
type WorkerConfig struct {
	SnapshotCron string `mapstructure:"snapshot_cron"`
	RunOnStart   bool   `mapstructure:"run_on_start"`
	HealthPort   int    `mapstructure:"health_port"`
}

// CoverageConfig holds the scoring engine parameters.
type CoverageConfig struct {
	CacheBackend string        `mapstructure:"cache_backend"` // "memory" | "redis"
	CacheTTL     time.Duration `mapstructure:"cache_ttl"`

	PrimaryLanguages   []string `mapstructure:"primary_languages"`
	HighValueCountries []string `mapstructure:"high_value_countries"`

	// DisableFounderTitleFallback turns off title keyword matching for
	// founder content that predates the explicit "founder" type.
	DisableFounderTitleFallback bool `mapstructure:"disable_founder_title_fallback"`

	MaxRecommendations int     `mapstructure:"max_recommendations"`
	TopCountries       int     `mapstructure:"top_countries"`
	PriorityCountries  int     `mapstructure:"priority_countries"`
	PriorityThreshold  float64 `mapstructure:"priority_threshold"`
	RecentItemsLimit   int     `mapstructure:"recent_items_limit"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Root Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration of every coverage binary.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	MinIO    MinIOConfig    `mapstructure:"minio"`
	Log      LogConfig      `mapstructure:"log"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Worker   WorkerConfig   `mapstructure:"worker"`
	Coverage CoverageConfig `mapstructure:"coverage"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Validation
// ─────────────────────────────────────────────────────────────────────────────

// Validate checks a fully defaulted Config and returns the first problem.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	if c.Server.RateLimitRequests < 0 {
		return fmt.Errorf("config: server.rate_limit_requests must be ≥ 0, got %d", c.Server.RateLimitRequests)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("config: database.host is required")
	}
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("config: database.port %d is out of range [1, 65535]", c.Database.Port)
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("config: database.db_name is required")
	}

	switch c.Coverage.CacheBackend {
	case "memory":
	case "redis":
		if c.Redis.Addr == "" {
			return fmt.Errorf("config: redis.addr is required when coverage.cache_backend is redis")
		}
	default:
		return fmt.Errorf("config: coverage.cache_backend %q is invalid; expected memory|redis", c.Coverage.CacheBackend)
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("config: redis.db must be ≥ 0, got %d", c.Redis.DB)
	}
	if c.Coverage.CacheTTL <= 0 {
		return fmt.Errorf("config: coverage.cache_ttl must be positive")
	}
	if len(c.Coverage.PrimaryLanguages) == 0 {
		return fmt.Errorf("config: coverage.primary_languages must not be empty")
	}
	if c.Coverage.MaxRecommendations < 1 {
		return fmt.Errorf("config: coverage.max_recommendations must be ≥ 1, got %d", c.Coverage.MaxRecommendations)
	}
	if c.Coverage.PriorityThreshold < 0 || c.Coverage.PriorityThreshold > 100 {
		return fmt.Errorf("config: coverage.priority_threshold %.2f is out of range [0, 100]", c.Coverage.PriorityThreshold)
	}

	if c.Kafka.Enabled {
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("config: kafka.brokers must contain at least one broker when kafka is enabled")
		}
		if c.Kafka.SnapshotTopic == "" {
			return fmt.Errorf("config: kafka.snapshot_topic is required when kafka is enabled")
		}
	}
	if c.MinIO.Enabled {
		if c.MinIO.Endpoint == "" || c.MinIO.Bucket == "" {
			return fmt.Errorf("config: minio.endpoint and minio.bucket are required when minio is enabled")
		}
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}

	return nil
}
