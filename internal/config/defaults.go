package config

import (
	"time"

	"github.com/spf13/viper"
)

// ─────────────────────────────────────────────────────────────────────────────
// Default values
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultServerHost      = "0.0.0.0"
	DefaultServerPort      = 8080
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultShutdownTimeout = 15 * time.Second
	DefaultRateLimitWindow = time.Minute

	DefaultDBHost          = "localhost"
	DefaultDBPort          = 5432
	DefaultDBName          = "coverage"
	DefaultDBSSLMode       = "disable"
	DefaultDBMaxOpenConns  = 25
	DefaultDBMaxIdleConns  = 10
	DefaultDBMigrationPath = "migrations"

	DefaultRedisAddr      = "localhost:6379"
	DefaultRedisKeyPrefix = "ci"

	DefaultKafkaSnapshotTopic = "coverage.snapshot.v1"
	DefaultKafkaAcks          = "one"

	DefaultMinIOBucket        = "coverage-snapshots"
	DefaultMinIORegion        = "us-east-1"
	DefaultMinIOArchivePrefix = "snapshots"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultMetricsNamespace = "coverage"
	DefaultMetricsPath      = "/metrics"

	DefaultSnapshotCron     = "@every 30m"
	DefaultWorkerHealthPort = 8081

	DefaultCacheBackend       = "memory"
	DefaultCacheTTL           = 5 * time.Minute
	DefaultMaxRecommendations = 10
	DefaultTopCountries       = 10
	DefaultPriorityCountries  = 20
	DefaultPriorityThreshold  = 60.0
	DefaultRecentItemsLimit   = 10
)

// DefaultPrimaryLanguages are the languages whose gaps raise critical
// recommendations.
var DefaultPrimaryLanguages = []string{"fr", "en"}

// DefaultHighValueCountries are ISO codes that add a fixed priority bonus.
var DefaultHighValueCountries = []string{
	"US", "GB", "CA", "AU", "FR", "DE", "ES", "IT", "CH", "BE",
	"NL", "AE", "SG", "JP", "CN", "TH", "PT", "BR", "MX",
}

// ─────────────────────────────────────────────────────────────────────────────
// ApplyDefaults
// ─────────────────────────────────────────────────────────────────────────────

// ApplyDefaults fills zero-value fields of cfg.  Explicitly set values win.
// Booleans are never defaulted here; their zero value is the default.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── Server ────────────────────────────────────────────────────────────────
	if cfg.Server.Host == "" {
		cfg.Server.Host = DefaultServerHost
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.RateLimitWindow == 0 {
		cfg.Server.RateLimitWindow = DefaultRateLimitWindow
	}

	// ── Database ──────────────────────────────────────────────────────────────
	if cfg.Database.Host == "" {
		cfg.Database.Host = DefaultDBHost
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = DefaultDBPort
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = DefaultDBName
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = DefaultDBSSLMode
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = DefaultDBMaxOpenConns
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = DefaultDBMaxIdleConns
	}
	if cfg.Database.MigrationPath == "" {
		cfg.Database.MigrationPath = DefaultDBMigrationPath
	}

	// ── Redis ─────────────────────────────────────────────────────────────────
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = DefaultRedisAddr
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}

	// ── Kafka / MinIO ─────────────────────────────────────────────────────────
	if cfg.Kafka.SnapshotTopic == "" {
		cfg.Kafka.SnapshotTopic = DefaultKafkaSnapshotTopic
	}
	if cfg.Kafka.Acks == "" {
		cfg.Kafka.Acks = DefaultKafkaAcks
	}
	if cfg.MinIO.Bucket == "" {
		cfg.MinIO.Bucket = DefaultMinIOBucket
	}
	if cfg.MinIO.Region == "" {
		cfg.MinIO.Region = DefaultMinIORegion
	}
	if cfg.MinIO.ArchivePrefix == "" {
		cfg.MinIO.ArchivePrefix = DefaultMinIOArchivePrefix
	}

	// ── Log / Metrics / Worker ────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Worker.SnapshotCron == "" {
		cfg.Worker.SnapshotCron = DefaultSnapshotCron
	}
	if cfg.Worker.HealthPort == 0 {
		cfg.Worker.HealthPort = DefaultWorkerHealthPort
	}

	// ── Coverage ──────────────────────────────────────────────────────────────
	if cfg.Coverage.CacheBackend == "" {
		cfg.Coverage.CacheBackend = DefaultCacheBackend
	}
	if cfg.Coverage.CacheTTL == 0 {
		cfg.Coverage.CacheTTL = DefaultCacheTTL
	}
	if len(cfg.Coverage.PrimaryLanguages) == 0 {
		cfg.Coverage.PrimaryLanguages = append([]string(nil), DefaultPrimaryLanguages...)
	}
	if cfg.Coverage.HighValueCountries == nil {
		cfg.Coverage.HighValueCountries = append([]string(nil), DefaultHighValueCountries...)
	}
	if cfg.Coverage.MaxRecommendations == 0 {
		cfg.Coverage.MaxRecommendations = DefaultMaxRecommendations
	}
	if cfg.Coverage.TopCountries == 0 {
		cfg.Coverage.TopCountries = DefaultTopCountries
	}
	if cfg.Coverage.PriorityCountries == 0 {
		cfg.Coverage.PriorityCountries = DefaultPriorityCountries
	}
	if cfg.Coverage.PriorityThreshold == 0 {
		cfg.Coverage.PriorityThreshold = DefaultPriorityThreshold
	}
	if cfg.Coverage.RecentItemsLimit == 0 {
		cfg.Coverage.RecentItemsLimit = DefaultRecentItemsLimit
	}
}

// Default returns a fully defaulted Config.  Binaries fall back to it when no
// config file is given.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// registerKeys makes every key known to viper so that COVERAGE_* variables
// are picked up by Unmarshal even when the key is absent from the file.
func registerKeys(v *viper.Viper) {
	keys := []string{
		"server.host", "server.port", "server.read_timeout", "server.write_timeout",
		"server.shutdown_timeout", "server.cors_allowed_origins",
		"server.rate_limit_requests", "server.rate_limit_window",

		"database.host", "database.port", "database.user", "database.password",
		"database.db_name", "database.ssl_mode", "database.max_open_conns",
		"database.max_idle_conns", "database.conn_max_lifetime",
		"database.conn_max_idle_time", "database.statement_timeout",
		"database.migration_path",

		"redis.addr", "redis.password", "redis.db", "redis.pool_size",
		"redis.dial_timeout", "redis.read_timeout", "redis.write_timeout",
		"redis.key_prefix",

		"kafka.enabled", "kafka.brokers", "kafka.snapshot_topic", "kafka.acks",
		"kafka.compression", "kafka.max_retries", "kafka.write_timeout",

		"minio.enabled", "minio.endpoint", "minio.access_key", "minio.secret_key",
		"minio.bucket", "minio.region", "minio.use_ssl", "minio.archive_prefix",

		"log.level", "log.format", "log.output_paths",
		"metrics.enabled", "metrics.namespace", "metrics.path",
		"worker.snapshot_cron", "worker.run_on_start", "worker.health_port",

		"coverage.cache_backend", "coverage.cache_ttl", "coverage.primary_languages",
		"coverage.high_value_countries", "coverage.disable_founder_title_fallback",
		"coverage.max_recommendations", "coverage.top_countries",
		"coverage.priority_countries", "coverage.priority_threshold",
		"coverage.recent_items_limit",
	}
	for _, k := range keys {
		_ = v.BindEnv(k)
	}
}
