package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Coverage.CacheBackend)
	assert.Equal(t, 5*time.Minute, cfg.Coverage.CacheTTL)
	assert.Equal(t, []string{"fr", "en"}, cfg.Coverage.PrimaryLanguages)
	assert.Contains(t, cfg.Coverage.HighValueCountries, "US")
	assert.Equal(t, 10, cfg.Coverage.MaxRecommendations)
	assert.Equal(t, 60.0, cfg.Coverage.PriorityThreshold)
	assert.False(t, cfg.Coverage.DisableFounderTitleFallback)
}

func TestApplyDefaults_PreservesExplicitValues(t *testing.T) {
	cfg := &Config{}
	cfg.Server.Port = 9999
	cfg.Coverage.CacheTTL = time.Minute
	cfg.Coverage.HighValueCountries = []string{}
	ApplyDefaults(cfg)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, time.Minute, cfg.Coverage.CacheTTL)
	assert.Empty(t, cfg.Coverage.HighValueCountries, "an explicit empty list disables the bonus")
}

func TestApplyDefaults_NilIsSafe(t *testing.T) {
	assert.NotPanics(t, func() { ApplyDefaults(nil) })
}

func TestApplyDefaults_DoesNotAliasPackageSlices(t *testing.T) {
	cfg := Default()
	cfg.Coverage.PrimaryLanguages[0] = "de"
	assert.Equal(t, "fr", DefaultPrimaryLanguages[0])
}

func TestValidate_Failures(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"port", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"rate limit", func(c *Config) { c.Server.RateLimitRequests = -1 }, "rate_limit_requests"},
		{"db host", func(c *Config) { c.Database.Host = "" }, "database.host"},
		{"db name", func(c *Config) { c.Database.DBName = "" }, "database.db_name"},
		{"cache backend", func(c *Config) { c.Coverage.CacheBackend = "disk" }, "cache_backend"},
		{"redis addr", func(c *Config) { c.Coverage.CacheBackend = "redis"; c.Redis.Addr = "" }, "redis.addr"},
		{"ttl", func(c *Config) { c.Coverage.CacheTTL = -time.Second }, "cache_ttl"},
		{"primary languages", func(c *Config) { c.Coverage.PrimaryLanguages = nil }, "primary_languages"},
		{"max recommendations", func(c *Config) { c.Coverage.MaxRecommendations = 0 }, "max_recommendations"},
		{"threshold", func(c *Config) { c.Coverage.PriorityThreshold = 120 }, "priority_threshold"},
		{"kafka brokers", func(c *Config) { c.Kafka.Enabled = true }, "kafka.brokers"},
		{"minio endpoint", func(c *Config) { c.MinIO.Enabled = true }, "minio.endpoint"},
		{"log level", func(c *Config) { c.Log.Level = "trace" }, "log.level"},
		{"log format", func(c *Config) { c.Log.Format = "xml" }, "log.format"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestValidate_OptionalSinksWhenConfigured(t *testing.T) {
	cfg := Default()
	cfg.Kafka.Enabled = true
	cfg.Kafka.Brokers = []string{"localhost:9092"}
	cfg.MinIO.Enabled = true
	cfg.MinIO.Endpoint = "localhost:9000"
	assert.NoError(t, cfg.Validate())
}
