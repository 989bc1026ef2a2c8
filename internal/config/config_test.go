package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PratikDhanave/idp-hook-bridge/internal/dedup"
)

func TestLoad_WithDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 120*time.Second, cfg.Server.IdleTimeout)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 30*time.Second, cfg.Duo.Timeout)
	assert.True(t, cfg.Hooks.Auth0Enabled)
	assert.True(t, cfg.Hooks.OktaEnabled)
	assert.False(t, cfg.Hooks.Auth0JITGroups)
	assert.True(t, cfg.Hooks.OktaJITGroups)
	assert.Equal(t, SecretsEnv, cfg.Secrets.Backend)
	assert.Equal(t, DedupMemory, cfg.Dedup.Backend)
	assert.Equal(t, 6*time.Hour, cfg.Dedup.Retention)
	assert.True(t, cfg.Dedup.FailOpen)
	assert.Equal(t, ":8080", cfg.Addr())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("IDPSYNC_SERVER_PORT", "9090")
	t.Setenv("IDPSYNC_DUO_ENDPOINT", "https://api-test.duosecurity.com/admin/v1")
	t.Setenv("IDPSYNC_DEDUP_BACKEND", "redis")
	t.Setenv("IDPSYNC_DEDUP_REDIS_URL", "redis://localhost:6379/2")
	t.Setenv("IDPSYNC_DEDUP_RETENTION", "90m")
	t.Setenv("IDPSYNC_HOOKS_OKTA_ENABLED", "false")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "https://api-test.duosecurity.com/admin/v1", cfg.Duo.Endpoint)
	assert.Equal(t, DedupRedis, cfg.Dedup.Backend)
	assert.Equal(t, "redis://localhost:6379/2", cfg.Dedup.Redis.URL)
	assert.Equal(t, 90*time.Minute, cfg.Dedup.Retention)
	assert.False(t, cfg.Hooks.OktaEnabled)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "idpsync.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
duo:
  endpoint: https://api-file.duosecurity.com
okta:
  endpoint: https://example.okta.com
dedup:
  backend: dynamodb
  on_success: delete
  dynamodb:
    table: processed-events
    region: eu-west-1
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://api-file.duosecurity.com", cfg.Duo.Endpoint)
	assert.Equal(t, DedupDynamoDB, cfg.Dedup.Backend)
	assert.Equal(t, "processed-events", cfg.Dedup.DynamoDB.Table)
	assert.NoError(t, cfg.Validate())

	opts, err := cfg.DedupOptions()
	require.NoError(t, err)
	assert.Equal(t, dedup.DeleteOnSuccess, opts.OnSuccess)
	assert.Equal(t, dedup.LeaveInProgress, opts.OnFailure)
}

func TestLoad_ExplicitMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func validConfig(t *testing.T) *Config {
	t.Helper()
	cfg, err := Load("")
	require.NoError(t, err)
	cfg.Duo.Endpoint = "https://api-test.duosecurity.com"
	cfg.Okta.Endpoint = "https://example.okta.com"
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing duo endpoint", func(c *Config) { c.Duo.Endpoint = "" }, "duo.endpoint"},
		{"okta enabled without endpoint", func(c *Config) { c.Okta.Endpoint = "" }, "okta.endpoint"},
		{"okta disabled without endpoint", func(c *Config) { c.Okta.Endpoint = ""; c.Hooks.OktaEnabled = false }, ""},
		{"unknown secrets backend", func(c *Config) { c.Secrets.Backend = "vault" }, "secrets.backend"},
		{"aws without secret id", func(c *Config) { c.Secrets.Backend = SecretsAWS }, "secrets.aws.secret_id"},
		{"gcp without project", func(c *Config) { c.Secrets.Backend = SecretsGCP }, "secrets.gcp"},
		{"no dedup with okta enabled", func(c *Config) { c.Dedup.Backend = DedupNone }, "dedup.backend none"},
		{"no dedup with okta disabled", func(c *Config) { c.Dedup.Backend = DedupNone; c.Hooks.OktaEnabled = false }, ""},
		{"unknown dedup backend", func(c *Config) { c.Dedup.Backend = "etcd" }, "dedup.backend"},
		{"redis without url", func(c *Config) { c.Dedup.Backend = DedupRedis }, "dedup.redis.url"},
		{"postgres without url", func(c *Config) { c.Dedup.Backend = DedupPostgres }, "dedup.postgres.url"},
		{"dynamodb without table", func(c *Config) { c.Dedup.Backend = DedupDynamoDB }, "dedup.dynamodb.table"},
		{"non-positive retention", func(c *Config) { c.Dedup.Retention = 0 }, "dedup.retention"},
		{"bad success policy", func(c *Config) { c.Dedup.OnSuccess = "keep" }, "dedup.on_success"},
		{"bad failure policy", func(c *Config) { c.Dedup.OnFailure = "retry" }, "dedup.on_failure"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
