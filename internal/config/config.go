package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/PratikDhanave/idp-hook-bridge/internal/dedup"
)

// EnvPrefix prefixes every environment override, e.g. IDPSYNC_DUO_ENDPOINT.
const EnvPrefix = "IDPSYNC"

// Config contains runtime configuration required by the service.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
	Duo     DuoConfig     `mapstructure:"duo"`
	Okta    OktaConfig    `mapstructure:"okta"`
	Hooks   HooksConfig   `mapstructure:"hooks"`
	Secrets SecretsConfig `mapstructure:"secrets"`
	Dedup   DedupConfig   `mapstructure:"dedup"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type DuoConfig struct {
	// Endpoint is the Admin API base, e.g. https://api-xxxx.duosecurity.com/admin/v1.
	Endpoint string        `mapstructure:"endpoint"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type OktaConfig struct {
	Endpoint string `mapstructure:"endpoint"`
}

type HooksConfig struct {
	Auth0Enabled   bool `mapstructure:"auth0_enabled"`
	OktaEnabled    bool `mapstructure:"okta_enabled"`
	Auth0JITGroups bool `mapstructure:"auth0_jit_groups"`
	OktaJITGroups  bool `mapstructure:"okta_jit_groups"`
}

type SecretsConfig struct {
	Backend string           `mapstructure:"backend"`
	AWS     AWSSecretsConfig `mapstructure:"aws"`
	GCP     GCPSecretsConfig `mapstructure:"gcp"`
}

type AWSSecretsConfig struct {
	SecretID string `mapstructure:"secret_id"`
	Region   string `mapstructure:"region"`
}

type GCPSecretsConfig struct {
	Project string `mapstructure:"project"`
	Secret  string `mapstructure:"secret"`
}

type DedupConfig struct {
	Backend   string         `mapstructure:"backend"`
	Retention time.Duration  `mapstructure:"retention"`
	FailOpen  bool           `mapstructure:"fail_open"`
	OnSuccess string         `mapstructure:"on_success"`
	OnFailure string         `mapstructure:"on_failure"`
	Redis     RedisConfig    `mapstructure:"redis"`
	Postgres  PostgresConfig `mapstructure:"postgres"`
	DynamoDB  DynamoDBConfig `mapstructure:"dynamodb"`
}

type RedisConfig struct {
	URL string `mapstructure:"url"`
}

type PostgresConfig struct {
	URL string `mapstructure:"url"`
}

type DynamoDBConfig struct {
	Table    string `mapstructure:"table"`
	Region   string `mapstructure:"region"`
	Endpoint string `mapstructure:"endpoint"`
}

// Secret backends.
const (
	SecretsEnv = "env"
	SecretsAWS = "aws"
	SecretsGCP = "gcp"
)

// Dedup backends.
const (
	DedupNone     = "none"
	DedupMemory   = "memory"
	DedupRedis    = "redis"
	DedupPostgres = "postgres"
	DedupDynamoDB = "dynamodb"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("duo.endpoint", "")
	v.SetDefault("duo.timeout", "30s")
	v.SetDefault("okta.endpoint", "")
	v.SetDefault("hooks.auth0_enabled", true)
	v.SetDefault("hooks.okta_enabled", true)
	v.SetDefault("hooks.auth0_jit_groups", false)
	v.SetDefault("hooks.okta_jit_groups", true)
	v.SetDefault("secrets.backend", SecretsEnv)
	v.SetDefault("secrets.aws.secret_id", "")
	v.SetDefault("secrets.aws.region", "")
	v.SetDefault("secrets.gcp.project", "")
	v.SetDefault("secrets.gcp.secret", "")
	v.SetDefault("dedup.backend", DedupMemory)
	v.SetDefault("dedup.retention", dedup.DefaultRetention.String())
	v.SetDefault("dedup.fail_open", true)
	v.SetDefault("dedup.on_success", string(dedup.MarkStopped))
	v.SetDefault("dedup.on_failure", string(dedup.LeaveInProgress))
	v.SetDefault("dedup.redis.url", "")
	v.SetDefault("dedup.postgres.url", "")
	v.SetDefault("dedup.dynamodb.table", "")
	v.SetDefault("dedup.dynamodb.region", "")
	v.SetDefault("dedup.dynamodb.endpoint", "")
}

// Load reads configuration from defaults, an optional YAML file and the
// environment, in increasing priority. A .env file in the working directory
// is loaded into the environment first when present.
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/idpsync")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 {
		errs = append(errs, fmt.Errorf("server.port must be positive, got %d", c.Server.Port))
	}
	if c.Duo.Endpoint == "" {
		errs = append(errs, errors.New("duo.endpoint required"))
	}
	if c.Hooks.OktaEnabled && c.Okta.Endpoint == "" {
		errs = append(errs, errors.New("okta.endpoint required when hooks.okta_enabled"))
	}

	switch c.Secrets.Backend {
	case SecretsEnv:
	case SecretsAWS:
		if c.Secrets.AWS.SecretID == "" {
			errs = append(errs, errors.New("secrets.aws.secret_id required"))
		}
	case SecretsGCP:
		if c.Secrets.GCP.Project == "" || c.Secrets.GCP.Secret == "" {
			errs = append(errs, errors.New("secrets.gcp.project and secrets.gcp.secret required"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown secrets.backend %q", c.Secrets.Backend))
	}

	switch c.Dedup.Backend {
	case DedupNone:
		if c.Hooks.OktaEnabled {
			errs = append(errs, errors.New("dedup.backend none not allowed when hooks.okta_enabled"))
		}
	case DedupMemory:
	case DedupRedis:
		if c.Dedup.Redis.URL == "" {
			errs = append(errs, errors.New("dedup.redis.url required"))
		}
	case DedupPostgres:
		if c.Dedup.Postgres.URL == "" {
			errs = append(errs, errors.New("dedup.postgres.url required"))
		}
	case DedupDynamoDB:
		if c.Dedup.DynamoDB.Table == "" {
			errs = append(errs, errors.New("dedup.dynamodb.table required"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown dedup.backend %q", c.Dedup.Backend))
	}
	if c.Dedup.Retention <= 0 {
		errs = append(errs, fmt.Errorf("dedup.retention must be positive, got %s", c.Dedup.Retention))
	}
	if _, err := c.DedupOptions(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// DedupOptions converts the dedup section into tracker options.
func (c *Config) DedupOptions() (dedup.Options, error) {
	onSuccess, err := dedup.ParseSuccessPolicy(c.Dedup.OnSuccess)
	if err != nil {
		return dedup.Options{}, fmt.Errorf("dedup.on_success: %w", err)
	}
	onFailure, err := dedup.ParseFailurePolicy(c.Dedup.OnFailure)
	if err != nil {
		return dedup.Options{}, fmt.Errorf("dedup.on_failure: %w", err)
	}
	return dedup.Options{
		Retention: c.Dedup.Retention,
		FailOpen:  c.Dedup.FailOpen,
		OnSuccess: onSuccess,
		OnFailure: onFailure,
	}, nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ListenAddr(c.Server.Port)
}

func ListenAddr(port int) string {
	return fmt.Sprintf(":%d", port)
}
