// Package bootstrap builds the runtime collaborators named by the
// configuration. Both binaries share it.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/PratikDhanave/idp-hook-bridge/internal/config"
	"github.com/PratikDhanave/idp-hook-bridge/internal/dedup"
	"github.com/PratikDhanave/idp-hook-bridge/internal/duo"
	"github.com/PratikDhanave/idp-hook-bridge/internal/logging"
	"github.com/PratikDhanave/idp-hook-bridge/internal/okta"
	"github.com/PratikDhanave/idp-hook-bridge/internal/secrets"
	"github.com/PratikDhanave/idp-hook-bridge/internal/store"
)

// LoadSecrets reads the credentials from the configured backend.
func LoadSecrets(ctx context.Context, cfg *config.Config) (secrets.Secrets, error) {
	var provider secrets.Provider
	switch cfg.Secrets.Backend {
	case config.SecretsEnv, "":
		provider = secrets.NewEnvProvider(nil)
	case config.SecretsAWS:
		p, err := secrets.NewAWSProvider(ctx, cfg.Secrets.AWS.SecretID, cfg.Secrets.AWS.Region)
		if err != nil {
			return secrets.Secrets{}, err
		}
		provider = p
	case config.SecretsGCP:
		p, err := secrets.NewGCPProvider(ctx, cfg.Secrets.GCP.Project, cfg.Secrets.GCP.Secret)
		if err != nil {
			return secrets.Secrets{}, err
		}
		defer p.Close()
		provider = p
	default:
		return secrets.Secrets{}, fmt.Errorf("unknown secrets backend %q", cfg.Secrets.Backend)
	}
	return provider.Load(ctx)
}

// Dedup is the configured tracker plus whatever backs it.
type Dedup struct {
	Tracker dedup.Tracker
	// Ready is nil for backends without a remote dependency.
	Ready  store.Pinger
	closer io.Closer
}

func (d *Dedup) Close() error {
	if d.closer == nil {
		return nil
	}
	return d.closer.Close()
}

// OpenDedup connects the configured dedup backend. The "none" backend
// yields a tracker that never reports duplicates.
func OpenDedup(ctx context.Context, cfg *config.Config, logger logrus.FieldLogger) (*Dedup, error) {
	logger = logging.OrDiscard(logger)
	opts, err := cfg.DedupOptions()
	if err != nil {
		return nil, err
	}

	var (
		st     dedup.Store
		ready  store.Pinger
		closer io.Closer
	)
	switch cfg.Dedup.Backend {
	case config.DedupNone, "":
		return &Dedup{Tracker: dedup.Disabled{}}, nil
	case config.DedupMemory:
		m := store.NewMemoryStore(opts.Retention, store.DefaultMemoryMaxRecords)
		st, closer = m, m
	case config.DedupRedis:
		r, err := store.NewRedisStore(ctx, cfg.Dedup.Redis.URL)
		if err != nil {
			return nil, err
		}
		st, ready, closer = r, r, r
	case config.DedupPostgres:
		p, err := store.NewPostgresStore(ctx, cfg.Dedup.Postgres.URL)
		if err != nil {
			return nil, err
		}
		if err := p.EnsureSchema(ctx); err != nil {
			_ = p.Close()
			return nil, err
		}
		st, ready, closer = p, p, p
	case config.DedupDynamoDB:
		d, err := store.NewDynamoDBStore(ctx, store.DynamoDBConfig{
			Table:    cfg.Dedup.DynamoDB.Table,
			Region:   cfg.Dedup.DynamoDB.Region,
			Endpoint: cfg.Dedup.DynamoDB.Endpoint,
		})
		if err != nil {
			return nil, err
		}
		st, ready = d, d
	default:
		return nil, fmt.Errorf("unknown dedup backend %q", cfg.Dedup.Backend)
	}

	logger.WithField("backend", cfg.Dedup.Backend).
		WithField("retention", opts.Retention.String()).
		Info("dedup tracker enabled")
	return &Dedup{Tracker: dedup.New(st, opts, logger), Ready: ready, closer: closer}, nil
}

// NewDuoClient signs with the recipient integration from s.
func NewDuoClient(cfg *config.Config, s secrets.Secrets, logger logrus.FieldLogger) (*duo.Client, error) {
	return duo.NewClient(duo.Config{
		Endpoint:       cfg.Duo.Endpoint,
		IntegrationKey: s.RecipientIntegrationKey,
		SecretKey:      s.RecipientSignatureSecret,
		Timeout:        cfg.Duo.Timeout,
	}, logger)
}

var ErrOktaNotConfigured = errors.New("okta endpoint not configured")

// NewOktaClient authenticates with the initiator API key from s.
func NewOktaClient(ctx context.Context, cfg *config.Config, s secrets.Secrets, logger logrus.FieldLogger) (*okta.Client, error) {
	if cfg.Okta.Endpoint == "" {
		return nil, ErrOktaNotConfigured
	}
	return okta.NewClient(ctx, cfg.Okta.Endpoint, s.InitiatorAPIKey, logger)
}
