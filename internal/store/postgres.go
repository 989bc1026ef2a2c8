package store

import (
	"context"
	_ "embed"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/PratikDhanave/idp-hook-bridge/internal/dedup"
)

// schemaSQL is embedded so the service can self-bootstrap its database schema.
//
//go:embed schema.sql
var schemaSQL string

// PostgresStore keeps dedup records in the processed_events table.
type PostgresStore struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewPostgresStore creates a connection pool and fails fast if DB is unreachable.
func NewPostgresStore(ctx context.Context, dbURL string) (*PostgresStore, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool, now: time.Now}, nil
}

// EnsureSchema applies schema.sql. Safe to run multiple times.
func (p *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, schemaSQL)
	return err
}

// Ping is used by readiness endpoint to validate DB connectivity.
func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close shuts down the connection pool.
func (p *PostgresStore) Close() error {
	p.pool.Close()
	return nil
}

func (p *PostgresStore) Get(ctx context.Context, eventID string) (*dedup.Record, error) {
	rec := dedup.Record{EventID: eventID}
	err := p.pool.QueryRow(ctx, `
		SELECT started_at, stopped_at, expires_at
		FROM processed_events
		WHERE event_id = $1
	`, eventID).Scan(&rec.StartedAt, &rec.StoppedAt, &rec.ExpiresAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Put upserts the record. Concurrent writers for the same id race and the
// last one wins.
func (p *PostgresStore) Put(ctx context.Context, rec dedup.Record) error {
	if rec.EventID == "" {
		return errors.New("eventID required")
	}
	_, err := p.pool.Exec(ctx, `
		INSERT INTO processed_events(event_id, started_at, stopped_at, expires_at)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (event_id) DO UPDATE
		SET started_at = EXCLUDED.started_at,
		    stopped_at = EXCLUDED.stopped_at,
		    expires_at = EXCLUDED.expires_at
	`, rec.EventID, rec.StartedAt, rec.StoppedAt, rec.ExpiresAt)
	return err
}

func (p *PostgresStore) Delete(ctx context.Context, eventID string) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM processed_events WHERE event_id = $1`, eventID)
	return err
}

// DeleteExpired removes records whose retention window has passed and
// returns how many were removed.
func (p *PostgresStore) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := p.pool.Exec(ctx, `DELETE FROM processed_events WHERE expires_at <= $1`, p.now())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
