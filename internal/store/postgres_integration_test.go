//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/PratikDhanave/idp-hook-bridge/internal/dedup"
)

// setupPostgresStore starts a PostgreSQL container and applies the schema.
func setupPostgresStore(t *testing.T) *PostgresStore {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:17-alpine",
		postgres.WithDatabase("idpsync_test"),
		postgres.WithUsername("test"),
		postgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	st, err := NewPostgresStore(ctx, connStr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.EnsureSchema(ctx))
	// second run must be a no-op
	require.NoError(t, st.EnsureSchema(ctx))

	return st
}

func TestPostgresStore(t *testing.T) {
	ctx := context.Background()
	st := setupPostgresStore(t)

	rec, err := st.Get(ctx, "evt-1")
	require.NoError(t, err)
	assert.Nil(t, rec)

	now := time.Now().UTC().Truncate(time.Microsecond)
	require.NoError(t, st.Put(ctx, dedup.Record{EventID: "evt-1", StartedAt: now, ExpiresAt: now.Add(time.Hour)}))

	rec, err = st.Get(ctx, "evt-1")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.True(t, now.Equal(rec.StartedAt))
	assert.Nil(t, rec.StoppedAt)

	stopped := now.Add(time.Second)
	require.NoError(t, st.Put(ctx, dedup.Record{EventID: "evt-1", StartedAt: now, StoppedAt: &stopped, ExpiresAt: now.Add(time.Hour)}))
	rec, err = st.Get(ctx, "evt-1")
	require.NoError(t, err)
	require.NotNil(t, rec.StoppedAt)
	assert.True(t, stopped.Equal(*rec.StoppedAt))

	require.NoError(t, st.Delete(ctx, "evt-1"))
	rec, err = st.Get(ctx, "evt-1")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestPostgresStore_DeleteExpired(t *testing.T) {
	ctx := context.Background()
	st := setupPostgresStore(t)

	now := time.Now().UTC()
	require.NoError(t, st.Put(ctx, dedup.Record{EventID: "old", StartedAt: now.Add(-7 * time.Hour), ExpiresAt: now.Add(-time.Hour)}))
	require.NoError(t, st.Put(ctx, dedup.Record{EventID: "new", StartedAt: now, ExpiresAt: now.Add(time.Hour)}))

	n, err := st.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	rec, err := st.Get(ctx, "new")
	require.NoError(t, err)
	assert.NotNil(t, rec)
}
