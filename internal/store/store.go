// Package store holds the dedup record backends: Postgres, Redis, DynamoDB
// and an in-process map.
package store

import (
	"context"

	"github.com/PratikDhanave/idp-hook-bridge/internal/dedup"
)

var (
	_ dedup.Store = (*MemoryStore)(nil)
	_ dedup.Store = (*RedisStore)(nil)
	_ dedup.Store = (*PostgresStore)(nil)
	_ dedup.Store = (*DynamoDBStore)(nil)
)

// Pinger is implemented by stores with a remote dependency worth checking
// from the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}
