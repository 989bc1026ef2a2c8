package store

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/PratikDhanave/idp-hook-bridge/internal/dedup"
)

// DefaultMemoryMaxRecords bounds the in-process store. The least recently
// written records are evicted first once it is full.
const DefaultMemoryMaxRecords = 100_000

// MemoryStore keeps records in process memory. It only deduplicates within a
// single instance and loses everything on restart.
type MemoryStore struct {
	records *lru.LRU[string, dedup.Record]
}

// NewMemoryStore keeps each record for ttl after its last write. The tracker
// still checks ExpiresAt, so rewriting a record never extends its retention.
func NewMemoryStore(ttl time.Duration, maxRecords int) *MemoryStore {
	if ttl <= 0 {
		ttl = dedup.DefaultRetention
	}
	if maxRecords <= 0 {
		maxRecords = DefaultMemoryMaxRecords
	}
	return &MemoryStore{
		records: lru.NewLRU[string, dedup.Record](maxRecords, nil, ttl),
	}
}

func (m *MemoryStore) Get(_ context.Context, eventID string) (*dedup.Record, error) {
	rec, ok := m.records.Get(eventID)
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (m *MemoryStore) Put(_ context.Context, rec dedup.Record) error {
	m.records.Add(rec.EventID, rec)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, eventID string) error {
	m.records.Remove(eventID)
	return nil
}

// Len returns the number of records currently held.
func (m *MemoryStore) Len() int {
	return m.records.Len()
}

// Close drops every record.
func (m *MemoryStore) Close() error {
	m.records.Purge()
	return nil
}
