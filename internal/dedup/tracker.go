// Package dedup guards hook processing against redelivered events.
//
// A Tracker records when processing of an event id starts and stops. The
// record lives for a bounded retention window; while it exists the id is a
// duplicate. Records are kept in a Store, which may be remote and shared by
// every replica of the service.
package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/PratikDhanave/idp-hook-bridge/internal/logging"
)

// DefaultRetention is how long a started event id is remembered.
const DefaultRetention = 6 * time.Hour

// Record is the processing state of one event id.
type Record struct {
	EventID   string     `json:"eventId"`
	StartedAt time.Time  `json:"started"`
	StoppedAt *time.Time `json:"stopped,omitempty"`
	ExpiresAt time.Time  `json:"expiration"`
}

// Stopped reports whether processing finished successfully.
func (r Record) Stopped() bool {
	return r.StoppedAt != nil
}

// Store persists records. Get returns nil, nil for a missing id.
type Store interface {
	Get(ctx context.Context, eventID string) (*Record, error)
	Put(ctx context.Context, rec Record) error
	Delete(ctx context.Context, eventID string) error
}

// Tracker answers whether an event id was already seen and keeps the
// started/stopped lease around its processing.
type Tracker interface {
	IsDuplicate(ctx context.Context, eventID string) (bool, error)
	StartProcessing(ctx context.Context, eventID string) error
	// StopProcessing ends the lease. procErr is the result of processing and
	// selects between the success and failure policies.
	StopProcessing(ctx context.Context, eventID string, procErr error) error
}

// SuccessPolicy decides what happens to a record after successful processing.
type SuccessPolicy string

const (
	// MarkStopped rewrites the record with a stop time and lets it expire.
	MarkStopped SuccessPolicy = "mark_stopped"
	// DeleteOnSuccess removes the record.
	DeleteOnSuccess SuccessPolicy = "delete"
)

// FailurePolicy decides what happens to a record after failed processing.
type FailurePolicy string

const (
	// LeaveInProgress keeps the started record, so redeliveries are treated
	// as duplicates until it expires.
	LeaveInProgress FailurePolicy = "leave"
	// DeleteOnFailure removes the record so the next redelivery is processed.
	DeleteOnFailure FailurePolicy = "delete"
)

// ParseSuccessPolicy validates a configured success policy.
func ParseSuccessPolicy(s string) (SuccessPolicy, error) {
	switch p := SuccessPolicy(s); p {
	case MarkStopped, DeleteOnSuccess:
		return p, nil
	case "":
		return MarkStopped, nil
	}
	return "", fmt.Errorf("unknown success policy %q", s)
}

// ParseFailurePolicy validates a configured failure policy.
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch p := FailurePolicy(s); p {
	case LeaveInProgress, DeleteOnFailure:
		return p, nil
	case "":
		return LeaveInProgress, nil
	}
	return "", fmt.Errorf("unknown failure policy %q", s)
}

// Options tune a store-backed tracker. Zero values select the defaults.
type Options struct {
	Retention time.Duration
	// FailOpen makes store errors non-fatal: lookups report "not a
	// duplicate" and writes are skipped with a warning.
	FailOpen  bool
	OnSuccess SuccessPolicy
	OnFailure FailurePolicy
	Now       func() time.Time
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		Retention: DefaultRetention,
		FailOpen:  true,
		OnSuccess: MarkStopped,
		OnFailure: LeaveInProgress,
	}
}

type storeTracker struct {
	store  Store
	opts   Options
	logger logrus.FieldLogger
}

// New returns a Tracker backed by store.
func New(store Store, opts Options, logger logrus.FieldLogger) Tracker {
	if opts.Retention <= 0 {
		opts.Retention = DefaultRetention
	}
	if opts.OnSuccess == "" {
		opts.OnSuccess = MarkStopped
	}
	if opts.OnFailure == "" {
		opts.OnFailure = LeaveInProgress
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &storeTracker{store: store, opts: opts, logger: logging.OrDiscard(logger)}
}

func (t *storeTracker) IsDuplicate(ctx context.Context, eventID string) (bool, error) {
	rec, err := t.store.Get(ctx, eventID)
	if err != nil {
		return false, t.storeFailure("lookup", eventID, err)
	}
	if rec == nil {
		return false, nil
	}
	return t.opts.Now().Before(rec.ExpiresAt), nil
}

func (t *storeTracker) StartProcessing(ctx context.Context, eventID string) error {
	now := t.opts.Now()
	rec := Record{
		EventID:   eventID,
		StartedAt: now,
		ExpiresAt: now.Add(t.opts.Retention),
	}
	if err := t.store.Put(ctx, rec); err != nil {
		return t.storeFailure("start", eventID, err)
	}
	return nil
}

func (t *storeTracker) StopProcessing(ctx context.Context, eventID string, procErr error) error {
	var err error
	switch {
	case procErr == nil && t.opts.OnSuccess == DeleteOnSuccess:
		err = t.store.Delete(ctx, eventID)
	case procErr == nil:
		err = t.markStopped(ctx, eventID)
	case t.opts.OnFailure == DeleteOnFailure:
		err = t.store.Delete(ctx, eventID)
	default:
		return nil
	}
	if err != nil {
		return t.storeFailure("stop", eventID, err)
	}
	return nil
}

// markStopped keeps the original expiry so the record ages out on schedule.
func (t *storeTracker) markStopped(ctx context.Context, eventID string) error {
	now := t.opts.Now()
	rec, err := t.store.Get(ctx, eventID)
	if err != nil {
		return err
	}
	if rec == nil {
		rec = &Record{EventID: eventID, StartedAt: now, ExpiresAt: now.Add(t.opts.Retention)}
	}
	rec.StoppedAt = &now
	return t.store.Put(ctx, *rec)
}

func (t *storeTracker) storeFailure(op, eventID string, err error) error {
	if t.opts.FailOpen {
		t.logger.WithError(err).WithField(logging.FieldEventID, eventID).
			Warnf("dedup %s failed, continuing", op)
		return nil
	}
	return fmt.Errorf("dedup %s %s: %w", op, eventID, err)
}
