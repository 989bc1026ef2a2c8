package hooks

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/PratikDhanave/idp-hook-bridge/internal/auth"
	"github.com/PratikDhanave/idp-hook-bridge/internal/classify"
	"github.com/PratikDhanave/idp-hook-bridge/internal/logging"
	"github.com/PratikDhanave/idp-hook-bridge/internal/metrics"
	"github.com/PratikDhanave/idp-hook-bridge/internal/models"
)

const sourceAuth0 = "auth0"

// Auth0Options tune an Auth0Processor.
type Auth0Options struct {
	// JITGroups creates unknown groups on role assignment. Off by default:
	// roles are expected to exist already, created by their own events.
	JITGroups bool
	// NewID issues the per-event correlation id used in logs. Auth0 log
	// events carry no delivery id, so they are never deduplicated.
	NewID func() string
}

// Auth0Processor applies batches of Auth0 management API log events.
type Auth0Processor[U comparable] struct {
	secret auth.SharedSecret
	dir    Directory[U]
	jit    bool
	newID  func() string
	logger logrus.FieldLogger
}

func NewAuth0Processor[U comparable](secret string, dir Directory[U], opts Auth0Options, logger logrus.FieldLogger) *Auth0Processor[U] {
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	return &Auth0Processor[U]{
		secret: auth.NewSharedSecret(secret),
		dir:    dir,
		jit:    opts.JITGroups,
		newID:  opts.NewID,
		logger: logging.OrDiscard(logger).WithField(logging.FieldSource, sourceAuth0),
	}
}

// Process applies each event of the batch in order. Events may depend on
// earlier ones (create then update). Failures are logged and skipped, and
// the batch is always acknowledged.
func (p *Auth0Processor[U]) Process(ctx context.Context, req Request) Response {
	if !p.secret.Authorized(req.Headers) {
		p.logger.WithError(ErrInvalidAuthorization).Warn("rejecting delivery")
		metrics.HookRequestsTotal.WithLabelValues(sourceAuth0, "unauthorized").Inc()
		return unauthorized()
	}

	var events []models.Auth0Event
	if err := json.Unmarshal(req.Body, &events); err != nil {
		p.logger.WithError(err).Warn("malformed delivery body")
		metrics.HookRequestsTotal.WithLabelValues(sourceAuth0, "bad_request").Inc()
		return badRequest()
	}

	for _, ev := range events {
		id := p.newID()
		log := p.logger.WithFields(logrus.Fields{
			logging.FieldCorrelation: id,
			logging.FieldMethod:      ev.Request.Method,
			logging.FieldPath:        ev.Request.Path,
		})
		if err := p.processEvent(ctx, ev, log); err != nil {
			log.WithError(err).Error("event failed")
		}
	}

	metrics.HookRequestsTotal.WithLabelValues(sourceAuth0, "ok").Inc()
	return ok()
}

func (p *Auth0Processor[U]) processEvent(ctx context.Context, ev models.Auth0Event, log logrus.FieldLogger) error {
	op := classify.ClassifyAuth0(ev)
	if !op.Supported() {
		log.Debug("unsupported event")
		metrics.EventsTotal.WithLabelValues(sourceAuth0, op.Kind.String(), metrics.OutcomeUnsupported).Inc()
		return nil
	}
	log = log.WithField(logging.FieldOperation, op.Kind.String())
	log.Info("processing event")

	outcome := metrics.OutcomeOK
	_, err := apply(ctx, p.dir, op, p.jit)
	if err != nil {
		outcome = metrics.OutcomeFailed
	}
	metrics.EventsTotal.WithLabelValues(sourceAuth0, op.Kind.String(), outcome).Inc()
	return err
}
