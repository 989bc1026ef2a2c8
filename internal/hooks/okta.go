package hooks

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/PratikDhanave/idp-hook-bridge/internal/auth"
	"github.com/PratikDhanave/idp-hook-bridge/internal/classify"
	"github.com/PratikDhanave/idp-hook-bridge/internal/dedup"
	"github.com/PratikDhanave/idp-hook-bridge/internal/logging"
	"github.com/PratikDhanave/idp-hook-bridge/internal/metrics"
	"github.com/PratikDhanave/idp-hook-bridge/internal/models"
)

const (
	sourceOkta   = "okta"
	unclassified = "unclassified"
)

// Initiator reads users back from the source IdP. Okta events only name
// the user, so creates and profile updates fetch the details.
type Initiator interface {
	GetUser(ctx context.Context, userID string) (models.InitiatorUser, error)
	GetProfile(ctx context.Context, userID string) (models.Profile, error)
	GroupNames(ctx context.Context, userID string) ([]string, error)
}

// OktaOptions tune an OktaProcessor.
type OktaOptions struct {
	// JITGroups creates unknown groups on membership changes. Okta group
	// names are the only handle, so this defaults to on.
	JITGroups *bool
	Tracker   dedup.Tracker
}

// OktaProcessor applies Okta event hook deliveries.
type OktaProcessor[U comparable] struct {
	secret    auth.SharedSecret
	dir       Directory[U]
	initiator Initiator
	tracker   dedup.Tracker
	jit       bool
	logger    logrus.FieldLogger
}

func NewOktaProcessor[U comparable](secret string, dir Directory[U], initiator Initiator, opts OktaOptions, logger logrus.FieldLogger) *OktaProcessor[U] {
	jit := true
	if opts.JITGroups != nil {
		jit = *opts.JITGroups
	}
	if opts.Tracker == nil {
		opts.Tracker = dedup.Disabled{}
	}
	return &OktaProcessor[U]{
		secret:    auth.NewSharedSecret(secret),
		dir:       dir,
		initiator: initiator,
		tracker:   opts.Tracker,
		jit:       jit,
		logger:    logging.OrDiscard(logger).WithField(logging.FieldSource, sourceOkta),
	}
}

// Process answers verification challenges (GET) and applies event batches
// (POST). Events run concurrently; the delivery fails with the first event
// error once every event has finished.
func (p *OktaProcessor[U]) Process(ctx context.Context, req Request) Response {
	switch req.Method {
	case http.MethodGet:
		return Verify(req)
	case http.MethodPost:
	default:
		return Response{StatusCode: http.StatusMethodNotAllowed}
	}

	if !p.secret.Authorized(req.Headers) {
		p.logger.WithError(ErrInvalidAuthorization).Warn("rejecting delivery")
		metrics.HookRequestsTotal.WithLabelValues(sourceOkta, "unauthorized").Inc()
		return unauthorized()
	}

	var payload models.OktaHookPayload
	if err := json.Unmarshal(req.Body, &payload); err != nil {
		p.logger.WithError(err).Warn("malformed delivery body")
		metrics.HookRequestsTotal.WithLabelValues(sourceOkta, "bad_request").Inc()
		return badRequest()
	}

	var g errgroup.Group
	for _, ev := range payload.Data.Events {
		ev := ev
		g.Go(func() error {
			return p.processEvent(ctx, ev)
		})
	}
	if err := g.Wait(); err != nil {
		p.logger.WithError(err).Error("delivery failed")
		metrics.HookRequestsTotal.WithLabelValues(sourceOkta, "failed").Inc()
		return failed()
	}

	metrics.HookRequestsTotal.WithLabelValues(sourceOkta, "ok").Inc()
	return ok()
}

func (p *OktaProcessor[U]) processEvent(ctx context.Context, ev models.OktaEvent) (err error) {
	log := p.logger.WithFields(logrus.Fields{
		logging.FieldEventID:   ev.UUID,
		logging.FieldEventType: ev.EventType,
	})

	if classify.SkipOkta(ev) {
		log.WithField("result", ev.Outcome.Result).Info("skipping unsuccessful event")
		metrics.EventsTotal.WithLabelValues(sourceOkta, unclassified, metrics.OutcomeSkipped).Inc()
		return nil
	}

	op, err := classify.ClassifyOkta(ev)
	if err != nil {
		metrics.EventsTotal.WithLabelValues(sourceOkta, unclassified, metrics.OutcomeFailed).Inc()
		return fmt.Errorf("event %s: %w", ev.UUID, err)
	}

	dup, err := p.tracker.IsDuplicate(ctx, ev.UUID)
	if err != nil {
		return fmt.Errorf("event %s: %w", ev.UUID, err)
	}
	if dup {
		log.Info("duplicate event, skipping")
		metrics.DuplicateEventsTotal.WithLabelValues(sourceOkta).Inc()
		return nil
	}

	if err := p.tracker.StartProcessing(ctx, ev.UUID); err != nil {
		return fmt.Errorf("event %s: %w", ev.UUID, err)
	}
	defer func() {
		if stopErr := p.tracker.StopProcessing(ctx, ev.UUID, err); stopErr != nil {
			log.WithError(stopErr).Warn("failed to stop processing")
			if err == nil {
				err = stopErr
			}
		}
		outcome := metrics.OutcomeOK
		if err != nil {
			outcome = metrics.OutcomeFailed
		}
		metrics.EventsTotal.WithLabelValues(sourceOkta, op.Kind.String(), outcome).Inc()
	}()

	log.WithField(logging.FieldOperation, op.Kind.String()).Info("processing event")
	if err := p.dispatch(ctx, op); err != nil {
		return fmt.Errorf("event %s (%s): %w", ev.UUID, ev.EventType, err)
	}
	return nil
}

func (p *OktaProcessor[U]) dispatch(ctx context.Context, op classify.Operation) error {
	switch op.Kind {
	case classify.CreateUser:
		return p.createUser(ctx, op)
	case classify.UpdateUser:
		if op.Status == nil && op.Profile == nil {
			profile, err := p.initiator.GetProfile(ctx, op.SourceUserID)
			if err != nil {
				return err
			}
			op.Profile = &profile
		}
	}
	_, err := apply(ctx, p.dir, op, p.jit)
	return err
}

// createUser creates the user, then copies its Okta groups by the new id.
func (p *OktaProcessor[U]) createUser(ctx context.Context, op classify.Operation) error {
	user, err := p.initiator.GetUser(ctx, op.SourceUserID)
	if err != nil {
		return err
	}
	op.NewUser = user

	id, err := apply(ctx, p.dir, op, p.jit)
	if err != nil {
		return err
	}

	groups, err := p.initiator.GroupNames(ctx, user.ID)
	if err != nil {
		return err
	}
	var g errgroup.Group
	for _, name := range groups {
		name := name
		g.Go(func() error {
			return p.dir.AddUserToGroupByID(ctx, id, name, p.jit)
		})
	}
	return g.Wait()
}
