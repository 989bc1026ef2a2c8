package okta

import (
	"context"
	"fmt"

	oktasdk "github.com/okta/okta-sdk-golang/v2/okta"

	"github.com/PratikDhanave/idp-hook-bridge/internal/classify"
)

// eventHookAPI is the subset of the SDK's event hook resource the client calls.
type eventHookAPI interface {
	ListEventHooks(ctx context.Context) ([]*oktasdk.EventHook, *oktasdk.Response, error)
	CreateEventHook(ctx context.Context, body oktasdk.EventHook) (*oktasdk.EventHook, *oktasdk.Response, error)
	DeactivateEventHook(ctx context.Context, eventHookID string) (*oktasdk.EventHook, *oktasdk.Response, error)
	DeleteEventHook(ctx context.Context, eventHookID string) (*oktasdk.Response, error)
	VerifyEventHook(ctx context.Context, eventHookID string) (*oktasdk.EventHook, *oktasdk.Response, error)
}

// NewEventHook describes a hook delivering every event type the bridge
// handles to endpoint. Okta sends authSecret back in the Authorization
// header of each delivery.
func NewEventHook(name, endpoint, authSecret string) oktasdk.EventHook {
	return oktasdk.EventHook{
		Name: name,
		Events: &oktasdk.EventSubscriptions{
			Type:  "EVENT_TYPE",
			Items: append([]string(nil), classify.OktaEventTypes...),
		},
		Channel: &oktasdk.EventHookChannel{
			Type:    "HTTP",
			Version: "1.0.0",
			Config: &oktasdk.EventHookChannelConfig{
				Uri: endpoint,
				AuthScheme: &oktasdk.EventHookChannelConfigAuthScheme{
					Type:  "HEADER",
					Key:   "Authorization",
					Value: authSecret,
				},
			},
		},
	}
}

// SetupEventHook replaces any hook called name with a new one and asks Okta
// to verify it. Verification calls back into the running bridge, so the
// endpoint must be reachable.
func (c *Client) SetupEventHook(ctx context.Context, name, endpoint, authSecret string) (*oktasdk.EventHook, error) {
	existing, _, err := c.hooks.ListEventHooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list event hooks: %w", err)
	}

	for _, h := range existing {
		if h == nil || h.Name != name {
			continue
		}
		c.logger.Debugf("found event hook %s (%s), deleting it", name, h.Id)
		if _, _, err := c.hooks.DeactivateEventHook(ctx, h.Id); err != nil {
			return nil, fmt.Errorf("deactivate event hook %s: %w", h.Id, err)
		}
		if _, err := c.hooks.DeleteEventHook(ctx, h.Id); err != nil {
			return nil, fmt.Errorf("delete event hook %s: %w", h.Id, err)
		}
	}

	created, _, err := c.hooks.CreateEventHook(ctx, NewEventHook(name, endpoint, authSecret))
	if err != nil {
		return nil, fmt.Errorf("create event hook: %w", err)
	}

	verified, _, err := c.hooks.VerifyEventHook(ctx, created.Id)
	if err != nil {
		return created, fmt.Errorf("verify event hook %s: %w", created.Id, err)
	}
	return verified, nil
}
