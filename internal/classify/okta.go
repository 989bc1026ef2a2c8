package classify

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/PratikDhanave/idp-hook-bridge/internal/models"
)

// Okta event types the bridge subscribes to.
const (
	OktaUserCreate       = "user.lifecycle.create"
	OktaUserDelete       = "user.lifecycle.delete.initiated"
	OktaUserSuspend      = "user.lifecycle.suspend"
	OktaUserUnsuspend    = "user.lifecycle.unsuspend"
	OktaProfileUpdate    = "user.account.update_profile"
	OktaFactorDeactivate = "user.mfa.factor.deactivate"
	OktaMembershipAdd    = "group.user_membership.add"
	OktaMembershipRemove = "group.user_membership.remove"
)

// OktaEventTypes lists every supported type, in subscription order.
var OktaEventTypes = []string{
	OktaUserCreate,
	OktaUserDelete,
	OktaUserSuspend,
	OktaUserUnsuspend,
	OktaProfileUpdate,
	OktaMembershipAdd,
	OktaMembershipRemove,
	OktaFactorDeactivate,
}

var (
	ErrUnknownEventType = errors.New("unknown event type")
	ErrMissingTarget    = errors.New("event target not found")
	ErrMissingFactor    = errors.New("factor not found in event outcome")
)

var factorReason = regexp.MustCompile(`reset (\w+) factor`)

// SkipOkta reports whether the event describes a failed action. Such events
// are dropped before classification.
func SkipOkta(ev models.OktaEvent) bool {
	return ev.Outcome.Result != "" && !strings.EqualFold(ev.Outcome.Result, "SUCCESS")
}

// ClassifyOkta maps an Okta System Log event to an operation. Unlike Auth0,
// an unrecognised type is an error rather than a silent skip: the hook is
// only subscribed to the types above, so anything else is a misconfiguration.
func ClassifyOkta(ev models.OktaEvent) (Operation, error) {
	switch ev.EventType {
	case OktaUserCreate, OktaUserDelete, OktaUserSuspend, OktaUserUnsuspend,
		OktaProfileUpdate, OktaFactorDeactivate, OktaMembershipAdd, OktaMembershipRemove:
	default:
		return Operation{}, fmt.Errorf("%w: %q", ErrUnknownEventType, ev.EventType)
	}

	user, ok := findTarget(ev, "User")
	if !ok {
		return Operation{}, fmt.Errorf("%w: no User target in %s event %s", ErrMissingTarget, ev.EventType, ev.UUID)
	}
	sourceID := user.ID
	if sourceID == "" {
		sourceID = user.AlternateID
	}
	op := Operation{UserRef: user.AlternateID, SourceUserID: sourceID}

	switch ev.EventType {
	case OktaUserCreate:
		op.Kind = CreateUser
	case OktaUserDelete:
		op.Kind = DeleteUser
	case OktaUserSuspend:
		op.Kind = UpdateUser
		op.Status = models.StatusPtr(models.StatusDisabled)
	case OktaUserUnsuspend:
		op.Kind = UpdateUser
		op.Status = models.StatusPtr(models.StatusActive)
	case OktaProfileUpdate:
		// Okta does not send the changed values; the processor fetches the
		// profile of the user named in the request URI.
		op.Kind = UpdateUser
		if id := lastSegment(requestURI(ev)); id != "" {
			op.SourceUserID = id
		}
	case OktaFactorDeactivate:
		match := factorReason.FindStringSubmatch(ev.Outcome.Reason)
		if match == nil {
			return Operation{}, fmt.Errorf("%w: reason %q", ErrMissingFactor, ev.Outcome.Reason)
		}
		op.Kind = DeleteUserFactor
		op.Factor = match[1]
	case OktaMembershipAdd, OktaMembershipRemove:
		group, ok := findTarget(ev, "UserGroup")
		if !ok {
			return Operation{}, fmt.Errorf("%w: no UserGroup target in %s event %s", ErrMissingTarget, ev.EventType, ev.UUID)
		}
		op.Kind = AssignRoleToUser
		if ev.EventType == OktaMembershipRemove {
			op.Kind = RemoveRoleFromUser
		}
		op.Groups = []string{group.DisplayName}
	}
	return op, nil
}

func findTarget(ev models.OktaEvent, targetType string) (models.OktaTarget, bool) {
	for _, t := range ev.Target {
		if t.Type == targetType {
			return t, true
		}
	}
	return models.OktaTarget{}, false
}

func requestURI(ev models.OktaEvent) string {
	uri, _ := ev.DebugContext.DebugData["requestUri"].(string)
	return uri
}

func lastSegment(path string) string {
	if path == "" {
		return ""
	}
	segments := strings.Split(path, "/")
	return segments[len(segments)-1]
}
