// Package seeder generates synthetic IdP deliveries and replays them
// against a running bridge, for local testing and load checks.
package seeder

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"net/url"
	"strings"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/PratikDhanave/idp-hook-bridge/internal/classify"
	"github.com/PratikDhanave/idp-hook-bridge/internal/models"
)

// Auth0 operations the generator can produce.
var Auth0Kinds = []string{"create_user", "block", "unblock", "update_profile", "assign_roles", "remove_roles", "delete_factor", "create_role", "delete_user"}

// Seed makes generation reproducible.
func Seed(seed int64) {
	gofakeit.Seed(seed)
}

func oktaUserID() string {
	return "00u" + gofakeit.LetterN(17)
}

// GenerateOktaEvent builds one successful event of eventType about a random
// user. Unknown types are generated with a User target only.
func GenerateOktaEvent(eventType string) models.OktaEvent {
	userID := oktaUserID()
	login := gofakeit.Email()

	ev := models.OktaEvent{
		UUID:      gofakeit.UUID(),
		EventType: eventType,
		Outcome:   models.OktaOutcome{Result: "SUCCESS"},
		Target: []models.OktaTarget{{
			ID:          userID,
			Type:        "User",
			AlternateID: login,
			DisplayName: gofakeit.Name(),
		}},
	}

	switch eventType {
	case classify.OktaProfileUpdate:
		ev.DebugContext.DebugData = map[string]any{"requestUri": "/api/v1/users/" + userID}
	case classify.OktaFactorDeactivate:
		ev.Outcome.Reason = "User reset DUO_SECURITY factor"
	case classify.OktaMembershipAdd, classify.OktaMembershipRemove:
		ev.Target = append(ev.Target, models.OktaTarget{
			ID:          "00g" + gofakeit.LetterN(17),
			Type:        "UserGroup",
			DisplayName: gofakeit.JobDescriptor() + " " + gofakeit.JobLevel(),
		})
	}
	return ev
}

// OktaDelivery builds one event hook payload with count events whose types
// are drawn from types, or from every supported type when types is empty.
func OktaDelivery(count int, types []string) models.OktaHookPayload {
	if len(types) == 0 {
		types = classify.OktaEventTypes
	}
	var p models.OktaHookPayload
	p.EventType = "com.okta.event_hook"
	for i := 0; i < count; i++ {
		p.Data.Events = append(p.Data.Events, GenerateOktaEvent(types[rand.Intn(len(types))]))
	}
	return p
}

func raw(v any) json.RawMessage {
	b, _ := json.Marshal(v)
	return b
}

// GenerateAuth0Event builds one logged management API call of kind.
func GenerateAuth0Event(kind string) (models.Auth0Event, error) {
	userID := "auth0|" + strings.ToLower(gofakeit.LetterN(24))
	userPath := "/api/v2/users/" + url.PathEscape(userID)
	roleID := "rol_" + gofakeit.LetterN(16)

	ev := models.Auth0Event{Response: models.Auth0Response{StatusCode: 200}}
	switch kind {
	case "create_user":
		ev.Request = models.Auth0Request{Method: "POST", Path: "/api/v2/users"}
		ev.Response.StatusCode = 201
		ev.Response.Body = raw(map[string]any{
			"user_id": userID,
			"email":   gofakeit.Email(),
			"name":    gofakeit.FirstName() + " " + gofakeit.LastName(),
		})
	case "block", "unblock":
		ev.Request = models.Auth0Request{Method: "PATCH", Path: userPath, Body: raw(map[string]any{"blocked": kind == "block"})}
	case "update_profile":
		ev.Request = models.Auth0Request{Method: "PATCH", Path: userPath, Body: raw(map[string]any{
			"email": gofakeit.Email(),
			"name":  gofakeit.Name(),
		})}
	case "assign_roles", "remove_roles":
		method := "POST"
		if kind == "remove_roles" {
			method = "DELETE"
		}
		ev.Request = models.Auth0Request{Method: method, Path: userPath + "/roles", Body: raw(map[string]any{"roles": []string{roleID}})}
		ev.Response.StatusCode = 204
	case "delete_factor":
		ev.Request = models.Auth0Request{Method: "DELETE", Path: userPath + "/multifactor/duo"}
		ev.Response.StatusCode = 204
	case "create_role":
		ev.Request = models.Auth0Request{Method: "POST", Path: "/api/v2/roles"}
		ev.Response.Body = raw(map[string]any{"id": roleID, "name": gofakeit.JobTitle()})
	case "delete_user":
		ev.Request = models.Auth0Request{Method: "DELETE", Path: userPath}
		ev.Response.StatusCode = 204
	default:
		return models.Auth0Event{}, fmt.Errorf("unknown auth0 kind %q", kind)
	}
	return ev, nil
}

// Auth0Batch builds count events with kinds drawn from kinds, or from every
// kind when kinds is empty.
func Auth0Batch(count int, kinds []string) ([]models.Auth0Event, error) {
	if len(kinds) == 0 {
		kinds = Auth0Kinds
	}
	batch := make([]models.Auth0Event, 0, count)
	for i := 0; i < count; i++ {
		ev, err := GenerateAuth0Event(kinds[rand.Intn(len(kinds))])
		if err != nil {
			return nil, err
		}
		batch = append(batch, ev)
	}
	return batch, nil
}
