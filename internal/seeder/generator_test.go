package seeder

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PratikDhanave/idp-hook-bridge/internal/classify"
	"github.com/PratikDhanave/idp-hook-bridge/internal/models"
)

func TestGenerateOktaEvent_Classifies(t *testing.T) {
	Seed(42)
	for _, eventType := range classify.OktaEventTypes {
		t.Run(eventType, func(t *testing.T) {
			ev := GenerateOktaEvent(eventType)
			assert.False(t, classify.SkipOkta(ev))
			_, err := classify.ClassifyOkta(ev)
			assert.NoError(t, err)
		})
	}
}

func TestOktaDelivery(t *testing.T) {
	p := OktaDelivery(5, []string{classify.OktaUserSuspend})
	require.Len(t, p.Data.Events, 5)

	seen := map[string]bool{}
	for _, ev := range p.Data.Events {
		assert.Equal(t, classify.OktaUserSuspend, ev.EventType)
		assert.False(t, seen[ev.UUID], "uuid repeated")
		seen[ev.UUID] = true
	}
}

func TestGenerateAuth0Event_Classifies(t *testing.T) {
	want := map[string]classify.Kind{
		"create_user":    classify.CreateUser,
		"block":          classify.UpdateUser,
		"unblock":        classify.UpdateUser,
		"update_profile": classify.UpdateUser,
		"assign_roles":   classify.AssignRoleToUser,
		"remove_roles":   classify.RemoveRoleFromUser,
		"delete_factor":  classify.DeleteUserFactor,
		"create_role":    classify.CreateRole,
		"delete_user":    classify.DeleteUser,
	}
	require.Len(t, want, len(Auth0Kinds))

	for _, kind := range Auth0Kinds {
		t.Run(kind, func(t *testing.T) {
			ev, err := GenerateAuth0Event(kind)
			require.NoError(t, err)
			assert.Equal(t, want[kind], classify.ClassifyAuth0(ev).Kind)
		})
	}
}

func TestGenerateAuth0Event_UnknownKind(t *testing.T) {
	_, err := GenerateAuth0Event("rename_tenant")
	assert.Error(t, err)
}

func TestSender_Send(t *testing.T) {
	var got []models.Auth0Event
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("Authorization"))
		b, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(b, &got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	batch, err := Auth0Batch(3, []string{"block"})
	require.NoError(t, err)

	status, _, err := NewSender(srv.URL, "secret").Send(context.Background(), batch)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, got, 3)
}
