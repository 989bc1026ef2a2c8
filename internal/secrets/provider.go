// Package secrets loads the credentials the bridge needs from the
// environment or a cloud secret manager.
package secrets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Secrets are the credentials shared with the source IdP and the recipient.
type Secrets struct {
	// InitiatorAPIKey authenticates calls to the source IdP (Okta SSWS token).
	InitiatorAPIKey string `json:"apiKey"`
	// RecipientAuthorizationSecret is the shared webhook secret expected in
	// the Authorization header of every delivery.
	RecipientAuthorizationSecret string `json:"authorization"`
	RecipientIntegrationKey      string `json:"integrationKey"`
	RecipientSignatureSecret     string `json:"signatureSecret"`
}

// Provider loads secrets once at startup.
type Provider interface {
	Load(ctx context.Context) (Secrets, error)
}

var ErrMissingSecret = errors.New("missing secret")

// Validate checks the recipient credentials are present, and the initiator
// key when the source IdP is called back.
func (s Secrets) Validate(needInitiator bool) error {
	var missing []string
	if s.RecipientAuthorizationSecret == "" {
		missing = append(missing, "authorization")
	}
	if s.RecipientIntegrationKey == "" {
		missing = append(missing, "integrationKey")
	}
	if s.RecipientSignatureSecret == "" {
		missing = append(missing, "signatureSecret")
	}
	if needInitiator && s.InitiatorAPIKey == "" {
		missing = append(missing, "apiKey")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingSecret, strings.Join(missing, ", "))
	}
	return nil
}

// decode parses the JSON document stored by the cloud backends.
func decode(data []byte) (Secrets, error) {
	var s Secrets
	if err := json.Unmarshal(data, &s); err != nil {
		return Secrets{}, fmt.Errorf("decode secret payload: %w", err)
	}
	return s, nil
}
