package secrets

import (
	"context"

	"github.com/spf13/viper"
)

// Environment variable names read by EnvProvider.
const (
	EnvInitiatorAPIKey              = "INITIATOR_API_KEY"
	EnvRecipientAuthorizationSecret = "RECIPIENT_AUTHORIZATION_SECRET"
	EnvRecipientIntegrationKey      = "RECIPIENT_INTEGRATION_KEY"
	EnvSignatureSecret              = "SIGNATURE_SECRET"
)

// EnvProvider reads secrets from environment variables.
type EnvProvider struct {
	v *viper.Viper
}

// NewEnvProvider reads through v, or the process environment when v is nil.
func NewEnvProvider(v *viper.Viper) *EnvProvider {
	if v == nil {
		v = viper.New()
		v.AutomaticEnv()
	}
	return &EnvProvider{v: v}
}

func (p *EnvProvider) Load(context.Context) (Secrets, error) {
	return Secrets{
		InitiatorAPIKey:              p.v.GetString(EnvInitiatorAPIKey),
		RecipientAuthorizationSecret: p.v.GetString(EnvRecipientAuthorizationSecret),
		RecipientIntegrationKey:      p.v.GetString(EnvRecipientIntegrationKey),
		RecipientSignatureSecret:     p.v.GetString(EnvSignatureSecret),
	}, nil
}
