package secrets

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/brianvoe/gofakeit/v6"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const payload = `{"apiKey":"okta-token","authorization":"hook-secret","integrationKey":"DIXXXX","signatureSecret":"duo-skey"}`

var want = Secrets{
	InitiatorAPIKey:              "okta-token",
	RecipientAuthorizationSecret: "hook-secret",
	RecipientIntegrationKey:      "DIXXXX",
	RecipientSignatureSecret:     "duo-skey",
}

func TestEnvProvider(t *testing.T) {
	t.Setenv(EnvInitiatorAPIKey, "okta-token")
	t.Setenv(EnvRecipientAuthorizationSecret, "hook-secret")
	t.Setenv(EnvRecipientIntegrationKey, "DIXXXX")
	t.Setenv(EnvSignatureSecret, "duo-skey")

	got, err := NewEnvProvider(nil).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestEnvProvider_ExplicitViper(t *testing.T) {
	v := viper.New()
	secret := gofakeit.Password(true, true, true, false, false, 32)
	v.Set(EnvRecipientAuthorizationSecret, secret)

	got, err := NewEnvProvider(v).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, secret, got.RecipientAuthorizationSecret)
	assert.Error(t, got.Validate(false))
}

func TestValidate(t *testing.T) {
	assert.NoError(t, want.Validate(true))

	noKey := want
	noKey.InitiatorAPIKey = ""
	assert.NoError(t, noKey.Validate(false))

	err := noKey.Validate(true)
	assert.ErrorIs(t, err, ErrMissingSecret)
	assert.Contains(t, err.Error(), "apiKey")

	err = Secrets{}.Validate(false)
	assert.Contains(t, err.Error(), "authorization, integrationKey, signatureSecret")
}

type fakeSecretsManager struct {
	out *secretsmanager.GetSecretValueOutput
	err error
	id  string
}

func (f *fakeSecretsManager) GetSecretValue(_ context.Context, in *secretsmanager.GetSecretValueInput, _ ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	f.id = aws.ToString(in.SecretId)
	return f.out, f.err
}

func TestAWSProvider(t *testing.T) {
	fake := &fakeSecretsManager{out: &secretsmanager.GetSecretValueOutput{SecretString: aws.String(payload)}}
	p := &AWSProvider{client: fake, secretID: "idpsync/prod"}

	got, err := p.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, "idpsync/prod", fake.id)
}

func TestAWSProvider_Binary(t *testing.T) {
	fake := &fakeSecretsManager{out: &secretsmanager.GetSecretValueOutput{SecretBinary: []byte(payload)}}
	got, err := (&AWSProvider{client: fake, secretID: "x"}).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestAWSProvider_Errors(t *testing.T) {
	fake := &fakeSecretsManager{err: errors.New("AccessDeniedException")}
	_, err := (&AWSProvider{client: fake, secretID: "x"}).Load(context.Background())
	assert.ErrorIs(t, err, fake.err)

	fake = &fakeSecretsManager{out: &secretsmanager.GetSecretValueOutput{SecretString: aws.String("not json")}}
	_, err = (&AWSProvider{client: fake, secretID: "x"}).Load(context.Background())
	assert.Error(t, err)
}

func TestGCPProvider(t *testing.T) {
	var requested string
	p := &GCPProvider{
		name: secretVersionName("my-project", "idpsync"),
		access: func(_ context.Context, name string) ([]byte, error) {
			requested = name
			return []byte(payload), nil
		},
	}

	got, err := p.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, "projects/my-project/secrets/idpsync/versions/latest", requested)
	assert.NoError(t, p.Close())
}
