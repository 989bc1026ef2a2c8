package secrets

import (
	"context"
	"fmt"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
)

// GCPProvider reads the latest version of a JSON secret from Google Secret
// Manager.
type GCPProvider struct {
	name   string
	access func(ctx context.Context, name string) ([]byte, error)
	close  func() error
}

// NewGCPProvider uses application default credentials.
func NewGCPProvider(ctx context.Context, projectID, secretName string) (*GCPProvider, error) {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create secretmanager client: %w", err)
	}

	access := func(ctx context.Context, name string) ([]byte, error) {
		result, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: name})
		if err != nil {
			return nil, err
		}
		return result.GetPayload().GetData(), nil
	}

	return &GCPProvider{
		name:   secretVersionName(projectID, secretName),
		access: access,
		close:  client.Close,
	}, nil
}

func secretVersionName(projectID, secretName string) string {
	return fmt.Sprintf("projects/%s/secrets/%s/versions/latest", projectID, secretName)
}

func (p *GCPProvider) Load(ctx context.Context) (Secrets, error) {
	data, err := p.access(ctx, p.name)
	if err != nil {
		return Secrets{}, fmt.Errorf("failed to access secret version %s: %w", p.name, err)
	}
	return decode(data)
}

// Close releases the underlying client.
func (p *GCPProvider) Close() error {
	if p.close == nil {
		return nil
	}
	return p.close()
}
