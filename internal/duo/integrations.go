package duo

import (
	"context"
	"errors"
	"net/http"
	"net/url"
)

// Integration is a Duo application. SecretKey is only returned on create.
type Integration struct {
	IntegrationKey string `json:"integration_key"`
	SecretKey      string `json:"secret_key,omitempty"`
	Name           string `json:"name"`
	Type           string `json:"type,omitempty"`
}

// FindIntegration returns the integration called name.
func (c *Client) FindIntegration(ctx context.Context, name string) (*Integration, error) {
	in, err := searchPages(ctx, c, apiPrefix+"/integrations", func(i Integration) bool {
		return i.Name == name
	})
	if err != nil {
		return nil, err
	}
	return &in, nil
}

func (c *Client) DeleteIntegration(ctx context.Context, integrationKey string) error {
	return c.do(ctx, http.MethodDelete, apiPrefix+"/integrations/"+url.PathEscape(integrationKey), nil, nil)
}

// CreateAdminAPIIntegration creates an Admin API application allowed to
// read and write users and groups.
func (c *Client) CreateAdminAPIIntegration(ctx context.Context, name string) (*Integration, error) {
	params := url.Values{
		"type":                    {"adminapi"},
		"name":                    {name},
		"adminapi_read_resource":  {"1"},
		"adminapi_write_resource": {"1"},
	}
	var created Integration
	if err := c.do(ctx, http.MethodPost, apiPrefix+"/integrations", params, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// SetupAdminAPI replaces any integration called name with a fresh Admin API
// integration and returns its keys.
func (c *Client) SetupAdminAPI(ctx context.Context, name string) (*Integration, error) {
	existing, err := c.FindIntegration(ctx, name)
	switch {
	case err == nil:
		c.logger.Debugf("found admin api %s, deleting it", name)
		if err := c.DeleteIntegration(ctx, existing.IntegrationKey); err != nil {
			return nil, err
		}
	case !errors.Is(err, ErrNotFound):
		return nil, err
	}

	c.logger.Debugf("creating admin api %s", name)
	return c.CreateAdminAPIIntegration(ctx, name)
}
