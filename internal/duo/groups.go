package duo

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/PratikDhanave/idp-hook-bridge/internal/logging"
)

// Group is a Duo group. Desc carries the IdP's stable id for groups created
// from roles, so they can be found after a rename.
type Group struct {
	GroupID string `json:"group_id"`
	Name    string `json:"name"`
	Desc    string `json:"desc,omitempty"`
}

// FindGroup pages through all groups for one whose name or description
// equals nameOrAlias.
func (c *Client) FindGroup(ctx context.Context, nameOrAlias string) (*Group, error) {
	group, err := searchPages(ctx, c, apiPrefix+"/groups", func(g Group) bool {
		return g.Name == nameOrAlias || g.Desc == nameOrAlias
	})
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// CreateGroup creates a group and returns its id. A non-empty alias is
// stored as the description.
func (c *Client) CreateGroup(ctx context.Context, name, alias string) (string, error) {
	c.logger.WithField(logging.FieldGroup, name).Info("creating group")

	params := url.Values{"name": {name}}
	setIfPresent(params, "desc", alias)

	var created Group
	if err := c.do(ctx, http.MethodPost, apiPrefix+"/groups", params, &created); err != nil {
		return "", err
	}
	return created.GroupID, nil
}

// RenameGroup renames the group whose name or description is alias.
func (c *Client) RenameGroup(ctx context.Context, alias, name string) error {
	c.logger.WithField(logging.FieldGroup, alias).Infof("renaming group to %s", name)

	group, err := c.FindGroup(ctx, alias)
	if err != nil {
		return fmt.Errorf("rename group %s: %w", alias, err)
	}
	return c.do(ctx, http.MethodPost, apiPrefix+"/groups/"+url.PathEscape(group.GroupID), url.Values{"name": {name}}, nil)
}

func (c *Client) DeleteGroup(ctx context.Context, nameOrAlias string) error {
	c.logger.WithField(logging.FieldGroup, nameOrAlias).Info("deleting group")

	group, err := c.FindGroup(ctx, nameOrAlias)
	if err != nil {
		return fmt.Errorf("delete group %s: %w", nameOrAlias, err)
	}
	return c.do(ctx, http.MethodDelete, apiPrefix+"/groups/"+url.PathEscape(group.GroupID), nil, nil)
}
