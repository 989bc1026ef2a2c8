// Package okta reads users and groups from the Okta management API and
// manages the event hook that feeds the bridge.
package okta

import (
	"context"
	"fmt"
	"strings"

	oktasdk "github.com/okta/okta-sdk-golang/v2/okta"
	"github.com/sirupsen/logrus"

	"github.com/PratikDhanave/idp-hook-bridge/internal/logging"
	"github.com/PratikDhanave/idp-hook-bridge/internal/models"
)

// GroupTypeOkta marks groups mastered in Okta, as opposed to app or
// directory-imported groups.
const GroupTypeOkta = "OKTA_GROUP"

// userAPI is the subset of the SDK's user resource the client calls.
type userAPI interface {
	GetUser(ctx context.Context, userID string) (*oktasdk.User, *oktasdk.Response, error)
	ListUserGroups(ctx context.Context, userID string) ([]*oktasdk.Group, *oktasdk.Response, error)
}

// Client reads initiator users from Okta.
type Client struct {
	users  userAPI
	hooks  eventHookAPI
	logger logrus.FieldLogger
}

// NewClient connects to the org at orgURL with an SSWS API token.
func NewClient(ctx context.Context, orgURL, apiToken string, logger logrus.FieldLogger) (*Client, error) {
	orgURL = strings.TrimSuffix(strings.TrimRight(orgURL, "/"), "/api/v1")

	_, sdk, err := oktasdk.NewClient(ctx,
		oktasdk.WithOrgUrl(orgURL),
		oktasdk.WithToken(apiToken),
		oktasdk.WithCache(false),
	)
	if err != nil {
		return nil, fmt.Errorf("create okta client: %w", err)
	}

	return &Client{
		users:  sdk.User,
		hooks:  sdk.EventHook,
		logger: logging.OrDiscard(logger).WithField(logging.FieldService, "okta"),
	}, nil
}

// GetUser fetches a user by id or login. Okta users are always created
// active on the recipient side.
func (c *Client) GetUser(ctx context.Context, userID string) (models.InitiatorUser, error) {
	u, _, err := c.users.GetUser(ctx, userID)
	if err != nil {
		return models.InitiatorUser{}, fmt.Errorf("get okta user %s: %w", userID, err)
	}

	profile := toProfile(u.Profile)
	profile.Status = models.StatusPtr(models.StatusActive)

	return models.InitiatorUser{
		ID:       u.Id,
		Username: profileString(u.Profile, "login"),
		Profile:  profile,
	}, nil
}

// GetProfile fetches the current profile of a user. Profile update events
// do not carry the changed values.
func (c *Client) GetProfile(ctx context.Context, userID string) (models.Profile, error) {
	u, _, err := c.users.GetUser(ctx, userID)
	if err != nil {
		return models.Profile{}, fmt.Errorf("get okta profile %s: %w", userID, err)
	}
	return toProfile(u.Profile), nil
}

// GroupNames lists the names of the Okta-mastered groups of a user.
func (c *Client) GroupNames(ctx context.Context, userID string) ([]string, error) {
	groups, _, err := c.users.ListUserGroups(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list groups of okta user %s: %w", userID, err)
	}

	var names []string
	for _, g := range groups {
		if g == nil || g.Type != GroupTypeOkta || g.Profile == nil {
			continue
		}
		names = append(names, g.Profile.Name)
	}
	return names, nil
}

func toProfile(p *oktasdk.UserProfile) models.Profile {
	return models.Profile{
		Email:      profileString(p, "email"),
		FirstName:  profileString(p, "firstName"),
		LastName:   profileString(p, "lastName"),
		MiddleName: profileString(p, "middleName"),
	}
}

func profileString(p *oktasdk.UserProfile, key string) string {
	if p == nil {
		return ""
	}
	s, _ := (*p)[key].(string)
	return s
}
