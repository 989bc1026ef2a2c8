package duo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/PratikDhanave/idp-hook-bridge/internal/logging"
	"github.com/PratikDhanave/idp-hook-bridge/internal/models"
)

// Duo user statuses.
const (
	StatusActive   = "active"
	StatusDisabled = "disabled"
)

// resettableFactors are the factor names that trigger a delete-and-recreate.
var resettableFactors = []string{"duo", "DUO_SECURITY"}

// User is a Duo user as returned by the Admin API.
type User struct {
	UserID    string      `json:"user_id"`
	Username  string      `json:"username"`
	Alias1    string      `json:"alias1,omitempty"`
	Alias2    string      `json:"alias2,omitempty"`
	Alias3    string      `json:"alias3,omitempty"`
	Alias4    string      `json:"alias4,omitempty"`
	RealName  string      `json:"realname,omitempty"`
	Email     string      `json:"email,omitempty"`
	Status    string      `json:"status,omitempty"`
	Notes     string      `json:"notes,omitempty"`
	FirstName string      `json:"firstname,omitempty"`
	LastName  string      `json:"lastname,omitempty"`
	Groups    []UserGroup `json:"groups,omitempty"`
}

// UserGroup is a group membership embedded in a User.
type UserGroup struct {
	GroupID string `json:"group_id"`
	Name    string `json:"name,omitempty"`
}

// setIfPresent adds key only when value is non-empty.
func setIfPresent(params url.Values, key, value string) {
	if value != "" {
		params.Set(key, value)
	}
}

func realName(p models.Profile) string {
	return fmt.Sprintf("%s %s %s", p.FirstName, p.MiddleName, p.LastName)
}

func statusParam(s *models.UserStatus) string {
	if s != nil && *s == models.StatusDisabled {
		return StatusDisabled
	}
	return StatusActive
}

func (c *Client) userLog(user *User) logrus.FieldLogger {
	return c.logger.WithField(logging.FieldUser, user.UserID)
}

// GetUser looks a user up by username or alias. It returns nil, nil when no
// such user exists.
func (c *Client) GetUser(ctx context.Context, usernameOrAlias string) (*User, error) {
	var users []User
	params := url.Values{"username": {usernameOrAlias}}
	if err := c.do(ctx, http.MethodGet, apiPrefix+"/users", params, &users); err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, nil
	}
	return &users[0], nil
}

// CreateUser creates user and returns the new Duo user id. Only fields
// present on the profile are sent; realname is always sent.
func (c *Client) CreateUser(ctx context.Context, user models.InitiatorUser) (string, error) {
	params := url.Values{}
	setIfPresent(params, "username", user.Username)
	setIfPresent(params, "email", user.Profile.Email)
	setIfPresent(params, "firstname", user.Profile.FirstName)
	setIfPresent(params, "lastname", user.Profile.LastName)
	params.Set("realname", realName(user.Profile))
	params.Set("status", statusParam(user.Profile.Status))
	setIfPresent(params, "alias1", user.Profile.Alias)

	return c.createUser(ctx, params)
}

func (c *Client) createUser(ctx context.Context, params url.Values) (string, error) {
	c.logger.WithField(logging.FieldUser, params.Get("username")).Info("creating user")

	var created User
	if err := c.do(ctx, http.MethodPost, apiPrefix+"/users", params, &created); err != nil {
		return "", err
	}
	return created.UserID, nil
}

// DeleteUser removes the user along with every enrolled phone and token.
func (c *Client) DeleteUser(ctx context.Context, user *User) error {
	c.userLog(user).Info("deleting user")
	return c.do(ctx, http.MethodDelete, apiPrefix+"/users/"+url.PathEscape(user.UserID), nil, nil)
}

func (c *Client) modifyUser(ctx context.Context, user *User, params url.Values) error {
	return c.do(ctx, http.MethodPost, apiPrefix+"/users/"+url.PathEscape(user.UserID), params, nil)
}

// UpdateProfile writes the non-empty fields of profile.
func (c *Client) UpdateProfile(ctx context.Context, user *User, profile models.Profile) error {
	c.userLog(user).Info("updating profile")

	params := url.Values{}
	setIfPresent(params, "email", profile.Email)
	setIfPresent(params, "firstname", profile.FirstName)
	setIfPresent(params, "lastname", profile.LastName)
	params.Set("realname", realName(profile))
	return c.modifyUser(ctx, user, params)
}

func (c *Client) Disable(ctx context.Context, user *User) error {
	c.userLog(user).Info("disabling user")
	return c.modifyUser(ctx, user, url.Values{"status": {StatusDisabled}})
}

func (c *Client) Reenable(ctx context.Context, user *User) error {
	c.userLog(user).Info("re-enabling user")
	return c.modifyUser(ctx, user, url.Values{"status": {StatusActive}})
}

// ResetFactor resets the Duo factor of user. Duo has no reset primitive, so
// the user is deleted (dropping all enrolled devices) and recreated with the
// same profile and aliases, then put back into its groups. Other factor
// names are ignored.
func (c *Client) ResetFactor(ctx context.Context, user *User, factor string) error {
	if !isResettable(factor) {
		c.userLog(user).WithField("factor", factor).Debug("ignoring reset of non-duo factor")
		return nil
	}

	if err := c.DeleteUser(ctx, user); err != nil {
		return fmt.Errorf("reset %s: delete: %w", user.Username, err)
	}

	params := url.Values{}
	setIfPresent(params, "username", user.Username)
	setIfPresent(params, "email", user.Email)
	setIfPresent(params, "firstname", user.FirstName)
	setIfPresent(params, "lastname", user.LastName)
	setIfPresent(params, "realname", user.RealName)
	setIfPresent(params, "status", user.Status)
	setIfPresent(params, "alias1", user.Alias1)
	setIfPresent(params, "alias2", user.Alias2)
	setIfPresent(params, "alias3", user.Alias3)
	setIfPresent(params, "alias4", user.Alias4)

	newID, err := c.createUser(ctx, params)
	if err != nil {
		return fmt.Errorf("reset %s: recreate: %w", user.Username, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, group := range user.Groups {
		groupID := group.GroupID
		g.Go(func() error {
			return c.addUserToGroupID(gctx, newID, groupID)
		})
	}
	return g.Wait()
}

func isResettable(factor string) bool {
	for _, f := range resettableFactors {
		if strings.EqualFold(f, factor) {
			return true
		}
	}
	return false
}

// AddUserToGroup adds user to the group named (or aliased) groupName. With
// jit set a missing group is created first; otherwise it is ErrNotFound.
func (c *Client) AddUserToGroup(ctx context.Context, user *User, groupName string, jit bool) error {
	return c.AddUserToGroupByID(ctx, user.UserID, groupName, jit)
}

// AddUserToGroupByID is AddUserToGroup for a user known only by id, such as
// one created moments ago.
func (c *Client) AddUserToGroupByID(ctx context.Context, userID, groupName string, jit bool) error {
	c.logger.WithFields(logrus.Fields{logging.FieldUser: userID, logging.FieldGroup: groupName}).
		Info("adding user to group")

	group, err := c.FindGroup(ctx, groupName)
	switch {
	case errors.Is(err, ErrNotFound) && jit:
		groupID, createErr := c.CreateGroup(ctx, groupName, "")
		if createErr != nil {
			return createErr
		}
		return c.addUserToGroupID(ctx, userID, groupID)
	case errors.Is(err, ErrNotFound):
		return fmt.Errorf("group %s %w, cannot add user %s", groupName, ErrNotFound, userID)
	case err != nil:
		return err
	}
	return c.addUserToGroupID(ctx, userID, group.GroupID)
}

func (c *Client) addUserToGroupID(ctx context.Context, userID, groupID string) error {
	return c.do(ctx, http.MethodPost, apiPrefix+"/users/"+url.PathEscape(userID)+"/groups",
		url.Values{"group_id": {groupID}}, nil)
}

// RemoveUserFromGroup removes user from the named group. Groups are never
// created here, so a missing group is ErrNotFound.
func (c *Client) RemoveUserFromGroup(ctx context.Context, user *User, groupName string) error {
	c.userLog(user).WithField(logging.FieldGroup, groupName).Info("removing user from group")

	group, err := c.FindGroup(ctx, groupName)
	if err != nil {
		return fmt.Errorf("remove %s from %s: %w", user.UserID, groupName, err)
	}
	path := apiPrefix + "/users/" + url.PathEscape(user.UserID) + "/groups/" + url.PathEscape(group.GroupID)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}
