package classify

import (
	"encoding/json"
	"net/url"
	"regexp"
	"strings"

	"github.com/PratikDhanave/idp-hook-bridge/internal/models"
)

// auth0Rule pairs a (method, path) predicate with the operation it produces.
type auth0Rule struct {
	method string
	path   *regexp.Regexp
	build  func(models.Auth0Event) Operation
}

var (
	usersCollection = regexp.MustCompile(`/api/v2/users$`)
	userResource    = regexp.MustCompile(`/api/v2/users/[\w%]+$`)
	userRoles       = regexp.MustCompile(`/api/v2/users/[\w%]+/roles$`)
	userFactor      = regexp.MustCompile(`/api/v2/users/[\w%]+/multifactor/[\w%-]+$`)
	rolesCollection = regexp.MustCompile(`/api/v2/roles$`)
	roleResource    = regexp.MustCompile(`/api/v2/roles/[\w%]+$`)
)

// Evaluated top to bottom; the first rule matching both method and path wins.
var auth0Rules = []auth0Rule{
	{method: "post", path: usersCollection, build: auth0CreateUser},
	{method: "patch", path: userResource, build: auth0UpdateUser},
	{method: "delete", path: userResource, build: auth0DeleteUser},
	{method: "post", path: userRoles, build: auth0AssignRoles},
	{method: "delete", path: userRoles, build: auth0RemoveRoles},
	{method: "delete", path: userFactor, build: auth0DeleteFactor},
	{method: "post", path: rolesCollection, build: auth0CreateRole},
	{method: "patch", path: roleResource, build: auth0UpdateRole},
	{method: "delete", path: roleResource, build: auth0DeleteRole},
}

// auth0RequestBody holds the management API request fields we react to.
type auth0RequestBody struct {
	Email   string   `json:"email"`
	Name    string   `json:"name"`
	Blocked *bool    `json:"blocked"`
	Roles   []string `json:"roles"`
}

// auth0ResponseBody holds the fields echoed back by user and role endpoints.
type auth0ResponseBody struct {
	Email  string `json:"email"`
	Name   string `json:"name"`
	UserID string `json:"user_id"`
	ID     string `json:"id"`
}

// ClassifyAuth0 maps a logged Auth0 management API call to an operation.
// Failed calls and calls matching no rule are Unsupported.
func ClassifyAuth0(ev models.Auth0Event) Operation {
	if ev.Response.StatusCode < 200 || ev.Response.StatusCode >= 300 {
		return Operation{Kind: Unsupported}
	}

	method := strings.ToLower(ev.Request.Method)
	path := strings.ToLower(ev.Request.Path)
	for _, rule := range auth0Rules {
		if rule.method == method && rule.path.MatchString(path) {
			return rule.build(ev)
		}
	}
	return Operation{Kind: Unsupported}
}

// ResourceID extracts the identifier embedded in an Auth0 API path, e.g.
// "/api/v2/roles/rol_123" or "/api/v2/users/auth0%7C5e45/multifactor/duo".
// Only the first five segments are considered, so sub-resources resolve to
// the owning user.
func ResourceID(path string) string {
	segments := strings.Split(path, "/")
	if len(segments) > 5 {
		segments = segments[:5]
	}
	last := segments[len(segments)-1]
	decoded, err := url.PathUnescape(last)
	if err != nil {
		return last
	}
	return decoded
}

// SplitName splits a display name into first name and the remainder.
func SplitName(name string) (first, last string) {
	parts := strings.Split(name, " ")
	return parts[0], strings.Join(parts[1:], " ")
}

func requestBody(ev models.Auth0Event) auth0RequestBody {
	var body auth0RequestBody
	if len(ev.Request.Body) > 0 {
		// Partial decodes are fine: a mistyped field is simply absent.
		_ = json.Unmarshal(ev.Request.Body, &body)
	}
	return body
}

func responseBody(ev models.Auth0Event) auth0ResponseBody {
	var body auth0ResponseBody
	if len(ev.Response.Body) > 0 {
		_ = json.Unmarshal(ev.Response.Body, &body)
	}
	return body
}

func auth0CreateUser(ev models.Auth0Event) Operation {
	resp := responseBody(ev)
	first, last := SplitName(resp.Name)
	return Operation{
		Kind:    CreateUser,
		UserRef: resp.UserID,
		NewUser: models.InitiatorUser{
			ID:       resp.UserID,
			Username: resp.Email,
			Profile: models.Profile{
				Email:     resp.Email,
				FirstName: first,
				LastName:  last,
				// update and delete events only carry the Auth0 user id
				Alias: resp.UserID,
			},
		},
	}
}

// auth0UpdateUser distinguishes block/unblock from profile edits by body shape.
// A boolean "blocked" wins over any email/name field sent alongside it.
func auth0UpdateUser(ev models.Auth0Event) Operation {
	body := requestBody(ev)
	userID := ResourceID(ev.Request.Path)

	if body.Blocked != nil {
		status := models.StatusActive
		if *body.Blocked {
			status = models.StatusDisabled
		}
		return Operation{Kind: UpdateUser, UserRef: userID, Status: &status}
	}

	if body.Email == "" && body.Name == "" {
		return Operation{Kind: Unsupported, UserRef: userID}
	}

	profile := &models.Profile{Email: body.Email}
	if body.Name != "" {
		profile.FirstName, profile.LastName = SplitName(body.Name)
	}
	return Operation{Kind: UpdateUser, UserRef: userID, Profile: profile}
}

func auth0DeleteUser(ev models.Auth0Event) Operation {
	return Operation{Kind: DeleteUser, UserRef: ResourceID(ev.Request.Path)}
}

func auth0AssignRoles(ev models.Auth0Event) Operation {
	return Operation{
		Kind:    AssignRoleToUser,
		UserRef: ResourceID(ev.Request.Path),
		Groups:  requestBody(ev).Roles,
	}
}

func auth0RemoveRoles(ev models.Auth0Event) Operation {
	return Operation{
		Kind:    RemoveRoleFromUser,
		UserRef: ResourceID(ev.Request.Path),
		Groups:  requestBody(ev).Roles,
	}
}

func auth0DeleteFactor(ev models.Auth0Event) Operation {
	segments := strings.Split(ev.Request.Path, "/")
	return Operation{
		Kind:    DeleteUserFactor,
		UserRef: ResourceID(ev.Request.Path),
		Factor:  segments[len(segments)-1],
	}
}

func auth0CreateRole(ev models.Auth0Event) Operation {
	resp := responseBody(ev)
	return Operation{Kind: CreateRole, RoleID: resp.ID, RoleName: resp.Name}
}

func auth0UpdateRole(ev models.Auth0Event) Operation {
	resp := responseBody(ev)
	return Operation{Kind: UpdateRole, RoleID: resp.ID, RoleName: resp.Name}
}

func auth0DeleteRole(ev models.Auth0Event) Operation {
	return Operation{Kind: DeleteRole, RoleID: ResourceID(ev.Request.Path)}
}
