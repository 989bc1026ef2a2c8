// Package classify maps raw IdP events onto the canonical operations the
// recipient directory understands. Everything in here is pure: no I/O, no clock.
package classify

import "github.com/PratikDhanave/idp-hook-bridge/internal/models"

// Kind enumerates canonical operations.
type Kind int

const (
	Unsupported Kind = iota
	CreateUser
	DeleteUser
	UpdateUser
	AssignRoleToUser
	RemoveRoleFromUser
	DeleteUserFactor
	CreateRole
	UpdateRole
	DeleteRole
)

var kindNames = map[Kind]string{
	Unsupported:        "unsupported",
	CreateUser:         "create_user",
	DeleteUser:         "delete_user",
	UpdateUser:         "update_user",
	AssignRoleToUser:   "assign_role",
	RemoveRoleFromUser: "remove_role",
	DeleteUserFactor:   "delete_user_factor",
	CreateRole:         "create_role",
	UpdateRole:         "update_role",
	DeleteRole:         "delete_role",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Operation is the canonical form of one IdP event. Only the fields relevant
// to Kind are populated.
type Operation struct {
	Kind Kind

	// UserRef finds the user on the recipient side (username or alias).
	UserRef string
	// SourceUserID is the initiator's id for follow-up lookups against the IdP.
	SourceUserID string

	// NewUser is set for CreateUser.
	NewUser models.InitiatorUser

	// UpdateUser carries exactly one of Status or Profile. A nil Profile with a
	// nil Status means the profile must be fetched from the source.
	Status  *models.UserStatus
	Profile *models.Profile

	// Groups holds role ids (Auth0) or group display names (Okta), in event order.
	Groups []string

	Factor string

	RoleID   string
	RoleName string
}

// Supported reports whether op needs to be dispatched at all.
func (op Operation) Supported() bool {
	return op.Kind != Unsupported
}
