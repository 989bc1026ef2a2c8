package hooks

import (
	"context"
	"errors"
	"fmt"

	"github.com/PratikDhanave/idp-hook-bridge/internal/classify"
	"github.com/PratikDhanave/idp-hook-bridge/internal/models"
)

// Directory is the recipient side of the bridge. U is the directory's own
// user handle; GetUser returns its zero value when the user does not exist.
type Directory[U comparable] interface {
	GetUser(ctx context.Context, usernameOrAlias string) (U, error)
	CreateUser(ctx context.Context, user models.InitiatorUser) (string, error)
	DeleteUser(ctx context.Context, user U) error
	UpdateProfile(ctx context.Context, user U, profile models.Profile) error
	Disable(ctx context.Context, user U) error
	Reenable(ctx context.Context, user U) error
	ResetFactor(ctx context.Context, user U, factor string) error

	AddUserToGroup(ctx context.Context, user U, groupName string, jit bool) error
	AddUserToGroupByID(ctx context.Context, userID, groupName string, jit bool) error
	RemoveUserFromGroup(ctx context.Context, user U, groupName string) error

	CreateGroup(ctx context.Context, name, alias string) (string, error)
	RenameGroup(ctx context.Context, alias, name string) error
	DeleteGroup(ctx context.Context, nameOrAlias string) error
}

// ErrUserNotFound is returned when a user-scoped event names a user the
// directory does not know.
var ErrUserNotFound = errors.New("recipient user not found")

// ErrNothingToUpdate is returned for an update carrying neither a status
// nor a profile.
var ErrNothingToUpdate = errors.New("update carries no changes")

// apply performs op against dir. For CreateUser it returns the new user id.
// Group changes run in event order and stop at the first failure.
func apply[U comparable](ctx context.Context, dir Directory[U], op classify.Operation, jit bool) (string, error) {
	switch op.Kind {
	case classify.Unsupported:
		return "", nil
	case classify.CreateUser:
		return dir.CreateUser(ctx, op.NewUser)
	case classify.CreateRole:
		_, err := dir.CreateGroup(ctx, op.RoleName, op.RoleID)
		return "", err
	case classify.UpdateRole:
		return "", dir.RenameGroup(ctx, op.RoleID, op.RoleName)
	case classify.DeleteRole:
		return "", dir.DeleteGroup(ctx, op.RoleID)
	}

	user, err := dir.GetUser(ctx, op.UserRef)
	if err != nil {
		return "", err
	}
	var zero U
	if user == zero {
		return "", fmt.Errorf("%s %q: %w", op.Kind, op.UserRef, ErrUserNotFound)
	}

	switch op.Kind {
	case classify.DeleteUser:
		return "", dir.DeleteUser(ctx, user)
	case classify.UpdateUser:
		switch {
		case op.Status != nil && *op.Status == models.StatusDisabled:
			return "", dir.Disable(ctx, user)
		case op.Status != nil:
			return "", dir.Reenable(ctx, user)
		case op.Profile != nil:
			return "", dir.UpdateProfile(ctx, user, *op.Profile)
		}
		return "", fmt.Errorf("%s %q: %w", op.Kind, op.UserRef, ErrNothingToUpdate)
	case classify.AssignRoleToUser:
		for _, group := range op.Groups {
			if err := dir.AddUserToGroup(ctx, user, group, jit); err != nil {
				return "", err
			}
		}
		return "", nil
	case classify.RemoveRoleFromUser:
		for _, group := range op.Groups {
			if err := dir.RemoveUserFromGroup(ctx, user, group); err != nil {
				return "", err
			}
		}
		return "", nil
	case classify.DeleteUserFactor:
		return "", dir.ResetFactor(ctx, user, op.Factor)
	}
	return "", fmt.Errorf("unhandled operation %s", op.Kind)
}
