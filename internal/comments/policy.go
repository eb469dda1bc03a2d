package comments

import (
	"fmt"

	"github.com/agrimeme/backend/internal/apperrors"
	"github.com/agrimeme/backend/internal/auth"
	"github.com/agrimeme/backend/internal/config"
	"github.com/agrimeme/backend/internal/models"
)

type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Policy decides whether caller may perform action. comment is nil for
// ActionCreate.
type Policy interface {
	Authorize(caller auth.Identity, action Action, comment *models.Comment) error
}

type PolicyFunc func(caller auth.Identity, action Action, comment *models.Comment) error

func (f PolicyFunc) Authorize(caller auth.Identity, action Action, comment *models.Comment) error {
	return f(caller, action, comment)
}

// OwnerPolicy requires ROLE_USER for every write, and ownership of the
// comment for updates and deletes.
var OwnerPolicy Policy = PolicyFunc(func(caller auth.Identity, action Action, comment *models.Comment) error {
	if !caller.HasRole(models.RoleUser) {
		return apperrors.Forbidden("Access Denied")
	}
	if action == ActionCreate || comment == nil {
		return nil
	}
	if comment.UserID != caller.UserID {
		return apperrors.BadRequest("Unauthorized Request.")
	}
	return nil
})

// OpenPolicy lets any authenticated caller write any comment.
var OpenPolicy Policy = PolicyFunc(func(auth.Identity, Action, *models.Comment) error {
	return nil
})

func PolicyByName(name string) (Policy, error) {
	switch name {
	case config.PolicyOwner:
		return OwnerPolicy, nil
	case config.PolicyOpen:
		return OpenPolicy, nil
	default:
		return nil, fmt.Errorf("unknown comment policy %q", name)
	}
}
