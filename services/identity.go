package services

import (
	"github.com/google/uuid"

	"crewplan/models"
	"crewplan/utils"
)

// Identity is the resolved caller, passed explicitly into every service call.
// Resolving a token into an Identity is the transport's job (middleware, ws
// handshake); services only ever check role and ownership against it.
type Identity struct {
	UserID uuid.UUID
	Role   models.Role
}

func (id Identity) IsManager() bool  { return id.Role == models.RoleManager }
func (id Identity) IsEmployee() bool { return id.Role == models.RoleEmployee }

// RequireManager fails with Forbidden unless the caller is a manager.
func (id Identity) RequireManager() error {
	if !id.IsManager() {
		return utils.Forbidden("Only managers may perform this action")
	}
	return nil
}

func (id Identity) RequireEmployee() error {
	if !id.IsEmployee() {
		return utils.Forbidden("Only employees may perform this action")
	}
	return nil
}

// RequireOwner fails with Forbidden unless the caller is the resource owner.
// The message deliberately does not reveal whether the resource exists.
func (id Identity) RequireOwner(ownerID uuid.UUID) error {
	if id.UserID != ownerID {
		return utils.Forbidden("Not permitted")
	}
	return nil
}
