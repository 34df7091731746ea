package service

import (
	"github.com/adoptafacil/adoption-api/internal/core/domain"
)

// AssertOwner allows the call only when caller is the listing owner.
func AssertOwner(caller *domain.User, ownerID int64) error {
	if caller == nil {
		return domain.ErrUnauthenticated
	}
	if caller.ID != ownerID {
		return domain.ErrPermissionDenied
	}
	return nil
}

// AssertOwnerOrAdmin allows the listing owner and any ADMIN.
func AssertOwnerOrAdmin(caller *domain.User, ownerID int64) error {
	if caller != nil && caller.Role == domain.RoleAdmin {
		return nil
	}
	return AssertOwner(caller, ownerID)
}

// AssertRole allows the call only when caller holds exactly role.
func AssertRole(caller *domain.User, role domain.Role) error {
	if caller == nil {
		return domain.ErrUnauthenticated
	}
	if caller.Role != role {
		return domain.ErrPermissionDenied
	}
	return nil
}
