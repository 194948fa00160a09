package service

import (
	"errors"

	"github.com/mithaqq/mithaqq-backend/internal/app/model"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrCompanyScope = errors.New("resource belongs to another company")
)

// Actor is the authenticated caller of an admin operation.
type Actor struct {
	UserID    uint
	Role      model.UserRole
	CompanyID *uint
}

func ActorFromUser(user *model.User) Actor {
	return Actor{UserID: user.ID, Role: user.Role, CompanyID: user.CompanyID}
}

// CompanyScope is the company a company admin is confined to, nil for everyone else.
func (a Actor) CompanyScope() *uint {
	if a.Role != model.RoleCompanyAdmin {
		return nil
	}
	if a.CompanyID == nil {
		// a company admin without a company sees nothing
		none := uint(0)
		return &none
	}
	return a.CompanyID
}

// CanManage reports whether the actor may change an entity owned by companyID.
func (a Actor) CanManage(companyID uint) bool {
	switch a.Role {
	case model.RoleAdmin:
		return true
	case model.RoleCompanyAdmin:
		return a.CompanyID != nil && *a.CompanyID == companyID
	}
	return false
}

// owningCompany picks the company a new entity is created under.
func (a Actor) owningCompany(requested uint) (uint, error) {
	if a.Role == model.RoleCompanyAdmin {
		if a.CompanyID == nil {
			return 0, ErrCompanyScope
		}
		return *a.CompanyID, nil
	}
	if a.Role != model.RoleAdmin {
		return 0, ErrCompanyScope
	}
	return requested, nil
}
