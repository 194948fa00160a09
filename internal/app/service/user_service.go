package service

import (
	"errors"
	"strings"

	"github.com/mithaqq/mithaqq-backend/internal/app/model"
	"github.com/mithaqq/mithaqq-backend/internal/app/repository"
	"github.com/mithaqq/mithaqq-backend/pkg/logger"
	"github.com/mithaqq/mithaqq-backend/pkg/util"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const minPasswordLength = 8

var (
	ErrInvalidRole           = errors.New("invalid user role")
	ErrCompanyRequired       = errors.New("company admins must belong to a company")
	ErrInvalidCommissionRate = errors.New("commission rate must be between 0 and 1")
	ErrPasswordTooShort      = errors.New("password must be at least 8 characters")
	ErrSelfDemotion          = errors.New("admins cannot remove their own admin access")
)

// UserAdminInput creates or edits an account from the admin panel. On update
// empty strings and nil pointers keep the stored value.
type UserAdminInput struct {
	Email          string           `json:"email"`
	Password       string           `json:"password"`
	FirstName      string           `json:"first_name"`
	LastName       string           `json:"last_name"`
	Phone          string           `json:"phone"`
	Address        string           `json:"address"`
	Role           model.UserRole   `json:"role"`
	CompanyID      *uint            `json:"company_id"`
	CommissionRate *decimal.Decimal `json:"commission_rate"`
}

// UserAdminService is how admins grant the company_admin, marketer and admin
// roles. Self-registration only ever creates plain users.
type UserAdminService interface {
	ListUsers(filter repository.UserFilter) ([]model.User, int64, error)
	GetUser(id uint) (*model.User, error)
	CreateUser(input UserAdminInput) (*model.User, error)
	UpdateUser(actor Actor, id uint, input UserAdminInput) (*model.User, error)
	DeleteUser(actor Actor, id uint) error
}

type userAdminService struct {
	userRepo    repository.UserRepository
	catalogRepo repository.CatalogRepository
}

func NewUserAdminService(userRepo repository.UserRepository, catalogRepo repository.CatalogRepository) UserAdminService {
	return &userAdminService{userRepo: userRepo, catalogRepo: catalogRepo}
}

func (s *userAdminService) ListUsers(filter repository.UserFilter) ([]model.User, int64, error) {
	if filter.Role != nil && !filter.Role.Valid() {
		return nil, 0, ErrInvalidRole
	}
	return s.userRepo.List(filter)
}

func (s *userAdminService) GetUser(id uint) (*model.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userAdminService) CreateUser(input UserAdminInput) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || strings.TrimSpace(input.FirstName) == "" {
		return nil, ErrInvalidInput
	}
	if len(input.Password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}
	if input.Role == "" {
		input.Role = model.RoleUser
	}
	if err := s.emailAvailable(email, 0); err != nil {
		return nil, err
	}

	hash, err := util.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		Email:          email,
		PasswordHash:   hash,
		FirstName:      strings.TrimSpace(input.FirstName),
		LastName:       strings.TrimSpace(input.LastName),
		Phone:          strings.TrimSpace(input.Phone),
		Address:        strings.TrimSpace(input.Address),
		UserType:       model.DefaultUserType,
		CommissionRate: model.DefaultCommissionRate,
	}
	if err := s.applyPrivileges(user, input); err != nil {
		return nil, err
	}

	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, err
	}

	logger.Info("User created by admin", map[string]interface{}{
		"user_id": user.ID,
		"role":    user.Role,
	})
	return user, nil
}

func (s *userAdminService) UpdateUser(actor Actor, id uint, input UserAdminInput) (*model.User, error) {
	user, err := s.GetUser(id)
	if err != nil {
		return nil, err
	}
	if actor.UserID == id && input.Role != "" && input.Role != model.RoleAdmin {
		return nil, ErrSelfDemotion
	}

	if email := strings.ToLower(strings.TrimSpace(input.Email)); email != "" && email != user.Email {
		if err := s.emailAvailable(email, id); err != nil {
			return nil, err
		}
		user.Email = email
	}
	if input.Password != "" {
		if len(input.Password) < minPasswordLength {
			return nil, ErrPasswordTooShort
		}
		hash, err := util.HashPassword(input.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}
	if v := strings.TrimSpace(input.FirstName); v != "" {
		user.FirstName = v
	}
	if v := strings.TrimSpace(input.LastName); v != "" {
		user.LastName = v
	}
	if v := strings.TrimSpace(input.Phone); v != "" {
		user.Phone = v
	}
	if v := strings.TrimSpace(input.Address); v != "" {
		user.Address = v
	}

	if input.Role == "" {
		input.Role = user.Role
	}
	if input.CompanyID == nil && input.Role == model.RoleCompanyAdmin {
		input.CompanyID = user.CompanyID
	}
	if err := s.applyPrivileges(user, input); err != nil {
		return nil, err
	}

	if err := s.userRepo.Update(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailAlreadyExists
		}
		return nil, err
	}

	logger.Info("User updated by admin", map[string]interface{}{
		"user_id":  user.ID,
		"admin_id": actor.UserID,
		"role":     user.Role,
	})
	return user, nil
}

func (s *userAdminService) DeleteUser(actor Actor, id uint) error {
	if actor.UserID == id {
		return ErrSelfDemotion
	}
	if err := s.userRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}

	logger.Info("User deleted by admin", map[string]interface{}{
		"user_id":  id,
		"admin_id": actor.UserID,
	})
	return nil
}

// applyPrivileges sets role, company scope and commission rate. Only company
// admins carry a company.
func (s *userAdminService) applyPrivileges(user *model.User, input UserAdminInput) error {
	if !input.Role.Valid() {
		return ErrInvalidRole
	}
	if input.CommissionRate != nil {
		rate := *input.CommissionRate
		if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
			return ErrInvalidCommissionRate
		}
		user.CommissionRate = rate
	}

	user.Role = input.Role
	if input.Role != model.RoleCompanyAdmin {
		user.CompanyID = nil
		return nil
	}
	if input.CompanyID == nil {
		return ErrCompanyRequired
	}
	if _, err := s.catalogRepo.FindCompanyByID(*input.CompanyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCompanyNotFound
		}
		return err
	}
	companyID := *input.CompanyID
	user.CompanyID = &companyID
	return nil
}

func (s *userAdminService) emailAvailable(email string, selfID uint) error {
	existing, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if existing.ID != selfID {
		return ErrEmailAlreadyExists
	}
	return nil
}
