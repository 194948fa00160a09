package repository

import (
	"strings"

	"github.com/mithaqq/mithaqq-backend/internal/app/model"
	"github.com/mithaqq/mithaqq-backend/pkg/logger"
	"gorm.io/gorm"
)

// UserFilter drives the admin user table. Search matches email and names.
type UserFilter struct {
	Search string
	Role   *model.UserRole
	Limit  int
	Offset int
}

type UserRepository interface {
	Create(user *model.User) error
	FindByID(id uint) (*model.User, error)
	FindByEmail(email string) (*model.User, error)
	FindByReferralCode(code string) (*model.User, error)
	FindReferredUsers(code string) ([]model.User, error)
	CountByRole(role model.UserRole) (int64, error)
	List(filter UserFilter) ([]model.User, int64, error)
	Update(user *model.User) error
	Delete(id uint) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(user *model.User) error {
	logger.Debug("Creating user in database", map[string]interface{}{
		"email": user.Email,
	})

	if err := r.db.Create(user).Error; err != nil {
		logger.Error("Failed to create user in database", err, map[string]interface{}{
			"email": user.Email,
		})
		return err
	}

	logger.Debug("User created in database", map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
	})
	return nil
}

func (r *userRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	if err := r.db.First(&user, id).Error; err != nil {
		logger.Debug("User not found by ID in database", map[string]interface{}{
			"user_id": id,
			"error":   err.Error(),
		})
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		logger.Debug("User not found by email in database", map[string]interface{}{
			"email": email,
			"error": err.Error(),
		})
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByReferralCode(code string) (*model.User, error) {
	var user model.User
	if err := r.db.Where("referral_code = ?", code).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindReferredUsers returns the users who signed up with code, newest first.
func (r *userRepository) FindReferredUsers(code string) ([]model.User, error) {
	var users []model.User
	err := r.db.Where("referred_by = ?", code).
		Order("created_at DESC").
		Find(&users).Error
	if err != nil {
		logger.Error("Failed to find referred users in database", err, map[string]interface{}{
			"referral_code": code,
		})
		return nil, err
	}
	return users, nil
}

func (r *userRepository) CountByRole(role model.UserRole) (int64, error) {
	var count int64
	err := r.db.Model(&model.User{}).Where("role = ?", role).Count(&count).Error
	return count, err
}

func (r *userRepository) List(filter UserFilter) ([]model.User, int64, error) {
	query := r.db.Model(&model.User{})
	if term := strings.TrimSpace(filter.Search); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		query = query.Where("LOWER(email) LIKE ? OR LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ?", like, like, like)
	}
	if filter.Role != nil {
		query = query.Where("role = ?", *filter.Role)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		logger.Error("Failed to count users", err, nil)
		return nil, 0, err
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}
	var users []model.User
	if err := query.Order("created_at DESC").Order("id DESC").Find(&users).Error; err != nil {
		logger.Error("Failed to list users", err, map[string]interface{}{
			"search": filter.Search,
		})
		return nil, 0, err
	}
	return users, total, nil
}

func (r *userRepository) Update(user *model.User) error {
	logger.Debug("Updating user in database", map[string]interface{}{
		"user_id": user.ID,
	})

	if err := r.db.Save(user).Error; err != nil {
		logger.Error("Failed to update user in database", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return err
	}
	return nil
}

func (r *userRepository) Delete(id uint) error {
	result := r.db.Delete(&model.User{}, id)
	if result.Error != nil {
		logger.Error("Failed to delete user from database", result.Error, map[string]interface{}{
			"user_id": id,
		})
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
