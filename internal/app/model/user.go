package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type UserRole string

const (
	RoleUser         UserRole = "user"
	RoleAdmin        UserRole = "admin"
	RoleCompanyAdmin UserRole = "company_admin" // scoped to CompanyID
	RoleMarketer     UserRole = "marketer"
)

func (r UserRole) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleCompanyAdmin, RoleMarketer:
		return true
	}
	return false
}

const DefaultUserType = "Normal"

var DefaultCommissionRate = decimal.NewFromFloat(0.10)

type User struct {
	ID             uint            `gorm:"primarykey" json:"id"`
	Email          string          `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash   string          `gorm:"not null" json:"-"`
	FirstName      string          `gorm:"not null" json:"first_name"`
	LastName       string          `json:"last_name"`
	Phone          string          `json:"phone"`
	Address        string          `json:"address"`
	Role           UserRole        `gorm:"type:varchar(20);default:'user'" json:"role"`
	UserType       string          `gorm:"type:varchar(30);default:'Normal'" json:"user_type"`
	CompanyID      *uint           `gorm:"index" json:"company_id,omitempty"`
	ReferralCode   *string         `gorm:"uniqueIndex;type:varchar(16)" json:"referral_code,omitempty"` // marketers only, generated lazily
	ReferredBy     string          `gorm:"index;type:varchar(16)" json:"referred_by,omitempty"`         // referral code used at signup
	CommissionRate decimal.Decimal `gorm:"type:decimal(5,4);default:0.10" json:"commission_rate"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	DeletedAt      gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

func (u User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
