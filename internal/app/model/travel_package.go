package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type TravelPackage struct {
	ID           uint            `gorm:"primarykey" json:"id"`
	Name         string          `gorm:"not null" json:"name"`
	Destination  string          `gorm:"index" json:"destination"`
	Description  string          `gorm:"type:text" json:"description"`
	Price        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	DurationDays int             `json:"duration_days"`
	Inclusions   string          `gorm:"type:text" json:"inclusions"`
	ImageURL     string          `json:"image_url"`
	CompanyID    uint            `gorm:"index" json:"company_id"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	DeletedAt    gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (TravelPackage) TableName() string {
	return "travel_packages"
}
