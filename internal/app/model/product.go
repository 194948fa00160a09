package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	ID                 uint             `gorm:"primarykey" json:"id"`
	Name               string           `gorm:"not null" json:"name"`
	Description        string           `gorm:"type:text" json:"description"`
	Price              decimal.Decimal  `gorm:"type:decimal(10,2);not null" json:"price"`
	SalePrice          *decimal.Decimal `gorm:"type:decimal(10,2)" json:"sale_price,omitempty"`
	DiscountPercentage *int             `json:"discount_percentage,omitempty"`
	ImageURL           string           `json:"image_url"`
	StockQuantity      int              `gorm:"default:0" json:"stock_quantity"`
	CompanyID          uint             `gorm:"index" json:"company_id"`
	CategoryID         uint             `gorm:"index" json:"category_id"`
	AverageRating      float64          `gorm:"default:0" json:"average_rating"`
	RatingCount        int              `gorm:"default:0" json:"rating_count"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
	DeletedAt          gorm.DeletedAt   `gorm:"index" json:"-"`
}

func (Product) TableName() string {
	return "products"
}

// EffectivePrice is the sale price when one is set.
func (p Product) EffectivePrice() decimal.Decimal {
	if p.SalePrice != nil {
		return *p.SalePrice
	}
	return p.Price
}
