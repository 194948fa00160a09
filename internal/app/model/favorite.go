package model

import "time"

type Favorite struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Item      ItemRef   `gorm:"embedded" json:"item"`
	CreatedAt time.Time `json:"created_at"`
}

func (Favorite) TableName() string {
	return "favorites"
}

// MarketerPackage links a marketer to a product they promote.
type MarketerPackage struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	MarketerID uint      `gorm:"not null;uniqueIndex:idx_marketer_product" json:"marketer_id"`
	ProductID  uint      `gorm:"not null;uniqueIndex:idx_marketer_product" json:"product_id"`
	CreatedAt  time.Time `json:"created_at"`
}

func (MarketerPackage) TableName() string {
	return "marketer_packages"
}
