package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type ShippingZone struct {
	ID           uint            `gorm:"primarykey" json:"id"`
	ZoneName     string          `gorm:"not null" json:"zone_name"`
	City         string          `json:"city"`
	ShippingCost decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"shipping_cost"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func (ShippingZone) TableName() string {
	return "shipping_zones"
}
