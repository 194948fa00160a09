package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string
type PaymentMethod string

const (
	OrderStatusProcessing      OrderStatus = "Processing"
	OrderStatusPendingApproval OrderStatus = "Pending Approval" // course purchases awaiting enrollment approval
	OrderStatusCompleted       OrderStatus = "Completed"
	OrderStatusCancelled       OrderStatus = "Cancelled"
	OrderStatusCashOnDelivery  OrderStatus = "CashOnDelivery" // legacy rows only, new cash orders start as Processing

	PaymentMethodCashOnDelivery PaymentMethod = "CashOnDelivery"
	PaymentMethodPayPal         PaymentMethod = "PayPal"
	PaymentMethodStripe         PaymentMethod = "Stripe"
)

// DigitalDeliveryAddress is the shipping address recorded for course purchases.
const DigitalDeliveryAddress = "Digital Delivery"

var (
	ErrInvalidOrderStatus      = errors.New("invalid order status")
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
)

var orderStatusTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusProcessing:      {OrderStatusCompleted, OrderStatusCancelled},
	OrderStatusPendingApproval: {OrderStatusProcessing, OrderStatusCompleted, OrderStatusCancelled},
	OrderStatusCashOnDelivery:  {OrderStatusProcessing, OrderStatusCompleted, OrderStatusCancelled},
	OrderStatusCompleted:       {},
	OrderStatusCancelled:       {},
}

// ParseOrderStatus rejects any string outside the closed status set.
func ParseOrderStatus(s string) (OrderStatus, error) {
	status := OrderStatus(s)
	if _, ok := orderStatusTransitions[status]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidOrderStatus, s)
	}
	return status, nil
}

func (s OrderStatus) Valid() bool {
	_, ok := orderStatusTransitions[s]
	return ok
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderStatusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// OrderStatuses lists every status in display order.
func OrderStatuses() []OrderStatus {
	return []OrderStatus{
		OrderStatusProcessing,
		OrderStatusPendingApproval,
		OrderStatusCompleted,
		OrderStatusCancelled,
		OrderStatusCashOnDelivery,
	}
}

type Order struct {
	ID              uint            `gorm:"primarykey" json:"id"`
	UserID          uint            `gorm:"not null;index" json:"user_id"`
	OrderDate       time.Time       `gorm:"not null;index" json:"order_date"`
	OrderTotal      decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"order_total"`
	Status          OrderStatus     `gorm:"type:varchar(30);not null;index" json:"status"`
	ShippingAddress string          `gorm:"type:text" json:"shipping_address"`
	PhoneNumber     string          `gorm:"type:varchar(30)" json:"phone_number"`
	PaymentMethod   PaymentMethod   `gorm:"type:varchar(30);not null" json:"payment_method"`
	PaymentID       *string         `gorm:"uniqueIndex;type:varchar(100)" json:"payment_id,omitempty"` // provider transaction id
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`

	Details []OrderDetail `gorm:"foreignKey:OrderID" json:"details,omitempty"` // read-only, preloaded for responses
}

func (Order) TableName() string {
	return "orders"
}

// OrderDetail is a frozen line item.
type OrderDetail struct {
	ID        uint            `gorm:"primarykey" json:"id"`
	OrderID   uint            `gorm:"not null;index" json:"order_id"`
	Item      ItemRef         `gorm:"embedded" json:"item"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	CreatedAt time.Time       `json:"created_at"`
}

func (OrderDetail) TableName() string {
	return "order_details"
}
