package service

import (
	"github.com/mithaqq/mithaqq-backend/config"
	"github.com/mithaqq/mithaqq-backend/internal/app/model"
	"github.com/shopspring/decimal"
)

// CartSummary is the generic cart view: fixed surcharges on top of the subtotal.
type CartSummary struct {
	Subtotal     decimal.Decimal `json:"subtotal"`
	DeliveryCost decimal.Decimal `json:"delivery_cost"`
	Tax          decimal.Decimal `json:"tax"`
	Discount     decimal.Decimal `json:"discount"`
	Total        decimal.Decimal `json:"total"`
}

// PricingCalculator is a pure function of cart lines and a shipping cost.
type PricingCalculator struct {
	cfg config.PricingConfig
}

func NewPricingCalculator(cfg config.PricingConfig) (*PricingCalculator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &PricingCalculator{cfg: cfg}, nil
}

func (p *PricingCalculator) Subtotal(items []model.CartItem) decimal.Decimal {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.LineTotal())
	}
	return subtotal
}

func (p *PricingCalculator) Summarize(items []model.CartItem) CartSummary {
	subtotal := p.Subtotal(items)
	return CartSummary{
		Subtotal:     subtotal,
		DeliveryCost: p.cfg.DeliveryCost,
		Tax:          p.cfg.Tax,
		Discount:     p.cfg.Discount,
		Total:        subtotal.Add(p.cfg.DeliveryCost).Add(p.cfg.Tax).Sub(p.cfg.Discount),
	}
}

// CheckoutTotal replaces the fixed delivery cost with the zone's shipping cost.
func (p *PricingCalculator) CheckoutTotal(items []model.CartItem, shippingCost decimal.Decimal) decimal.Decimal {
	return p.Subtotal(items).Add(shippingCost)
}

// CourseTotal is the course's effective price. Courses ship digitally.
func (p *PricingCalculator) CourseTotal(course *model.Course) decimal.Decimal {
	return course.EffectivePrice()
}
