package service

import (
	"testing"

	"github.com/mithaqq/mithaqq-backend/config"
	"github.com/mithaqq/mithaqq-backend/internal/app/model"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func line(price string, qty int) model.CartItem {
	return model.CartItem{Price: decimal.RequireFromString(price), Quantity: qty}
}

func TestPricingCalculator_Subtotal(t *testing.T) {
	pricing, err := NewPricingCalculator(testPricingConfig())
	require.NoError(t, err)

	tests := []struct {
		name  string
		items []model.CartItem
		want  string
	}{
		{name: "empty", items: nil, want: "0"},
		{name: "single", items: []model.CartItem{line("100", 2)}, want: "200"},
		{name: "mixed", items: []model.CartItem{line("100", 2), line("50", 1), line("19.99", 3)}, want: "309.97"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pricing.Subtotal(tt.items)
			assert.True(t, decimal.RequireFromString(tt.want).Equal(got), got.String())
		})
	}
}

func TestPricingCalculator_Summarize(t *testing.T) {
	pricing, err := NewPricingCalculator(testPricingConfig())
	require.NoError(t, err)

	summary := pricing.Summarize([]model.CartItem{line("100", 2), line("50", 1)})
	assert.True(t, decimal.NewFromInt(250).Equal(summary.Subtotal))
	// 250 + 25 + 14 - 60
	assert.True(t, decimal.NewFromInt(229).Equal(summary.Total), summary.Total.String())
}

func TestPricingCalculator_CheckoutTotal(t *testing.T) {
	pricing, err := NewPricingCalculator(testPricingConfig())
	require.NoError(t, err)

	total := pricing.CheckoutTotal([]model.CartItem{line("100", 2), line("50", 1)}, decimal.NewFromInt(20))
	assert.True(t, decimal.NewFromInt(270).Equal(total), total.String())
}

func TestPricingCalculator_CourseTotal(t *testing.T) {
	pricing, err := NewPricingCalculator(testPricingConfig())
	require.NoError(t, err)

	sale := decimal.NewFromInt(250)
	assert.True(t, sale.Equal(pricing.CourseTotal(&model.Course{Price: decimal.NewFromInt(300), SalePrice: &sale})))
	assert.True(t, decimal.NewFromInt(300).Equal(pricing.CourseTotal(&model.Course{Price: decimal.NewFromInt(300)})))
}

func TestNewPricingCalculator_RejectsNegative(t *testing.T) {
	cfg := testPricingConfig()
	cfg.Tax = decimal.NewFromInt(-1)
	_, err := NewPricingCalculator(cfg)
	assert.Error(t, err)

	_, err = NewPricingCalculator(config.PricingConfig{})
	assert.NoError(t, err)
}
