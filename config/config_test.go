package config

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("PRICING_TAX", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.Pricing.DeliveryCost.Equal(decimal.NewFromInt(25)))
	assert.True(t, cfg.Pricing.Tax.Equal(decimal.NewFromInt(14)))
	assert.True(t, cfg.Pricing.Discount.Equal(decimal.NewFromInt(60)))
	assert.Equal(t, "http://localhost:8080", cfg.Server.Domain)
	assert.Equal(t, "3h0m0s", cfg.Video.TokenTTL.String())
}

func TestLoad_TrimsDomainSlash(t *testing.T) {
	t.Setenv("APP_DOMAIN", "https://shop.example.com/")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://shop.example.com", cfg.Server.Domain)
}

func TestValidate_NegativePricing(t *testing.T) {
	t.Setenv("PRICING_DISCOUNT", "-1")

	cfg, err := Load()
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestParseSlice(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, parseSlice("a, b,"))
	assert.Nil(t, parseSlice(""))
}
