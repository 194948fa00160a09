package stripe

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	sdk "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"

	"github.com/mithaqq/mithaqq-backend/pkg/logger"
	"github.com/mithaqq/mithaqq-backend/pkg/payment"
	"github.com/shopspring/decimal"
)

// Client holds its own stripe-go API instance so two keys or two base
// URLs can coexist in one process.
type Client struct {
	config Config
	api    *client.API
}

func NewClient(config Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if config.Currency == "" {
		config.Currency = "usd"
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	backends := sdk.NewBackendsWithConfig(&sdk.BackendConfig{
		URL:               sdk.String(config.BaseURL),
		HTTPClient:        &http.Client{Timeout: 30 * time.Second},
		MaxNetworkRetries: sdk.Int64(0),
		LeveledLogger:     &sdk.LeveledLogger{Level: sdk.LevelError},
	})
	api := &client.API{}
	api.Init(config.SecretKey, backends)

	return &Client{config: config, api: api}, nil
}

// CreateSession opens a card-only Checkout Session in payment mode.
func (c *Client) CreateSession(ctx context.Context, params SessionParams) (*sdk.CheckoutSession, error) {
	req := &sdk.CheckoutSessionParams{
		Mode:               sdk.String(string(sdk.CheckoutSessionModePayment)),
		PaymentMethodTypes: sdk.StringSlice([]string{"card"}),
		SuccessURL:         sdk.String(params.SuccessURL),
		CancelURL:          sdk.String(params.CancelURL),
	}
	req.Context = ctx
	for _, item := range params.LineItems {
		req.LineItems = append(req.LineItems, &sdk.CheckoutSessionLineItemParams{
			PriceData: &sdk.CheckoutSessionLineItemPriceDataParams{
				Currency: sdk.String(c.config.Currency),
				ProductData: &sdk.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: sdk.String(item.Name),
				},
				UnitAmount: sdk.Int64(toCents(item.UnitAmount)),
			},
			Quantity: sdk.Int64(int64(item.Quantity)),
		})
	}
	for k, v := range params.Metadata {
		req.AddMetadata(k, v)
	}

	session, err := c.api.CheckoutSessions.New(req)
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", translate(err))
	}

	logger.Info("Stripe checkout session created", map[string]interface{}{
		"session_id": session.ID,
		"line_items": len(params.LineItems),
	})
	return session, nil
}

func (c *Client) GetSession(ctx context.Context, sessionID string) (*sdk.CheckoutSession, error) {
	params := &sdk.CheckoutSessionParams{}
	params.Context = ctx

	session, err := c.api.CheckoutSessions.Get(sessionID, params)
	if err != nil {
		return nil, fmt.Errorf("failed to get checkout session: %w", translate(err))
	}
	return session, nil
}

func toCents(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// translate maps stripe-go errors onto the payment sentinels.
func translate(err error) error {
	var apiErr *sdk.Error
	if !errors.As(err, &apiErr) || apiErr.HTTPStatusCode == 0 {
		return fmt.Errorf("%w: %v", payment.ErrNetworkError, err)
	}

	logger.Warn("Stripe API error", map[string]interface{}{
		"status": apiErr.HTTPStatusCode,
		"type":   string(apiErr.Type),
		"error":  apiErr.Msg,
	})
	return payment.StatusError(apiErr.HTTPStatusCode, apiErr.Msg)
}
