package paypal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	sdk "github.com/plutov/paypal/v4"

	"github.com/mithaqq/mithaqq-backend/pkg/logger"
	"github.com/mithaqq/mithaqq-backend/pkg/payment"
	"github.com/shopspring/decimal"
)

// Client wraps a per-instance PayPal SDK client bound to one set of
// credentials and one API base.
type Client struct {
	config Config
	api    *sdk.Client

	// the SDK refreshes an expiring token but never fetches the first one
	tokenMu sync.Mutex
}

func NewClient(config Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if config.Currency == "" {
		config.Currency = "USD"
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	api, err := sdk.NewClient(config.ClientID, config.Secret, config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	api.SetHTTPClient(&http.Client{Timeout: 30 * time.Second})

	return &Client{config: config, api: api}, nil
}

// CreateOrder opens a CAPTURE order for amount.
func (c *Client) CreateOrder(ctx context.Context, amount decimal.Decimal) (*sdk.Order, error) {
	if err := c.authenticate(ctx); err != nil {
		return nil, err
	}

	units := []sdk.PurchaseUnitRequest{{
		Amount: &sdk.PurchaseUnitAmount{Currency: c.config.Currency, Value: amount.StringFixed(2)},
	}}
	order, err := c.api.CreateOrder(ctx, sdk.OrderIntentCapture, units, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", translate(err))
	}

	logger.Info("PayPal order created", map[string]interface{}{
		"paypal_order_id": order.ID,
		"amount":          amount.StringFixed(2),
	})
	return order, nil
}

// CaptureOrder captures an order the buyer has approved.
func (c *Client) CaptureOrder(ctx context.Context, orderID string) (*sdk.CaptureOrderResponse, error) {
	if err := c.authenticate(ctx); err != nil {
		return nil, err
	}

	captured, err := c.api.CaptureOrder(ctx, orderID, sdk.CaptureOrderRequest{})
	if err != nil {
		return nil, fmt.Errorf("failed to capture order: %w", translate(err))
	}

	logger.Info("PayPal order captured", map[string]interface{}{
		"paypal_order_id": captured.ID,
		"status":          captured.Status,
	})
	return captured, nil
}

func (c *Client) authenticate(ctx context.Context) error {
	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()

	if c.api.Token != nil {
		return nil
	}
	if _, err := c.api.GetAccessToken(ctx); err != nil {
		c.api.Token = nil
		return fmt.Errorf("failed to get access token: %w", translate(err))
	}
	return nil
}

// translate maps SDK failures onto the payment sentinels.
func translate(err error) error {
	var apiErr *sdk.ErrorResponse
	if !errors.As(err, &apiErr) || apiErr.Response == nil {
		return fmt.Errorf("%w: %v", payment.ErrNetworkError, err)
	}

	msg := errorText(apiErr)
	logger.Warn("PayPal API error", map[string]interface{}{
		"status":   apiErr.Response.StatusCode,
		"debug_id": apiErr.DebugID,
		"error":    msg,
	})
	return payment.StatusError(apiErr.Response.StatusCode, msg)
}

func errorText(e *sdk.ErrorResponse) string {
	switch {
	case len(e.Details) > 0 && e.Details[0].Description != "":
		return e.Details[0].Issue + ": " + e.Details[0].Description
	case e.Message != "":
		return e.Message
	case e.Name != "":
		return e.Name
	}
	return http.StatusText(e.Response.StatusCode)
}
