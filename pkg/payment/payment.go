package payment

import (
	"context"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
)

type LineItem struct {
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
}

// Charge describes what the customer is asked to pay. Amount is authoritative;
// LineItems are only shown by providers that render an itemised page.
type Charge struct {
	Amount     decimal.Decimal
	Currency   string
	LineItems  []LineItem
	Metadata   map[string]string
	SuccessURL string
	CancelURL  string
}

// ChargeSession is the provider-side object the client completes: a PayPal order
// or a Stripe checkout session.
type ChargeSession struct {
	ID          string
	RedirectURL string
	Status      string
}

type Confirmation struct {
	TransactionID string
	Status        string
	Paid          bool
	Metadata      map[string]string
}

// Gateway is the create/confirm contract shared by every external provider.
type Gateway interface {
	Name() string
	CreateCharge(ctx context.Context, charge Charge) (*ChargeSession, error)
	ConfirmCharge(ctx context.Context, reference string) (*Confirmation, error)
}

// StatusError maps a non-2xx provider response onto the package sentinels.
func StatusError(status int, message string) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrUnauthorized, message)
	case status >= 400 && status < 500:
		return fmt.Errorf("%w: %s", ErrInvalidRequest, message)
	default:
		return fmt.Errorf("%w: %s", ErrPaymentFailed, message)
	}
}

type disabledGateway struct {
	name string
}

// Disabled stands in for a provider whose configuration is missing or invalid.
func Disabled(name string) Gateway {
	return disabledGateway{name: name}
}

func (d disabledGateway) Name() string { return d.name }

func (d disabledGateway) CreateCharge(context.Context, Charge) (*ChargeSession, error) {
	return nil, fmt.Errorf("%s: %w", d.name, ErrGatewayDisabled)
}

func (d disabledGateway) ConfirmCharge(context.Context, string) (*Confirmation, error) {
	return nil, fmt.Errorf("%s: %w", d.name, ErrGatewayDisabled)
}
