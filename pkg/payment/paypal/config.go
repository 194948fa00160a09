package paypal

import (
	"errors"
	"fmt"

	"github.com/mithaqq/mithaqq-backend/pkg/payment"
)

// Config holds the REST credentials of a PayPal app.
type Config struct {
	ClientID string
	Secret   string
	BaseURL  string // https://api-m.sandbox.paypal.com or https://api-m.paypal.com
	Currency string // defaults to USD
}

func (c *Config) Validate() error {
	var errs []error
	if c.ClientID == "" {
		errs = append(errs, errors.New("client id is required"))
	}
	if c.Secret == "" {
		errs = append(errs, errors.New("secret is required"))
	}
	if c.BaseURL == "" {
		errs = append(errs, errors.New("base url is required"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", payment.ErrInvalidRequest, errors.Join(errs...))
	}
	return nil
}
