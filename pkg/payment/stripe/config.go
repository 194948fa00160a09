package stripe

import (
	"errors"
	"fmt"

	"github.com/mithaqq/mithaqq-backend/pkg/payment"
)

type Config struct {
	SecretKey string
	BaseURL   string // https://api.stripe.com
	Currency  string // defaults to usd
}

func (c *Config) Validate() error {
	var errs []error
	if c.SecretKey == "" {
		errs = append(errs, errors.New("secret key is required"))
	}
	if c.BaseURL == "" {
		errs = append(errs, errors.New("base url is required"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", payment.ErrInvalidRequest, errors.Join(errs...))
	}
	return nil
}
