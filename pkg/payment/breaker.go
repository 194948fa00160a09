package payment

import (
	"context"
	"errors"
	"time"

	"github.com/mithaqq/mithaqq-backend/pkg/logger"
	"github.com/sony/gobreaker/v2"
)

type BreakerSettings struct {
	MaxFailures uint32        // consecutive failures before the breaker opens
	OpenTimeout time.Duration // how long it stays open before a trial request
}

func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{MaxFailures: 5, OpenTimeout: 30 * time.Second}
}

type breakerGateway struct {
	next Gateway
	cb   *gobreaker.CircuitBreaker[any]
}

// WithBreaker fails fast with ErrProviderUnavailable once the provider has failed
// MaxFailures times in a row. Rejections caused by the request itself do not count.
func WithBreaker(g Gateway, s BreakerSettings) Gateway {
	if s.MaxFailures == 0 {
		s = DefaultBreakerSettings()
	}
	cb := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        g.Name(),
		MaxRequests: 1,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= s.MaxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !(errors.Is(err, ErrNetworkError) || errors.Is(err, ErrPaymentFailed))
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Payment circuit breaker state changed", map[string]interface{}{
				"provider": name,
				"from":     from.String(),
				"to":       to.String(),
			})
		},
	})
	return &breakerGateway{next: g, cb: cb}
}

func (b *breakerGateway) Name() string { return b.next.Name() }

func (b *breakerGateway) CreateCharge(ctx context.Context, charge Charge) (*ChargeSession, error) {
	res, err := b.cb.Execute(func() (any, error) {
		return b.next.CreateCharge(ctx, charge)
	})
	if err != nil {
		return nil, b.translate(err)
	}
	return res.(*ChargeSession), nil
}

func (b *breakerGateway) ConfirmCharge(ctx context.Context, reference string) (*Confirmation, error) {
	res, err := b.cb.Execute(func() (any, error) {
		return b.next.ConfirmCharge(ctx, reference)
	})
	if err != nil {
		return nil, b.translate(err)
	}
	return res.(*Confirmation), nil
}

func (b *breakerGateway) translate(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return errors.Join(ErrProviderUnavailable, err)
	}
	return err
}
