package payment

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGateway struct {
	calls int
	err   error
}

func (s *stubGateway) Name() string { return "stub" }

func (s *stubGateway) CreateCharge(context.Context, Charge) (*ChargeSession, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &ChargeSession{ID: "session"}, nil
}

func (s *stubGateway) ConfirmCharge(context.Context, string) (*Confirmation, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &Confirmation{TransactionID: "tx", Paid: true}, nil
}

func TestWithBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	stub := &stubGateway{err: fmt.Errorf("%w: connection refused", ErrNetworkError)}
	gw := WithBreaker(stub, BreakerSettings{MaxFailures: 2, OpenTimeout: time.Minute})

	for i := 0; i < 2; i++ {
		_, err := gw.ConfirmCharge(context.Background(), "ref")
		assert.ErrorIs(t, err, ErrNetworkError)
	}

	_, err := gw.ConfirmCharge(context.Background(), "ref")
	assert.ErrorIs(t, err, ErrProviderUnavailable)
	assert.Equal(t, 2, stub.calls, "open breaker must not reach the provider")
}

func TestWithBreaker_IgnoresRequestErrors(t *testing.T) {
	stub := &stubGateway{err: fmt.Errorf("%w: bad amount", ErrInvalidRequest)}
	gw := WithBreaker(stub, BreakerSettings{MaxFailures: 1, OpenTimeout: time.Minute})

	for i := 0; i < 3; i++ {
		_, err := gw.CreateCharge(context.Background(), Charge{})
		assert.ErrorIs(t, err, ErrInvalidRequest)
	}
	assert.Equal(t, 3, stub.calls)

	stub.err = nil
	session, err := gw.CreateCharge(context.Background(), Charge{})
	require.NoError(t, err)
	assert.Equal(t, "session", session.ID)
}

func TestDisabled(t *testing.T) {
	gw := Disabled("PayPal")
	assert.Equal(t, "PayPal", gw.Name())

	_, err := gw.CreateCharge(context.Background(), Charge{})
	assert.ErrorIs(t, err, ErrGatewayDisabled)
	_, err = gw.ConfirmCharge(context.Background(), "x")
	assert.ErrorIs(t, err, ErrGatewayDisabled)
}

func TestStatusError(t *testing.T) {
	assert.ErrorIs(t, StatusError(401, "no"), ErrUnauthorized)
	assert.ErrorIs(t, StatusError(422, "declined"), ErrInvalidRequest)
	assert.ErrorIs(t, StatusError(503, "down"), ErrPaymentFailed)
	assert.ErrorContains(t, StatusError(503, "down"), "down")
}
