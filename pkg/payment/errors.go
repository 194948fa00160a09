package payment

import "errors"

var (
	// ErrInvalidRequest is returned when the provider rejects the request parameters
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrUnauthorized is returned when the provider rejects our credentials
	ErrUnauthorized = errors.New("unauthorized: invalid provider credentials")

	// ErrPaymentFailed is returned when the provider fails to process the payment
	ErrPaymentFailed = errors.New("payment failed")

	// ErrNetworkError is returned when the provider cannot be reached
	ErrNetworkError = errors.New("network error")

	// ErrGatewayDisabled is returned by a provider that is not configured
	ErrGatewayDisabled = errors.New("payment provider is not configured")

	// ErrProviderUnavailable is returned while the circuit breaker is open
	ErrProviderUnavailable = errors.New("payment provider is temporarily unavailable")
)
