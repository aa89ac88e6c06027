package payment

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrProviderUnavailable wraps every network or provider-side failure.
	// Callers treat it as "no payment action right now", never as fatal.
	ErrProviderUnavailable = errors.New("payment provider unavailable")

	// ErrProviderRejected is a provider 4xx caused by the request itself
	// (unsupported currency, declined card). The provider is healthy.
	ErrProviderRejected = errors.New("payment provider rejected the request")

	ErrSignatureInvalid = errors.New("payment signature invalid")
	ErrInvalidAmount    = errors.New("payment amount must be greater than zero")
	ErrInvalidCurrency  = errors.New("payment currency is required")
	ErrMalformedEvent   = errors.New("malformed payment event")
)

// statusError classifies a non-success provider status. Auth failures and
// throttling mean we cannot use the provider, so they count as outages.
func statusError(provider string, status int) error {
	switch {
	case status == http.StatusUnauthorized,
		status == http.StatusForbidden,
		status == http.StatusTooManyRequests,
		status < http.StatusBadRequest,
		status >= http.StatusInternalServerError:
		return fmt.Errorf("%w: %s status %d", ErrProviderUnavailable, provider, status)
	}
	return fmt.Errorf("%w: %s status %d", ErrProviderRejected, provider, status)
}
