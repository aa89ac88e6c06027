package checkout

import "errors"

var (
	ErrForbidden       = errors.New("order belongs to another user")
	ErrInvalidRequest  = errors.New("invalid request")
	ErrPaymentMismatch = errors.New("provider order does not belong to this order")
)

const (
	msgSignatureFailed    = "Payment signature verification failed. Check your order status."
	msgPaymentSuccessful  = "Payment successful!"
	msgPaymentUnavailable = "payment is temporarily unavailable"
)
