package order

import "errors"

var (
	ErrOrderNotFound        = errors.New("order not found")
	ErrInvalidOrderID       = errors.New("invalid order id")
	ErrUnknownPaymentMethod = errors.New("unknown payment method")
	ErrInvalidPaymentResult = errors.New("invalid payment result")
)
