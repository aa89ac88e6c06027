package receipt

import "errors"

var (
	ErrNoRecipient  = errors.New("order has no recipient email")
	ErrOrderNotPaid = errors.New("receipt requested for unpaid order")
)
