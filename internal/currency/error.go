package currency

import "errors"

var (
	ErrUnknownCurrency = errors.New("unknown currency")
	ErrInvalidRate     = errors.New("invalid exchange rate")
)
