package order

import "fmt"

// PaymentMethod is the closed set of ways an order can be paid. Values are
// stored verbatim in orders.payment_method.
type PaymentMethod string

const (
	PaymentMethodCardGateway     PaymentMethod = "Stripe"
	PaymentMethodRegionalGateway PaymentMethod = "Razorpay"
	PaymentMethodCashOnDelivery  PaymentMethod = "Cash On Delivery"
)

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch m := PaymentMethod(s); m {
	case PaymentMethodCardGateway, PaymentMethodRegionalGateway, PaymentMethodCashOnDelivery:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPaymentMethod, s)
}

func (m PaymentMethod) String() string { return string(m) }

// MethodHandler has one case per payment method. Adding a method to the set
// means adding a case here, so every handler stops compiling until it copes
// with the new method.
type MethodHandler[T any] interface {
	CardGateway() (T, error)
	RegionalGateway() (T, error)
	CashOnDelivery() (T, error)
}

// DispatchPaymentMethod runs the case of h matching m. Values outside the set
// (bad rows) yield ErrUnknownPaymentMethod.
func DispatchPaymentMethod[T any](m PaymentMethod, h MethodHandler[T]) (T, error) {
	switch m {
	case PaymentMethodCardGateway:
		return h.CardGateway()
	case PaymentMethodRegionalGateway:
		return h.RegionalGateway()
	case PaymentMethodCashOnDelivery:
		return h.CashOnDelivery()
	}

	var zero T
	return zero, fmt.Errorf("%w: %q", ErrUnknownPaymentMethod, string(m))
}
