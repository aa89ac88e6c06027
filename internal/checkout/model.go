package checkout

import (
	"checkout-be/internal/order"

	"github.com/shopspring/decimal"
)

type ActionKind string

const (
	ActionCardForm         ActionKind = "card_form"
	ActionRegionalCheckout ActionKind = "regional_checkout"
	ActionViewOrder        ActionKind = "view_order"
	ActionNone             ActionKind = "none"
)

// PaymentAction is what the payment UI should render. Only publishable
// provider identifiers are ever placed here.
type PaymentAction struct {
	Kind ActionKind `json:"kind"`

	// card_form
	ClientSecret   string `json:"clientSecret,omitempty"`
	PublishableKey string `json:"publishableKey,omitempty"`

	// regional_checkout
	ProviderOrderID string `json:"providerOrderId,omitempty"`
	KeyID           string `json:"keyId,omitempty"`
	AmountMinor     int64  `json:"amountMinor,omitempty"`
	DisplayAmount   string `json:"displayAmount,omitempty"`
	Currency        string `json:"currency,omitempty"`

	Message string `json:"message,omitempty"`
}

type OrderSummary struct {
	ID            string                `json:"id"`
	Items         []order.Item          `json:"items"`
	Shipping      order.ShippingAddress `json:"shippingAddress"`
	ItemsPrice    decimal.Decimal       `json:"itemsPrice"`
	TaxPrice      decimal.Decimal       `json:"taxPrice"`
	ShippingPrice decimal.Decimal       `json:"shippingPrice"`
	TotalPrice    decimal.Decimal       `json:"totalPrice"`
	Currency      string                `json:"currency"`
	PaymentMethod string                `json:"paymentMethod"`
	IsPaid        bool                  `json:"isPaid"`
}

// PaymentPage is the model behind the checkout payment page. A non-empty
// Redirect means the order is already paid and nothing else is set.
type PaymentPage struct {
	Redirect string `json:"-"`

	Order        OrderSummary  `json:"order"`
	IsAdmin      bool          `json:"isAdmin"`
	Action       PaymentAction `json:"action"`
	Instructions []string      `json:"instructions"`
}

// VerifyRequest is posted by the regional checkout widget after payment.
type VerifyRequest struct {
	OrderID         string `json:"orderId"`
	PaymentID       string `json:"paymentId"`
	Signature       string `json:"signature"`
	OrderDatabaseID string `json:"orderDatabaseId"`
}

func (r VerifyRequest) valid() bool {
	return r.OrderID != "" && r.PaymentID != "" && r.Signature != "" && r.OrderDatabaseID != ""
}

type CreateRegionalRequest struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

type RegionalOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func summarize(o *order.Order) OrderSummary {
	return OrderSummary{
		ID:            o.ID,
		Items:         o.Items,
		Shipping:      o.ShippingAddress,
		ItemsPrice:    o.ItemsPrice,
		TaxPrice:      o.TaxPrice,
		ShippingPrice: o.ShippingPrice,
		TotalPrice:    o.TotalPrice,
		Currency:      o.Currency,
		PaymentMethod: o.PaymentMethod.String(),
		IsPaid:        o.IsPaid,
	}
}
