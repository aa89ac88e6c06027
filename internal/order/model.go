package order

import (
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID        string
	UserID    uint
	UserEmail string

	Items           []Item
	ShippingAddress ShippingAddress

	ItemsPrice    decimal.Decimal
	TaxPrice      decimal.Decimal
	ShippingPrice decimal.Decimal
	TotalPrice    decimal.Decimal
	Currency      string

	PaymentMethod PaymentMethod
	IsPaid        bool
	PaidAt        *time.Time
	PaymentResult *PaymentResult

	CreatedAt time.Time
	UpdatedAt time.Time
}

type Item struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Slug      string          `json:"slug"`
	Image     string          `json:"image"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

type ShippingAddress struct {
	FullName   string `json:"fullName"`
	Street     string `json:"street"`
	City       string `json:"city"`
	Province   string `json:"province"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
}

// PaymentResult is stored alongside the order once it is paid.
type PaymentResult struct {
	ProviderTransactionID string          `json:"id"`
	Status                string          `json:"status"`
	PayerEmail            string          `json:"email_address"`
	AmountPaid            decimal.Decimal `json:"pricePaid"`
}

const PaymentStatusCompleted = "COMPLETED"
