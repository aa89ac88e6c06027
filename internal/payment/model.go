package payment

import (
	"time"
)

type Provider string

const (
	ProviderStripe   Provider = "STRIPE"
	ProviderRazorpay Provider = "RAZORPAY"
)

// MetadataOrderID is the metadata (Stripe) / notes (Razorpay) key carrying
// the local order id on provider-side objects.
const MetadataOrderID = "orderId"

const EventTypeChargeSucceeded = "charge.succeeded"

// Intent is the provider-side payment object created for one checkout page
// load. It is never persisted.
type Intent struct {
	Provider        Provider
	ProviderOrderID string
	ClientToken     string
	AmountMinor     int64
	Currency        string
	Receipt         string
	Status          string
}

// Event is a verified card gateway webhook event.
type Event struct {
	ID          string
	Type        string
	OrderID     string
	ChargeID    string
	PayerEmail  string
	AmountMinor int64
	Currency    string
	Payload     []byte
}

// RemoteOrder is the regional gateway's view of an order it created.
type RemoteOrder struct {
	ID         string
	Amount     int64
	AmountPaid int64
	AmountDue  int64
	Currency   string
	Receipt    string
	Status     string
	Notes      map[string]string
	CreatedAt  time.Time
}

// OrderID returns the local order id stored in the notes, if any.
func (o *RemoteOrder) OrderID() string {
	if o == nil || o.Notes == nil {
		return ""
	}
	return o.Notes[MetadataOrderID]
}
