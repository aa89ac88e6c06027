package payment

import (
	"context"

	"github.com/shopspring/decimal"
)

// Gateway creates provider-side payment objects. amount is in major units of
// currency; implementations convert it with ToMinorUnits.
type Gateway interface {
	CreatePayment(
		ctx context.Context,
		amount decimal.Decimal,
		currency string,
		orderID string,
	) (*Intent, error)
}

// CardGateway is the card processor: client-side tokenisation, server-side
// intents and signed webhooks.
type CardGateway interface {
	Gateway

	// ConstructEvent verifies signatureHeader against the raw payload with
	// the webhook secret and decodes the event.
	ConstructEvent(payload []byte, signatureHeader string) (*Event, error)
	PublishableKey() string
}

// RegionalGateway is the order-creation + client-redirect + signature
// verification processor.
type RegionalGateway interface {
	Gateway

	// VerifySignature never fails loudly: any mismatch or internal error is
	// reported as false.
	VerifySignature(providerOrderID, providerPaymentID, signature string) bool
	FetchOrder(ctx context.Context, providerOrderID string) (*RemoteOrder, error)
	KeyID() string
	Currency() string
}
