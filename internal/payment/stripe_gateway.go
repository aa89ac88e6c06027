package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"checkout-be/internal/logger"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"
)

type stripeGateway struct {
	intents        paymentintent.Client
	secretKey      string
	webhookSecret  string
	publishableKey string
	breaker        *gobreaker.CircuitBreaker[*Intent]
}

type StripeOption func(*stripeGateway)

// WithStripeBackend points the gateway at a custom API backend (tests, proxies).
func WithStripeBackend(b stripe.Backend) StripeOption {
	return func(g *stripeGateway) {
		g.intents.B = b
	}
}

// ----------------- Constructor -----------------

func NewStripeGateway(secretKey, webhookSecret, publishableKey string, opts ...StripeOption) CardGateway {
	if secretKey == "" {
		logger.L().Warn("Stripe secret key is empty, card payments disabled")
	}
	if webhookSecret == "" {
		logger.L().Warn("Stripe webhook secret is empty, card webhooks will be rejected")
	}

	g := &stripeGateway{
		intents: paymentintent.Client{
			B:   stripe.GetBackend(stripe.APIBackend),
			Key: secretKey,
		},
		secretKey:      secretKey,
		webhookSecret:  webhookSecret,
		publishableKey: publishableKey,
		breaker:        newIntentBreaker("stripe"),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *stripeGateway) PublishableKey() string { return g.publishableKey }

// ----------------- CreatePayment -----------------

func (g *stripeGateway) CreatePayment(
	ctx context.Context,
	amount decimal.Decimal,
	currency string,
	orderID string,
) (*Intent, error) {

	minor := ToMinorUnits(amount)
	log := logger.FromCtx(ctx).With(
		zap.String("provider", string(ProviderStripe)),
		zap.String("order_id", orderID),
		zap.Int64("amount_minor", minor),
		zap.String("currency", currency),
	)

	if minor <= 0 {
		return nil, ErrInvalidAmount
	}
	if currency == "" {
		return nil, ErrInvalidCurrency
	}
	if g.secretKey == "" {
		return nil, fmt.Errorf("%w: stripe not configured", ErrProviderUnavailable)
	}

	return executeIntent(g.breaker, func() (*Intent, error) {
		params := &stripe.PaymentIntentParams{
			Amount:   stripe.Int64(minor),
			Currency: stripe.String(strings.ToLower(currency)),
		}
		params.AddMetadata(MetadataOrderID, orderID)
		params.Context = ctx

		log.Info("Creating Stripe payment intent")

		pi, err := g.intents.New(params)
		if err != nil {
			var stripeErr *stripe.Error
			if errors.As(err, &stripeErr) {
				log.Error("Stripe returned error",
					zap.Int("status", stripeErr.HTTPStatusCode),
					zap.String("code", string(stripeErr.Code)),
					zap.String("request_id", stripeErr.RequestID),
					zap.Error(err),
				)
				return nil, errors.Join(statusError("stripe", stripeErr.HTTPStatusCode), err)
			}
			log.Error("Stripe request failed", zap.Error(err))
			return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
		}

		log.Info("Stripe payment intent created", zap.String("payment_intent_id", pi.ID))

		return &Intent{
			Provider:        ProviderStripe,
			ProviderOrderID: pi.ID,
			ClientToken:     pi.ClientSecret,
			AmountMinor:     minor,
			Currency:        strings.ToUpper(currency),
			Status:          string(pi.Status),
		}, nil
	})
}

// ----------------- ConstructEvent -----------------

func (g *stripeGateway) ConstructEvent(payload []byte, signatureHeader string) (*Event, error) {
	if g.webhookSecret == "" {
		return nil, fmt.Errorf("%w: webhook secret not configured", ErrSignatureInvalid)
	}

	evt, err := webhook.ConstructEventWithOptions(
		payload,
		signatureHeader,
		g.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSignatureInvalid, err)
	}

	e := &Event{
		ID:      evt.ID,
		Type:    string(evt.Type),
		Payload: payload,
	}

	if evt.Type != stripe.EventTypeChargeSucceeded {
		return e, nil
	}

	if evt.Data == nil {
		return nil, fmt.Errorf("%w: missing data", ErrMalformedEvent)
	}

	var charge stripe.Charge
	if err := json.Unmarshal(evt.Data.Raw, &charge); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}

	e.ChargeID = charge.ID
	e.OrderID = charge.Metadata[MetadataOrderID]
	e.AmountMinor = charge.Amount
	e.Currency = strings.ToUpper(string(charge.Currency))
	if charge.BillingDetails != nil {
		e.PayerEmail = charge.BillingDetails.Email
	}
	if e.PayerEmail == "" {
		e.PayerEmail = charge.ReceiptEmail
	}

	return e, nil
}
