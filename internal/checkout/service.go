package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"checkout-be/internal/currency"
	"checkout-be/internal/logger"
	"checkout-be/internal/order"
	"checkout-be/internal/payment"
	"checkout-be/internal/utils"

	"go.uber.org/zap"
)

type Service interface {
	// PreparePayment builds the payment page for the session user. Paid
	// orders get a redirect and never reach a provider.
	PreparePayment(ctx context.Context, orderID string) (*PaymentPage, error)

	CreateRegionalPayment(ctx context.Context, req CreateRegionalRequest) (*RegionalOrder, error)

	// VerifyRegionalPayment confirms a payment reported by the regional
	// checkout widget and moves the order to paid.
	VerifyRegionalPayment(ctx context.Context, req VerifyRequest) error
}

type service struct {
	orders          order.Service
	card            payment.CardGateway
	regional        payment.RegionalGateway
	rates           currency.Provider
	confirmationURL string
}

// NewService wires the orchestrator. confirmationURL is a format string
// taking the order id, e.g. "/account/orders/%s".
func NewService(
	orders order.Service,
	card payment.CardGateway,
	regional payment.RegionalGateway,
	rates currency.Provider,
	confirmationURL string,
) Service {
	return &service{
		orders:          orders,
		card:            card,
		regional:        regional,
		rates:           rates,
		confirmationURL: confirmationURL,
	}
}

func (s *service) PreparePayment(ctx context.Context, orderID string) (*PaymentPage, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "PreparePayment"),
		zap.String("order_id", orderID),
	)

	o, err := s.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	userID, signedIn := utils.GetUserIDFromContext(ctx)
	isAdmin := utils.IsAdmin(ctx)
	if !signedIn || (!isAdmin && o.UserID != userID) {
		log.Warn("viewer does not own order", zap.Uint("viewer_id", userID))
		return nil, ErrForbidden
	}

	if o.IsPaid {
		return &PaymentPage{Redirect: fmt.Sprintf(s.confirmationURL, o.ID)}, nil
	}

	action, err := order.DispatchPaymentMethod[PaymentAction](o.PaymentMethod, &pageActions{ctx: ctx, s: s, order: o})
	if err != nil {
		if errors.Is(err, order.ErrUnknownPaymentMethod) {
			log.Error("order has unknown payment method", zap.String("payment_method", o.PaymentMethod.String()))
			action = PaymentAction{Kind: ActionNone}
		} else {
			log.Warn("could not create provider payment", zap.Error(err))
			action = PaymentAction{Kind: ActionNone, Message: msgPaymentUnavailable}
		}
	}

	amountText := o.TotalPrice.StringFixed(2) + " " + o.Currency
	if action.DisplayAmount != "" {
		amountText = action.DisplayAmount + " " + action.Currency
	}

	return &PaymentPage{
		Order:   summarize(o),
		IsAdmin: isAdmin,
		Action:  action,
		Instructions: InjectVariables(GetInstructions(o.PaymentMethod), InstructionVars{
			"amount":   amountText,
			"order_id": o.ID,
		}),
	}, nil
}

// pageActions resolves the payment action for one unpaid order.
type pageActions struct {
	ctx   context.Context
	s     *service
	order *order.Order
}

func (a *pageActions) CardGateway() (PaymentAction, error) {
	intent, err := a.s.card.CreatePayment(a.ctx, a.order.TotalPrice, a.order.Currency, a.order.ID)
	if err != nil {
		return PaymentAction{}, err
	}

	return PaymentAction{
		Kind:           ActionCardForm,
		ClientSecret:   intent.ClientToken,
		PublishableKey: a.s.card.PublishableKey(),
	}, nil
}

func (a *pageActions) RegionalGateway() (PaymentAction, error) {
	// One snapshot serves both the charged and the displayed amount.
	rates, err := a.s.rates.Rates(a.ctx)
	if err != nil {
		return PaymentAction{}, fmt.Errorf("load exchange rates: %w", err)
	}

	cur := a.s.regional.Currency()
	amount, err := rates.Convert(a.order.TotalPrice, a.order.Currency, cur)
	if err != nil {
		return PaymentAction{}, err
	}

	intent, err := a.s.regional.CreatePayment(a.ctx, amount, cur, a.order.ID)
	if err != nil {
		return PaymentAction{}, err
	}

	return PaymentAction{
		Kind:            ActionRegionalCheckout,
		ProviderOrderID: intent.ProviderOrderID,
		KeyID:           a.s.regional.KeyID(),
		AmountMinor:     intent.AmountMinor,
		DisplayAmount:   amount.StringFixed(2),
		Currency:        cur,
	}, nil
}

func (a *pageActions) CashOnDelivery() (PaymentAction, error) {
	return PaymentAction{Kind: ActionViewOrder}, nil
}

func (s *service) CreateRegionalPayment(ctx context.Context, req CreateRegionalRequest) (*RegionalOrder, error) {
	cur := strings.ToUpper(strings.TrimSpace(req.Currency))
	if !req.Amount.IsPositive() || cur == "" {
		return nil, ErrInvalidRequest
	}

	intent, err := s.regional.CreatePayment(ctx, req.Amount, cur, "")
	if err != nil {
		logger.FromCtx(ctx).Warn("regional order creation failed",
			zap.String("layer", "service"),
			zap.String("method", "CreateRegionalPayment"),
			zap.Error(err),
		)
		return nil, err
	}

	return &RegionalOrder{
		ID:       intent.ProviderOrderID,
		Amount:   intent.AmountMinor,
		Currency: intent.Currency,
		Receipt:  intent.Receipt,
		Status:   intent.Status,
	}, nil
}
