package checkout

import (
	"context"
	"fmt"

	"checkout-be/internal/logger"
	"checkout-be/internal/order"
	"checkout-be/internal/payment"

	"go.uber.org/zap"
)

func (s *service) VerifyRegionalPayment(ctx context.Context, req VerifyRequest) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "VerifyRegionalPayment"),
		zap.String("order_id", req.OrderDatabaseID),
		zap.String("provider_order_id", req.OrderID),
		zap.String("provider_payment_id", req.PaymentID),
	)

	if !req.valid() {
		return ErrInvalidRequest
	}

	if !s.regional.VerifySignature(req.OrderID, req.PaymentID, req.Signature) {
		log.Warn("payment signature mismatch")
		return payment.ErrSignatureInvalid
	}

	o, err := s.orders.GetOrderByID(ctx, req.OrderDatabaseID)
	if err != nil {
		return err
	}
	if o.IsPaid {
		log.Info("order already paid, nothing to verify")
		return nil
	}

	// A valid signature only proves the provider order was paid; the
	// provider order must also have been created for this local order.
	remote, err := s.regional.FetchOrder(ctx, req.OrderID)
	if err != nil {
		return err
	}
	if remote.OrderID() != req.OrderDatabaseID {
		log.Warn("provider order bound to another order", zap.String("notes_order_id", remote.OrderID()))
		return ErrPaymentMismatch
	}

	_, applied, err := s.orders.UpdateOrderToPaid(ctx, o.ID, order.PaymentResult{
		ProviderTransactionID: req.PaymentID,
		Status:                order.PaymentStatusCompleted,
		PayerEmail:            o.UserEmail,
		AmountPaid:            o.TotalPrice,
	})
	if err != nil {
		return fmt.Errorf("update order to paid: %w", err)
	}

	log.Info("regional payment verified",
		zap.Bool("applied", applied),
		zap.Int64("provider_amount_paid", remote.AmountPaid),
		zap.String("provider_currency", remote.Currency),
	)
	return nil
}
