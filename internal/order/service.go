package order

import (
	"context"
	"errors"
	"time"

	"checkout-be/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const receiptTimeout = 10 * time.Second

// ReceiptSender delivers the purchase receipt for a freshly paid order.
type ReceiptSender interface {
	SendPurchaseReceipt(ctx context.Context, o *Order) error
}

type Service interface {
	GetOrderByID(ctx context.Context, id string) (*Order, error)

	// UpdateOrderToPaid is safe to call any number of times, from any number
	// of confirmation paths. The returned bool is true only for the call that
	// actually moved the order to paid; every other call is a successful no-op.
	UpdateOrderToPaid(
		ctx context.Context,
		id string,
		result PaymentResult,
	) (*Order, bool, error)
}

type service struct {
	repo     Repository
	receipts ReceiptSender
	now      func() time.Time
}

func NewService(repo Repository, receipts ReceiptSender) Service {
	return &service{
		repo:     repo,
		receipts: receipts,
		now:      time.Now,
	}
}

func (s *service) GetOrderByID(ctx context.Context, id string) (*Order, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrInvalidOrderID
	}
	return s.repo.GetOrderByID(ctx, id)
}

func (s *service) UpdateOrderToPaid(
	ctx context.Context,
	id string,
	result PaymentResult,
) (*Order, bool, error) {

	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "UpdateOrderToPaid"),
		zap.String("order_id", id),
		zap.String("provider_transaction_id", result.ProviderTransactionID),
	)

	if result.ProviderTransactionID == "" || result.Status == "" {
		log.Warn("rejecting empty payment result")
		return nil, false, ErrInvalidPaymentResult
	}

	order, err := s.GetOrderByID(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrOrderNotFound) {
			log.Error("failed to load order", zap.Error(err))
		}
		return nil, false, err
	}

	if order.IsPaid {
		log.Info("order already paid, nothing to do")
		return order, false, nil
	}

	paidAt := s.now().UTC()
	applied, err := s.repo.MarkPaid(ctx, id, paidAt, result)
	if err != nil {
		log.Error("failed to mark order paid", zap.Error(err))
		return nil, false, err
	}

	if !applied {
		// Lost the race to another confirmation path.
		log.Info("order was paid concurrently")
		current, err := s.repo.GetOrderByID(ctx, id)
		if err != nil {
			return nil, false, err
		}
		return current, false, nil
	}

	order.IsPaid = true
	order.PaidAt = &paidAt
	order.PaymentResult = &result

	log.Info("order marked as paid")

	s.sendReceipt(ctx, order, log)

	return order, true, nil
}

// sendReceipt is best-effort: the order is already paid, so a failure here is
// logged and never retried or surfaced to the caller.
func (s *service) sendReceipt(ctx context.Context, order *Order, log *zap.Logger) {
	if s.receipts == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), receiptTimeout)
	defer cancel()

	if err := s.receipts.SendPurchaseReceipt(ctx, order); err != nil {
		log.Warn("failed to send purchase receipt", zap.Error(err))
		return
	}
	log.Info("purchase receipt sent")
}
