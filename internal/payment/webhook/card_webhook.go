package webhook

import (
	"context"
	"errors"
	"io"
	"net/http"

	"checkout-be/internal/logger"
	"checkout-be/internal/order"
	"checkout-be/internal/payment"
	"checkout-be/internal/utils"

	"go.uber.org/zap"
)

const (
	SignatureHeader = "Stripe-Signature"

	maxBodyBytes = 64 << 10
)

// Handler receives card gateway notifications and drives orders to paid.
type Handler struct {
	orderSvc order.Service
	gateway  payment.CardGateway
	repo     payment.Repository
}

func NewWebhookHandler(orderSvc order.Service, gateway payment.CardGateway, repo payment.Repository) *Handler {
	return &Handler{
		orderSvc: orderSvc,
		gateway:  gateway,
		repo:     repo,
	}
}

// CardGatewayWebhook answers 200 for processed or ignored events, 400 for
// requests that will never succeed, and 500 when a retry may succeed.
func (h *Handler) CardGatewayWebhook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "webhook"),
		zap.String("provider", string(payment.ProviderStripe)),
	)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		log.Warn("failed to read webhook body", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	evt, err := h.gateway.ConstructEvent(body, r.Header.Get(SignatureHeader))
	if err != nil {
		log.Warn("rejected webhook", zap.Error(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	log = log.With(
		zap.String("event_id", evt.ID),
		zap.String("event_type", evt.Type),
		zap.String("order_id", evt.OrderID),
	)

	webhookID, processed, err := h.repo.SaveWebhookEvent(ctx, payment.ProviderStripe, evt.ID, evt.Type, evt.OrderID, evt.Payload)
	if err != nil {
		log.Error("failed to record webhook event", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if processed {
		log.Info("duplicate webhook ignored")
		w.WriteHeader(http.StatusOK)
		return
	}

	if evt.Type != payment.EventTypeChargeSucceeded {
		h.markProcessed(ctx, log, webhookID)
		w.WriteHeader(http.StatusOK)
		return
	}

	if evt.OrderID == "" {
		log.Warn("charge without order metadata")
		h.markFailed(ctx, log, webhookID, "missing orderId metadata")
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	result := order.PaymentResult{
		ProviderTransactionID: evt.ID,
		Status:                order.PaymentStatusCompleted,
		PayerEmail:            evt.PayerEmail,
		AmountPaid:            payment.FromMinorUnits(evt.AmountMinor),
	}

	_, applied, err := h.orderSvc.UpdateOrderToPaid(ctx, evt.OrderID, result)
	if err != nil {
		h.markFailed(ctx, log, webhookID, err.Error())

		if errors.Is(err, order.ErrOrderNotFound) || errors.Is(err, order.ErrInvalidOrderID) {
			log.Warn("webhook for unknown order", zap.Error(err))
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		log.Error("failed to update order to paid", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	h.markProcessed(ctx, log, webhookID)

	log.Info("charge reconciled", zap.Bool("applied", applied))
	utils.WriteJSON(w, http.StatusOK, map[string]string{
		"message": "updateOrderToPaid was successful",
	})
}

// Ledger write failures are logged only; the order update decides the response.
func (h *Handler) markProcessed(ctx context.Context, log *zap.Logger, webhookID int64) {
	if err := h.repo.MarkWebhookProcessed(ctx, webhookID); err != nil {
		log.Error("failed to mark webhook processed", zap.Int64("webhook_id", webhookID), zap.Error(err))
	}
}

func (h *Handler) markFailed(ctx context.Context, log *zap.Logger, webhookID int64, reason string) {
	if err := h.repo.MarkWebhookFailed(ctx, webhookID, reason); err != nil {
		log.Error("failed to mark webhook failed", zap.Int64("webhook_id", webhookID), zap.Error(err))
	}
}
