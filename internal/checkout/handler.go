package checkout

import (
	"encoding/json"
	"errors"
	"net/http"

	"checkout-be/internal/logger"
	"checkout-be/internal/order"
	"checkout-be/internal/payment"
	"checkout-be/internal/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxRequestBytes = 1 << 20

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// PaymentPage serves GET /checkout/{orderID}.
func (h *Handler) PaymentPage(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.PreparePayment(r.Context(), chi.URLParam(r, "orderID"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if page.Redirect != "" {
		http.Redirect(w, r, page.Redirect, http.StatusSeeOther)
		return
	}

	utils.WriteJSON(w, http.StatusOK, page)
}

// VerifyRegionalPayment serves POST /checkout/regional-gateway/verify.
func (h *Handler) VerifyRegionalPayment(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	if err := h.svc.VerifyRegionalPayment(r.Context(), req); err != nil {
		h.writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, Response{Success: true, Message: msgPaymentSuccessful})
}

// CreateRegionalPayment serves POST /payment/regional-gateway/create.
func (h *Handler) CreateRegionalPayment(w http.ResponseWriter, r *http.Request) {
	var req CreateRegionalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	ro, err := h.svc.CreateRegionalPayment(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, Response{Success: true, Data: ro})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes)).Decode(dst); err != nil {
		return errors.Join(ErrInvalidRequest, err)
	}
	return nil
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := mapCheckoutError(err)

	log := logger.FromCtx(r.Context()).With(
		zap.String("layer", "handler"),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
	)
	if status >= http.StatusInternalServerError {
		log.Error("checkout request failed", zap.Error(err))
	} else {
		log.Info("checkout request rejected", zap.Error(err))
	}

	utils.WriteJSON(w, status, Response{Success: false, Message: message})
}

func mapCheckoutError(err error) (int, string) {
	switch {
	case errors.Is(err, payment.ErrSignatureInvalid):
		return http.StatusBadRequest, msgSignatureFailed
	case errors.Is(err, ErrPaymentMismatch):
		return http.StatusBadRequest, "Payment does not belong to this order."
	case errors.Is(err, ErrInvalidRequest), errors.Is(err, payment.ErrInvalidAmount), errors.Is(err, payment.ErrInvalidCurrency):
		return http.StatusBadRequest, "Invalid request"
	case errors.Is(err, payment.ErrProviderRejected):
		return http.StatusBadRequest, "Payment provider rejected the request"
	case errors.Is(err, order.ErrOrderNotFound), errors.Is(err, order.ErrInvalidOrderID):
		return http.StatusNotFound, "Order not found"
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, "You cannot access this order"
	case errors.Is(err, payment.ErrProviderUnavailable):
		return http.StatusBadGateway, "Payment provider is temporarily unavailable"
	default:
		return http.StatusInternalServerError, "An internal error occurred"
	}
}
