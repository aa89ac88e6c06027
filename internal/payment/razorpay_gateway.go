package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"checkout-be/internal/logger"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const (
	razorpayBaseURL = "https://api.razorpay.com"

	// Razorpay rejects receipts longer than 40 characters.
	maxReceiptLen = 40
)

type razorpayGateway struct {
	keyID      string
	keySecret  string
	currency   string
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*Intent]
	now        func() time.Time
}

type razorpayOrder struct {
	ID         string          `json:"id"`
	Entity     string          `json:"entity"`
	Amount     int64           `json:"amount"`
	AmountPaid int64           `json:"amount_paid"`
	AmountDue  int64           `json:"amount_due"`
	Currency   string          `json:"currency"`
	Receipt    string          `json:"receipt"`
	Status     string          `json:"status"`
	Notes      json.RawMessage `json:"notes"`
	CreatedAt  int64           `json:"created_at"`
}

type RazorpayOption func(*razorpayGateway)

// WithRazorpayBaseURL points the gateway at another API host (tests, proxies).
func WithRazorpayBaseURL(baseURL string) RazorpayOption {
	return func(r *razorpayGateway) {
		r.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// ----------------- Constructor -----------------

// NewRazorpayGateway builds the regional gateway. currency is the currency
// regional orders are charged in (INR by default).
func NewRazorpayGateway(keyID, keySecret, currency string, opts ...RazorpayOption) RegionalGateway {
	if keyID == "" || keySecret == "" {
		logger.L().Warn("Razorpay credentials are empty, regional payments disabled")
	}
	if currency == "" {
		currency = "INR"
	}

	r := &razorpayGateway{
		keyID:     keyID,
		keySecret: keySecret,
		currency:  strings.ToUpper(currency),
		baseURL:   razorpayBaseURL,
		httpClient: &http.Client{
			Timeout:   15 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: newIntentBreaker("razorpay"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *razorpayGateway) KeyID() string    { return r.keyID }
func (r *razorpayGateway) Currency() string { return r.currency }

// ----------------- CreatePayment -----------------

func (r *razorpayGateway) CreatePayment(
	ctx context.Context,
	amount decimal.Decimal,
	currency string,
	orderID string,
) (*Intent, error) {

	minor := ToMinorUnits(amount)
	log := logger.FromCtx(ctx).With(
		zap.String("provider", string(ProviderRazorpay)),
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
	if r.keyID == "" || r.keySecret == "" {
		return nil, fmt.Errorf("%w: razorpay not configured", ErrProviderUnavailable)
	}

	body := map[string]interface{}{
		"amount":   minor,
		"currency": strings.ToUpper(currency),
		"receipt":  r.receiptFor(orderID),
	}
	if orderID != "" {
		body["notes"] = map[string]string{MetadataOrderID: orderID}
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		log.Error("Failed to marshal order request", zap.Error(err))
		return nil, err
	}

	return executeIntent(r.breaker, func() (*Intent, error) {
		log.Info("Sending order request to Razorpay")

		bodyBytes, status, err := r.do(ctx, http.MethodPost, "/v1/orders", jsonBody)
		if err != nil {
			log.Error("Razorpay request failed", zap.Error(err))
			return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
		}

		if status != http.StatusOK && status != http.StatusCreated {
			log.Error("Razorpay returned non-success status",
				zap.Int("status", status),
				zap.ByteString("response", bodyBytes),
			)
			return nil, statusError("razorpay", status)
		}

		var res razorpayOrder
		if err := json.Unmarshal(bodyBytes, &res); err != nil {
			log.Error("Failed decoding Razorpay response", zap.Error(err))
			return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
		}

		log.Info("Razorpay order created",
			zap.String("razorpay_order_id", res.ID),
			zap.String("receipt", res.Receipt),
			zap.String("status", res.Status),
		)

		return &Intent{
			Provider:        ProviderRazorpay,
			ProviderOrderID: res.ID,
			AmountMinor:     res.Amount,
			Currency:        res.Currency,
			Receipt:         res.Receipt,
			Status:          res.Status,
		}, nil
	})
}

// ----------------- FetchOrder -----------------

func (r *razorpayGateway) FetchOrder(ctx context.Context, providerOrderID string) (*RemoteOrder, error) {
	log := logger.FromCtx(ctx).With(zap.String("razorpay_order_id", providerOrderID))

	if r.keyID == "" || r.keySecret == "" {
		return nil, fmt.Errorf("%w: razorpay not configured", ErrProviderUnavailable)
	}

	bodyBytes, status, err := r.do(ctx, http.MethodGet, "/v1/orders/"+url.PathEscape(providerOrderID), nil)
	if err != nil {
		log.Error("Request to Razorpay failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	if status != http.StatusOK {
		log.Error("Razorpay returned error",
			zap.Int("http_status", status),
			zap.ByteString("response", bodyBytes),
		)
		return nil, statusError("razorpay", status)
	}

	var res razorpayOrder
	if err := json.Unmarshal(bodyBytes, &res); err != nil {
		log.Error("Failed decoding order", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	return &RemoteOrder{
		ID:         res.ID,
		Amount:     res.Amount,
		AmountPaid: res.AmountPaid,
		AmountDue:  res.AmountDue,
		Currency:   res.Currency,
		Receipt:    res.Receipt,
		Status:     res.Status,
		Notes:      decodeNotes(res.Notes),
		CreatedAt:  time.Unix(res.CreatedAt, 0).UTC(),
	}, nil
}

// ----------------- Verify Signature -----------------

func (r *razorpayGateway) VerifySignature(providerOrderID, providerPaymentID, signature string) bool {
	if r.keySecret == "" || providerOrderID == "" || providerPaymentID == "" || signature == "" {
		return false
	}

	got, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(r.keySecret))
	if _, err := mac.Write([]byte(providerOrderID + "|" + providerPaymentID)); err != nil {
		return false
	}

	return hmac.Equal(got, mac.Sum(nil))
}

// ----------------- helpers -----------------

func (r *razorpayGateway) do(ctx context.Context, method, path string, body []byte) ([]byte, int, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.baseURL+path, reader)
	if err != nil {
		return nil, 0, err
	}

	req.SetBasicAuth(r.keyID, r.keySecret)
	if body != nil {
		req.Header.Add("Content-Type", "application/json")
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read razorpay response: %w", err)
	}

	return bodyBytes, resp.StatusCode, nil
}

func (r *razorpayGateway) receiptFor(orderID string) string {
	receipt := "order_" + orderID
	if orderID == "" {
		receipt = fmt.Sprintf("order_%d", r.now().UnixMilli())
	}
	if len(receipt) > maxReceiptLen {
		receipt = receipt[:maxReceiptLen]
	}
	return receipt
}

// decodeNotes copes with Razorpay sending [] instead of {} for empty notes.
func decodeNotes(raw json.RawMessage) map[string]string {
	notes := map[string]string{}
	if len(raw) == 0 {
		return notes
	}
	_ = json.Unmarshal(raw, &notes)
	return notes
}

// SignPayment computes the signature Razorpay's checkout hands back to the
// client for a successful payment.
func SignPayment(keySecret, providerOrderID, providerPaymentID string) string {
	mac := hmac.New(sha256.New, []byte(keySecret))
	mac.Write([]byte(providerOrderID + "|" + providerPaymentID))
	return hex.EncodeToString(mac.Sum(nil))
}
