package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MockRoundTripper stubs the HTTP response of the gateway client.
type MockRoundTripper func(req *http.Request) *http.Response

func (f MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req), nil
}

type MockRoundTripperWithError func(req *http.Request) (*http.Response, error)

func (f MockRoundTripperWithError) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     make(http.Header),
	}
}

func TestRazorpayGateway_CreatePayment(t *testing.T) {
	keyID := "rzp_test_key"
	keySecret := "rzp-secret"
	orderID := "5b0c3c9e-6a8e-4d43-9d8e-2f5f1c7b2a10"

	t.Run("Success", func(t *testing.T) {
		gw := NewRazorpayGateway(keyID, keySecret, "").(*razorpayGateway)

		gw.httpClient.Transport = MockRoundTripper(func(req *http.Request) *http.Response {
			assert.Equal(t, http.MethodPost, req.Method)
			assert.Equal(t, "https://api.razorpay.com/v1/orders", req.URL.String())

			user, pass, ok := req.BasicAuth()
			assert.True(t, ok)
			assert.Equal(t, keyID, user)
			assert.Equal(t, keySecret, pass)

			var body struct {
				Amount   int64             `json:"amount"`
				Currency string            `json:"currency"`
				Receipt  string            `json:"receipt"`
				Notes    map[string]string `json:"notes"`
			}
			require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
			assert.Equal(t, int64(166240), body.Amount)
			assert.Equal(t, "INR", body.Currency)
			assert.Equal(t, orderID, body.Notes["orderId"])
			assert.LessOrEqual(t, len(body.Receipt), 40)

			return jsonResponse(http.StatusOK, `{
				"id": "order_Pq1",
				"entity": "order",
				"amount": 166240,
				"amount_paid": 0,
				"amount_due": 166240,
				"currency": "INR",
				"receipt": "order_5b0c3c9e-6a8e-4d43-9d8e-2f5f1c7b",
				"status": "created",
				"notes": {"orderId": "5b0c3c9e-6a8e-4d43-9d8e-2f5f1c7b2a10"},
				"created_at": 1700000000
			}`)
		})

		intent, err := gw.CreatePayment(context.Background(), decimal.RequireFromString("1662.40"), "inr", orderID)
		require.NoError(t, err)
		assert.Equal(t, ProviderRazorpay, intent.Provider)
		assert.Equal(t, "order_Pq1", intent.ProviderOrderID)
		assert.Equal(t, int64(166240), intent.AmountMinor)
		assert.Equal(t, "INR", intent.Currency)
		assert.Empty(t, intent.ClientToken)
	})

	t.Run("NoOrderIDUsesTimestampReceipt", func(t *testing.T) {
		gw := NewRazorpayGateway(keyID, keySecret, "INR").(*razorpayGateway)
		gw.now = func() time.Time { return time.UnixMilli(1700000000123) }

		gw.httpClient.Transport = MockRoundTripper(func(req *http.Request) *http.Response {
			var body map[string]interface{}
			require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
			assert.Equal(t, "order_1700000000123", body["receipt"])
			_, hasNotes := body["notes"]
			assert.False(t, hasNotes)

			return jsonResponse(http.StatusOK, `{"id":"order_Pq2","amount":5000,"currency":"INR","status":"created","notes":[]}`)
		})

		intent, err := gw.CreatePayment(context.Background(), decimal.NewFromInt(50), "INR", "")
		require.NoError(t, err)
		assert.Equal(t, "order_Pq2", intent.ProviderOrderID)
	})

	t.Run("ProviderRejectsRequest", func(t *testing.T) {
		gw := NewRazorpayGateway(keyID, keySecret, "INR").(*razorpayGateway)
		gw.httpClient.Transport = MockRoundTripper(func(req *http.Request) *http.Response {
			return jsonResponse(http.StatusBadRequest, `{"error":{"code":"BAD_REQUEST_ERROR"}}`)
		})

		intent, err := gw.CreatePayment(context.Background(), decimal.NewFromInt(10), "INR", orderID)
		assert.Nil(t, intent)
		assert.ErrorIs(t, err, ErrProviderRejected)
		assert.NotErrorIs(t, err, ErrProviderUnavailable)
	})

	t.Run("ProviderServerError", func(t *testing.T) {
		gw := NewRazorpayGateway(keyID, keySecret, "INR").(*razorpayGateway)
		gw.httpClient.Transport = MockRoundTripper(func(req *http.Request) *http.Response {
			return jsonResponse(http.StatusBadGateway, `{}`)
		})

		_, err := gw.CreatePayment(context.Background(), decimal.NewFromInt(10), "INR", orderID)
		assert.ErrorIs(t, err, ErrProviderUnavailable)
	})

	t.Run("BadCredentialsAreAnOutage", func(t *testing.T) {
		gw := NewRazorpayGateway(keyID, keySecret, "INR").(*razorpayGateway)
		gw.httpClient.Transport = MockRoundTripper(func(req *http.Request) *http.Response {
			return jsonResponse(http.StatusUnauthorized, `{"error":{"code":"BAD_REQUEST_ERROR"}}`)
		})

		_, err := gw.CreatePayment(context.Background(), decimal.NewFromInt(10), "INR", orderID)
		assert.ErrorIs(t, err, ErrProviderUnavailable)
	})

	t.Run("NetworkError", func(t *testing.T) {
		gw := NewRazorpayGateway(keyID, keySecret, "INR").(*razorpayGateway)
		gw.httpClient.Transport = MockRoundTripperWithError(func(req *http.Request) (*http.Response, error) {
			return nil, errors.New("connection refused")
		})

		_, err := gw.CreatePayment(context.Background(), decimal.NewFromInt(10), "INR", orderID)
		assert.ErrorIs(t, err, ErrProviderUnavailable)
	})

	t.Run("InvalidAmount", func(t *testing.T) {
		gw := NewRazorpayGateway(keyID, keySecret, "INR").(*razorpayGateway)
		gw.httpClient.Transport = MockRoundTripper(func(req *http.Request) *http.Response {
			assert.Fail(t, "provider must not be called")
			return jsonResponse(http.StatusOK, `{}`)
		})

		_, err := gw.CreatePayment(context.Background(), decimal.Zero, "INR", orderID)
		assert.ErrorIs(t, err, ErrInvalidAmount)

		_, err = gw.CreatePayment(context.Background(), decimal.NewFromInt(1), "", orderID)
		assert.ErrorIs(t, err, ErrInvalidCurrency)

		_, err = gw.CreatePayment(context.Background(), decimal.RequireFromString("1e30"), "INR", orderID)
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("NotConfigured", func(t *testing.T) {
		gw := NewRazorpayGateway("", "", "INR")

		_, err := gw.CreatePayment(context.Background(), decimal.NewFromInt(1), "INR", orderID)
		assert.ErrorIs(t, err, ErrProviderUnavailable)
	})
}

func TestRazorpayGateway_BreakerOpens(t *testing.T) {
	gw := NewRazorpayGateway("rzp_test_key", "rzp-secret", "INR").(*razorpayGateway)

	calls := 0
	gw.httpClient.Transport = MockRoundTripper(func(req *http.Request) *http.Response {
		calls++
		return jsonResponse(http.StatusServiceUnavailable, `{}`)
	})

	for i := 0; i < breakerFailureThreshold; i++ {
		_, err := gw.CreatePayment(context.Background(), decimal.NewFromInt(1), "INR", "ord")
		assert.ErrorIs(t, err, ErrProviderUnavailable)
	}
	assert.Equal(t, breakerFailureThreshold, calls)

	_, err := gw.CreatePayment(context.Background(), decimal.NewFromInt(1), "INR", "ord")
	assert.ErrorIs(t, err, ErrProviderUnavailable)
	assert.Equal(t, breakerFailureThreshold, calls, "open breaker must short-circuit")
}

func TestRazorpayGateway_RejectedRequestsKeepBreakerClosed(t *testing.T) {
	gw := NewRazorpayGateway("rzp_test_key", "rzp-secret", "INR").(*razorpayGateway)

	calls := 0
	gw.httpClient.Transport = MockRoundTripper(func(req *http.Request) *http.Response {
		calls++
		var body struct {
			Currency string `json:"currency"`
		}
		require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
		if body.Currency != "INR" {
			return jsonResponse(http.StatusBadRequest, `{"error":{"code":"BAD_REQUEST_ERROR","description":"currency not supported"}}`)
		}
		return jsonResponse(http.StatusOK, `{"id":"order_ok","amount":2000,"currency":"INR","status":"created"}`)
	})

	for i := 0; i < breakerFailureThreshold*2; i++ {
		_, err := gw.CreatePayment(context.Background(), decimal.NewFromInt(1), "XYZ", "")
		assert.ErrorIs(t, err, ErrProviderRejected)
	}

	intent, err := gw.CreatePayment(context.Background(), decimal.NewFromInt(20), "INR", "5b0c3c9e-6a8e-4d43-9d8e-2f5f1c7b2a10")
	require.NoError(t, err)
	assert.Equal(t, "order_ok", intent.ProviderOrderID)
	assert.Equal(t, breakerFailureThreshold*2+1, calls)
}

func TestRazorpayGateway_FetchOrder(t *testing.T) {
	gw := NewRazorpayGateway("rzp_test_key", "rzp-secret", "INR").(*razorpayGateway)

	t.Run("Success", func(t *testing.T) {
		gw.httpClient.Transport = MockRoundTripper(func(req *http.Request) *http.Response {
			assert.Equal(t, http.MethodGet, req.Method)
			assert.Equal(t, "https://api.razorpay.com/v1/orders/order_Pq1", req.URL.String())
			return jsonResponse(http.StatusOK, `{
				"id": "order_Pq1",
				"amount": 166240,
				"amount_paid": 166240,
				"amount_due": 0,
				"currency": "INR",
				"status": "paid",
				"notes": {"orderId": "ord-1"},
				"created_at": 1700000000
			}`)
		})

		o, err := gw.FetchOrder(context.Background(), "order_Pq1")
		require.NoError(t, err)
		assert.Equal(t, "ord-1", o.OrderID())
		assert.Equal(t, int64(166240), o.AmountPaid)
		assert.Equal(t, "paid", o.Status)
		assert.Equal(t, time.Unix(1700000000, 0).UTC(), o.CreatedAt)
	})

	t.Run("EmptyNotesArray", func(t *testing.T) {
		gw.httpClient.Transport = MockRoundTripper(func(req *http.Request) *http.Response {
			return jsonResponse(http.StatusOK, `{"id":"order_Pq1","status":"created","notes":[]}`)
		})

		o, err := gw.FetchOrder(context.Background(), "order_Pq1")
		require.NoError(t, err)
		assert.Empty(t, o.OrderID())
	})

	t.Run("NotFound", func(t *testing.T) {
		gw.httpClient.Transport = MockRoundTripper(func(req *http.Request) *http.Response {
			return jsonResponse(http.StatusNotFound, `{"error":{"code":"BAD_REQUEST_ERROR"}}`)
		})

		_, err := gw.FetchOrder(context.Background(), "order_missing")
		assert.ErrorIs(t, err, ErrProviderRejected)
	})

	t.Run("ServerError", func(t *testing.T) {
		gw.httpClient.Transport = MockRoundTripper(func(req *http.Request) *http.Response {
			return jsonResponse(http.StatusServiceUnavailable, `{}`)
		})

		_, err := gw.FetchOrder(context.Background(), "order_Pq1")
		assert.ErrorIs(t, err, ErrProviderUnavailable)
	})
}

func TestRazorpayGateway_VerifySignature(t *testing.T) {
	secret := "rzp-secret"
	gw := NewRazorpayGateway("rzp_test_key", secret, "INR")

	valid := SignPayment(secret, "order_Pq1", "pay_9")

	tests := []struct {
		name      string
		gw        RegionalGateway
		orderID   string
		paymentID string
		signature string
		want      bool
	}{
		{"Valid", gw, "order_Pq1", "pay_9", valid, true},
		{"TamperedPaymentID", gw, "order_Pq1", "pay_10", valid, false},
		{"TamperedSignature", gw, "order_Pq1", "pay_9", strings.Repeat("0", len(valid)), false},
		{"NotHex", gw, "order_Pq1", "pay_9", "zz-not-hex", false},
		{"ShortSignature", gw, "order_Pq1", "pay_9", valid[:10], false},
		{"EmptySignature", gw, "order_Pq1", "pay_9", "", false},
		{"MissingSecret", NewRazorpayGateway("rzp_test_key", "", "INR"), "order_Pq1", "pay_9", valid, false},
		{"WrongSecret", NewRazorpayGateway("rzp_test_key", "other", "INR"), "order_Pq1", "pay_9", valid, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.gw.VerifySignature(tt.orderID, tt.paymentID, tt.signature))
		})
	}
}
