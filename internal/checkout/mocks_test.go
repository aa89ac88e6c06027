package checkout

import (
	"context"

	"checkout-be/internal/order"
	"checkout-be/internal/payment"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) GetOrderByID(ctx context.Context, id string) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderService) UpdateOrderToPaid(ctx context.Context, id string, result order.PaymentResult) (*order.Order, bool, error) {
	args := m.Called(ctx, id, result)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*order.Order), args.Bool(1), args.Error(2)
}

type MockCardGateway struct {
	mock.Mock
}

func (m *MockCardGateway) CreatePayment(ctx context.Context, amount decimal.Decimal, currency, orderID string) (*payment.Intent, error) {
	args := m.Called(ctx, amount, currency, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Intent), args.Error(1)
}

func (m *MockCardGateway) ConstructEvent(payload []byte, signatureHeader string) (*payment.Event, error) {
	args := m.Called(payload, signatureHeader)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Event), args.Error(1)
}

func (m *MockCardGateway) PublishableKey() string {
	return "pk_test_123"
}

type MockRegionalGateway struct {
	mock.Mock
}

func (m *MockRegionalGateway) CreatePayment(ctx context.Context, amount decimal.Decimal, currency, orderID string) (*payment.Intent, error) {
	args := m.Called(ctx, amount, currency, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Intent), args.Error(1)
}

func (m *MockRegionalGateway) VerifySignature(providerOrderID, providerPaymentID, signature string) bool {
	args := m.Called(providerOrderID, providerPaymentID, signature)
	return args.Bool(0)
}

func (m *MockRegionalGateway) FetchOrder(ctx context.Context, providerOrderID string) (*payment.RemoteOrder, error) {
	args := m.Called(ctx, providerOrderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.RemoteOrder), args.Error(1)
}

func (m *MockRegionalGateway) KeyID() string {
	return "rzp_test_key"
}

func (m *MockRegionalGateway) Currency() string {
	return "INR"
}
