package mocks

import (
	"context"

	"github.com/metinatakli/cinex-booking/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) CreateOrder(ctx context.Context, req domain.OrderRequest) (*domain.RemoteOrder, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RemoteOrder), args.Error(1)
}

func (m *MockPaymentGateway) FetchOrder(ctx context.Context, orderID string) (*domain.RemoteOrder, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RemoteOrder), args.Error(1)
}

func (m *MockPaymentGateway) KeyID() string {
	return "rzp_test_key"
}

func (m *MockPaymentGateway) Secret() string {
	return "test_secret"
}

func (m *MockPaymentGateway) Method() domain.PaymentMethod {
	return domain.PaymentMethodRazorpay
}
