package mocks

import (
	"context"

	"github.com/metinatakli/cinex-booking/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockReceiptDispatcher struct {
	mock.Mock
}

func (m *MockReceiptDispatcher) Dispatch(ctx context.Context, req domain.ReceiptRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

type MockTicketRenderer struct {
	mock.Mock
}

func (m *MockTicketRenderer) Render(ticket domain.Ticket) ([]byte, error) {
	args := m.Called(ticket)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}
