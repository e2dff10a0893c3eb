package payment

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/metinatakli/cinex-booking/internal/domain"
)

// FakeGateway keeps orders in memory. It backs local development and the
// integration tests, where no real gateway is reachable.
type FakeGateway struct {
	mu     sync.Mutex
	orders map[string]domain.RemoteOrder
	secret string
}

func NewFakeGateway(secret string) *FakeGateway {
	return &FakeGateway{
		orders: make(map[string]domain.RemoteOrder),
		secret: secret,
	}
}

func (g *FakeGateway) KeyID() string {
	return "fake_key"
}

func (g *FakeGateway) Secret() string {
	return g.secret
}

func (g *FakeGateway) Method() domain.PaymentMethod {
	return domain.PaymentMethodRazorpay
}

func (g *FakeGateway) CreateOrder(_ context.Context, req domain.OrderRequest) (*domain.RemoteOrder, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	order := domain.RemoteOrder{
		ID:       "order_" + uuid.NewString(),
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Status:   "created",
		Notes:    req.Notes,
	}

	g.orders[order.ID] = order

	return &order, nil
}

func (g *FakeGateway) FetchOrder(_ context.Context, orderID string) (*domain.RemoteOrder, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	order, ok := g.orders[orderID]
	if !ok {
		return nil, &domain.GatewayError{
			StatusCode:  http.StatusBadRequest,
			Code:        "BAD_REQUEST_ERROR",
			Description: fmt.Sprintf("The id provided does not exist: %s", orderID),
		}
	}

	return &order, nil
}
