package payment

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/metinatakli/cinex-booking/internal/domain"
	"github.com/metinatakli/cinex-booking/internal/retry"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
)

type stripeIntentAPI interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
	Get(id string, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

// StripeGateway models a remote order as a Stripe PaymentIntent whose metadata
// carries the cart notes.
type StripeGateway struct {
	intents        stripeIntentAPI
	publishableKey string
	signingSecret  string
}

func NewStripeGateway(secretKey, publishableKey, signingSecret string) *StripeGateway {
	sc := client.New(secretKey, nil)

	return newStripeGateway(sc.PaymentIntents, publishableKey, signingSecret)
}

func newStripeGateway(intents stripeIntentAPI, publishableKey, signingSecret string) *StripeGateway {
	return &StripeGateway{
		intents:        intents,
		publishableKey: publishableKey,
		signingSecret:  signingSecret,
	}
}

func (g *StripeGateway) KeyID() string {
	return g.publishableKey
}

func (g *StripeGateway) Secret() string {
	return g.signingSecret
}

func (g *StripeGateway) Method() domain.PaymentMethod {
	return domain.PaymentMethodCreditCard
}

func (g *StripeGateway) CreateOrder(ctx context.Context, req domain.OrderRequest) (*domain.RemoteOrder, error) {
	params := &stripe.PaymentIntentParams{
		Amount:      stripe.Int64(req.Amount),
		Currency:    stripe.String(strings.ToLower(req.Currency)),
		Description: stripe.String(req.Receipt),
	}
	params.Context = ctx

	for k, v := range req.Notes {
		params.AddMetadata(k, v)
	}

	return retry.OnNetworkError(ctx, func() (*domain.RemoteOrder, error) {
		intent, err := g.intents.New(params)
		if err != nil {
			return nil, toGatewayError(err)
		}

		return toRemoteOrder(intent), nil
	})
}

func (g *StripeGateway) FetchOrder(ctx context.Context, orderID string) (*domain.RemoteOrder, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	return retry.OnNetworkError(ctx, func() (*domain.RemoteOrder, error) {
		intent, err := g.intents.Get(orderID, params)
		if err != nil {
			return nil, toGatewayError(err)
		}

		return toRemoteOrder(intent), nil
	})
}

func toRemoteOrder(intent *stripe.PaymentIntent) *domain.RemoteOrder {
	notes := make(map[string]string, len(intent.Metadata))
	for k, v := range intent.Metadata {
		notes[k] = v
	}

	return &domain.RemoteOrder{
		ID:       intent.ID,
		Amount:   intent.Amount,
		Currency: strings.ToUpper(string(intent.Currency)),
		Receipt:  intent.Description,
		Status:   string(intent.Status),
		Notes:    notes,
	}
}

func toGatewayError(err error) error {
	var stripeErr *stripe.Error
	if !errors.As(err, &stripeErr) || stripeErr.HTTPStatusCode == 0 {
		return err
	}

	code := string(stripeErr.Code)
	if code == "" {
		code = string(stripeErr.Type)
	}
	if code == "" {
		code = http.StatusText(stripeErr.HTTPStatusCode)
	}

	return &domain.GatewayError{
		StatusCode:  stripeErr.HTTPStatusCode,
		Code:        code,
		Description: stripeErr.Msg,
	}
}
