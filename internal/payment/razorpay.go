package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/metinatakli/cinex-booking/internal/domain"
	"github.com/metinatakli/cinex-booking/internal/retry"
)

const (
	DefaultRazorpayURL = "https://api.razorpay.com/v1"
	defaultTimeout     = 10 * time.Second
)

// RazorpayGateway talks to the Razorpay orders REST API.
type RazorpayGateway struct {
	baseURL string
	keyID   string
	secret  string
	http    *http.Client
}

func NewRazorpayGateway(baseURL, keyID, secret string, timeout time.Duration) *RazorpayGateway {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultRazorpayURL
	}

	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &RazorpayGateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		keyID:   keyID,
		secret:  secret,
		http: &http.Client{
			Timeout: timeout,
		},
	}
}

func (g *RazorpayGateway) KeyID() string {
	return g.keyID
}

func (g *RazorpayGateway) Secret() string {
	return g.secret
}

func (g *RazorpayGateway) Method() domain.PaymentMethod {
	return domain.PaymentMethodRazorpay
}

type razorpayOrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes,omitempty"`
}

type razorpayOrder struct {
	ID       string          `json:"id"`
	Amount   int64           `json:"amount"`
	Currency string          `json:"currency"`
	Receipt  string          `json:"receipt"`
	Status   string          `json:"status"`
	Notes    json.RawMessage `json:"notes"`
}

type razorpayErrorBody struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

func (g *RazorpayGateway) CreateOrder(ctx context.Context, req domain.OrderRequest) (*domain.RemoteOrder, error) {
	payload, err := json.Marshal(razorpayOrderRequest{
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Notes:    req.Notes,
	})
	if err != nil {
		return nil, err
	}

	return retry.OnNetworkError(ctx, func() (*domain.RemoteOrder, error) {
		return g.do(ctx, http.MethodPost, g.baseURL+"/orders", payload)
	})
}

func (g *RazorpayGateway) FetchOrder(ctx context.Context, orderID string) (*domain.RemoteOrder, error) {
	endpoint := g.baseURL + "/orders/" + url.PathEscape(orderID)

	return retry.OnNetworkError(ctx, func() (*domain.RemoteOrder, error) {
		return g.do(ctx, http.MethodGet, endpoint, nil)
	})
}

func (g *RazorpayGateway) do(ctx context.Context, method, endpoint string, payload []byte) (*domain.RemoteOrder, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}

	req.SetBasicAuth(g.keyID, g.secret)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, decodeRazorpayError(resp)
	}

	var order razorpayOrder
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, fmt.Errorf("razorpay: decode order: %w", err)
	}

	return order.toRemoteOrder()
}

func decodeRazorpayError(resp *http.Response) error {
	gatewayErr := &domain.GatewayError{
		StatusCode: resp.StatusCode,
		Code:       http.StatusText(resp.StatusCode),
	}

	var body razorpayErrorBody
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&body); err == nil {
		if body.Error.Code != "" {
			gatewayErr.Code = body.Error.Code
		}

		gatewayErr.Description = body.Error.Description
	}

	return gatewayErr
}

// toRemoteOrder normalizes the notes block, which the API returns as an empty
// array when an order carries no notes.
func (o razorpayOrder) toRemoteOrder() (*domain.RemoteOrder, error) {
	notes := map[string]string{}

	trimmed := bytes.TrimSpace(o.Notes)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var raw map[string]any
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return nil, fmt.Errorf("razorpay: decode notes: %w", err)
		}

		for k, v := range raw {
			switch v := v.(type) {
			case string:
				notes[k] = v
			case nil:
			default:
				js, _ := json.Marshal(v)
				notes[k] = string(js)
			}
		}
	}

	return &domain.RemoteOrder{
		ID:       o.ID,
		Amount:   o.Amount,
		Currency: o.Currency,
		Receipt:  o.Receipt,
		Status:   o.Status,
		Notes:    notes,
	}, nil
}
