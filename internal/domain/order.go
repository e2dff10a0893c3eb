package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Keys of the metadata block embedded in a remote order.
const (
	NoteMovieID   = "movieId"
	NoteTheaterID = "theaterId"
	NoteShowtime  = "showtime"
	NoteDate      = "date"
	NoteCategory  = "category"
	NoteSeats     = "seats"
	NoteAmount    = "amount"
	NoteUserEmail = "userEmail"
	NoteFoodItems = "foodItems"
)

// Cart is everything a moviegoer selected before paying.
type Cart struct {
	Amount    decimal.Decimal
	MovieID   int64
	TheaterID string
	Showtime  string
	Date      time.Time
	Category  string
	Seats     []string
	FoodItems []FoodLineItem
}

func (c Cart) ShowtimeKey() ShowtimeKey {
	return ShowtimeKey{
		MovieID:   c.MovieID,
		TheaterID: c.TheaterID,
		Date:      c.Date,
		Time:      c.Showtime,
	}
}

// Notes flattens the cart into the string metadata carried by the remote
// order. Food items are only embedded when present.
func (c Cart) Notes(userEmail string) (map[string]string, error) {
	notes := map[string]string{
		NoteMovieID:   strconv.FormatInt(c.MovieID, 10),
		NoteTheaterID: c.TheaterID,
		NoteShowtime:  c.Showtime,
		NoteDate:      c.Date.Format(DateLayout),
		NoteCategory:  c.Category,
		NoteSeats:     strings.Join(c.Seats, ","),
		NoteAmount:    c.Amount.String(),
		NoteUserEmail: userEmail,
	}

	if len(c.FoodItems) > 0 {
		js, err := json.Marshal(c.FoodItems)
		if err != nil {
			return nil, fmt.Errorf("encode food items: %w", err)
		}

		notes[NoteFoodItems] = string(js)
	}

	return notes, nil
}

// ToMinorUnits converts a major-unit amount to the gateway's smallest unit,
// rounding half away from zero.
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

func FromMinorUnits(amount int64) decimal.Decimal {
	return decimal.New(amount, -2)
}

func NewReceiptToken(now time.Time) string {
	return "receipt_" + strconv.FormatInt(now.UnixMilli(), 10)
}

type OrderRequest struct {
	Amount   int64
	Currency string
	Receipt  string
	Notes    map[string]string
}

// RemoteOrder is an order as the payment gateway reports it. Amount is in
// minor units.
type RemoteOrder struct {
	ID       string
	Amount   int64
	Currency string
	Receipt  string
	Status   string
	Notes    map[string]string
}

type PaymentGateway interface {
	CreateOrder(ctx context.Context, req OrderRequest) (*RemoteOrder, error)
	FetchOrder(ctx context.Context, orderID string) (*RemoteOrder, error)
	// KeyID is the public key handed to clients to open checkout.
	KeyID() string
	// Secret signs payment confirmations.
	Secret() string
	Method() PaymentMethod
}

// GatewayError is an error response reported by the payment gateway.
type GatewayError struct {
	StatusCode  int
	Code        string
	Description string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway error %d %s: %s", e.StatusCode, e.Code, e.Description)
}
