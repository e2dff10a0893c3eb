package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
	BookingStatusFailed    BookingStatus = "FAILED"
)

// legacyPaidStatus is written by older clients for confirmed bookings.
const legacyPaidStatus = "PAID"

// ParseBookingStatus normalizes a stored status token. Unknown tokens are
// returned unchanged so callers can still report them.
func ParseBookingStatus(s string) BookingStatus {
	if s == legacyPaidStatus {
		return BookingStatusConfirmed
	}

	return BookingStatus(s)
}

func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	switch s {
	case BookingStatusPending:
		return next == BookingStatusConfirmed || next == BookingStatusCancelled || next == BookingStatusFailed
	case BookingStatusConfirmed:
		return next == BookingStatusCancelled || next == BookingStatusFailed
	default:
		return false
	}
}

func (s BookingStatus) String() string {
	return string(s)
}

type Booking struct {
	ID          int64
	Reference   string
	UserID      int
	ShowtimeID  int64
	BookingTime time.Time
	TotalAmount decimal.Decimal
	Status      BookingStatus
	PaymentID   *int64
	Payment     *Payment
	Seats       []BookedSeat
	FoodOrders  []FoodOrder
}

// ComputeTotal sums the seat and food snapshots of the booking.
func (b *Booking) ComputeTotal() decimal.Decimal {
	total := decimal.Zero

	for _, seat := range b.Seats {
		total = total.Add(seat.Price)
	}

	for _, order := range b.FoodOrders {
		total = total.Add(order.Subtotal())
	}

	return total
}

func (b *Booking) SeatNumbers() []string {
	numbers := make([]string, len(b.Seats))
	for i, seat := range b.Seats {
		numbers[i] = seat.SeatNumber
	}

	return numbers
}

// AmountTolerance is how far the confirmed amount may drift from the total
// recomputed from seat and food rows.
var AmountTolerance = decimal.NewFromInt(1)

// PaidOrder identifies a payment captured by the gateway.
type PaidOrder struct {
	OrderID       string
	PaymentID     string
	Method        PaymentMethod
	Currency      string
	ReceiptNumber string
	// Charged is the amount the gateway holds for the order.
	Charged decimal.Decimal
}

// NewConfirmedBooking assembles a confirmed booking for cart against the
// resolved showtime. The total is recomputed from the seat and food
// snapshots and must agree within AmountTolerance with both the confirmed
// amount and the amount the gateway charged.
func NewConfirmedBooking(showtime *Showtime, cart Cart, userID int, order PaidOrder) (*Booking, error) {
	if len(cart.Seats) == 0 {
		return nil, ErrNoSeats
	}

	booking := &Booking{
		Reference:  order.OrderID,
		UserID:     userID,
		ShowtimeID: showtime.ID,
		Status:     BookingStatusConfirmed,
		Seats:      NewBookedSeats(showtime, cart.Seats, cart.Category),
		FoodOrders: make([]FoodOrder, 0, len(cart.FoodItems)),
	}

	for _, item := range cart.FoodItems {
		booking.FoodOrders = append(booking.FoodOrders, NewFoodOrder(item))
	}

	booking.TotalAmount = booking.ComputeTotal()

	if booking.TotalAmount.Sub(cart.Amount).Abs().GreaterThan(AmountTolerance) {
		return nil, fmt.Errorf("%w: computed %s, confirmed %s", ErrAmountMismatch,
			booking.TotalAmount.StringFixed(2), cart.Amount.StringFixed(2))
	}

	if booking.TotalAmount.Sub(order.Charged).Abs().GreaterThan(AmountTolerance) {
		return nil, fmt.Errorf("%w: computed %s, charged %s", ErrAmountMismatch,
			booking.TotalAmount.StringFixed(2), order.Charged.StringFixed(2))
	}

	currency := order.Currency
	if currency == "" {
		currency = DefaultCurrency
	}

	booking.Payment = &Payment{
		TransactionID: order.PaymentID,
		Amount:        booking.TotalAmount,
		Currency:      currency,
		Status:        PaymentStatusSuccessful,
		Method:        order.Method,
		ReceiptNumber: order.ReceiptNumber,
	}

	return booking, nil
}

// BookingSummary is a booking joined with its showtime for listings.
type BookingSummary struct {
	ID          int64
	Reference   string
	Status      BookingStatus
	TotalAmount decimal.Decimal
	MovieID     int64
	TheaterID   string
	Date        time.Time
	Time        string
	BookingTime time.Time
}

// CancellationResult reports the state a booking was left in after cancellation.
type CancellationResult struct {
	Reference     string
	PaymentStatus *PaymentStatus
	CancelledAt   time.Time
}

// RefundStatus names the payment status after cancellation, or no_payment.
func (r CancellationResult) RefundStatus() string {
	if r.PaymentStatus == nil {
		return "no_payment"
	}

	return r.PaymentStatus.String()
}

// BookingBuilder assembles a booking once its showtime has been resolved. It
// runs inside the materialization transaction, so an error aborts every write.
type BookingBuilder func(showtime *Showtime) (*Booking, error)

type BookingRepository interface {
	Materialize(ctx context.Context, key ShowtimeKey, build BookingBuilder) (*Booking, error)
	GetByReference(ctx context.Context, reference string) (*Booking, error)
	GetById(ctx context.Context, id int64) (*Booking, error)
	GetSeatNumbersByShowtime(ctx context.Context, key ShowtimeKey) ([]string, error)
	GetSummariesByUserId(ctx context.Context, userID int, pagination Pagination) ([]BookingSummary, *Metadata, error)
	Cancel(ctx context.Context, booking *Booking, cancelledAt time.Time) (*CancellationResult, error)
}
