package domain

import (
	"fmt"
	"time"
)

type CancellationCode string

const (
	CodeBookingNotFound       CancellationCode = "BOOKING_NOT_FOUND"
	CodeAlreadyCancelled      CancellationCode = "ALREADY_CANCELLED"
	CodePaymentFailed         CancellationCode = "PAYMENT_FAILED"
	CodeShowtimeNotFound      CancellationCode = "SHOWTIME_NOT_FOUND"
	CodeInvalidShowtimeFormat CancellationCode = "INVALID_SHOWTIME_FORMAT"
	CodeShowtimePassed        CancellationCode = "SHOWTIME_PASSED"
	CodeSystemError           CancellationCode = "SYSTEM_ERROR"
)

// CancellationError is a failed cancellation precondition.
type CancellationError struct {
	Code     CancellationCode
	Message  string
	Showtime *time.Time
}

func (e *CancellationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewBookingNotFoundError(reference string) *CancellationError {
	return &CancellationError{
		Code:    CodeBookingNotFound,
		Message: "No booking found with reference: " + reference,
	}
}

func NewShowtimeNotFoundError() *CancellationError {
	return &CancellationError{
		Code:    CodeShowtimeNotFound,
		Message: "Associated showtime no longer exists",
	}
}

func NewAlreadyCancelledError() *CancellationError {
	return &CancellationError{
		Code:    CodeAlreadyCancelled,
		Message: "This booking was already cancelled",
	}
}

// CheckCancellable evaluates the status and time preconditions of a
// cancellation in order. showtime may be nil when it no longer exists.
func CheckCancellable(booking *Booking, showtime *Showtime, now time.Time, loc *time.Location) error {
	switch booking.Status {
	case BookingStatusCancelled:
		return NewAlreadyCancelledError()
	case BookingStatusFailed:
		return &CancellationError{
			Code:    CodePaymentFailed,
			Message: "Cannot cancel a failed payment booking",
		}
	}

	if showtime == nil {
		return NewShowtimeNotFoundError()
	}

	startsAt, err := showtime.StartsAt(loc)
	if err != nil {
		return &CancellationError{
			Code:    CodeInvalidShowtimeFormat,
			Message: "Showtime format is invalid",
		}
	}

	if startsAt.Before(now.In(loc)) {
		return &CancellationError{
			Code:     CodeShowtimePassed,
			Message:  "Cannot cancel booking after showtime has started",
			Showtime: &startsAt,
		}
	}

	if !booking.Status.CanTransitionTo(BookingStatusCancelled) {
		return fmt.Errorf("booking status %q: %w", booking.Status, ErrInvalidTransition)
	}

	return nil
}
