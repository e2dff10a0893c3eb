package domain

import "errors"

var (
	ErrRecordNotFound      = errors.New("record not found")
	ErrEditConflict        = errors.New("edit conflict")
	ErrDuplicateBooking    = errors.New("a booking already exists for this order")
	ErrInvalidSignature    = errors.New("payment signature verification failed")
	ErrAmountMismatch      = errors.New("confirmed amount does not match the booked seats and food")
	ErrNoSeats             = errors.New("at least one seat is required")
	ErrIncompleteCart      = errors.New("cart data could not be recovered from the payment confirmation")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrVerificationPending = errors.New("verification for this order is already in progress")
)
