package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const DefaultCurrency = "INR"

type PaymentStatus string

const (
	PaymentStatusPending           PaymentStatus = "PENDING"
	PaymentStatusSuccessful        PaymentStatus = "SUCCESSFUL"
	PaymentStatusFailed            PaymentStatus = "FAILED"
	PaymentStatusRefundPending     PaymentStatus = "REFUND_PENDING"
	PaymentStatusPartiallyRefunded PaymentStatus = "PARTIALLY_REFUNDED"
	PaymentStatusRefunded          PaymentStatus = "REFUNDED"
)

// paymentTransitions lists the forward moves allowed from each status.
// FAILED and REFUNDED are terminal.
var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentStatusPending:           {PaymentStatusSuccessful, PaymentStatusFailed},
	PaymentStatusSuccessful:        {PaymentStatusRefundPending, PaymentStatusPartiallyRefunded, PaymentStatusRefunded},
	PaymentStatusRefundPending:     {PaymentStatusPartiallyRefunded, PaymentStatusRefunded},
	PaymentStatusPartiallyRefunded: {PaymentStatusRefunded},
}

func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	for _, allowed := range paymentTransitions[s] {
		if allowed == next {
			return true
		}
	}

	return false
}

func (s PaymentStatus) String() string {
	return string(s)
}

type PaymentMethod string

const (
	PaymentMethodRazorpay   PaymentMethod = "RAZORPAY"
	PaymentMethodCreditCard PaymentMethod = "CREDIT_CARD"
	PaymentMethodDebitCard  PaymentMethod = "DEBIT_CARD"
	PaymentMethodUPI        PaymentMethod = "UPI"
	PaymentMethodNetbanking PaymentMethod = "NETBANKING"
	PaymentMethodWallet     PaymentMethod = "WALLET"
	PaymentMethodCash       PaymentMethod = "CASH"
)

type Payment struct {
	ID            int64
	BookingID     int64
	TransactionID string
	Amount        decimal.Decimal
	Currency      string
	Status        PaymentStatus
	Method        PaymentMethod
	PaymentTime   time.Time
	ReceiptNumber string
}

// Transition moves the payment to next if the move is forward.
func (p *Payment) Transition(next PaymentStatus) error {
	if !p.Status.CanTransitionTo(next) {
		return ErrInvalidTransition
	}

	p.Status = next

	return nil
}
