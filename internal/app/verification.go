package app

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/metinatakli/cinex-booking/api"
	"github.com/metinatakli/cinex-booking/internal/domain"
)

const (
	verifyLockTTL          = 30 * time.Second
	receiptDispatchTimeout = 5 * time.Second
)

func verifyLockKey(orderId string) string {
	return "verify_lock:" + orderId
}

func (app *Application) VerifyPaymentHandler(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	var input api.VerifyPaymentRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.simpleErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.simpleErrorResponse(w, r, http.StatusBadRequest, "orderId, paymentId and signature are required")
		return
	}

	logger = logger.With("order_id", input.OrderId)

	if !domain.VerifySignature(input.OrderId, input.PaymentId, input.Signature, app.gateway.Secret()) {
		logger.Warn("payment signature mismatch")
		app.simpleErrorResponse(w, r, http.StatusBadRequest, domain.ErrInvalidSignature.Error())
		return
	}

	existing, err := app.bookingRepo.GetByReference(r.Context(), input.OrderId)
	switch {
	case err == nil:
		logger.Info("payment already verified", "booking_id", existing.ID)
		app.writeVerified(w, r, existing.Reference)
		return
	case !errors.Is(err, domain.ErrRecordNotFound):
		logger.Error("failed to look up booking", "error", err)
		app.simpleErrorResponse(w, r, http.StatusInternalServerError, "Failed to confirm booking")
		return
	}

	release, acquired := app.acquireVerifyLock(r, input.OrderId)
	if !acquired {
		logger.Warn("concurrent verification of the same order")
		app.simpleErrorResponse(w, r, http.StatusConflict, domain.ErrVerificationPending.Error())
		return
	}
	defer release()

	order, err := app.gateway.FetchOrder(r.Context(), input.OrderId)
	if err != nil {
		app.verifyGatewayErrorResponse(w, r, err)
		return
	}

	confirmation := toConfirmation(input)
	confirmation.FillFromNotes(order.Notes)

	cart, err := confirmation.Cart()
	if err != nil {
		logger.Warn("incomplete cart in payment confirmation", "error", err)
		app.simpleErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	user, err := app.userRepo.GetByEmail(r.Context(), confirmation.UserEmail)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.simpleErrorResponse(w, r, http.StatusNotFound, ErrUserNotFound)
		default:
			logger.Error("failed to get user by email", "error", err)
			app.simpleErrorResponse(w, r, http.StatusInternalServerError, "Failed to confirm booking")
		}

		return
	}

	paid := domain.PaidOrder{
		OrderID:       input.OrderId,
		PaymentID:     input.PaymentId,
		Method:        app.gateway.Method(),
		Currency:      app.config.Gateway.Currency,
		ReceiptNumber: uuid.NewString(),
		Charged:       domain.FromMinorUnits(order.Amount),
	}

	booking, err := app.bookingRepo.Materialize(r.Context(), cart.ShowtimeKey(), func(showtime *domain.Showtime) (*domain.Booking, error) {
		return domain.NewConfirmedBooking(showtime, cart, user.ID, paid)
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrDuplicateBooking):
			logger.Info("booking already materialized for order")
			app.writeVerified(w, r, input.OrderId)
		case errors.Is(err, domain.ErrAmountMismatch):
			logger.Warn("confirmed amount rejected", "error", err)
			app.simpleErrorResponse(w, r, http.StatusConflict, err.Error())
		case errors.Is(err, domain.ErrNoSeats):
			app.simpleErrorResponse(w, r, http.StatusBadRequest, err.Error())
		default:
			logger.Error("failed to materialize booking", "error", err)
			app.simpleErrorResponse(w, r, http.StatusInternalServerError, "Failed to confirm booking")
		}

		return
	}

	ctx := context.WithoutCancel(r.Context())

	app.metrics.bookingsConfirmed.Add(ctx, 1)
	logger.Info("booking confirmed", "booking_id", booking.ID, "total", booking.TotalAmount.String())

	dispatchCtx, cancel := context.WithTimeout(ctx, receiptDispatchTimeout)
	defer cancel()

	err = app.receipts.Dispatch(dispatchCtx, domain.ReceiptRequest{
		BookingReference: booking.Reference,
		Email:            user.Email,
		FirstName:        user.FirstName,
	})
	if err != nil {
		app.metrics.receiptFailures.Add(ctx, 1)
		logger.Error("failed to dispatch receipt", "error", err)
	}

	app.writeVerified(w, r, booking.Reference)
}

// acquireVerifyLock serializes verification of one remote order. An
// unreachable Redis does not block verification since the unique booking
// reference still rejects the loser of a race.
func (app *Application) acquireVerifyLock(r *http.Request, orderId string) (func(), bool) {
	key := verifyLockKey(orderId)

	ok, err := app.redis.SetNX(r.Context(), key, 1, verifyLockTTL).Result()
	if err != nil {
		app.contextGetLogger(r).Warn("verification lock unavailable", "error", err)
		return func() {}, true
	}

	if !ok {
		return nil, false
	}

	release := func() {
		err := app.redis.Del(context.WithoutCancel(r.Context()), key).Err()
		if err != nil {
			app.contextGetLogger(r).Warn("failed to release verification lock", "error", err)
		}
	}

	return release, true
}

func (app *Application) writeVerified(w http.ResponseWriter, r *http.Request, reference string) {
	resp := api.VerifyPaymentResponse{
		Status:      "success",
		BookingId:   reference,
		RedirectUrl: app.config.SuccessURL + "?bookingId=" + url.QueryEscape(reference),
	}

	err := app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.logError(r, err)
	}
}

func (app *Application) verifyGatewayErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	var gatewayErr *domain.GatewayError
	if errors.As(err, &gatewayErr) && gatewayErr.StatusCode >= 400 && gatewayErr.StatusCode < 600 {
		app.contextGetLogger(r).Warn("payment gateway rejected order lookup", "code", gatewayErr.Code)
		app.simpleErrorResponse(w, r, gatewayErr.StatusCode, gatewayErr.Description)
		return
	}

	app.contextGetLogger(r).Error("failed to fetch order from gateway", "error", err)
	app.simpleErrorResponse(w, r, http.StatusInternalServerError, "Failed to confirm booking")
}

func toConfirmation(input api.VerifyPaymentRequest) domain.PaymentConfirmation {
	return domain.PaymentConfirmation{
		OrderID:   input.OrderId,
		PaymentID: input.PaymentId,
		Signature: input.Signature,
		MovieID:   input.MovieId.String(),
		TheaterID: input.TheaterId,
		Showtime:  input.Showtime,
		Date:      input.Date,
		Category:  input.Category,
		Seats:     input.Seats,
		FoodItems: input.FoodItems,
		Amount:    input.Amount.String(),
		UserEmail: input.UserEmail,
	}
}
