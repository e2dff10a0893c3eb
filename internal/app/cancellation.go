package app

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/metinatakli/cinex-booking/api"
	"github.com/metinatakli/cinex-booking/internal/domain"
)

func (app *Application) CancelBookingHandler(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)
	reference := chi.URLParam(r, "bookingRef")

	booking, err := app.findBooking(r.Context(), reference)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.cancellationErrorResponse(w, r, domain.NewBookingNotFoundError(reference))
		default:
			app.cancellationSystemErrorResponse(w, r, err)
		}

		return
	}

	logger = logger.With("booking_reference", booking.Reference)

	// a missing showtime is reported by CheckCancellable
	showtime, err := app.showtimeRepo.GetById(r.Context(), booking.ShowtimeID)
	if err != nil && !errors.Is(err, domain.ErrRecordNotFound) {
		app.cancellationSystemErrorResponse(w, r, err)
		return
	}

	now := app.now()

	err = domain.CheckCancellable(booking, showtime, now, app.location)
	if err != nil {
		var cancelErr *domain.CancellationError
		if errors.As(err, &cancelErr) {
			logger.Warn("booking cancellation refused", "code", cancelErr.Code)
			app.cancellationErrorResponse(w, r, cancelErr)
			return
		}

		app.cancellationSystemErrorResponse(w, r, err)
		return
	}

	result, err := app.bookingRepo.Cancel(r.Context(), booking, now)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEditConflict):
			app.cancellationErrorResponse(w, r, domain.NewAlreadyCancelledError())
		default:
			app.cancellationSystemErrorResponse(w, r, err)
		}

		return
	}

	app.metrics.bookingsCancelled.Add(context.WithoutCancel(r.Context()), 1)
	logger.Info("booking cancelled", "refund_status", result.RefundStatus())

	resp := api.CancelBookingResponse{
		Status:           "success",
		Message:          "Booking cancelled successfully",
		BookingReference: result.Reference,
		RefundStatus:     result.RefundStatus(),
		CancellationTime: result.CancelledAt,
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.logError(r, err)
	}
}

// findBooking looks a booking up by reference, falling back to its numeric id.
func (app *Application) findBooking(ctx context.Context, reference string) (*domain.Booking, error) {
	booking, err := app.bookingRepo.GetByReference(ctx, reference)
	if err == nil || !errors.Is(err, domain.ErrRecordNotFound) {
		return booking, err
	}

	id, parseErr := strconv.ParseInt(reference, 10, 64)
	if parseErr != nil {
		return nil, err
	}

	return app.bookingRepo.GetById(ctx, id)
}
