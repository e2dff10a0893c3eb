package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/riandyrn/otelchi"
)

func (app *Application) Routes() http.Handler {
	r := chi.NewRouter()

	r.NotFound(app.notFoundResponse)
	r.MethodNotAllowed(app.methodNotAllowedResponse)

	r.Use(otelchi.Middleware("cinex-booking", otelchi.WithChiRoutes(r)))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(app.logRequest)
	r.Use(app.recoverPanic)
	r.Use(app.validateRequest(mustLoadRequestValidator()))
	r.Use(app.sessionManager.LoadAndSave)

	r.Get("/healthcheck", app.GetHealth)

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", app.Login)
		r.Delete("/", app.Logout)
	})

	r.Route("/showtimes", func(r chi.Router) {
		r.Get("/", app.GetShowtimesHandler)
		r.Get("/seat-prices", app.GetSeatPricesHandler)
	})

	r.Route("/payments", func(r chi.Router) {
		r.With(app.requireAuthentication).Post("/orders", app.CreateOrderHandler)
		r.Post("/verify", app.VerifyPaymentHandler)
	})

	// Booking routes are addressed by the gateway order reference and carry no session.
	r.Route("/bookings", func(r chi.Router) {
		r.Get("/booked-seats", app.GetBookedSeatsHandler)
		r.Get("/{bookingRef}", app.GetBookingDetailsHandler)
		r.Get("/{bookingRef}/ticket", app.DownloadTicketHandler)
		r.Post("/{bookingRef}/cancel", app.CancelBookingHandler)
	})

	r.With(app.requireAuthentication).Get("/users/me/bookings", app.GetUserBookingsHandler)

	return r
}
