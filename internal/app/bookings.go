package app

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/metinatakli/cinex-booking/api"
	"github.com/metinatakli/cinex-booking/internal/domain"
	"github.com/metinatakli/cinex-booking/internal/ticket"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

func (app *Application) GetBookedSeatsHandler(w http.ResponseWriter, r *http.Request) {
	key, err := showtimeKeyFromQuery(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	seats, err := app.bookingRepo.GetSeatNumbersByShowtime(r.Context(), key)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.BookedSeatsResponse{
		Status:      "success",
		BookedSeats: seats,
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetBookingDetailsHandler(w http.ResponseWriter, r *http.Request) {
	booking, ok := app.bookingFromPath(w, r)
	if !ok {
		return
	}

	t, err := app.tickets.Ticket(r.Context(), booking)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, toBookingDetails(t), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) DownloadTicketHandler(w http.ResponseWriter, r *http.Request) {
	booking, ok := app.bookingFromPath(w, r)
	if !ok {
		return
	}

	t, err := app.tickets.Ticket(r.Context(), booking)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	pdf, err := app.renderer.Render(t)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ticket.Filename(booking.Reference)))
	w.Header().Set("Content-Length", strconv.Itoa(len(pdf)))
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}

func (app *Application) GetUserBookingsHandler(w http.ResponseWriter, r *http.Request) {
	pagination, err := paginationFromQuery(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	userId := app.contextGetUserId(r)

	summaries, metadata, err := app.bookingRepo.GetSummariesByUserId(r.Context(), userId, pagination)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	now := app.now()
	bookings := make([]api.BookingListItem, len(summaries))

	for i, summary := range summaries {
		bookings[i] = app.toBookingListItem(summary, now)
	}

	resp := api.UserBookingsResponse{
		Bookings: bookings,
		Meta: api.Pagination{
			CurrentPage:  metadata.CurrentPage,
			FirstPage:    metadata.FirstPage,
			LastPage:     metadata.LastPage,
			PageSize:     metadata.PageSize,
			TotalRecords: metadata.TotalRecords,
		},
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// bookingFromPath resolves the {bookingRef} path parameter and writes the
// error response itself when it cannot.
func (app *Application) bookingFromPath(w http.ResponseWriter, r *http.Request) (*domain.Booking, bool) {
	booking, err := app.findBooking(r.Context(), chi.URLParam(r, "bookingRef"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.errorResponse(w, r, http.StatusNotFound, ErrBookingNotFound)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return nil, false
	}

	return booking, true
}

func (app *Application) toBookingListItem(summary domain.BookingSummary, now time.Time) api.BookingListItem {
	item := api.BookingListItem{
		Id:          summary.ID,
		Reference:   summary.Reference,
		Status:      summary.Status.String(),
		TotalAmount: summary.TotalAmount,
		MovieId:     summary.MovieID,
		TheaterId:   summary.TheaterID,
		ShowDate:    openapi_types.Date{Time: summary.Date},
		ShowTime:    summary.Time,
		BookingTime: summary.BookingTime,
	}

	showtime := domain.Showtime{Date: summary.Date, Time: summary.Time}

	startsAt, err := showtime.StartsAt(app.location)
	if err != nil {
		return item
	}

	remaining := startsAt.Sub(now)
	item.Expired = remaining <= 0

	if !item.Expired && summary.Status != domain.BookingStatusCancelled {
		item.TimeRemaining = formatRemaining(remaining)
	}

	return item
}

// formatRemaining renders d with its two most significant units, e.g. "2d 4h"
// or "35m".
func formatRemaining(d time.Duration) string {
	d = d.Truncate(time.Minute)

	days := int(d / (24 * time.Hour))
	hours := int(d % (24 * time.Hour) / time.Hour)
	minutes := int(d % time.Hour / time.Minute)

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh", days, hours)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	default:
		return fmt.Sprintf("%dm", minutes)
	}
}

func toBookingDetails(t domain.Ticket) api.BookingDetailsResponse {
	booking := t.Booking

	resp := api.BookingDetailsResponse{
		BookingReference: booking.Reference,
		Status:           booking.Status.String(),
		BookingTime:      booking.BookingTime,
		TotalAmount:      booking.TotalAmount,
		Seats:            make([]api.Seat, len(booking.Seats)),
		FoodOrders:       make([]api.FoodOrder, len(booking.FoodOrders)),
	}

	if t.Showtime != nil {
		resp.ShowDate = openapi_types.Date{Time: t.Showtime.Date}
		resp.ShowTime = t.Showtime.Time
	}

	if booking.Payment != nil {
		resp.PaymentMethod = string(booking.Payment.Method)
		resp.PaymentStatus = booking.Payment.Status.String()
	}

	if t.Movie != nil {
		resp.Movie = &api.Movie{
			Id:         t.Movie.ID,
			Title:      t.Movie.Title,
			PosterPath: t.Movie.PosterPath,
			Runtime:    t.Movie.Runtime,
			Language:   t.Movie.Language,
		}
	}

	if t.Theater != nil {
		resp.Theater = &api.Theater{
			Id:      t.Theater.ID,
			Name:    t.Theater.Name,
			Address: t.Theater.Address,
		}
	}

	for i, seat := range booking.Seats {
		resp.Seats[i] = api.Seat{
			SeatNumber: seat.SeatNumber,
			Category:   string(seat.Category),
			Price:      seat.Price,
		}
	}

	for i, order := range booking.FoodOrders {
		item := api.FoodOrder{
			Quantity: order.Quantity,
			Price:    order.PriceAtOrder,
			Subtotal: order.Subtotal(),
		}

		if order.FoodItem != nil {
			item.Name = order.FoodItem.Name
			item.Category = string(order.FoodItem.Category)
		}

		resp.FoodOrders[i] = item
	}

	return resp
}

func showtimeKeyFromQuery(r *http.Request) (domain.ShowtimeKey, error) {
	q := r.URL.Query()

	movieId, err := strconv.ParseInt(q.Get("movieId"), 10, 64)
	if err != nil || movieId < 1 {
		return domain.ShowtimeKey{}, errors.New("movieId must be a positive integer")
	}

	theaterId := strings.TrimSpace(q.Get("theaterId"))
	if theaterId == "" {
		return domain.ShowtimeKey{}, errors.New("theaterId is required")
	}

	showtime := strings.TrimSpace(q.Get("showtime"))
	if _, err := time.Parse(domain.ShowtimeLayout, showtime); err != nil {
		return domain.ShowtimeKey{}, fmt.Errorf("invalid showtime %q, expected a time like 7:00 PM", showtime)
	}

	date, err := parseDate(q.Get("date"))
	if err != nil {
		return domain.ShowtimeKey{}, err
	}

	return domain.ShowtimeKey{
		MovieID:   movieId,
		TheaterID: theaterId,
		Date:      date,
		Time:      showtime,
	}, nil
}

func parseDate(s string) (time.Time, error) {
	date, err := time.Parse(domain.DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}

	return date, nil
}

func paginationFromQuery(r *http.Request) (domain.Pagination, error) {
	q := r.URL.Query()

	pagination := domain.Pagination{
		Page:     DefaultPage,
		PageSize: DefaultPageSize,
	}

	if v := q.Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			return pagination, errors.New("page must be a positive integer")
		}
		pagination.Page = page
	}

	if v := q.Get("pageSize"); v != "" {
		pageSize, err := strconv.Atoi(v)
		if err != nil || pageSize < 1 || pageSize > MaxPageSize {
			return pagination, fmt.Errorf("pageSize must be between 1 and %d", MaxPageSize)
		}
		pagination.PageSize = pageSize
	}

	return pagination, nil
}
