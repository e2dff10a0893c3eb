package receipt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/metinatakli/cinex-booking/internal/domain"
	"github.com/metinatakli/cinex-booking/internal/mailer"
	"github.com/metinatakli/cinex-booking/internal/ticket"
)

const confirmationTemplate = "booking_confirmation.tmpl"

// Sender delivers the receipt of a single booking.
type Sender interface {
	Send(ctx context.Context, req domain.ReceiptRequest) error
}

// Service renders a booking's ticket and mails it to the moviegoer.
type Service struct {
	bookings  domain.BookingRepository
	showtimes domain.ShowtimeRepository
	catalog   domain.CatalogGateway
	renderer  domain.TicketRenderer
	mailer    mailer.Mailer
	logger    *slog.Logger
}

func NewService(
	bookings domain.BookingRepository,
	showtimes domain.ShowtimeRepository,
	catalog domain.CatalogGateway,
	renderer domain.TicketRenderer,
	mailer mailer.Mailer,
	logger *slog.Logger) *Service {

	return &Service{
		bookings:  bookings,
		showtimes: showtimes,
		catalog:   catalog,
		renderer:  renderer,
		mailer:    mailer,
		logger:    logger,
	}
}

type confirmationData struct {
	FirstName        string
	BookingReference string
	MovieTitle       string
	TheaterName      string
	Date             string
	Showtime         string
	Seats            string
	Amount           string
}

func (s *Service) Send(ctx context.Context, req domain.ReceiptRequest) error {
	booking, err := s.bookings.GetByReference(ctx, req.BookingReference)
	if err != nil {
		return fmt.Errorf("load booking %s: %w", req.BookingReference, err)
	}

	t, err := s.Ticket(ctx, booking)
	if err != nil {
		return err
	}

	pdf, err := s.renderer.Render(t)
	if err != nil {
		return err
	}

	data := confirmationData{
		FirstName:        firstNameOrDefault(req.FirstName),
		BookingReference: booking.Reference,
		MovieTitle:       t.MovieTitle(),
		TheaterName:      t.TheaterName(),
		Seats:            strings.Join(booking.SeatNumbers(), ", "),
		Amount:           booking.TotalAmount.StringFixed(2),
	}
	if t.Showtime != nil {
		data.Date = t.Showtime.Date.Format(domain.DateLayout)
		data.Showtime = t.Showtime.Time
	}

	return s.mailer.Send(req.Email, confirmationTemplate, data, mailer.Attachment{
		Filename: ticket.Filename(booking.Reference),
		Content:  pdf,
	})
}

// Ticket gathers what is printed on a booking's ticket. Catalog lookups are
// best effort and leave Movie or Theater nil when they fail.
func (s *Service) Ticket(ctx context.Context, booking *domain.Booking) (domain.Ticket, error) {
	t := domain.Ticket{Booking: booking}

	showtime, err := s.showtimes.GetById(ctx, booking.ShowtimeID)
	switch {
	case errors.Is(err, domain.ErrRecordNotFound):
		return t, nil
	case err != nil:
		return t, fmt.Errorf("load showtime %d: %w", booking.ShowtimeID, err)
	}
	t.Showtime = showtime

	movie, err := s.catalog.GetMovie(ctx, showtime.MovieID)
	if err != nil {
		s.logger.Warn("movie lookup failed", "movie_id", showtime.MovieID, "error", err)
	}
	t.Movie = movie

	theater, err := s.catalog.GetTheater(ctx, showtime.TheaterID)
	if err != nil {
		s.logger.Warn("theater lookup failed", "theater_id", showtime.TheaterID, "error", err)
	}
	t.Theater = theater

	return t, nil
}

func firstNameOrDefault(name string) string {
	if strings.TrimSpace(name) == "" {
		return "there"
	}

	return name
}
