package domain

import "context"

// ReceiptRequest asks for the ticket of a confirmed booking to be mailed.
type ReceiptRequest struct {
	ID               string `json:"id"`
	BookingReference string `json:"bookingReference"`
	Email            string `json:"email"`
	FirstName        string `json:"firstName"`
}

type ReceiptDispatcher interface {
	Dispatch(ctx context.Context, req ReceiptRequest) error
}

// Ticket is everything printed on a booking's ticket. Movie and Theater are
// nil when the catalog could not be reached.
type Ticket struct {
	Booking  *Booking
	Showtime *Showtime
	Movie    *MovieDetails
	Theater  *TheaterDetails
}

func (t Ticket) MovieTitle() string {
	if t.Movie == nil || t.Movie.Title == "" {
		return "Movie"
	}

	return t.Movie.Title
}

func (t Ticket) TheaterName() string {
	if t.Theater == nil || t.Theater.Name == "" {
		return "Theater"
	}

	return t.Theater.Name
}

type TicketRenderer interface {
	Render(ticket Ticket) ([]byte, error)
}
