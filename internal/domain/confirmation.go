package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentConfirmation is what the client posts back after completing checkout.
// Cart fields are echoed back as strings and may be partially absent.
type PaymentConfirmation struct {
	OrderID   string
	PaymentID string
	Signature string

	MovieID   string
	TheaterID string
	Showtime  string
	Date      string
	Category  string
	Seats     string
	FoodItems string
	Amount    string
	UserEmail string
}

func (c *PaymentConfirmation) fields() map[string]*string {
	return map[string]*string{
		NoteMovieID:   &c.MovieID,
		NoteTheaterID: &c.TheaterID,
		NoteShowtime:  &c.Showtime,
		NoteDate:      &c.Date,
		NoteCategory:  &c.Category,
		NoteSeats:     &c.Seats,
		NoteFoodItems: &c.FoodItems,
		NoteAmount:    &c.Amount,
		NoteUserEmail: &c.UserEmail,
	}
}

var requiredConfirmationFields = []string{
	NoteMovieID, NoteTheaterID, NoteShowtime, NoteDate, NoteSeats, NoteAmount, NoteUserEmail,
}

// Missing lists the required cart fields the client did not echo back.
func (c *PaymentConfirmation) Missing() []string {
	fields := c.fields()

	var missing []string
	for _, key := range requiredConfirmationFields {
		if strings.TrimSpace(*fields[key]) == "" {
			missing = append(missing, key)
		}
	}

	return missing
}

// FillFromNotes copies order metadata into every field left empty by the client.
func (c *PaymentConfirmation) FillFromNotes(notes map[string]string) {
	for key, field := range c.fields() {
		if strings.TrimSpace(*field) != "" {
			continue
		}

		if v, ok := notes[key]; ok {
			*field = v
		}
	}
}

// Cart parses the echoed cart fields.
func (c *PaymentConfirmation) Cart() (Cart, error) {
	if missing := c.Missing(); len(missing) > 0 {
		return Cart{}, fmt.Errorf("%w: missing %s", ErrIncompleteCart, strings.Join(missing, ", "))
	}

	movieID, err := strconv.ParseInt(strings.TrimSpace(c.MovieID), 10, 64)
	if err != nil {
		return Cart{}, fmt.Errorf("%w: invalid movieId %q", ErrIncompleteCart, c.MovieID)
	}

	date, err := time.Parse(DateLayout, strings.TrimSpace(c.Date))
	if err != nil {
		return Cart{}, fmt.Errorf("%w: invalid date %q", ErrIncompleteCart, c.Date)
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(c.Amount))
	if err != nil {
		return Cart{}, fmt.Errorf("%w: invalid amount %q", ErrIncompleteCart, c.Amount)
	}

	seats := ParseSeatLabels(c.Seats)
	if len(seats) == 0 {
		return Cart{}, ErrNoSeats
	}

	food, err := ParseFoodLineItems(c.FoodItems)
	if err != nil {
		return Cart{}, fmt.Errorf("%w: %v", ErrIncompleteCart, err)
	}

	return Cart{
		Amount:    amount,
		MovieID:   movieID,
		TheaterID: strings.TrimSpace(c.TheaterID),
		Showtime:  strings.TrimSpace(c.Showtime),
		Date:      date,
		Category:  strings.TrimSpace(c.Category),
		Seats:     seats,
		FoodItems: food,
	}, nil
}
