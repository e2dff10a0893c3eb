package domain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ShowtimeLayout is the 12-hour clock format used for showtime labels, e.g. "7:00 PM".
const ShowtimeLayout = "3:04 PM"

// DateLayout is the ISO date format used for showtime dates.
const DateLayout = "2006-01-02"

const (
	DefaultSilverSeats   = 40
	DefaultGoldSeats     = 20
	DefaultPlatinumSeats = 10
)

var (
	DefaultSilverPrice   = decimal.NewFromInt(140)
	DefaultGoldPrice     = decimal.NewFromInt(170)
	DefaultPlatinumPrice = decimal.NewFromInt(210)
)

// DailyShowtimes are the labels every theater screens a movie at.
var DailyShowtimes = []string{"7:00 AM", "10:00 AM", "1:00 PM", "4:00 PM", "7:00 PM", "10:00 PM"}

// ShowtimeKey is the natural identity of a showtime.
type ShowtimeKey struct {
	MovieID   int64
	TheaterID string
	Date      time.Time
	Time      string
}

func (k ShowtimeKey) String() string {
	return fmt.Sprintf("%d/%s/%s/%s", k.MovieID, k.TheaterID, k.Date.Format(DateLayout), k.Time)
}

type Showtime struct {
	ID                     int64
	MovieID                int64
	TheaterID              string
	Date                   time.Time
	Time                   string
	SilverSeatsAvailable   int
	GoldSeatsAvailable     int
	PlatinumSeatsAvailable int
	SilverPrice            decimal.Decimal
	GoldPrice              decimal.Decimal
	PlatinumPrice          decimal.Decimal
}

// NewDefaultShowtime builds an unsaved showtime for key carrying the default
// seat counts and category prices.
func NewDefaultShowtime(key ShowtimeKey) Showtime {
	return Showtime{
		MovieID:                key.MovieID,
		TheaterID:              key.TheaterID,
		Date:                   key.Date,
		Time:                   key.Time,
		SilverSeatsAvailable:   DefaultSilverSeats,
		GoldSeatsAvailable:     DefaultGoldSeats,
		PlatinumSeatsAvailable: DefaultPlatinumSeats,
		SilverPrice:            DefaultSilverPrice,
		GoldPrice:              DefaultGoldPrice,
		PlatinumPrice:          DefaultPlatinumPrice,
	}
}

// SeatPrice resolves the unit price of a seat from the first character of its
// label. Unknown or empty labels are priced as silver.
func (s *Showtime) SeatPrice(label string) decimal.Decimal {
	return s.CategoryPrice(CategoryFromLabel(label))
}

func (s *Showtime) CategoryPrice(category SeatCategory) decimal.Decimal {
	switch category {
	case SeatCategoryGold:
		return s.GoldPrice
	case SeatCategoryPlatinum:
		return s.PlatinumPrice
	default:
		return s.SilverPrice
	}
}

// StartsAt combines the showtime date and time label in loc.
func (s *Showtime) StartsAt(loc *time.Location) (time.Time, error) {
	clock, err := time.Parse(ShowtimeLayout, strings.TrimSpace(s.Time))
	if err != nil {
		return time.Time{}, fmt.Errorf("parse showtime %q: %w", s.Time, err)
	}

	y, m, d := s.Date.Date()

	return time.Date(y, m, d, clock.Hour(), clock.Minute(), 0, 0, loc), nil
}

// SeatCategoryPrice is a row of a showtime's price table.
type SeatCategoryPrice struct {
	Category       SeatCategory
	SeatsAvailable int
	Price          decimal.Decimal
}

func (s *Showtime) PriceTable() []SeatCategoryPrice {
	return []SeatCategoryPrice{
		{Category: SeatCategorySilver, SeatsAvailable: s.SilverSeatsAvailable, Price: s.SilverPrice},
		{Category: SeatCategoryGold, SeatsAvailable: s.GoldSeatsAvailable, Price: s.GoldPrice},
		{Category: SeatCategoryPlatinum, SeatsAvailable: s.PlatinumSeatsAvailable, Price: s.PlatinumPrice},
	}
}

type ShowtimeRepository interface {
	GetById(ctx context.Context, id int64) (*Showtime, error)
	GetByKey(ctx context.Context, key ShowtimeKey) (*Showtime, error)
}
