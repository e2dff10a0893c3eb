package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

type SeatCategory string

const (
	SeatCategorySilver   SeatCategory = "SILVER"
	SeatCategoryGold     SeatCategory = "GOLD"
	SeatCategoryPlatinum SeatCategory = "PLATINUM"
)

// ParseSeatCategory matches s case-insensitively against the known categories.
func ParseSeatCategory(s string) (SeatCategory, bool) {
	switch SeatCategory(strings.ToUpper(strings.TrimSpace(s))) {
	case SeatCategorySilver:
		return SeatCategorySilver, true
	case SeatCategoryGold:
		return SeatCategoryGold, true
	case SeatCategoryPlatinum:
		return SeatCategoryPlatinum, true
	default:
		return "", false
	}
}

// CategoryFromLabel infers the category from the seat label prefix
// (S, G or P), defaulting to silver.
func CategoryFromLabel(label string) SeatCategory {
	if label == "" {
		return SeatCategorySilver
	}

	switch label[0] {
	case 'G':
		return SeatCategoryGold
	case 'P':
		return SeatCategoryPlatinum
	default:
		return SeatCategorySilver
	}
}

// ResolveSeatCategory prefers an explicitly requested category over the one
// encoded in the label.
func ResolveSeatCategory(requested, label string) SeatCategory {
	if category, ok := ParseSeatCategory(requested); ok {
		return category
	}

	return CategoryFromLabel(label)
}

// ParseSeatLabels splits a comma-joined seat list, trimming blanks.
func ParseSeatLabels(seats string) []string {
	parts := strings.Split(seats, ",")
	labels := make([]string, 0, len(parts))

	for _, p := range parts {
		label := strings.TrimSpace(p)
		if label == "" {
			continue
		}

		labels = append(labels, label)
	}

	return labels
}

type BookedSeat struct {
	ID         int64
	BookingID  int64
	SeatNumber string
	Category   SeatCategory
	Price      decimal.Decimal
}

// NewBookedSeats snapshots the price and category of every label against showtime.
func NewBookedSeats(showtime *Showtime, labels []string, requestedCategory string) []BookedSeat {
	seats := make([]BookedSeat, len(labels))

	for i, label := range labels {
		seats[i] = BookedSeat{
			SeatNumber: label,
			Category:   ResolveSeatCategory(requestedCategory, label),
			Price:      showtime.SeatPrice(label),
		}
	}

	return seats
}
