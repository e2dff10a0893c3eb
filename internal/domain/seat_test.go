package domain

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func TestParseSeatLabels(t *testing.T) {
	got := ParseSeatLabels(" S12, S13 ,,G5, ")

	if diff := cmp.Diff([]string{"S12", "S13", "G5"}, got); diff != "" {
		t.Errorf("ParseSeatLabels() mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveSeatCategory(t *testing.T) {
	tests := []struct {
		name      string
		requested string
		label     string
		want      SeatCategory
	}{
		{"from label", "", "G5", SeatCategoryGold},
		{"requested wins", "platinum", "S1", SeatCategoryPlatinum},
		{"invalid request falls back to label", "vip", "P2", SeatCategoryPlatinum},
		{"unknown label", "", "Z1", SeatCategorySilver},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveSeatCategory(tt.requested, tt.label))
		})
	}
}

func TestNewBookedSeats(t *testing.T) {
	st := testShowtime()

	seats := NewBookedSeats(st, []string{"S12", "S13", "G5"}, "")

	total := (&Booking{Seats: seats}).ComputeTotal()
	assert.Equal(t, "450", total.String())
	assert.Equal(t, SeatCategoryGold, seats[2].Category)
}

func TestNewBookedSeatsPriceFollowsLabel(t *testing.T) {
	seats := NewBookedSeats(testShowtime(), []string{"S1"}, "GOLD")

	assert.Equal(t, SeatCategoryGold, seats[0].Category)
	assert.True(t, DefaultSilverPrice.Equal(seats[0].Price))
}
