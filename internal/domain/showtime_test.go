package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testShowtime() *Showtime {
	st := NewDefaultShowtime(ShowtimeKey{
		MovieID:   550,
		TheaterID: "ChIJ-theater",
		Date:      time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		Time:      "10:00 AM",
	})

	return &st
}

func TestSeatPrice(t *testing.T) {
	st := testShowtime()

	tests := []struct {
		label string
		want  decimal.Decimal
	}{
		{"S12", DefaultSilverPrice},
		{"G5", DefaultGoldPrice},
		{"P1", DefaultPlatinumPrice},
		{"X9", DefaultSilverPrice},
		{"g5", DefaultSilverPrice},
		{"", DefaultSilverPrice},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.True(t, tt.want.Equal(st.SeatPrice(tt.label)), "got %s", st.SeatPrice(tt.label))
		})
	}
}

func TestSeatPriceUsesShowtimePrices(t *testing.T) {
	st := testShowtime()
	st.GoldPrice = decimal.NewFromInt(500)

	assert.Equal(t, "500", st.SeatPrice("G1").String())
}

func TestStartsAt(t *testing.T) {
	loc := time.FixedZone("IST", 5*60*60+30*60)
	st := testShowtime()
	st.Time = "7:30 PM"

	got, err := st.StartsAt(loc)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, 3, 1, 19, 30, 0, 0, loc), got)
}

func TestStartsAtInvalidLabel(t *testing.T) {
	st := testShowtime()
	st.Time = "19:30"

	_, err := st.StartsAt(time.UTC)
	assert.Error(t, err)
}

func TestPriceTable(t *testing.T) {
	table := testShowtime().PriceTable()

	require.Len(t, table, 3)
	assert.Equal(t, SeatCategorySilver, table[0].Category)
	assert.Equal(t, DefaultSilverSeats, table[0].SeatsAvailable)
	assert.Equal(t, SeatCategoryPlatinum, table[2].Category)
	assert.True(t, DefaultPlatinumPrice.Equal(table[2].Price))
}
