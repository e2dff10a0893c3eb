package app

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/metinatakli/cinex-booking/api"
	"github.com/metinatakli/cinex-booking/internal/domain"
	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/shopspring/decimal"
)

// maxDaysAhead bounds how far in advance showtimes can be browsed.
const maxDaysAhead = 2

func (app *Application) GetShowtimesHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	movieId, err := strconv.ParseInt(q.Get("movieId"), 10, 64)
	if err != nil || movieId < 1 {
		app.badRequestResponse(w, r, errors.New("movieId must be a positive integer"))
		return
	}

	theaterId := strings.TrimSpace(q.Get("theaterId"))
	if theaterId == "" {
		app.badRequestResponse(w, r, errors.New("theaterId is required"))
		return
	}

	date, err := parseDate(q.Get("date"))
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if date.After(app.lastBookableDate()) {
		app.badRequestResponse(w, r, fmt.Errorf("date must be within the next %d days", maxDaysAhead))
		return
	}

	slots := make([]api.ShowtimeSlot, 0, len(domain.DailyShowtimes))

	for _, label := range domain.DailyShowtimes {
		key := domain.ShowtimeKey{MovieID: movieId, TheaterID: theaterId, Date: date, Time: label}

		showtime, err := app.showtimeRepo.GetByKey(r.Context(), key)
		if err != nil {
			if !errors.Is(err, domain.ErrRecordNotFound) {
				app.serverErrorResponse(w, r, err)
				return
			}

			defaults := domain.NewDefaultShowtime(key)
			showtime = &defaults
		}

		slots = append(slots, api.ShowtimeSlot{
			Time:           label,
			SeatCategories: toSeatCategories(showtime.PriceTable()),
		})
	}

	resp := api.ShowtimesResponse{
		MovieId:   movieId,
		TheaterId: theaterId,
		Date:      openapi_types.Date{Time: date},
		Showtimes: slots,
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetSeatPricesHandler(w http.ResponseWriter, r *http.Request) {
	defaults := domain.NewDefaultShowtime(domain.ShowtimeKey{})

	resp := api.SeatPricesResponse{
		Prices: make(map[string]decimal.Decimal),
	}

	for _, row := range defaults.PriceTable() {
		resp.Prices[string(row.Category)] = row.Price
	}

	err := app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// lastBookableDate is the latest show date, at midnight UTC like parsed dates,
// that can be browsed today in the theater's timezone.
func (app *Application) lastBookableDate() time.Time {
	y, m, d := app.now().In(app.location).Date()

	return time.Date(y, m, d+maxDaysAhead, 0, 0, 0, 0, time.UTC)
}

func toSeatCategories(rows []domain.SeatCategoryPrice) []api.SeatCategory {
	categories := make([]api.SeatCategory, len(rows))

	for i, row := range rows {
		categories[i] = api.SeatCategory{
			Type:           string(row.Category),
			Price:          row.Price,
			SeatsAvailable: row.SeatsAvailable,
		}
	}

	return categories
}
