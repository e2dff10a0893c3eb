package app

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/metinatakli/cinex-booking/api"
	"github.com/metinatakli/cinex-booking/internal/domain"
)

func (app *Application) CreateOrderHandler(w http.ResponseWriter, r *http.Request) {
	logger := app.contextGetLogger(r)

	var input api.CreateOrderRequest

	err := app.readJSON(w, r, &input)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(input)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	userId := app.contextGetUserId(r)
	user, err := app.userRepo.GetById(r.Context(), userId)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.unauthorizedAccessResponse(w, r)
		default:
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	cart := toCart(input)

	notes, err := cart.Notes(user.Email)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	order, err := app.gateway.CreateOrder(r.Context(), domain.OrderRequest{
		Amount:   domain.ToMinorUnits(cart.Amount),
		Currency: app.config.Gateway.Currency,
		Receipt:  domain.NewReceiptToken(app.now()),
		Notes:    notes,
	})
	if err != nil {
		app.gatewayErrorResponse(w, r, err)
		return
	}

	app.metrics.ordersCreated.Add(context.WithoutCancel(r.Context()), 1)
	logger.Info("payment order created", "order_id", order.ID, "amount", order.Amount, "user_id", userId)

	resp := api.CreateOrderResponse{
		Id:       order.ID,
		Amount:   order.Amount,
		Currency: order.Currency,
		Key:      app.gateway.KeyID(),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toCart(input api.CreateOrderRequest) domain.Cart {
	seats := make([]string, 0, len(input.Seats))
	for _, seat := range input.Seats {
		if label := strings.TrimSpace(seat); label != "" {
			seats = append(seats, label)
		}
	}

	food := make([]domain.FoodLineItem, len(input.FoodItems))
	for i, item := range input.FoodItems {
		food[i] = domain.FoodLineItem{
			ID:          item.Id,
			Name:        item.Name,
			Description: item.Description,
			Category:    item.Category,
			Image:       item.Image,
			Allergens:   item.Allergens,
			Price:       item.Price,
			Calories:    item.Calories,
			Quantity:    item.Quantity,
		}
	}

	return domain.Cart{
		Amount:    input.Amount,
		MovieID:   input.MovieId,
		TheaterID: strings.TrimSpace(input.TheaterId),
		Showtime:  strings.TrimSpace(input.Showtime),
		Date:      input.Date.Time,
		Category:  input.Category,
		Seats:     seats,
		FoodItems: food,
	}
}
