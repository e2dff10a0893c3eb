package app

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/metinatakli/cinex-booking/api"
	"github.com/metinatakli/cinex-booking/internal/domain"
	appvalidator "github.com/metinatakli/cinex-booking/internal/validator"
)

const (
	ErrInternalServer     = "The server encountered a problem and could not process your request"
	ErrNotFound           = "The requested resource not found"
	ErrMethodNotAllowed   = "The %s method is not supported for this resource"
	ErrUnauthorizedAccess = "You must be authenticated to access this resource"
	ErrInvalidCredentials = "Invalid authentication credentials"
	ErrEditConflict       = "Unable to update the record due to an edit conflict, please try again"
	ErrFailedValidation   = "One or more fields are invalid"
	ErrBookingNotFound    = "Booking not found"
	ErrUserNotFound       = "User not found"
)

func (app *Application) logError(r *http.Request, err error) {
	app.contextGetLogger(r).Error(err.Error(), "method", r.Method, "uri", r.URL.RequestURI())
}

// The errorResponse() method is a generic helper for sending JSON-formatted error
// messages to the client with a given status code.
func (app *Application) errorResponse(w http.ResponseWriter, r *http.Request, status int, message string) {
	resp := api.ErrorResponse{
		Message:   message,
		RequestId: middleware.GetReqID(r.Context()),
		Timestamp: time.Now(),
	}

	err := app.writeJSON(w, status, resp, nil)
	if err != nil {
		app.logError(r, err)
		w.WriteHeader(500)
	}
}

func (app *Application) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logError(r, err)
	app.errorResponse(w, r, http.StatusInternalServerError, ErrInternalServer)
}

func (app *Application) notFoundResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusNotFound, ErrNotFound)
}

func (app *Application) notFoundResponseWithErr(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusNotFound, err.Error())
}

func (app *Application) methodNotAllowedResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusMethodNotAllowed, fmt.Sprintf(ErrMethodNotAllowed, r.Method))
}

func (app *Application) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func (app *Application) editConflictResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusConflict, ErrEditConflict)
}

func (app *Application) unauthorizedAccessResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusUnauthorized, ErrUnauthorizedAccess)
}

func (app *Application) invalidCredentialsResponse(w http.ResponseWriter, r *http.Request) {
	app.errorResponse(w, r, http.StatusUnauthorized, ErrInvalidCredentials)
}

func (app *Application) failedValidationResponse(w http.ResponseWriter, r *http.Request, err error) {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		app.badRequestResponse(w, r, err)
		return
	}

	resp := api.ValidationErrorResponse{
		Message:          ErrFailedValidation,
		RequestId:        middleware.GetReqID(r.Context()),
		Timestamp:        time.Now(),
		ValidationErrors: make([]api.ValidationError, 0, len(validationErrs)),
	}

	for _, e := range validationErrs {
		resp.ValidationErrors = append(resp.ValidationErrors, api.ValidationError{
			Field: e.Field(),
			Issue: appvalidator.ValidationMessage(e),
		})
	}

	err = app.writeJSON(w, http.StatusUnprocessableEntity, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

// gatewayErrorResponse relays an error reported by the payment gateway with
// the gateway's own status and code. Anything else is a 500.
func (app *Application) gatewayErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	var gatewayErr *domain.GatewayError
	if !errors.As(err, &gatewayErr) {
		app.logError(r, err)

		resp := api.GatewayErrorResponse{
			Status:  "error",
			Code:    string(domain.CodeSystemError),
			Message: ErrInternalServer,
		}

		if err := app.writeJSON(w, http.StatusInternalServerError, resp, nil); err != nil {
			app.logError(r, err)
		}

		return
	}

	app.contextGetLogger(r).Warn("payment gateway rejected request",
		"status", gatewayErr.StatusCode, "code", gatewayErr.Code, "description", gatewayErr.Description)

	status := gatewayErr.StatusCode
	if status < 400 || status > 599 {
		status = http.StatusBadGateway
	}

	resp := api.GatewayErrorResponse{
		Status:  "error",
		Code:    gatewayErr.Code,
		Message: gatewayErr.Description,
	}

	if err := app.writeJSON(w, status, resp, nil); err != nil {
		app.logError(r, err)
	}
}

// simpleErrorResponse writes the {error} body used by the verification callback.
func (app *Application) simpleErrorResponse(w http.ResponseWriter, r *http.Request, status int, message string) {
	err := app.writeJSON(w, status, api.SimpleErrorResponse{Error: message}, nil)
	if err != nil {
		app.logError(r, err)
		w.WriteHeader(500)
	}
}

func (app *Application) cancellationErrorResponse(w http.ResponseWriter, r *http.Request, err *domain.CancellationError) {
	status := cancellationStatus(err.Code)

	resp := api.CancellationErrorResponse{
		Status:   "error",
		Code:     string(err.Code),
		Message:  err.Message,
		Showtime: err.Showtime,
	}

	if writeErr := app.writeJSON(w, status, resp, nil); writeErr != nil {
		app.logError(r, writeErr)
	}
}

func (app *Application) cancellationSystemErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logError(r, err)

	resp := api.CancellationErrorResponse{
		Status:  "error",
		Code:    string(domain.CodeSystemError),
		Message: "Failed to cancel booking",
		Details: err.Error(),
	}

	if writeErr := app.writeJSON(w, http.StatusInternalServerError, resp, nil); writeErr != nil {
		app.logError(r, writeErr)
	}
}

func cancellationStatus(code domain.CancellationCode) int {
	switch code {
	case domain.CodeBookingNotFound:
		return http.StatusNotFound
	case domain.CodeAlreadyCancelled:
		return http.StatusConflict
	case domain.CodePaymentFailed:
		return http.StatusBadRequest
	case domain.CodeShowtimeNotFound:
		return http.StatusUnprocessableEntity
	case domain.CodeShowtimePassed:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
