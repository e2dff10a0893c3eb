package validator

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/metinatakli/cinex-booking/internal/domain"
	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/shopspring/decimal"
)

const (
	ErrRequired        = "is required"
	ErrEmail           = "must be a valid email address"
	ErrMinLength       = "must be at least %s characters long"
	ErrMaxLength       = "must be at most %s characters long"
	ErrMinItems        = "must contain at least %s item(s)"
	ErrMinValue        = "must be at least %s"
	ErrGreaterThan     = "must be greater than %s"
	ErrShowtimeFormat  = "must be a time like 7:00 PM"
	ErrSeatCategory    = "must be one of SILVER, GOLD or PLATINUM"
	ErrDefaultInvalid  = "is invalid"
	ErrDateTooFarAhead = "must be within the next %d days"
)

func NewValidator() *validator.Validate {
	validator := validator.New(validator.WithRequiredStructEnabled())

	validator.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
	validator.RegisterCustomTypeFunc(dateValue, openapi_types.Date{})

	validator.RegisterValidation("showtime", validateShowtime)
	validator.RegisterValidation("seat_category", validateSeatCategory)

	return validator
}

// decimalValue lets numeric tags such as gt=0 apply to money fields.
func decimalValue(field reflect.Value) any {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		return d.InexactFloat64()
	}

	return nil
}

func dateValue(field reflect.Value) any {
	if d, ok := field.Interface().(openapi_types.Date); ok {
		return d.Time
	}

	return nil
}

func validateShowtime(fl validator.FieldLevel) bool {
	_, err := time.Parse(domain.ShowtimeLayout, strings.TrimSpace(fl.Field().String()))
	return err == nil
}

func validateSeatCategory(fl validator.FieldLevel) bool {
	_, ok := domain.ParseSeatCategory(fl.Field().String())
	return ok
}

// ValidationMessage converts validator errors into readable messages
func ValidationMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return ErrRequired
	case "email":
		return ErrEmail
	case "min":
		switch err.Kind() {
		case reflect.String:
			return fmt.Sprintf(ErrMinLength, err.Param())
		case reflect.Slice, reflect.Map, reflect.Array:
			return fmt.Sprintf(ErrMinItems, err.Param())
		default:
			return fmt.Sprintf(ErrMinValue, err.Param())
		}
	case "max":
		return fmt.Sprintf(ErrMaxLength, err.Param())
	case "gt":
		return fmt.Sprintf(ErrGreaterThan, err.Param())
	case "gte":
		return fmt.Sprintf(ErrMinValue, err.Param())
	case "showtime":
		return ErrShowtimeFormat
	case "seat_category":
		return ErrSeatCategory
	default:
		return ErrDefaultInvalid
	}
}
