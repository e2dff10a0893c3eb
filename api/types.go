package api

import (
	"encoding/json"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/shopspring/decimal"
)

type ErrorResponse struct {
	Message   string    `json:"message"`
	RequestId string    `json:"requestId"`
	Timestamp time.Time `json:"timestamp"`
}

type ValidationError struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

type ValidationErrorResponse struct {
	Message          string            `json:"message"`
	RequestId        string            `json:"requestId"`
	Timestamp        time.Time         `json:"timestamp"`
	ValidationErrors []ValidationError `json:"validationErrors"`
}

// GatewayErrorResponse reports a payment gateway failure with the gateway's own code.
type GatewayErrorResponse struct {
	Status  string `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// CancellationErrorResponse reports a booking cancellation that did not happen.
type CancellationErrorResponse struct {
	Status   string     `json:"status"`
	Code     string     `json:"code"`
	Message  string     `json:"message"`
	Details  string     `json:"details,omitempty"`
	Showtime *time.Time `json:"showtime,omitempty"`
}

// SimpleErrorResponse is the error body of the verification callback.
type SimpleErrorResponse struct {
	Error string `json:"error"`
}

type SystemInfo struct {
	Version     string `json:"version"`
	Environment string `json:"environment"`
}

type HealthcheckResponse struct {
	Status     string     `json:"status"`
	SystemInfo SystemInfo `json:"systemInfo"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AlreadyLoggedInResponse struct {
	Message string `json:"message"`
}

type FoodItem struct {
	Id          string          `json:"id"`
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description,omitempty"`
	Category    string          `json:"category,omitempty"`
	Image       string          `json:"image,omitempty"`
	Allergens   []string        `json:"allergens,omitempty"`
	Price       decimal.Decimal `json:"price" validate:"gte=0"`
	Calories    int             `json:"calories,omitempty"`
	Quantity    int             `json:"quantity" validate:"min=1"`
}

type CreateOrderRequest struct {
	Amount    decimal.Decimal    `json:"amount" validate:"gt=0"`
	MovieId   int64              `json:"movieId" validate:"required,min=1"`
	TheaterId string             `json:"theaterId" validate:"required"`
	Showtime  string             `json:"showtime" validate:"required,showtime"`
	Category  string             `json:"category,omitempty" validate:"omitempty,seat_category"`
	Seats     []string           `json:"seats" validate:"required,min=1,dive,required"`
	Date      openapi_types.Date `json:"date" validate:"required"`
	FoodItems []FoodItem         `json:"foodItems,omitempty" validate:"dive"`
}

type CreateOrderResponse struct {
	Id       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Key      string `json:"key"`
}

// VerifyPaymentRequest is posted after checkout. Cart fields are optional and
// recovered from the order when absent.
type VerifyPaymentRequest struct {
	OrderId   string      `json:"orderId" validate:"required"`
	PaymentId string      `json:"paymentId" validate:"required"`
	Signature string      `json:"signature" validate:"required"`
	Seats     string      `json:"seats,omitempty"`
	FoodItems string      `json:"foodItems,omitempty"`
	Showtime  string      `json:"showtime,omitempty"`
	Date      string      `json:"date,omitempty"`
	Category  string      `json:"category,omitempty"`
	MovieId   json.Number `json:"movieId,omitempty"`
	TheaterId string      `json:"theaterId,omitempty"`
	Amount    json.Number `json:"amount,omitempty"`
	UserEmail string      `json:"userEmail,omitempty"`
}

type VerifyPaymentResponse struct {
	Status      string `json:"status"`
	BookingId   string `json:"bookingId"`
	RedirectUrl string `json:"redirectUrl"`
}

type CancelBookingResponse struct {
	Status           string    `json:"status"`
	Message          string    `json:"message"`
	BookingReference string    `json:"booking_reference"`
	RefundStatus     string    `json:"refund_status"`
	CancellationTime time.Time `json:"cancellation_time"`
}

type BookedSeatsResponse struct {
	Status      string   `json:"status"`
	BookedSeats []string `json:"bookedSeats"`
}

type SeatCategory struct {
	Type           string          `json:"type"`
	Price          decimal.Decimal `json:"price"`
	SeatsAvailable int             `json:"seatsAvailable"`
}

type ShowtimeSlot struct {
	Time           string         `json:"time"`
	SeatCategories []SeatCategory `json:"seatCategories"`
}

type ShowtimesResponse struct {
	MovieId   int64              `json:"movieId"`
	TheaterId string             `json:"theaterId"`
	Date      openapi_types.Date `json:"date"`
	Showtimes []ShowtimeSlot     `json:"showtimes"`
}

type SeatPricesResponse struct {
	Prices map[string]decimal.Decimal `json:"prices"`
}

type Seat struct {
	SeatNumber string          `json:"seatNumber"`
	Category   string          `json:"category"`
	Price      decimal.Decimal `json:"price"`
}

type FoodOrder struct {
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

type Movie struct {
	Id         int64  `json:"id"`
	Title      string `json:"title"`
	PosterPath string `json:"posterPath,omitempty"`
	Runtime    int    `json:"runtime,omitempty"`
	Language   string `json:"language,omitempty"`
}

type Theater struct {
	Id      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
}

type BookingDetailsResponse struct {
	BookingReference string             `json:"bookingReference"`
	Status           string             `json:"status"`
	BookingTime      time.Time          `json:"bookingTime"`
	TotalAmount      decimal.Decimal    `json:"totalAmount"`
	ShowDate         openapi_types.Date `json:"showDate"`
	ShowTime         string             `json:"showTime"`
	PaymentMethod    string             `json:"paymentMethod,omitempty"`
	PaymentStatus    string             `json:"paymentStatus,omitempty"`
	Movie            *Movie             `json:"movie,omitempty"`
	Theater          *Theater           `json:"theater,omitempty"`
	Seats            []Seat             `json:"seats"`
	FoodOrders       []FoodOrder        `json:"foodOrders"`
}

type BookingListItem struct {
	Id            int64              `json:"id"`
	Reference     string             `json:"bookingReference"`
	Status        string             `json:"status"`
	TotalAmount   decimal.Decimal    `json:"totalAmount"`
	MovieId       int64              `json:"movieId"`
	TheaterId     string             `json:"theaterId"`
	ShowDate      openapi_types.Date `json:"showDate"`
	ShowTime      string             `json:"showTime"`
	BookingTime   time.Time          `json:"bookingTime"`
	Expired       bool               `json:"expired"`
	TimeRemaining string             `json:"timeRemaining,omitempty"`
}

type Pagination struct {
	CurrentPage  int `json:"currentPage"`
	FirstPage    int `json:"firstPage"`
	LastPage     int `json:"lastPage"`
	PageSize     int `json:"pageSize"`
	TotalRecords int `json:"totalRecords"`
}

type UserBookingsResponse struct {
	Bookings []BookingListItem `json:"bookings"`
	Meta     Pagination        `json:"meta"`
}
