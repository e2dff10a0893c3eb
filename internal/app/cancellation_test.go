package app

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/metinatakli/cinex-booking/api"
	"github.com/metinatakli/cinex-booking/internal/domain"
	"github.com/metinatakli/cinex-booking/internal/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type CancelBookingTestSuite struct {
	suite.Suite
	app          *Application
	bookingRepo  *mocks.MockBookingRepo
	showtimeRepo *mocks.MockShowtimeRepo
}

func (s *CancelBookingTestSuite) SetupTest() {
	s.bookingRepo = new(mocks.MockBookingRepo)
	s.showtimeRepo = new(mocks.MockShowtimeRepo)

	s.app = newTestApplication(func(a *Application) {
		a.bookingRepo = s.bookingRepo
		a.showtimeRepo = s.showtimeRepo
	})
}

func TestCancelBookingSuite(t *testing.T) {
	suite.Run(t, new(CancelBookingTestSuite))
}

func confirmedBooking() *domain.Booking {
	return &domain.Booking{
		ID:         42,
		Reference:  testOrderId,
		UserID:     7,
		ShowtimeID: 3,
		Status:     domain.BookingStatusConfirmed,
	}
}

func showtimeAt(date time.Time, label string) *domain.Showtime {
	return &domain.Showtime{ID: 3, MovieID: 550, TheaterID: "ChIJ-theater", Date: date, Time: label}
}

var tomorrow = time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)

func (s *CancelBookingTestSuite) TestCancelBookingHandler() {
	refundPending := domain.PaymentStatusRefundPending
	passedAt := time.Date(2025, 3, 1, 10, 0, 0, 0, testLocation)

	tests := []struct {
		name         string
		reference    string
		setupMocks   func()
		wantStatus   int
		wantError    *api.CancellationErrorResponse
		wantResponse *api.CancelBookingResponse
	}{
		{
			name:      "should fail when no booking has the reference",
			reference: "ORD-MISSING",
			setupMocks: func() {
				s.bookingRepo.On("GetByReference", mock.Anything, "ORD-MISSING").Return(nil, domain.ErrRecordNotFound).Once()
			},
			wantStatus: http.StatusNotFound,
			wantError: &api.CancellationErrorResponse{
				Status:  "error",
				Code:    string(domain.CodeBookingNotFound),
				Message: "No booking found with reference: ORD-MISSING",
			},
		},
		{
			name:      "should fall back to the numeric id",
			reference: "42",
			setupMocks: func() {
				s.bookingRepo.On("GetByReference", mock.Anything, "42").Return(nil, domain.ErrRecordNotFound).Once()
				s.bookingRepo.On("GetById", mock.Anything, int64(42)).Return(confirmedBooking(), nil).Once()
				s.showtimeRepo.On("GetById", mock.Anything, int64(3)).Return(showtimeAt(tomorrow, "7:00 PM"), nil).Once()
				s.bookingRepo.On("Cancel", mock.Anything, mock.Anything, testNow).
					Return(&domain.CancellationResult{Reference: testOrderId, PaymentStatus: &refundPending, CancelledAt: testNow}, nil).Once()
			},
			wantStatus: http.StatusOK,
			wantResponse: &api.CancelBookingResponse{
				Status:           "success",
				Message:          "Booking cancelled successfully",
				BookingReference: testOrderId,
				RefundStatus:     "REFUND_PENDING",
				CancellationTime: testNow,
			},
		},
		{
			name:      "should refuse an already cancelled booking",
			reference: testOrderId,
			setupMocks: func() {
				booking := confirmedBooking()
				booking.Status = domain.BookingStatusCancelled
				s.bookingRepo.On("GetByReference", mock.Anything, testOrderId).Return(booking, nil).Once()
				s.showtimeRepo.On("GetById", mock.Anything, int64(3)).Return(showtimeAt(tomorrow, "7:00 PM"), nil).Once()
			},
			wantStatus: http.StatusConflict,
			wantError: &api.CancellationErrorResponse{
				Status:  "error",
				Code:    string(domain.CodeAlreadyCancelled),
				Message: "This booking was already cancelled",
			},
		},
		{
			name:      "should refuse a booking whose payment failed",
			reference: testOrderId,
			setupMocks: func() {
				booking := confirmedBooking()
				booking.Status = domain.BookingStatusFailed
				s.bookingRepo.On("GetByReference", mock.Anything, testOrderId).Return(booking, nil).Once()
				s.showtimeRepo.On("GetById", mock.Anything, int64(3)).Return(showtimeAt(tomorrow, "7:00 PM"), nil).Once()
			},
			wantStatus: http.StatusBadRequest,
			wantError: &api.CancellationErrorResponse{
				Status:  "error",
				Code:    string(domain.CodePaymentFailed),
				Message: "Cannot cancel a failed payment booking",
			},
		},
		{
			name:      "should refuse when the showtime no longer exists",
			reference: testOrderId,
			setupMocks: func() {
				s.bookingRepo.On("GetByReference", mock.Anything, testOrderId).Return(confirmedBooking(), nil).Once()
				s.showtimeRepo.On("GetById", mock.Anything, int64(3)).Return(nil, domain.ErrRecordNotFound).Once()
			},
			wantStatus: http.StatusUnprocessableEntity,
			wantError: &api.CancellationErrorResponse{
				Status:  "error",
				Code:    string(domain.CodeShowtimeNotFound),
				Message: "Associated showtime no longer exists",
			},
		},
		{
			name:      "should fail on an unparseable showtime label",
			reference: testOrderId,
			setupMocks: func() {
				s.bookingRepo.On("GetByReference", mock.Anything, testOrderId).Return(confirmedBooking(), nil).Once()
				s.showtimeRepo.On("GetById", mock.Anything, int64(3)).Return(showtimeAt(tomorrow, "19:00"), nil).Once()
			},
			wantStatus: http.StatusInternalServerError,
			wantError: &api.CancellationErrorResponse{
				Status:  "error",
				Code:    string(domain.CodeInvalidShowtimeFormat),
				Message: "Showtime format is invalid",
			},
		},
		{
			name:      "should refuse after the showtime has started",
			reference: testOrderId,
			setupMocks: func() {
				s.bookingRepo.On("GetByReference", mock.Anything, testOrderId).Return(confirmedBooking(), nil).Once()
				s.showtimeRepo.On("GetById", mock.Anything, int64(3)).
					Return(showtimeAt(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), "10:00 AM"), nil).Once()
			},
			wantStatus: http.StatusForbidden,
			wantError: &api.CancellationErrorResponse{
				Status:   "error",
				Code:     string(domain.CodeShowtimePassed),
				Message:  "Cannot cancel booking after showtime has started",
				Showtime: &passedAt,
			},
		},
		{
			name:      "should report a lost cancellation race as already cancelled",
			reference: testOrderId,
			setupMocks: func() {
				s.bookingRepo.On("GetByReference", mock.Anything, testOrderId).Return(confirmedBooking(), nil).Once()
				s.showtimeRepo.On("GetById", mock.Anything, int64(3)).Return(showtimeAt(tomorrow, "7:00 PM"), nil).Once()
				s.bookingRepo.On("Cancel", mock.Anything, mock.Anything, testNow).Return(nil, domain.ErrEditConflict).Once()
			},
			wantStatus: http.StatusConflict,
			wantError: &api.CancellationErrorResponse{
				Status:  "error",
				Code:    string(domain.CodeAlreadyCancelled),
				Message: "This booking was already cancelled",
			},
		},
		{
			name:      "should report unexpected failures as system errors",
			reference: testOrderId,
			setupMocks: func() {
				s.bookingRepo.On("GetByReference", mock.Anything, testOrderId).Return(confirmedBooking(), nil).Once()
				s.showtimeRepo.On("GetById", mock.Anything, int64(3)).Return(showtimeAt(tomorrow, "7:00 PM"), nil).Once()
				s.bookingRepo.On("Cancel", mock.Anything, mock.Anything, testNow).Return(nil, errors.New("connection reset by peer")).Once()
			},
			wantStatus: http.StatusInternalServerError,
			wantError: &api.CancellationErrorResponse{
				Status:  "error",
				Code:    string(domain.CodeSystemError),
				Message: "Failed to cancel booking",
				Details: "connection reset by peer",
			},
		},
		{
			name:      "should cancel a booking without payment",
			reference: testOrderId,
			setupMocks: func() {
				s.bookingRepo.On("GetByReference", mock.Anything, testOrderId).Return(confirmedBooking(), nil).Once()
				s.showtimeRepo.On("GetById", mock.Anything, int64(3)).Return(showtimeAt(tomorrow, "7:00 PM"), nil).Once()
				s.bookingRepo.On("Cancel", mock.Anything, mock.Anything, testNow).
					Return(&domain.CancellationResult{Reference: testOrderId, CancelledAt: testNow}, nil).Once()
			},
			wantStatus: http.StatusOK,
			wantResponse: &api.CancelBookingResponse{
				Status:           "success",
				Message:          "Booking cancelled successfully",
				BookingReference: testOrderId,
				RefundStatus:     "no_payment",
				CancellationTime: testNow,
			},
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.SetupTest()

			defer s.bookingRepo.AssertExpectations(s.T())
			defer s.showtimeRepo.AssertExpectations(s.T())

			if tt.setupMocks != nil {
				tt.setupMocks()
			}

			w, r := executeRequest(s.T(), http.MethodPost, "/bookings/"+tt.reference+"/cancel", nil)
			r = withURLParam(r, "bookingRef", tt.reference)

			s.app.CancelBookingHandler(w, r)

			s.Equal(tt.wantStatus, w.Code)

			if tt.wantResponse != nil {
				var resp api.CancelBookingResponse
				decodeJSON(s.T(), w, &resp)

				diff := cmp.Diff(*tt.wantResponse, resp, timeEqual)
				s.Empty(diff, "Response mismatch (-want +got):\n%s", diff)
				return
			}

			var resp api.CancellationErrorResponse
			decodeJSON(s.T(), w, &resp)

			diff := cmp.Diff(*tt.wantError, resp, timeEqual)
			s.Empty(diff, "Response mismatch (-want +got):\n%s", diff)
		})
	}
}

// timeEqual compares instants, ignoring the location lost in JSON.
var timeEqual = cmp.Comparer(func(a, b time.Time) bool {
	return a.Equal(b)
})
