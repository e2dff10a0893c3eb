package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/metinatakli/cinex-booking/internal/domain"
	"github.com/shopspring/decimal"
)

type PostgresBookingRepository struct {
	db *pgxpool.Pool
}

func NewPostgresBookingRepository(db *pgxpool.Pool) *PostgresBookingRepository {
	return &PostgresBookingRepository{
		db: db,
	}
}

// Materialize resolves the showtime of key, lets build assemble the booking
// and persists the booking, its payment, seats and food orders in a single
// transaction.
func (p *PostgresBookingRepository) Materialize(
	ctx context.Context,
	key domain.ShowtimeKey,
	build domain.BookingBuilder) (*domain.Booking, error) {

	var booking *domain.Booking

	err := runInTx(ctx, p.db, func(tx pgx.Tx) error {
		showtime, err := findOrCreateShowtime(ctx, tx, key)
		if err != nil {
			return err
		}

		booking, err = build(showtime)
		if err != nil {
			return err
		}

		booking.ShowtimeID = showtime.ID

		err = insertBooking(ctx, tx, booking)
		if err != nil {
			return err
		}

		if booking.Payment != nil {
			err = insertPayment(ctx, tx, booking)
			if err != nil {
				return err
			}
		}

		err = insertBookedSeats(ctx, tx, booking)
		if err != nil {
			return err
		}

		return insertFoodOrders(ctx, tx, booking)
	})

	if err != nil {
		if isUniqueViolation(err, "bookings_reference_key") {
			return nil, domain.ErrDuplicateBooking
		}

		return nil, err
	}

	return booking, nil
}

func insertBooking(ctx context.Context, tx pgx.Tx, booking *domain.Booking) error {
	query := `
		INSERT INTO bookings (booking_reference, user_id, showtime_id, total_amount, payment_status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, booking_time
	`

	return tx.QueryRow(
		ctx,
		query,
		booking.Reference,
		booking.UserID,
		booking.ShowtimeID,
		booking.TotalAmount,
		booking.Status,
	).Scan(&booking.ID, &booking.BookingTime)
}

// insertPayment stores the booking's payment and links it back to the booking.
func insertPayment(ctx context.Context, tx pgx.Tx, booking *domain.Booking) error {
	payment := booking.Payment
	payment.BookingID = booking.ID

	query := `
		INSERT INTO payments (
			booking_id,
			transaction_id,
			amount,
			currency,
			status,
			payment_method,
			receipt_number
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, payment_time
	`

	err := tx.QueryRow(
		ctx,
		query,
		payment.BookingID,
		payment.TransactionID,
		payment.Amount,
		payment.Currency,
		payment.Status,
		payment.Method,
		payment.ReceiptNumber,
	).Scan(&payment.ID, &payment.PaymentTime)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `UPDATE bookings SET payment_id = $1 WHERE id = $2`, payment.ID, booking.ID)
	if err != nil {
		return err
	}

	booking.PaymentID = &payment.ID

	return nil
}

func insertBookedSeats(ctx context.Context, tx pgx.Tx, booking *domain.Booking) error {
	if len(booking.Seats) == 0 {
		return nil
	}

	query := `
		INSERT INTO booked_seats (booking_id, seat_number, seat_category, price)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	batch := &pgx.Batch{}

	for i := range booking.Seats {
		seat := &booking.Seats[i]
		seat.BookingID = booking.ID

		batch.Queue(query, seat.BookingID, seat.SeatNumber, seat.Category, seat.Price).
			QueryRow(func(row pgx.Row) error {
				return row.Scan(&seat.ID)
			})
	}

	return tx.SendBatch(ctx, batch).Close()
}

func insertFoodOrders(ctx context.Context, tx pgx.Tx, booking *domain.Booking) error {
	query := `
		INSERT INTO food_orders (booking_id, food_item_id, quantity, price_at_order)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	for i := range booking.FoodOrders {
		order := &booking.FoodOrders[i]
		order.BookingID = booking.ID

		item, err := findOrCreateFoodItem(ctx, tx, order.FoodItem)
		if err != nil {
			return err
		}

		order.FoodItem = item
		order.FoodItemID = item.ID

		err = tx.QueryRow(ctx, query, order.BookingID, order.FoodItemID, order.Quantity, order.PriceAtOrder).
			Scan(&order.ID)
		if err != nil {
			return err
		}
	}

	return nil
}

// findOrCreateFoodItem looks an item up by its exact name, creating it from
// item when unseen.
func findOrCreateFoodItem(ctx context.Context, tx pgx.Tx, item *domain.FoodItem) (*domain.FoodItem, error) {
	insert := `
		INSERT INTO food_items (name, description, price, image_url, is_available, category)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT ON CONSTRAINT food_items_name_key DO NOTHING
	`

	_, err := tx.Exec(ctx, insert, item.Name, item.Description, item.Price, item.ImageUrl, item.IsAvailable, item.Category)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, name, description, price, image_url, is_available, category
		FROM food_items
		WHERE name = $1
	`

	var found domain.FoodItem
	var category string

	err = tx.QueryRow(ctx, query, item.Name).Scan(
		&found.ID,
		&found.Name,
		&found.Description,
		&found.Price,
		&found.ImageUrl,
		&found.IsAvailable,
		&category,
	)
	if err != nil {
		return nil, err
	}

	found.Category = domain.ParseFoodCategory(category)

	return &found, nil
}

const bookingColumns = `
	b.id, b.booking_reference, b.user_id, b.showtime_id, b.booking_time,
	b.total_amount, b.payment_status, b.payment_id,
	p.id, p.transaction_id, p.amount, p.currency, p.status, p.payment_method,
	p.payment_time, p.receipt_number`

func (p *PostgresBookingRepository) GetByReference(ctx context.Context, reference string) (*domain.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings b
		LEFT JOIN payments p ON p.booking_id = b.id
		WHERE b.booking_reference = $1
	`

	return p.getBooking(ctx, query, reference)
}

func (p *PostgresBookingRepository) GetById(ctx context.Context, id int64) (*domain.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings b
		LEFT JOIN payments p ON p.booking_id = b.id
		WHERE b.id = $1
	`

	return p.getBooking(ctx, query, id)
}

func (p *PostgresBookingRepository) getBooking(ctx context.Context, query string, arg any) (*domain.Booking, error) {
	booking, err := scanBooking(p.db.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}

		return nil, err
	}

	booking.Seats, err = p.retrieveBookedSeats(ctx, booking.ID)
	if err != nil {
		return nil, err
	}

	booking.FoodOrders, err = p.retrieveFoodOrders(ctx, booking.ID)
	if err != nil {
		return nil, err
	}

	return booking, nil
}

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var (
		booking    domain.Booking
		showtimeID *int64
		status     string

		paymentID     *int64
		transactionID *string
		amount        decimal.NullDecimal
		currency      *string
		paymentStatus *string
		method        *string
		paymentTime   *time.Time
		receiptNumber *string
	)

	err := row.Scan(
		&booking.ID,
		&booking.Reference,
		&booking.UserID,
		&showtimeID,
		&booking.BookingTime,
		&booking.TotalAmount,
		&status,
		&booking.PaymentID,
		&paymentID,
		&transactionID,
		&amount,
		&currency,
		&paymentStatus,
		&method,
		&paymentTime,
		&receiptNumber,
	)
	if err != nil {
		return nil, err
	}

	booking.Status = domain.ParseBookingStatus(status)

	if showtimeID != nil {
		booking.ShowtimeID = *showtimeID
	}

	if paymentID != nil {
		booking.Payment = &domain.Payment{
			ID:            *paymentID,
			BookingID:     booking.ID,
			TransactionID: *transactionID,
			Amount:        amount.Decimal,
			Currency:      *currency,
			Status:        domain.PaymentStatus(*paymentStatus),
			Method:        domain.PaymentMethod(*method),
			PaymentTime:   *paymentTime,
			ReceiptNumber: *receiptNumber,
		}
	}

	return &booking, nil
}

func (p *PostgresBookingRepository) retrieveBookedSeats(ctx context.Context, bookingID int64) ([]domain.BookedSeat, error) {
	query := `
		SELECT id, booking_id, seat_number, seat_category, price
		FROM booked_seats
		WHERE booking_id = $1
		ORDER BY id
	`

	rows, err := p.db.Query(ctx, query, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seats := make([]domain.BookedSeat, 0)

	for rows.Next() {
		var seat domain.BookedSeat
		var category string

		err := rows.Scan(&seat.ID, &seat.BookingID, &seat.SeatNumber, &category, &seat.Price)
		if err != nil {
			return nil, err
		}

		seat.Category = domain.SeatCategory(category)
		seats = append(seats, seat)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return seats, nil
}

func (p *PostgresBookingRepository) retrieveFoodOrders(ctx context.Context, bookingID int64) ([]domain.FoodOrder, error) {
	query := `
		SELECT fo.id, fo.booking_id, fo.quantity, fo.price_at_order,
			fi.id, fi.name, fi.description, fi.price, fi.image_url, fi.is_available, fi.category
		FROM food_orders fo
		JOIN food_items fi ON fi.id = fo.food_item_id
		WHERE fo.booking_id = $1
		ORDER BY fo.id
	`

	rows, err := p.db.Query(ctx, query, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]domain.FoodOrder, 0)

	for rows.Next() {
		var order domain.FoodOrder
		var item domain.FoodItem
		var category string

		err := rows.Scan(
			&order.ID,
			&order.BookingID,
			&order.Quantity,
			&order.PriceAtOrder,
			&item.ID,
			&item.Name,
			&item.Description,
			&item.Price,
			&item.ImageUrl,
			&item.IsAvailable,
			&category,
		)
		if err != nil {
			return nil, err
		}

		item.Category = domain.ParseFoodCategory(category)
		order.FoodItemID = item.ID
		order.FoodItem = &item
		orders = append(orders, order)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}

func (p *PostgresBookingRepository) GetSeatNumbersByShowtime(
	ctx context.Context,
	key domain.ShowtimeKey) ([]string, error) {

	query := `
		SELECT bs.seat_number
		FROM booked_seats bs
		JOIN bookings b ON b.id = bs.booking_id
		JOIN showtimes s ON s.id = b.showtime_id
		WHERE s.movie_id = $1 AND s.theater_id = $2 AND s.show_date = $3 AND s.show_time = $4
			AND b.payment_status <> 'CANCELLED'
		ORDER BY bs.seat_number
	`

	rows, err := p.db.Query(ctx, query, key.MovieID, key.TheaterID, key.Date, key.Time)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seats := make([]string, 0)

	for rows.Next() {
		var seat string

		if err := rows.Scan(&seat); err != nil {
			return nil, err
		}

		seats = append(seats, seat)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return seats, nil
}

func (p *PostgresBookingRepository) GetSummariesByUserId(
	ctx context.Context,
	userID int,
	pagination domain.Pagination) ([]domain.BookingSummary, *domain.Metadata, error) {

	query := `
		SELECT
			COUNT(*) OVER(),
			b.id,
			b.booking_reference,
			b.payment_status,
			b.total_amount,
			COALESCE(s.movie_id, 0),
			COALESCE(s.theater_id, ''),
			s.show_date,
			COALESCE(s.show_time, ''),
			b.booking_time
		FROM bookings b
		LEFT JOIN showtimes s ON s.id = b.showtime_id
		WHERE b.user_id = $1
		ORDER BY b.booking_time DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := p.db.Query(ctx, query, userID, pagination.Limit(), pagination.Offset())
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	bookings := make([]domain.BookingSummary, 0)
	totalRecords := 0

	for rows.Next() {
		var summary domain.BookingSummary
		var status string
		var showDate *time.Time

		err := rows.Scan(
			&totalRecords,
			&summary.ID,
			&summary.Reference,
			&status,
			&summary.TotalAmount,
			&summary.MovieID,
			&summary.TheaterID,
			&showDate,
			&summary.Time,
			&summary.BookingTime,
		)
		if err != nil {
			return nil, nil, err
		}

		summary.Status = domain.ParseBookingStatus(status)
		if showDate != nil {
			summary.Date = *showDate
		}

		bookings = append(bookings, summary)
	}

	if err = rows.Err(); err != nil {
		return nil, nil, err
	}

	metadata := domain.NewMetadata(totalRecords, pagination.Page, pagination.PageSize)

	return bookings, metadata, nil
}

// Cancel marks the booking cancelled, releases its seats and flags a
// successful payment for refund. A booking cancelled concurrently yields
// domain.ErrEditConflict.
func (p *PostgresBookingRepository) Cancel(
	ctx context.Context,
	booking *domain.Booking,
	cancelledAt time.Time) (*domain.CancellationResult, error) {

	result := &domain.CancellationResult{
		Reference:   booking.Reference,
		CancelledAt: cancelledAt,
	}

	err := runInTx(ctx, p.db, func(tx pgx.Tx) error {
		query := `
			UPDATE bookings
			SET payment_status = $1
			WHERE id = $2 AND payment_status NOT IN ($1, $3)
		`

		tag, err := tx.Exec(ctx, query, domain.BookingStatusCancelled, booking.ID, domain.BookingStatusFailed)
		if err != nil {
			return err
		}

		if tag.RowsAffected() == 0 {
			return domain.ErrEditConflict
		}

		_, err = tx.Exec(ctx, `DELETE FROM booked_seats WHERE booking_id = $1`, booking.ID)
		if err != nil {
			return err
		}

		payment, err := lockPayment(ctx, tx, booking.ID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil
			}

			return err
		}

		if payment.Status == domain.PaymentStatusSuccessful {
			err = payment.Transition(domain.PaymentStatusRefundPending)
			if err != nil {
				return err
			}

			_, err = tx.Exec(ctx, `UPDATE payments SET status = $1 WHERE id = $2`, payment.Status, payment.ID)
			if err != nil {
				return err
			}
		}

		result.PaymentStatus = &payment.Status

		return nil
	})

	if err != nil {
		return nil, err
	}

	booking.Status = domain.BookingStatusCancelled
	booking.Seats = nil

	return result, nil
}

func lockPayment(ctx context.Context, tx pgx.Tx, bookingID int64) (*domain.Payment, error) {
	query := `
		SELECT id, status
		FROM payments
		WHERE booking_id = $1
		FOR UPDATE
	`

	var payment domain.Payment
	var status string

	err := tx.QueryRow(ctx, query, bookingID).Scan(&payment.ID, &status)
	if err != nil {
		return nil, err
	}

	payment.BookingID = bookingID
	payment.Status = domain.PaymentStatus(status)

	return &payment, nil
}
