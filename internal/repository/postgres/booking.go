package postgres

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"

	"carshare/internal/domain"
	"carshare/internal/repository"
)

var bookingColumns = []string{
	"id", "user_id", "vehicle_id", "start_at", "end_at", "pickup_point",
	"duration_hours", "distance_km", "payment_intent_id", "status",
	"charge_amount", "charge_currency", "paid_at",
	"base_amount", "distance_amount", "insurance_amount", "deposit_amount",
	"created_at",
}

// BookingRepository is a PostgreSQL implementation of repository.BookingRepository.
type BookingRepository struct {
	q  Querier
	sb sq.StatementBuilderType
}

// NewBookingRepository creates a new PostgreSQL booking repository.
func NewBookingRepository(db *sql.DB) *BookingRepository {
	return &BookingRepository{q: db, sb: statementBuilder()}
}

// NewBookingRepositoryWithTx creates a booking repository using a transaction.
func NewBookingRepositoryWithTx(tx *sql.Tx) *BookingRepository {
	return &BookingRepository{q: tx, sb: statementBuilder()}
}

// Create persists a new booking. The payment_intent_id unique constraint
// turns a second insert for the same payment into repository.ErrDuplicate.
func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	query, args, err := r.sb.
		Insert("bookings").
		Columns(bookingColumns...).
		Values(
			b.ID, b.UserID, b.VehicleID, b.StartAt, b.EndAt, b.PickupPoint,
			b.DurationHours, b.DistanceKm, b.PaymentIntentID, b.Status,
			b.Charges.Amount, b.Charges.Currency, b.Charges.PaidAt,
			b.Charges.Breakdown.BaseAmount, b.Charges.Breakdown.DistanceAmount,
			b.Charges.Breakdown.InsuranceAmount, b.Charges.Breakdown.DepositAmount,
			b.CreatedAt,
		).
		ToSql()
	if err != nil {
		return err
	}

	if _, err := r.q.ExecContext(ctx, query, args...); err != nil {
		return translateBookingInsertError(err)
	}

	return nil
}

// GetByID retrieves a booking by ID.
func (r *BookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	return r.getOne(ctx, sq.Eq{"id": id})
}

// GetByPaymentIntentID retrieves the booking created for a payment intent.
func (r *BookingRepository) GetByPaymentIntentID(ctx context.Context, paymentIntentID string) (*domain.Booking, error) {
	return r.getOne(ctx, sq.Eq{"payment_intent_id": paymentIntentID})
}

func (r *BookingRepository) getOne(ctx context.Context, where sq.Eq) (*domain.Booking, error) {
	query, args, err := r.sb.Select(bookingColumns...).From("bookings").Where(where).ToSql()
	if err != nil {
		return nil, err
	}

	b, err := scanBooking(r.q.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return b, nil
}

// ListByUser retrieves bookings matching the filter, newest first.
func (r *BookingRepository) ListByUser(ctx context.Context, filter repository.BookingFilter) ([]*domain.Booking, error) {
	q := r.sb.
		Select(bookingColumns...).
		From("bookings").
		Where(sq.Eq{"user_id": filter.UserID}).
		OrderBy("created_at DESC")

	if filter.Status != "" {
		q = q.Where(sq.Eq{"status": filter.Status})
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []*domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}

	return bookings, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var b domain.Booking
	err := row.Scan(
		&b.ID,
		&b.UserID,
		&b.VehicleID,
		&b.StartAt,
		&b.EndAt,
		&b.PickupPoint,
		&b.DurationHours,
		&b.DistanceKm,
		&b.PaymentIntentID,
		&b.Status,
		&b.Charges.Amount,
		&b.Charges.Currency,
		&b.Charges.PaidAt,
		&b.Charges.Breakdown.BaseAmount,
		&b.Charges.Breakdown.DistanceAmount,
		&b.Charges.Breakdown.InsuranceAmount,
		&b.Charges.Breakdown.DepositAmount,
		&b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	b.Charges.Breakdown.TotalAmount = b.Charges.Breakdown.BaseAmount +
		b.Charges.Breakdown.DistanceAmount +
		b.Charges.Breakdown.InsuranceAmount +
		b.Charges.Breakdown.DepositAmount

	return &b, nil
}
