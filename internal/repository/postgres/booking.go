package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/acube-health/acube-api/internal/model"
)

const bookingColumns = `
	id, client_id, psychologist_id, booking_date, start_time, end_time,
	session_type, status, payment_status, amount, payment_id, notes,
	cancel_reason, cancelled_at, created_at, updated_at
`

// CreateIfFree inserts the booking unless the psychologist already has
// an overlapping non-cancelled booking. The overlap check and the insert
// share one transaction holding a per-psychologist advisory lock, so two
// concurrent requests for the same slot cannot both pass the check.
func (r *bookingRepository) CreateIfFree(ctx context.Context, booking *model.Booking) (bool, error) {
	booking.ID = uuid.New()
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = time.Now()

	created := false
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`SELECT pg_advisory_xact_lock(hashtext($1::text))`,
			booking.PsychologistID,
		); err != nil {
			return fmt.Errorf("failed to lock schedule: %w", err)
		}

		var conflict bool
		err := tx.GetContext(ctx, &conflict, `
			SELECT EXISTS (
				SELECT 1 FROM bookings
				WHERE psychologist_id = $1
				AND status NOT IN ('cancelled', 'completed')
				AND start_time < $3
				AND end_time > $2
			)
		`, booking.PsychologistID, booking.StartTime, booking.EndTime)
		if err != nil {
			return fmt.Errorf("failed to check conflicts: %w", err)
		}
		if conflict {
			return nil
		}

		query := `
			INSERT INTO bookings (` + bookingColumns + `)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		`
		if _, err := tx.ExecContext(ctx, query,
			booking.ID,
			booking.ClientID,
			booking.PsychologistID,
			booking.BookingDate,
			booking.StartTime,
			booking.EndTime,
			booking.SessionType,
			booking.Status,
			booking.PaymentStatus,
			booking.Amount,
			booking.PaymentID,
			booking.Notes,
			booking.CancelReason,
			booking.CancelledAt,
			booking.CreatedAt,
			booking.UpdatedAt,
		); err != nil {
			return fmt.Errorf("failed to create booking: %w", err)
		}
		created = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return created, nil
}

func (r *bookingRepository) Get(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	var booking model.Booking
	if err := r.db.GetContext(ctx, &booking, query, id); err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &booking, nil
}

func (r *bookingRepository) List(ctx context.Context, filters *model.BookingFilters) ([]*model.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE 1=1`
	args := []interface{}{}
	argCount := 1

	if filters.ClientID != nil {
		query += fmt.Sprintf(" AND client_id = $%d", argCount)
		args = append(args, *filters.ClientID)
		argCount++
	}
	if filters.PsychologistID != nil {
		query += fmt.Sprintf(" AND psychologist_id = $%d", argCount)
		args = append(args, *filters.PsychologistID)
		argCount++
	}
	if filters.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argCount)
		args = append(args, filters.Status)
		argCount++
	}
	if filters.From != nil {
		query += fmt.Sprintf(" AND start_time >= $%d", argCount)
		args = append(args, *filters.From)
		argCount++
	}
	if filters.To != nil {
		query += fmt.Sprintf(" AND end_time <= $%d", argCount)
		args = append(args, *filters.To)
		argCount++
	}

	query += " ORDER BY start_time ASC"

	var bookings []*model.Booking
	if err := r.db.SelectContext(ctx, &bookings, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

func (r *bookingRepository) Update(ctx context.Context, booking *model.Booking) error {
	query := `
		UPDATE bookings
		SET status = $1, payment_status = $2, payment_id = $3, notes = $4,
			cancel_reason = $5, cancelled_at = $6, updated_at = $7
		WHERE id = $8
	`
	booking.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		booking.Status,
		booking.PaymentStatus,
		booking.PaymentID,
		booking.Notes,
		booking.CancelReason,
		booking.CancelledAt,
		booking.UpdatedAt,
		booking.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("booking not found")
	}
	return nil
}
