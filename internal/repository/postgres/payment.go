package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/acube-health/acube-api/internal/model"
)

func (r *paymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	query := `
		INSERT INTO payments (
			id, user_id, booking_id, intent_id, amount, currency, status,
			payment_type, description, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	payment.ID = uuid.New()
	payment.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		payment.ID,
		payment.UserID,
		payment.BookingID,
		payment.IntentID,
		payment.Amount,
		payment.Currency,
		payment.Status,
		payment.PaymentType,
		payment.Description,
		payment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func (r *paymentRepository) LinkBooking(ctx context.Context, intentID string, userID, bookingID uuid.UUID) error {
	query := `UPDATE payments SET user_id = $1, booking_id = $2 WHERE intent_id = $3`

	result, err := r.db.ExecContext(ctx, query, userID, bookingID, intentID)
	if err != nil {
		return fmt.Errorf("failed to link payment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("payment not found")
	}
	return nil
}

func (r *paymentRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]*model.Payment, error) {
	query := `
		SELECT id, user_id, booking_id, intent_id, amount, currency, status,
			   payment_type, description, created_at
		FROM payments
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	var payments []*model.Payment
	if err := r.db.SelectContext(ctx, &payments, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}
