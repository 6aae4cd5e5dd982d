package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/acube-health/acube-api/internal/model"
)

func (r *intakeRepository) Create(ctx context.Context, req *model.IntakeRequest) error {
	query := `
		INSERT INTO intake_requests (
			id, full_name, email, phone, age_bracket, gender, therapy_type,
			concerns, current_feelings, previous_therapy, preferred_time,
			additional_info, consent, status, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	req.ID = uuid.New()
	req.Status = model.IntakeStatusSubmitted
	req.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		req.ID,
		req.FullName,
		req.Email,
		req.Phone,
		req.AgeBracket,
		req.Gender,
		req.TherapyType,
		req.Concerns,
		req.CurrentFeelings,
		req.PreviousTherapy,
		req.PreferredTime,
		req.AdditionalInfo,
		req.Consent,
		req.Status,
		req.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create intake request: %w", err)
	}
	return nil
}

func (r *intakeRepository) List(ctx context.Context, status string) ([]*model.IntakeRequest, error) {
	query := `
		SELECT id, full_name, email, phone, age_bracket, gender, therapy_type,
			   concerns, current_feelings, previous_therapy, preferred_time,
			   additional_info, consent, status, created_at
		FROM intake_requests
	`
	args := []interface{}{}
	if status != "" {
		query += " WHERE status = $1"
		args = append(args, status)
	}
	query += " ORDER BY created_at DESC"

	var requests []*model.IntakeRequest
	if err := r.db.SelectContext(ctx, &requests, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list intake requests: %w", err)
	}
	return requests, nil
}

func (r *intakeRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE intake_requests SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update intake status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("intake request not found")
	}
	return nil
}
