package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/acube-health/acube-api/internal/model"
)

func (r *availabilityRepository) ListForPsychologist(ctx context.Context, psychologistID uuid.UUID) ([]*model.AvailabilitySlot, error) {
	query := `
		SELECT id, psychologist_id, day_of_week, start_time, end_time, is_active, created_at
		FROM availability_slots
		WHERE psychologist_id = $1
		ORDER BY day_of_week, start_time
	`
	var slots []*model.AvailabilitySlot
	if err := r.db.SelectContext(ctx, &slots, query, psychologistID); err != nil {
		return nil, fmt.Errorf("failed to list availability slots: %w", err)
	}
	return slots, nil
}

// Replace swaps the psychologist's full weekly schedule in one transaction
func (r *availabilityRepository) Replace(ctx context.Context, psychologistID uuid.UUID, slots []*model.AvailabilitySlot) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM availability_slots WHERE psychologist_id = $1`, psychologistID); err != nil {
			return fmt.Errorf("failed to clear availability slots: %w", err)
		}

		insert := `
			INSERT INTO availability_slots (id, psychologist_id, day_of_week, start_time, end_time, is_active, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`
		for _, slot := range slots {
			slot.ID = uuid.New()
			slot.PsychologistID = psychologistID
			slot.CreatedAt = time.Now()

			if _, err := tx.ExecContext(ctx, insert,
				slot.ID,
				slot.PsychologistID,
				slot.DayOfWeek,
				slot.StartTime,
				slot.EndTime,
				slot.IsActive,
				slot.CreatedAt,
			); err != nil {
				return fmt.Errorf("failed to insert availability slot: %w", err)
			}
		}
		return nil
	})
}
