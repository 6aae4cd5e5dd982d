package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/acube-health/acube-api/internal/model"
)

const profileColumns = `
	id, user_id, license_number, specialty, bio, hourly_rate,
	years_experience, is_verified, is_available, created_at, updated_at
`

func (r *psychologistRepository) CreateProfile(ctx context.Context, profile *model.PsychologistProfile) error {
	query := `
		INSERT INTO psychologist_profiles (` + profileColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	profile.ID = uuid.New()
	profile.CreatedAt = time.Now()
	profile.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		profile.ID,
		profile.UserID,
		profile.LicenseNumber,
		profile.Specialty,
		profile.Bio,
		profile.HourlyRate,
		profile.YearsExperience,
		profile.IsVerified,
		profile.IsAvailable,
		profile.CreatedAt,
		profile.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create psychologist profile: %w", err)
	}
	return nil
}

func (r *psychologistRepository) GetProfile(ctx context.Context, id uuid.UUID) (*model.PsychologistProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM psychologist_profiles WHERE id = $1`

	var profile model.PsychologistProfile
	if err := r.db.GetContext(ctx, &profile, query, id); err != nil {
		return nil, fmt.Errorf("failed to get psychologist profile: %w", err)
	}
	return &profile, nil
}

func (r *psychologistRepository) GetProfileByUser(ctx context.Context, userID uuid.UUID) (*model.PsychologistProfile, error) {
	query := `SELECT ` + profileColumns + ` FROM psychologist_profiles WHERE user_id = $1`

	var profile model.PsychologistProfile
	if err := r.db.GetContext(ctx, &profile, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get psychologist profile: %w", err)
	}
	return &profile, nil
}

func (r *psychologistRepository) UpdateProfile(ctx context.Context, profile *model.PsychologistProfile) error {
	query := `
		UPDATE psychologist_profiles
		SET specialty = $1, bio = $2, hourly_rate = $3, years_experience = $4,
			is_available = $5, updated_at = $6
		WHERE id = $7
	`
	profile.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		profile.Specialty,
		profile.Bio,
		profile.HourlyRate,
		profile.YearsExperience,
		profile.IsAvailable,
		profile.UpdatedAt,
		profile.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update psychologist profile: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("psychologist profile not found")
	}
	return nil
}

func (r *psychologistRepository) GetDashboardStats(ctx context.Context, psychologistID uuid.UUID, now time.Time) (*model.DashboardStats, error) {
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	weekStart := now.AddDate(0, 0, -int(now.Weekday()))
	weekStart = time.Date(weekStart.Year(), weekStart.Month(), weekStart.Day(), 0, 0, 0, 0, now.Location())

	query := `
		SELECT
			COUNT(*) FILTER (WHERE status IN ('pending', 'confirmed') AND start_time > $2) AS upcoming_sessions,
			COUNT(*) FILTER (WHERE status = 'completed' AND start_time >= $3) AS completed_this_month,
			COUNT(DISTINCT client_id) AS distinct_clients,
			COALESCE(SUM(amount) FILTER (WHERE payment_status = 'paid' AND start_time >= $3), 0) AS earnings_this_month,
			COALESCE(SUM(EXTRACT(EPOCH FROM (end_time - start_time)) / 3600) FILTER (
				WHERE status NOT IN ('cancelled') AND start_time >= $4 AND start_time < $4 + INTERVAL '7 days'
			), 0)::int AS hours_booked_this_week
		FROM bookings
		WHERE psychologist_id = $1
	`
	var stats model.DashboardStats
	if err := r.db.GetContext(ctx, &stats, query, psychologistID, now, monthStart, weekStart); err != nil {
		return nil, fmt.Errorf("failed to get dashboard stats: %w", err)
	}
	return &stats, nil
}
