package model

import (
	"time"

	"github.com/google/uuid"
)

// PsychologistProfile extends a user with clinical credentials and the
// public-facing practice details shown on the portal.
type PsychologistProfile struct {
	ID              uuid.UUID `json:"id" db:"id"`
	UserID          uuid.UUID `json:"user_id" db:"user_id"`
	LicenseNumber   string    `json:"license_number" db:"license_number"`
	Specialty       *string   `json:"specialty,omitempty" db:"specialty"`
	Bio             *string   `json:"bio,omitempty" db:"bio"`
	HourlyRate      *int64    `json:"hourly_rate,omitempty" db:"hourly_rate"`
	YearsExperience *int      `json:"years_experience,omitempty" db:"years_experience"`
	IsVerified      bool      `json:"is_verified" db:"is_verified"`
	IsAvailable     bool      `json:"is_available" db:"is_available"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// UpdateProfileRequest is the portal profile edit payload
type UpdateProfileRequest struct {
	Specialty       *string `json:"specialty"`
	Bio             *string `json:"bio" binding:"omitempty,max=2000"`
	HourlyRate      *int64  `json:"hourly_rate" binding:"omitempty,min=0"`
	YearsExperience *int    `json:"years_experience" binding:"omitempty,min=0"`
	IsAvailable     *bool   `json:"is_available"`
}

// DashboardStats summarizes a psychologist's bookings for the portal
type DashboardStats struct {
	UpcomingSessions    int   `json:"upcoming_sessions" db:"upcoming_sessions"`
	CompletedThisMonth  int   `json:"completed_this_month" db:"completed_this_month"`
	DistinctClients     int   `json:"distinct_clients" db:"distinct_clients"`
	EarningsThisMonth   int64 `json:"earnings_this_month" db:"earnings_this_month"`
	HoursBookedThisWeek int   `json:"hours_booked_this_week" db:"hours_booked_this_week"`
}

// Dashboard bundles everything the portal landing view needs
type Dashboard struct {
	Profile *PsychologistProfile `json:"profile"`
	Stats   *DashboardStats      `json:"stats"`
	Next    []*Booking           `json:"next_sessions"`
}
