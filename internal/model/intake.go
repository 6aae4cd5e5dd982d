package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/lib/pq"
)

// Therapy type options
const (
	TherapyTypeIndividual = "individual"
	TherapyTypeGroup      = "group"
)

// Concerns a client can select on the intake form. The set is fixed;
// anything outside it is rejected.
var IntakeConcerns = []string{
	"anxiety",
	"depression",
	"stress",
	"relationships",
	"grief",
	"trauma",
	"selfEsteem",
	"anger",
	"lifeTransitions",
	"other",
}

// IntakeRequest is a validated client intake submission. Validate tags
// mirror the intake form contract field for field.
type IntakeRequest struct {
	ID              uuid.UUID      `json:"id" db:"id"`
	FullName        string         `json:"full_name" db:"full_name" validate:"required,min=2,max=100"`
	Email           string         `json:"email" db:"email" validate:"required,email,max=255"`
	Phone           string         `json:"phone" db:"phone" validate:"required,min=10,max=15"`
	AgeBracket      string         `json:"age" db:"age_bracket" validate:"required"`
	Gender          string         `json:"gender" db:"gender" validate:"required"`
	TherapyType     string         `json:"therapy_type" db:"therapy_type" validate:"required,oneof=individual group"`
	Concerns        pq.StringArray `json:"concerns" db:"concerns" validate:"required,min=1,dive,intake_concern"`
	CurrentFeelings string         `json:"current_feelings" db:"current_feelings" validate:"required,min=10,max=1000"`
	PreviousTherapy string         `json:"previous_therapy" db:"previous_therapy" validate:"required"`
	PreferredTime   string         `json:"preferred_time" db:"preferred_time" validate:"required"`
	AdditionalInfo  string         `json:"additional_info" db:"additional_info" validate:"max=500"`
	Consent         bool           `json:"consent" db:"consent" validate:"required"`
	Status          string         `json:"status" db:"status"`
	CreatedAt       time.Time      `json:"created_at" db:"created_at"`
}

// Intake request status constants
const (
	IntakeStatusSubmitted = "submitted"
	IntakeStatusContacted = "contacted"
	IntakeStatusClosed    = "closed"
)
