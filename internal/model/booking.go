package model

import (
	"time"

	"github.com/google/uuid"
)

// Booking status constants
const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCompleted = "completed"
	BookingStatusCancelled = "cancelled"
)

// Payment status constants for bookings
const (
	BookingPaymentUnpaid   = "unpaid"
	BookingPaymentPaid     = "paid"
	BookingPaymentRefunded = "refunded"
)

// Session type constants
const (
	SessionTypeVideo    = "video"
	SessionTypeInPerson = "in_person"
)

// Booking is a scheduled therapy session between a client and a
// psychologist.
type Booking struct {
	Base
	ClientID       uuid.UUID  `json:"client_id" db:"client_id"`
	PsychologistID uuid.UUID  `json:"psychologist_id" db:"psychologist_id"`
	BookingDate    time.Time  `json:"booking_date" db:"booking_date"`
	StartTime      time.Time  `json:"start_time" db:"start_time"`
	EndTime        time.Time  `json:"end_time" db:"end_time"`
	SessionType    string     `json:"session_type" db:"session_type"`
	Status         string     `json:"status" db:"status"`
	PaymentStatus  string     `json:"payment_status" db:"payment_status"`
	Amount         int64      `json:"amount" db:"amount"`
	PaymentID      *string    `json:"payment_id,omitempty" db:"payment_id"`
	Notes          *string    `json:"notes,omitempty" db:"notes"`
	CancelReason   *string    `json:"cancel_reason,omitempty" db:"cancel_reason"`
	CancelledAt    *time.Time `json:"cancelled_at,omitempty" db:"cancelled_at"`
}

// CreateBookingRequest carries a new booking
type CreateBookingRequest struct {
	PsychologistID uuid.UUID `json:"psychologist_id" binding:"required"`
	StartTime      time.Time `json:"start_time" binding:"required"`
	EndTime        time.Time `json:"end_time" binding:"required"`
	SessionType    string    `json:"session_type" binding:"omitempty,oneof=video in_person"`
	Notes          *string   `json:"notes" binding:"omitempty,max=500"`
}

// BookingFilters narrows booking list queries
type BookingFilters struct {
	ClientID       *uuid.UUID
	PsychologistID *uuid.UUID
	Status         string
	From           *time.Time
	To             *time.Time
}

// AvailabilitySlot is a weekly recurring window in which a psychologist
// accepts bookings. DayOfWeek follows time.Weekday (0 = Sunday).
type AvailabilitySlot struct {
	ID             uuid.UUID `json:"id" db:"id"`
	PsychologistID uuid.UUID `json:"psychologist_id" db:"psychologist_id"`
	DayOfWeek      int       `json:"day_of_week" db:"day_of_week"`
	StartTime      string    `json:"start_time" db:"start_time"`
	EndTime        string    `json:"end_time" db:"end_time"`
	IsActive       bool      `json:"is_active" db:"is_active"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// UpdateAvailabilityRequest replaces a psychologist's weekly slots
type UpdateAvailabilityRequest struct {
	Slots []AvailabilitySlotInput `json:"slots" binding:"required,dive"`
}

type AvailabilitySlotInput struct {
	DayOfWeek int    `json:"day_of_week" binding:"min=0,max=6"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
	IsActive  bool   `json:"is_active"`
}
