package model

import (
	"time"

	"github.com/google/uuid"
)

// Payment intent status constants
const (
	IntentStatusPending   = "pending"
	IntentStatusSucceeded = "succeeded"
	IntentStatusFailed    = "failed"
)

// PaymentIntent is a mock payment lifecycle record. Amounts are in minor
// units (cents).
type PaymentIntent struct {
	ID       string    `json:"id"`
	Amount   int64     `json:"amount"`
	Currency string    `json:"currency"`
	Status   string    `json:"status"`
	Created  time.Time `json:"created"`
}

// CreateIntentRequest starts a mock payment
type CreateIntentRequest struct {
	Amount   int64  `json:"amount" binding:"required,min=1"`
	Currency string `json:"currency" binding:"omitempty,len=3"`
}

// Payment is a persisted record of a confirmed (or failed) payment
type Payment struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	UserID      *uuid.UUID `json:"user_id,omitempty" db:"user_id"`
	BookingID   *uuid.UUID `json:"booking_id,omitempty" db:"booking_id"`
	IntentID    string     `json:"intent_id" db:"intent_id"`
	Amount      int64      `json:"amount" db:"amount"`
	Currency    string     `json:"currency" db:"currency"`
	Status      string     `json:"status" db:"status"`
	PaymentType string     `json:"payment_type" db:"payment_type"`
	Description *string    `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
}
