package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/acube-health/acube-api/internal/model"
)

// PostRepository persists community posts and their per-client like records
type PostRepository interface {
	Create(ctx context.Context, post *model.CommunityPost) error
	Get(ctx context.Context, id uuid.UUID) (*model.CommunityPost, error)
	List(ctx context.Context) ([]*model.CommunityPost, error)
	Update(ctx context.Context, post *model.CommunityPost) error
	Delete(ctx context.Context, id uuid.UUID) error

	// Like records the (post, client) pair and atomically increments the
	// counter on first insert. liked is false when the client already
	// liked the post; likes is always the current stored count.
	Like(ctx context.Context, postID uuid.UUID, clientID string) (likes int, liked bool, err error)
}

// IntakeRepository persists client intake submissions
type IntakeRepository interface {
	Create(ctx context.Context, req *model.IntakeRequest) error
	List(ctx context.Context, status string) ([]*model.IntakeRequest, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

// BookingRepository persists therapy session bookings
type BookingRepository interface {
	// CreateIfFree inserts the booking unless it overlaps an existing
	// one on the psychologist's schedule, reporting whether it was
	// stored. Check and insert happen atomically.
	CreateIfFree(ctx context.Context, booking *model.Booking) (bool, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Booking, error)
	List(ctx context.Context, filters *model.BookingFilters) ([]*model.Booking, error)
	Update(ctx context.Context, booking *model.Booking) error
}

// AvailabilityRepository manages a psychologist's weekly slots
type AvailabilityRepository interface {
	ListForPsychologist(ctx context.Context, psychologistID uuid.UUID) ([]*model.AvailabilitySlot, error)
	Replace(ctx context.Context, psychologistID uuid.UUID, slots []*model.AvailabilitySlot) error
}

// UserRepository persists accounts and their roles
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	Get(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
	AssignRole(ctx context.Context, userID uuid.UUID, role string) error
	GetRoles(ctx context.Context, userID uuid.UUID) ([]string, error)
	HasRole(ctx context.Context, userID uuid.UUID, role string) (bool, error)
}

// PsychologistRepository persists clinician profiles and dashboard stats
type PsychologistRepository interface {
	CreateProfile(ctx context.Context, profile *model.PsychologistProfile) error
	GetProfile(ctx context.Context, id uuid.UUID) (*model.PsychologistProfile, error)
	GetProfileByUser(ctx context.Context, userID uuid.UUID) (*model.PsychologistProfile, error)
	UpdateProfile(ctx context.Context, profile *model.PsychologistProfile) error
	GetDashboardStats(ctx context.Context, psychologistID uuid.UUID, now time.Time) (*model.DashboardStats, error)
}

// TokenRepository stores refresh tokens so sessions can be revoked
type TokenRepository interface {
	StoreRefreshToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error
	ValidateRefreshToken(ctx context.Context, token string) (uuid.UUID, error)
	InvalidateToken(ctx context.Context, token string) error
	InvalidateUserTokens(ctx context.Context, userID uuid.UUID) error
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// PaymentRepository persists confirmed mock payments
type PaymentRepository interface {
	Create(ctx context.Context, payment *model.Payment) error
	LinkBooking(ctx context.Context, intentID string, userID, bookingID uuid.UUID) error
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*model.Payment, error)
}

// OutboxRepository queues events for the worker to publish
type OutboxRepository interface {
	Create(ctx context.Context, event *model.OutboxEvent) error
	GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
	MarkProcessed(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID, errMsg string) error
	DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
}
