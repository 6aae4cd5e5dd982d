package booking

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/acube-health/acube-api/internal/model"
	"github.com/acube-health/acube-api/internal/repository"
	"github.com/acube-health/acube-api/pkg/errors"
	"github.com/acube-health/acube-api/pkg/logger"
	"github.com/acube-health/acube-api/pkg/metrics"
)

const (
	minSessionLength = 30 * time.Minute
	maxSessionLength = 2 * time.Hour
	defaultRate      = 15000 // cents per hour when a psychologist sets none
)

// PaymentVerifier resolves mock payment intents when a booking is
// confirmed against one.
type PaymentVerifier interface {
	GetIntent(ctx context.Context, intentID string) (*model.PaymentIntent, error)
	LinkBooking(ctx context.Context, intentID string, userID, bookingID uuid.UUID) error
}

type Service struct {
	bookings      repository.BookingRepository
	availability  repository.AvailabilityRepository
	psychologists repository.PsychologistRepository
	outbox        repository.OutboxRepository
	payments      PaymentVerifier
	logger        *logger.Logger
	metrics       *metrics.Metrics
	now           func() time.Time
}

func NewService(
	bookings repository.BookingRepository,
	availability repository.AvailabilityRepository,
	psychologists repository.PsychologistRepository,
	outbox repository.OutboxRepository,
	payments PaymentVerifier,
	l *logger.Logger,
	m *metrics.Metrics,
) *Service {
	return &Service{
		bookings:      bookings,
		availability:  availability,
		psychologists: psychologists,
		outbox:        outbox,
		payments:      payments,
		logger:        l,
		metrics:       m,
		now:           time.Now,
	}
}

// Create books a session for a client. The requested window must be in
// the future, fall inside the psychologist's weekly availability, and
// not overlap an existing booking.
func (s *Service) Create(ctx context.Context, clientID uuid.UUID, req *model.CreateBookingRequest) (*model.Booking, error) {
	start := req.StartTime.UTC()
	end := req.EndTime.UTC()

	if !end.After(start) {
		return nil, errors.BadRequest("end time must be after start time", nil)
	}
	if length := end.Sub(start); length < minSessionLength || length > maxSessionLength {
		return nil, errors.BadRequest("session length must be between 30 minutes and 2 hours", nil)
	}
	if start.Before(s.now().UTC()) {
		return nil, errors.BadRequest("booking must be in the future", nil)
	}

	profile, err := s.psychologists.GetProfile(ctx, req.PsychologistID)
	if err != nil {
		return nil, errors.NotFound("psychologist", err)
	}
	if !profile.IsAvailable {
		return nil, errors.BadRequest("psychologist is not accepting bookings", nil)
	}

	if err := s.checkAvailability(ctx, profile.ID, start, end); err != nil {
		return nil, err
	}

	sessionType := req.SessionType
	if sessionType == "" {
		sessionType = model.SessionTypeVideo
	}

	booking := &model.Booking{
		ClientID:       clientID,
		PsychologistID: profile.ID,
		BookingDate:    start.Truncate(24 * time.Hour),
		StartTime:      start,
		EndTime:        end,
		SessionType:    sessionType,
		Status:         model.BookingStatusPending,
		PaymentStatus:  model.BookingPaymentUnpaid,
		Amount:         sessionAmount(profile, start, end),
		Notes:          req.Notes,
	}

	created, err := s.bookings.CreateIfFree(ctx, booking)
	if err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}
	if !created {
		if s.metrics != nil {
			s.metrics.BookingConflicts.Inc()
		}
		return nil, errors.Conflict("the requested time slot is no longer available", nil)
	}

	if s.metrics != nil {
		s.metrics.BookingsCreated.Inc()
	}
	s.enqueueEvent(ctx, model.EventBookingCreated, booking)

	return booking, nil
}

// Get fetches a booking visible to the requester. Clients see their own
// bookings, psychologists see bookings assigned to them.
func (s *Service) Get(ctx context.Context, requesterID uuid.UUID, isPsychologist bool, id uuid.UUID) (*model.Booking, error) {
	booking, err := s.bookings.Get(ctx, id)
	if err != nil {
		return nil, errors.NotFound("booking", err)
	}
	if err := s.authorize(ctx, booking, requesterID, isPsychologist); err != nil {
		return nil, err
	}
	return booking, nil
}

// ListForClient returns a client's bookings, newest first
func (s *Service) ListForClient(ctx context.Context, clientID uuid.UUID, status string) ([]*model.Booking, error) {
	filters := &model.BookingFilters{ClientID: &clientID, Status: status}
	bookings, err := s.bookings.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

// ListForPsychologist returns the sessions on a psychologist's schedule
func (s *Service) ListForPsychologist(ctx context.Context, userID uuid.UUID, status string, from, to *time.Time) ([]*model.Booking, error) {
	profile, err := s.psychologists.GetProfileByUser(ctx, userID)
	if err != nil {
		return nil, errors.NotFound("psychologist profile", err)
	}

	filters := &model.BookingFilters{
		PsychologistID: &profile.ID,
		Status:         status,
		From:           from,
		To:             to,
	}
	bookings, err := s.bookings.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return bookings, nil
}

// Cancel marks a booking cancelled. Completed or already cancelled
// bookings cannot be cancelled again.
func (s *Service) Cancel(ctx context.Context, requesterID uuid.UUID, isPsychologist bool, id uuid.UUID, reason string) (*model.Booking, error) {
	booking, err := s.bookings.Get(ctx, id)
	if err != nil {
		return nil, errors.NotFound("booking", err)
	}
	if err := s.authorize(ctx, booking, requesterID, isPsychologist); err != nil {
		return nil, err
	}

	switch booking.Status {
	case model.BookingStatusCancelled:
		return nil, errors.Conflict("booking is already cancelled", nil)
	case model.BookingStatusCompleted:
		return nil, errors.Conflict("completed bookings cannot be cancelled", nil)
	}

	now := s.now().UTC()
	booking.Status = model.BookingStatusCancelled
	booking.CancelledAt = &now
	if reason != "" {
		booking.CancelReason = &reason
	}

	if err := s.bookings.Update(ctx, booking); err != nil {
		return nil, fmt.Errorf("failed to cancel booking: %w", err)
	}

	s.enqueueEvent(ctx, model.EventBookingCancelled, booking)
	return booking, nil
}

// Confirm settles a pending booking against a succeeded payment intent.
// Only the booking's client or its psychologist may confirm, and the
// intent must have succeeded for the booked amount.
func (s *Service) Confirm(ctx context.Context, requesterID uuid.UUID, isPsychologist bool, id uuid.UUID, paymentID string) (*model.Booking, error) {
	booking, err := s.bookings.Get(ctx, id)
	if err != nil {
		return nil, errors.NotFound("booking", err)
	}
	if err := s.authorize(ctx, booking, requesterID, isPsychologist); err != nil {
		return nil, err
	}
	if booking.Status != model.BookingStatusPending {
		return nil, errors.Conflict(fmt.Sprintf("booking is %s, not pending", booking.Status), nil)
	}

	intent, err := s.payments.GetIntent(ctx, paymentID)
	if err != nil {
		return nil, errors.BadRequest("unknown payment", err)
	}
	if intent.Status != model.IntentStatusSucceeded {
		return nil, errors.BadRequest("payment has not succeeded", nil)
	}
	if intent.Amount != booking.Amount {
		return nil, errors.BadRequest("payment amount does not match the booking", nil)
	}

	booking.Status = model.BookingStatusConfirmed
	booking.PaymentStatus = model.BookingPaymentPaid
	booking.PaymentID = &paymentID

	if err := s.bookings.Update(ctx, booking); err != nil {
		return nil, fmt.Errorf("failed to confirm booking: %w", err)
	}

	if err := s.payments.LinkBooking(ctx, paymentID, booking.ClientID, booking.ID); err != nil {
		s.logger.Error(err, "failed to link payment to booking", "booking_id", booking.ID)
	}
	return booking, nil
}

// GetAvailability returns a psychologist's weekly slots
func (s *Service) GetAvailability(ctx context.Context, psychologistID uuid.UUID) ([]*model.AvailabilitySlot, error) {
	slots, err := s.availability.ListForPsychologist(ctx, psychologistID)
	if err != nil {
		return nil, fmt.Errorf("failed to list availability: %w", err)
	}
	return slots, nil
}

// AvailabilityForUser returns the signed-in psychologist's own weekly
// slots
func (s *Service) AvailabilityForUser(ctx context.Context, userID uuid.UUID) ([]*model.AvailabilitySlot, error) {
	profile, err := s.psychologists.GetProfileByUser(ctx, userID)
	if err != nil {
		return nil, errors.NotFound("psychologist profile", err)
	}
	return s.GetAvailability(ctx, profile.ID)
}

// ReplaceAvailability swaps a psychologist's weekly schedule wholesale
func (s *Service) ReplaceAvailability(ctx context.Context, userID uuid.UUID, req *model.UpdateAvailabilityRequest) ([]*model.AvailabilitySlot, error) {
	profile, err := s.psychologists.GetProfileByUser(ctx, userID)
	if err != nil {
		return nil, errors.NotFound("psychologist profile", err)
	}

	slots := make([]*model.AvailabilitySlot, 0, len(req.Slots))
	for _, in := range req.Slots {
		start, err := parseClock(in.StartTime)
		if err != nil {
			return nil, errors.BadRequest(fmt.Sprintf("invalid start time %q", in.StartTime), err)
		}
		end, err := parseClock(in.EndTime)
		if err != nil {
			return nil, errors.BadRequest(fmt.Sprintf("invalid end time %q", in.EndTime), err)
		}
		if !end.After(start) {
			return nil, errors.BadRequest("slot end time must be after start time", nil)
		}
		slots = append(slots, &model.AvailabilitySlot{
			PsychologistID: profile.ID,
			DayOfWeek:      in.DayOfWeek,
			StartTime:      in.StartTime,
			EndTime:        in.EndTime,
			IsActive:       in.IsActive,
		})
	}

	if err := s.availability.Replace(ctx, profile.ID, slots); err != nil {
		return nil, fmt.Errorf("failed to replace availability: %w", err)
	}
	return slots, nil
}

func (s *Service) authorize(ctx context.Context, booking *model.Booking, requesterID uuid.UUID, isPsychologist bool) error {
	if booking.ClientID == requesterID {
		return nil
	}
	if isPsychologist {
		profile, err := s.psychologists.GetProfileByUser(ctx, requesterID)
		if err == nil && profile.ID == booking.PsychologistID {
			return nil
		}
	}
	return errors.Forbidden("you do not have access to this booking", nil)
}

func (s *Service) checkAvailability(ctx context.Context, psychologistID uuid.UUID, start, end time.Time) error {
	slots, err := s.availability.ListForPsychologist(ctx, psychologistID)
	if err != nil {
		return fmt.Errorf("failed to load availability: %w", err)
	}

	day := int(start.Weekday())
	startClock, _ := parseClock(start.Format("15:04"))
	endClock, _ := parseClock(end.Format("15:04"))

	for _, slot := range slots {
		if !slot.IsActive || slot.DayOfWeek != day {
			continue
		}
		slotStart, err := parseClock(slot.StartTime)
		if err != nil {
			continue
		}
		slotEnd, err := parseClock(slot.EndTime)
		if err != nil {
			continue
		}
		if !startClock.Before(slotStart) && !endClock.After(slotEnd) {
			return nil
		}
	}
	return errors.BadRequest("the requested time is outside the psychologist's availability", nil)
}

func sessionAmount(profile *model.PsychologistProfile, start, end time.Time) int64 {
	rate := int64(defaultRate)
	if profile.HourlyRate != nil && *profile.HourlyRate > 0 {
		rate = *profile.HourlyRate
	}
	minutes := int64(end.Sub(start) / time.Minute)
	return rate * minutes / 60
}

func parseClock(value string) (time.Time, error) {
	if t, err := time.Parse("15:04", value); err == nil {
		return t, nil
	}
	return time.Parse("15:04:05", value)
}

func (s *Service) enqueueEvent(ctx context.Context, eventType string, payload interface{}) {
	if s.outbox == nil {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error(err, "failed to marshal outbox payload", "event_type", eventType)
		return
	}

	event := &model.OutboxEvent{EventType: eventType, Payload: data}
	if err := s.outbox.Create(ctx, event); err != nil {
		s.logger.Error(err, "failed to enqueue outbox event", "event_type", eventType)
	}
}
