package payment

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/acube-health/acube-api/internal/config"
	"github.com/acube-health/acube-api/internal/model"
	"github.com/acube-health/acube-api/internal/repository"
	"github.com/acube-health/acube-api/pkg/errors"
	"github.com/acube-health/acube-api/pkg/logger"
	"github.com/acube-health/acube-api/pkg/metrics"
)

const intentIDPrefix = "pi_mock_"

// Service simulates a payment provider without moving real money. Intents
// live in process memory; confirmed outcomes are additionally written to
// the payments table when a repository is attached.
type Service struct {
	cfg     config.PaymentConfig
	repo    repository.PaymentRepository
	logger  *logger.Logger
	metrics *metrics.Metrics

	mu      sync.Mutex
	intents map[string]*model.PaymentIntent

	// rng is the failure draw, swappable in tests
	rng func() float64
}

func NewService(cfg config.PaymentConfig, repo repository.PaymentRepository, l *logger.Logger, m *metrics.Metrics) *Service {
	src := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &Service{
		cfg:     cfg,
		repo:    repo,
		logger:  l,
		metrics: m,
		intents: make(map[string]*model.PaymentIntent),
		rng:     src.Float64,
	}
}

// CreateIntent registers a pending payment intent after a simulated
// provider round trip. Creation itself never fails.
func (s *Service) CreateIntent(ctx context.Context, req *model.CreateIntentRequest) (*model.PaymentIntent, error) {
	if req.Amount <= 0 {
		return nil, errors.BadRequest("amount must be a positive number of cents", nil)
	}

	currency := strings.ToLower(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "usd"
	}

	if err := s.wait(ctx, s.cfg.CreateDelay); err != nil {
		return nil, err
	}

	intent := &model.PaymentIntent{
		ID:       newIntentID(),
		Amount:   req.Amount,
		Currency: currency,
		Status:   model.IntentStatusPending,
		Created:  time.Now().UTC(),
	}

	s.mu.Lock()
	s.intents[intent.ID] = intent
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.PaymentIntents.Inc()
	}

	return intent, nil
}

// ConfirmIntent resolves a pending intent to succeeded or failed. The
// returned intent always echoes the amount and currency captured at
// creation time. When the caller is signed in, the persisted record
// carries their user id so it shows up in their payment history.
func (s *Service) ConfirmIntent(ctx context.Context, intentID string, userID *uuid.UUID) (*model.PaymentIntent, error) {
	s.mu.Lock()
	stored, ok := s.intents[intentID]
	s.mu.Unlock()
	if !ok {
		return nil, errors.NotFound("payment intent", nil)
	}

	if err := s.wait(ctx, s.cfg.ConfirmDelay); err != nil {
		return nil, err
	}

	// the rng shares state across requests, so the draw stays under the lock
	s.mu.Lock()
	status := model.IntentStatusSucceeded
	if s.rng() < s.cfg.FailureRate {
		status = model.IntentStatusFailed
	}
	stored.Status = status
	result := *stored
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.PaymentOutcomes.WithLabelValues(status).Inc()
	}

	if s.repo != nil {
		record := &model.Payment{
			UserID:      userID,
			IntentID:    result.ID,
			Amount:      result.Amount,
			Currency:    result.Currency,
			Status:      status,
			PaymentType: "session",
		}
		if err := s.repo.Create(ctx, record); err != nil {
			s.logger.Error(err, "failed to record payment outcome", "intent_id", result.ID)
		}
	}

	if status == model.IntentStatusFailed {
		return &result, errors.BadRequest("your card was declined. Please try a different payment method.", nil)
	}
	return &result, nil
}

// GetIntent returns an intent by id
func (s *Service) GetIntent(ctx context.Context, intentID string) (*model.PaymentIntent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	intent, ok := s.intents[intentID]
	if !ok {
		return nil, errors.NotFound("payment intent", nil)
	}
	result := *intent
	return &result, nil
}

// LinkBooking ties a recorded payment to the booking it settled and the
// client who booked it.
func (s *Service) LinkBooking(ctx context.Context, intentID string, userID, bookingID uuid.UUID) error {
	if s.repo == nil {
		return nil
	}
	if err := s.repo.LinkBooking(ctx, intentID, userID, bookingID); err != nil {
		return fmt.Errorf("failed to link payment to booking: %w", err)
	}
	return nil
}

// ListPayments returns the persisted payment history for a user
func (s *Service) ListPayments(ctx context.Context, userID uuid.UUID) ([]*model.Payment, error) {
	if s.repo == nil {
		return nil, nil
	}
	payments, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}

func (s *Service) wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func newIntentID() string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:9]
	return fmt.Sprintf("%s%d_%s", intentIDPrefix, time.Now().UnixMilli(), suffix)
}

// FormatAmount renders minor units as a human readable price, e.g.
// FormatAmount(249900, "usd") == "$2,499.00".
func FormatAmount(amount int64, currency string) string {
	symbol := ""
	switch strings.ToLower(currency) {
	case "usd", "aud", "cad", "nzd":
		symbol = "$"
	case "eur":
		symbol = "€"
	case "gbp":
		symbol = "£"
	default:
		symbol = strings.ToUpper(currency) + " "
	}

	negative := amount < 0
	if negative {
		amount = -amount
	}

	units := amount / 100
	cents := amount % 100

	digits := fmt.Sprintf("%d", units)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	sign := ""
	if negative {
		sign = "-"
	}
	return fmt.Sprintf("%s%s%s.%02d", sign, symbol, b.String(), cents)
}
