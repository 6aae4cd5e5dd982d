package psychologist

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/acube-health/acube-api/internal/model"
	"github.com/acube-health/acube-api/internal/repository"
	"github.com/acube-health/acube-api/pkg/errors"
	"github.com/acube-health/acube-api/pkg/logger"
)

const nextSessionsLimit = 5

type Service struct {
	profiles repository.PsychologistRepository
	bookings repository.BookingRepository
	logger   *logger.Logger
	now      func() time.Time
}

func NewService(profiles repository.PsychologistRepository, bookings repository.BookingRepository, l *logger.Logger) *Service {
	return &Service{
		profiles: profiles,
		bookings: bookings,
		logger:   l,
		now:      time.Now,
	}
}

// GetDashboard assembles the portal landing view for a psychologist:
// their profile, booking statistics and the next few upcoming sessions.
func (s *Service) GetDashboard(ctx context.Context, userID uuid.UUID) (*model.Dashboard, error) {
	profile, err := s.profiles.GetProfileByUser(ctx, userID)
	if err != nil {
		return nil, errors.NotFound("psychologist profile", err)
	}

	now := s.now().UTC()
	stats, err := s.profiles.GetDashboardStats(ctx, profile.ID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to load dashboard stats: %w", err)
	}

	status := model.BookingStatusConfirmed
	upcoming, err := s.bookings.List(ctx, &model.BookingFilters{
		PsychologistID: &profile.ID,
		Status:         status,
		From:           &now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load upcoming sessions: %w", err)
	}
	if len(upcoming) > nextSessionsLimit {
		upcoming = upcoming[:nextSessionsLimit]
	}

	return &model.Dashboard{
		Profile: profile,
		Stats:   stats,
		Next:    upcoming,
	}, nil
}

// GetProfile returns a psychologist's profile by user
func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (*model.PsychologistProfile, error) {
	profile, err := s.profiles.GetProfileByUser(ctx, userID)
	if err != nil {
		return nil, errors.NotFound("psychologist profile", err)
	}
	return profile, nil
}

// UpdateProfile applies a partial edit from the portal profile page
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, req *model.UpdateProfileRequest) (*model.PsychologistProfile, error) {
	profile, err := s.profiles.GetProfileByUser(ctx, userID)
	if err != nil {
		return nil, errors.NotFound("psychologist profile", err)
	}

	if req.Specialty != nil {
		profile.Specialty = req.Specialty
	}
	if req.Bio != nil {
		profile.Bio = req.Bio
	}
	if req.HourlyRate != nil {
		profile.HourlyRate = req.HourlyRate
	}
	if req.YearsExperience != nil {
		profile.YearsExperience = req.YearsExperience
	}
	if req.IsAvailable != nil {
		profile.IsAvailable = *req.IsAvailable
	}

	if err := s.profiles.UpdateProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	s.logger.Info("psychologist profile updated", "user_id", userID)
	return profile, nil
}
