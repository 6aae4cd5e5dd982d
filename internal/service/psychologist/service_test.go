package psychologist

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acube-health/acube-api/internal/model"
	"github.com/acube-health/acube-api/pkg/logger"
)

type fakeProfileRepo struct {
	profiles map[uuid.UUID]*model.PsychologistProfile
	stats    *model.DashboardStats
	updated  *model.PsychologistProfile
}

func (r *fakeProfileRepo) CreateProfile(ctx context.Context, profile *model.PsychologistProfile) error {
	r.profiles[profile.UserID] = profile
	return nil
}

func (r *fakeProfileRepo) GetProfile(ctx context.Context, id uuid.UUID) (*model.PsychologistProfile, error) {
	for _, p := range r.profiles {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, fmt.Errorf("profile not found")
}

func (r *fakeProfileRepo) GetProfileByUser(ctx context.Context, userID uuid.UUID) (*model.PsychologistProfile, error) {
	p, ok := r.profiles[userID]
	if !ok {
		return nil, fmt.Errorf("profile not found")
	}
	return p, nil
}

func (r *fakeProfileRepo) UpdateProfile(ctx context.Context, profile *model.PsychologistProfile) error {
	r.updated = profile
	return nil
}

func (r *fakeProfileRepo) GetDashboardStats(ctx context.Context, psychologistID uuid.UUID, now time.Time) (*model.DashboardStats, error) {
	return r.stats, nil
}

type fakeBookingRepo struct {
	bookings    []*model.Booking
	lastFilters *model.BookingFilters
}

func (r *fakeBookingRepo) CreateIfFree(ctx context.Context, booking *model.Booking) (bool, error) {
	return true, nil
}

func (r *fakeBookingRepo) Get(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	return nil, fmt.Errorf("booking not found")
}

func (r *fakeBookingRepo) List(ctx context.Context, filters *model.BookingFilters) ([]*model.Booking, error) {
	r.lastFilters = filters
	return r.bookings, nil
}

func (r *fakeBookingRepo) Update(ctx context.Context, booking *model.Booking) error { return nil }

func newFixture(t *testing.T) (*Service, *fakeProfileRepo, *fakeBookingRepo, *model.PsychologistProfile) {
	t.Helper()

	profile := &model.PsychologistProfile{
		ID:            uuid.New(),
		UserID:        uuid.New(),
		LicenseNumber: "PSY-44812",
		IsAvailable:   true,
	}
	profiles := &fakeProfileRepo{
		profiles: map[uuid.UUID]*model.PsychologistProfile{profile.UserID: profile},
		stats: &model.DashboardStats{
			UpcomingSessions:   4,
			CompletedThisMonth: 12,
			DistinctClients:    9,
			EarningsThisMonth:  180000,
		},
	}
	bookings := &fakeBookingRepo{}

	svc := NewService(profiles, bookings, logger.NewTestLogger())
	svc.now = func() time.Time {
		return time.Date(2026, time.March, 2, 8, 0, 0, 0, time.UTC)
	}
	return svc, profiles, bookings, profile
}

func TestGetDashboard(t *testing.T) {
	svc, profiles, bookings, profile := newFixture(t)

	for i := 0; i < 7; i++ {
		bookings.bookings = append(bookings.bookings, &model.Booking{
			Base:           model.Base{ID: uuid.New()},
			PsychologistID: profile.ID,
			Status:         model.BookingStatusConfirmed,
		})
	}

	dash, err := svc.GetDashboard(context.Background(), profile.UserID)
	require.NoError(t, err)

	assert.Equal(t, profile, dash.Profile)
	assert.Equal(t, profiles.stats, dash.Stats)
	assert.Len(t, dash.Next, nextSessionsLimit)

	require.NotNil(t, bookings.lastFilters)
	require.NotNil(t, bookings.lastFilters.PsychologistID)
	assert.Equal(t, profile.ID, *bookings.lastFilters.PsychologistID)
	assert.Equal(t, model.BookingStatusConfirmed, bookings.lastFilters.Status)
	require.NotNil(t, bookings.lastFilters.From)
}

func TestGetDashboardUnknownUser(t *testing.T) {
	svc, _, _, _ := newFixture(t)

	_, err := svc.GetDashboard(context.Background(), uuid.New())
	assert.Error(t, err)
}

func TestUpdateProfilePartial(t *testing.T) {
	svc, profiles, _, profile := newFixture(t)

	specialty := "anxiety and trauma"
	rate := int64(17500)
	req := &model.UpdateProfileRequest{
		Specialty:  &specialty,
		HourlyRate: &rate,
	}

	updated, err := svc.UpdateProfile(context.Background(), profile.UserID, req)
	require.NoError(t, err)

	require.NotNil(t, updated.Specialty)
	assert.Equal(t, specialty, *updated.Specialty)
	require.NotNil(t, updated.HourlyRate)
	assert.Equal(t, rate, *updated.HourlyRate)
	assert.True(t, updated.IsAvailable)
	assert.Equal(t, "PSY-44812", updated.LicenseNumber)
	assert.Equal(t, updated, profiles.updated)
}

func TestUpdateProfileAvailabilityToggle(t *testing.T) {
	svc, _, _, profile := newFixture(t)

	off := false
	updated, err := svc.UpdateProfile(context.Background(), profile.UserID, &model.UpdateProfileRequest{
		IsAvailable: &off,
	})
	require.NoError(t, err)
	assert.False(t, updated.IsAvailable)
}
