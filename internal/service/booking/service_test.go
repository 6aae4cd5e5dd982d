package booking

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acube-health/acube-api/internal/model"
	"github.com/acube-health/acube-api/pkg/logger"
)

type fakeBookingRepo struct {
	bookings map[uuid.UUID]*model.Booking
	conflict bool
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[uuid.UUID]*model.Booking)}
}

func (f *fakeBookingRepo) CreateIfFree(ctx context.Context, b *model.Booking) (bool, error) {
	if f.conflict {
		return false, nil
	}
	for _, existing := range f.bookings {
		if existing.PsychologistID == b.PsychologistID &&
			existing.Status != model.BookingStatusCancelled &&
			existing.StartTime.Before(b.EndTime) && b.StartTime.Before(existing.EndTime) {
			return false, nil
		}
	}
	b.ID = uuid.New()
	f.bookings[b.ID] = b
	return true, nil
}

func (f *fakeBookingRepo) Get(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, assert.AnError
	}
	return b, nil
}

func (f *fakeBookingRepo) List(ctx context.Context, filters *model.BookingFilters) ([]*model.Booking, error) {
	var out []*model.Booking
	for _, b := range f.bookings {
		out = append(out, b)
	}
	return out, nil
}

func (f *fakeBookingRepo) Update(ctx context.Context, b *model.Booking) error {
	f.bookings[b.ID] = b
	return nil
}

type fakePayments struct {
	intents map[string]*model.PaymentIntent
	linked  map[string]uuid.UUID
}

func newFakePayments() *fakePayments {
	return &fakePayments{
		intents: make(map[string]*model.PaymentIntent),
		linked:  make(map[string]uuid.UUID),
	}
}

func (f *fakePayments) GetIntent(ctx context.Context, intentID string) (*model.PaymentIntent, error) {
	intent, ok := f.intents[intentID]
	if !ok {
		return nil, assert.AnError
	}
	return intent, nil
}

func (f *fakePayments) LinkBooking(ctx context.Context, intentID string, userID, bookingID uuid.UUID) error {
	f.linked[intentID] = bookingID
	return nil
}

type fakeAvailabilityRepo struct {
	slots []*model.AvailabilitySlot
}

func (f *fakeAvailabilityRepo) ListForPsychologist(ctx context.Context, id uuid.UUID) ([]*model.AvailabilitySlot, error) {
	return f.slots, nil
}

func (f *fakeAvailabilityRepo) Replace(ctx context.Context, id uuid.UUID, slots []*model.AvailabilitySlot) error {
	f.slots = slots
	return nil
}

type fakePsychologistRepo struct {
	profile *model.PsychologistProfile
}

func (f *fakePsychologistRepo) CreateProfile(ctx context.Context, p *model.PsychologistProfile) error {
	f.profile = p
	return nil
}

func (f *fakePsychologistRepo) GetProfile(ctx context.Context, id uuid.UUID) (*model.PsychologistProfile, error) {
	if f.profile == nil || f.profile.ID != id {
		return nil, assert.AnError
	}
	return f.profile, nil
}

func (f *fakePsychologistRepo) GetProfileByUser(ctx context.Context, userID uuid.UUID) (*model.PsychologistProfile, error) {
	if f.profile == nil || f.profile.UserID != userID {
		return nil, assert.AnError
	}
	return f.profile, nil
}

func (f *fakePsychologistRepo) UpdateProfile(ctx context.Context, p *model.PsychologistProfile) error {
	f.profile = p
	return nil
}

func (f *fakePsychologistRepo) GetDashboardStats(ctx context.Context, id uuid.UUID, now time.Time) (*model.DashboardStats, error) {
	return &model.DashboardStats{}, nil
}

type fixture struct {
	svc       *Service
	bookings  *fakeBookingRepo
	slots     *fakeAvailabilityRepo
	payments  *fakePayments
	profile   *model.PsychologistProfile
	clientID  uuid.UUID
	baseStart time.Time
}

// newFixture sets up a psychologist available 09:00-17:00 every day and a
// fixed clock so requests land on a known weekday.
func newFixture(t *testing.T) *fixture {
	t.Helper()

	rate := int64(20000)
	profile := &model.PsychologistProfile{
		ID:          uuid.New(),
		UserID:      uuid.New(),
		HourlyRate:  &rate,
		IsAvailable: true,
	}

	var slots []*model.AvailabilitySlot
	for day := 0; day < 7; day++ {
		slots = append(slots, &model.AvailabilitySlot{
			PsychologistID: profile.ID,
			DayOfWeek:      day,
			StartTime:      "09:00",
			EndTime:        "17:00",
			IsActive:       true,
		})
	}

	bookings := newFakeBookingRepo()
	availability := &fakeAvailabilityRepo{slots: slots}
	psychologists := &fakePsychologistRepo{profile: profile}
	payments := newFakePayments()

	svc := NewService(bookings, availability, psychologists, nil, payments, logger.NewTestLogger(), nil)
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC) // a Monday
	svc.now = func() time.Time { return now }

	return &fixture{
		svc:       svc,
		bookings:  bookings,
		slots:     availability,
		payments:  payments,
		profile:   profile,
		clientID:  uuid.New(),
		baseStart: time.Date(2026, 3, 3, 10, 0, 0, 0, time.UTC), // Tuesday 10:00
	}
}

func TestCreateBookingWithinAvailability(t *testing.T) {
	f := newFixture(t)

	booking, err := f.svc.Create(context.Background(), f.clientID, &model.CreateBookingRequest{
		PsychologistID: f.profile.ID,
		StartTime:      f.baseStart,
		EndTime:        f.baseStart.Add(time.Hour),
	})

	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusPending, booking.Status)
	assert.Equal(t, model.BookingPaymentUnpaid, booking.PaymentStatus)
	assert.Equal(t, model.SessionTypeVideo, booking.SessionType)
	assert.Equal(t, int64(20000), booking.Amount, "one hour at the hourly rate")
}

func TestCreateBookingChargesProRata(t *testing.T) {
	f := newFixture(t)

	booking, err := f.svc.Create(context.Background(), f.clientID, &model.CreateBookingRequest{
		PsychologistID: f.profile.ID,
		StartTime:      f.baseStart,
		EndTime:        f.baseStart.Add(30 * time.Minute),
	})

	require.NoError(t, err)
	assert.Equal(t, int64(10000), booking.Amount)
}

func TestCreateBookingOutsideAvailability(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), f.clientID, &model.CreateBookingRequest{
		PsychologistID: f.profile.ID,
		StartTime:      time.Date(2026, 3, 3, 18, 0, 0, 0, time.UTC),
		EndTime:        time.Date(2026, 3, 3, 19, 0, 0, 0, time.UTC),
	})

	require.Error(t, err)
	assert.Empty(t, f.bookings.bookings)
}

func TestCreateBookingRejectsPast(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), f.clientID, &model.CreateBookingRequest{
		PsychologistID: f.profile.ID,
		StartTime:      time.Date(2026, 2, 23, 10, 0, 0, 0, time.UTC),
		EndTime:        time.Date(2026, 2, 23, 11, 0, 0, 0, time.UTC),
	})

	require.Error(t, err)
}

func TestCreateBookingRejectsOverlap(t *testing.T) {
	f := newFixture(t)
	f.bookings.conflict = true

	_, err := f.svc.Create(context.Background(), f.clientID, &model.CreateBookingRequest{
		PsychologistID: f.profile.ID,
		StartTime:      f.baseStart,
		EndTime:        f.baseStart.Add(time.Hour),
	})

	require.Error(t, err)
	assert.Empty(t, f.bookings.bookings)
}

func TestCancelBookingByClient(t *testing.T) {
	f := newFixture(t)

	booking, err := f.svc.Create(context.Background(), f.clientID, &model.CreateBookingRequest{
		PsychologistID: f.profile.ID,
		StartTime:      f.baseStart,
		EndTime:        f.baseStart.Add(time.Hour),
	})
	require.NoError(t, err)

	cancelled, err := f.svc.Cancel(context.Background(), f.clientID, false, booking.ID, "schedule change")

	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelReason)
	assert.Equal(t, "schedule change", *cancelled.CancelReason)
}

func TestCancelBookingByStrangerForbidden(t *testing.T) {
	f := newFixture(t)

	booking, err := f.svc.Create(context.Background(), f.clientID, &model.CreateBookingRequest{
		PsychologistID: f.profile.ID,
		StartTime:      f.baseStart,
		EndTime:        f.baseStart.Add(time.Hour),
	})
	require.NoError(t, err)

	_, err = f.svc.Cancel(context.Background(), uuid.New(), false, booking.ID, "")

	require.Error(t, err)
	assert.Equal(t, model.BookingStatusPending, f.bookings.bookings[booking.ID].Status)
}

func TestCancelBookingTwiceConflicts(t *testing.T) {
	f := newFixture(t)

	booking, err := f.svc.Create(context.Background(), f.clientID, &model.CreateBookingRequest{
		PsychologistID: f.profile.ID,
		StartTime:      f.baseStart,
		EndTime:        f.baseStart.Add(time.Hour),
	})
	require.NoError(t, err)

	_, err = f.svc.Cancel(context.Background(), f.clientID, false, booking.ID, "")
	require.NoError(t, err)

	_, err = f.svc.Cancel(context.Background(), f.clientID, false, booking.ID, "")
	require.Error(t, err)
}

// pendingBooking books one hour on the fixture's Tuesday and seeds a
// payment intent in the given state for it.
func pendingBooking(t *testing.T, f *fixture, intentStatus string, intentAmount int64) (*model.Booking, string) {
	t.Helper()

	booking, err := f.svc.Create(context.Background(), f.clientID, &model.CreateBookingRequest{
		PsychologistID: f.profile.ID,
		StartTime:      f.baseStart,
		EndTime:        f.baseStart.Add(time.Hour),
	})
	require.NoError(t, err)

	intentID := "pi_mock_123"
	f.payments.intents[intentID] = &model.PaymentIntent{
		ID:       intentID,
		Amount:   intentAmount,
		Currency: "usd",
		Status:   intentStatus,
	}
	return booking, intentID
}

func TestConfirmMarksPaidAndLinksPayment(t *testing.T) {
	f := newFixture(t)
	booking, intentID := pendingBooking(t, f, model.IntentStatusSucceeded, 20000)

	confirmed, err := f.svc.Confirm(context.Background(), f.clientID, false, booking.ID, intentID)

	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusConfirmed, confirmed.Status)
	assert.Equal(t, model.BookingPaymentPaid, confirmed.PaymentStatus)
	require.NotNil(t, confirmed.PaymentID)
	assert.Equal(t, booking.ID, f.payments.linked[intentID])
}

func TestConfirmByStrangerForbidden(t *testing.T) {
	f := newFixture(t)
	booking, intentID := pendingBooking(t, f, model.IntentStatusSucceeded, 20000)

	_, err := f.svc.Confirm(context.Background(), uuid.New(), false, booking.ID, intentID)

	require.Error(t, err)
	assert.Equal(t, model.BookingStatusPending, f.bookings.bookings[booking.ID].Status)
	assert.Equal(t, model.BookingPaymentUnpaid, f.bookings.bookings[booking.ID].PaymentStatus)
}

func TestConfirmRejectsUnknownPayment(t *testing.T) {
	f := newFixture(t)
	booking, _ := pendingBooking(t, f, model.IntentStatusSucceeded, 20000)

	_, err := f.svc.Confirm(context.Background(), f.clientID, false, booking.ID, "pi_mock_fabricated")

	require.Error(t, err)
	assert.Equal(t, model.BookingStatusPending, f.bookings.bookings[booking.ID].Status)
}

func TestConfirmRejectsUnsettledPayment(t *testing.T) {
	f := newFixture(t)
	booking, intentID := pendingBooking(t, f, model.IntentStatusPending, 20000)

	_, err := f.svc.Confirm(context.Background(), f.clientID, false, booking.ID, intentID)

	require.Error(t, err)
	assert.Equal(t, model.BookingStatusPending, f.bookings.bookings[booking.ID].Status)
}

func TestConfirmRejectsAmountMismatch(t *testing.T) {
	f := newFixture(t)
	booking, intentID := pendingBooking(t, f, model.IntentStatusSucceeded, 500)

	_, err := f.svc.Confirm(context.Background(), f.clientID, false, booking.ID, intentID)

	require.Error(t, err)
	assert.Equal(t, model.BookingStatusPending, f.bookings.bookings[booking.ID].Status)
}

func TestAvailabilityForUser(t *testing.T) {
	f := newFixture(t)

	slots, err := f.svc.AvailabilityForUser(context.Background(), f.profile.UserID)
	require.NoError(t, err)
	assert.Len(t, slots, 7)

	_, err = f.svc.AvailabilityForUser(context.Background(), uuid.New())
	require.Error(t, err)
}

func TestReplaceAvailabilityRejectsInvertedSlot(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ReplaceAvailability(context.Background(), f.profile.UserID, &model.UpdateAvailabilityRequest{
		Slots: []model.AvailabilitySlotInput{
			{DayOfWeek: 1, StartTime: "17:00", EndTime: "09:00", IsActive: true},
		},
	})

	require.Error(t, err)
}
