package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acube-health/acube-api/internal/model"
	"github.com/acube-health/acube-api/internal/session"
	"github.com/acube-health/acube-api/pkg/auth"
	"github.com/acube-health/acube-api/pkg/logger"
)

type fakeUserRepo struct {
	byEmail map[string]*model.User
	roles   map[uuid.UUID][]string
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		byEmail: make(map[string]*model.User),
		roles:   make(map[uuid.UUID][]string),
	}
}

func (f *fakeUserRepo) Create(ctx context.Context, u *model.User) error {
	u.ID = uuid.New()
	f.byEmail[u.Email] = u
	return nil
}

func (f *fakeUserRepo) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, assert.AnError
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	u, ok := f.byEmail[email]
	if !ok {
		return nil, assert.AnError
	}
	return u, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, u *model.User) error {
	f.byEmail[u.Email] = u
	return nil
}

func (f *fakeUserRepo) AssignRole(ctx context.Context, userID uuid.UUID, role string) error {
	f.roles[userID] = append(f.roles[userID], role)
	return nil
}

func (f *fakeUserRepo) GetRoles(ctx context.Context, userID uuid.UUID) ([]string, error) {
	return f.roles[userID], nil
}

func (f *fakeUserRepo) HasRole(ctx context.Context, userID uuid.UUID, role string) (bool, error) {
	for _, r := range f.roles[userID] {
		if r == role {
			return true, nil
		}
	}
	return false, nil
}

type fakePsychRepo struct {
	profiles map[uuid.UUID]*model.PsychologistProfile
}

func (f *fakePsychRepo) CreateProfile(ctx context.Context, p *model.PsychologistProfile) error {
	p.ID = uuid.New()
	f.profiles[p.UserID] = p
	return nil
}

func (f *fakePsychRepo) GetProfile(ctx context.Context, id uuid.UUID) (*model.PsychologistProfile, error) {
	for _, p := range f.profiles {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, assert.AnError
}

func (f *fakePsychRepo) GetProfileByUser(ctx context.Context, userID uuid.UUID) (*model.PsychologistProfile, error) {
	p, ok := f.profiles[userID]
	if !ok {
		return nil, assert.AnError
	}
	return p, nil
}

func (f *fakePsychRepo) UpdateProfile(ctx context.Context, p *model.PsychologistProfile) error {
	f.profiles[p.UserID] = p
	return nil
}

func (f *fakePsychRepo) GetDashboardStats(ctx context.Context, id uuid.UUID, now time.Time) (*model.DashboardStats, error) {
	return &model.DashboardStats{}, nil
}

type fakeTokenRepo struct {
	tokens map[string]uuid.UUID
}

func newFakeTokenRepo() *fakeTokenRepo {
	return &fakeTokenRepo{tokens: make(map[string]uuid.UUID)}
}

func (f *fakeTokenRepo) StoreRefreshToken(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) error {
	f.tokens[token] = userID
	return nil
}

func (f *fakeTokenRepo) ValidateRefreshToken(ctx context.Context, token string) (uuid.UUID, error) {
	id, ok := f.tokens[token]
	if !ok {
		return uuid.Nil, assert.AnError
	}
	return id, nil
}

func (f *fakeTokenRepo) InvalidateToken(ctx context.Context, token string) error {
	delete(f.tokens, token)
	return nil
}

func (f *fakeTokenRepo) InvalidateUserTokens(ctx context.Context, userID uuid.UUID) error {
	for t, id := range f.tokens {
		if id == userID {
			delete(f.tokens, t)
		}
	}
	return nil
}

func (f *fakeTokenRepo) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

func newTestService(t *testing.T) (*Service, *fakeUserRepo) {
	t.Helper()

	users := newFakeUserRepo()
	psychs := &fakePsychRepo{profiles: make(map[uuid.UUID]*model.PsychologistProfile)}
	tokens := newFakeTokenRepo()
	jwtSvc := auth.NewJWTService(auth.Config{
		Secret:        "test-access-secret",
		RefreshSecret: "test-refresh-secret",
		Expiry:        time.Hour,
		RefreshExpiry: 24 * time.Hour,
	})
	sessions := session.NewStore(time.Minute)

	return NewService(users, psychs, tokens, jwtSvc, sessions, logger.NewTestLogger()), users
}

func registerTestUser(t *testing.T, svc *Service) *model.User {
	t.Helper()

	user, err := svc.Register(context.Background(), &model.RegisterRequest{
		Email:         "dr.lee@example.com",
		Password:      "correct-horse-battery",
		FirstName:     "Ana",
		LastName:      "Lee",
		LicenseNumber: "PSY-12345",
	})
	require.NoError(t, err)
	return user
}

func TestRegisterAssignsPsychologistRole(t *testing.T) {
	svc, users := newTestService(t)

	user := registerTestUser(t, svc)

	assert.Contains(t, users.roles[user.ID], model.RolePsychologist)
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	svc, _ := newTestService(t)
	registerTestUser(t, svc)

	_, err := svc.Register(context.Background(), &model.RegisterRequest{
		Email:         "dr.lee@example.com",
		Password:      "another-password",
		FirstName:     "Ana",
		LastName:      "Lee",
		LicenseNumber: "PSY-99999",
	})

	require.Error(t, err)
}

func TestLoginAndValidateAccess(t *testing.T) {
	svc, _ := newTestService(t)
	user := registerTestUser(t, svc)

	pair, err := svc.Login(context.Background(), &model.LoginRequest{
		Email:    "dr.lee@example.com",
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)
	require.NotEmpty(t, pair.AccessToken)

	access, err := svc.ValidateAccess(context.Background(), pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, access.UserID)
	assert.Contains(t, access.Roles, model.RolePsychologist)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newTestService(t)
	registerTestUser(t, svc)

	_, err := svc.Login(context.Background(), &model.LoginRequest{
		Email:    "dr.lee@example.com",
		Password: "wrong-password",
	})

	require.Error(t, err)
}

func TestLoginLocksAfterRepeatedFailures(t *testing.T) {
	svc, _ := newTestService(t)
	registerTestUser(t, svc)

	bad := &model.LoginRequest{Email: "dr.lee@example.com", Password: "wrong-password"}
	for i := 0; i < maxLoginAttempts; i++ {
		_, err := svc.Login(context.Background(), bad)
		require.Error(t, err)
	}

	// Even the correct password is refused while locked
	_, err := svc.Login(context.Background(), &model.LoginRequest{
		Email:    "dr.lee@example.com",
		Password: "correct-horse-battery",
	})
	require.Error(t, err)
}

func TestLogoutRevokesAccess(t *testing.T) {
	svc, _ := newTestService(t)
	registerTestUser(t, svc)

	pair, err := svc.Login(context.Background(), &model.LoginRequest{
		Email:    "dr.lee@example.com",
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)

	access, err := svc.ValidateAccess(context.Background(), pair.AccessToken)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), access.UserID, access.SessionID))

	_, err = svc.ValidateAccess(context.Background(), pair.AccessToken)
	require.Error(t, err, "tokens must stop working once the session ends")
}

func TestRefreshRotatesToken(t *testing.T) {
	svc, _ := newTestService(t)
	registerTestUser(t, svc)

	pair, err := svc.Login(context.Background(), &model.LoginRequest{
		Email:    "dr.lee@example.com",
		Password: "correct-horse-battery",
	})
	require.NoError(t, err)

	fresh, err := svc.Refresh(context.Background(), pair.RefreshToken)
	require.NoError(t, err)
	require.NotEmpty(t, fresh.AccessToken)

	_, err = svc.Refresh(context.Background(), pair.RefreshToken)
	require.Error(t, err, "a rotated refresh token must not be reusable")
}
