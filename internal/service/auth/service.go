package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/acube-health/acube-api/internal/model"
	"github.com/acube-health/acube-api/internal/repository"
	"github.com/acube-health/acube-api/internal/session"
	"github.com/acube-health/acube-api/pkg/auth"
	"github.com/acube-health/acube-api/pkg/errors"
	"github.com/acube-health/acube-api/pkg/logger"
	"github.com/acube-health/acube-api/pkg/security"
)

const (
	maxLoginAttempts = 5
	lockoutWindow    = 15 * time.Minute
	refreshTokenTTL  = 7 * 24 * time.Hour
)

// Access describes an authenticated caller after token validation
type Access struct {
	UserID    uuid.UUID
	Email     string
	Roles     []string
	SessionID string
}

type Service struct {
	users         repository.UserRepository
	psychologists repository.PsychologistRepository
	tokens        repository.TokenRepository
	jwt           auth.JWTService
	sessions      *session.Store
	logger        *logger.Logger
	now           func() time.Time
}

func NewService(
	users repository.UserRepository,
	psychologists repository.PsychologistRepository,
	tokens repository.TokenRepository,
	jwtSvc auth.JWTService,
	sessions *session.Store,
	l *logger.Logger,
) *Service {
	return &Service{
		users:         users,
		psychologists: psychologists,
		tokens:        tokens,
		jwt:           jwtSvc,
		sessions:      sessions,
		logger:        l,
		now:           time.Now,
	}
}

// Register creates a psychologist account together with its clinical
// profile and the psychologist role.
func (s *Service) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if existing, err := s.users.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, errors.Conflict("an account with this email already exists", nil)
	}

	hash, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Phone:        req.Phone,
		Status:       model.UserStatusActive,
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err := s.users.AssignRole(ctx, user.ID, model.RolePsychologist); err != nil {
		return nil, fmt.Errorf("failed to assign role: %w", err)
	}

	profile := &model.PsychologistProfile{
		UserID:        user.ID,
		LicenseNumber: strings.TrimSpace(req.LicenseNumber),
	}
	if req.Specialty != "" {
		specialty := req.Specialty
		profile.Specialty = &specialty
	}
	if err := s.psychologists.CreateProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to create psychologist profile: %w", err)
	}

	s.logger.Info("psychologist registered", "user_id", user.ID, "email", email)
	return user, nil
}

// Login verifies credentials, opens a session and mints a token pair.
// Accounts lock for a window after repeated failures.
func (s *Service) Login(ctx context.Context, req *model.LoginRequest) (*model.TokenResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, errors.Unauthorized("invalid email or password", nil)
	}

	now := s.now().UTC()
	if user.LoginAttempts >= maxLoginAttempts && now.Sub(user.LastLoginAttempt) < lockoutWindow {
		return nil, errors.Forbidden("account temporarily locked, try again later", nil)
	}

	if !security.CheckPassword(user.PasswordHash, req.Password) {
		user.LoginAttempts++
		user.LastLoginAttempt = now
		if err := s.users.Update(ctx, user); err != nil {
			s.logger.Error(err, "failed to record login attempt", "user_id", user.ID)
		}
		return nil, errors.Unauthorized("invalid email or password", nil)
	}

	if user.Status != model.UserStatusActive {
		return nil, errors.Forbidden("account is not active", nil)
	}

	roles, err := s.users.GetRoles(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load roles: %w", err)
	}

	user.LoginAttempts = 0
	user.LastLoginAttempt = now
	user.LastLoginAt = &now
	if err := s.users.Update(ctx, user); err != nil {
		s.logger.Error(err, "failed to record login", "user_id", user.ID)
	}

	sess := s.sessions.Create(user.ID, user.Email, roles)

	access, err := s.jwt.GenerateAccessToken(user.ID, user.Email, roles, sess.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refresh, err := s.jwt.GenerateRefreshToken(user.ID, user.Email, sess.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	if err := s.tokens.StoreRefreshToken(ctx, user.ID, refresh, now.Add(refreshTokenTTL)); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &model.TokenResponse{AccessToken: access, RefreshToken: refresh}, nil
}

// Logout ends the caller's session and revokes their refresh tokens
func (s *Service) Logout(ctx context.Context, userID uuid.UUID, sessionID string) error {
	s.sessions.Delete(sessionID)
	if err := s.tokens.InvalidateUserTokens(ctx, userID); err != nil {
		return fmt.Errorf("failed to invalidate tokens: %w", err)
	}
	return nil
}

// Refresh exchanges a valid refresh token for a fresh pair. The old
// refresh token is rotated out.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*model.TokenResponse, error) {
	claims, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, errors.Unauthorized("invalid refresh token", err)
	}

	if _, err := s.tokens.ValidateRefreshToken(ctx, refreshToken); err != nil {
		return nil, errors.Unauthorized("refresh token revoked", err)
	}

	sess, ok := s.sessions.Get(claims.SessionID)
	if !ok {
		return nil, errors.Unauthorized("session has ended", nil)
	}

	if err := s.tokens.InvalidateToken(ctx, refreshToken); err != nil {
		s.logger.Error(err, "failed to rotate refresh token", "user_id", claims.UserID)
	}

	s.sessions.Touch(sess.ID)

	access, err := s.jwt.GenerateAccessToken(sess.UserID, sess.Email, sess.Roles, sess.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	refresh, err := s.jwt.GenerateRefreshToken(sess.UserID, sess.Email, sess.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}
	if err := s.tokens.StoreRefreshToken(ctx, sess.UserID, refresh, s.now().UTC().Add(refreshTokenTTL)); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &model.TokenResponse{AccessToken: access, RefreshToken: refresh}, nil
}

// ValidateAccess checks a bearer token and that its session is still
// alive. A logged-out session rejects otherwise valid tokens.
func (s *Service) ValidateAccess(ctx context.Context, token string) (*Access, error) {
	claims, err := s.jwt.ValidateToken(token)
	if err != nil {
		return nil, errors.Unauthorized("invalid or expired token", err)
	}

	if _, ok := s.sessions.Get(claims.SessionID); !ok {
		return nil, errors.Unauthorized("session has ended", nil)
	}
	s.sessions.Touch(claims.SessionID)

	return &Access{
		UserID:    claims.UserID,
		Email:     claims.Email,
		Roles:     claims.Roles,
		SessionID: claims.SessionID,
	}, nil
}

// HasRole reports whether a user holds a role, consulting the database
// rather than token claims so revocations take effect immediately.
func (s *Service) HasRole(ctx context.Context, userID uuid.UUID, role string) (bool, error) {
	ok, err := s.users.HasRole(ctx, userID, role)
	if err != nil {
		return false, fmt.Errorf("failed to check role: %w", err)
	}
	return ok, nil
}
