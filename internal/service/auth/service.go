package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/hms-api/internal/access"
	"github.com/jwalitptl/hms-api/internal/clock"
	"github.com/jwalitptl/hms-api/internal/email"
	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository"
	"github.com/jwalitptl/hms-api/internal/session"
	"github.com/jwalitptl/hms-api/pkg/auth"
	apperrors "github.com/jwalitptl/hms-api/pkg/errors"
	"github.com/jwalitptl/hms-api/pkg/metrics"
	"github.com/jwalitptl/hms-api/pkg/security"
	"github.com/jwalitptl/hms-api/pkg/simulate"
)

const (
	MsgInvalidCredentials = "Invalid username or password"
	MsgPasswordFields     = "All password fields are required"
	MsgPasswordMismatch   = "New passwords do not match"
	MsgPasswordIncorrect  = "Current password is incorrect"
)

var ErrSessionExpired = errors.New("session expired or signed out")

type AuthServicer interface {
	Login(ctx context.Context, username, password string) (*model.LoginResponse, error)
	Logout(ctx context.Context, token string) error
	Authenticate(ctx context.Context, token string) (*model.User, error)
	ChangePassword(ctx context.Context, userID int64, req *model.ChangePasswordRequest) error
}

type Service struct {
	userRepo   repository.UserRepository
	sessions   session.Store
	jwtSvc     auth.JWTService
	hasher     security.PasswordHasher
	emailSvc   email.Service
	metrics    *metrics.Metrics
	loginDelay time.Duration
	now        clock.Func
}

type Option func(*Service)

// WithLoginDelay pauses every login attempt for d.
func WithLoginDelay(d time.Duration) Option {
	return func(s *Service) { s.loginDelay = d }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithClock(now clock.Func) Option {
	return func(s *Service) { s.now = now }
}

func NewService(userRepo repository.UserRepository, sessions session.Store, jwtSvc auth.JWTService,
	hasher security.PasswordHasher, emailSvc email.Service, opts ...Option) *Service {
	s := &Service{
		userRepo: userRepo,
		sessions: sessions,
		jwtSvc:   jwtSvc,
		hasher:   hasher,
		emailSvc: emailSvc,
		metrics:  metrics.NewNop(),
		now:      clock.System,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Login(ctx context.Context, username, password string) (*model.LoginResponse, error) {
	if err := simulate.Wait(ctx, s.loginDelay); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, s.loginFailed(username, "unknown_user")
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if !user.CanLogin() {
		return nil, s.loginFailed(username, "inactive")
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return nil, s.loginFailed(username, "bad_password")
	}
	s.upgradeHash(ctx, user, password)

	sessionID := uuid.NewString()
	token, expiresAt, err := s.jwtSvc.GenerateToken(user, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	sess := &model.Session{
		ID:        sessionID,
		Token:     token,
		User:      user,
		IssuedAt:  s.now(),
		ExpiresAt: expiresAt,
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		s.metrics.SessionOperations.WithLabelValues("save", "error").Inc()
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	s.metrics.SessionOperations.WithLabelValues("save", "ok").Inc()
	s.metrics.LoginAttempts.WithLabelValues("success").Inc()

	log.Info().Int64("user_id", user.ID).Str("role", string(user.Role)).Msg("User logged in")

	return &model.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
		Redirect:  access.DashboardPath,
	}, nil
}

// upgradeHash re-hashes a password stored with an outdated bcrypt cost. A
// failure only costs the upgrade, never the login.
func (s *Service) upgradeHash(ctx context.Context, user *model.User, password string) {
	if !s.hasher.NeedsRehash(user.PasswordHash) {
		return
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		log.Warn().Err(err).Int64("user_id", user.ID).Msg("Failed to re-hash password")
		return
	}
	updated := *user
	updated.PasswordHash = hash
	updated.UpdatedAt = s.now()
	if err := s.userRepo.Update(ctx, &updated); err != nil {
		log.Warn().Err(err).Int64("user_id", user.ID).Msg("Failed to store re-hashed password")
		return
	}
	user.PasswordHash = hash
}

func (s *Service) loginFailed(username, reason string) error {
	s.metrics.LoginAttempts.WithLabelValues("failure").Inc()
	log.Warn().Str("username", username).Str("reason", reason).Msg("Login rejected")
	return apperrors.Unauthorized(MsgInvalidCredentials)
}

func (s *Service) Logout(ctx context.Context, token string) error {
	if err := s.sessions.Delete(ctx, token); err != nil {
		s.metrics.SessionOperations.WithLabelValues("delete", "error").Inc()
		return fmt.Errorf("failed to delete session: %w", err)
	}
	s.metrics.SessionOperations.WithLabelValues("delete", "ok").Inc()
	return nil
}

// Authenticate resolves a bearer token to the current user record. The token
// must verify, its session must still be stored, and the account must still
// be allowed to log in.
func (s *Service) Authenticate(ctx context.Context, token string) (*model.User, error) {
	claims, err := s.jwtSvc.ValidateToken(token)
	if err != nil {
		return nil, err
	}

	sess, err := s.sessions.Get(ctx, token)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, ErrSessionExpired
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if sess.ID != claims.SessionID || sess.User.ID != claims.UserID {
		return nil, ErrSessionExpired
	}

	user, err := s.userRepo.Get(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionExpired
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if !user.IsActive {
		_ = s.sessions.Delete(ctx, token)
		return nil, ErrSessionExpired
	}
	return user, nil
}

func (s *Service) ChangePassword(ctx context.Context, userID int64, req *model.ChangePasswordRequest) error {
	if req.CurrentPassword == "" || req.NewPassword == "" || req.ConfirmPassword == "" {
		return apperrors.BadRequest(MsgPasswordFields, nil)
	}
	if req.NewPassword != req.ConfirmPassword {
		return apperrors.BadRequest(MsgPasswordMismatch, nil)
	}
	if len(req.NewPassword) < security.MinPasswordLen {
		return apperrors.BadRequest(security.ErrPasswordTooShort.Error(), nil)
	}

	user, err := s.userRepo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("user", err)
		}
		return fmt.Errorf("failed to get user: %w", err)
	}
	if err := s.hasher.Compare(user.PasswordHash, req.CurrentPassword); err != nil {
		return apperrors.BadRequest(MsgPasswordIncorrect, nil)
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = hash
	user.UpdatedAt = s.now()
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	if err := s.emailSvc.SendPasswordChanged(ctx, user.Email, user.FullName()); err != nil {
		log.Warn().Err(err).Int64("user_id", user.ID).Msg("Failed to send password change notice")
	}
	return nil
}
