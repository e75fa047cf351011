package auth

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwalitptl/hms-api/internal/access"
	"github.com/jwalitptl/hms-api/internal/email"
	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository"
	"github.com/jwalitptl/hms-api/internal/seed"
	"github.com/jwalitptl/hms-api/internal/session"
	hmstest "github.com/jwalitptl/hms-api/internal/testutil"
	"github.com/jwalitptl/hms-api/pkg/auth"
	apperrors "github.com/jwalitptl/hms-api/pkg/errors"
	"github.com/jwalitptl/hms-api/pkg/metrics"
)

type AuthServiceSuite struct {
	suite.Suite
	ctx      context.Context
	store    repository.Store
	sessions *session.MemoryStore
	svc      *Service
}

func (s *AuthServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = hmstest.SeededStore(s.T())
	s.sessions = session.NewMemoryStore(time.Minute)
	s.svc = NewService(
		s.store.Users,
		s.sessions,
		auth.NewJWTService("test-secret", time.Hour),
		hmstest.Hasher(),
		email.NewService(email.Config{}),
	)
}

func TestAuthServiceSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceSuite))
}

func (s *AuthServiceSuite) assertMessage(err error, code apperrors.ErrorCode, msg string) {
	appErr, ok := apperrors.As(err)
	s.Require().True(ok, "expected AppError, got %v", err)
	s.Equal(code, appErr.Code)
	s.Equal(msg, appErr.Message)
}

func (s *AuthServiceSuite) TestLoginSuccess() {
	resp, err := s.svc.Login(s.ctx, seed.DoctorUsername, seed.DoctorPassword)
	s.Require().NoError(err)
	s.NotEmpty(resp.Token)
	s.Equal(access.DashboardPath, resp.Redirect)
	s.Equal(model.RoleDoctor, resp.User.Role)

	token, err := s.sessions.TokenForUser(s.ctx, resp.User.ID)
	s.Require().NoError(err)
	s.Equal(resp.Token, token)

	user, err := s.svc.Authenticate(s.ctx, resp.Token)
	s.Require().NoError(err)
	s.Equal(int64(2), user.ID)
}

func (s *AuthServiceSuite) TestLoginFailuresLeaveNoSession() {
	cases := []struct{ username, password string }{
		{seed.AdminUsername, "wrong"},
		{"nobody", "admin123"},
		{"dr_sara", ""},
	}
	for _, c := range cases {
		_, err := s.svc.Login(s.ctx, c.username, c.password)
		s.assertMessage(err, apperrors.ErrUnauthorized, MsgInvalidCredentials)
	}

	_, err := s.sessions.TokenForUser(s.ctx, 1)
	s.ErrorIs(err, session.ErrNotFound)
}

func (s *AuthServiceSuite) TestLoginRejectsInactiveUser() {
	u, err := s.store.Users.Get(s.ctx, 1)
	s.Require().NoError(err)
	u.IsActive = false
	s.Require().NoError(s.store.Users.Update(s.ctx, u))

	_, err = s.svc.Login(s.ctx, seed.AdminUsername, seed.AdminPassword)
	s.assertMessage(err, apperrors.ErrUnauthorized, MsgInvalidCredentials)
}

func (s *AuthServiceSuite) TestLogoutInvalidatesToken() {
	resp, err := s.svc.Login(s.ctx, seed.AdminUsername, seed.AdminPassword)
	s.Require().NoError(err)

	s.Require().NoError(s.svc.Logout(s.ctx, resp.Token))
	_, err = s.svc.Authenticate(s.ctx, resp.Token)
	s.ErrorIs(err, ErrSessionExpired)

	s.NoError(s.svc.Logout(s.ctx, resp.Token))
}

func (s *AuthServiceSuite) TestNewLoginReplacesPreviousSession() {
	first, err := s.svc.Login(s.ctx, seed.ReceptionistUsername, seed.ReceptionistPassword)
	s.Require().NoError(err)
	second, err := s.svc.Login(s.ctx, seed.ReceptionistUsername, seed.ReceptionistPassword)
	s.Require().NoError(err)

	_, err = s.svc.Authenticate(s.ctx, first.Token)
	s.Error(err)
	_, err = s.svc.Authenticate(s.ctx, second.Token)
	s.NoError(err)
}

func (s *AuthServiceSuite) TestSessionMetricsCountStoreOperations() {
	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics("hms", "", reg)
	svc := NewService(s.store.Users, s.sessions, auth.NewJWTService("test-secret", time.Hour),
		hmstest.Hasher(), email.NewService(email.Config{}), WithMetrics(m))

	_, err := svc.Login(s.ctx, seed.ReceptionistUsername, seed.ReceptionistPassword)
	s.Require().NoError(err)
	second, err := svc.Login(s.ctx, seed.ReceptionistUsername, seed.ReceptionistPassword)
	s.Require().NoError(err)
	s.Require().NoError(svc.Logout(s.ctx, second.Token))
	s.Require().NoError(svc.Logout(s.ctx, second.Token))

	s.Equal(2.0, testutil.ToFloat64(m.SessionOperations.WithLabelValues("save", "ok")))
	s.Equal(2.0, testutil.ToFloat64(m.SessionOperations.WithLabelValues("delete", "ok")))

	// no live session gauge
	families, err := reg.Gather()
	s.Require().NoError(err)
	for _, f := range families {
		s.NotContains(f.GetName(), "active_sessions")
	}
}

func (s *AuthServiceSuite) TestAuthenticateRejectsGarbage() {
	_, err := s.svc.Authenticate(s.ctx, "not-a-token")
	s.ErrorIs(err, auth.ErrInvalidToken)
}

func (s *AuthServiceSuite) TestChangePasswordValidationOrder() {
	cases := []struct {
		req model.ChangePasswordRequest
		msg string
	}{
		{model.ChangePasswordRequest{CurrentPassword: "admin123", NewPassword: "abcdef"}, MsgPasswordFields},
		{model.ChangePasswordRequest{CurrentPassword: "admin123", NewPassword: "abcdef", ConfirmPassword: "abcdeg"}, MsgPasswordMismatch},
		{model.ChangePasswordRequest{CurrentPassword: "admin123", NewPassword: "abc", ConfirmPassword: "abc"}, "Password must be at least 6 characters"},
		{model.ChangePasswordRequest{CurrentPassword: "nope", NewPassword: "abcdef", ConfirmPassword: "abcdef"}, MsgPasswordIncorrect},
	}
	for _, c := range cases {
		req := c.req
		err := s.svc.ChangePassword(s.ctx, 1, &req)
		s.assertMessage(err, apperrors.ErrBadRequest, c.msg)
	}
}

func (s *AuthServiceSuite) TestChangePassword() {
	err := s.svc.ChangePassword(s.ctx, 1, &model.ChangePasswordRequest{
		CurrentPassword: seed.AdminPassword,
		NewPassword:     "s3cret!",
		ConfirmPassword: "s3cret!",
	})
	s.Require().NoError(err)

	_, err = s.svc.Login(s.ctx, seed.AdminUsername, seed.AdminPassword)
	s.Error(err)
	_, err = s.svc.Login(s.ctx, seed.AdminUsername, "s3cret!")
	s.NoError(err)
}

func (s *AuthServiceSuite) TestLoginUpgradesOutdatedHash() {
	stronger, err := bcrypt.GenerateFromPassword([]byte(seed.ReceptionistPassword), bcrypt.MinCost+1)
	s.Require().NoError(err)
	u, err := s.store.Users.GetByUsername(s.ctx, seed.ReceptionistUsername)
	s.Require().NoError(err)
	u.PasswordHash = string(stronger)
	s.Require().NoError(s.store.Users.Update(s.ctx, u))

	_, err = s.svc.Login(s.ctx, seed.ReceptionistUsername, seed.ReceptionistPassword)
	s.Require().NoError(err)

	u, err = s.store.Users.GetByUsername(s.ctx, seed.ReceptionistUsername)
	s.Require().NoError(err)
	cost, err := bcrypt.Cost([]byte(u.PasswordHash))
	s.Require().NoError(err)
	s.Equal(bcrypt.MinCost, cost)
}
