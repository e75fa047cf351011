package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/hms-api/internal/clock"
	"github.com/jwalitptl/hms-api/internal/email"
	"github.com/jwalitptl/hms-api/internal/model"
	"github.com/jwalitptl/hms-api/internal/repository"
	"github.com/jwalitptl/hms-api/internal/session"
	apperrors "github.com/jwalitptl/hms-api/pkg/errors"
	"github.com/jwalitptl/hms-api/pkg/security"
)

const (
	MsgNameRequired   = "Name fields are required"
	MsgUsernameTaken  = "username already exists"
	MsgDeactivateSelf = "you cannot deactivate your own account"
)

type UserServicer interface {
	List(ctx context.Context, filter model.UserFilter) ([]*model.User, error)
	Get(ctx context.Context, id int64) (*model.User, error)
	Create(ctx context.Context, req *model.CreateUserRequest) (*model.User, error)
	UpdateProfile(ctx context.Context, id int64, req *model.UpdateProfileRequest) (*model.User, error)
	Deactivate(ctx context.Context, actor *model.User, id int64) error
}

type Service struct {
	repo     repository.UserRepository
	sessions session.Store
	hasher   security.PasswordHasher
	emailSvc email.Service
	now      clock.Func
}

func NewService(repo repository.UserRepository, sessions session.Store, hasher security.PasswordHasher,
	emailSvc email.Service, now clock.Func) *Service {
	if now == nil {
		now = clock.System
	}
	return &Service{
		repo:     repo,
		sessions: sessions,
		hasher:   hasher,
		emailSvc: emailSvc,
		now:      now,
	}
}

func (s *Service) List(ctx context.Context, filter model.UserFilter) ([]*model.User, error) {
	users, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("user", err)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *Service) Create(ctx context.Context, req *model.CreateUserRequest) (*model.User, error) {
	if !req.Role.Valid() {
		return nil, apperrors.BadRequest(fmt.Sprintf("invalid role %q", req.Role), nil)
	}
	if strings.TrimSpace(req.FirstName) == "" || strings.TrimSpace(req.LastName) == "" {
		return nil, apperrors.BadRequest(MsgNameRequired, nil)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		if errors.Is(err, security.ErrPasswordTooShort) {
			return nil, apperrors.BadRequest(err.Error(), err)
		}
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := s.now()
	user := &model.User{
		Base:         model.Base{CreatedAt: now, UpdatedAt: now},
		Username:     strings.TrimSpace(req.Username),
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		Email:        req.Email,
		Role:         req.Role,
		IsActive:     true,
		PasswordHash: hash,
	}
	if req.Role == model.RoleDoctor {
		user.Specialty = req.Specialty
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict(MsgUsernameTaken, err)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err := s.emailSvc.SendWelcome(ctx, user.Email, user.FullName(), user.Username); err != nil {
		log.Warn().Err(err).Int64("user_id", user.ID).Msg("Failed to send welcome email")
	}
	return user, nil
}

func (s *Service) UpdateProfile(ctx context.Context, id int64, req *model.UpdateProfileRequest) (*model.User, error) {
	first, last := strings.TrimSpace(req.FirstName), strings.TrimSpace(req.LastName)
	if first == "" || last == "" {
		return nil, apperrors.BadRequest(MsgNameRequired, nil)
	}

	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	user.FirstName = first
	user.LastName = last
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Specialty != nil && user.Role == model.RoleDoctor {
		user.Specialty = req.Specialty
	}
	user.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// Deactivate disables the account and ends its live session.
func (s *Service) Deactivate(ctx context.Context, actor *model.User, id int64) error {
	if actor == nil {
		return apperrors.Unauthorized("")
	}
	if actor.ID == id {
		return apperrors.BadRequest(MsgDeactivateSelf, nil)
	}

	user, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !user.IsActive {
		return nil
	}

	user.IsActive = false
	user.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, user); err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}

	token, err := s.sessions.TokenForUser(ctx, id)
	switch {
	case errors.Is(err, session.ErrNotFound):
	case err != nil:
		log.Warn().Err(err).Int64("user_id", id).Msg("Failed to look up session of deactivated user")
	default:
		if err := s.sessions.Delete(ctx, token); err != nil {
			log.Warn().Err(err).Int64("user_id", id).Msg("Failed to end session of deactivated user")
		}
	}

	log.Info().Int64("user_id", id).Int64("actor_id", actor.ID).Msg("User deactivated")
	return nil
}
