package service

import (
	"context"
	"fmt"
	"time"

	"reimbursement-hub/internal/core/domain"
	"reimbursement-hub/internal/core/ports"
	"reimbursement-hub/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const minPasswordLen = 8

// AuthServiceImpl implements ports.AuthService.
type AuthServiceImpl struct {
	userRepo ports.UserRepository
	hashSvc  ports.HashService
	tokenSvc ports.TokenService
	log      zerolog.Logger
}

// NewAuthService creates a new AuthServiceImpl.
func NewAuthService(
	userRepo ports.UserRepository,
	hashSvc ports.HashService,
	tokenSvc ports.TokenService,
	log zerolog.Logger,
) *AuthServiceImpl {
	return &AuthServiceImpl{
		userRepo: userRepo,
		hashSvc:  hashSvc,
		tokenSvc: tokenSvc,
		log:      log,
	}
}

// Register creates a new user account. Self-registration always yields the
// USER role; administrator accounts are provisioned out of band. Username
// uniqueness is case-insensitive.
func (s *AuthServiceImpl) Register(ctx context.Context, username, password string) (*domain.User, error) {
	username = domain.NormalizeUsername(username)
	if username == "" {
		return nil, apperror.Validation("Username is required")
	}
	if len(password) < minPasswordLen {
		return nil, apperror.Validation(fmt.Sprintf("Password must be at least %d characters", minPasswordLen))
	}

	existing, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("check username: %w", err))
	}
	if existing != nil {
		return nil, apperror.ErrUsernameExists()
	}

	hash, err := s.hashSvc.Hash(password)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("hash password: %w", err))
	}

	user := &domain.User{
		ID:           uuid.New(),
		Username:     username,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create user: %w", err))
	}

	s.log.Info().
		Str("user_id", user.ID.String()).
		Str("username", user.Username).
		Msg("user registered")

	return user, nil
}

// Login authenticates a user and issues a JWT. An unknown username and a
// wrong password return the same error.
func (s *AuthServiceImpl) Login(ctx context.Context, username, password string) (string, *domain.User, time.Time, error) {
	username = domain.NormalizeUsername(username)

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return "", nil, time.Time{}, apperror.InternalError(fmt.Errorf("get user: %w", err))
	}
	if user == nil {
		return "", nil, time.Time{}, apperror.ErrInvalidCredentials()
	}

	match, err := s.hashSvc.Verify(password, user.PasswordHash)
	if err != nil {
		return "", nil, time.Time{}, apperror.InternalError(fmt.Errorf("verify password: %w", err))
	}
	if !match {
		return "", nil, time.Time{}, apperror.ErrInvalidCredentials()
	}

	token, expiresAt, err := s.tokenSvc.Generate(user)
	if err != nil {
		return "", nil, time.Time{}, apperror.InternalError(fmt.Errorf("generate token: %w", err))
	}

	s.log.Info().
		Str("user_id", user.ID.String()).
		Msg("user logged in")

	return token, user, expiresAt, nil
}

// ChangePassword replaces the caller's password after verifying the current
// one. Existing tokens stay valid until they expire.
func (s *AuthServiceImpl) ChangePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	if len(newPassword) < minPasswordLen {
		return apperror.Validation(fmt.Sprintf("Password must be at least %d characters", minPasswordLen))
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("get user: %w", err))
	}
	if user == nil {
		return apperror.ErrNotFound("user")
	}

	match, err := s.hashSvc.Verify(currentPassword, user.PasswordHash)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("verify password: %w", err))
	}
	if !match {
		return apperror.ErrWrongPassword()
	}

	hash, err := s.hashSvc.Hash(newPassword)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("hash password: %w", err))
	}

	if err := s.userRepo.UpdatePassword(ctx, userID, hash); err != nil {
		return apperror.InternalError(fmt.Errorf("update password: %w", err))
	}

	s.log.Info().
		Str("user_id", userID.String()).
		Msg("password changed")

	return nil
}
