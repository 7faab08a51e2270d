package service

import (
	"context"
	"testing"
	"time"

	"reimbursement-hub/internal/core/domain"
	"reimbursement-hub/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type authTestDeps struct {
	svc      *AuthServiceImpl
	userRepo *mocks.MockUserRepository
	hashSvc  *mocks.MockHashService
	tokenSvc *mocks.MockTokenService
	ctrl     *gomock.Controller
}

func setupAuthService(t *testing.T) *authTestDeps {
	ctrl := gomock.NewController(t)
	d := &authTestDeps{
		userRepo: mocks.NewMockUserRepository(ctrl),
		hashSvc:  mocks.NewMockHashService(ctrl),
		tokenSvc: mocks.NewMockTokenService(ctrl),
		ctrl:     ctrl,
	}
	d.svc = NewAuthService(d.userRepo, d.hashSvc, d.tokenSvc, zerolog.Nop())
	return d
}

func TestAuthService_Register_Success(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.userRepo.EXPECT().GetByUsername(ctx, "alice smith").Return(nil, nil)
	d.hashSvc.EXPECT().Hash("s3cret-pass").Return("$argon2id$...", nil)
	d.userRepo.EXPECT().Create(ctx, gomock.Any()).Return(nil)

	// Whitespace runs collapse during normalization.
	user, err := d.svc.Register(ctx, "  alice   smith ", "s3cret-pass")

	require.NoError(t, err)
	assert.Equal(t, "alice smith", user.Username)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.Equal(t, "$argon2id$...", user.PasswordHash)
}

func TestAuthService_Register_DuplicateUsername(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.userRepo.EXPECT().GetByUsername(ctx, "alice").Return(&domain.User{ID: uuid.New(), Username: "Alice"}, nil)

	_, err := d.svc.Register(ctx, "alice", "s3cret-pass")
	assertAppError(t, err, "AUTH_002")
}

func TestAuthService_Register_ShortPassword(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	_, err := d.svc.Register(context.Background(), "alice", "short")
	assertAppError(t, err, "REQ_000")
}

func TestAuthService_Register_BlankUsername(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	_, err := d.svc.Register(context.Background(), "   ", "s3cret-pass")
	assertAppError(t, err, "REQ_000")
}

func TestAuthService_Login_Success(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	user := &domain.User{
		ID:           uuid.New(),
		Username:     "alice",
		PasswordHash: "$argon2id$...",
		Role:         domain.RoleUser,
	}
	expiresAt := time.Now().Add(time.Hour)

	d.userRepo.EXPECT().GetByUsername(ctx, "alice").Return(user, nil)
	d.hashSvc.EXPECT().Verify("s3cret-pass", "$argon2id$...").Return(true, nil)
	d.tokenSvc.EXPECT().Generate(user).Return("token-123", expiresAt, nil)

	token, out, exp, err := d.svc.Login(ctx, "alice", "s3cret-pass")

	require.NoError(t, err)
	assert.Equal(t, "token-123", token)
	assert.Equal(t, user.ID, out.ID)
	assert.Equal(t, expiresAt, exp)
}

func TestAuthService_Login_UnknownUserAndWrongPasswordLookAlike(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()

	d.userRepo.EXPECT().GetByUsername(ctx, "ghost").Return(nil, nil)
	_, _, _, errUnknown := d.svc.Login(ctx, "ghost", "whatever-pass")

	user := &domain.User{ID: uuid.New(), Username: "alice", PasswordHash: "$argon2id$..."}
	d.userRepo.EXPECT().GetByUsername(ctx, "alice").Return(user, nil)
	d.hashSvc.EXPECT().Verify("wrong-pass", "$argon2id$...").Return(false, nil)
	_, _, _, errWrong := d.svc.Login(ctx, "alice", "wrong-pass")

	assertAppError(t, errUnknown, "AUTH_001")
	assertAppError(t, errWrong, "AUTH_001")
	assert.Equal(t, errUnknown.Error(), errWrong.Error())
}

func TestAuthService_ChangePassword_Success(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()
	user := &domain.User{ID: userID, Username: "alice", PasswordHash: "$old$"}

	d.userRepo.EXPECT().GetByID(ctx, userID).Return(user, nil)
	d.hashSvc.EXPECT().Verify("old-password", "$old$").Return(true, nil)
	d.hashSvc.EXPECT().Hash("new-password").Return("$new$", nil)
	d.userRepo.EXPECT().UpdatePassword(ctx, userID, "$new$").Return(nil)

	require.NoError(t, d.svc.ChangePassword(ctx, userID, "old-password", "new-password"))
}

func TestAuthService_ChangePassword_WrongCurrent(t *testing.T) {
	d := setupAuthService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	userID := uuid.New()
	user := &domain.User{ID: userID, Username: "alice", PasswordHash: "$old$"}

	d.userRepo.EXPECT().GetByID(ctx, userID).Return(user, nil)
	d.hashSvc.EXPECT().Verify("bad-guess", "$old$").Return(false, nil)

	err := d.svc.ChangePassword(ctx, userID, "bad-guess", "new-password")
	assertAppError(t, err, "AUTH_005")
}
