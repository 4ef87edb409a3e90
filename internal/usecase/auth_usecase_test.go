package usecase_test

import (
	"context"
	"testing"
	"time"

	"app/internal/domain/model"
	"app/internal/repository"
	"app/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type stubIssuer struct {
	token string
	ttl   time.Duration
	err   error
}

func (s stubIssuer) Issue(userID int64, role model.Role, now time.Time) (string, time.Time, error) {
	if s.err != nil {
		return "", time.Time{}, s.err
	}
	return s.token, now.Add(s.ttl), nil
}

type stubVerifier struct{ ok bool }

func (s stubVerifier) Verify(plain string, hashed string) bool { return s.ok }

type stubHasher struct{}

func (stubHasher) Hash(plain string) (string, error) { return "hashed:" + plain, nil }

var loginNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

func newAuthUC(userRepo *UserRepoMock, verifierOK bool) *usecase.AuthUsecase {
	return usecase.NewAuthUsecase(
		userRepo,
		stubVerifier{ok: verifierOK},
		stubHasher{},
		stubIssuer{token: "signed-token", ttl: 12 * time.Hour},
		fixedClock{now: loginNow},
	)
}

func activeStaff() *model.User {
	return &model.User{
		ID:           1,
		Email:        "staff@example.com",
		PasswordHash: "hashed:secret",
		Role:         model.RoleStaff,
		IsActive:     true,
	}
}

// =====================
// Login
// =====================

func TestAuthUsecase_Login_MissingInput(t *testing.T) {
	uc := newAuthUC(new(UserRepoMock), true)

	_, err := uc.Login(context.Background(), usecase.LoginInput{Email: "", Password: "x"})
	assertHTTPStatus(t, err, 400)

	_, err = uc.Login(context.Background(), usecase.LoginInput{Email: "a@example.com", Password: ""})
	assertHTTPStatus(t, err, 400)
}

func TestAuthUsecase_Login_UnknownEmail(t *testing.T) {
	ctx := context.Background()

	uRepo := new(UserRepoMock)
	uRepo.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, repository.ErrUserNotFound)

	uc := newAuthUC(uRepo, true)

	_, err := uc.Login(ctx, usecase.LoginInput{Email: "nobody@example.com", Password: "secret"})
	assertErrContains(t, err, usecase.ErrInvalidCredentials.Error())
	assertHTTPStatus(t, err, 401)
}

func TestAuthUsecase_Login_InactiveUser(t *testing.T) {
	ctx := context.Background()

	u := activeStaff()
	u.IsActive = false

	uRepo := new(UserRepoMock)
	uRepo.On("FindByEmail", mock.Anything, "staff@example.com").Return(u, nil)

	uc := newAuthUC(uRepo, true)

	_, err := uc.Login(ctx, usecase.LoginInput{Email: "staff@example.com", Password: "secret"})
	assertErrContains(t, err, usecase.ErrUserInactive.Error())
	assertHTTPStatus(t, err, 403)
}

func TestAuthUsecase_Login_WrongPassword(t *testing.T) {
	ctx := context.Background()

	uRepo := new(UserRepoMock)
	uRepo.On("FindByEmail", mock.Anything, "staff@example.com").Return(activeStaff(), nil)

	uc := newAuthUC(uRepo, false)

	_, err := uc.Login(ctx, usecase.LoginInput{Email: "staff@example.com", Password: "wrong"})
	assertErrContains(t, err, usecase.ErrInvalidCredentials.Error())
	assertHTTPStatus(t, err, 401)
}

func TestAuthUsecase_Login_Success(t *testing.T) {
	ctx := context.Background()

	uRepo := new(UserRepoMock)
	uRepo.On("FindByEmail", mock.Anything, "staff@example.com").Return(activeStaff(), nil)
	// 最終ログインの記録
	uRepo.On("Update", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		return u.LastLoginAt != nil && u.LastLoginAt.Equal(loginNow)
	})).Return(nil)

	uc := newAuthUC(uRepo, true)

	out, err := uc.Login(ctx, usecase.LoginInput{Email: "staff@example.com", Password: "secret"})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), out.UserID)
	assert.Equal(t, "signed-token", out.AccessToken)
	assert.Equal(t, int(12*time.Hour/time.Second), out.ExpiresIn)
	assert.Equal(t, model.RoleStaff, out.Role)

	uRepo.AssertExpectations(t)
}

// 最終ログイン更新の失敗はログインを妨げない
func TestAuthUsecase_Login_LastLoginUpdateBestEffort(t *testing.T) {
	ctx := context.Background()

	uRepo := new(UserRepoMock)
	uRepo.On("FindByEmail", mock.Anything, "staff@example.com").Return(activeStaff(), nil)
	uRepo.On("Update", mock.Anything, mock.Anything).Return(assert.AnError)

	uc := newAuthUC(uRepo, true)

	out, err := uc.Login(ctx, usecase.LoginInput{Email: "staff@example.com", Password: "secret"})
	assert.NoError(t, err)
	assert.Equal(t, "signed-token", out.AccessToken)
}

// =====================
// EnsureAdmin
// =====================

func TestAuthUsecase_EnsureAdmin_InvalidEmail(t *testing.T) {
	uc := newAuthUC(new(UserRepoMock), true)

	err := uc.EnsureAdmin(context.Background(), "not-an-email", "password123")
	assertErrContains(t, err, "invalid admin email")
}

func TestAuthUsecase_EnsureAdmin_ShortPassword(t *testing.T) {
	uc := newAuthUC(new(UserRepoMock), true)

	err := uc.EnsureAdmin(context.Background(), "admin@example.com", "short")
	assertErrContains(t, err, "too short")
}

// 既にあれば何もしない
func TestAuthUsecase_EnsureAdmin_AlreadyExists(t *testing.T) {
	ctx := context.Background()

	uRepo := new(UserRepoMock)
	uRepo.On("FindByEmail", mock.Anything, "admin@example.com").Return(activeStaff(), nil)

	uc := newAuthUC(uRepo, true)

	err := uc.EnsureAdmin(ctx, "admin@example.com", "password123")
	assert.NoError(t, err)

	uRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAuthUsecase_EnsureAdmin_CreatesAdmin(t *testing.T) {
	ctx := context.Background()

	uRepo := new(UserRepoMock)
	uRepo.On("FindByEmail", mock.Anything, "admin@example.com").Return(nil, repository.ErrUserNotFound)
	uRepo.On("Create", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
		return u.Email == "admin@example.com" &&
			u.Role == model.RoleAdmin &&
			u.IsActive &&
			u.PasswordHash == "hashed:password123"
	})).Return(nil)

	uc := newAuthUC(uRepo, true)

	err := uc.EnsureAdmin(ctx, "admin@example.com", "password123")
	assert.NoError(t, err)

	uRepo.AssertExpectations(t)
}
