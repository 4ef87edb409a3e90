package usecase

import (
	"context"
	"errors"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"app/internal/domain/model"
	"app/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

// メールまたはパスワードが違う
var ErrInvalidCredentials = errors.New("invalid credentials")

// 停止済みユーザー
var ErrUserInactive = errors.New("user is inactive")

// JWTを発行する約束
type AccessTokenIssuer interface {
	Issue(userID int64, role model.Role, now time.Time) (token string, expiresAt time.Time, err error)
}

// 入力パスワードと保存したハッシュを比べる約束
type PasswordVerifier interface {
	Verify(plain string, hashed string) bool
}

// 平文パスワードからハッシュへ。
type PasswordHasher interface {
	Hash(plain string) (string, error)
}

// bcryptハッシュ化
type BcryptPasswordHasher struct {
	cost int
}

func NewBcryptPasswordHasher(cost int) *BcryptPasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptPasswordHasher{cost: cost}
}

// bcryptでハッシュ化
func (h *BcryptPasswordHasher) Hash(plain string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

type BcryptPasswordVerifier struct{}

func NewBcryptPasswordVerifier() *BcryptPasswordVerifier {
	return &BcryptPasswordVerifier{}
}

// bcryptハッシュと平文を比較
func (v *BcryptPasswordVerifier) Verify(plain string, hashed string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
	return err == nil
}

// ダッシュボードのスタッフログイン。
type AuthUsecase struct {
	userRepo repository.UserRepository
	verifier PasswordVerifier
	hasher   PasswordHasher
	issuer   AccessTokenIssuer
	clock    Clock
}

func NewAuthUsecase(
	userRepo repository.UserRepository,
	verifier PasswordVerifier,
	hasher PasswordHasher,
	issuer AccessTokenIssuer,
	clock Clock,
) *AuthUsecase {
	return &AuthUsecase{
		userRepo: userRepo,
		verifier: verifier,
		hasher:   hasher,
		issuer:   issuer,
		clock:    clock,
	}
}

type LoginInput struct {
	Email    string
	Password string
}

type LoginOutput struct {
	UserID      int64      `json:"user_id"`
	Email       string     `json:"email"`
	Role        model.Role `json:"role"`
	AccessToken string     `json:"access_token"`
	ExpiresIn   int        `json:"expires_in"`
}

// ログイン処理を実行する
func (u *AuthUsecase) Login(ctx context.Context, in LoginInput) (LoginOutput, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" || in.Password == "" {
		return LoginOutput{}, NewHTTPError(http.StatusBadRequest, "email and password required")
	}

	//emailでユーザー取得
	user, err := u.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return LoginOutput{}, NewHTTPError(http.StatusUnauthorized, ErrInvalidCredentials.Error())
		}
		return LoginOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//停止ユーザーはログイン不可
	if !user.IsActive {
		return LoginOutput{}, NewHTTPError(http.StatusForbidden, ErrUserInactive.Error())
	}

	//パスワード照合
	if ok := u.verifier.Verify(in.Password, user.PasswordHash); !ok {
		return LoginOutput{}, NewHTTPError(http.StatusUnauthorized, ErrInvalidCredentials.Error())
	}

	//AccessToken発行
	now := u.clock.Now()
	accessToken, expiresAt, err := u.issuer.Issue(user.ID, user.Role, now)
	if err != nil {
		return LoginOutput{}, NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	//最終ログインの記録はベストエフォート
	user.LastLoginAt = &now
	_ = u.userRepo.Update(ctx, user)

	return LoginOutput{
		UserID:      user.ID,
		Email:       user.Email,
		Role:        user.Role,
		AccessToken: accessToken,
		ExpiresIn:   int(expiresAt.Sub(now).Seconds()),
	}, nil
}

// 起動時に管理者アカウントを保証する。既にあれば何もしない。
func (u *AuthUsecase) EnsureAdmin(ctx context.Context, email string, password string) error {
	email = strings.TrimSpace(email)
	if _, err := mail.ParseAddress(email); err != nil {
		return errors.New("invalid admin email")
	}
	if len(password) < 8 {
		return errors.New("admin password too short")
	}

	_, err := u.userRepo.FindByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return err
	}

	hash, err := u.hasher.Hash(password)
	if err != nil {
		return err
	}

	return u.userRepo.Create(ctx, &model.User{
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		IsActive:     true,
	})
}
