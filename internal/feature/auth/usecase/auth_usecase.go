// Package usecase はauthフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"recipe_backend/internal/feature/auth/domain"
	"recipe_backend/internal/feature/auth/domain/entity"
)

const (
	// MinPasswordLength はパスワードの最低文字数を定義します。
	MinPasswordLength = 8

	// dummyPasswordHash はユーザーが存在しない場合の比較に使うbcryptハッシュです。
	dummyPasswordHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"
)

// UserRepository はユーザーエンティティの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type UserRepository interface {
	// Create は新しいユーザーをストレージに永続化します。
	// 同じメールアドレスのユーザーが既に存在する場合、domain.ErrEmailTakenを返します。
	Create(ctx context.Context, user *entity.User) error

	// FindByEmail は指定されたメールアドレスに一致するユーザーを取得します。
	// ユーザーが存在しない場合、domain.ErrUserNotFoundを返します。
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByID は指定されたIDに一致するユーザーを取得します。
	// ユーザーが存在しない場合、domain.ErrUserNotFoundを返します。
	FindByID(ctx context.Context, id uint) (*entity.User, error)

	// Update は指定されたフィールドのみを更新し、更新後のユーザーを返します。
	Update(ctx context.Context, id uint, update entity.UserUpdate) (*entity.User, error)
}

// TokenIssuer はトークンの署名と検証を行います。
// Goの慣例に従い、インターフェースはプロバイダー（platform/jwt）ではなくコンシューマー（usecase）が定義します。
type TokenIssuer interface {
	// GenerateToken は指定されたユーザーとトークンIDの署名済みトークンと有効期限を返します。
	GenerateToken(userID uint, tokenID string) (string, time.Time, error)
	// ParseToken は署名と有効期限を検証し、ユーザーIDとトークンIDを返します。
	ParseToken(token string) (userID uint, tokenID string, err error)
}

// Client はログイン元の情報です。セッションに記録されます。
type Client struct {
	UserAgent string
	IPAddress string
}

// ProfileUpdate は/users/me/で変更するフィールドです。nilのフィールドは変更しません。
type ProfileUpdate struct {
	Email    *string
	Name     *string
	Password *string
}

// authUsecase は認証ビジネスロジックを実装します。
type authUsecase struct {
	users    UserRepository
	sessions SessionRepository
	tokens   TokenIssuer
}

// NewAuthUsecase はauthUsecaseの新しいインスタンスを生成します。
func NewAuthUsecase(users UserRepository, sessions SessionRepository, tokens TokenIssuer) *authUsecase {
	return &authUsecase{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
	}
}

// validatePassword はパスワードが最低文字数を満たしているかチェックします。
func validatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return domain.ErrPasswordTooShort
	}
	return nil
}

// NormalizeEmail はメールアドレスのドメイン部分を小文字にします。
// ローカル部分は大文字小文字を区別するためそのまま残します。
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at] + "@" + strings.ToLower(email[at+1:])
}

// Signup はハッシュ化されたパスワードで新規ユーザーを登録します。
func (u *authUsecase) Signup(ctx context.Context, email, password, name string) (*entity.User, error) {
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user := &entity.User{
		Email:    NormalizeEmail(email),
		Name:     name,
		Password: string(hashed),
	}
	if err := u.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login はユーザーを認証し、成功時にトークンを返します。
// 既存のセッションはすべて失効させるため、以前に発行したトークンは使えなくなります。
// タイミング攻撃を防止するため、ユーザーが存在しない場合でもbcrypt比較を実行します。
func (u *authUsecase) Login(ctx context.Context, email, password string, client Client) (string, error) {
	user, err := u.users.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
		return "", fmt.Errorf("failed to find user: %w", err)
	}

	passwordHash := dummyPasswordHash
	if err == nil {
		passwordHash = user.Password
	}

	// 第1引数はハッシュ化パスワード、第2引数は平文パスワード
	compareErr := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password))
	if err != nil || compareErr != nil {
		return "", domain.ErrInvalidCredentials
	}

	if err := u.sessions.RevokeAllByUserID(ctx, user.ID); err != nil {
		return "", fmt.Errorf("failed to revoke sessions: %w", err)
	}

	tokenID := uuid.NewString()
	token, expiresAt, err := u.tokens.GenerateToken(user.ID, tokenID)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	session := &entity.Session{
		ID:        tokenID,
		UserID:    user.ID,
		UserAgent: client.UserAgent,
		IPAddress: client.IPAddress,
		CreatedAt: time.Now(),
		ExpiresAt: expiresAt,
	}
	if err := u.sessions.Create(ctx, session); err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}

	return token, nil
}

// Authenticate はトークンを検証し、認証されたユーザーIDを返します。
// 署名が正しくても、セッションが失効しているかユーザーが削除されている場合はdomain.ErrInvalidTokenを返します。
func (u *authUsecase) Authenticate(ctx context.Context, token string) (uint, error) {
	userID, tokenID, err := u.tokens.ParseToken(token)
	if err != nil {
		return 0, domain.ErrInvalidToken
	}

	session, err := u.sessions.FindByID(ctx, tokenID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return 0, domain.ErrInvalidToken
		}
		return 0, fmt.Errorf("failed to load session: %w", err)
	}
	if !session.Authorizes(userID) {
		return 0, domain.ErrInvalidToken
	}

	if _, err := u.users.FindByID(ctx, userID); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return 0, domain.ErrInvalidToken
		}
		return 0, fmt.Errorf("failed to load user: %w", err)
	}
	return userID, nil
}

// Me は認証されたユーザー自身のプロフィールを返します。
func (u *authUsecase) Me(ctx context.Context, userID uint) (*entity.User, error) {
	return u.users.FindByID(ctx, userID)
}

// UpdateMe はプロフィールを更新します。パスワードは再ハッシュしてから保存します。
func (u *authUsecase) UpdateMe(ctx context.Context, userID uint, in ProfileUpdate) (*entity.User, error) {
	update := entity.UserUpdate{Name: in.Name}
	if in.Email != nil {
		email := NormalizeEmail(*in.Email)
		update.Email = &email
	}
	if in.Password != nil {
		if err := validatePassword(*in.Password); err != nil {
			return nil, err
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		h := string(hashed)
		update.Password = &h
	}

	if update.IsEmpty() {
		return u.users.FindByID(ctx, userID)
	}
	return u.users.Update(ctx, userID, update)
}
