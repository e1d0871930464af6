// Package handler はauthフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"recipe_backend/internal/feature/auth/domain"
	"recipe_backend/internal/feature/auth/domain/entity"
	"recipe_backend/internal/feature/auth/transport/http/dto"
	"recipe_backend/internal/feature/auth/usecase"
	"recipe_backend/internal/platform/http/response"
	jwtmw "recipe_backend/internal/platform/jwt"
	"recipe_backend/internal/platform/validation"
)

// AuthUsecase は認証操作のユースケースを定義します。
// Goの慣例に従い、インターフェースはプロバイダー（usecase）ではなくコンシューマー（handler）が定義します。
type AuthUsecase interface {
	// Signup は指定されたメールアドレスとパスワードで新規ユーザーを登録します。
	Signup(ctx context.Context, email, password, name string) (*entity.User, error)
	// Login はユーザーを認証し、成功時にトークンを返します。
	Login(ctx context.Context, email, password string, client usecase.Client) (string, error)
	// Me は認証済みユーザーのプロフィールを返します。
	Me(ctx context.Context, userID uint) (*entity.User, error)
	// UpdateMe は認証済みユーザーのプロフィールを更新します。
	UpdateMe(ctx context.Context, userID uint, in usecase.ProfileUpdate) (*entity.User, error)
}

// AuthHandler は認証操作のHTTPリクエストを処理します。
// AuthUsecaseインターフェースに依存し、JSONリクエスト/レスポンスを処理します。
type AuthHandler struct {
	auth AuthUsecase
}

// NewAuthHandler はAuthHandlerの新しいインスタンスを生成します。
// 依存性注入用のコンストラクタで、外部からAuthUsecaseを注入します。
func NewAuthHandler(auth AuthUsecase) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Signup はユーザー登録APIエンドポイントを処理します。
// - バリデーションエラー時は400を返却
// - メール重複時はemailフィールドのエラーとして400を返却
// - 成功時は201とプロフィールを返却
func (h *AuthHandler) Signup(c *gin.Context) {
	var req dto.SignupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("signup validation failed", "error", err, "remote_addr", c.ClientIP())
		response.BindError(c, err)
		return
	}
	user, err := h.auth.Signup(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		if writeProfileError(c, err) {
			return
		}
		response.Internal(c, "signup failed", err)
		return
	}
	slog.Info("user signup successful", "user_id", user.ID, "remote_addr", c.ClientIP())
	c.JSON(http.StatusCreated, dto.NewUserResponse(user))
}

// Token はユーザーログインAPIエンドポイントを処理します。
// - 必須フィールド欠落時は400を返却
// - 認証失敗時は401を返却
// - 認証成功時はトークン付きで200を返却
func (h *AuthHandler) Token(c *gin.Context) {
	var req dto.TokenReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("login validation failed", "error", err, "remote_addr", c.ClientIP())
		response.BindError(c, err)
		return
	}
	client := usecase.Client{UserAgent: c.Request.UserAgent(), IPAddress: c.ClientIP()}
	token, err := h.auth.Login(c.Request.Context(), req.Email, req.Password, client)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			// ユーザー列挙攻撃を防止するため、原因を区別しない
			slog.Warn("login failed", "remote_addr", c.ClientIP())
			response.Detail(c, http.StatusUnauthorized, "Unable to authenticate with provided credentials.")
			return
		}
		response.Internal(c, "login failed", err)
		return
	}
	c.JSON(http.StatusOK, dto.TokenResponse{Token: token})
}

// Me は認証済みユーザーのプロフィールを返します。
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := jwtmw.UserID(c)
	if !ok {
		response.Detail(c, http.StatusUnauthorized, "Authentication credentials were not provided.")
		return
	}
	user, err := h.auth.Me(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			response.NotFound(c)
			return
		}
		response.Internal(c, "failed to load profile", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}

// UpdateMe は PATCH /users/me/ を処理します。指定したフィールドのみ更新します。
func (h *AuthHandler) UpdateMe(c *gin.Context) {
	var req dto.UpdateMeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	h.updateProfile(c, usecase.ProfileUpdate{Email: req.Email, Name: req.Name, Password: req.Password})
}

// ReplaceMe は PUT /users/me/ を処理します。emailとnameは必須です。
func (h *AuthHandler) ReplaceMe(c *gin.Context) {
	var req dto.ReplaceMeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}
	h.updateProfile(c, usecase.ProfileUpdate{Email: &req.Email, Name: &req.Name, Password: req.Password})
}

func (h *AuthHandler) updateProfile(c *gin.Context, in usecase.ProfileUpdate) {
	userID, ok := jwtmw.UserID(c)
	if !ok {
		response.Detail(c, http.StatusUnauthorized, "Authentication credentials were not provided.")
		return
	}
	user, err := h.auth.UpdateMe(c.Request.Context(), userID, in)
	if err != nil {
		if writeProfileError(c, err) {
			return
		}
		if errors.Is(err, domain.ErrUserNotFound) {
			response.NotFound(c)
			return
		}
		response.Internal(c, "failed to update profile", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}

// writeProfileError はフィールドに帰属するドメインエラーを400として書き込み、書き込んだ場合trueを返します。
func writeProfileError(c *gin.Context, err error) bool {
	switch {
	case errors.Is(err, domain.ErrEmailTaken):
		response.Invalid(c, validation.Field("email", "user with this email already exists."))
	case errors.Is(err, domain.ErrPasswordTooShort):
		response.Invalid(c, validation.Field("password",
			fmt.Sprintf("Ensure this field has at least %d characters.", usecase.MinPasswordLength)))
	default:
		return false
	}
	return true
}
