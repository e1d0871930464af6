package dto

import "recipe_backend/internal/feature/auth/domain/entity"

// UserResponse はユーザーの公開プロフィールです。パスワードは含みません。
type UserResponse struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// NewUserResponse はエンティティからレスポンスを生成します。
func NewUserResponse(u *entity.User) UserResponse {
	return UserResponse{Email: u.Email, Name: u.Name}
}
