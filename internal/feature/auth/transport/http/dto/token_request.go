package dto

// TokenReq は /users/token/ エンドポイントのリクエストボディを表します。
type TokenReq struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse は発行したトークンを返します。
type TokenResponse struct {
	Token string `json:"token"`
}
