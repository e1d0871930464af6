// Package dto はauthフィーチャーのHTTPトランスポート層のデータ転送オブジェクトを定義します。
package dto

// SignupReq は /users/create/ エンドポイントのリクエストボディを表します。
// 必須フィールド、メール形式、パスワード長のバリデーションを含みます。
type SignupReq struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"max=255"`
}
