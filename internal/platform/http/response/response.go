// Package response はハンドラー共通のエラーレスポンス生成を提供します。
package response

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"recipe_backend/internal/platform/validation"
)

// DetailResponse は {"detail": "..."} 形式のエラーボディです。
type DetailResponse struct {
	Detail string `json:"detail"`
}

// Detail は指定したステータスと {"detail": msg} を返して処理を中断します。
func Detail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, DetailResponse{Detail: msg})
}

// NotFound は404を返します。存在しない場合と他ユーザーの所有物の場合を区別しません。
func NotFound(c *gin.Context) {
	Detail(c, http.StatusNotFound, "Not found.")
}

// Invalid はフィールド単位のエラーを400で返します。
func Invalid(c *gin.Context, errs validation.Errors) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errs)
}

// BindError はShouldBind系のエラーを400で返します。
func BindError(c *gin.Context, err error) {
	slog.Debug("request binding failed", "error", err, "path", c.FullPath())
	Invalid(c, validation.FromBindError(err))
}

// Internal は想定外のエラーをログに記録し、詳細を隠して500を返します。
func Internal(c *gin.Context, msg string, err error) {
	slog.Error(msg, "error", err, "method", c.Request.Method, "path", c.Request.URL.Path)
	_ = c.Error(err)
	Detail(c, http.StatusInternalServerError, "internal server error")
}
