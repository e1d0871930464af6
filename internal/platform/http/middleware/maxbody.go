package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// MaxBodySize はリクエストボディをlimitバイトに制限します。
// Content-Lengthが上限を超える場合はハンドラーを実行せず413を返します。
// それ以外は http.MaxBytesReader で包み、超過時の読み込みは *http.MaxBytesError になります。
func MaxBodySize(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit <= 0 || c.Request.Body == nil {
			c.Next()
			return
		}
		if c.Request.ContentLength > limit {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
				"detail": "Request body too large.",
			})
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
