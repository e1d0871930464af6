// Package handler はrecipeフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"recipe_backend/internal/feature/recipe/domain"
	"recipe_backend/internal/platform/http/response"
	"recipe_backend/internal/platform/validation"
)

const (
	invalidImageMsg = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."
	noFileMsg       = "No file was submitted."
	notFileMsg      = "The submitted data was not a file. Check the encoding type on the form."
	idListMsg       = "Enter a comma-separated list of integers."
)

// writeError はユースケースのエラーをHTTPレスポンスに変換します。
// 想定外のエラーはmsgとともにログに記録し500を返します。
func writeError(c *gin.Context, msg string, err error) {
	var verrs validation.Errors
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &verrs):
		response.Invalid(c, verrs)
	case errors.Is(err, domain.ErrNotFound):
		response.NotFound(c)
	case errors.Is(err, domain.ErrInvalidImage):
		response.Invalid(c, validation.Field("image", invalidImageMsg))
	case errors.As(err, &tooLarge):
		response.Detail(c, http.StatusRequestEntityTooLarge, "Request body too large.")
	default:
		response.Internal(c, msg, err)
	}
}

// pathID はURLの:idを解析します。数値でない場合は存在しないIDと同様に扱います。
func pathID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// queryIDs はカンマ区切りのIDリストを解析します。値が空ならnilを返します。
func queryIDs(c *gin.Context, key string) ([]uint, validation.Errors) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]uint, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseUint(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, validation.Field(key, idListMsg)
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}

// queryFlag は0/1形式のフラグを解析します。0以外の整数はtrueです。
func queryFlag(c *gin.Context, key string) (bool, validation.Errors) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return false, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return false, validation.Field(key, "A valid integer is required.")
	}
	return n != 0, nil
}
