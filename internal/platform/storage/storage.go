// Package storage は画像などのアップロードファイルの保存先を提供します。
package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
)

// ErrInvalidKey はパストラバーサルを含むなど不正なキーを表します。
var ErrInvalidKey = errors.New("invalid storage key")

// Storage はオブジェクトの保存と削除を行います。
type Storage interface {
	// Save はrの内容をkeyに保存し、公開URLを返します。
	Save(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	// Delete はkeyを削除します。存在しない場合はエラーを返しません。
	Delete(ctx context.Context, key string) error
	// KeyFromURL はSaveが返したURLからキーを取り出します。
	KeyFromURL(url string) (string, bool)
}

// cleanKey は相対パスとして安全なキーであることを検証します。
func cleanKey(key string) (string, error) {
	if key == "" || strings.Contains(key, "\\") {
		return "", ErrInvalidKey
	}
	cleaned := path.Clean("/" + key)[1:]
	if cleaned == "" || cleaned != strings.TrimPrefix(key, "/") {
		return "", ErrInvalidKey
	}
	return cleaned, nil
}

// joinURL はベースURLとキーをスラッシュ1つで結合します。
func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + key
}

// keyFromURL はbaseで始まるURLからキー部分を取り出します。
func keyFromURL(base, url string) (string, bool) {
	prefix := strings.TrimRight(base, "/") + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	key, err := cleanKey(strings.TrimPrefix(url, prefix))
	if err != nil {
		return "", false
	}
	return key, true
}
