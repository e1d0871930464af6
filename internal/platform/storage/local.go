package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// LocalStorage はローカルディレクトリにファイルを保存します。
// 保存されたファイルは baseURL 配下で静的に配信される前提です。
type LocalStorage struct {
	root    string
	baseURL string
}

var _ Storage = (*LocalStorage)(nil)

// NewLocalStorage はrootディレクトリを作成し、LocalStorageを返します。
func NewLocalStorage(root, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create media root: %w", err)
	}
	return &LocalStorage{root: root, baseURL: baseURL}, nil
}

// Root は保存先ディレクトリを返します。
func (s *LocalStorage) Root() string { return s.root }

// Save は一時ファイルに書き込んでからリネームし、書き込み途中のファイルが見えないようにします。
func (s *LocalStorage) Save(ctx context.Context, key string, r io.Reader, _ string) (string, error) {
	key, err := cleanKey(key)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dst := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return "", fmt.Errorf("failed to chmod file: %w", err)
	}
	if err := os.Rename(tmpName, dst); err != nil {
		return "", fmt.Errorf("failed to move file: %w", err)
	}

	return joinURL(s.baseURL, key), nil
}

// Delete はファイルを削除します。
func (s *LocalStorage) Delete(_ context.Context, key string) error {
	key, err := cleanKey(key)
	if err != nil {
		return err
	}
	err = os.Remove(filepath.Join(s.root, filepath.FromSlash(key)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// KeyFromURL はbaseURL配下のURLからキーを取り出します。
func (s *LocalStorage) KeyFromURL(url string) (string, bool) {
	return keyFromURL(s.baseURL, url)
}
