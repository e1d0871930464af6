package usecase

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // GIFデコーダーを登録
	_ "image/jpeg" // JPEGデコーダーを登録
	_ "image/png"  // PNGデコーダーを登録
	"io"

	_ "golang.org/x/image/webp" // WebPデコーダーを登録

	"recipe_backend/internal/feature/recipe/domain"
)

// maxImagePixels はデコードを許可する最大画素数です。
const maxImagePixels = 50_000_000

// imageFormat は検出した画像形式の保存用情報です。
type imageFormat struct {
	ext         string
	contentType string
}

var imageFormats = map[string]imageFormat{
	"jpeg": {ext: "jpg", contentType: "image/jpeg"},
	"png":  {ext: "png", contentType: "image/png"},
	"gif":  {ext: "gif", contentType: "image/gif"},
	"webp": {ext: "webp", contentType: "image/webp"},
}

// detectImage はデータ全体をデコードして画像であることを検証します。
// ヘッダーの寸法が大きすぎる場合はデコード前に拒否します。
func detectImage(data []byte) (imageFormat, error) {
	cfg, name, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return imageFormat{}, fmt.Errorf("%w: %v", domain.ErrInvalidImage, err)
	}
	f, ok := imageFormats[name]
	if !ok {
		return imageFormat{}, fmt.Errorf("%w: unsupported format %q", domain.ErrInvalidImage, name)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width*cfg.Height > maxImagePixels {
		return imageFormat{}, fmt.Errorf("%w: bad dimensions %dx%d", domain.ErrInvalidImage, cfg.Width, cfg.Height)
	}
	if _, _, err := image.Decode(bytes.NewReader(data)); err != nil {
		return imageFormat{}, fmt.Errorf("%w: %v", domain.ErrInvalidImage, err)
	}
	return f, nil
}

// readImage はrを最後まで読み込みます。上限はHTTP層で制限します。
func readImage(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file", domain.ErrInvalidImage)
	}
	return data, nil
}
