package usecase

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"strings"
	"testing"

	"recipe_backend/internal/feature/recipe/domain"
	"recipe_backend/internal/feature/recipe/domain/entity"
)

// mockRecipeRepository はテスト用のRecipeRepositoryモック実装です。
type mockRecipeRepository struct {
	ListFunc     func(ctx context.Context, userID uint, filter entity.RecipeFilter) ([]entity.Recipe, error)
	FindByIDFunc func(ctx context.Context, userID, id uint) (*entity.Recipe, error)
	CreateFunc   func(ctx context.Context, userID uint, fields entity.RecipeFields) (*entity.Recipe, error)
	UpdateFunc   func(ctx context.Context, userID, id uint, fields entity.RecipeFields) (*entity.Recipe, error)
	DeleteFunc   func(ctx context.Context, userID, id uint) (string, error)
	SetImageFunc func(ctx context.Context, userID, id uint, image string) (string, error)
}

func (m *mockRecipeRepository) List(ctx context.Context, userID uint, filter entity.RecipeFilter) ([]entity.Recipe, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, userID, filter)
	}
	return nil, nil
}

func (m *mockRecipeRepository) FindByID(ctx context.Context, userID, id uint) (*entity.Recipe, error) {
	if m.FindByIDFunc != nil {
		return m.FindByIDFunc(ctx, userID, id)
	}
	return nil, domain.ErrNotFound
}

func (m *mockRecipeRepository) Create(ctx context.Context, userID uint, fields entity.RecipeFields) (*entity.Recipe, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, userID, fields)
	}
	return &entity.Recipe{ID: 1, UserID: userID}, nil
}

func (m *mockRecipeRepository) Update(ctx context.Context, userID, id uint, fields entity.RecipeFields) (*entity.Recipe, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, userID, id, fields)
	}
	return &entity.Recipe{ID: id, UserID: userID}, nil
}

func (m *mockRecipeRepository) Delete(ctx context.Context, userID, id uint) (string, error) {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, userID, id)
	}
	return "", nil
}

func (m *mockRecipeRepository) SetImage(ctx context.Context, userID, id uint, image string) (string, error) {
	if m.SetImageFunc != nil {
		return m.SetImageFunc(ctx, userID, id, image)
	}
	return "", nil
}

// mockImageStorage はメモリ上に保存するImageStorageモック実装です。
type mockImageStorage struct {
	saved   map[string][]byte
	deleted []string
	saveErr error
}

func newMockImageStorage() *mockImageStorage {
	return &mockImageStorage{saved: map[string][]byte{}}
}

func (m *mockImageStorage) Save(_ context.Context, key string, r io.Reader, _ string) (string, error) {
	if m.saveErr != nil {
		return "", m.saveErr
	}
	b, _ := io.ReadAll(r)
	m.saved[key] = b
	return "/media/" + key, nil
}

func (m *mockImageStorage) Delete(_ context.Context, key string) error {
	m.deleted = append(m.deleted, key)
	delete(m.saved, key)
	return nil
}

func (m *mockImageStorage) KeyFromURL(url string) (string, bool) {
	if !strings.HasPrefix(url, "/media/") {
		return "", false
	}
	return strings.TrimPrefix(url, "/media/"), true
}

// pngBytes は小さなPNG画像をエンコードして返します。
func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode png: %v", err)
	}
	return buf.Bytes()
}

func ptr[T any](v T) *T { return &v }
