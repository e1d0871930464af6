package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"

	"github.com/google/uuid"

	"recipe_backend/internal/feature/recipe/domain/entity"
	"recipe_backend/internal/platform/validation"
)

// imageKeyPrefix は保存する画像キーの接頭辞です。
const imageKeyPrefix = "uploads/recipe"

const requiredMsg = "This field is required."

// recipeUsecase はレシピのビジネスロジックを実装します。
type recipeUsecase struct {
	recipes RecipeRepository
	images  ImageStorage
	newKey  func(ext string) string
}

// NewRecipeUsecase はrecipeUsecaseの新しいインスタンスを生成します。
func NewRecipeUsecase(recipes RecipeRepository, images ImageStorage) *recipeUsecase {
	return &recipeUsecase{
		recipes: recipes,
		images:  images,
		newKey: func(ext string) string {
			return path.Join(imageKeyPrefix, uuid.NewString()+"."+ext)
		},
	}
}

// List はユーザーのレシピを返します。
func (u *recipeUsecase) List(ctx context.Context, userID uint, filter entity.RecipeFilter) ([]entity.Recipe, error) {
	return u.recipes.List(ctx, userID, filter)
}

// Get はユーザーのレシピを1件返します。
func (u *recipeUsecase) Get(ctx context.Context, userID, id uint) (*entity.Recipe, error) {
	return u.recipes.FindByID(ctx, userID, id)
}

// Create はレシピを作成します。title, time_minutes, priceは必須です。
func (u *recipeUsecase) Create(ctx context.Context, userID uint, fields entity.RecipeFields) (*entity.Recipe, error) {
	if err := requireFields(fields); err != nil {
		return nil, err
	}
	return u.recipes.Create(ctx, userID, withDefaults(fields))
}

// Update は指定されたフィールドのみ更新します（部分更新）。
func (u *recipeUsecase) Update(ctx context.Context, userID, id uint, fields entity.RecipeFields) (*entity.Recipe, error) {
	return u.recipes.Update(ctx, userID, id, fields)
}

// Replace はレシピ全体を置き換えます。省略されたlinkとdescriptionは空になります。
func (u *recipeUsecase) Replace(ctx context.Context, userID, id uint, fields entity.RecipeFields) (*entity.Recipe, error) {
	if err := requireFields(fields); err != nil {
		return nil, err
	}
	return u.recipes.Update(ctx, userID, id, withDefaults(fields))
}

// Delete はレシピを削除し、保存済みの画像も削除します。
func (u *recipeUsecase) Delete(ctx context.Context, userID, id uint) error {
	image, err := u.recipes.Delete(ctx, userID, id)
	if err != nil {
		return err
	}
	u.removeImage(ctx, image)
	return nil
}

// UploadImage は画像を検証・保存し、レシピの画像を置き換えます。
// 以前の画像はデータベースの更新後に削除します。
func (u *recipeUsecase) UploadImage(ctx context.Context, userID, id uint, r io.Reader) (*entity.Recipe, error) {
	recipe, err := u.recipes.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	data, err := readImage(r)
	if err != nil {
		return nil, err
	}
	format, err := detectImage(data)
	if err != nil {
		return nil, err
	}

	key := u.newKey(format.ext)
	url, err := u.images.Save(ctx, key, bytes.NewReader(data), format.contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to store image: %w", err)
	}

	previous, err := u.recipes.SetImage(ctx, userID, id, url)
	if err != nil {
		if delErr := u.images.Delete(ctx, key); delErr != nil {
			slog.Warn("failed to remove orphaned image", "key", key, "error", delErr)
		}
		return nil, err
	}
	u.removeImage(ctx, previous)

	recipe.Image = url
	return recipe, nil
}

// removeImage は画像URLに対応するファイルを削除します。失敗はログに記録するだけです。
func (u *recipeUsecase) removeImage(ctx context.Context, url string) {
	if url == "" {
		return
	}
	key, ok := u.images.KeyFromURL(url)
	if !ok {
		slog.Warn("image url not managed by storage", "url", url)
		return
	}
	if err := u.images.Delete(ctx, key); err != nil {
		slog.Warn("failed to remove image", "key", key, "error", err)
	}
}

// requireFields は作成と全体更新で必須のフィールドを検証します。
func requireFields(f entity.RecipeFields) error {
	errs := validation.Errors{}
	if f.Title == nil {
		errs.Add("title", requiredMsg)
	}
	if f.TimeMinutes == nil {
		errs.Add("time_minutes", requiredMsg)
	}
	if f.Price == nil {
		errs.Add("price", requiredMsg)
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// withDefaults は省略可能なスカラー値を空文字で補います。
func withDefaults(f entity.RecipeFields) entity.RecipeFields {
	if f.Link == nil {
		f.Link = new(string)
	}
	if f.Description == nil {
		f.Description = new(string)
	}
	return f
}
