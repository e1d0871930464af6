// Package usecase はrecipeフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"io"

	"recipe_backend/internal/feature/recipe/domain/entity"
)

// RecipeRepository はレシピの永続化層を抽象化します。
// すべての操作はuserIDで絞り込まれ、他ユーザーのレシピはdomain.ErrNotFoundになります。
type RecipeRepository interface {
	// List は条件に一致するレシピをIDの降順で返します。
	List(ctx context.Context, userID uint, filter entity.RecipeFilter) ([]entity.Recipe, error)
	// FindByID はタグと材料を含むレシピを返します。
	FindByID(ctx context.Context, userID, id uint) (*entity.Recipe, error)
	// Create はレシピを作成し、名前で指定されたタグと材料を取得または作成して関連付けます。
	Create(ctx context.Context, userID uint, fields entity.RecipeFields) (*entity.Recipe, error)
	// Update は指定されたフィールドを更新します。関連の置き換えも同じトランザクションで行います。
	Update(ctx context.Context, userID, id uint, fields entity.RecipeFields) (*entity.Recipe, error)
	// Delete はレシピと関連行を削除し、削除前の画像URLを返します。
	Delete(ctx context.Context, userID, id uint) (image string, err error)
	// SetImage は画像URLを設定し、以前の画像URLを返します。
	SetImage(ctx context.Context, userID, id uint, image string) (previous string, err error)
}

// LabelRepository はタグまたは材料の永続化層を抽象化します。
// 1つの実装が1種類（entity.LabelKind）を扱います。
type LabelRepository interface {
	// List は名前の降順で返します。assignedOnlyの場合、ユーザーのレシピに関連付いたものだけを返します。
	List(ctx context.Context, userID uint, assignedOnly bool) ([]entity.Label, error)
	FindByID(ctx context.Context, userID, id uint) (*entity.Label, error)
	// Create は同名が既にある場合domain.ErrLabelExistsを返します。
	Create(ctx context.Context, userID uint, name string) (*entity.Label, error)
	Update(ctx context.Context, userID, id uint, name string) (*entity.Label, error)
	// Delete はラベルとレシピとの関連行を削除します。レシピ自体は削除しません。
	Delete(ctx context.Context, userID, id uint) error
}

// ImageStorage はアップロード画像の保存先です。
type ImageStorage interface {
	Save(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	KeyFromURL(url string) (string, bool)
}
