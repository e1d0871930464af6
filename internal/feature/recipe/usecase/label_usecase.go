package usecase

import (
	"context"

	"recipe_backend/internal/feature/recipe/domain/entity"
)

// labelUsecase はタグまたは材料のビジネスロジックを実装します。
type labelUsecase struct {
	labels LabelRepository
}

// NewLabelUsecase はlabelUsecaseの新しいインスタンスを生成します。
func NewLabelUsecase(labels LabelRepository) *labelUsecase {
	return &labelUsecase{labels: labels}
}

// List はユーザーのラベルを返します。
func (u *labelUsecase) List(ctx context.Context, userID uint, assignedOnly bool) ([]entity.Label, error) {
	return u.labels.List(ctx, userID, assignedOnly)
}

// Get はユーザーのラベルを1件返します。
func (u *labelUsecase) Get(ctx context.Context, userID, id uint) (*entity.Label, error) {
	return u.labels.FindByID(ctx, userID, id)
}

// Create はラベルを作成します。
func (u *labelUsecase) Create(ctx context.Context, userID uint, name string) (*entity.Label, error) {
	return u.labels.Create(ctx, userID, name)
}

// Rename はラベル名を変更します。
func (u *labelUsecase) Rename(ctx context.Context, userID, id uint, name string) (*entity.Label, error) {
	return u.labels.Update(ctx, userID, id, name)
}

// Delete はラベルを削除します。関連していたレシピは残ります。
func (u *labelUsecase) Delete(ctx context.Context, userID, id uint) error {
	return u.labels.Delete(ctx, userID, id)
}
