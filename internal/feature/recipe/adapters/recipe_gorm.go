package adapters

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"recipe_backend/internal/feature/recipe/domain"
	"recipe_backend/internal/feature/recipe/domain/entity"
	"recipe_backend/internal/feature/recipe/usecase"
)

// recipeGorm はRecipeRepositoryインターフェースのGORM実装です。
type recipeGorm struct {
	db *gorm.DB
}

// recipeGormがRecipeRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.RecipeRepository = (*recipeGorm)(nil)

// NewRecipeGorm は指定されたgorm.DB接続でrecipeGormの新しいインスタンスを生成します。
func NewRecipeGorm(db *gorm.DB) *recipeGorm {
	return &recipeGorm{db: db}
}

// List はユーザーのレシピをIDの降順で返します。
// タグ・材料による絞り込みは recipes.id IN (サブクエリ) で行うため、複数のIDに一致しても1件になります。
func (r *recipeGorm) List(ctx context.Context, userID uint, filter entity.RecipeFilter) ([]entity.Recipe, error) {
	tx := r.db.WithContext(ctx)
	q := tx.Model(&RecipeModel{}).Where("user_id = ?", userID)
	if len(filter.TagIDs) > 0 {
		q = q.Where("id IN (?)", r.db.Table(entity.KindTag.JoinTable()).
			Select("recipe_id").Where("tag_id IN ?", filter.TagIDs))
	}
	if len(filter.IngredientIDs) > 0 {
		q = q.Where("id IN (?)", r.db.Table(entity.KindIngredient.JoinTable()).
			Select("recipe_id").Where("ingredient_id IN ?", filter.IngredientIDs))
	}

	var models []RecipeModel
	if err := q.Order("id DESC").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	return withLabels(tx, models)
}

// FindByID はタグと材料を含むレシピを返します。
func (r *recipeGorm) FindByID(ctx context.Context, userID, id uint) (*entity.Recipe, error) {
	return loadRecipe(r.db.WithContext(ctx), userID, id)
}

// Create はレシピとラベルの関連を1つのトランザクションで作成します。
// いずれかの手順が失敗した場合、レシピも新しいラベルも残りません。
func (r *recipeGorm) Create(ctx context.Context, userID uint, f entity.RecipeFields) (*entity.Recipe, error) {
	var created *entity.Recipe
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m := RecipeModel{UserID: userID}
		applyFields(&m, f)
		if err := tx.Create(&m).Error; err != nil {
			return fmt.Errorf("failed to create recipe: %w", err)
		}
		if err := setLabels(tx, userID, m.ID, f); err != nil {
			return err
		}
		var err error
		created, err = loadRecipe(tx, userID, m.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update は指定されたフィールドを更新し、Tags/Ingredientsが指定されていれば関連を置き換えます。
func (r *recipeGorm) Update(ctx context.Context, userID, id uint, f entity.RecipeFields) (*entity.Recipe, error) {
	var updated *entity.Recipe
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := findRecipe(tx, userID, id)
		if err != nil {
			return err
		}
		applyFields(&m, f)
		if err := tx.Save(&m).Error; err != nil {
			return fmt.Errorf("failed to update recipe: %w", err)
		}
		if err := setLabels(tx, userID, m.ID, f); err != nil {
			return err
		}
		updated, err = loadRecipe(tx, userID, m.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete はレシピと関連行を削除し、削除前の画像URLを返します。ラベル自体は残ります。
func (r *recipeGorm) Delete(ctx context.Context, userID, id uint) (string, error) {
	var image string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := findRecipe(tx, userID, id)
		if err != nil {
			return err
		}
		image = m.Image
		for _, kind := range []entity.LabelKind{entity.KindTag, entity.KindIngredient} {
			if err := tx.Exec("DELETE FROM "+kind.JoinTable()+" WHERE recipe_id = ?", id).Error; err != nil {
				return fmt.Errorf("failed to unlink %ss: %w", kind, err)
			}
		}
		if err := tx.Delete(&RecipeModel{}, m.ID).Error; err != nil {
			return fmt.Errorf("failed to delete recipe: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return image, nil
}

// SetImage は画像URLを更新し、以前の値を返します。
func (r *recipeGorm) SetImage(ctx context.Context, userID, id uint, image string) (string, error) {
	var previous string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m, err := findRecipe(tx, userID, id)
		if err != nil {
			return err
		}
		previous = m.Image
		if err := tx.Model(&m).Update("image", image).Error; err != nil {
			return fmt.Errorf("failed to set recipe image: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return previous, nil
}

func findRecipe(tx *gorm.DB, userID, id uint) (RecipeModel, error) {
	var m RecipeModel
	if err := tx.Where("id = ? AND user_id = ?", id, userID).Take(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RecipeModel{}, domain.ErrNotFound
		}
		return RecipeModel{}, fmt.Errorf("failed to find recipe: %w", err)
	}
	return m, nil
}

func loadRecipe(tx *gorm.DB, userID, id uint) (*entity.Recipe, error) {
	m, err := findRecipe(tx, userID, id)
	if err != nil {
		return nil, err
	}
	recipes, err := withLabels(tx, []RecipeModel{m})
	if err != nil {
		return nil, err
	}
	return &recipes[0], nil
}

// withLabels はモデルをエンティティに変換し、タグと材料をまとめて読み込みます。
func withLabels(tx *gorm.DB, models []RecipeModel) ([]entity.Recipe, error) {
	ids := make([]uint, len(models))
	for i := range models {
		ids[i] = models[i].ID
	}
	tags, err := loadLabels(tx, entity.KindTag, ids)
	if err != nil {
		return nil, err
	}
	ingredients, err := loadLabels(tx, entity.KindIngredient, ids)
	if err != nil {
		return nil, err
	}

	recipes := make([]entity.Recipe, len(models))
	for i := range models {
		rec := models[i].toEntity()
		if t := tags[rec.ID]; t != nil {
			rec.Tags = t
		}
		if ing := ingredients[rec.ID]; ing != nil {
			rec.Ingredients = ing
		}
		recipes[i] = *rec
	}
	return recipes, nil
}

// applyFields は指定されたスカラーフィールドのみモデルに反映します。
func applyFields(m *RecipeModel, f entity.RecipeFields) {
	if f.Title != nil {
		m.Title = *f.Title
	}
	if f.TimeMinutes != nil {
		m.TimeMinutes = *f.TimeMinutes
	}
	if f.Price != nil {
		m.Price = *f.Price
	}
	if f.Link != nil {
		m.Link = *f.Link
	}
	if f.Description != nil {
		m.Description = *f.Description
	}
}

// setLabels は指定された種類の関連だけを置き換えます。nilの場合は変更しません。
func setLabels(tx *gorm.DB, userID, recipeID uint, f entity.RecipeFields) error {
	if f.Tags != nil {
		if err := replaceLabels(tx, entity.KindTag, userID, recipeID, *f.Tags); err != nil {
			return err
		}
	}
	if f.Ingredients != nil {
		if err := replaceLabels(tx, entity.KindIngredient, userID, recipeID, *f.Ingredients); err != nil {
			return err
		}
	}
	return nil
}
