// Package adapters はrecipeフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"time"

	"recipe_backend/internal/feature/recipe/domain/entity"
)

// TagModel はtagsテーブルのGORMモデルです。名前はユーザーごとに一意です。
type TagModel struct {
	ID     uint   `gorm:"primaryKey"`
	UserID uint   `gorm:"not null;uniqueIndex:idx_tags_user_name,priority:1"`
	Name   string `gorm:"size:255;not null;uniqueIndex:idx_tags_user_name,priority:2"`
}

// TableName はテーブル名を返します。
func (TagModel) TableName() string { return entity.KindTag.Table() }

// IngredientModel はingredientsテーブルのGORMモデルです。名前はユーザーごとに一意です。
type IngredientModel struct {
	ID     uint   `gorm:"primaryKey"`
	UserID uint   `gorm:"not null;uniqueIndex:idx_ingredients_user_name,priority:1"`
	Name   string `gorm:"size:255;not null;uniqueIndex:idx_ingredients_user_name,priority:2"`
}

// TableName はテーブル名を返します。
func (IngredientModel) TableName() string { return entity.KindIngredient.Table() }

// RecipeModel はrecipesテーブルのGORMモデルです。
type RecipeModel struct {
	ID          uint         `gorm:"primaryKey"`
	UserID      uint         `gorm:"not null;index"`
	Title       string       `gorm:"size:255;not null"`
	TimeMinutes int          `gorm:"not null"`
	Price       entity.Price `gorm:"type:numeric(5,2);not null"`
	Link        string       `gorm:"size:255;not null;default:''"`
	Description string       `gorm:"type:text;not null;default:''"`
	Image       string       `gorm:"size:512;not null;default:''"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName はテーブル名を返します。
func (RecipeModel) TableName() string { return "recipes" }

// RecipeTagModel はレシピとタグの関連テーブルです。
type RecipeTagModel struct {
	RecipeID uint `gorm:"primaryKey;autoIncrement:false"`
	TagID    uint `gorm:"primaryKey;autoIncrement:false;index"`
}

// TableName はテーブル名を返します。
func (RecipeTagModel) TableName() string { return entity.KindTag.JoinTable() }

// RecipeIngredientModel はレシピと材料の関連テーブルです。
type RecipeIngredientModel struct {
	RecipeID     uint `gorm:"primaryKey;autoIncrement:false"`
	IngredientID uint `gorm:"primaryKey;autoIncrement:false;index"`
}

// TableName はテーブル名を返します。
func (RecipeIngredientModel) TableName() string { return entity.KindIngredient.JoinTable() }

// Models はマイグレーション対象のモデルを返します。
func Models() []any {
	return []any{
		&TagModel{},
		&IngredientModel{},
		&RecipeModel{},
		&RecipeTagModel{},
		&RecipeIngredientModel{},
	}
}

// labelRow はタグと材料で共通の行表現です。テーブルはLabelKindで指定します。
type labelRow struct {
	ID     uint `gorm:"primaryKey"`
	UserID uint
	Name   string
}

func (r labelRow) toEntity() entity.Label {
	return entity.Label{ID: r.ID, UserID: r.UserID, Name: r.Name}
}

func (m *RecipeModel) toEntity() *entity.Recipe {
	return &entity.Recipe{
		ID:          m.ID,
		UserID:      m.UserID,
		Title:       m.Title,
		TimeMinutes: m.TimeMinutes,
		Price:       m.Price,
		Link:        m.Link,
		Description: m.Description,
		Image:       m.Image,
		Tags:        []entity.Tag{},
		Ingredients: []entity.Ingredient{},
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
