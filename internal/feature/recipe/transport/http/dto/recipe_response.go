package dto

import "recipe_backend/internal/feature/recipe/domain/entity"

// LabelResponse はタグ・材料のレスポンスです。
type LabelResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// RecipeItem は一覧用のレシピ表現です。
type RecipeItem struct {
	ID          uint            `json:"id"`
	Title       string          `json:"title"`
	TimeMinutes int             `json:"time_minutes"`
	Price       entity.Price    `json:"price"`
	Link        string          `json:"link"`
	Tags        []LabelResponse `json:"tags"`
	Ingredients []LabelResponse `json:"ingredients"`
}

// RecipeDetail は詳細・作成・更新用の表現で、一覧項目にdescriptionを加えたものです。
type RecipeDetail struct {
	RecipeItem
	Description string `json:"description"`
}

// RecipeImage は画像アップロードのレスポンスです。
type RecipeImage struct {
	ID    uint   `json:"id"`
	Image string `json:"image"`
}

func NewLabelResponse(l entity.Label) LabelResponse {
	return LabelResponse{ID: l.ID, Name: l.Name}
}

// NewLabelList は空の場合も [] として出力されるスライスを返します。
func NewLabelList(labels []entity.Label) []LabelResponse {
	out := make([]LabelResponse, len(labels))
	for i, l := range labels {
		out[i] = NewLabelResponse(l)
	}
	return out
}

func NewRecipeItem(r *entity.Recipe) RecipeItem {
	return RecipeItem{
		ID:          r.ID,
		Title:       r.Title,
		TimeMinutes: r.TimeMinutes,
		Price:       r.Price,
		Link:        r.Link,
		Tags:        NewLabelList(r.Tags),
		Ingredients: NewLabelList(r.Ingredients),
	}
}

func NewRecipeItems(recipes []entity.Recipe) []RecipeItem {
	out := make([]RecipeItem, len(recipes))
	for i := range recipes {
		out[i] = NewRecipeItem(&recipes[i])
	}
	return out
}

func NewRecipeDetail(r *entity.Recipe) RecipeDetail {
	return RecipeDetail{RecipeItem: NewRecipeItem(r), Description: r.Description}
}

func NewRecipeImage(r *entity.Recipe) RecipeImage {
	return RecipeImage{ID: r.ID, Image: r.Image}
}
