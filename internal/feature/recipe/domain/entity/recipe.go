package entity

import "time"

// Recipe is a user-owned recipe with its tag and ingredient sets.
type Recipe struct {
	ID          uint
	UserID      uint
	Title       string
	TimeMinutes int
	Price       Price
	Link        string
	Description string
	// Image is the public URL of the stored image, empty when none was uploaded.
	Image       string
	Tags        []Tag
	Ingredients []Ingredient
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RecipeFields carries recipe attributes for create and update.
// A nil field is left unchanged. A non-nil Tags or Ingredients, even when empty,
// replaces the whole association set with the named labels.
type RecipeFields struct {
	Title       *string
	TimeMinutes *int
	Price       *Price
	Link        *string
	Description *string
	Tags        *[]string
	Ingredients *[]string
}

// RecipeFilter narrows a recipe listing. Ids within one kind are ORed,
// the two kinds are ANDed. Empty slices do not filter.
type RecipeFilter struct {
	TagIDs        []uint
	IngredientIDs []uint
}
