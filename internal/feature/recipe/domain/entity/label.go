// Package entity defines the domain entities for the recipe feature.
package entity

// Label is a named, user-owned classifier attached to recipes.
// Tags and ingredients share this shape; names are unique per user and kind, case-sensitive.
type Label struct {
	ID     uint
	UserID uint
	Name   string
}

// Tag is a label of kind KindTag.
type Tag = Label

// Ingredient is a label of kind KindIngredient.
type Ingredient = Label

// LabelKind selects which label table an operation targets.
type LabelKind int

const (
	KindTag LabelKind = iota
	KindIngredient
)

// String returns the singular name used in messages ("tag", "ingredient").
func (k LabelKind) String() string {
	if k == KindIngredient {
		return "ingredient"
	}
	return "tag"
}

// Table is the label table name.
func (k LabelKind) Table() string {
	if k == KindIngredient {
		return "ingredients"
	}
	return "tags"
}

// JoinTable is the recipe association table name.
func (k LabelKind) JoinTable() string {
	if k == KindIngredient {
		return "recipe_ingredients"
	}
	return "recipe_tags"
}

// JoinColumn is the label id column in JoinTable.
func (k LabelKind) JoinColumn() string {
	if k == KindIngredient {
		return "ingredient_id"
	}
	return "tag_id"
}
