package di

import (
	authadapters "recipe_backend/internal/feature/auth/adapters"
	authentity "recipe_backend/internal/feature/auth/domain/entity"
	recipeadapters "recipe_backend/internal/feature/recipe/adapters"
)

// Models returns every gorm model the application migrates at startup.
// Users come first since recipes and labels reference user ids.
func Models() []any {
	return append([]any{&authentity.User{}, &authadapters.SessionModel{}}, recipeadapters.Models()...)
}
