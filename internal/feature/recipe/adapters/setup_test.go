package adapters

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"recipe_backend/internal/feature/recipe/domain/entity"
	platformdb "recipe_backend/internal/platform/db"
)

// setupTestDB prepares an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), platformdb.GormConfig())
	require.NoError(t, err, "failed to initialize test database")

	// :memory: は接続ごとに別DBになるため1接続に固定する
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, platformdb.Migrate(db, Models()...), "failed to migrate tables")
	return db
}

func ptr[T any](v T) *T { return &v }

func names(labels []entity.Label) []string {
	out := make([]string, len(labels))
	for i, l := range labels {
		out[i] = l.Name
	}
	return out
}

func createRecipe(t *testing.T, repo *recipeGorm, userID uint, title string, tags, ingredients []string) *entity.Recipe {
	t.Helper()
	price := entity.Price(550)
	f := entity.RecipeFields{
		Title:       ptr(title),
		TimeMinutes: ptr(10),
		Price:       &price,
		Link:        ptr(""),
		Description: ptr(""),
	}
	if tags != nil {
		f.Tags = &tags
	}
	if ingredients != nil {
		f.Ingredients = &ingredients
	}
	r, err := repo.Create(context.Background(), userID, f)
	require.NoError(t, err, "failed to create test recipe")
	return r
}

func countRows(t *testing.T, db *gorm.DB, table string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Table(table).Count(&n).Error)
	return n
}
