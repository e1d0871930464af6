package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	authdomain "recipe_backend/internal/feature/auth/domain"
	"recipe_backend/internal/feature/recipe/adapters"
	"recipe_backend/internal/feature/recipe/domain/entity"
	"recipe_backend/internal/feature/recipe/transport/http/dto"
	"recipe_backend/internal/feature/recipe/usecase"
	platformdb "recipe_backend/internal/platform/db"
	jwtmw "recipe_backend/internal/platform/jwt"
	"recipe_backend/internal/platform/storage"
)

// tokenAuth は固定トークンをユーザーIDへ解決するAuthenticatorです。
type tokenAuth map[string]uint

func (a tokenAuth) Authenticate(_ context.Context, token string) (uint, error) {
	if id, ok := a[token]; ok {
		return id, nil
	}
	return 0, authdomain.ErrInvalidToken
}

const (
	alice = "alice-token"
	bob   = "bob-token"
)

// testAPI はSQLiteとローカルストレージで組み立てた実際のハンドラー群です。
type testAPI struct {
	router http.Handler
	db     *gorm.DB
	media  string
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), platformdb.GormConfig())
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, platformdb.Migrate(db, adapters.Models()...))

	media := t.TempDir()
	store, err := storage.NewLocalStorage(media, "/media")
	require.NoError(t, err)

	r := gin.New()
	api := r.Group("/api", jwtmw.AuthRequired(tokenAuth{alice: 1, bob: 2}))
	NewRecipeHandler(usecase.NewRecipeUsecase(adapters.NewRecipeGorm(db), store)).Register(api)
	NewLabelHandler(usecase.NewLabelUsecase(adapters.NewLabelGorm(db, entity.KindTag)), entity.KindTag).Register(api, "/tags")
	NewLabelHandler(usecase.NewLabelUsecase(adapters.NewLabelGorm(db, entity.KindIngredient)), entity.KindIngredient).Register(api, "/ingredients")

	return &testAPI{router: r, db: db, media: media}
}

func (a *testAPI) do(t *testing.T, token, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testAPI) createRecipe(t *testing.T, token string, body map[string]any) dto.RecipeDetail {
	t.Helper()
	payload := map[string]any{"title": "Sample", "time_minutes": 10, "price": "5.00"}
	for k, v := range body {
		payload[k] = v
	}
	w := a.do(t, token, http.MethodPost, "/api/recipes/", payload)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var out dto.RecipeDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func (a *testAPI) count(t *testing.T, table string) int64 {
	t.Helper()
	var n int64
	require.NoError(t, a.db.Table(table).Count(&n).Error)
	return n
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func labelNames(labels []dto.LabelResponse) []string {
	out := make([]string, len(labels))
	for i, l := range labels {
		out[i] = l.Name
	}
	return out
}

func TestAPI_RequiresAuthentication(t *testing.T) {
	a := newTestAPI(t)
	endpoints := []struct{ method, path string }{
		{http.MethodGet, "/api/recipes/"},
		{http.MethodPost, "/api/recipes/"},
		{http.MethodGet, "/api/recipes/1/"},
		{http.MethodPatch, "/api/recipes/1/"},
		{http.MethodPut, "/api/recipes/1/"},
		{http.MethodDelete, "/api/recipes/1/"},
		{http.MethodPost, "/api/recipes/1/upload-image/"},
		{http.MethodGet, "/api/tags/"},
		{http.MethodPost, "/api/tags/"},
		{http.MethodPatch, "/api/tags/1/"},
		{http.MethodDelete, "/api/tags/1/"},
		{http.MethodGet, "/api/ingredients/"},
		{http.MethodPut, "/api/ingredients/1/"},
	}

	for _, ep := range endpoints {
		t.Run(ep.method+" "+ep.path, func(t *testing.T) {
			w := a.do(t, "", ep.method, ep.path, nil)
			assert.Equal(t, http.StatusUnauthorized, w.Code)

			w = a.do(t, "forged", ep.method, ep.path, nil)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestAPI_CreateThaiPrawnCurry(t *testing.T) {
	a := newTestAPI(t)

	w := a.do(t, alice, http.MethodPost, "/api/recipes/", map[string]any{
		"title":        "thai prawn curry",
		"time_minutes": 30,
		"price":        10.00,
		"tags":         []map[string]string{{"name": "Thai"}, {"name": "Prawn"}},
	})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	got := decode[dto.RecipeDetail](t, w)
	assert.Equal(t, "thai prawn curry", got.Title)
	assert.Equal(t, entity.Price(1000), got.Price)
	assert.ElementsMatch(t, []string{"Thai", "Prawn"}, labelNames(got.Tags))
	assert.Empty(t, got.Ingredients)
	assert.Contains(t, w.Body.String(), `"price":"10.00"`)

	var owners []uint
	require.NoError(t, a.db.Table("tags").Pluck("user_id", &owners).Error)
	assert.Equal(t, []uint{1, 1}, owners)
}

func TestAPI_CreateRecipe_MissingRequiredFields(t *testing.T) {
	a := newTestAPI(t)

	w := a.do(t, alice, http.MethodPost, "/api/recipes/", map[string]any{"link": "https://example.com"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"title":["This field is required."],"time_minutes":["This field is required."],"price":["This field is required."]}`, w.Body.String())
	assert.Zero(t, a.count(t, "recipes"))
}

func TestAPI_CreateRecipe_ReusesExistingTag(t *testing.T) {
	a := newTestAPI(t)
	w := a.do(t, alice, http.MethodPost, "/api/tags/", map[string]string{"name": "Indian"})
	require.Equal(t, http.StatusCreated, w.Code)
	indian := decode[dto.LabelResponse](t, w)

	got := a.createRecipe(t, alice, map[string]any{
		"tags": []map[string]string{{"name": "Indian"}, {"name": "Breakfast"}},
	})

	assert.Equal(t, int64(2), a.count(t, "tags"))
	assert.Contains(t, got.Tags, indian)
}

func TestAPI_CreateIngredientsOnUpdate(t *testing.T) {
	a := newTestAPI(t)
	r := a.createRecipe(t, alice, nil)

	w := a.do(t, alice, http.MethodPatch, fmt.Sprintf("/api/recipes/%d/", r.ID), map[string]any{
		"ingredients": []map[string]string{{"name": "Limes"}},
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"Limes"}, labelNames(decode[dto.RecipeDetail](t, w).Ingredients))
	assert.Equal(t, int64(1), a.count(t, "ingredients"))
}

func TestAPI_PatchTagsReplacesSet(t *testing.T) {
	a := newTestAPI(t)
	r := a.createRecipe(t, alice, map[string]any{"tags": []map[string]string{{"name": "Breakfast"}}})
	path := fmt.Sprintf("/api/recipes/%d/", r.ID)

	w := a.do(t, alice, http.MethodPatch, path, map[string]any{"tags": []map[string]string{{"name": "Lunch"}}})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"Lunch"}, labelNames(decode[dto.RecipeDetail](t, w).Tags))
	assert.Equal(t, int64(2), a.count(t, "tags"), "the old tag row is kept")

	w = a.do(t, alice, http.MethodPatch, path, map[string]any{"title": "Renamed"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"Lunch"}, labelNames(decode[dto.RecipeDetail](t, w).Tags), "absent key leaves tags alone")
}

func TestAPI_UpdateWithEmptyTagsClears(t *testing.T) {
	a := newTestAPI(t)
	r := a.createRecipe(t, alice, map[string]any{"tags": []map[string]string{{"name": "Dessert"}}})

	w := a.do(t, alice, http.MethodPatch, fmt.Sprintf("/api/recipes/%d/", r.ID), map[string]any{"tags": []any{}})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[dto.RecipeDetail](t, w).Tags)
	assert.Zero(t, a.count(t, "recipe_tags"))
	assert.Equal(t, int64(1), a.count(t, "tags"))
}

func TestAPI_PutReplacesRecipe(t *testing.T) {
	a := newTestAPI(t)
	r := a.createRecipe(t, alice, map[string]any{"link": "https://example.com", "description": "old"})

	w := a.do(t, alice, http.MethodPut, fmt.Sprintf("/api/recipes/%d/", r.ID), map[string]any{
		"title": "Full", "time_minutes": 5, "price": "1.50",
	})

	require.Equal(t, http.StatusOK, w.Code)
	got := decode[dto.RecipeDetail](t, w)
	assert.Equal(t, "Full", got.Title)
	assert.Equal(t, entity.Price(150), got.Price)
	assert.Empty(t, got.Link)
	assert.Empty(t, got.Description)

	w = a.do(t, alice, http.MethodPut, fmt.Sprintf("/api/recipes/%d/", r.ID), map[string]any{"title": "Partial"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAPI_PatchUserIsIgnored(t *testing.T) {
	a := newTestAPI(t)
	r := a.createRecipe(t, alice, nil)
	path := fmt.Sprintf("/api/recipes/%d/", r.ID)

	w := a.do(t, alice, http.MethodPatch, path, map[string]any{"user": 2})

	require.Equal(t, http.StatusOK, w.Code)
	var owner uint
	require.NoError(t, a.db.Table("recipes").Select("user_id").Where("id = ?", r.ID).Row().Scan(&owner))
	assert.Equal(t, uint(1), owner)
	assert.Equal(t, http.StatusNotFound, a.do(t, bob, http.MethodGet, path, nil).Code)
}

func TestAPI_UserIsolation(t *testing.T) {
	a := newTestAPI(t)
	r := a.createRecipe(t, alice, map[string]any{
		"tags":        []map[string]string{{"name": "Mine"}},
		"ingredients": []map[string]string{{"name": "Salt"}},
	})
	tagID := r.Tags[0].ID
	ingredientID := r.Ingredients[0].ID

	for _, list := range []string{"/api/recipes/", "/api/tags/", "/api/ingredients/"} {
		w := a.do(t, bob, http.MethodGet, list, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String(), list)
	}

	paths := []string{
		fmt.Sprintf("/api/recipes/%d/", r.ID),
		fmt.Sprintf("/api/tags/%d/", tagID),
		fmt.Sprintf("/api/ingredients/%d/", ingredientID),
	}
	for _, path := range paths {
		assert.Equal(t, http.StatusNotFound, a.do(t, bob, http.MethodGet, path, nil).Code, path)
		assert.Equal(t, http.StatusNotFound, a.do(t, bob, http.MethodPatch, path, map[string]string{"name": "x", "title": "x"}).Code, path)
		assert.Equal(t, http.StatusNotFound, a.do(t, bob, http.MethodDelete, path, nil).Code, path)
	}
	assert.Equal(t, http.StatusNotFound, a.do(t, alice, http.MethodGet, "/api/recipes/9999/", nil).Code)

	assert.Equal(t, int64(1), a.count(t, "recipes"))
	assert.Equal(t, http.StatusOK, a.do(t, alice, http.MethodGet, paths[0], nil).Code)
}

func TestAPI_FilterRecipesByTags(t *testing.T) {
	a := newTestAPI(t)
	r1 := a.createRecipe(t, alice, map[string]any{"title": "Curry", "tags": []map[string]string{{"name": "Vegan"}}})
	r2 := a.createRecipe(t, alice, map[string]any{"title": "Salad", "tags": []map[string]string{{"name": "Vegan"}, {"name": "Quick"}}})
	a.createRecipe(t, alice, map[string]any{"title": "Steak"})

	vegan := r1.Tags[0].ID
	var quick uint
	for _, tag := range r2.Tags {
		if tag.Name == "Quick" {
			quick = tag.ID
		}
	}

	w := a.do(t, alice, http.MethodGet, fmt.Sprintf("/api/recipes/?tags=%d,%d", vegan, quick), nil)

	require.Equal(t, http.StatusOK, w.Code)
	got := decode[[]dto.RecipeItem](t, w)
	titles := make([]string, len(got))
	for i, r := range got {
		titles[i] = r.Title
	}
	assert.Equal(t, []string{"Salad", "Curry"}, titles)

	w = a.do(t, alice, http.MethodGet, "/api/recipes/?tags=one", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAPI_FilterRecipesByIngredients(t *testing.T) {
	a := newTestAPI(t)
	r1 := a.createRecipe(t, alice, map[string]any{"title": "Posh beans on toast", "ingredients": []map[string]string{{"name": "Feta cheese"}}})
	a.createRecipe(t, alice, map[string]any{"title": "Chicken cacciatore", "ingredients": []map[string]string{{"name": "Chicken"}}})

	w := a.do(t, alice, http.MethodGet, fmt.Sprintf("/api/recipes/?ingredients=%d", r1.Ingredients[0].ID), nil)

	require.Equal(t, http.StatusOK, w.Code)
	got := decode[[]dto.RecipeItem](t, w)
	require.Len(t, got, 1)
	assert.Equal(t, r1.ID, got[0].ID)
}

func TestAPI_AssignedOnlyLabels(t *testing.T) {
	a := newTestAPI(t)
	a.createRecipe(t, alice, map[string]any{"title": "Eggs", "tags": []map[string]string{{"name": "Breakfast"}}})
	a.createRecipe(t, alice, map[string]any{"title": "Pancakes", "tags": []map[string]string{{"name": "Breakfast"}}})
	w := a.do(t, alice, http.MethodPost, "/api/tags/", map[string]string{"name": "Unused"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = a.do(t, alice, http.MethodGet, "/api/tags/?assigned_only=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"Breakfast"}, labelNames(decode[[]dto.LabelResponse](t, w)))

	w = a.do(t, alice, http.MethodGet, "/api/tags/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"Unused", "Breakfast"}, labelNames(decode[[]dto.LabelResponse](t, w)))
}

func TestAPI_LabelCRUD(t *testing.T) {
	a := newTestAPI(t)

	w := a.do(t, alice, http.MethodPost, "/api/ingredients/", map[string]string{"name": "Kale"})
	require.Equal(t, http.StatusCreated, w.Code)
	kale := decode[dto.LabelResponse](t, w)
	path := fmt.Sprintf("/api/ingredients/%d/", kale.ID)

	w = a.do(t, alice, http.MethodPost, "/api/ingredients/", map[string]string{"name": "Kale"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"name":["ingredient with this name already exists."]}`, w.Body.String())

	w = a.do(t, alice, http.MethodPatch, path, map[string]string{"name": "Spinach"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Spinach", decode[dto.LabelResponse](t, w).Name)

	w = a.do(t, alice, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Zero(t, a.count(t, "ingredients"))
}

func TestAPI_PatchLabelIsPartial(t *testing.T) {
	a := newTestAPI(t)
	w := a.do(t, alice, http.MethodPost, "/api/tags/", map[string]string{"name": "Keep"})
	require.Equal(t, http.StatusCreated, w.Code)
	keep := decode[dto.LabelResponse](t, w)
	path := fmt.Sprintf("/api/tags/%d/", keep.ID)

	w = a.do(t, alice, http.MethodPatch, path, map[string]any{})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, fmt.Sprintf(`{"id":%d,"name":"Keep"}`, keep.ID), w.Body.String())

	w = a.do(t, alice, http.MethodPatch, path, map[string]string{"name": "  "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"name":["This field may not be blank."]}`, w.Body.String())

	w = a.do(t, alice, http.MethodPut, path, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Equal(t, http.StatusNotFound, a.do(t, bob, http.MethodPatch, path, map[string]any{}).Code)
}

func TestAPI_PatchRecipeRejectsNull(t *testing.T) {
	a := newTestAPI(t)
	r := a.createRecipe(t, alice, nil)

	w := a.do(t, alice, http.MethodPatch, fmt.Sprintf("/api/recipes/%d/", r.ID), map[string]any{
		"title": nil, "time_minutes": nil,
	})

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"title":["This field may not be null."],"time_minutes":["This field may not be null."]}`, w.Body.String())
	assert.Equal(t, "Sample", decode[dto.RecipeDetail](t, a.do(t, alice, http.MethodGet, fmt.Sprintf("/api/recipes/%d/", r.ID), nil)).Title)
}

func TestAPI_UploadImage(t *testing.T) {
	a := newTestAPI(t)
	r := a.createRecipe(t, alice, nil)
	path := fmt.Sprintf("/api/recipes/%d/upload-image/", r.ID)

	upload := func(token string, data []byte) *httptest.ResponseRecorder {
		body, contentType := multipartBody(t, "image", data)
		req := httptest.NewRequest(http.MethodPost, path, body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("Authorization", "Token "+token)
		w := httptest.NewRecorder()
		a.router.ServeHTTP(w, req)
		return w
	}
	fileOf := func(url string) string {
		return filepath.Join(a.media, filepath.FromSlash(strings.TrimPrefix(url, "/media/")))
	}

	w := upload(alice, pngBytes(t))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	first := decode[dto.RecipeImage](t, w)
	assert.Equal(t, r.ID, first.ID)
	assert.True(t, strings.HasPrefix(first.Image, "/media/uploads/recipe/"), first.Image)
	assert.True(t, strings.HasSuffix(first.Image, ".png"), first.Image)
	assert.FileExists(t, fileOf(first.Image))

	w = upload(alice, pngBytes(t))
	require.Equal(t, http.StatusOK, w.Code)
	second := decode[dto.RecipeImage](t, w)
	assert.NotEqual(t, first.Image, second.Image)
	assert.NoFileExists(t, fileOf(first.Image), "previous image is removed")

	w = upload(alice, []byte("notimage"))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.FileExists(t, fileOf(second.Image))

	assert.Equal(t, http.StatusNotFound, upload(bob, pngBytes(t)).Code)

	w = a.do(t, alice, http.MethodDelete, fmt.Sprintf("/api/recipes/%d/", r.ID), nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	_, err := os.Stat(fileOf(second.Image))
	assert.True(t, os.IsNotExist(err), "image is removed with the recipe")
}
