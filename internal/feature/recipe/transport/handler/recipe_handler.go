package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"recipe_backend/internal/feature/recipe/domain/entity"
	"recipe_backend/internal/feature/recipe/transport/http/dto"
	"recipe_backend/internal/platform/http/response"
	jwtmw "recipe_backend/internal/platform/jwt"
	"recipe_backend/internal/platform/validation"
)

// RecipeUsecase はレシピ操作のユースケースを定義します。
type RecipeUsecase interface {
	List(ctx context.Context, userID uint, filter entity.RecipeFilter) ([]entity.Recipe, error)
	Get(ctx context.Context, userID, id uint) (*entity.Recipe, error)
	Create(ctx context.Context, userID uint, fields entity.RecipeFields) (*entity.Recipe, error)
	Update(ctx context.Context, userID, id uint, fields entity.RecipeFields) (*entity.Recipe, error)
	Replace(ctx context.Context, userID, id uint, fields entity.RecipeFields) (*entity.Recipe, error)
	Delete(ctx context.Context, userID, id uint) error
	UploadImage(ctx context.Context, userID, id uint, r io.Reader) (*entity.Recipe, error)
}

// RecipeHandler はレシピのHTTPリクエストを処理します。
// すべてのエンドポイントは認証ミドルウェアの後に登録されます。
type RecipeHandler struct {
	recipes RecipeUsecase
}

// NewRecipeHandler はRecipeHandlerの新しいインスタンスを生成します。
func NewRecipeHandler(recipes RecipeUsecase) *RecipeHandler {
	return &RecipeHandler{recipes: recipes}
}

// List は GET /recipes/ を処理します。
// ?tags=1,2 と ?ingredients=3 で絞り込めます（同じ種類はOR、種類間はAND）。
func (h *RecipeHandler) List(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	errs := validation.Errors{}
	tagIDs, terr := queryIDs(c, "tags")
	ingredientIDs, ierr := queryIDs(c, "ingredients")
	for _, e := range []validation.Errors{terr, ierr} {
		for k, msgs := range e {
			errs[k] = msgs
		}
	}
	if len(errs) > 0 {
		response.Invalid(c, errs)
		return
	}

	recipes, err := h.recipes.List(c.Request.Context(), userID, entity.RecipeFilter{
		TagIDs:        tagIDs,
		IngredientIDs: ingredientIDs,
	})
	if err != nil {
		writeError(c, "failed to list recipes", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewRecipeItems(recipes))
}

// Get は GET /recipes/:id/ を処理します。
func (h *RecipeHandler) Get(c *gin.Context) {
	userID, id, ok := requireUserAndID(c)
	if !ok {
		return
	}
	recipe, err := h.recipes.Get(c.Request.Context(), userID, id)
	if err != nil {
		writeError(c, "failed to get recipe", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewRecipeDetail(recipe))
}

// Create は POST /recipes/ を処理します。
// - title, time_minutes, priceが欠けている場合は400を返却
// - タグ・材料は名前で既存のものを再利用し、なければ作成
// - 成功時は201と詳細表現を返却
func (h *RecipeHandler) Create(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	fields, ok := bindRecipe(c)
	if !ok {
		return
	}
	recipe, err := h.recipes.Create(c.Request.Context(), userID, fields)
	if err != nil {
		writeError(c, "failed to create recipe", err)
		return
	}
	slog.Info("recipe created", "user_id", userID, "recipe_id", recipe.ID)
	c.JSON(http.StatusCreated, dto.NewRecipeDetail(recipe))
}

// Patch は PATCH /recipes/:id/ を処理します。指定したキーのみ更新します。
func (h *RecipeHandler) Patch(c *gin.Context) {
	h.update(c, h.recipes.Update)
}

// Replace は PUT /recipes/:id/ を処理します。
func (h *RecipeHandler) Replace(c *gin.Context) {
	h.update(c, h.recipes.Replace)
}

type updateFunc func(ctx context.Context, userID, id uint, fields entity.RecipeFields) (*entity.Recipe, error)

func (h *RecipeHandler) update(c *gin.Context, apply updateFunc) {
	userID, id, ok := requireUserAndID(c)
	if !ok {
		return
	}
	fields, ok := bindRecipe(c)
	if !ok {
		return
	}
	recipe, err := apply(c.Request.Context(), userID, id, fields)
	if err != nil {
		writeError(c, "failed to update recipe", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewRecipeDetail(recipe))
}

// Delete は DELETE /recipes/:id/ を処理します。成功時は204を返します。
func (h *RecipeHandler) Delete(c *gin.Context) {
	userID, id, ok := requireUserAndID(c)
	if !ok {
		return
	}
	if err := h.recipes.Delete(c.Request.Context(), userID, id); err != nil {
		writeError(c, "failed to delete recipe", err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UploadImage は POST /recipes/:id/upload-image/ を処理します。
// multipartのimageフィールドが必須です。
func (h *RecipeHandler) UploadImage(c *gin.Context) {
	userID, id, ok := requireUserAndID(c)
	if !ok {
		return
	}

	fh, err := c.FormFile("image")
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			response.Detail(c, http.StatusRequestEntityTooLarge, "Request body too large.")
		case errors.Is(err, http.ErrNotMultipart):
			response.Invalid(c, validation.Field("image", notFileMsg))
		default:
			slog.Warn("image upload without file", "error", err, "remote_addr", c.ClientIP())
			response.Invalid(c, validation.Field("image", noFileMsg))
		}
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.Internal(c, "failed to open upload", err)
		return
	}
	defer f.Close()

	recipe, err := h.recipes.UploadImage(c.Request.Context(), userID, id, f)
	if err != nil {
		writeError(c, "failed to upload image", err)
		return
	}
	slog.Info("recipe image uploaded", "user_id", userID, "recipe_id", recipe.ID, "size", fh.Size)
	c.JSON(http.StatusOK, dto.NewRecipeImage(recipe))
}

// bindRecipe はリクエストボディをバインドしてRecipeFieldsへ変換します。失敗時は400を書き込みます。
func bindRecipe(c *gin.Context) (entity.RecipeFields, bool) {
	var req dto.RecipeWriteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("recipe validation failed", "error", err, "remote_addr", c.ClientIP())
		response.BindError(c, err)
		return entity.RecipeFields{}, false
	}
	fields, err := req.ToFields()
	if err != nil {
		writeError(c, "failed to read recipe", err)
		return entity.RecipeFields{}, false
	}
	return fields, true
}

func requireUser(c *gin.Context) (uint, bool) {
	userID, ok := jwtmw.UserID(c)
	if !ok {
		response.Detail(c, http.StatusUnauthorized, "Authentication credentials were not provided.")
	}
	return userID, ok
}

func requireUserAndID(c *gin.Context) (userID, id uint, ok bool) {
	if userID, ok = requireUser(c); !ok {
		return 0, 0, false
	}
	if id, ok = pathID(c); !ok {
		response.NotFound(c)
		return 0, 0, false
	}
	return userID, id, true
}
