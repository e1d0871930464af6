package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"recipe_backend/internal/feature/recipe/domain"
	"recipe_backend/internal/feature/recipe/domain/entity"
	"recipe_backend/internal/feature/recipe/transport/http/dto"
	"recipe_backend/internal/platform/http/response"
	"recipe_backend/internal/platform/validation"
)

// LabelUsecase はタグまたは材料の操作を定義します。
type LabelUsecase interface {
	List(ctx context.Context, userID uint, assignedOnly bool) ([]entity.Label, error)
	Get(ctx context.Context, userID, id uint) (*entity.Label, error)
	Create(ctx context.Context, userID uint, name string) (*entity.Label, error)
	Rename(ctx context.Context, userID, id uint, name string) (*entity.Label, error)
	Delete(ctx context.Context, userID, id uint) error
}

// LabelHandler はタグ・材料のHTTPリクエストを処理します。種類ごとに1つ生成します。
type LabelHandler struct {
	labels LabelUsecase
	kind   entity.LabelKind
}

// NewLabelHandler はkindのラベルを扱うLabelHandlerを生成します。
func NewLabelHandler(labels LabelUsecase, kind entity.LabelKind) *LabelHandler {
	return &LabelHandler{labels: labels, kind: kind}
}

// List は名前の降順でラベルを返します。?assigned_only=1 でレシピに使われているものに限定します。
func (h *LabelHandler) List(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	assignedOnly, errs := queryFlag(c, "assigned_only")
	if errs != nil {
		response.Invalid(c, errs)
		return
	}
	labels, err := h.labels.List(c.Request.Context(), userID, assignedOnly)
	if err != nil {
		writeError(c, fmt.Sprintf("failed to list %ss", h.kind), err)
		return
	}
	c.JSON(http.StatusOK, dto.NewLabelList(labels))
}

func (h *LabelHandler) Get(c *gin.Context) {
	userID, id, ok := requireUserAndID(c)
	if !ok {
		return
	}
	label, err := h.labels.Get(c.Request.Context(), userID, id)
	if err != nil {
		writeError(c, fmt.Sprintf("failed to get %s", h.kind), err)
		return
	}
	c.JSON(http.StatusOK, dto.NewLabelResponse(*label))
}

// Create は新しいラベルを作成します。同名が既にあれば400を返します。
func (h *LabelHandler) Create(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	name, ok := bindLabel(c)
	if !ok {
		return
	}
	label, err := h.labels.Create(c.Request.Context(), userID, name)
	if err != nil {
		h.writeLabelError(c, "create", err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewLabelResponse(*label))
}

// Patch はnameが指定された場合のみ名前を変更します。省略時は現在のラベルを返します。
func (h *LabelHandler) Patch(c *gin.Context) {
	userID, id, ok := requireUserAndID(c)
	if !ok {
		return
	}
	var req dto.LabelPatchReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("label validation failed", "error", err, "remote_addr", c.ClientIP())
		response.BindError(c, err)
		return
	}
	name, errs := req.LabelName()
	if errs != nil {
		response.Invalid(c, errs)
		return
	}
	if name == nil {
		h.Get(c)
		return
	}
	h.rename(c, userID, id, *name)
}

// Replace はPUTを処理します。nameは必須です。
func (h *LabelHandler) Replace(c *gin.Context) {
	userID, id, ok := requireUserAndID(c)
	if !ok {
		return
	}
	name, ok := bindLabel(c)
	if !ok {
		return
	}
	h.rename(c, userID, id, name)
}

func (h *LabelHandler) rename(c *gin.Context, userID, id uint, name string) {
	label, err := h.labels.Rename(c.Request.Context(), userID, id, name)
	if err != nil {
		h.writeLabelError(c, "update", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewLabelResponse(*label))
}

// Delete はラベルを削除し204を返します。関連していたレシピは残ります。
func (h *LabelHandler) Delete(c *gin.Context) {
	userID, id, ok := requireUserAndID(c)
	if !ok {
		return
	}
	if err := h.labels.Delete(c.Request.Context(), userID, id); err != nil {
		writeError(c, fmt.Sprintf("failed to delete %s", h.kind), err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *LabelHandler) writeLabelError(c *gin.Context, op string, err error) {
	if errors.Is(err, domain.ErrLabelExists) {
		response.Invalid(c, validation.Field("name", fmt.Sprintf("%s with this name already exists.", h.kind)))
		return
	}
	writeError(c, fmt.Sprintf("failed to %s %s", op, h.kind), err)
}

func bindLabel(c *gin.Context) (string, bool) {
	var req dto.LabelReq
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("label validation failed", "error", err, "remote_addr", c.ClientIP())
		response.BindError(c, err)
		return "", false
	}
	name, errs := req.LabelName()
	if errs != nil {
		response.Invalid(c, errs)
		return "", false
	}
	return name, true
}
