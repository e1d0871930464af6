package handler

import "github.com/gin-gonic/gin"

// Register はレシピのルートをgに登録します。uploadはアップロード専用のミドルウェアです（サイズ制限など）。
func (h *RecipeHandler) Register(g gin.IRouter, upload ...gin.HandlerFunc) {
	g.GET("/recipes/", h.List)
	g.POST("/recipes/", h.Create)
	g.GET("/recipes/:id/", h.Get)
	g.PATCH("/recipes/:id/", h.Patch)
	g.PUT("/recipes/:id/", h.Replace)
	g.DELETE("/recipes/:id/", h.Delete)

	chain := append(append([]gin.HandlerFunc{}, upload...), h.UploadImage)
	g.POST("/recipes/:id/upload-image/", chain...)
}

// Register はbase（"/tags" など）配下にラベルのルートを登録します。
func (h *LabelHandler) Register(g gin.IRouter, base string) {
	g.GET(base+"/", h.List)
	g.POST(base+"/", h.Create)
	g.GET(base+"/:id/", h.Get)
	g.PATCH(base+"/:id/", h.Patch)
	g.PUT(base+"/:id/", h.Replace)
	g.DELETE(base+"/:id/", h.Delete)
}
