// Package router はHTTPルーティングを組み立てます。
package router

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	authhandler "recipe_backend/internal/feature/auth/transport/handler"
	recipehandler "recipe_backend/internal/feature/recipe/transport/handler"
	"recipe_backend/internal/platform/http/handler"
	httpmw "recipe_backend/internal/platform/http/middleware"
	jwtmw "recipe_backend/internal/platform/jwt"
	"recipe_backend/internal/shared/ratelimiter"
)

// Handlers はルーターに登録するハンドラーと認証の依存をまとめたものです。
type Handlers struct {
	Auth          *authhandler.AuthHandler
	Recipes       *recipehandler.RecipeHandler
	Tags          *recipehandler.LabelHandler
	Ingredients   *recipehandler.LabelHandler
	Authenticator jwtmw.Authenticator
	// AuthLimiter はユーザー作成とトークン発行に適用されます。nilの場合は制限しません。
	AuthLimiter ratelimiter.RateLimiterInterface
	DB          handler.Pinger
}

// Options はHTTP層の設定です。
type Options struct {
	Logger         *slog.Logger
	CORSOrigins    []string
	MediaURL       string
	MediaRoot      string // 空の場合、画像は配信しない（S3など）
	MaxUploadBytes int64
}

func NewRouter(h Handlers, opts Options) *gin.Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := gin.New()
	r.Use(gin.Recovery(), httpmw.RequestLogger(logger), httpmw.Metrics())
	if len(opts.CORSOrigins) > 0 {
		r.Use(httpmw.CORS(opts.CORSOrigins))
	}

	// 認証不要
	// 導通確認用
	health := handler.Health(h.DB)
	r.GET("/healthz", health)
	r.HEAD("/healthz", health)
	r.OPTIONS("/healthz", health)
	r.GET("/metrics", httpmw.MetricsHandler())
	if opts.MediaRoot != "" {
		r.Static(opts.MediaURL, opts.MediaRoot)
	}

	api := r.Group("/api")

	users := api.Group("/users")
	if h.AuthLimiter != nil {
		users.Use(httpmw.RateLimit(h.AuthLimiter))
	}
	// 新規ユーザー登録
	users.POST("/create/", h.Auth.Signup)
	// ログイン（トークン発行）
	users.POST("/token/", h.Auth.Token)

	// 認証必須のルート
	auth := api.Group("")
	auth.Use(jwtmw.AuthRequired(h.Authenticator))
	{
		auth.GET("/users/me/", h.Auth.Me)
		auth.PATCH("/users/me/", h.Auth.UpdateMe)
		auth.PUT("/users/me/", h.Auth.ReplaceMe)

		var upload []gin.HandlerFunc
		if opts.MaxUploadBytes > 0 {
			upload = append(upload, httpmw.MaxBodySize(opts.MaxUploadBytes))
		}
		h.Recipes.Register(auth, upload...)
		h.Tags.Register(auth, "/tags")
		h.Ingredients.Register(auth, "/ingredients")
	}

	return r
}
