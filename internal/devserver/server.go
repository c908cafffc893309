// Package devserver 内存实现的食谱后端，用于本地联调与端到端测试
package devserver

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter 组装路由与中间件
func NewRouter(cfg *Config, store *Store, log *slog.Logger) *gin.Engine {
	secret := cfg.JWTSecret
	if secret == "" {
		// 未配置密钥时每次启动随机生成，重启后旧令牌失效
		secret = uuid.NewString()
		log.Warn("DEVSERVER_JWT_SECRET not set, using a random secret")
	}
	tokens := NewTokenIssuer(secret)
	h := NewHandler(store, tokens, log)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(log))

	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.POST("/login", h.Login)

	recipes := r.Group("/recipes", Authenticate(tokens, store, cfg.RequireAuth))
	recipes.GET("", h.ListRecipes)
	recipes.POST("", h.CreateRecipe)
	recipes.PUT("/:id", h.UpdateRecipe)
	recipes.DELETE("/:id", h.DeleteRecipe)

	return r
}
