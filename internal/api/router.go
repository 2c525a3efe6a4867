// Package api assembles the HTTP surface.
package api

import (
	"net/http"

	"citizenpulse/backend/internal/api/handler"
	"citizenpulse/backend/internal/config"
	"citizenpulse/backend/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
)

// NewRouter registers every route on a gin engine and wraps it with CORS.
func NewRouter(h *handler.Handler, corsCfg config.CORSConfig) http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), handler.AccessLog(), metrics.Middleware())

	r.GET("/healthz", h.Health)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	v1 := r.Group("/api/v1")
	v1.GET("/catalog", h.GetCatalog)
	v1.POST("/auth/register", h.Register)
	v1.POST("/auth/login", h.Login)
	v1.GET("/me", h.RequireAuth(), h.Me)
	v1.GET("/ws", h.OptionalAuth(), h.ServeWebSocket)

	reports := v1.Group("/reports", h.OptionalAuth())
	{
		reports.GET("", h.ListReports)
		reports.POST("", h.CreateReport)
		reports.GET("/:id", h.GetReport)
		// Anonymous callers get a 401 carrying the login URL from the handler.
		reports.POST("/:id/upvote", h.ToggleUpvote)
		reports.POST("/:id/comments", h.AddComment)
	}

	admin := v1.Group("/admin", h.RequireAuth(), h.RequireStaff())
	{
		admin.GET("/stats", h.Stats)
		admin.GET("/reports", h.AdminReports)
		admin.GET("/users", h.AdminUsers)
		admin.PATCH("/reports/:id/status", h.ChangeStatus)
		admin.PATCH("/reports/:id/priority", h.ChangePriority)
		admin.POST("/reports/:id/updates", h.PostUpdate)
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsCfg.AllowedOrigins,
		AllowedMethods:   corsCfg.AllowedMethods,
		AllowedHeaders:   corsCfg.AllowedHeaders,
		AllowCredentials: corsCfg.AllowCredentials,
		MaxAge:           corsCfg.MaxAge,
	})
	return c.Handler(r)
}

