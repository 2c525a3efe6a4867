package handler

import (
	"log/slog"
	"strings"
	"time"

	"citizenpulse/backend/internal/apperr"
	"citizenpulse/backend/internal/auth"

	"github.com/gin-gonic/gin"
)

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) < 7 || !strings.EqualFold(header[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

// OptionalAuth resolves a bearer token when one is sent. A bad token is rejected rather than
// silently downgraded to anonymous.
func (h *Handler) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			c.Next()
			return
		}
		actor, err := h.Auth.Resolve(c.Request.Context(), raw)
		if err != nil {
			respondError(c, err)
			return
		}
		c.Set(actorKey, actor)
		c.Next()
	}
}

// RequireAuth rejects requests without a valid bearer token.
func (h *Handler) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			respondError(c, apperr.ErrUnauthenticated)
			return
		}
		actor, err := h.Auth.Resolve(c.Request.Context(), raw)
		if err != nil {
			respondError(c, err)
			return
		}
		c.Set(actorKey, actor)
		c.Next()
	}
}

// RequireStaff must run after RequireAuth.
func (h *Handler) RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := auth.RequireStaff(actorFrom(c)); err != nil {
			respondError(c, err)
			return
		}
		c.Next()
	}
}

// AccessLog writes one structured line per request.
func AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
		}
		if actor := actorFrom(c); actor != nil {
			attrs = append(attrs, "actor_id", actor.UserID)
		}

		switch {
		case c.Writer.Status() >= 500:
			slog.Error("HTTP request", attrs...)
		case c.Writer.Status() >= 400:
			slog.Warn("HTTP request", attrs...)
		default:
			slog.Info("HTTP request", attrs...)
		}
	}
}
