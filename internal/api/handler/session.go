package handler

import (
	"log/slog"
	"net/http"

	"citizenpulse/backend/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

const (
	sessionName  = "cp_session"
	sessionIDKey = "sid"
)

// NewSessionStore builds the signed cookie store for browsing sessions.
func NewSessionStore(cfg config.SessionConfig) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(cfg.Secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.ViewTTL.Seconds()),
		HttpOnly: true,
		Secure:   cfg.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// browsingSession returns the id stored in the browsing-session cookie, issuing one on first
// visit. It returns "" when the cookie store is unavailable, which disables view de-duplication.
func (h *Handler) browsingSession(c *gin.Context) string {
	if h.Sessions == nil {
		return ""
	}

	session, err := h.Sessions.Get(c.Request, sessionName)
	if err != nil {
		// A cookie signed with a rotated secret decodes as an error but still yields a fresh session.
		slog.Debug("Browsing session reset", "error", err)
	}
	if session == nil {
		return ""
	}
	if id, ok := session.Values[sessionIDKey].(string); ok && id != "" {
		return id
	}

	id := uuid.NewString()
	session.Values[sessionIDKey] = id
	if err := session.Save(c.Request, c.Writer); err != nil {
		slog.Warn("Failed to save browsing session", "error", err)
		return ""
	}
	return id
}
