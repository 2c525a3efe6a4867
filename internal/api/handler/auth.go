package handler

import (
	"net/http"

	"citizenpulse/backend/internal/auth"

	"github.com/gin-gonic/gin"
)

// Register creates a citizen account.
func (h *Handler) Register(c *gin.Context) {
	var in auth.RegisterInput
	if !bindJSON(c, &in) {
		return
	}

	profile, err := h.Auth.Register(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, profile)
}

// Login exchanges credentials for a bearer token.
func (h *Handler) Login(c *gin.Context) {
	var in auth.LoginInput
	if !bindJSON(c, &in) {
		return
	}

	session, err := h.Auth.Login(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// Me returns the caller's profile.
func (h *Handler) Me(c *gin.Context) {
	profile, err := h.Auth.Profile(c.Request.Context(), actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}
