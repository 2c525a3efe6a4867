// Package handler exposes the report services over HTTP.
package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"citizenpulse/backend/internal/apperr"
	"citizenpulse/backend/internal/auth"
	"citizenpulse/backend/internal/catalog"
	"citizenpulse/backend/internal/events"
	"citizenpulse/backend/internal/report"
	"citizenpulse/backend/internal/workflow"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
)

const actorKey = "actor"

// Handler holds the services the routes dispatch to.
type Handler struct {
	Auth     *auth.Service
	Reports  *report.Service
	Workflow *workflow.Authority
	Catalog  *catalog.Catalog
	Hub      *events.Hub
	Sessions sessions.Store
}

func NewHandler(authSvc *auth.Service, reports *report.Service, wf *workflow.Authority, cat *catalog.Catalog, hub *events.Hub, store sessions.Store) *Handler {
	return &Handler{
		Auth:     authSvc,
		Reports:  reports,
		Workflow: wf,
		Catalog:  cat,
		Hub:      hub,
		Sessions: store,
	}
}

// GetCatalog returns the static reference data.
func (h *Handler) GetCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, h.Catalog.Snapshot())
}

// Health is the liveness probe.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// actorFrom returns the actor the auth middleware resolved, or nil for anonymous requests.
func actorFrom(c *gin.Context) *auth.Actor {
	v, ok := c.Get(actorKey)
	if !ok {
		return nil
	}
	actor, _ := v.(*auth.Actor)
	return actor
}

// respondError writes the error envelope. Internal failures are logged and reported generically.
func respondError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		slog.Error("Request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
	}

	body := gin.H{"error": apperr.PublicMessage(err)}
	var verr *apperr.ValidationError
	if errors.As(err, &verr) {
		body["error"] = apperr.ErrValidation.Error()
		body["fields"] = verr.Fields
	}
	c.AbortWithStatusJSON(status, body)
}

// bindJSON decodes the request body, answering 400 on malformed JSON.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, apperr.Invalid("body", "malformed JSON"))
		return false
	}
	return true
}

// pageParam reads ?page=, defaulting to 1.
func pageParam(c *gin.Context) int {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
