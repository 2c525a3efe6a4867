package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"citizenpulse/backend/internal/apperr"
	"citizenpulse/backend/internal/report"

	"github.com/gin-gonic/gin"
)

// LoginURL is sent with 401 answers so clients can send the user to sign in.
const LoginURL = "/api/v1/auth/login"

type messageRequest struct {
	Message string `json:"message"`
}

// ListReports serves the public feed.
func (h *Handler) ListReports(c *gin.Context) {
	page, err := h.Reports.Feed(c.Request.Context(), actorFrom(c), pageParam(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// CreateReport submits a report for the caller, or anonymously without a token.
func (h *Handler) CreateReport(c *gin.Context) {
	var draft report.Draft
	if !bindJSON(c, &draft) {
		return
	}

	created, err := h.Reports.Submit(c.Request.Context(), actorFrom(c), draft)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// GetReport returns the report with its update log and counts a view for the browsing
// session. Unknown reports answer 404 before any view marker is written.
func (h *Handler) GetReport(c *gin.Context) {
	id := c.Param("id")
	ctx := c.Request.Context()

	detail, err := h.Reports.Detail(ctx, actorFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	counted, err := h.Reports.RecordView(ctx, h.browsingSession(c), id)
	if err != nil {
		slog.Warn("Failed to count view", "report_id", id, "error", err)
	} else if counted {
		detail.Report.ViewsCount++
	}
	c.JSON(http.StatusOK, detail)
}

// ToggleUpvote flips the caller's upvote.
func (h *Handler) ToggleUpvote(c *gin.Context) {
	result, err := h.Reports.ToggleUpvote(c.Request.Context(), actorFrom(c), c.Param("id"))
	if errors.Is(err, apperr.ErrUnauthenticated) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error":     apperr.ErrUnauthenticated.Error(),
			"login_url": LoginURL,
		})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// AddComment appends a comment to the report's update log.
func (h *Handler) AddComment(c *gin.Context) {
	var req messageRequest
	if !bindJSON(c, &req) {
		return
	}

	update, err := h.Reports.Comment(c.Request.Context(), actorFrom(c), c.Param("id"), req.Message)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, update)
}
