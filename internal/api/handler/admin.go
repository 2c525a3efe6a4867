package handler

import (
	"net/http"

	"citizenpulse/backend/internal/models"
	"citizenpulse/backend/internal/report"

	"github.com/gin-gonic/gin"
)

type statusRequest struct {
	Status models.ReportStatus `json:"status"`
	Note   string              `json:"note"`
}

type priorityRequest struct {
	Priority models.ReportPriority `json:"priority"`
}

// Stats serves the dashboard counters.
func (h *Handler) Stats(c *gin.Context) {
	stats, err := h.Reports.Stats(c.Request.Context(), actorFrom(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// AdminReports lists reports with ?status=, ?q= and ?page=.
func (h *Handler) AdminReports(c *gin.Context) {
	page, err := h.Reports.AdminList(c.Request.Context(), actorFrom(c), report.AdminQuery{
		Status: c.Query("status"),
		Q:      c.Query("q"),
		Page:   pageParam(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// AdminUsers lists citizen profiles with ?q= and ?page=.
func (h *Handler) AdminUsers(c *gin.Context) {
	page, err := h.Reports.Users(c.Request.Context(), actorFrom(c), report.UserQuery{
		Q:    c.Query("q"),
		Page: pageParam(c),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// ChangeStatus moves a report through the workflow. An unchanged status answers 200 with no entry.
func (h *Handler) ChangeStatus(c *gin.Context) {
	var req statusRequest
	if !bindJSON(c, &req) {
		return
	}

	entry, err := h.Workflow.ChangeStatus(c.Request.Context(), actorFrom(c), c.Param("id"), req.Status, req.Note)
	if err != nil {
		respondError(c, err)
		return
	}
	if entry == nil {
		c.JSON(http.StatusOK, gin.H{"changed": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"changed": true, "update": entry})
}

// ChangePriority sets a report's priority.
func (h *Handler) ChangePriority(c *gin.Context) {
	var req priorityRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.Workflow.ChangePriority(c.Request.Context(), actorFrom(c), c.Param("id"), req.Priority); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// PostUpdate appends an official update.
func (h *Handler) PostUpdate(c *gin.Context) {
	var req messageRequest
	if !bindJSON(c, &req) {
		return
	}

	entry, err := h.Workflow.PostOfficialUpdate(c.Request.Context(), actorFrom(c), c.Param("id"), req.Message)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}
