// Package workflow provides the role-gated operations staff use to triage reports:
// status transitions, priority changes and official updates.
package workflow

import (
	"context"
	"log/slog"
	"strings"

	"citizenpulse/backend/internal/apperr"
	"citizenpulse/backend/internal/auth"
	"citizenpulse/backend/internal/config"
	"citizenpulse/backend/internal/events"
	"citizenpulse/backend/internal/metrics"
	"citizenpulse/backend/internal/models"
	"citizenpulse/backend/internal/storage"
	"citizenpulse/backend/internal/validation"
)

// Authority handles the business logic for staff workflow operations.
// Every operation checks the actor's role before touching storage.
type Authority struct {
	Storage storage.Storage
	Events  events.Publisher
}

// NewAuthority creates a new workflow authority.
func NewAuthority(s storage.Storage, pub events.Publisher) *Authority {
	return &Authority{Storage: s, Events: pub}
}

// ChangeStatus moves a report to newStatus and records a status_change entry in the same
// transaction. Setting the current status again is a successful no-op. An empty note
// produces "Status changed from X to Y". It returns the entry written, or nil for a no-op.
func (a *Authority) ChangeStatus(ctx context.Context, actor *auth.Actor, reportID string, newStatus models.ReportStatus, note string) (*models.ReportUpdate, error) {
	if err := auth.RequireStaff(actor); err != nil {
		return nil, err
	}
	if !newStatus.Valid() {
		return nil, apperr.Invalid("status", "is not a known status")
	}

	note = strings.TrimSpace(note)
	verr := &apperr.ValidationError{}
	validation.Length(verr, "note", note, 0, config.CommentMaxLength)
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	r, err := a.Storage.GetReport(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if !r.HasWorkflow() {
		return nil, apperr.Invalid("status", "compliments have no workflow status")
	}
	if r.Status == newStatus {
		return nil, nil
	}

	update := models.NewStatusChange(r.ID, actor.UserID, r.Status, newStatus, note)
	if err := a.Storage.ApplyStatusChange(ctx, update); err != nil {
		return nil, err
	}

	slog.Info("Report status changed", "report_id", r.ID, "from", r.Status, "to", newStatus, "actor_id", actor.UserID)
	metrics.StatusChanges.WithLabelValues(string(newStatus)).Inc()
	events.Emit(ctx, a.Events, models.ChangeStatusChanged, r.ID)
	events.Emit(ctx, a.Events, models.ChangeUpdateAppended, r.ID)
	return update, nil
}

// ChangePriority overwrites a report's priority. No update log entry is written.
func (a *Authority) ChangePriority(ctx context.Context, actor *auth.Actor, reportID string, priority models.ReportPriority) error {
	if err := auth.RequireStaff(actor); err != nil {
		return err
	}
	if !priority.Valid() {
		return apperr.Invalid("priority", "is not a known priority")
	}

	if err := a.Storage.SetPriority(ctx, reportID, priority); err != nil {
		return err
	}

	slog.Info("Report priority changed", "report_id", reportID, "priority", priority, "actor_id", actor.UserID)
	events.Emit(ctx, a.Events, models.ChangePriorityChanged, reportID)
	return nil
}

// PostOfficialUpdate appends an official note to a report without touching its status
// or priority.
func (a *Authority) PostOfficialUpdate(ctx context.Context, actor *auth.Actor, reportID, message string) (*models.ReportUpdate, error) {
	if err := auth.RequireStaff(actor); err != nil {
		return nil, err
	}

	message = strings.TrimSpace(message)
	verr := &apperr.ValidationError{}
	validation.Length(verr, "message", message, 1, config.CommentMaxLength)
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	update := &models.ReportUpdate{
		ReportID:   reportID,
		UserID:     actor.UserID,
		UpdateType: models.UpdateTypeOfficialUpdate,
		Message:    message,
		IsOfficial: true,
	}
	if err := a.Storage.AppendUpdate(ctx, update); err != nil {
		return nil, err
	}

	slog.Info("Official update posted", "report_id", reportID, "actor_id", actor.UserID)
	events.Emit(ctx, a.Events, models.ChangeUpdateAppended, reportID)
	return update, nil
}
