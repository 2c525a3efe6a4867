// Package report implements the citizen-facing operations on reports: submission,
// comments, upvotes, view counting and the read models behind the feed and admin lists.
package report

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"citizenpulse/backend/internal/apperr"
	"citizenpulse/backend/internal/auth"
	"citizenpulse/backend/internal/catalog"
	"citizenpulse/backend/internal/config"
	"citizenpulse/backend/internal/events"
	"citizenpulse/backend/internal/metrics"
	"citizenpulse/backend/internal/models"
	"citizenpulse/backend/internal/storage"
	"citizenpulse/backend/internal/validation"

	"github.com/google/uuid"
)

// UpvoteResult is the membership state after a toggle.
type UpvoteResult struct {
	Upvoted bool `json:"upvoted"`
	Count   int  `json:"upvotes_count"`
}

// Service handles report operations available to citizens and visitors.
type Service struct {
	Storage storage.Storage
	Catalog *catalog.Catalog
	Events  events.Publisher
	ViewTTL time.Duration
}

// NewService creates a new report service.
func NewService(s storage.Storage, cat *catalog.Catalog, pub events.Publisher, viewTTL time.Duration) *Service {
	if viewTTL <= 0 {
		viewTTL = config.DefaultViewSessionTTL
	}
	return &Service{Storage: s, Catalog: cat, Events: pub, ViewTTL: viewTTL}
}

// Submit validates a draft and creates the report. Anonymous callers always produce
// anonymous reports with no owner.
func (s *Service) Submit(ctx context.Context, actor *auth.Actor, d Draft) (*models.Report, error) {
	d = d.normalize()
	if err := d.validate(s.Catalog); err != nil {
		return nil, err
	}

	var userID *string
	anonymous := d.IsAnonymous
	if actor == nil {
		anonymous = true
	} else {
		id := actor.UserID
		userID = &id
	}

	r := d.toReport(userID, anonymous)
	if err := s.Storage.CreateReport(ctx, r); err != nil {
		return nil, err
	}

	slog.Info("Report submitted", "report_id", r.ID, "report_number", r.ReportNumber, "type", r.ReportType, "actor_id", actor.ID())
	metrics.ReportsSubmitted.WithLabelValues(string(r.ReportType)).Inc()
	events.Emit(ctx, s.Events, models.ChangeReportCreated, r.ID)
	return r, nil
}

// Comment appends a non-official comment to a report's update log.
func (s *Service) Comment(ctx context.Context, actor *auth.Actor, reportID, message string) (*models.ReportUpdate, error) {
	if err := auth.RequireUser(actor); err != nil {
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
		UpdateType: models.UpdateTypeComment,
		Message:    message,
		IsOfficial: false,
	}
	if err := s.Storage.AppendUpdate(ctx, update); err != nil {
		return nil, err
	}

	events.Emit(ctx, s.Events, models.ChangeUpdateAppended, reportID)
	return update, nil
}

// ToggleUpvote flips the actor's upvote on a report. A duplicate membership created by a
// concurrent toggle is reported as "already upvoted".
func (s *Service) ToggleUpvote(ctx context.Context, actor *auth.Actor, reportID string) (UpvoteResult, error) {
	if err := auth.RequireUser(actor); err != nil {
		return UpvoteResult{}, err
	}

	upvoted, count, err := s.Storage.ToggleUpvote(ctx, reportID, actor.UserID)
	if errors.Is(err, apperr.ErrConflict) {
		r, getErr := s.Storage.GetReport(ctx, reportID)
		if getErr != nil {
			return UpvoteResult{}, getErr
		}
		slog.Debug("Concurrent upvote resolved as already upvoted", "report_id", reportID, "actor_id", actor.UserID)
		return UpvoteResult{Upvoted: true, Count: r.UpvotesCount}, nil
	}
	if err != nil {
		return UpvoteResult{}, err
	}

	action := "removed"
	if upvoted {
		action = "added"
	}
	metrics.UpvoteToggles.WithLabelValues(action).Inc()
	events.Emit(ctx, s.Events, models.ChangeUpvotesChanged, reportID)
	return UpvoteResult{Upvoted: upvoted, Count: count}, nil
}

// RecordView counts a view at most once per browsing session. It reports whether the
// counter moved. Malformed ids are rejected before any marker is written.
// De-duplication is best effort: if the marker store fails the view counts.
func (s *Service) RecordView(ctx context.Context, sessionID, reportID string) (bool, error) {
	if _, err := uuid.Parse(reportID); err != nil {
		return false, apperr.ErrNotFound
	}
	if sessionID != "" {
		fresh, err := s.Storage.MarkViewed(ctx, sessionID, reportID, s.ViewTTL)
		if err != nil {
			slog.Warn("View de-duplication unavailable", "report_id", reportID, "error", err)
		} else if !fresh {
			return false, nil
		}
	}

	if err := s.Storage.IncrementViews(ctx, reportID); err != nil {
		return false, err
	}
	metrics.ReportViews.Inc()
	return true, nil
}
