// Package analysis computes the aggregate counters shown on the staff dashboard.
package analysis

import (
	"context"

	"citizenpulse/backend/internal/models"
)

// ActiveStatuses are the statuses counted as work in progress.
var ActiveStatuses = []models.ReportStatus{models.StatusUnderReview, models.StatusInProgress}

// Counter is the subset of storage the dashboard needs.
type Counter interface {
	CountReports(ctx context.Context, statuses ...models.ReportStatus) (int64, error)
}

// DashboardStats holds the report totals by workflow bucket.
type DashboardStats struct {
	Total    int64 `json:"total"`
	New      int64 `json:"new"`
	Active   int64 `json:"active"`
	Resolved int64 `json:"resolved"`
}

// Dashboard counts all reports, new ones, active ones (under review or in progress)
// and resolved ones.
func Dashboard(ctx context.Context, c Counter) (*DashboardStats, error) {
	var stats DashboardStats
	var err error

	if stats.Total, err = c.CountReports(ctx); err != nil {
		return nil, err
	}
	if stats.New, err = c.CountReports(ctx, models.StatusNew); err != nil {
		return nil, err
	}
	if stats.Active, err = c.CountReports(ctx, ActiveStatuses...); err != nil {
		return nil, err
	}
	if stats.Resolved, err = c.CountReports(ctx, models.StatusResolved); err != nil {
		return nil, err
	}
	return &stats, nil
}
