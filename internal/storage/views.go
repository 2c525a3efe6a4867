package storage

import (
	"context"
	"time"

	"citizenpulse/backend/internal/apperr"
	"citizenpulse/backend/internal/models"

	"gorm.io/gorm"
)

func viewKey(sessionID, reportID string) string {
	return "viewed:" + sessionID + ":" + reportID
}

// MarkViewed sets the (session, report) view marker if it is absent and reports whether it
// was newly set. Without Redis every view is treated as new.
func (s *Service) MarkViewed(ctx context.Context, sessionID, reportID string, ttl time.Duration) (bool, error) {
	if s.Redis == nil {
		return true, nil
	}
	return s.Redis.SetNX(ctx, viewKey(sessionID, reportID), 1, ttl).Result()
}

// IncrementViews bumps views_count with a single atomic update.
func (s *Service) IncrementViews(ctx context.Context, reportID string) error {
	if !validID(reportID) {
		return apperr.ErrNotFound
	}
	res := s.DB.WithContext(ctx).Model(&models.Report{}).
		Where("id = ?", reportID).
		UpdateColumn("views_count", gorm.Expr("views_count + 1"))
	if res.Error != nil {
		return translate(res.Error, "increment views")
	}
	if res.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
