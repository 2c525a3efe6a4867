package storage

import (
	"context"

	"citizenpulse/backend/internal/apperr"
	"citizenpulse/backend/internal/models"

	"gorm.io/gorm"
)

// AppendUpdate inserts a log entry and bumps the report's updates_count in the same transaction.
func (s *Service) AppendUpdate(ctx context.Context, update *models.ReportUpdate) error {
	if !validID(update.ReportID) {
		return apperr.ErrNotFound
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Report{}).
			Where("id = ?", update.ReportID).
			Updates(map[string]interface{}{
				"updates_count": gorm.Expr("updates_count + 1"),
				"updated_at":    gorm.Expr("NOW()"),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.ErrNotFound
		}
		return tx.Omit("Author").Create(update).Error
	})
	return translate(err, "append update")
}

// ApplyStatusChange records a status_change entry and moves the report from
// *update.OldStatus to *update.NewStatus atomically. The status write is guarded by the
// old value, so a concurrent transition makes the whole transaction fail with ErrConflict.
func (s *Service) ApplyStatusChange(ctx context.Context, update *models.ReportUpdate) error {
	if update.OldStatus == nil || update.NewStatus == nil {
		return apperr.Invalid("status", "old and new status are required")
	}
	if !validID(update.ReportID) {
		return apperr.ErrNotFound
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Report{}).
			Where("id = ? AND status = ?", update.ReportID, *update.OldStatus).
			Updates(map[string]interface{}{
				"status":        *update.NewStatus,
				"updates_count": gorm.Expr("updates_count + 1"),
				"updated_at":    gorm.Expr("NOW()"),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var exists int64
			if err := tx.Model(&models.Report{}).Where("id = ?", update.ReportID).Count(&exists).Error; err != nil {
				return err
			}
			if exists == 0 {
				return apperr.ErrNotFound
			}
			return apperr.ErrConflict
		}
		return tx.Omit("Author").Create(update).Error
	})
	return translate(err, "apply status change")
}

// SetPriority overwrites the report priority. No log entry is written.
func (s *Service) SetPriority(ctx context.Context, reportID string, priority models.ReportPriority) error {
	if !validID(reportID) {
		return apperr.ErrNotFound
	}
	res := s.DB.WithContext(ctx).Model(&models.Report{}).
		Where("id = ?", reportID).
		Updates(map[string]interface{}{
			"priority":   priority,
			"updated_at": gorm.Expr("NOW()"),
		})
	if res.Error != nil {
		return translate(res.Error, "set priority")
	}
	if res.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// ListUpdates returns the update log of a report, oldest first, with authors.
func (s *Service) ListUpdates(ctx context.Context, reportID string) ([]models.ReportUpdate, error) {
	if !validID(reportID) {
		return nil, apperr.ErrNotFound
	}
	var updates []models.ReportUpdate
	err := s.DB.WithContext(ctx).
		Preload("Author").
		Where("report_id = ?", reportID).
		Order("created_at ASC").
		Find(&updates).Error
	if err != nil {
		return nil, translate(err, "list updates")
	}
	return updates, nil
}
