package storage

import (
	"context"

	"citizenpulse/backend/internal/apperr"
	"citizenpulse/backend/internal/models"

	"gorm.io/gorm"
)

// ToggleUpvote flips the (report, user) membership and moves upvotes_count with it,
// all in one transaction. It returns the new membership state and the fresh count.
// A concurrent insert of the same membership surfaces as apperr.ErrConflict.
func (s *Service) ToggleUpvote(ctx context.Context, reportID, userID string) (bool, int, error) {
	if !validID(reportID) {
		return false, 0, apperr.ErrNotFound
	}

	var upvoted bool
	var count int
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		del := tx.Where("report_id = ? AND user_id = ?", reportID, userID).Delete(&models.ReportUpvote{})
		if del.Error != nil {
			return del.Error
		}

		delta := gorm.Expr("upvotes_count - 1")
		if del.RowsAffected == 0 {
			delta = gorm.Expr("upvotes_count + 1")
			upvoted = true
		}

		res := tx.Model(&models.Report{}).Where("id = ?", reportID).Update("upvotes_count", delta)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.ErrNotFound
		}

		if upvoted {
			if err := tx.Create(&models.ReportUpvote{ReportID: reportID, UserID: userID}).Error; err != nil {
				return err
			}
		}

		return tx.Model(&models.Report{}).Select("upvotes_count").Where("id = ?", reportID).Scan(&count).Error
	})
	if err != nil {
		return false, 0, translate(err, "toggle upvote")
	}
	return upvoted, count, nil
}

// HasUpvoted reports whether the user currently upvotes the report.
func (s *Service) HasUpvoted(ctx context.Context, reportID, userID string) (bool, error) {
	if !validID(reportID) || !validID(userID) {
		return false, nil
	}
	var n int64
	err := s.DB.WithContext(ctx).Model(&models.ReportUpvote{}).
		Where("report_id = ? AND user_id = ?", reportID, userID).
		Count(&n).Error
	if err != nil {
		return false, translate(err, "check upvote")
	}
	return n > 0, nil
}

// UpvotedReportIDs returns the subset of reportIDs the user upvotes.
func (s *Service) UpvotedReportIDs(ctx context.Context, userID string, reportIDs []string) (map[string]bool, error) {
	result := make(map[string]bool, len(reportIDs))
	if len(reportIDs) == 0 || !validID(userID) {
		return result, nil
	}
	var ids []string
	err := s.DB.WithContext(ctx).Model(&models.ReportUpvote{}).
		Where("user_id = ? AND report_id IN ?", userID, reportIDs).
		Pluck("report_id", &ids).Error
	if err != nil {
		return nil, translate(err, "list upvotes")
	}
	for _, id := range ids {
		result[id] = true
	}
	return result, nil
}
