package storage

import (
	"context"
	"fmt"

	"citizenpulse/backend/internal/apperr"
	"citizenpulse/backend/internal/config"
	"citizenpulse/backend/internal/models"

	"gorm.io/gorm"
)

// FormatReportNumber renders a sequence value as a human-facing report number.
func FormatReportNumber(seq int64) string {
	return fmt.Sprintf("%s%06d", config.ReportNumberPrefix, seq)
}

// CreateReport draws the next report number and inserts the report in one transaction.
func (s *Service) CreateReport(ctx context.Context, report *models.Report) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var seq int64
		if err := tx.Raw("SELECT nextval(?)", config.ReportNumberSequence).Scan(&seq).Error; err != nil {
			return err
		}
		report.ReportNumber = FormatReportNumber(seq)
		return tx.Omit("Author").Create(report).Error
	})
	return translate(err, "create report")
}

// GetReport loads a report with its author profile.
func (s *Service) GetReport(ctx context.Context, id string) (*models.Report, error) {
	if !validID(id) {
		return nil, apperr.ErrNotFound
	}
	var report models.Report
	err := s.DB.WithContext(ctx).Preload("Author").First(&report, "id = ?", id).Error
	if err != nil {
		return nil, translate(err, "get report")
	}
	return &report, nil
}

// GetReportByNumber loads a report by its CP-XXXXXX number.
func (s *Service) GetReportByNumber(ctx context.Context, number string) (*models.Report, error) {
	var report models.Report
	err := s.DB.WithContext(ctx).Preload("Author").First(&report, "report_number = ?", number).Error
	if err != nil {
		return nil, translate(err, "get report by number")
	}
	return &report, nil
}

// ListReports returns a page of reports, newest first, and the total matching the filter.
func (s *Service) ListReports(ctx context.Context, filter ReportFilter) ([]models.Report, int64, error) {
	q := s.DB.WithContext(ctx).Model(&models.Report{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		q = q.Where("title ILIKE ? OR report_number ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err, "count reports")
	}

	var reports []models.Report
	page := q.Preload("Author").Order("created_at DESC")
	if filter.Limit > 0 {
		page = page.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		page = page.Offset(filter.Offset)
	}
	if err := page.Find(&reports).Error; err != nil {
		return nil, 0, translate(err, "list reports")
	}
	return reports, total, nil
}

// CountReports counts reports whose status is one of statuses, or all reports when none are given.
func (s *Service) CountReports(ctx context.Context, statuses ...models.ReportStatus) (int64, error) {
	q := s.DB.WithContext(ctx).Model(&models.Report{})
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return 0, translate(err, "count reports")
	}
	return n, nil
}
