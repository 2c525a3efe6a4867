package storage

import (
	"context"

	"citizenpulse/backend/internal/apperr"
	"citizenpulse/backend/internal/models"
)

// CreateProfile inserts a profile. A taken username yields apperr.ErrConflict.
func (s *Service) CreateProfile(ctx context.Context, profile *models.Profile) error {
	return translate(s.DB.WithContext(ctx).Create(profile).Error, "create profile")
}

// GetProfile loads a profile by id.
func (s *Service) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	if !validID(id) {
		return nil, apperr.ErrNotFound
	}
	var p models.Profile
	if err := s.DB.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, translate(err, "get profile")
	}
	return &p, nil
}

// GetProfileByUsername loads a profile by its unique username.
func (s *Service) GetProfileByUsername(ctx context.Context, username string) (*models.Profile, error) {
	var p models.Profile
	if err := s.DB.WithContext(ctx).First(&p, "username = ?", username).Error; err != nil {
		return nil, translate(err, "get profile by username")
	}
	return &p, nil
}

// UpdateProfileRole changes the role of a profile.
func (s *Service) UpdateProfileRole(ctx context.Context, id string, role models.UserRole) error {
	if !validID(id) {
		return apperr.ErrNotFound
	}
	res := s.DB.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", id).Update("role", role)
	if res.Error != nil {
		return translate(res.Error, "update profile role")
	}
	if res.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

// ListProfiles returns a page of profiles, newest first, and the total matching the filter.
func (s *Service) ListProfiles(ctx context.Context, filter ProfileFilter) ([]models.Profile, int64, error) {
	q := s.DB.WithContext(ctx).Model(&models.Profile{})
	if filter.Role != "" {
		q = q.Where("role = ?", filter.Role)
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		q = q.Where("username ILIKE ? OR full_name ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, translate(err, "count profiles")
	}

	var profiles []models.Profile
	page := q.Order("created_at DESC")
	if filter.Limit > 0 {
		page = page.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		page = page.Offset(filter.Offset)
	}
	if err := page.Find(&profiles).Error; err != nil {
		return nil, 0, translate(err, "list profiles")
	}
	return profiles, total, nil
}
