// Package testutil holds test doubles and container helpers shared by package tests.
package testutil

import (
	"context"
	"time"

	"citizenpulse/backend/internal/models"
	"citizenpulse/backend/internal/storage"

	"github.com/stretchr/testify/mock"
)

// MockStorage is a testify mock of storage.Storage.
type MockStorage struct {
	mock.Mock
}

var _ storage.Storage = (*MockStorage)(nil)

func (m *MockStorage) CreateReport(ctx context.Context, report *models.Report) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func (m *MockStorage) GetReport(ctx context.Context, id string) (*models.Report, error) {
	args := m.Called(ctx, id)
	if r, ok := args.Get(0).(*models.Report); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStorage) GetReportByNumber(ctx context.Context, number string) (*models.Report, error) {
	args := m.Called(ctx, number)
	if r, ok := args.Get(0).(*models.Report); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStorage) ListReports(ctx context.Context, filter storage.ReportFilter) ([]models.Report, int64, error) {
	args := m.Called(ctx, filter)
	reports, _ := args.Get(0).([]models.Report)
	return reports, args.Get(1).(int64), args.Error(2)
}

func (m *MockStorage) CountReports(ctx context.Context, statuses ...models.ReportStatus) (int64, error) {
	args := m.Called(ctx, statuses)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStorage) AppendUpdate(ctx context.Context, update *models.ReportUpdate) error {
	args := m.Called(ctx, update)
	return args.Error(0)
}

func (m *MockStorage) ApplyStatusChange(ctx context.Context, update *models.ReportUpdate) error {
	args := m.Called(ctx, update)
	return args.Error(0)
}

func (m *MockStorage) SetPriority(ctx context.Context, reportID string, priority models.ReportPriority) error {
	args := m.Called(ctx, reportID, priority)
	return args.Error(0)
}

func (m *MockStorage) ListUpdates(ctx context.Context, reportID string) ([]models.ReportUpdate, error) {
	args := m.Called(ctx, reportID)
	updates, _ := args.Get(0).([]models.ReportUpdate)
	return updates, args.Error(1)
}

func (m *MockStorage) ToggleUpvote(ctx context.Context, reportID, userID string) (bool, int, error) {
	args := m.Called(ctx, reportID, userID)
	return args.Bool(0), args.Int(1), args.Error(2)
}

func (m *MockStorage) HasUpvoted(ctx context.Context, reportID, userID string) (bool, error) {
	args := m.Called(ctx, reportID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) UpvotedReportIDs(ctx context.Context, userID string, reportIDs []string) (map[string]bool, error) {
	args := m.Called(ctx, userID, reportIDs)
	ids, _ := args.Get(0).(map[string]bool)
	return ids, args.Error(1)
}

func (m *MockStorage) MarkViewed(ctx context.Context, sessionID, reportID string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, sessionID, reportID, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) IncrementViews(ctx context.Context, reportID string) error {
	args := m.Called(ctx, reportID)
	return args.Error(0)
}

func (m *MockStorage) CreateProfile(ctx context.Context, profile *models.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func (m *MockStorage) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	args := m.Called(ctx, id)
	if p, ok := args.Get(0).(*models.Profile); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStorage) GetProfileByUsername(ctx context.Context, username string) (*models.Profile, error) {
	args := m.Called(ctx, username)
	if p, ok := args.Get(0).(*models.Profile); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStorage) UpdateProfileRole(ctx context.Context, id string, role models.UserRole) error {
	args := m.Called(ctx, id, role)
	return args.Error(0)
}

func (m *MockStorage) ListProfiles(ctx context.Context, filter storage.ProfileFilter) ([]models.Profile, int64, error) {
	args := m.Called(ctx, filter)
	profiles, _ := args.Get(0).([]models.Profile)
	return profiles, args.Get(1).(int64), args.Error(2)
}
