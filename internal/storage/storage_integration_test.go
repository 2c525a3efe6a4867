package storage_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"citizenpulse/backend/internal/apperr"
	"citizenpulse/backend/internal/models"
	"citizenpulse/backend/internal/storage"
	"citizenpulse/backend/internal/testutil"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) *storage.Service {
	t.Helper()
	return storage.NewStorageService(testutil.SetupPostgres(t), nil)
}

func seedProfile(t *testing.T, s *storage.Service, username string, role models.UserRole) *models.Profile {
	t.Helper()
	p := &models.Profile{Username: username, FullName: username + " Doe", Role: role, PasswordHash: "x"}
	require.NoError(t, s.CreateProfile(context.Background(), p))
	return p
}

func seedReport(t *testing.T, s *storage.Service, author *models.Profile, title string) *models.Report {
	t.Helper()
	r := &models.Report{
		ReportType:    models.ReportTypeIssue,
		Category:      "roads",
		Title:         title,
		Description:   "Large pothole",
		AffectedAreas: pq.StringArray{"Main St"},
		Status:        models.StatusNew,
	}
	if author != nil {
		r.UserID = &author.ID
	}
	require.NoError(t, s.CreateReport(context.Background(), r))
	return r
}

func TestStore_Integration(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	citizen := seedProfile(t, s, "citizen1", models.RoleCitizen)
	admin := seedProfile(t, s, "admin1", models.RoleAdmin)

	t.Run("report numbers are sequential", func(t *testing.T) {
		a := seedReport(t, s, citizen, "Pothole on Main St")
		b := seedReport(t, s, nil, "Broken lamp")

		assert.Regexp(t, `^CP-\d{6}$`, a.ReportNumber)
		assert.NotEqual(t, a.ReportNumber, b.ReportNumber)

		got, err := s.GetReportByNumber(ctx, a.ReportNumber)
		require.NoError(t, err)
		assert.Equal(t, a.ID, got.ID)
		require.NotNil(t, got.Author)
		assert.Equal(t, "citizen1", got.Author.Username)
	})

	t.Run("unknown report is not found", func(t *testing.T) {
		_, err := s.GetReport(ctx, uuid.NewString())
		assert.ErrorIs(t, err, apperr.ErrNotFound)

		_, err = s.GetReport(ctx, "not-a-uuid")
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("updates_count tracks the log", func(t *testing.T) {
		r := seedReport(t, s, citizen, "Graffiti")
		for i := 0; i < 3; i++ {
			require.NoError(t, s.AppendUpdate(ctx, &models.ReportUpdate{
				ReportID:   r.ID,
				UserID:     citizen.ID,
				UpdateType: models.UpdateTypeComment,
				Message:    "me too",
			}))
		}

		got, err := s.GetReport(ctx, r.ID)
		require.NoError(t, err)
		updates, err := s.ListUpdates(ctx, r.ID)
		require.NoError(t, err)
		assert.Len(t, updates, 3)
		assert.Equal(t, len(updates), got.UpdatesCount)
	})

	t.Run("status change is guarded by the old status", func(t *testing.T) {
		r := seedReport(t, s, citizen, "Flooded underpass")

		update := models.NewStatusChange(r.ID, admin.ID, models.StatusNew, models.StatusUnderReview, "")
		require.NoError(t, s.ApplyStatusChange(ctx, update))

		stale := models.NewStatusChange(r.ID, admin.ID, models.StatusNew, models.StatusResolved, "")
		err := s.ApplyStatusChange(ctx, stale)
		assert.ErrorIs(t, err, apperr.ErrConflict)

		got, err := s.GetReport(ctx, r.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatusUnderReview, got.Status)
		assert.Equal(t, 1, got.UpdatesCount, "rolled back transaction must not leave an entry")

		updates, err := s.ListUpdates(ctx, r.ID)
		require.NoError(t, err)
		require.Len(t, updates, 1)
		assert.Equal(t, "Status changed from new to under_review", updates[0].Message)
		require.NotNil(t, updates[0].Author)
		assert.Equal(t, models.RoleAdmin, updates[0].Author.Role)
	})

	t.Run("toggle twice restores the count", func(t *testing.T) {
		r := seedReport(t, s, citizen, "Missing sign")

		upvoted, count, err := s.ToggleUpvote(ctx, r.ID, admin.ID)
		require.NoError(t, err)
		assert.True(t, upvoted)
		assert.Equal(t, 1, count)

		has, err := s.HasUpvoted(ctx, r.ID, admin.ID)
		require.NoError(t, err)
		assert.True(t, has)

		upvoted, count, err = s.ToggleUpvote(ctx, r.ID, admin.ID)
		require.NoError(t, err)
		assert.False(t, upvoted)
		assert.Equal(t, 0, count)
	})

	t.Run("concurrent upvotes keep the count equal to the memberships", func(t *testing.T) {
		r := seedReport(t, s, citizen, "Crowded bus stop")
		voters := make([]*models.Profile, 8)
		for i := range voters {
			voters[i] = seedProfile(t, s, "voter"+uuid.NewString()[:8], models.RoleCitizen)
		}

		var wg sync.WaitGroup
		for _, v := range voters {
			wg.Add(1)
			go func(userID string) {
				defer wg.Done()
				_, _, _ = s.ToggleUpvote(ctx, r.ID, userID)
			}(v.ID)
		}
		wg.Wait()

		got, err := s.GetReport(ctx, r.ID)
		require.NoError(t, err)
		members := 0
		for _, v := range voters {
			has, err := s.HasUpvoted(ctx, r.ID, v.ID)
			require.NoError(t, err)
			if has {
				members++
			}
		}
		assert.Equal(t, members, got.UpvotesCount)
		assert.Equal(t, len(voters), members)
	})

	t.Run("views increment", func(t *testing.T) {
		r := seedReport(t, s, citizen, "Noise")

		viewed, err := s.MarkViewed(ctx, "session", r.ID, time.Hour)
		require.NoError(t, err)
		assert.True(t, viewed, "without redis every view counts")
		require.NoError(t, s.IncrementViews(ctx, r.ID))
		require.NoError(t, s.IncrementViews(ctx, r.ID))

		got, err := s.GetReport(ctx, r.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, got.ViewsCount)

		assert.ErrorIs(t, s.IncrementViews(ctx, uuid.NewString()), apperr.ErrNotFound)
	})

	t.Run("admin listing filters and searches", func(t *testing.T) {
		seedReport(t, s, citizen, "Streetlight 100% dark")

		reports, total, err := s.ListReports(ctx, storage.ReportFilter{Search: "100%", Limit: 20})
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
		require.Len(t, reports, 1)
		assert.Equal(t, "Streetlight 100% dark", reports[0].Title)

		_, underReview, err := s.ListReports(ctx, storage.ReportFilter{Status: models.StatusUnderReview})
		require.NoError(t, err)
		n, err := s.CountReports(ctx, models.StatusUnderReview)
		require.NoError(t, err)
		assert.Equal(t, n, underReview)
	})

	t.Run("profiles", func(t *testing.T) {
		err := s.CreateProfile(ctx, &models.Profile{Username: "citizen1", PasswordHash: "x"})
		assert.ErrorIs(t, err, apperr.ErrConflict)

		require.NoError(t, s.UpdateProfileRole(ctx, citizen.ID, models.RoleOfficial))
		got, err := s.GetProfileByUsername(ctx, "citizen1")
		require.NoError(t, err)
		assert.Equal(t, models.RoleOfficial, got.Role)

		profiles, total, err := s.ListProfiles(ctx, storage.ProfileFilter{Role: models.RoleCitizen, Search: "VOTER"})
		require.NoError(t, err)
		assert.EqualValues(t, len(profiles), total)
		for _, p := range profiles {
			assert.Equal(t, models.RoleCitizen, p.Role)
		}
	})
}
