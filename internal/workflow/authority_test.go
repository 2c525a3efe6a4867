package workflow_test

import (
	"context"
	"testing"

	"citizenpulse/backend/internal/apperr"
	"citizenpulse/backend/internal/auth"
	"citizenpulse/backend/internal/events"
	"citizenpulse/backend/internal/models"
	"citizenpulse/backend/internal/testutil"
	"citizenpulse/backend/internal/workflow"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const reportID = "33333333-3333-3333-3333-333333333333"

var (
	admin    = &auth.Actor{UserID: "22222222-2222-2222-2222-222222222222", Role: models.RoleAdmin}
	official = &auth.Actor{UserID: "55555555-5555-5555-5555-555555555555", Role: models.RoleOfficial}
	citizen  = &auth.Actor{UserID: "11111111-1111-1111-1111-111111111111", Role: models.RoleCitizen}
)

func issue(status models.ReportStatus) *models.Report {
	return &models.Report{ID: reportID, ReportType: models.ReportTypeIssue, Status: status}
}

func TestChangeStatus_Scenario(t *testing.T) {
	store := new(testutil.MockStorage)
	store.On("GetReport", mock.Anything, reportID).Return(issue(models.StatusUnderReview), nil)
	store.On("ApplyStatusChange", mock.Anything, mock.AnythingOfType("*models.ReportUpdate")).Return(nil).Once()
	authority := workflow.NewAuthority(store, events.Discard{})

	update, err := authority.ChangeStatus(context.Background(), admin, reportID, models.StatusResolved, "")

	require.NoError(t, err)
	require.NotNil(t, update)
	assert.Equal(t, models.UpdateTypeStatusChange, update.UpdateType)
	assert.Equal(t, models.StatusUnderReview, *update.OldStatus)
	assert.Equal(t, models.StatusResolved, *update.NewStatus)
	assert.Equal(t, "Status changed from under_review to resolved", update.Message)
	assert.True(t, update.IsOfficial)
	assert.Equal(t, admin.UserID, update.UserID)
	store.AssertNumberOfCalls(t, "ApplyStatusChange", 1)
}

func TestChangeStatus_NoteIsUsedAsMessage(t *testing.T) {
	store := new(testutil.MockStorage)
	store.On("GetReport", mock.Anything, reportID).Return(issue(models.StatusNew), nil)
	store.On("ApplyStatusChange", mock.Anything, mock.MatchedBy(func(u *models.ReportUpdate) bool {
		return u.Message == "Crew dispatched"
	})).Return(nil)
	authority := workflow.NewAuthority(store, events.Discard{})

	_, err := authority.ChangeStatus(context.Background(), official, reportID, models.StatusInProgress, "  Crew dispatched ")

	require.NoError(t, err)
	store.AssertExpectations(t)
}

func TestChangeStatus_SameStatusWritesNothing(t *testing.T) {
	store := new(testutil.MockStorage)
	store.On("GetReport", mock.Anything, reportID).Return(issue(models.StatusInProgress), nil)
	authority := workflow.NewAuthority(store, events.Discard{})

	update, err := authority.ChangeStatus(context.Background(), admin, reportID, models.StatusInProgress, "again")

	assert.NoError(t, err)
	assert.Nil(t, update)
	store.AssertNotCalled(t, "ApplyStatusChange", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "AppendUpdate", mock.Anything, mock.Anything)
}

func TestChangeStatus_Rejections(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown status", func(t *testing.T) {
		store := new(testutil.MockStorage)
		authority := workflow.NewAuthority(store, events.Discard{})

		_, err := authority.ChangeStatus(ctx, admin, reportID, "archived", "")
		assert.ErrorIs(t, err, apperr.ErrValidation)
		store.AssertNotCalled(t, "GetReport", mock.Anything, mock.Anything)
	})

	t.Run("compliment has no workflow", func(t *testing.T) {
		store := new(testutil.MockStorage)
		store.On("GetReport", mock.Anything, reportID).
			Return(&models.Report{ID: reportID, ReportType: models.ReportTypeCompliment, Status: models.StatusNew}, nil)
		authority := workflow.NewAuthority(store, events.Discard{})

		_, err := authority.ChangeStatus(ctx, admin, reportID, models.StatusResolved, "")
		assert.ErrorIs(t, err, apperr.ErrValidation)
		store.AssertNotCalled(t, "ApplyStatusChange", mock.Anything, mock.Anything)
	})

	t.Run("unknown report", func(t *testing.T) {
		store := new(testutil.MockStorage)
		store.On("GetReport", mock.Anything, reportID).Return(nil, apperr.ErrNotFound)
		authority := workflow.NewAuthority(store, events.Discard{})

		_, err := authority.ChangeStatus(ctx, admin, reportID, models.StatusResolved, "")
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("lost race", func(t *testing.T) {
		store := new(testutil.MockStorage)
		store.On("GetReport", mock.Anything, reportID).Return(issue(models.StatusNew), nil)
		store.On("ApplyStatusChange", mock.Anything, mock.Anything).Return(apperr.ErrConflict)
		authority := workflow.NewAuthority(store, events.Discard{})

		_, err := authority.ChangeStatus(ctx, admin, reportID, models.StatusResolved, "")
		assert.ErrorIs(t, err, apperr.ErrConflict)
	})
}

func TestAuthority_NonStaffTouchesNothing(t *testing.T) {
	ctx := context.Background()

	for name, actor := range map[string]*auth.Actor{"citizen": citizen, "anonymous": nil} {
		t.Run(name, func(t *testing.T) {
			store := new(testutil.MockStorage)
			authority := workflow.NewAuthority(store, events.Discard{})

			_, err := authority.ChangeStatus(ctx, actor, reportID, models.StatusResolved, "")
			assertAuthError(t, actor, err)

			err = authority.ChangePriority(ctx, actor, reportID, models.PriorityHigh)
			assertAuthError(t, actor, err)

			_, err = authority.PostOfficialUpdate(ctx, actor, reportID, "We are on it")
			assertAuthError(t, actor, err)

			assert.Empty(t, store.Calls, "no storage call may happen before the role check")
		})
	}
}

func assertAuthError(t *testing.T, actor *auth.Actor, err error) {
	t.Helper()
	if actor == nil {
		assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
		return
	}
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}

func TestChangePriority(t *testing.T) {
	ctx := context.Background()

	t.Run("writes unconditionally without a log entry", func(t *testing.T) {
		store := new(testutil.MockStorage)
		store.On("SetPriority", mock.Anything, reportID, models.PriorityUrgent).Return(nil).Twice()
		authority := workflow.NewAuthority(store, events.Discard{})

		require.NoError(t, authority.ChangePriority(ctx, official, reportID, models.PriorityUrgent))
		require.NoError(t, authority.ChangePriority(ctx, official, reportID, models.PriorityUrgent))

		store.AssertNumberOfCalls(t, "SetPriority", 2)
		store.AssertNotCalled(t, "AppendUpdate", mock.Anything, mock.Anything)
	})

	t.Run("unknown priority", func(t *testing.T) {
		store := new(testutil.MockStorage)
		authority := workflow.NewAuthority(store, events.Discard{})

		err := authority.ChangePriority(ctx, admin, reportID, "critical")
		assert.ErrorIs(t, err, apperr.ErrValidation)
		assert.Empty(t, store.Calls)
	})
}

func TestPostOfficialUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("appends official entry", func(t *testing.T) {
		store := new(testutil.MockStorage)
		store.On("AppendUpdate", mock.Anything, mock.MatchedBy(func(u *models.ReportUpdate) bool {
			return u.UpdateType == models.UpdateTypeOfficialUpdate &&
				u.IsOfficial &&
				u.Message == "Repairs start Monday" &&
				u.OldStatus == nil
		})).Return(nil)
		authority := workflow.NewAuthority(store, events.Discard{})

		u, err := authority.PostOfficialUpdate(ctx, admin, reportID, "Repairs start Monday")

		require.NoError(t, err)
		assert.Equal(t, admin.UserID, u.UserID)
		store.AssertNotCalled(t, "SetPriority", mock.Anything, mock.Anything, mock.Anything)
		store.AssertNotCalled(t, "ApplyStatusChange", mock.Anything, mock.Anything)
	})

	t.Run("blank message", func(t *testing.T) {
		store := new(testutil.MockStorage)
		authority := workflow.NewAuthority(store, events.Discard{})

		_, err := authority.PostOfficialUpdate(ctx, admin, reportID, " \n ")
		assert.ErrorIs(t, err, apperr.ErrValidation)
		assert.Empty(t, store.Calls)
	})
}
