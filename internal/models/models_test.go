package models_test

import (
	"reflect"
	"testing"

	"citizenpulse/backend/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestReportBeforeCreate_GeneratesUUID verifies that the BeforeCreate hook generates a valid UUID.
func TestReportBeforeCreate_GeneratesUUID(t *testing.T) {
	// Arrange
	report := &models.Report{
		ReportType:    models.ReportTypeIssue,
		Category:      "roads",
		Title:         "Pothole on Main St",
		Description:   "Large pothole",
		AffectedAreas: pq.StringArray{"Main St"},
	}
	assert.Empty(t, report.ID, "Report ID should be empty before BeforeCreate")

	// Act
	err := report.BeforeCreate(nil)

	// Assert
	require.NoError(t, err)
	parsed, parseErr := uuid.Parse(report.ID)
	assert.NoError(t, parseErr, "Report ID must be a valid UUID string")
	assert.NotEqual(t, uuid.Nil, parsed)
}

// TestReportBeforeCreate_PreservesExistingID verifies that the hook doesn't overwrite an existing ID.
func TestReportBeforeCreate_PreservesExistingID(t *testing.T) {
	existingID := uuid.New().String()
	report := &models.Report{ID: existingID}

	err := report.BeforeCreate(nil)

	assert.NoError(t, err)
	assert.Equal(t, existingID, report.ID)
}

func TestProfileBeforeCreate_DefaultsRole(t *testing.T) {
	p := &models.Profile{Username: "jane"}

	require.NoError(t, p.BeforeCreate(nil))

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, models.RoleCitizen, p.Role)

	admin := &models.Profile{Username: "root", Role: models.RoleAdmin}
	require.NoError(t, admin.BeforeCreate(nil))
	assert.Equal(t, models.RoleAdmin, admin.Role, "explicit role must be kept")
}

func TestReportUpdateBeforeCreate_UniqueIDs(t *testing.T) {
	generated := make(map[string]bool)
	for i := 0; i < 5; i++ {
		u := &models.ReportUpdate{ReportID: "r", UserID: "u", UpdateType: models.UpdateTypeComment}
		require.NoError(t, u.BeforeCreate(nil))
		assert.NotContains(t, generated, u.ID, "Each update should have a unique ID")
		generated[u.ID] = true
	}
}

func TestReport_HasWorkflow(t *testing.T) {
	tests := []struct {
		reportType models.ReportType
		want       bool
	}{
		{models.ReportTypeIssue, true},
		{models.ReportTypeSuggestion, true},
		{models.ReportTypeRequest, true},
		{models.ReportTypeCompliment, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.reportType), func(t *testing.T) {
			r := &models.Report{ReportType: tt.reportType}
			assert.Equal(t, tt.want, r.HasWorkflow())
		})
	}
}

func TestEnumValidity(t *testing.T) {
	assert.True(t, models.StatusUnderReview.Valid())
	assert.False(t, models.ReportStatus("archived").Valid())
	assert.False(t, models.ReportStatus("").Valid())

	assert.True(t, models.PriorityUrgent.Valid())
	assert.False(t, models.ReportPriority("critical").Valid())

	assert.True(t, models.ReportTypeRequest.Valid())
	assert.False(t, models.ReportType("complaint").Valid())

	assert.True(t, models.RoleOfficial.Valid())
	assert.False(t, models.UserRole("moderator").Valid())
}

func TestUserRole_IsStaff(t *testing.T) {
	assert.True(t, models.RoleAdmin.IsStaff())
	assert.True(t, models.RoleOfficial.IsStaff())
	assert.False(t, models.RoleCitizen.IsStaff())
	assert.False(t, models.UserRole("").IsStaff())
}

func TestNewStatusChange(t *testing.T) {
	t.Run("default message", func(t *testing.T) {
		u := models.NewStatusChange("r1", "u1", models.StatusUnderReview, models.StatusResolved, "")

		assert.Equal(t, models.UpdateTypeStatusChange, u.UpdateType)
		assert.Equal(t, "Status changed from under_review to resolved", u.Message)
		require.NotNil(t, u.OldStatus)
		require.NotNil(t, u.NewStatus)
		assert.Equal(t, models.StatusUnderReview, *u.OldStatus)
		assert.Equal(t, models.StatusResolved, *u.NewStatus)
		assert.True(t, u.IsOfficial)
	})

	t.Run("custom message", func(t *testing.T) {
		u := models.NewStatusChange("r1", "u1", models.StatusNew, models.StatusInProgress, "Crew dispatched")
		assert.Equal(t, "Crew dispatched", u.Message)
	})
}

func TestNewChangeEvent_Table(t *testing.T) {
	assert.Equal(t, "reports", models.NewChangeEvent(models.ChangeStatusChanged, "r").Table)
	assert.Equal(t, "report_updates", models.NewChangeEvent(models.ChangeUpdateAppended, "r").Table)

	ev := models.NewChangeEvent(models.ChangeReportCreated, "r9")
	assert.Equal(t, "r9", ev.ReportID)
	assert.False(t, ev.At.IsZero())
}

// TestStructTags verifies that struct tags are correctly defined for GORM and JSON.
func TestStructTags(t *testing.T) {
	reportType := reflect.TypeOf(models.Report{})

	areas, found := reportType.FieldByName("AffectedAreas")
	require.True(t, found)
	assert.Contains(t, areas.Tag.Get("gorm"), "type:text[]", "AffectedAreas should use PostgreSQL array type")

	number, found := reportType.FieldByName("ReportNumber")
	require.True(t, found)
	assert.Contains(t, number.Tag.Get("gorm"), "uniqueIndex")

	upvoted, found := reportType.FieldByName("UserHasUpvoted")
	require.True(t, found)
	assert.Equal(t, "-", upvoted.Tag.Get("gorm"), "UserHasUpvoted is not persisted")

	profileType := reflect.TypeOf(models.Profile{})
	hash, found := profileType.FieldByName("PasswordHash")
	require.True(t, found)
	assert.Equal(t, "-", hash.Tag.Get("json"), "PasswordHash must never be serialized")

	upvoteType := reflect.TypeOf(models.ReportUpvote{})
	for _, name := range []string{"ReportID", "UserID"} {
		f, ok := upvoteType.FieldByName(name)
		require.True(t, ok)
		assert.Contains(t, f.Tag.Get("gorm"), "primaryKey", "%s is part of the composite key", name)
	}
}

// BenchmarkReportBeforeCreate measures UUID generation performance.
func BenchmarkReportBeforeCreate(b *testing.B) {
	report := &models.Report{ReportType: models.ReportTypeIssue}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		report.ID = ""
		_ = report.BeforeCreate(nil)
	}
}
