package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UpdateType is the kind of an update log entry.
type UpdateType string

const (
	UpdateTypeComment        UpdateType = "comment"
	UpdateTypeStatusChange   UpdateType = "status_change"
	UpdateTypeOfficialUpdate UpdateType = "official_update"
)

// ReportUpdate is an append-only entry in a report's update log.
// Entries are never edited or removed; creation time is the only ordering.
type ReportUpdate struct {
	ID       string `gorm:"type:uuid;primaryKey" json:"id"`
	ReportID string `gorm:"type:uuid;not null;index:idx_report_updates_report_created,priority:1" json:"report_id"`
	UserID   string `gorm:"type:uuid;not null;index" json:"user_id"`
	// Author is loaded for presentation only.
	Author *Profile `gorm:"foreignKey:UserID;references:ID" json:"author,omitempty"`

	UpdateType UpdateType `gorm:"type:text;not null" json:"update_type"`
	Message    string     `gorm:"type:text;not null" json:"message"`
	// OldStatus and NewStatus are set together, and only on status_change entries.
	OldStatus  *ReportStatus `gorm:"type:text" json:"old_status"`
	NewStatus  *ReportStatus `gorm:"type:text" json:"new_status"`
	IsOfficial bool          `gorm:"not null;default:false" json:"is_official"`

	CreatedAt time.Time `gorm:"index:idx_report_updates_report_created,priority:2" json:"created_at"`
}

// BeforeCreate generates the UUID primary key if it has not been set.
func (u *ReportUpdate) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return
}

// NewStatusChange builds the audit entry for a status transition.
func NewStatusChange(reportID, userID string, from, to ReportStatus, message string) *ReportUpdate {
	if message == "" {
		message = "Status changed from " + string(from) + " to " + string(to)
	}
	return &ReportUpdate{
		ReportID:   reportID,
		UserID:     userID,
		UpdateType: UpdateTypeStatusChange,
		Message:    message,
		OldStatus:  &from,
		NewStatus:  &to,
		IsOfficial: true,
	}
}
