package models

import "time"

// ReportUpvote is one user's endorsement of a report. The composite primary key
// enforces at most one membership per (report, user).
type ReportUpvote struct {
	ReportID  string    `gorm:"type:uuid;primaryKey" json:"report_id"`
	UserID    string    `gorm:"type:uuid;primaryKey;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
