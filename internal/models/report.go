package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// ReportType is the kind of submission a citizen makes.
type ReportType string

const (
	ReportTypeIssue      ReportType = "issue"
	ReportTypeCompliment ReportType = "compliment"
	ReportTypeSuggestion ReportType = "suggestion"
	ReportTypeRequest    ReportType = "request"
)

// Valid reports whether t is a known report type.
func (t ReportType) Valid() bool {
	switch t {
	case ReportTypeIssue, ReportTypeCompliment, ReportTypeSuggestion, ReportTypeRequest:
		return true
	}
	return false
}

// ReportStatus is the workflow state of a report.
type ReportStatus string

const (
	StatusNew         ReportStatus = "new"
	StatusUnderReview ReportStatus = "under_review"
	StatusInProgress  ReportStatus = "in_progress"
	StatusResolved    ReportStatus = "resolved"
	StatusClosed      ReportStatus = "closed"
	StatusRejected    ReportStatus = "rejected"
)

// Valid reports whether s is a known status.
func (s ReportStatus) Valid() bool {
	switch s {
	case StatusNew, StatusUnderReview, StatusInProgress, StatusResolved, StatusClosed, StatusRejected:
		return true
	}
	return false
}

// ReportPriority is the triage priority of a report.
type ReportPriority string

const (
	PriorityLow    ReportPriority = "low"
	PriorityMedium ReportPriority = "medium"
	PriorityHigh   ReportPriority = "high"
	PriorityUrgent ReportPriority = "urgent"
)

// Valid reports whether p is a known priority.
func (p ReportPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Report is a citizen-submitted record. It is the aggregate root of its update log
// and upvote memberships. The counters are maintained by the storage layer in the same
// transaction as the ledger change that moves them and are never edited directly.
type Report struct {
	ID           string  `gorm:"type:uuid;primaryKey" json:"id"`
	ReportNumber string  `gorm:"type:text;uniqueIndex;not null" json:"report_number"`
	UserID       *string `gorm:"type:uuid;index" json:"user_id"`
	// Author is loaded for presentation only.
	Author *Profile `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:SET NULL" json:"author,omitempty"`

	ReportType    ReportType      `gorm:"type:text;not null;index" json:"report_type"`
	Category      string          `gorm:"type:text;not null;index" json:"category"`
	Title         string          `gorm:"type:varchar(200);not null" json:"title"`
	Description   string          `gorm:"type:text;not null" json:"description"`
	AffectedAreas pq.StringArray  `gorm:"type:text[]" json:"affected_areas"`
	Priority      *ReportPriority `gorm:"type:text" json:"priority"`
	Status        ReportStatus    `gorm:"type:text;not null;default:new;index" json:"status"`
	IsAnonymous   bool            `gorm:"not null;default:false" json:"is_anonymous"`
	ContactPhone  *string         `gorm:"type:text" json:"contact_phone,omitempty"`
	ContactEmail  *string         `gorm:"type:text" json:"contact_email,omitempty"`
	Latitude      *float64        `json:"latitude"`
	Longitude     *float64        `json:"longitude"`

	UpvotesCount int `gorm:"not null;default:0" json:"upvotes_count"`
	UpdatesCount int `gorm:"not null;default:0" json:"updates_count"`
	ViewsCount   int `gorm:"not null;default:0" json:"views_count"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// UserHasUpvoted is filled per request for the acting user.
	UserHasUpvoted bool `gorm:"-" json:"user_has_upvoted"`
}

// HasWorkflow reports whether status/priority triage applies. Compliments have no workflow.
func (r *Report) HasWorkflow() bool {
	return r.ReportType != ReportTypeCompliment
}

// BeforeCreate generates the UUID primary key if it has not been set.
func (r *Report) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return
}
