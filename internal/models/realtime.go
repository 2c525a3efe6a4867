package models

import "time"

// ChangeKind names what happened to a report.
type ChangeKind string

const (
	ChangeReportCreated   ChangeKind = "report.created"
	ChangeStatusChanged   ChangeKind = "report.status_changed"
	ChangePriorityChanged ChangeKind = "report.priority_changed"
	ChangeUpdateAppended  ChangeKind = "report.update_appended"
	ChangeUpvotesChanged  ChangeKind = "report.upvotes_changed"
)

// ChangeEvent tells subscribers that a report (or its update log) changed and
// should be refetched. It carries no authoritative state.
type ChangeEvent struct {
	Kind     ChangeKind `json:"kind"`
	Table    string     `json:"table"`
	ReportID string     `json:"report_id"`
	At       time.Time  `json:"at"`
}

// NewChangeEvent stamps an event with the current time.
func NewChangeEvent(kind ChangeKind, reportID string) ChangeEvent {
	table := "reports"
	if kind == ChangeUpdateAppended {
		table = "report_updates"
	}
	return ChangeEvent{Kind: kind, Table: table, ReportID: reportID, At: time.Now().UTC()}
}
