package models

import "time"

// AnalyticsOverview is the dashboard summary block.
type AnalyticsOverview struct {
	TotalConcerns      int     `json:"total_concerns"`
	OpenConcerns       int     `json:"open_concerns"`
	ResolvedConcerns   int     `json:"resolved_concerns"`
	AvgResolutionHours float64 `json:"avg_resolution_hours"`
	ActiveChatRooms    int     `json:"active_chat_rooms"`
	TotalUsers         int     `json:"total_users"`
}

// ConcernReportRow is one row of the concern report used by local exports.
type ConcernReportRow struct {
	ReferenceNumber string          `json:"reference_number"`
	Subject         string          `json:"subject"`
	Status          ConcernStatus   `json:"status"`
	Priority        ConcernPriority `json:"priority"`
	Department      string          `json:"department"`
	Assignee        string          `json:"assignee"`
	SubmittedAt     time.Time       `json:"submitted_at"`
	ResolvedAt      *time.Time      `json:"resolved_at,omitempty"`
}

// ReportFilter scopes report queries.
type ReportFilter struct {
	From         *time.Time
	To           *time.Time
	DepartmentID *string
	Status       *ConcernStatus
}
