package models

import "time"

// ConcernStatus is the server-enforced concern state machine. The client
// never computes transitions; it only requests them and reflects the result.
type ConcernStatus string

const (
	ConcernPending    ConcernStatus = "pending"
	ConcernApproved   ConcernStatus = "approved"
	ConcernRejected   ConcernStatus = "rejected"
	ConcernInProgress ConcernStatus = "in_progress"
	ConcernResolved   ConcernStatus = "resolved"
	ConcernClosed     ConcernStatus = "closed"
	ConcernCancelled  ConcernStatus = "cancelled"
)

// ConcernPriority enumerates urgency levels.
type ConcernPriority string

const (
	PriorityLow    ConcernPriority = "low"
	PriorityMedium ConcernPriority = "medium"
	PriorityHigh   ConcernPriority = "high"
	PriorityUrgent ConcernPriority = "urgent"
)

// Attachment describes a file attached to a concern.
type Attachment struct {
	ID       string `json:"id"`
	FileName string `json:"file_name"`
	FileURL  string `json:"file_url"`
	MimeType string `json:"mime_type,omitempty"`
	Size     int64  `json:"size,omitempty"`
}

// Concern is a student-submitted issue routed to a department.
type Concern struct {
	ID              string          `db:"id" json:"id"`
	ReferenceNumber string          `db:"reference_number" json:"reference_number"`
	Subject         string          `db:"subject" json:"subject"`
	Description     string          `db:"description" json:"description"`
	Status          ConcernStatus   `db:"status" json:"status"`
	Priority        ConcernPriority `db:"priority" json:"priority"`
	StudentID       *string         `db:"student_id" json:"student_id,omitempty"`
	DepartmentID    *string         `db:"department_id" json:"department_id,omitempty"`
	AssigneeID      *string         `db:"assignee_id" json:"assignee_id,omitempty"`
	Department      *Department     `db:"-" json:"department,omitempty"`
	Assignee        *User           `db:"-" json:"assignee,omitempty"`
	IsAnonymous     bool            `db:"is_anonymous" json:"is_anonymous"`
	Attachments     []Attachment    `db:"-" json:"attachments,omitempty"`
	ApprovedAt      *time.Time      `db:"approved_at" json:"approved_at,omitempty"`
	RejectedAt      *time.Time      `db:"rejected_at" json:"rejected_at,omitempty"`
	ResolvedAt      *time.Time      `db:"resolved_at" json:"resolved_at,omitempty"`
	ClosedAt        *time.Time      `db:"closed_at" json:"closed_at,omitempty"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

// ConcernFilter captures query parameters for listing concerns.
type ConcernFilter struct {
	Status       *ConcernStatus
	Priority     *ConcernPriority
	DepartmentID *string
	AssigneeID   *string
	Search       string
	Page         int
	PerPage      int
}

// CreateConcernRequest is the payload for submitting a concern.
type CreateConcernRequest struct {
	Subject      string          `json:"subject" validate:"required"`
	Description  string          `json:"description" validate:"required"`
	Priority     ConcernPriority `json:"priority" validate:"required"`
	DepartmentID *string         `json:"department_id,omitempty"`
	IsAnonymous  bool            `json:"is_anonymous"`
}

// UpdateConcernRequest carries partial concern updates.
type UpdateConcernRequest struct {
	Subject     *string          `json:"subject,omitempty"`
	Description *string          `json:"description,omitempty"`
	Priority    *ConcernPriority `json:"priority,omitempty"`
}

// ConcernActionRequest accompanies status transition calls (approve, reject,
// escalate, resolve) with an optional note the server records.
type ConcernActionRequest struct {
	Note string `json:"note,omitempty"`
}

// AssignConcernRequest routes a concern to a department and/or staff member.
type AssignConcernRequest struct {
	DepartmentID *string `json:"department_id,omitempty"`
	AssigneeID   *string `json:"assignee_id,omitempty"`
	Note         string  `json:"note,omitempty"`
}
