package models

import "time"

// Department is a routing target for concerns.
type Department struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Code        string    `db:"code" json:"code"`
	Description string    `db:"description" json:"description,omitempty"`
	HeadID      *string   `db:"head_id" json:"head_id,omitempty"`
	Head        *User     `db:"-" json:"head,omitempty"`
	Active      bool      `db:"active" json:"is_active"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// CreateDepartmentRequest is the payload for creating a department.
type CreateDepartmentRequest struct {
	Name        string  `json:"name" validate:"required"`
	Code        string  `json:"code" validate:"required"`
	Description string  `json:"description,omitempty"`
	HeadID      *string `json:"head_id,omitempty"`
}

// UpdateDepartmentRequest carries partial department updates.
type UpdateDepartmentRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	HeadID      *string `json:"head_id,omitempty"`
	Active      *bool   `json:"is_active,omitempty"`
}

// StaffWorkload summarises assignment load for one staff member.
type StaffWorkload struct {
	UserID        string `json:"user_id"`
	Name          string `json:"name"`
	OpenConcerns  int    `json:"open_concerns"`
	ResolvedTotal int    `json:"resolved_total"`
}
