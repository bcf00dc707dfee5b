package models

import "time"

// UserRole enumerates the portal roles.
type UserRole string

const (
	RoleAdmin          UserRole = "admin"
	RoleDepartmentHead UserRole = "department_head"
	RoleStaff          UserRole = "staff"
	RoleStudent        UserRole = "student"
)

// User represents a portal account as returned by the backend.
type User struct {
	ID           string      `db:"id" json:"id"`
	Name         string      `db:"name" json:"name"`
	Email        string      `db:"email" json:"email"`
	Role         UserRole    `db:"role" json:"role"`
	Department   *Department `db:"-" json:"department,omitempty"`
	DepartmentID *string     `db:"department_id" json:"department_id,omitempty"`
	StudentID    *string     `db:"student_id" json:"student_id,omitempty"`
	EmployeeID   *string     `db:"employee_id" json:"employee_id,omitempty"`
	AvatarURL    *string     `db:"avatar_url" json:"avatar_url,omitempty"`
	Active       bool        `db:"active" json:"is_active"`
	LastActiveAt *time.Time  `db:"last_active_at" json:"last_active_at,omitempty"`
	CreatedAt    time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at" json:"updated_at"`
}

// UserFilter captures query parameters for listing users.
type UserFilter struct {
	Role         *UserRole
	DepartmentID *string
	Active       *bool
	Search       string
	Page         int
	PerPage      int
}

// CreateUserRequest is the payload for creating an account.
type CreateUserRequest struct {
	Name         string   `json:"name" validate:"required"`
	Email        string   `json:"email" validate:"required,email"`
	Password     string   `json:"password" validate:"required,min=8"`
	Role         UserRole `json:"role" validate:"required"`
	DepartmentID *string  `json:"department_id,omitempty"`
	StudentID    *string  `json:"student_id,omitempty"`
	EmployeeID   *string  `json:"employee_id,omitempty"`
}

// UpdateUserRequest carries partial updates; nil fields are omitted.
type UpdateUserRequest struct {
	Name         *string   `json:"name,omitempty"`
	Email        *string   `json:"email,omitempty" validate:"omitempty,email"`
	Role         *UserRole `json:"role,omitempty"`
	DepartmentID *string   `json:"department_id,omitempty"`
	Active       *bool     `json:"is_active,omitempty"`
}
