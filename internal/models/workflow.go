package models

import "time"

// WorkflowTrigger names the condition that fires an automation rule.
type WorkflowTrigger string

const (
	TriggerKeyword        WorkflowTrigger = "keyword"
	TriggerTimeUnanswered WorkflowTrigger = "time_unanswered"
	TriggerDepartment     WorkflowTrigger = "department"
	TriggerPriority       WorkflowTrigger = "priority"
)

// WorkflowAction names the effect applied when a rule fires.
type WorkflowAction string

const (
	ActionAssignDepartment WorkflowAction = "assign_department"
	ActionEscalateToHead   WorkflowAction = "escalate_to_head"
	ActionSendNotification WorkflowAction = "send_notification"
	ActionAutoRespond      WorkflowAction = "auto_respond"
)

// Workflow is a declarative automation rule. Evaluation is entirely
// server-side; the client only authors and lists rules.
type Workflow struct {
	ID            string            `db:"id" json:"id"`
	Name          string            `db:"name" json:"name"`
	Trigger       WorkflowTrigger   `db:"trigger" json:"trigger"`
	TriggerParams map[string]string `db:"-" json:"trigger_params,omitempty"`
	Action        WorkflowAction    `db:"action" json:"action"`
	ActionParams  map[string]string `db:"-" json:"action_params,omitempty"`
	Enabled       bool              `db:"enabled" json:"enabled"`
	CreatedAt     time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time         `db:"updated_at" json:"updated_at"`
}

// CreateWorkflowRequest authors a new rule.
type CreateWorkflowRequest struct {
	Name          string            `json:"name" validate:"required"`
	Trigger       WorkflowTrigger   `json:"trigger" validate:"required"`
	TriggerParams map[string]string `json:"trigger_params,omitempty"`
	Action        WorkflowAction    `json:"action" validate:"required"`
	ActionParams  map[string]string `json:"action_params,omitempty"`
	Enabled       bool              `json:"enabled"`
}

// UpdateWorkflowRequest carries partial rule updates.
type UpdateWorkflowRequest struct {
	Name          *string           `json:"name,omitempty"`
	TriggerParams map[string]string `json:"trigger_params,omitempty"`
	ActionParams  map[string]string `json:"action_params,omitempty"`
	Enabled       *bool             `json:"enabled,omitempty"`
}
