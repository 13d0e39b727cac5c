package models

import (
	"time"
)

// ModelRun represents one model execution (model_runs table).
type ModelRun struct {
	ID          int64                  `json:"id"`
	ExecutionID string                 `json:"execution_id"`
	Identity    string                 `json:"identity,omitempty"`
	ModelType   string                 `json:"model_type"`
	Category    string                 `json:"category"`
	InputRows   int                    `json:"input_rows"`
	Parameters  map[string]interface{} `json:"parameters,omitempty"`
	Status      string                 `json:"status"`
	Result      map[string]interface{} `json:"result,omitempty"`
	ErrorKind   string                 `json:"error_kind,omitempty"`
	ErrorMsg    string                 `json:"error_message,omitempty"`
	DurationMs  int                    `json:"duration_ms"`
	StartedAt   time.Time              `json:"started_at"`
	CreatedAt   time.Time              `json:"created_at"`
}

// Run status constants
const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusRejected = "rejected"
)

// RunRequest represents the request body for running a model
type RunRequest struct {
	Dataset    []map[string]interface{} `json:"dataset"`
	Parameters map[string]interface{}   `json:"parameters"`
}

// RunResponse represents the response for a model run
type RunResponse struct {
	Status      string                 `json:"status"`
	ExecutionID string                 `json:"execution_id"`
	ModelType   string                 `json:"model_type"`
	Result      map[string]interface{} `json:"result,omitempty"`
	Error       *DispatchError         `json:"error,omitempty"`
	DurationMs  int                    `json:"duration_ms"`
	LoggedAt    time.Time              `json:"logged_at"`
}

// RunListItem represents a run in list view (without full result payload)
type RunListItem struct {
	ID          int64     `json:"id"`
	ExecutionID string    `json:"execution_id"`
	ModelType   string    `json:"model_type"`
	Category    string    `json:"category"`
	Status      string    `json:"status"`
	ErrorKind   string    `json:"error_kind,omitempty"`
	DurationMs  int       `json:"duration_ms"`
	StartedAt   time.Time `json:"started_at"`
}

// AccountUsage represents the quota state for one identity
// (account_usage table).
type AccountUsage struct {
	Identity    string    `json:"identity"`
	PeriodStart time.Time `json:"period_start"`
	Executions  int       `json:"executions"`
	Limit       int       `json:"limit"`
	Remaining   int       `json:"remaining"`
}
