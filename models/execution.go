package models

import "time"

// ExecutionEnvelope is the JSON document handed to the R runtime through
// the per-execution input file.
type ExecutionEnvelope struct {
	ExecutionID string                   `json:"execution_id"`
	ModelType   string                   `json:"model_type"`
	Dataset     []map[string]interface{} `json:"dataset"`
	Parameters  map[string]interface{}   `json:"parameters"`
	SubmittedAt time.Time                `json:"submitted_at"`
}

// ExecResult is the raw outcome of one subprocess invocation. The output
// file, if any, is read by the decoder, not here.
type ExecResult struct {
	ExitedCleanly bool
	TimedOut      bool
	Stdout        string
	Stderr        string
	Duration      time.Duration
}

// ResultMetadata is the fixed block the enricher attaches to every
// accepted payload.
type ResultMetadata struct {
	ExecutionID string                 `json:"execution_id"`
	ProcessedAt time.Time              `json:"processed_at"`
	Category    string                 `json:"category"`
	InputRows   int                    `json:"input_rows"`
	Parameters  map[string]interface{} `json:"parameters"`
	DurationMs  int                    `json:"duration_ms"`
}
