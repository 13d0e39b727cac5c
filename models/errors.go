package models

import "github.com/gofiber/fiber/v2"

// ErrorKind is the machine-checkable classification of a dispatch failure.
type ErrorKind string

const (
	KindValidationFailed     ErrorKind = "validation_failed"
	KindQuotaExceeded        ErrorKind = "quota_exceeded"
	KindScriptUnresolved     ErrorKind = "script_unresolved"
	KindProcessFailed        ErrorKind = "process_failed"
	KindTimedOut             ErrorKind = "timed_out"
	KindOutputMissing        ErrorKind = "output_missing"
	KindOutputUnparseable    ErrorKind = "output_unparseable"
	KindSimulatedData        ErrorKind = "simulated_data_detected"
	KindModelExecutionFailed ErrorKind = "model_execution_failed"
	KindInternal             ErrorKind = "internal_error"
)

// DispatchError is the tagged failure result of a model run. Failures are
// resolved into this type rather than thrown across the subprocess
// boundary, so cleanup always runs before the caller sees them.
type DispatchError struct {
	Kind            ErrorKind `json:"kind"`
	Message         string    `json:"message"`
	Violations      []string  `json:"violations,omitempty"`
	Details         string    `json:"details,omitempty"`
	Recommendations []string  `json:"recommendations,omitempty"`
}

func (e *DispatchError) Error() string {
	return string(e.Kind) + ": " + e.Message
}

// HTTPStatus maps the error kind to a response class. Simulated-data
// detection gets its own 502 so callers can alert on it specially.
func (e *DispatchError) HTTPStatus() int {
	switch e.Kind {
	case KindValidationFailed:
		return fiber.StatusBadRequest
	case KindQuotaExceeded:
		return fiber.StatusTooManyRequests
	case KindScriptUnresolved:
		return fiber.StatusNotFound
	case KindTimedOut:
		return fiber.StatusGatewayTimeout
	case KindSimulatedData:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
