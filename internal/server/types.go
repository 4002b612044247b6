package server

import "librettist/internal/validate"

// MessageResponse represents a generic message payload used for success responses.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents a generic error payload used for error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StageAcceptedResponse is returned when a pipeline stage has been submitted
// as a background job.
type StageAcceptedResponse struct {
	Message string `json:"message"`
	JobID   string `json:"job_id"`
}

// ValidationResponse reports the outcome of validating an overlay against
// its base libretto.
type ValidationResponse struct {
	Valid    bool                    `json:"valid"`
	Errors   []string                `json:"errors"`
	Coverage validate.CoverageReport `json:"coverage"`
}
