package job

import (
	"context"
	"time"

	"librettist/internal/progress"
)

// Constants for job status
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
	StatusCancelled  = "cancelled"
)

// Progress percentages for the pipeline stages of a full build.
const (
	ProgressResolveStart  = 0
	ProgressResolveEnd    = 33
	ProgressEstimateStart = 33
	ProgressEstimateEnd   = 66
	ProgressMergeStart    = 66
	ProgressMergeEnd      = 99
	ProgressComplete      = 100
)

// Constants for pagination
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Status represents the current state of a pipeline job.
type Status struct {
	ID         string           `json:"id"`
	Stage      string           `json:"stage"`
	Status     string           `json:"status"`
	Progress   float64          `json:"progress"`
	Message    string           `json:"message"`
	Error      string           `json:"error,omitempty"`
	Events     []progress.Event `json:"events"`
	StartTime  time.Time        `json:"start_time"`
	EndTime    *time.Time       `json:"end_time,omitempty"`
	OverlayKey string           `json:"overlay_key"`
	OutputKey  string           `json:"output_key,omitempty"`

	cancelFunc context.CancelFunc
}

// Request represents the request body for running a pipeline stage.
type Request struct {
	OverlayKey string `json:"overlay_key" binding:"required"`
	OutputKey  string `json:"output_key"`
}

// Response represents a page of job statuses.
type Response struct {
	Jobs       []*Status `json:"jobs"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalJobs  int       `json:"total_jobs"`
	TotalPages int       `json:"total_pages"`
}
