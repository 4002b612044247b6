package job

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"librettist/internal/progress"
)

// Manager tracks pipeline jobs for the server. Jobs run in background
// goroutines; the manager is safe for concurrent use.
type Manager struct {
	mu   sync.RWMutex
	jobs map[string]*Status
}

func NewManager() *Manager {
	return &Manager{jobs: make(map[string]*Status)}
}

// CreateJob registers a new pending job for a pipeline stage and returns
// it along with the context the job should run under.
func (m *Manager) CreateJob(stage string, req Request) (*Status, context.Context) {
	ctx, cancel := context.WithCancel(context.Background())

	job := &Status{
		ID:         uuid.NewString(),
		Stage:      stage,
		Status:     StatusPending,
		Message:    "job created",
		StartTime:  time.Now(),
		OverlayKey: req.OverlayKey,
		OutputKey:  req.OutputKey,
		cancelFunc: cancel,
	}

	m.mu.Lock()
	m.jobs[job.ID] = job
	m.mu.Unlock()

	return job, ctx
}

// GetJob retrieves a job by ID.
func (m *Manager) GetJob(jobID string) (*Status, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	job, exists := m.jobs[jobID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, jobID)
	}
	return job, nil
}

// Start moves a pending job into the processing state.
func (m *Manager) Start(jobID string) error {
	return m.update(jobID, func(job *Status) error {
		if job.Status != StatusPending {
			return fmt.Errorf("%w: %s", ErrInvalidState, job.Status)
		}
		job.Status = StatusProcessing
		job.Message = "job running"
		return nil
	})
}

// Complete marks a job as finished.
func (m *Manager) Complete(jobID, message string) error {
	return m.update(jobID, func(job *Status) error {
		job.Status = StatusCompleted
		job.Progress = ProgressComplete
		job.Message = message
		now := time.Now()
		job.EndTime = &now
		return nil
	})
}

// Fail marks a job as failed with the given error.
func (m *Manager) Fail(jobID string, err error) error {
	return m.update(jobID, func(job *Status) error {
		job.Status = StatusFailed
		job.Error = err.Error()
		job.Message = "job failed"
		now := time.Now()
		job.EndTime = &now
		return nil
	})
}

// Record appends a progress event and updates the job's headline
// progress and message.
func (m *Manager) Record(jobID string, event progress.Event) error {
	return m.update(jobID, func(job *Status) error {
		job.Events = append(job.Events, event)
		job.Progress = event.Progress
		job.Message = event.Message
		return nil
	})
}

// CancelJob cancels a pending or processing job.
func (m *Manager) CancelJob(jobID string) error {
	return m.update(jobID, func(job *Status) error {
		if job.Status != StatusProcessing && job.Status != StatusPending {
			return fmt.Errorf("%w: %s", ErrInvalidState, job.Status)
		}
		job.cancelFunc()
		job.Status = StatusCancelled
		job.Message = "job cancelled by user"
		now := time.Now()
		job.EndTime = &now
		return nil
	})
}

// ListJobs lists jobs with pagination, newest first.
func (m *Manager) ListJobs(page, pageSize int) *Response {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > MaxPageSize {
		pageSize = DefaultPageSize
	}

	m.mu.RLock()
	jobs := make([]*Status, 0, len(m.jobs))
	for _, job := range m.jobs {
		jobs = append(jobs, job)
	}
	m.mu.RUnlock()

	sort.Slice(jobs, func(i, j int) bool {
		return jobs[i].StartTime.After(jobs[j].StartTime)
	})

	totalPages := (len(jobs) + pageSize - 1) / pageSize
	start := (page - 1) * pageSize
	end := start + pageSize
	if start >= len(jobs) {
		return &Response{
			Jobs:       []*Status{},
			Page:       page,
			PageSize:   pageSize,
			TotalJobs:  len(jobs),
			TotalPages: totalPages,
		}
	}
	if end > len(jobs) {
		end = len(jobs)
	}

	return &Response{
		Jobs:       jobs[start:end],
		Page:       page,
		PageSize:   pageSize,
		TotalJobs:  len(jobs),
		TotalPages: totalPages,
	}
}

func (m *Manager) update(jobID string, fn func(*Status) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	job, exists := m.jobs[jobID]
	if !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, jobID)
	}
	return fn(job)
}
