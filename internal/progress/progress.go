package progress

import (
	"sync"
	"time"
)

// Stage represents the pipeline stage a job is currently in.
type Stage string

const (
	StageInitializing Stage = "initializing"
	StageResolving    Stage = "resolving"
	StageEstimating   Stage = "estimating"
	StageMerging      Stage = "merging"
	StageValidating   Stage = "validating"
	StageComplete     Stage = "complete"
	StageError        Stage = "error"
)

// Event is one progress update emitted by a running job.
type Event struct {
	Stage     Stage     `json:"stage"`
	Progress  float64   `json:"progress"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Error     string    `json:"error,omitempty"`
}

// Tracker fans progress events out to registered listeners.
type Tracker struct {
	mu        sync.RWMutex
	stage     Stage
	progress  float64
	message   string
	err       error
	listeners []func(Event)
}

func NewTracker() *Tracker {
	return &Tracker{stage: StageInitializing}
}

// AddListener registers a listener for future events.
func (t *Tracker) AddListener(listener func(Event)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.listeners = append(t.listeners, listener)
}

// Update records the new stage and notifies all listeners.
func (t *Tracker) Update(stage Stage, progress float64, message string) {
	t.mu.Lock()
	t.stage = stage
	t.progress = progress
	t.message = message
	t.mu.Unlock()

	t.notify(Event{
		Stage:     stage,
		Progress:  progress,
		Message:   message,
		Timestamp: time.Now(),
	})
}

// SetError moves the tracker into the error stage and notifies listeners.
func (t *Tracker) SetError(err error) {
	t.mu.Lock()
	t.stage = StageError
	t.err = err
	progress := t.progress
	t.mu.Unlock()

	t.notify(Event{
		Stage:     StageError,
		Progress:  progress,
		Message:   err.Error(),
		Timestamp: time.Now(),
		Error:     err.Error(),
	})
}

// Current returns a snapshot of the latest state.
func (t *Tracker) Current() Event {
	t.mu.RLock()
	defer t.mu.RUnlock()

	event := Event{
		Stage:     t.stage,
		Progress:  t.progress,
		Message:   t.message,
		Timestamp: time.Now(),
	}
	if t.err != nil {
		event.Error = t.err.Error()
	}
	return event
}

func (t *Tracker) notify(event Event) {
	t.mu.RLock()
	listeners := make([]func(Event), len(t.listeners))
	copy(listeners, t.listeners)
	t.mu.RUnlock()

	for _, listener := range listeners {
		listener(event)
	}
}
