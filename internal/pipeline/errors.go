package pipeline

import "errors"

// Stage errors. Each is fatal for the invocation; callers wrap them with
// track context and match with errors.Is.
var (
	// ErrNumberNotFound is returned by resolve when a track references a
	// number id with no entry in the base libretto.
	ErrNumberNotFound = errors.New("number not found in base libretto")

	// ErrZeroDuration is returned by estimate when a track with a
	// non-empty span has no positive duration.
	ErrZeroDuration = errors.New("track duration must be positive")

	// ErrEmptySpan is returned by estimate when a track's span is
	// degenerate: its start segment does not precede the next track's.
	ErrEmptySpan = errors.New("track span is empty")

	// ErrUnknownSegment is returned by merge when the overlay references
	// a segment id absent from the base libretto.
	ErrUnknownSegment = errors.New("segment not found in base libretto")
)
