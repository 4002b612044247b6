package domain

// TimedLibretto is the final interchange artifact: base text and estimated
// timing combined into one self-contained document for playback viewers.
// It retains no reference to the base libretto or the overlay.
type TimedLibretto struct {
	Version string       `json:"version"`
	Opera   Opera        `json:"opera"`
	Tracks  []TimedTrack `json:"tracks"`
}

// TimedTrack is one audio track with its timed segments.
type TimedTrack struct {
	TrackID         string         `json:"track_id"`
	Title           string         `json:"title"`
	Album           string         `json:"album,omitempty"`
	Artist          string         `json:"artist,omitempty"`
	DiscNumber      int            `json:"disc_number,omitempty"`
	TrackNumber     int            `json:"track_number,omitempty"`
	DurationSeconds float64        `json:"duration_seconds"`
	Act             string         `json:"act,omitempty"`
	Segments        []TimedSegment `json:"segments"`
}

// TimedSegment is a base segment with explicit start/end times and its
// effective type written out.
type TimedSegment struct {
	Start       float64    `json:"start"`
	End         float64    `json:"end"`
	Type        NumberType `json:"type"`
	Character   string     `json:"character,omitempty"`
	Text        string     `json:"text,omitempty"`
	Translation string     `json:"translation,omitempty"`
	Direction   string     `json:"direction,omitempty"`
	Act         string     `json:"act,omitempty"`
	Scene       string     `json:"scene,omitempty"`
	Group       string     `json:"group,omitempty"`
}

// SegmentAt returns the segment active at the given track-relative time:
// the last segment whose start is at or before it.
func (t *TimedTrack) SegmentAt(seconds float64) *TimedSegment {
	for i := len(t.Segments) - 1; i >= 0; i-- {
		if t.Segments[i].Start <= seconds {
			return &t.Segments[i]
		}
	}
	return nil
}
