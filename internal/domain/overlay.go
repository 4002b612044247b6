package domain

// TimingOverlay is the recording-specific record enriched across pipeline
// stages. It starts life as a hand-edited scaffold, gains
// start_segment_id values during resolve and segment_times during
// estimate. Stages read one overlay file and write a new one; the input is
// never mutated.
type TimingOverlay struct {
	Version         string          `json:"version"`
	BaseLibrettoRef string          `json:"base_libretto_ref"`
	Recording       Recording       `json:"recording"`
	Contributors    []Contributor   `json:"contributors,omitempty"`
	TrackTimings    []TrackTiming   `json:"track_timings"`
	OmittedNumbers  []OmittedNumber `json:"omitted_numbers,omitempty"`
}

// Recording identifies the specific performance the overlay times.
type Recording struct {
	Conductor  string `json:"conductor,omitempty"`
	Orchestra  string `json:"orchestra,omitempty"`
	Year       int    `json:"year,omitempty"`
	Label      string `json:"label,omitempty"`
	AlbumTitle string `json:"album_title,omitempty"`
}

// Contributor credits a person who supplied timing data.
type Contributor struct {
	Name string `json:"name"`
	Role string `json:"role,omitempty"`
	Date string `json:"date,omitempty"`
}

// TrackTiming carries the timing state for a single audio track.
type TrackTiming struct {
	TrackTitle      string        `json:"track_title"`
	DiscNumber      int           `json:"disc_number,omitempty"`
	TrackNumber     int           `json:"track_number,omitempty"`
	DurationSeconds float64       `json:"duration_seconds"`
	NumberIDs       []string      `json:"number_ids"`
	StartSegmentID  string        `json:"start_segment_id,omitempty"`
	SegmentTimes    []SegmentTime `json:"segment_times,omitempty"`

	// LowConfidence marks tracks whose start segment came from the
	// first-segment fallback rather than an anchor match. A warning for
	// the operator, not a failure.
	LowConfidence bool `json:"low_confidence,omitempty"`
}

// SegmentTime is one segment's track-relative start time.
type SegmentTime struct {
	SegmentID string  `json:"segment_id"`
	Start     float64 `json:"start"`
}

// OmittedNumber declares a number the recording does not perform.
type OmittedNumber struct {
	NumberID string `json:"number_id"`
	Reason   string `json:"reason,omitempty"`
}

// Clone returns a deep copy of the overlay so a stage can enrich its output
// without touching its input.
func (o *TimingOverlay) Clone() *TimingOverlay {
	clone := *o
	clone.Contributors = append([]Contributor(nil), o.Contributors...)
	clone.OmittedNumbers = append([]OmittedNumber(nil), o.OmittedNumbers...)
	clone.TrackTimings = make([]TrackTiming, len(o.TrackTimings))
	for i, track := range o.TrackTimings {
		track.NumberIDs = append([]string(nil), track.NumberIDs...)
		track.SegmentTimes = append([]SegmentTime(nil), track.SegmentTimes...)
		clone.TrackTimings[i] = track
	}
	return &clone
}

// CoveredNumberIDs returns the distinct number ids referenced by any track,
// preserving first-reference order.
func (o *TimingOverlay) CoveredNumberIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, track := range o.TrackTimings {
		for _, id := range track.NumberIDs {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	return ids
}
