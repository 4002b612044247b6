// Package validate checks base librettos and timing overlays for shape and
// consistency problems before they enter the pipeline. Checks collect every
// problem they find rather than stopping at the first, so an editor can fix
// a scaffold in one pass.
package validate

import (
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"librettist/internal/domain"
)

var (
	ErrMissingField         = errors.New("missing required field")
	ErrDuplicateSegmentID   = errors.New("duplicate segment id")
	ErrUnknownSegmentID     = errors.New("unknown segment id")
	ErrSegmentsUnordered    = errors.New("segment times not ordered")
	ErrNegativeTime         = errors.New("negative segment time")
	ErrNegativeDuration     = errors.New("negative track duration")
	ErrUnaccountedNumber    = errors.New("number neither covered nor omitted")
	ErrUnknownOmittedNumber = errors.New("omitted number not in base libretto")
	ErrConflictingCoverage  = errors.New("number both covered and omitted")
)

// CoverageReport summarises how the overlay's tracks account for the base
// libretto's numbers.
type CoverageReport struct {
	Total       int
	Covered     int
	Omitted     int
	Unaccounted int
}

// BaseLibretto checks a base libretto for internal consistency: required
// opera metadata and unique ids.
func BaseLibretto(base *domain.BaseLibretto) []error {
	var errs []error

	if base.Opera.Title == "" {
		errs = append(errs, fmt.Errorf("%w: opera.title", ErrMissingField))
	}
	if base.Opera.Composer == "" {
		errs = append(errs, fmt.Errorf("%w: opera.composer", ErrMissingField))
	}
	if base.Opera.Language == "" {
		errs = append(errs, fmt.Errorf("%w: opera.language", ErrMissingField))
	}

	seen := make(map[string]bool)
	for i := range base.Numbers {
		number := &base.Numbers[i]
		if number.NumberID == "" {
			errs = append(errs, fmt.Errorf("%w: number_id (label: %s)", ErrMissingField, number.Label))
		}
		for _, seg := range number.Segments {
			if seen[seg.SegmentID] {
				errs = append(errs, fmt.Errorf("%w: %s", ErrDuplicateSegmentID, seg.SegmentID))
			}
			seen[seg.SegmentID] = true
		}
	}

	warn(errs)
	return errs
}

// Overlay checks a timing overlay's internal consistency: ordered,
// non-negative segment times and non-negative durations. Cross-checks
// against a base libretto are done by OverlayAgainstBase.
func Overlay(overlay *domain.TimingOverlay) []error {
	var errs []error

	for i := range overlay.TrackTimings {
		track := &overlay.TrackTimings[i]
		if track.DurationSeconds < 0 {
			errs = append(errs, fmt.Errorf("%w: track %q: %gs", ErrNegativeDuration, track.TrackTitle, track.DurationSeconds))
		}
		prev := -1.0
		for _, st := range track.SegmentTimes {
			if st.Start < 0 {
				errs = append(errs, fmt.Errorf("%w: %gs", ErrNegativeTime, st.Start))
			}
			if st.Start < prev {
				errs = append(errs, fmt.Errorf("%w: track %q", ErrSegmentsUnordered, track.TrackTitle))
			}
			prev = st.Start
		}
	}

	warn(errs)
	return errs
}

// OverlayAgainstBase runs the standalone overlay checks and then
// cross-checks segment references and number coverage against the base
// libretto. Every number must be covered by a track or declared omitted,
// never both.
func OverlayAgainstBase(overlay *domain.TimingOverlay, base *domain.BaseLibretto) ([]error, CoverageReport) {
	errs := Overlay(overlay)

	idx := domain.NewIndex(base)
	for i := range overlay.TrackTimings {
		for _, st := range overlay.TrackTimings[i].SegmentTimes {
			if _, ok := idx.ByID(st.SegmentID); !ok {
				errs = append(errs, fmt.Errorf("%w: %s", ErrUnknownSegmentID, st.SegmentID))
			}
		}
	}

	covered := make(map[string]bool)
	for _, id := range overlay.CoveredNumberIDs() {
		covered[id] = true
	}
	omitted := make(map[string]bool)
	for _, om := range overlay.OmittedNumbers {
		omitted[om.NumberID] = true
		if base.FindNumber(om.NumberID) == nil {
			errs = append(errs, fmt.Errorf("%w: %s", ErrUnknownOmittedNumber, om.NumberID))
		}
		if covered[om.NumberID] {
			errs = append(errs, fmt.Errorf("%w: %s", ErrConflictingCoverage, om.NumberID))
		}
	}

	var unaccounted []string
	for i := range base.Numbers {
		id := base.Numbers[i].NumberID
		if !covered[id] && !omitted[id] {
			unaccounted = append(unaccounted, id)
		}
	}
	sort.Strings(unaccounted)
	for _, id := range unaccounted {
		errs = append(errs, fmt.Errorf("%w: %s", ErrUnaccountedNumber, id))
	}

	report := CoverageReport{
		Total:       len(base.Numbers),
		Covered:     len(covered),
		Omitted:     len(omitted),
		Unaccounted: len(unaccounted),
	}
	slog.Info("number coverage",
		"total", report.Total,
		"covered", report.Covered,
		"omitted", report.Omitted,
		"unaccounted", report.Unaccounted,
	)

	warn(errs)
	return errs, report
}

func warn(errs []error) {
	for _, err := range errs {
		slog.Warn("validation", "error", err)
	}
}
