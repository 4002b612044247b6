package pipeline

import (
	"fmt"
	"math"
	"strings"

	"librettist/internal/domain"
)

// recitativeDiscount halves the word weight of recitative segments:
// recitative is sung far faster than metered numbers.
const recitativeDiscount = 0.5

// Estimate assigns a track-relative start time to every segment in each
// track's span and returns a new overlay with segment_times populated.
//
// Track i's span runs from its resolved start segment up to the next
// track's, in global order; the final track's span runs to the end of its
// last number. Each track's duration is distributed across the span
// proportionally to word count, with recitative segments discounted to
// half weight. Segments with no text carry weight zero but still occupy a
// point in the allocation. A span whose total weight is zero (purely
// instrumental) gets every start at 0.
func Estimate(base *domain.BaseLibretto, overlay *domain.TimingOverlay) (*domain.TimingOverlay, error) {
	idx := domain.NewIndex(base)
	out := overlay.Clone()

	for i := range out.TrackTimings {
		track := &out.TrackTimings[i]

		spanStart, spanEnd, err := trackSpan(idx, out.TrackTimings, i)
		if err != nil {
			return nil, err
		}
		if spanEnd <= spanStart {
			return nil, fmt.Errorf("track %q: %w: span [%d, %d)", track.TrackTitle, ErrEmptySpan, spanStart, spanEnd)
		}
		if track.DurationSeconds <= 0 {
			return nil, fmt.Errorf("track %q: %w: got %g", track.TrackTitle, ErrZeroDuration, track.DurationSeconds)
		}

		weights := make([]float64, 0, spanEnd-spanStart)
		total := 0.0
		for pos := spanStart; pos < spanEnd; pos++ {
			w := segmentWeight(idx.At(pos))
			weights = append(weights, w)
			total += w
		}

		times := make([]domain.SegmentTime, 0, len(weights))
		cumulative := 0.0
		for k, w := range weights {
			start := 0.0
			if total > 0 {
				start = roundMillis(track.DurationSeconds * cumulative / total)
			}
			times = append(times, domain.SegmentTime{
				SegmentID: idx.At(spanStart + k).Segment.SegmentID,
				Start:     start,
			})
			cumulative += w
		}
		track.SegmentTimes = times
	}

	return out, nil
}

// trackSpan returns the half-open global position range covered by track i.
func trackSpan(idx *domain.Index, tracks []domain.TrackTiming, i int) (int, int, error) {
	track := &tracks[i]
	ref, ok := idx.ByID(track.StartSegmentID)
	if !ok {
		return 0, 0, fmt.Errorf("track %q: %w: %q", track.TrackTitle, ErrUnknownSegment, track.StartSegmentID)
	}

	if i+1 < len(tracks) {
		next := &tracks[i+1]
		nextRef, ok := idx.ByID(next.StartSegmentID)
		if !ok {
			return 0, 0, fmt.Errorf("track %q: %w: %q", next.TrackTitle, ErrUnknownSegment, next.StartSegmentID)
		}
		return ref.Pos, nextRef.Pos, nil
	}

	// Final track: span runs to the end of its last number.
	if len(track.NumberIDs) == 0 {
		return 0, 0, fmt.Errorf("track %q: %w: track references no numbers", track.TrackTitle, ErrNumberNotFound)
	}
	lastNumber := track.NumberIDs[len(track.NumberIDs)-1]
	end, ok := idx.NumberEnd(lastNumber)
	if !ok {
		return 0, 0, fmt.Errorf("track %q: %w: %s", track.TrackTitle, ErrNumberNotFound, lastNumber)
	}
	return ref.Pos, end, nil
}

// segmentWeight is word count scaled by the type discount. Pure stage
// directions and interludes have no text and weigh nothing.
func segmentWeight(ref domain.SegmentRef) float64 {
	words := len(strings.Fields(ref.Segment.Text))
	if words == 0 {
		return 0
	}
	if ref.Segment.EffectiveType(ref.Number) == domain.NumberRecitative {
		return float64(words) * recitativeDiscount
	}
	return float64(words)
}

// roundMillis rounds to millisecond precision.
func roundMillis(seconds float64) float64 {
	return math.Round(seconds*1000) / 1000
}
