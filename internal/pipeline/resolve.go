// Package pipeline implements the three timing stages: resolve locates
// each track's first segment in the base libretto, estimate assigns
// per-segment start times inside each track, and merge produces the final
// self-contained timed libretto. Every stage is a pure function over its
// in-memory inputs; file handling lives in the Runner.
package pipeline

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"librettist/internal/domain"
	"librettist/internal/normalize"
)

// Resolution records how one track's start segment was determined.
type Resolution struct {
	TrackTitle    string
	DiscNumber    int
	TrackNumber   int
	Anchor        string
	SegmentID     string
	Pos           int
	Manual        bool
	LowConfidence bool

	// OutOfOrder is set when a manual start segment sits at or before the
	// previous track's resolved position. The value is kept, but estimate
	// will reject the track's empty span.
	OutOfOrder bool
}

// Resolve determines start_segment_id for every track in the overlay.
//
// Tracks are processed in order, carrying a cursor over global segment
// positions: each track's candidate pool is the segments of its own
// number_ids at or after the position left by the previous track. The
// match is the earliest candidate whose normalized text or translation
// contains the track title's first quoted anchor as a contiguous
// substring. Without an anchor or a match, the track falls back to the
// first segment of its first number (clamped forward to the cursor) and
// is marked low-confidence. Resolved positions are strictly increasing
// across the track list.
//
// The input overlay is not mutated; a hand-filled start_segment_id is
// preserved as a manual override. A manual value sitting at or before the
// previous track's position is kept but flagged out of order, and never
// moves the cursor backwards.
func Resolve(base *domain.BaseLibretto, overlay *domain.TimingOverlay) (*domain.TimingOverlay, []Resolution, error) {
	idx := domain.NewIndex(base)
	out := overlay.Clone()
	resolutions := make([]Resolution, 0, len(out.TrackTimings))

	cursor := 0
	for i := range out.TrackTimings {
		track := &out.TrackTimings[i]
		for _, numberID := range track.NumberIDs {
			if idx.Number(numberID) == nil {
				return nil, nil, fmt.Errorf("track %q: %w: %s", track.TrackTitle, ErrNumberNotFound, numberID)
			}
		}

		res := Resolution{
			TrackTitle:  track.TrackTitle,
			DiscNumber:  track.DiscNumber,
			TrackNumber: track.TrackNumber,
		}

		// A scaffold may carry hand-filled start segments; keep them.
		if track.StartSegmentID != "" {
			ref, ok := idx.ByID(track.StartSegmentID)
			if !ok {
				return nil, nil, fmt.Errorf("track %q: %w: %s", track.TrackTitle, ErrUnknownSegment, track.StartSegmentID)
			}
			if ref.Pos < cursor {
				res.OutOfOrder = true
				slog.Warn("manual start segment at or before the previous track's",
					"track", track.TrackTitle,
					"disc", track.DiscNumber,
					"number", track.TrackNumber,
					"segment", track.StartSegmentID)
			}
			res.SegmentID = track.StartSegmentID
			res.Pos = ref.Pos
			res.Manual = true
			resolutions = append(resolutions, res)
			// The cursor never moves backwards; later tracks still resolve
			// past segments earlier tracks already consumed.
			if ref.Pos+1 > cursor {
				cursor = ref.Pos + 1
			}
			continue
		}

		anchor, hasAnchor := normalize.ExtractAnchor(track.TrackTitle)
		matched := -1
		if hasAnchor {
			res.Anchor = anchor
			matched = matchAnchor(idx, anchor, track.NumberIDs, cursor)
		}

		if matched < 0 {
			pos, err := fallbackPosition(idx, track, cursor)
			if err != nil {
				return nil, nil, err
			}
			matched = pos
			track.LowConfidence = true
			res.LowConfidence = true
			slog.Warn("anchor unresolved, falling back to first segment",
				"track", track.TrackTitle,
				"disc", track.DiscNumber,
				"number", track.TrackNumber,
				"anchor", anchor)
		}

		track.StartSegmentID = idx.At(matched).Segment.SegmentID
		res.SegmentID = track.StartSegmentID
		res.Pos = matched
		resolutions = append(resolutions, res)
		cursor = matched + 1
	}

	return out, resolutions, nil
}

// matchAnchor returns the global position of the earliest segment in the
// given numbers, at or after the cursor, containing the normalized anchor.
// Returns -1 when nothing matches.
func matchAnchor(idx *domain.Index, anchor string, numberIDs []string, cursor int) int {
	want := normalize.ForMatch(anchor)
	if want == "" {
		return -1
	}
	for pos := cursor; pos < idx.Len(); pos++ {
		ref := idx.At(pos)
		if !slices.Contains(numberIDs, ref.Number.NumberID) {
			continue
		}
		if strings.Contains(normalize.ForMatch(ref.Segment.Text), want) {
			return pos
		}
		if ref.Segment.Translation != "" && strings.Contains(normalize.ForMatch(ref.Segment.Translation), want) {
			return pos
		}
	}
	return -1
}

// fallbackPosition is the first segment of the track's first number,
// pushed forward to the cursor when earlier tracks already consumed it.
func fallbackPosition(idx *domain.Index, track *domain.TrackTiming, cursor int) (int, error) {
	if len(track.NumberIDs) == 0 {
		return 0, fmt.Errorf("track %q: %w: track references no numbers", track.TrackTitle, ErrNumberNotFound)
	}
	pos, _ := idx.NumberStart(track.NumberIDs[0])
	if pos < cursor {
		pos = cursor
	}
	if pos >= idx.Len() {
		return 0, fmt.Errorf("track %q: %w: no segments remain after position %d", track.TrackTitle, ErrEmptySpan, cursor)
	}
	return pos, nil
}
