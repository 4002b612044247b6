package pipeline

import (
	"fmt"

	"librettist/internal/domain"
)

// ArtifactVersion is written into every timed libretto this build emits.
const ArtifactVersion = "1.0"

// Merge combines a base libretto with an estimated overlay into the final
// timed libretto. For each entry in a track's segment_times the referenced
// base segment's fields are copied over, the effective type is written out
// explicitly, and the end time is the next entry's start (the track
// duration for the last entry). The result shares no memory with either
// input.
func Merge(base *domain.BaseLibretto, overlay *domain.TimingOverlay) (*domain.TimedLibretto, error) {
	idx := domain.NewIndex(base)

	timed := &domain.TimedLibretto{
		Version: ArtifactVersion,
		Opera:   base.Opera,
		Tracks:  make([]domain.TimedTrack, 0, len(overlay.TrackTimings)),
	}

	for i := range overlay.TrackTimings {
		track := &overlay.TrackTimings[i]

		segments := make([]domain.TimedSegment, 0, len(track.SegmentTimes))
		for j, st := range track.SegmentTimes {
			ref, ok := idx.ByID(st.SegmentID)
			if !ok {
				return nil, fmt.Errorf("track %q: %w: %s", track.TrackTitle, ErrUnknownSegment, st.SegmentID)
			}

			end := track.DurationSeconds
			if j+1 < len(track.SegmentTimes) {
				end = track.SegmentTimes[j+1].Start
			}

			seg := ref.Segment
			segments = append(segments, domain.TimedSegment{
				Start:       st.Start,
				End:         end,
				Type:        seg.EffectiveType(ref.Number),
				Character:   seg.Character,
				Text:        seg.Text,
				Translation: seg.Translation,
				Direction:   seg.Direction,
				Act:         ref.Number.Act,
				Scene:       ref.Number.Scene,
				Group:       seg.Group,
			})
		}

		act := ""
		if len(segments) > 0 {
			act = segments[0].Act
		}

		timed.Tracks = append(timed.Tracks, domain.TimedTrack{
			TrackID:         trackID(track, i),
			Title:           track.TrackTitle,
			Album:           overlay.Recording.AlbumTitle,
			Artist:          recordingArtist(&overlay.Recording),
			DiscNumber:      track.DiscNumber,
			TrackNumber:     track.TrackNumber,
			DurationSeconds: track.DurationSeconds,
			Act:             act,
			Segments:        segments,
		})
	}

	return timed, nil
}

// trackID derives a stable id from disc and track numbers, with a
// positional fallback for tracks missing both.
func trackID(track *domain.TrackTiming, index int) string {
	switch {
	case track.DiscNumber > 0 && track.TrackNumber > 0:
		return fmt.Sprintf("d%d-t%d", track.DiscNumber, track.TrackNumber)
	case track.TrackNumber > 0:
		return fmt.Sprintf("t%d", track.TrackNumber)
	default:
		return fmt.Sprintf("track-%d", index+1)
	}
}

// recordingArtist renders "conductor / orchestra" from whichever parts the
// recording metadata carries.
func recordingArtist(rec *domain.Recording) string {
	switch {
	case rec.Conductor != "" && rec.Orchestra != "":
		return rec.Conductor + " / " + rec.Orchestra
	case rec.Conductor != "":
		return rec.Conductor
	default:
		return rec.Orchestra
	}
}
