package pipeline

import "librettist/internal/domain"

// Scaffold builds a fresh timing-overlay template from a base libretto:
// one track per musical number, titled after the number's label, with
// durations and disc/track numbers left for the editor to fill in.
func Scaffold(base *domain.BaseLibretto, basePath string) *domain.TimingOverlay {
	overlay := &domain.TimingOverlay{
		Version:         ArtifactVersion,
		BaseLibrettoRef: basePath,
		TrackTimings:    make([]domain.TrackTiming, 0, len(base.Numbers)),
	}
	for i := range base.Numbers {
		number := &base.Numbers[i]
		overlay.TrackTimings = append(overlay.TrackTimings, domain.TrackTiming{
			TrackTitle: number.Label,
			NumberIDs:  []string{number.NumberID},
		})
	}
	return overlay
}
