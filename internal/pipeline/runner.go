package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"librettist/internal/domain"
	"librettist/internal/storage"
	"librettist/internal/validate"
)

// ErrValidation is returned when a stage's inputs fail validation.
var ErrValidation = errors.New("validation failed")

// Runner executes pipeline stages against a library store. Each stage
// loads its inputs, validates them eagerly, computes the enriched
// document, and writes it in one step: a failing stage leaves the
// library untouched.
type Runner struct {
	store storage.Store
}

func NewRunner(store storage.Store) *Runner {
	return &Runner{store: store}
}

// Resolve fills in start_segment_id for every track of the overlay at
// overlayKey and writes the enriched overlay to outKey.
func (r *Runner) Resolve(ctx context.Context, overlayKey, outKey string) error {
	base, overlay, err := r.load(ctx, overlayKey)
	if err != nil {
		return err
	}

	resolved, resolutions, err := Resolve(base, overlay)
	if err != nil {
		return err
	}
	for _, res := range resolutions {
		slog.Debug("resolved track start",
			"track", res.TrackTitle,
			"segment", res.SegmentID,
			"manual", res.Manual,
			"low_confidence", res.LowConfidence,
		)
	}

	return storage.WriteJSON(ctx, r.store, outKey, resolved)
}

// Estimate fills in segment_times for every track of the overlay at
// overlayKey and writes the enriched overlay to outKey.
func (r *Runner) Estimate(ctx context.Context, overlayKey, outKey string) error {
	base, overlay, err := r.load(ctx, overlayKey)
	if err != nil {
		return err
	}

	estimated, err := Estimate(base, overlay)
	if err != nil {
		return err
	}

	return storage.WriteJSON(ctx, r.store, outKey, estimated)
}

// Merge combines the overlay at overlayKey with its base libretto into a
// timed libretto at outKey.
func (r *Runner) Merge(ctx context.Context, overlayKey, outKey string) error {
	base, overlay, err := r.load(ctx, overlayKey)
	if err != nil {
		return err
	}

	timed, err := Merge(base, overlay)
	if err != nil {
		return err
	}

	return storage.WriteJSON(ctx, r.store, outKey, timed)
}

// Scaffold generates a blank overlay template for the base libretto at
// baseKey and writes it to outKey. It refuses to overwrite an existing
// overlay: scaffolds carry hand-edited timing data once filled in.
func (r *Runner) Scaffold(ctx context.Context, baseKey, outKey string) error {
	if r.store.Exists(ctx, outKey) {
		return fmt.Errorf("refusing to overwrite existing overlay %s", outKey)
	}

	var base domain.BaseLibretto
	if err := storage.ReadJSON(ctx, r.store, baseKey, &base); err != nil {
		return err
	}
	if errs := validate.BaseLibretto(&base); len(errs) > 0 {
		return fmt.Errorf("%s: %w: %w", baseKey, ErrValidation, errors.Join(errs...))
	}

	return storage.WriteJSON(ctx, r.store, outKey, Scaffold(&base, baseKey))
}

// Validate checks the overlay at overlayKey against its base libretto and
// returns the problems found. The error return reports load failures only.
func (r *Runner) Validate(ctx context.Context, overlayKey string) ([]error, validate.CoverageReport, error) {
	var overlay domain.TimingOverlay
	if err := storage.ReadJSON(ctx, r.store, overlayKey, &overlay); err != nil {
		return nil, validate.CoverageReport{}, err
	}

	var base domain.BaseLibretto
	if err := storage.ReadJSON(ctx, r.store, baseKey(overlayKey, &overlay), &base); err != nil {
		return nil, validate.CoverageReport{}, err
	}

	errs, report := validate.OverlayAgainstBase(&overlay, &base)
	return errs, report, nil
}

// load reads an overlay and the base libretto it references, failing on
// any validation error in either.
func (r *Runner) load(ctx context.Context, overlayKey string) (*domain.BaseLibretto, *domain.TimingOverlay, error) {
	var overlay domain.TimingOverlay
	if err := storage.ReadJSON(ctx, r.store, overlayKey, &overlay); err != nil {
		return nil, nil, err
	}

	var base domain.BaseLibretto
	bKey := baseKey(overlayKey, &overlay)
	if err := storage.ReadJSON(ctx, r.store, bKey, &base); err != nil {
		return nil, nil, err
	}

	if errs := validate.BaseLibretto(&base); len(errs) > 0 {
		return nil, nil, fmt.Errorf("%s: %w: %w", bKey, ErrValidation, errors.Join(errs...))
	}
	if errs := validate.Overlay(&overlay); len(errs) > 0 {
		return nil, nil, fmt.Errorf("%s: %w: %w", overlayKey, ErrValidation, errors.Join(errs...))
	}

	return &base, &overlay, nil
}

// StageOutputKey derives the conventional output key for a stage from the
// overlay key: resolve and estimate write enriched overlays, merge writes
// the timed libretto.
func StageOutputKey(stage, overlayKey string) string {
	base := strings.TrimSuffix(strings.TrimSuffix(overlayKey, ".json"), ".overlay")
	switch stage {
	case "resolve":
		return base + ".resolved.overlay.json"
	case "estimate":
		return base + ".estimated.overlay.json"
	default:
		return base + ".timed.json"
	}
}

// baseKey resolves the overlay's base_libretto_ref: absolute refs are
// library keys as-is, bare filenames resolve next to the overlay.
func baseKey(overlayKey string, overlay *domain.TimingOverlay) string {
	ref := overlay.BaseLibrettoRef
	if path.Dir(ref) != "." {
		return ref
	}
	return path.Join(path.Dir(overlayKey), ref)
}
