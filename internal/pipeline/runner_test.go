package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"librettist/internal/domain"
	"librettist/internal/storage"
	"librettist/internal/validate"
)

func newTestRunner(t *testing.T) (*Runner, storage.Store) {
	t.Helper()
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	return NewRunner(store), store
}

func seedLibrary(t *testing.T, store storage.Store) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, storage.WriteJSON(ctx, store, "mozart/figaro/base.libretto.json", figaroBase()))

	overlay := overlayFor(
		domain.TrackTiming{
			TrackTitle:      `No. 1 Duettino "Se a caso madama"`,
			DiscNumber:      1,
			TrackNumber:     1,
			DurationSeconds: 200,
			NumberIDs:       []string{"no-1"},
		},
		domain.TrackTiming{
			TrackTitle:      `No. 2 Cavatina "Se vuol ballare"`,
			DiscNumber:      1,
			TrackNumber:     2,
			DurationSeconds: 160,
			NumberIDs:       []string{"no-2"},
		},
	)
	require.NoError(t, storage.WriteJSON(ctx, store, "mozart/figaro/giulini.overlay.json", overlay))
}

func TestRunnerFullPipeline(t *testing.T) {
	runner, store := newTestRunner(t)
	seedLibrary(t, store)
	ctx := context.Background()

	require.NoError(t, runner.Resolve(ctx, "mozart/figaro/giulini.overlay.json", "mozart/figaro/giulini.resolved.json"))
	require.NoError(t, runner.Estimate(ctx, "mozart/figaro/giulini.resolved.json", "mozart/figaro/giulini.estimated.json"))
	require.NoError(t, runner.Merge(ctx, "mozart/figaro/giulini.estimated.json", "mozart/figaro/giulini.timed.json"))

	var resolved domain.TimingOverlay
	require.NoError(t, storage.ReadJSON(ctx, store, "mozart/figaro/giulini.resolved.json", &resolved))
	assert.Equal(t, "no-1-001", resolved.TrackTimings[0].StartSegmentID)
	assert.Equal(t, "no-2-001", resolved.TrackTimings[1].StartSegmentID)

	var timed domain.TimedLibretto
	require.NoError(t, storage.ReadJSON(ctx, store, "mozart/figaro/giulini.timed.json", &timed))
	require.Len(t, timed.Tracks, 2)
	assert.Equal(t, "d1-t1", timed.Tracks[0].TrackID)
	assert.Equal(t, "Le nozze di Figaro (Giulini)", timed.Tracks[0].Album)
	require.NotEmpty(t, timed.Tracks[0].Segments)
	assert.Equal(t, 200.0, timed.Tracks[0].Segments[len(timed.Tracks[0].Segments)-1].End)
}

func TestRunnerBaseRefResolvedNextToOverlay(t *testing.T) {
	runner, store := newTestRunner(t)
	seedLibrary(t, store)
	ctx := context.Background()

	// The seeded overlay references "base.libretto.json" with no
	// directory; the runner must find it in the overlay's own folder.
	err := runner.Resolve(ctx, "mozart/figaro/giulini.overlay.json", "out.json")
	require.NoError(t, err)
}

func TestRunnerFailedStageWritesNothing(t *testing.T) {
	runner, store := newTestRunner(t)
	ctx := context.Background()
	require.NoError(t, storage.WriteJSON(ctx, store, "figaro/base.libretto.json", figaroBase()))

	overlay := overlayFor(domain.TrackTiming{
		TrackTitle:      "Track 1",
		DurationSeconds: 100,
		NumberIDs:       []string{"no-99"},
	})
	require.NoError(t, storage.WriteJSON(ctx, store, "figaro/bad.overlay.json", overlay))

	err := runner.Resolve(ctx, "figaro/bad.overlay.json", "figaro/bad.resolved.json")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNumberNotFound)
	assert.False(t, store.Exists(ctx, "figaro/bad.resolved.json"))
}

func TestRunnerRejectsInvalidOverlay(t *testing.T) {
	runner, store := newTestRunner(t)
	ctx := context.Background()
	require.NoError(t, storage.WriteJSON(ctx, store, "figaro/base.libretto.json", figaroBase()))

	overlay := overlayFor(domain.TrackTiming{
		TrackTitle:      "Track 1",
		DurationSeconds: -10,
		NumberIDs:       []string{"no-1"},
	})
	require.NoError(t, storage.WriteJSON(ctx, store, "figaro/bad.overlay.json", overlay))

	err := runner.Resolve(ctx, "figaro/bad.overlay.json", "figaro/out.json")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRunnerScaffold(t *testing.T) {
	runner, store := newTestRunner(t)
	ctx := context.Background()
	require.NoError(t, storage.WriteJSON(ctx, store, "figaro/base.libretto.json", figaroBase()))

	require.NoError(t, runner.Scaffold(ctx, "figaro/base.libretto.json", "figaro/new.overlay.json"))

	var overlay domain.TimingOverlay
	require.NoError(t, storage.ReadJSON(ctx, store, "figaro/new.overlay.json", &overlay))
	assert.Equal(t, "figaro/base.libretto.json", overlay.BaseLibrettoRef)
	assert.Len(t, overlay.TrackTimings, 2)

	// A second scaffold must not clobber the (possibly hand-edited) file.
	err := runner.Scaffold(ctx, "figaro/base.libretto.json", "figaro/new.overlay.json")
	require.Error(t, err)
}

func TestRunnerValidate(t *testing.T) {
	runner, store := newTestRunner(t)
	seedLibrary(t, store)
	ctx := context.Background()

	errs, report, err := runner.Validate(ctx, "mozart/figaro/giulini.overlay.json")
	require.NoError(t, err)
	assert.Empty(t, errs)
	assert.Equal(t, 2, report.Covered)

	_, _, err = runner.Validate(ctx, "mozart/figaro/missing.overlay.json")
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStageOutputKey(t *testing.T) {
	assert.Equal(t, "a/b.resolved.overlay.json", StageOutputKey("resolve", "a/b.overlay.json"))
	assert.Equal(t, "a/b.estimated.overlay.json", StageOutputKey("estimate", "a/b.overlay.json"))
	assert.Equal(t, "a/b.timed.json", StageOutputKey("merge", "a/b.overlay.json"))
}

func TestRunnerValidateReportsProblems(t *testing.T) {
	runner, store := newTestRunner(t)
	ctx := context.Background()
	require.NoError(t, storage.WriteJSON(ctx, store, "figaro/base.libretto.json", figaroBase()))

	overlay := overlayFor(domain.TrackTiming{
		TrackTitle:      "Track 1",
		DurationSeconds: 100,
		NumberIDs:       []string{"no-1"},
	})
	require.NoError(t, storage.WriteJSON(ctx, store, "figaro/partial.overlay.json", overlay))

	errs, report, err := runner.Validate(ctx, "figaro/partial.overlay.json")
	require.NoError(t, err)
	require.NotEmpty(t, errs)
	assert.ErrorIs(t, errs[len(errs)-1], validate.ErrUnaccountedNumber)
	assert.Equal(t, 1, report.Unaccounted)
}
