// Package builder runs the full resolve-estimate-merge pipeline for one or
// more recordings, fanning the work out over a bounded worker pool.
package builder

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/k0kubun/go-ansi"
	"github.com/schollz/progressbar/v3"

	"librettist/internal/pipeline"
	"librettist/internal/storage"
)

// Options controls a build run.
type Options struct {
	// OverlayKeys are the timing overlays to build. Empty means every
	// "*.overlay.json" under Prefix.
	OverlayKeys []string
	Prefix      string

	MaxConcurrentTasks int

	// Quiet suppresses the terminal progress bar.
	Quiet bool
}

// Builder executes full pipeline builds against a library store.
type Builder struct {
	store  storage.Store
	runner *pipeline.Runner
}

func New(store storage.Store) *Builder {
	return &Builder{store: store, runner: pipeline.NewRunner(store)}
}

// Build runs the pipeline for every selected overlay and returns the keys
// of the timed librettos written. The first failure cancels outstanding
// work; overlays already built stay in place.
func (b *Builder) Build(ctx context.Context, opts Options) ([]string, error) {
	keys := opts.OverlayKeys
	if len(keys) == 0 {
		var err error
		keys, err = b.store.List(ctx, opts.Prefix, ".overlay.json")
		if err != nil {
			return nil, err
		}
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("no overlays to build")
	}

	maxWorkers := opts.MaxConcurrentTasks
	if maxWorkers < 1 || maxWorkers > 10 {
		slog.Warn("invalid max workers, defaulting to 1", "max_workers", opts.MaxConcurrentTasks)
		maxWorkers = 1
	}
	semaphore := make(chan struct{}, maxWorkers)

	bar := newBar(len(keys), opts.Quiet)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	errCh := make(chan error, 1)
	resultCh := make(chan string, len(keys))

	for _, overlayKey := range keys {
		wg.Add(1)
		go func(overlayKey string) {
			defer func() {
				bar.Add(1)
				wg.Done()
			}()

			select {
			case semaphore <- struct{}{}:
			case <-ctx.Done():
				return
			}
			defer func() { <-semaphore }()

			timedKey, err := b.buildOne(ctx, overlayKey)
			if err != nil {
				select {
				case errCh <- fmt.Errorf("%s: %w", overlayKey, err):
					cancel()
				default:
				}
				return
			}
			resultCh <- timedKey
		}(overlayKey)
	}

	wg.Wait()
	close(resultCh)

	select {
	case err := <-errCh:
		return nil, err
	default:
	}

	var results []string
	for key := range resultCh {
		results = append(results, key)
	}
	slog.Info("build complete", "overlays", len(keys), "timed", len(results))
	return results, nil
}

// buildOne runs resolve, estimate and merge for a single overlay. The
// resolved and estimated overlays are kept next to the timed libretto so
// an editor can inspect each stage.
func (b *Builder) buildOne(ctx context.Context, overlayKey string) (string, error) {
	resolvedKey := pipeline.StageOutputKey("resolve", overlayKey)
	estimatedKey := pipeline.StageOutputKey("estimate", overlayKey)
	timedKey := pipeline.StageOutputKey("merge", overlayKey)

	if err := b.runner.Resolve(ctx, overlayKey, resolvedKey); err != nil {
		return "", err
	}
	if err := b.runner.Estimate(ctx, resolvedKey, estimatedKey); err != nil {
		return "", err
	}
	if err := b.runner.Merge(ctx, estimatedKey, timedKey); err != nil {
		return "", err
	}
	return timedKey, nil
}

func newBar(total int, quiet bool) *progressbar.ProgressBar {
	if quiet {
		return progressbar.DefaultSilent(int64(total))
	}
	return progressbar.NewOptions(
		total,
		progressbar.OptionSetWriter(ansi.NewAnsiStdout()),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetTheme(progressbar.ThemeASCII),
		progressbar.OptionFullWidth(),
		progressbar.OptionShowCount(),
		progressbar.OptionSetDescription("[cyan]Building timed librettos...[reset]"),
	)
}
