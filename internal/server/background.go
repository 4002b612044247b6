package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"librettist/internal/job"
	"librettist/internal/progress"
)

// runStageInBackground executes one pipeline stage for a job, feeding
// progress events into the job manager.
func (s *Server) runStageInBackground(ctx context.Context, jobID, stage string, req job.Request) {
	slog.Info("starting pipeline stage", "job_id", jobID, "stage", stage, "overlay", req.OverlayKey)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	if err := s.jobManager.Start(jobID); err != nil {
		slog.Error("failed to start job", "job_id", jobID, "error", err)
		return
	}

	tracker := progress.NewTracker()
	tracker.AddListener(func(event progress.Event) {
		if err := s.jobManager.Record(jobID, event); err != nil {
			slog.Warn("failed to record progress", "job_id", jobID, "error", err)
		}
	})

	err := s.executeStage(ctx, stage, req, tracker)
	if err != nil {
		tracker.SetError(err)
		if ctx.Err() == context.Canceled {
			slog.Warn("job cancelled", "job_id", jobID)
			return
		}
		if failErr := s.jobManager.Fail(jobID, err); failErr != nil {
			slog.Error("failed to mark job failed", "job_id", jobID, "error", failErr)
		}
		slog.Error("pipeline stage failed", "job_id", jobID, "stage", stage, "error", err)
		return
	}

	tracker.Update(progress.StageComplete, job.ProgressComplete, "stage completed")
	if err := s.jobManager.Complete(jobID, fmt.Sprintf("wrote %s", req.OutputKey)); err != nil {
		slog.Error("failed to mark job complete", "job_id", jobID, "error", err)
	}
	slog.Info("pipeline stage completed", "job_id", jobID, "stage", stage, "output", req.OutputKey)
}

func (s *Server) executeStage(ctx context.Context, stage string, req job.Request, tracker *progress.Tracker) error {
	switch stage {
	case "resolve":
		tracker.Update(progress.StageResolving, job.ProgressResolveStart, "resolving track starts")
		return s.runner.Resolve(ctx, req.OverlayKey, req.OutputKey)
	case "estimate":
		tracker.Update(progress.StageEstimating, job.ProgressEstimateStart, "estimating segment times")
		return s.runner.Estimate(ctx, req.OverlayKey, req.OutputKey)
	case "merge":
		tracker.Update(progress.StageMerging, job.ProgressMergeStart, "merging timed libretto")
		return s.runner.Merge(ctx, req.OverlayKey, req.OutputKey)
	default:
		return fmt.Errorf("unknown pipeline stage: %s", stage)
	}
}
