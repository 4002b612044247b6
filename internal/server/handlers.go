package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"librettist/internal/job"
	"librettist/internal/pipeline"
	"librettist/internal/storage"
	"librettist/internal/validate"
)

// runStage returns a handler that submits a background job for the given
// pipeline stage.
func (s *Server) runStage(stage string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req job.Request
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(400, ErrorResponse{Error: fmt.Sprintf("invalid request: %v", err)})
			return
		}

		if !s.store.Exists(c.Request.Context(), req.OverlayKey) {
			c.JSON(404, ErrorResponse{Error: fmt.Sprintf("overlay not found: %s", req.OverlayKey)})
			return
		}
		if req.OutputKey == "" {
			req.OutputKey = pipeline.StageOutputKey(stage, req.OverlayKey)
		}

		jobStatus, ctx := s.jobManager.CreateJob(stage, req)
		go s.runStageInBackground(ctx, jobStatus.ID, stage, req)

		c.JSON(202, StageAcceptedResponse{
			Message: "stage started",
			JobID:   jobStatus.ID,
		})
	}
}

// validateOverlay runs validation synchronously; it is fast enough not to
// need a job.
func (s *Server) validateOverlay(c *gin.Context) {
	var req job.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(400, ErrorResponse{Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}

	errs, report, err := s.runner.Validate(c.Request.Context(), req.OverlayKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(404, ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(500, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(200, validationResponse(errs, report))
}

func validationResponse(errs []error, report validate.CoverageReport) ValidationResponse {
	messages := make([]string, 0, len(errs))
	for _, err := range errs {
		messages = append(messages, err.Error())
	}
	return ValidationResponse{
		Valid:    len(errs) == 0,
		Errors:   messages,
		Coverage: report,
	}
}

// listLibrettos lists the base libretto files in the library.
func (s *Server) listLibrettos(c *gin.Context) {
	keys, err := s.store.List(c.Request.Context(), c.Query("prefix"), ".libretto.json")
	if err != nil {
		c.JSON(500, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(200, gin.H{"librettos": keys})
}

// listOverlays lists the timing overlay files in the library.
func (s *Server) listOverlays(c *gin.Context) {
	keys, err := s.store.List(c.Request.Context(), c.Query("prefix"), ".overlay.json")
	if err != nil {
		c.JSON(500, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(200, gin.H{"overlays": keys})
}

// getDocument streams a raw library document.
func (s *Server) getDocument(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")

	data, err := s.store.Read(c.Request.Context(), key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(404, ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(500, ErrorResponse{Error: err.Error()})
		return
	}

	c.Data(200, "application/json", data)
}

// getJobStatus handles job status requests.
func (s *Server) getJobStatus(c *gin.Context) {
	jobStatus, err := s.jobManager.GetJob(c.Param("id"))
	if err != nil {
		c.JSON(404, ErrorResponse{Error: err.Error()})
		return
	}
	c.JSON(200, jobStatus)
}

// cancelJob handles job cancellation requests.
func (s *Server) cancelJob(c *gin.Context) {
	if err := s.jobManager.CancelJob(c.Param("id")); err != nil {
		switch {
		case errors.Is(err, job.ErrNotFound):
			c.JSON(404, ErrorResponse{Error: err.Error()})
		case errors.Is(err, job.ErrInvalidState):
			c.JSON(400, ErrorResponse{Error: err.Error()})
		default:
			c.JSON(500, ErrorResponse{Error: err.Error()})
		}
		return
	}
	c.JSON(200, MessageResponse{Message: "job cancelled"})
}

// listJobs handles listing all jobs.
func (s *Server) listJobs(c *gin.Context) {
	page := 1
	pageSize := job.DefaultPageSize

	if p := c.Query("page"); p != "" {
		if parsed, err := strconv.Atoi(p); err == nil && parsed > 0 {
			page = parsed
		}
	}
	if ps := c.Query("page_size"); ps != "" {
		if parsed, err := strconv.Atoi(ps); err == nil && parsed > 0 && parsed <= job.MaxPageSize {
			pageSize = parsed
		}
	}

	c.JSON(200, s.jobManager.ListJobs(page, pageSize))
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
