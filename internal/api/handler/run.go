package handler

import (
	"context"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/timmy/autoposter/internal/service"
)

// RunHandler exposes the run-controller trigger. One invocation at a time:
// a second trigger while a run is in flight gets 409 without touching the
// pipeline, on top of the lease guard inside the controller itself.
type RunHandler struct {
	runner *service.Runner

	mu      sync.Mutex
	running bool
	last    *service.RunResult
}

// NewRunHandler creates a run handler.
// Parameters:
//   - runner: run controller to trigger.
// Returns:
//   - *RunHandler: handler instance.
func NewRunHandler(runner *service.Runner) *RunHandler {
	return &RunHandler{runner: runner}
}

// TryRun executes one invocation unless one is already in flight. It is
// shared by the HTTP trigger and the daily timer.
// Parameters:
//   - ctx: context for the run.
// Returns:
//   - *service.RunResult: run outcome, nil when a run was already in flight.
func (h *RunHandler) TryRun(ctx context.Context) *service.RunResult {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return nil
	}
	h.running = true
	h.mu.Unlock()

	result := h.runner.Run(ctx)

	h.mu.Lock()
	h.running = false
	h.last = result
	h.mu.Unlock()
	return result
}

// Trigger handles POST /api/v1/runs. The run executes synchronously; the
// response carries the full result.
func (h *RunHandler) Trigger(c *gin.Context) {
	result := h.TryRun(c.Request.Context())
	if result == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "a run is already in progress"})
		return
	}

	status := http.StatusOK
	if result.Status == service.RunFailed {
		status = http.StatusInternalServerError
	}
	if result.Status == service.RunBusy {
		status = http.StatusConflict
	}
	c.JSON(status, result)
}

// Status handles GET /api/v1/runs/status.
func (h *RunHandler) Status(c *gin.Context) {
	h.mu.Lock()
	running := h.running
	last := h.last
	h.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"running":  running,
		"last_run": last,
	})
}
