// Package httphandler is the HTTP driving adapter serving the REST API.
package httphandler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ericfisherdev/stalekeeper/internal/application"
	"github.com/ericfisherdev/stalekeeper/internal/domain/model"
	"github.com/ericfisherdev/stalekeeper/internal/domain/port/driven"
)

// defaultRunListLimit bounds GET /api/v1/runs when no limit is given.
const defaultRunListLimit = 50

// dispatchTimeout bounds a manually dispatched stale pass.
const dispatchTimeout = 30 * time.Minute

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	runStore    driven.RunStore
	actionStore driven.ActionStore
	staleSvc    *application.StaleService
	releaseSvc  *application.ReleaseService
	logger      *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(
	runStore driven.RunStore,
	actionStore driven.ActionStore,
	staleSvc *application.StaleService,
	releaseSvc *application.ReleaseService,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		runStore:    runStore,
		actionStore: actionStore,
		staleSvc:    staleSvc,
		releaseSvc:  releaseSvc,
		logger:      logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with logging and recovery middleware. metricsHandler may be nil to disable
// the /metrics endpoint.
func NewServeMux(h *Handler, metricsHandler http.Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/runs", h.ListRuns)
	mux.HandleFunc("GET /api/v1/runs/{id}/actions", h.ListRunActions)
	mux.HandleFunc("GET /api/v1/policy", h.GetPolicy)
	mux.HandleFunc("GET /api/v1/policy/preview", h.PreviewPolicy)
	mux.HandleFunc("POST /api/v1/dispatch", h.Dispatch)
	mux.HandleFunc("GET /api/v1/health", h.Health)

	if metricsHandler != nil {
		mux.Handle("GET /metrics", metricsHandler)
	}

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// ListRuns returns the most recent triage runs.
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit := defaultRunListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	runs, err := h.runStore.ListRecent(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list runs", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]RunResponse, 0, len(runs))
	for _, run := range runs {
		resp = append(resp, toRunResponse(run))
	}

	writeJSON(w, http.StatusOK, resp)
}

// ListRunActions returns all actions recorded for a single run.
func (h *Handler) ListRunActions(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid run ID")
		return
	}

	run, err := h.runStore.GetByID(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get run", "run_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if run == nil {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}

	actions, err := h.actionStore.ListByRun(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to list actions", "run_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]ActionResponse, 0, len(actions))
	for _, action := range actions {
		resp = append(resp, toActionResponse(action))
	}

	writeJSON(w, http.StatusOK, resp)
}

// GetPolicy returns the effective triage policy.
func (h *Handler) GetPolicy(w http.ResponseWriter, r *http.Request) {
	stale := h.staleSvc.Policy()
	release := h.releaseSvc.Policy()

	writeJSON(w, http.StatusOK, PolicyResponse{
		Stale: StalePolicyResponse{
			Schedule:                stale.Schedule,
			DaysBeforeStale:         stale.DaysBeforeStale,
			DaysBeforeClose:         stale.DaysBeforeClose,
			StaleLabel:              stale.StaleLabel,
			StaleMessage:            stale.StaleMessage,
			OnlyLabels:              stale.OnlyLabels,
			ExemptLabels:            stale.ExemptLabels,
			LabelsToRemoveWhenStale: stale.LabelsToRemoveWhenStale,
			OperationsPerRun:        stale.OperationsPerRun,
			CloseReason:             string(stale.CloseReason),
		},
		ReleaseClose: ReleasePolicyResponse{
			Enabled:     release.Enabled(),
			OnlyLabels:  release.OnlyLabels,
			Message:     release.Message,
			CloseReason: string(release.CloseReason),
		},
	})
}

// PreviewPolicy returns the policy messages rendered to sanitized HTML, with
// the release message expanded against placeholder release data.
func (h *Handler) PreviewPolicy(w http.ResponseWriter, r *http.Request) {
	stale := h.staleSvc.Policy()
	release := h.releaseSvc.Policy()

	resp := PolicyPreviewResponse{
		StaleMessageHTML: renderMarkdown(stale.StaleMessage),
	}

	if release.Enabled() {
		rendered, err := application.RenderReleaseMessage(release.Message, application.ReleaseMessageData{
			ReleaseTag:  "v1.0.0",
			ReleaseLink: "https://github.com/example/example/releases/tag/v1.0.0",
		})
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "release message template invalid: "+err.Error())
			return
		}
		resp.ReleaseMessageHTML = renderMarkdown(rendered)
	}

	writeJSON(w, http.StatusOK, resp)
}

// Dispatch triggers a manual stale pass. The pass runs asynchronously; the
// response acknowledges acceptance, and progress is observable via /api/v1/runs.
func (h *Handler) Dispatch(w http.ResponseWriter, r *http.Request) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), dispatchTimeout)
		defer cancel()

		if _, err := h.staleSvc.Run(ctx, model.TriggerManual); err != nil {
			h.logger.Error("dispatched stale pass failed", "error", err)
		}
	}()

	writeJSON(w, http.StatusAccepted, DispatchResponse{Status: "accepted"})
}

// Health reports service liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
