package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericfisherdev/stalekeeper/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// RunResponse is the JSON representation of a triage run.
type RunResponse struct {
	ID             int64  `json:"id"`
	Trigger        string `json:"trigger"`
	Repository     string `json:"repository"`
	StartedAt      string `json:"started_at"`
	FinishedAt     string `json:"finished_at,omitempty"`
	Marked         int    `json:"marked"`
	Unmarked       int    `json:"unmarked"`
	Closed         int    `json:"closed"`
	Commented      int    `json:"commented"`
	OperationsUsed int    `json:"operations_used"`
	BudgetHit      bool   `json:"budget_hit"`
	Error          string `json:"error,omitempty"`
}

// ActionResponse is the JSON representation of a triage action.
type ActionResponse struct {
	ID          int64  `json:"id"`
	RunID       int64  `json:"run_id"`
	Repository  string `json:"repository"`
	IssueNumber int    `json:"issue_number"`
	Kind        string `json:"kind"`
	Detail      string `json:"detail,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// PolicyResponse is the JSON representation of the effective triage policy.
type PolicyResponse struct {
	Stale        StalePolicyResponse   `json:"stale"`
	ReleaseClose ReleasePolicyResponse `json:"release_close"`
}

// StalePolicyResponse mirrors the stale job configuration.
type StalePolicyResponse struct {
	Schedule                string   `json:"schedule"`
	DaysBeforeStale         int      `json:"days_before_stale"`
	DaysBeforeClose         int      `json:"days_before_close"`
	StaleLabel              string   `json:"stale_issue_label"`
	StaleMessage            string   `json:"stale_issue_message"`
	OnlyLabels              []string `json:"only_labels,omitempty"`
	ExemptLabels            []string `json:"exempt_issue_labels,omitempty"`
	LabelsToRemoveWhenStale []string `json:"labels_to_remove_when_stale,omitempty"`
	OperationsPerRun        int      `json:"operations_per_run"`
	CloseReason             string   `json:"close_issue_reason"`
}

// ReleasePolicyResponse mirrors the release-close job configuration.
type ReleasePolicyResponse struct {
	Enabled     bool     `json:"enabled"`
	OnlyLabels  []string `json:"only_labels,omitempty"`
	Message     string   `json:"message,omitempty"`
	CloseReason string   `json:"close_issue_reason,omitempty"`
}

// PolicyPreviewResponse carries the policy messages rendered to sanitized HTML.
type PolicyPreviewResponse struct {
	StaleMessageHTML   string `json:"stale_message_html"`
	ReleaseMessageHTML string `json:"release_message_html,omitempty"`
}

// DispatchResponse acknowledges a manual dispatch request.
type DispatchResponse struct {
	Status string `json:"status"`
}

func toRunResponse(run model.TriageRun) RunResponse {
	resp := RunResponse{
		ID:             run.ID,
		Trigger:        string(run.Trigger),
		Repository:     run.RepoFullName,
		StartedAt:      run.StartedAt.UTC().Format(time.RFC3339),
		Marked:         run.Marked,
		Unmarked:       run.Unmarked,
		Closed:         run.Closed,
		Commented:      run.Commented,
		OperationsUsed: run.OperationsUsed,
		BudgetHit:      run.BudgetHit,
		Error:          run.Error,
	}
	if !run.FinishedAt.IsZero() {
		resp.FinishedAt = run.FinishedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

func toActionResponse(action model.TriageAction) ActionResponse {
	return ActionResponse{
		ID:          action.ID,
		RunID:       action.RunID,
		Repository:  action.RepoFullName,
		IssueNumber: action.IssueNumber,
		Kind:        string(action.Kind),
		Detail:      action.Detail,
		CreatedAt:   action.CreatedAt.UTC().Format(time.RFC3339),
	}
}
