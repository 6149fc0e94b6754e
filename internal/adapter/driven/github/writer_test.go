package github_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/stalekeeper/internal/domain/model"
)

func TestCreateComment(t *testing.T) {
	var gotPath, gotBody string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": 1}`))
	})

	client, _ := newTestClient(t, handler)

	err := client.CreateComment(context.Background(), "owner/repo", 42, "This issue is stale.")

	require.NoError(t, err)
	assert.Equal(t, "/repos/owner/repo/issues/42/comments", gotPath)
	assert.JSONEq(t, `{"body": "This issue is stale."}`, gotBody)
}

func TestAddLabels(t *testing.T) {
	var gotPath string
	var gotLabels []string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotLabels))
		_, _ = w.Write([]byte(`[]`))
	})

	client, _ := newTestClient(t, handler)

	err := client.AddLabels(context.Background(), "owner/repo", 42, []string{"stale"})

	require.NoError(t, err)
	assert.Equal(t, "/repos/owner/repo/issues/42/labels", gotPath)
	assert.Equal(t, []string{"stale"}, gotLabels)
}

func TestRemoveLabel(t *testing.T) {
	var gotMethod, gotPath string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusOK)
	})

	client, _ := newTestClient(t, handler)

	err := client.RemoveLabel(context.Background(), "owner/repo", 42, "stale")

	require.NoError(t, err)
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/repos/owner/repo/issues/42/labels/stale", gotPath)
}

func TestRemoveLabel_NotFoundTolerated(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message": "Label does not exist"}`))
	})

	client, _ := newTestClient(t, handler)

	// Removing a label the issue does not carry is not an error.
	err := client.RemoveLabel(context.Background(), "owner/repo", 42, "stale")

	require.NoError(t, err)
}

func TestCloseIssue(t *testing.T) {
	var gotMethod, gotPath, gotBody string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		_, _ = w.Write([]byte(`{"number": 42, "state": "closed"}`))
	})

	client, _ := newTestClient(t, handler)

	err := client.CloseIssue(context.Background(), "owner/repo", 42, model.CloseReasonNotPlanned)

	require.NoError(t, err)
	assert.Equal(t, http.MethodPatch, gotMethod)
	assert.Equal(t, "/repos/owner/repo/issues/42", gotPath)
	assert.JSONEq(t, `{"state": "closed", "state_reason": "not_planned"}`, gotBody)
}

func TestCloseIssue_ServerError(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message": "Forbidden"}`))
	})

	client, _ := newTestClient(t, handler)

	err := client.CloseIssue(context.Background(), "owner/repo", 42, model.CloseReasonCompleted)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "closing owner/repo#42")
}
