package github_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	ghAdapter "github.com/ericfisherdev/stalekeeper/internal/adapter/driven/github"
	"github.com/ericfisherdev/stalekeeper/internal/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient creates a Client backed by the given httptest handler.
func newTestClient(t *testing.T, handler http.Handler) (*ghAdapter.Client, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := ghAdapter.NewClientWithHTTPClient(server.Client(), server.URL+"/")
	require.NoError(t, err)

	return client, server
}

// issueJSON is a helper struct for building GitHub API issue responses.
type issueJSON struct {
	ID      int64     `json:"id"`
	Number  int       `json:"number"`
	Title   string    `json:"title"`
	State   string    `json:"state"`
	HTMLURL string    `json:"html_url"`
	User    userJSON  `json:"user"`
	Labels  []lblJSON `json:"labels"`
	Created string    `json:"created_at"`
	Updated string    `json:"updated_at"`

	PullRequest *prLinksJSON `json:"pull_request,omitempty"`
}

type userJSON struct {
	Login string `json:"login"`
}

type lblJSON struct {
	Name string `json:"name"`
}

type prLinksJSON struct {
	URL string `json:"url"`
}

type releaseJSON struct {
	ID         int64  `json:"id"`
	TagName    string `json:"tag_name"`
	Name       string `json:"name"`
	HTMLURL    string `json:"html_url"`
	Draft      bool   `json:"draft"`
	Prerelease bool   `json:"prerelease"`
	Published  string `json:"published_at,omitempty"`
}

func TestListOpenIssues_FiltersPullRequests(t *testing.T) {
	issues := []issueJSON{
		{
			ID:      101,
			Number:  7,
			Title:   "Device stops responding",
			State:   "open",
			HTMLURL: "https://github.com/owner/repo/issues/7",
			User:    userJSON{Login: "alice"},
			Labels:  []lblJSON{{Name: "bug"}, {Name: "needs-triage"}},
			Created: "2026-01-01T00:00:00Z",
			Updated: "2026-01-02T12:00:00Z",
		},
		{
			ID:          102,
			Number:      8,
			Title:       "Fix the thing",
			State:       "open",
			User:        userJSON{Login: "bob"},
			Created:     "2026-01-03T00:00:00Z",
			Updated:     "2026-01-04T00:00:00Z",
			PullRequest: &prLinksJSON{URL: "https://api.github.com/repos/owner/repo/pulls/8"},
		},
		{
			ID:      103,
			Number:  9,
			Title:   "Config option ignored",
			State:   "open",
			User:    userJSON{Login: "carol"},
			Labels:  []lblJSON{},
			Created: "2026-01-05T00:00:00Z",
			Updated: "2026-01-06T00:00:00Z",
		},
	}

	var gotQuery map[string][]string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/repos/owner/repo/issues", r.URL.Path)
		gotQuery = r.URL.Query()
		_ = json.NewEncoder(w).Encode(issues)
	})

	client, _ := newTestClient(t, handler)

	got, err := client.ListOpenIssues(context.Background(), "owner/repo", nil)

	require.NoError(t, err)
	require.Len(t, got, 2, "the pull request must be filtered out")

	assert.Equal(t, int64(101), got[0].ID)
	assert.Equal(t, 7, got[0].Number)
	assert.Equal(t, "owner/repo", got[0].RepoFullName)
	assert.Equal(t, "Device stops responding", got[0].Title)
	assert.Equal(t, "alice", got[0].Author)
	assert.Equal(t, model.IssueStateOpen, got[0].State)
	assert.Equal(t, []string{"bug", "needs-triage"}, got[0].Labels)
	assert.Equal(t, "https://github.com/owner/repo/issues/7", got[0].URL)

	assert.Equal(t, 9, got[1].Number)

	assert.Equal(t, []string{"open"}, gotQuery["state"])
	assert.Equal(t, []string{"updated"}, gotQuery["sort"])
	assert.Equal(t, []string{"asc"}, gotQuery["direction"])
}

func TestListOpenIssues_LabelFilter(t *testing.T) {
	var gotLabels string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLabels = r.URL.Query().Get("labels")
		_ = json.NewEncoder(w).Encode([]issueJSON{})
	})

	client, _ := newTestClient(t, handler)

	got, err := client.ListOpenIssues(context.Background(), "owner/repo", []string{"bug", "awaiting release"})

	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got, "empty result must be a non-nil slice")
	assert.Equal(t, "bug,awaiting release", gotLabels)
}

func TestListOpenIssues_Pagination(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		switch page {
		case "", "1":
			w.Header().Set("Link", fmt.Sprintf(`<%s?page=2>; rel="next", <%s?page=2>; rel="last"`,
				"http://"+r.Host+r.URL.Path, "http://"+r.Host+r.URL.Path))
			_ = json.NewEncoder(w).Encode([]issueJSON{{ID: 1, Number: 1, User: userJSON{Login: "a"},
				Created: "2026-01-01T00:00:00Z", Updated: "2026-01-01T00:00:00Z"}})
		case "2":
			_ = json.NewEncoder(w).Encode([]issueJSON{{ID: 2, Number: 2, User: userJSON{Login: "b"},
				Created: "2026-01-02T00:00:00Z", Updated: "2026-01-02T00:00:00Z"}})
		default:
			t.Errorf("unexpected page %q", page)
		}
	})

	client, _ := newTestClient(t, handler)

	got, err := client.ListOpenIssues(context.Background(), "owner/repo", nil)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Number)
	assert.Equal(t, 2, got[1].Number)
}

func TestListOpenIssues_InvalidRepoName(t *testing.T) {
	client, _ := newTestClient(t, http.NotFoundHandler())

	_, err := client.ListOpenIssues(context.Background(), "not-a-repo", nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "owner/repo")
}

func TestListReleases(t *testing.T) {
	releases := []releaseJSON{
		{ID: 3, TagName: "v1.2.0", Name: "1.2.0", HTMLURL: "https://github.com/owner/repo/releases/tag/v1.2.0", Published: "2026-03-01T00:00:00Z"},
		{ID: 2, TagName: "v1.2.0-rc1", Prerelease: true, Published: "2026-02-20T00:00:00Z"},
		{ID: 1, TagName: "v1.1.0", Draft: true},
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/repos/owner/repo/releases", r.URL.Path)
		_ = json.NewEncoder(w).Encode(releases)
	})

	client, _ := newTestClient(t, handler)

	got, err := client.ListReleases(context.Background(), "owner/repo")

	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, "v1.2.0", got[0].TagName)
	assert.Equal(t, "https://github.com/owner/repo/releases/tag/v1.2.0", got[0].URL)
	assert.True(t, got[0].IsPublished())

	assert.True(t, got[1].Prerelease)
	assert.False(t, got[1].IsPublished())

	assert.True(t, got[2].Draft)
	assert.False(t, got[2].IsPublished())
}
