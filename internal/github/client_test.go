package github

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/reviewd/internal/logging"
)

func newTestClient(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	c, err := NewClient(context.Background(), "test-token", server.URL, logging.NewNop())
	require.NoError(t, err)
	c.retry = &RetryConfig{
		MaxRetries:        2,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        5 * time.Millisecond,
		BackoffMultiplier: 2.0,
	}
	return c
}

func TestNewClientRequiresToken(t *testing.T) {
	_, err := NewClient(context.Background(), "", "", nil)
	assert.Error(t, err)
}

func TestSplitRepo(t *testing.T) {
	owner, name, err := SplitRepo("acme/widgets")
	require.NoError(t, err)
	assert.Equal(t, "acme", owner)
	assert.Equal(t, "widgets", name)

	for _, bad := range []string{"acme", "acme/", "/widgets", ""} {
		_, _, err := SplitRepo(bad)
		assert.Error(t, err, bad)
	}
}

func TestPRDetails(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v3/repos/acme/widgets/pulls/7", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"title": "PROJ-123: add retry",
			"body": "adds retries",
			"state": "open",
			"user": {"login": "dana"},
			"head": {"ref": "feature/PROJ-123-retry"},
			"base": {"ref": "main"}
		}`)
	})

	details, err := newTestClient(t, mux).PRDetails(context.Background(), "acme", "widgets", 7)
	require.NoError(t, err)
	assert.Equal(t, "PROJ-123: add retry", details.Title)
	assert.Equal(t, "dana", details.Author)
	assert.Equal(t, "feature/PROJ-123-retry", details.Branch)
	assert.Equal(t, "main", details.BaseBranch)
	assert.Equal(t, "open", details.State)
}

func TestDiff(t *testing.T) {
	const diff = "diff --git a/main.go b/main.go\n+password = \"x\"\n"
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v3/repos/acme/widgets/pulls/7", func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("Accept"), "diff")
		fmt.Fprint(w, diff)
	})

	got, err := newTestClient(t, mux).Diff(context.Background(), "acme", "widgets", 7)
	require.NoError(t, err)
	assert.Equal(t, diff, got)
}

func TestChangedFiles(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v3/repos/acme/widgets/pulls/7/files", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[
			{"filename": "main.go", "status": "modified", "additions": 10, "deletions": 2, "changes": 12},
			{"filename": "main_test.go", "status": "added", "additions": 40, "deletions": 0, "changes": 40}
		]`)
	})

	files, err := newTestClient(t, mux).ChangedFiles(context.Background(), "acme", "widgets", 7)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "main.go", files[0].Path)
	assert.Equal(t, 12, files[0].Changes)
	assert.Equal(t, "added", files[1].Status)
}

func TestPostCommentRetriesTransientErrors(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v3/repos/acme/widgets/issues/7/comments", func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"id": 1}`)
	})

	err := newTestClient(t, mux).PostComment(context.Background(), "acme", "widgets", 7, "report body")
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestPostCommentExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v3/repos/acme/widgets/issues/7/comments", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	err := newTestClient(t, mux).PostComment(context.Background(), "acme", "widgets", 7, "report body")
	assert.Error(t, err)
	assert.Equal(t, int32(3), calls.Load(), "initial attempt plus two retries")
}

func TestPostCommentDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v3/repos/acme/widgets/issues/7/comments", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnprocessableEntity)
		fmt.Fprint(w, `{"message": "Validation Failed"}`)
	})

	err := newTestClient(t, mux).PostComment(context.Background(), "acme", "widgets", 7, "report body")
	assert.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}
