package ticket

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/reviewd/internal/config"
	"github.com/fyrsmithlabs/reviewd/internal/logging"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	c, err := NewClient(config.JiraConfig{
		BaseURL:  server.URL,
		Email:    "bot@example.com",
		APIToken: "token",
	}, logging.NewNop())
	require.NoError(t, err)
	return c
}

func TestNewClientRequiresCredentials(t *testing.T) {
	_, err := NewClient(config.JiraConfig{BaseURL: "https://example.atlassian.net"}, nil)
	assert.Error(t, err)
}

func TestTicketFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/api/3/issue/PROJ-123", r.URL.Path)
		user, _, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "bot@example.com", user)

		fmt.Fprint(w, `{"fields":{
			"summary":"Rotate signing keys",
			"status":{"name":"In Progress"},
			"assignee":{"displayName":"Dana"},
			"priority":{"name":"High"},
			"description":"rotate them"
		}}`)
	})

	info, err := c.Ticket(context.Background(), "PROJ-123")
	require.NoError(t, err)
	assert.True(t, info.Found)
	assert.Equal(t, "Rotate signing keys", info.Summary)
	assert.Equal(t, "In Progress", info.Status)
	assert.Equal(t, "Dana", info.Assignee)
	assert.Equal(t, "High", info.Priority)
	assert.Equal(t, "rotate them", info.Description)
}

func TestTicketNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	info, err := c.Ticket(context.Background(), "PROJ-404")
	require.NoError(t, err, "absence is a result, not an error")
	assert.False(t, info.Found)
	assert.Equal(t, "PROJ-404", info.ID)
}

func TestTicketServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	info, err := c.Ticket(context.Background(), "PROJ-500")
	assert.Error(t, err)
	assert.False(t, info.Found, "error result still carries a structured not-found")
}

func TestTicketDefaultsForMissingFields(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"fields":{"summary":"Bare ticket","status":{"name":"Open"},"description":{"type":"doc"}}}`)
	})

	info, err := c.Ticket(context.Background(), "PROJ-7")
	require.NoError(t, err)
	assert.Equal(t, "Unassigned", info.Assignee)
	assert.Equal(t, "None", info.Priority)
	assert.Empty(t, info.Description, "structured descriptions are dropped")
}
