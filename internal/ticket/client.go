package ticket

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/reviewd/internal/config"
	"github.com/fyrsmithlabs/reviewd/internal/logging"
	"github.com/fyrsmithlabs/reviewd/internal/review"
)

// Client fetches ticket details from a Jira-compatible REST API.
type Client struct {
	baseURL    string
	email      string
	apiToken   config.Secret
	httpClient *http.Client
	logger     *logging.Logger
}

// NewClient creates a ticket-system client. All three credentials are
// required; callers should skip construction entirely when ticket
// lookup is not configured.
func NewClient(cfg config.JiraConfig, logger *logging.Logger) (*Client, error) {
	if cfg.BaseURL == "" || cfg.Email == "" || !cfg.APIToken.IsSet() {
		return nil, fmt.Errorf("jira base URL, email, and API token are all required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		email:    cfg.Email,
		apiToken: cfg.APIToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}, nil
}

// issueResponse mirrors the subset of the Jira issue payload we read.
type issueResponse struct {
	Fields struct {
		Summary string `json:"summary"`
		Status  struct {
			Name string `json:"name"`
		} `json:"status"`
		Assignee *struct {
			DisplayName string `json:"displayName"`
		} `json:"assignee"`
		Priority *struct {
			Name string `json:"name"`
		} `json:"priority"`
		// Description is a plain string on API v2 and a structured
		// document on v3; anything non-string is dropped.
		Description json.RawMessage `json:"description"`
	} `json:"fields"`
}

// Ticket fetches ticket details. A missing ticket yields a structured
// not-found TicketInfo and a nil error; only transport failures return
// an error, and callers downgrade those to a compliance finding.
func (c *Client) Ticket(ctx context.Context, id string) (*review.TicketInfo, error) {
	notFound := &review.TicketInfo{ID: id, Found: false}

	endpoint := fmt.Sprintf("%s/rest/api/3/issue/%s", c.baseURL, url.PathEscape(id))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return notFound, fmt.Errorf("creating ticket request: %w", err)
	}
	req.SetBasicAuth(c.email, c.apiToken.Value())
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return notFound, fmt.Errorf("fetching ticket %s: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		c.logger.Debug(ctx, "ticket not found", zap.String("ticket_id", id))
		return notFound, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return notFound, fmt.Errorf("ticket API returned %d for %s: %s", resp.StatusCode, id, body)
	}

	var issue issueResponse
	if err := json.NewDecoder(resp.Body).Decode(&issue); err != nil {
		return notFound, fmt.Errorf("decoding ticket %s: %w", id, err)
	}

	info := &review.TicketInfo{
		ID:       id,
		Summary:  issue.Fields.Summary,
		Status:   issue.Fields.Status.Name,
		Assignee: "Unassigned",
		Priority: "None",
		Found:    true,
	}
	if issue.Fields.Assignee != nil && issue.Fields.Assignee.DisplayName != "" {
		info.Assignee = issue.Fields.Assignee.DisplayName
	}
	if issue.Fields.Priority != nil && issue.Fields.Priority.Name != "" {
		info.Priority = issue.Fields.Priority.Name
	}
	var desc string
	if err := json.Unmarshal(issue.Fields.Description, &desc); err == nil {
		info.Description = desc
	}
	return info, nil
}
