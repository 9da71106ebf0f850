// Package jira talks to the Jira Cloud REST v3 API: paginated issue search,
// additive label updates and a read-only connectivity check.
package jira

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"ticketlabeler/internal/domain"
	"ticketlabeler/internal/httpx"
	"ticketlabeler/internal/integrations/paging"
)

const defaultPageSize = 50

var searchFields = []string{"summary", "description", "labels", "issuetype", "status", "created"}

type Options struct {
	Server   string
	Email    string
	APIToken string
	PageSize int
	Timeout  time.Duration
}

type Client struct {
	server     string
	email      string
	token      string
	pageSize   int
	httpClient *http.Client
}

func NewClient(opts Options) *Client {
	pageSize := opts.PageSize
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	return &Client{
		server:     strings.TrimRight(opts.Server, "/"),
		email:      opts.Email,
		token:      opts.APIToken,
		pageSize:   pageSize,
		httpClient: httpx.NewClient(opts.Timeout),
	}
}

type searchResponse struct {
	Issues []issue `json:"issues"`
}

type issue struct {
	Key    string `json:"key"`
	Fields struct {
		Summary     string          `json:"summary"`
		Description json.RawMessage `json:"description"`
		Labels      []string        `json:"labels"`
	} `json:"fields"`
}

type ProjectInfo struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

// CheckConnectivity calls an authenticated read-only endpoint.
func (c *Client) CheckConnectivity(ctx context.Context) error {
	_, err := c.do(ctx, "check", http.MethodGet, "/rest/api/3/myself", nil, nil)
	return err
}

// jqlEscaper escapes a value for use inside a double-quoted JQL string.
var jqlEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// FetchAll returns every issue visible to the credentials, or only those of
// projectKey when it is set, in the order Jira returns them.
func (c *Client) FetchAll(ctx context.Context, projectKey string) ([]domain.Ticket, error) {
	jql := "order by created DESC"
	if strings.TrimSpace(projectKey) != "" {
		jql = fmt.Sprintf(`project = "%s" order by created DESC`, jqlEscaper.Replace(strings.TrimSpace(projectKey)))
	}
	log.Printf("jira fetch start jql=%q page_size=%d", jql, c.pageSize)

	tickets, err := paging.All(ctx, c.pageSize, func(ctx context.Context, offset, limit int) ([]domain.Ticket, error) {
		return c.searchPage(ctx, jql, offset, limit)
	})
	if err != nil {
		return nil, fmt.Errorf("jira search: %w", err)
	}
	log.Printf("jira fetch done total=%d", len(tickets))
	return tickets, nil
}

func (c *Client) searchPage(ctx context.Context, jql string, startAt, maxResults int) ([]domain.Ticket, error) {
	q := url.Values{}
	q.Set("jql", jql)
	q.Set("fields", strings.Join(searchFields, ","))
	q.Set("maxResults", strconv.Itoa(maxResults))
	q.Set("startAt", strconv.Itoa(startAt))
	log.Printf("jira fetch page startAt=%d", startAt)

	body, err := c.do(ctx, "search", http.MethodGet, "/rest/api/3/search", q, nil)
	if err != nil {
		return nil, err
	}
	var result searchResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &domain.StoreError{Op: "search", Kind: domain.ErrStore, Err: fmt.Errorf("parsing response: %w", err)}
	}

	tickets := make([]domain.Ticket, 0, len(result.Issues))
	for _, is := range result.Issues {
		tickets = append(tickets, domain.Ticket{
			Key:         is.Key,
			Summary:     is.Fields.Summary,
			Description: descriptionText(is.Fields.Description),
			Labels:      is.Fields.Labels,
		})
	}
	return tickets, nil
}

// AddLabels adds labels to the issue without touching the labels already on
// it. Callers must not pass an empty slice.
func (c *Client) AddLabels(ctx context.Context, issueKey string, labels []string) error {
	if len(labels) == 0 {
		return fmt.Errorf("jira add labels %s: no labels given", issueKey)
	}
	ops := make([]map[string]string, 0, len(labels))
	for _, l := range labels {
		ops = append(ops, map[string]string{"add": l})
	}
	payload, err := json.Marshal(map[string]any{
		"update": map[string]any{"labels": ops},
	})
	if err != nil {
		return fmt.Errorf("marshaling label update: %w", err)
	}
	_, err = c.do(ctx, "add labels", http.MethodPut, "/rest/api/3/issue/"+url.PathEscape(issueKey), nil, payload)
	return err
}

// ProjectInfo fetches the display name of a project for the run banner.
func (c *Client) ProjectInfo(ctx context.Context, projectKey string) (ProjectInfo, error) {
	var info ProjectInfo
	body, err := c.do(ctx, "project info", http.MethodGet, "/rest/api/3/project/"+url.PathEscape(projectKey), nil, nil)
	if err != nil {
		return info, err
	}
	if err := json.Unmarshal(body, &info); err != nil {
		return info, fmt.Errorf("parsing project info: %w", err)
	}
	return info, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, payload []byte) ([]byte, error) {
	apiURL := c.server + path
	if len(query) > 0 {
		apiURL += "?" + query.Encode()
	}
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, apiURL, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.SetBasicAuth(c.email, c.token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.TransportError(op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.TransportError(op, fmt.Errorf("reading response: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, domain.StatusError(op, resp.StatusCode, body)
	}
	return body, nil
}
