// Package github reads and labels GitHub issues through the REST API.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"ticketlabeler/internal/domain"
	"ticketlabeler/internal/httpx"
	"ticketlabeler/internal/integrations/paging"
)

const defaultAPIURL = "https://api.github.com"

type Options struct {
	APIURL   string
	Token    string
	Repos    []string
	PageSize int
	Timeout  time.Duration
}

type Client struct {
	apiURL     string
	token      string
	repos      []string
	pageSize   int
	httpClient *http.Client
}

func NewClient(opts Options) *Client {
	apiURL := strings.TrimRight(strings.TrimSpace(opts.APIURL), "/")
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	pageSize := opts.PageSize
	if pageSize < 1 {
		pageSize = 50
	}
	return &Client{
		apiURL:     apiURL,
		token:      opts.Token,
		repos:      opts.Repos,
		pageSize:   pageSize,
		httpClient: httpx.NewClient(opts.Timeout),
	}
}

type githubIssueItem struct {
	Number      int64           `json:"number"`
	Title       string          `json:"title"`
	Body        *string         `json:"body"`
	Labels      []githubLabel   `json:"labels"`
	PullRequest json.RawMessage `json:"pull_request"`
}

type githubLabel struct {
	Name string `json:"name"`
}

func (c *Client) CheckConnectivity(ctx context.Context) error {
	_, err := c.do(ctx, "check", http.MethodGet, c.apiURL+"/user", nil)
	return err
}

// FetchAll lists issues of repo ("owner/name"), or of every configured repo
// when repo is empty. Pull requests are skipped. Keys are "owner/name#number".
func (c *Client) FetchAll(ctx context.Context, repo string) ([]domain.Ticket, error) {
	repos := c.repos
	if strings.TrimSpace(repo) != "" {
		repos = []string{strings.TrimSpace(repo)}
	}

	var all []domain.Ticket
	for _, r := range repos {
		log.Printf("github fetch start repo=%s page_size=%d", r, c.pageSize)
		items, err := paging.All(ctx, c.pageSize, func(ctx context.Context, offset, limit int) ([]githubIssueItem, error) {
			return c.listPage(ctx, r, paging.PageNumber(offset, limit), limit)
		})
		if err != nil {
			return nil, fmt.Errorf("github issues %s: %w", r, err)
		}
		skipped := 0
		for _, item := range items {
			if len(item.PullRequest) > 0 && string(item.PullRequest) != "null" {
				skipped++
				continue
			}
			all = append(all, convertIssue(r, item))
		}
		log.Printf("github fetch done repo=%s issues=%d skipped_prs=%d", r, len(items)-skipped, skipped)
	}
	return all, nil
}

func (c *Client) listPage(ctx context.Context, repo string, page, perPage int) ([]githubIssueItem, error) {
	apiURL := fmt.Sprintf("%s/repos/%s/issues?state=all&sort=created&direction=desc&per_page=%d&page=%d",
		c.apiURL, repo, perPage, page)
	body, err := c.do(ctx, "list issues", http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, err
	}
	var items []githubIssueItem
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, &domain.StoreError{Op: "list issues", Kind: domain.ErrStore, Err: fmt.Errorf("parsing response: %w", err)}
	}
	return items, nil
}

// AddLabels posts to the issue's labels collection, which appends.
func (c *Client) AddLabels(ctx context.Context, issueKey string, labels []string) error {
	if len(labels) == 0 {
		return fmt.Errorf("github add labels %s: no labels given", issueKey)
	}
	repo, number, err := splitIssueKey(issueKey)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(map[string][]string{"labels": labels})
	if err != nil {
		return fmt.Errorf("marshaling labels: %w", err)
	}
	apiURL := fmt.Sprintf("%s/repos/%s/issues/%d/labels", c.apiURL, repo, number)
	_, err = c.do(ctx, "add labels", http.MethodPost, apiURL, payload)
	return err
}

func (c *Client) do(ctx context.Context, op, method, apiURL string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, apiURL, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/vnd.github+json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domain.TransportError(op, err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return nil, domain.TransportError(op, fmt.Errorf("reading response: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, domain.StatusError(op, resp.StatusCode, body)
	}
	return body, nil
}

func convertIssue(repo string, item githubIssueItem) domain.Ticket {
	labels := make([]string, 0, len(item.Labels))
	for _, l := range item.Labels {
		labels = append(labels, l.Name)
	}
	return domain.Ticket{
		Key:         fmt.Sprintf("%s#%d", repo, item.Number),
		Summary:     item.Title,
		Description: item.Body,
		Labels:      labels,
	}
}

func splitIssueKey(key string) (string, int64, error) {
	idx := strings.LastIndex(key, "#")
	if idx <= 0 {
		return "", 0, fmt.Errorf("invalid github issue key %q: want owner/name#number", key)
	}
	repo := key[:idx]
	if parts := strings.Split(repo, "/"); len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", 0, fmt.Errorf("invalid github issue key %q: want owner/name#number", key)
	}
	number, err := strconv.ParseInt(key[idx+1:], 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("invalid github issue key %q: %w", key, err)
	}
	return repo, number, nil
}
