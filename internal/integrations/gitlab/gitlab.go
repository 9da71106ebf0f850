// Package gitlab reads and labels GitLab issues through the v4 REST API.
package gitlab

import (
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

type Options struct {
	BaseURL  string
	Token    string
	PageSize int
	Timeout  time.Duration
}

type Client struct {
	baseURL    string
	token      string
	pageSize   int
	httpClient *http.Client
}

func NewClient(opts Options) *Client {
	pageSize := opts.PageSize
	if pageSize < 1 {
		pageSize = 50
	}
	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		token:      opts.Token,
		pageSize:   pageSize,
		httpClient: httpx.NewClient(opts.Timeout),
	}
}

type gitlabIssueResponse struct {
	IID         int64    `json:"iid"`
	ProjectID   int64    `json:"project_id"`
	Title       string   `json:"title"`
	Description *string  `json:"description"`
	Labels      []string `json:"labels"`
	WebURL      string   `json:"web_url"`
	References  struct {
		Full string `json:"full"`
	} `json:"references"`
}

func (c *Client) CheckConnectivity(ctx context.Context) error {
	_, err := c.do(ctx, "check", http.MethodGet, c.baseURL+"/api/v4/user")
	return err
}

// FetchAll lists issues of project (path or numeric ID), or every issue the
// token can see when project is empty. Keys have the form "group/project#iid".
func (c *Client) FetchAll(ctx context.Context, project string) ([]domain.Ticket, error) {
	project = strings.TrimSpace(project)
	endpoint := c.baseURL + "/api/v4/issues"
	scope := "all"
	if project != "" {
		endpoint = fmt.Sprintf("%s/api/v4/projects/%s/issues", c.baseURL, url.PathEscape(project))
		scope = project
	}
	log.Printf("gitlab fetch start scope=%s page_size=%d", scope, c.pageSize)

	tickets, err := paging.All(ctx, c.pageSize, func(ctx context.Context, offset, limit int) ([]domain.Ticket, error) {
		page := paging.PageNumber(offset, limit)
		apiURL := fmt.Sprintf("%s?scope=all&state=all&order_by=created_at&sort=desc&per_page=%d&page=%d", endpoint, limit, page)
		log.Printf("gitlab fetch page=%d", page)

		body, err := c.do(ctx, "list issues", http.MethodGet, apiURL)
		if err != nil {
			return nil, err
		}
		var issues []gitlabIssueResponse
		if err := json.Unmarshal(body, &issues); err != nil {
			return nil, &domain.StoreError{Op: "list issues", Kind: domain.ErrStore, Err: fmt.Errorf("parsing response: %w", err)}
		}
		out := make([]domain.Ticket, 0, len(issues))
		for _, is := range issues {
			key := is.References.Full
			if key == "" {
				key = issueKeyFromURL(is.WebURL, is.IID)
			}
			out = append(out, domain.Ticket{
				Key:         key,
				Summary:     is.Title,
				Description: is.Description,
				Labels:      is.Labels,
			})
		}
		return out, nil
	})
	if err != nil {
		return nil, fmt.Errorf("gitlab issues: %w", err)
	}
	log.Printf("gitlab fetch done total=%d", len(tickets))
	return tickets, nil
}

// AddLabels uses add_labels, which appends to the issue's label set.
func (c *Client) AddLabels(ctx context.Context, issueKey string, labels []string) error {
	if len(labels) == 0 {
		return fmt.Errorf("gitlab add labels %s: no labels given", issueKey)
	}
	for _, l := range labels {
		if strings.Contains(l, ",") {
			return fmt.Errorf("gitlab add labels %s: label %q contains a comma", issueKey, l)
		}
	}
	project, iid, err := splitIssueKey(issueKey)
	if err != nil {
		return err
	}
	q := url.Values{}
	q.Set("add_labels", strings.Join(labels, ","))
	apiURL := fmt.Sprintf("%s/api/v4/projects/%s/issues/%d?%s", c.baseURL, url.PathEscape(project), iid, q.Encode())
	_, err = c.do(ctx, "add labels", http.MethodPut, apiURL)
	return err
}

func (c *Client) do(ctx context.Context, op, method, apiURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("PRIVATE-TOKEN", c.token)

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

func splitIssueKey(key string) (string, int64, error) {
	idx := strings.LastIndex(key, "#")
	if idx <= 0 || idx == len(key)-1 {
		return "", 0, fmt.Errorf("invalid gitlab issue key %q: want group/project#iid", key)
	}
	iid, err := strconv.ParseInt(key[idx+1:], 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("invalid gitlab issue key %q: %w", key, err)
	}
	return key[:idx], iid, nil
}

// issueKeyFromURL recovers "group/project#iid" from an issue web URL such
// as https://gitlab.example.com/group/project/-/issues/12.
func issueKeyFromURL(webURL string, iid int64) string {
	u, err := url.Parse(webURL)
	if err != nil {
		return ""
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i, p := range parts {
		if p == "-" && i >= 2 {
			return fmt.Sprintf("%s#%d", strings.Join(parts[:i], "/"), iid)
		}
	}
	return ""
}
