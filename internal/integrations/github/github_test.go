package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"ticketlabeler/internal/domain"
)

func TestFetchAllSkipsPullRequestsButPagesOnRawCount(t *testing.T) {
	var pages []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer ghp-test" {
			t.Errorf("unexpected auth header: %q", got)
		}
		pages = append(pages, r.URL.Path+"?page="+r.URL.Query().Get("page"))
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		var payload []map[string]any
		switch {
		case r.URL.Path == "/repos/acme/api/issues" && page == 1:
			payload = []map[string]any{
				{"number": 1, "title": "Bug", "body": "crash", "labels": []map[string]string{{"name": "maintenance"}}},
				{"number": 2, "title": "PR", "pull_request": map[string]string{"url": "x"}},
			}
		case r.URL.Path == "/repos/acme/api/issues" && page == 2:
			payload = []map[string]any{
				{"number": 3, "title": "Feature", "body": nil},
			}
		case r.URL.Path == "/repos/acme/web/issues":
			payload = []map[string]any{}
		default:
			t.Errorf("unexpected request %s", r.URL.String())
		}
		_ = json.NewEncoder(w).Encode(payload)
	}))
	defer server.Close()

	c := NewClient(Options{APIURL: server.URL, Token: "ghp-test", Repos: []string{"acme/api", "acme/web"}, PageSize: 2})
	tickets, err := c.FetchAll(context.Background(), "")
	if err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}
	want := "[/repos/acme/api/issues?page=1 /repos/acme/api/issues?page=2 /repos/acme/web/issues?page=1]"
	if fmt.Sprint(pages) != want {
		t.Fatalf("unexpected requests: %v", pages)
	}
	if len(tickets) != 2 {
		t.Fatalf("expected 2 issues, got %d", len(tickets))
	}
	if tickets[0].Key != "acme/api#1" || tickets[0].Labels[0] != "maintenance" || *tickets[0].Description != "crash" {
		t.Fatalf("unexpected first ticket: %+v", tickets[0])
	}
	if tickets[1].Key != "acme/api#3" || tickets[1].Description != nil {
		t.Fatalf("unexpected second ticket: %+v", tickets[1])
	}
}

func TestFetchAllSingleRepoFilter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/acme/web/issues" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	c := NewClient(Options{APIURL: server.URL, Token: "x", Repos: []string{"acme/api"}})
	if _, err := c.FetchAll(context.Background(), "acme/web"); err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}
}

func TestAddLabelsPostsToLabelsCollection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST (additive), got %s", r.Method)
		}
		if r.URL.Path != "/repos/acme/api/issues/42/labels" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		data, _ := io.ReadAll(r.Body)
		if string(data) != `{"labels":["initiative"]}` {
			t.Errorf("unexpected body: %s", data)
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	c := NewClient(Options{APIURL: server.URL, Token: "x"})
	if err := c.AddLabels(context.Background(), "acme/api#42", []string{"initiative"}); err != nil {
		t.Fatalf("AddLabels failed: %v", err)
	}
}

func TestAddLabelsErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Bad credentials"}`, http.StatusUnauthorized)
	}))
	defer server.Close()
	c := NewClient(Options{APIURL: server.URL, Token: "x"})

	if err := c.AddLabels(context.Background(), "acme/api#1", []string{"initiative"}); !errors.Is(err, domain.ErrAuth) {
		t.Fatalf("expected auth error, got %v", err)
	}
	if err := c.AddLabels(context.Background(), "acme/api#1", nil); err == nil {
		t.Fatal("expected error for empty labels")
	}
	if err := c.AddLabels(context.Background(), "api#1", []string{"initiative"}); err == nil {
		t.Fatal("expected error for key without owner")
	}
}

func TestNewClientDefaultsAPIURL(t *testing.T) {
	c := NewClient(Options{Token: "x"})
	if c.apiURL != "https://api.github.com" {
		t.Fatalf("unexpected default api url: %s", c.apiURL)
	}
	if c.pageSize != 50 {
		t.Fatalf("unexpected default page size: %d", c.pageSize)
	}
}
