package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/anthropics/anthropic-sdk-go/option"
)

func TestOllamaGenerate(t *testing.T) {
	var got ollamaRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/generate" {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"response": `["maintenance"]`, "eval_count": 3})
	}))
	defer server.Close()

	g := NewOllama(server.URL+"/", "", 5*time.Second)
	out, err := g.Generate(context.Background(), "classify this")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out != `["maintenance"]` {
		t.Fatalf("unexpected output %q", out)
	}
	if got.Model != defaultOllamaModel || got.Prompt != "classify this" || got.Stream {
		t.Fatalf("unexpected request body %+v", got)
	}
}

func TestOllamaGenerateNon200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"model not found"}`, http.StatusNotFound)
	}))
	defer server.Close()

	g := NewOllama(server.URL, "missing:latest", 5*time.Second)
	if _, err := g.Generate(context.Background(), "x"); err == nil || !strings.Contains(err.Error(), "404") {
		t.Fatalf("expected 404 error, got %v", err)
	}
}

func TestPingSendsPingPrompt(t *testing.T) {
	var prompts []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ollamaRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		prompts = append(prompts, req.Prompt)
		_ = json.NewEncoder(w).Encode(map[string]any{"response": "ok"})
	}))
	defer server.Close()

	if err := Ping(context.Background(), NewOllama(server.URL, "", time.Second*5)); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if len(prompts) != 1 || prompts[0] != pingPrompt {
		t.Fatalf("expected one ping prompt, got %v", prompts)
	}
}

func TestPingUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	err := Ping(context.Background(), NewOllama(url, "", 2*time.Second))
	if err == nil || !strings.HasPrefix(err.Error(), "ollama ping") {
		t.Fatalf("expected ollama ping error, got %v", err)
	}
}

func TestOpenAIGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Fatalf("unexpected auth header %q", got)
		}
		var req openAIRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if req.Model != "gpt-test" || len(req.Messages) != 1 || req.Messages[0].Role != "user" {
			t.Fatalf("unexpected request %+v", req)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"[\"initiative\"]"}}],"usage":{"prompt_tokens":10,"completion_tokens":2}}`))
	}))
	defer server.Close()

	g, err := NewOpenAI("sk-test", "gpt-test", server.URL, 5*time.Second)
	if err != nil {
		t.Fatalf("NewOpenAI: %v", err)
	}
	out, err := g.Generate(context.Background(), "p")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out != `["initiative"]` {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestOpenAIGenerateAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided"}}`))
	}))
	defer server.Close()

	g, _ := NewOpenAI("bad", "", server.URL, 5*time.Second)
	_, err := g.Generate(context.Background(), "p")
	if err == nil || !strings.Contains(err.Error(), "Incorrect API key") {
		t.Fatalf("expected api error, got %v", err)
	}
}

func TestAnthropicGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/v1/messages") {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "claude-test",
			"content": [{"type": "text", "text": "[\"cost optimization\"]"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 12, "output_tokens": 4}
		}`))
	}))
	defer server.Close()

	g, err := NewAnthropic("key", "claude-test", 5*time.Second,
		option.WithBaseURL(server.URL+"/"), option.WithMaxRetries(0))
	if err != nil {
		t.Fatalf("NewAnthropic: %v", err)
	}
	out, err := g.Generate(context.Background(), "p")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out != `["cost optimization"]` {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestNewFactory(t *testing.T) {
	tests := []struct {
		name     string
		opts     Options
		provider string
		model    string
		wantErr  bool
	}{
		{name: "default ollama", opts: Options{}, provider: "ollama", model: defaultOllamaModel},
		{name: "ollama model override", opts: Options{Provider: "Ollama", Model: "llama3"}, provider: "ollama", model: "llama3"},
		{name: "openai", opts: Options{Provider: "openai", OpenAIAPIKey: "k"}, provider: "openai", model: defaultOpenAIModel},
		{name: "anthropic", opts: Options{Provider: "anthropic", AnthropicAPIKey: "k"}, provider: "anthropic", model: defaultAnthropicModel},
		{name: "openai without key", opts: Options{Provider: "openai"}, wantErr: true},
		{name: "anthropic without key", opts: Options{Provider: "anthropic"}, wantErr: true},
		{name: "gemini without key", opts: Options{Provider: "gemini"}, wantErr: true},
		{name: "unknown", opts: Options{Provider: "bard"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := New(context.Background(), tt.opts)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if g.Provider() != tt.provider || g.Model() != tt.model {
				t.Fatalf("got %s/%s, want %s/%s", g.Provider(), g.Model(), tt.provider, tt.model)
			}
		})
	}
}
