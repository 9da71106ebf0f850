package config

import (
	"fmt"
	"log"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

const (
	StoreJira   = "jira"
	StoreGitLab = "gitlab"
	StoreGitHub = "github"

	ProviderOllama    = "ollama"
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
)

const (
	defaultPageSize            = 50
	defaultStoreHTTPTimeout    = 30 * time.Second
	defaultLLMHTTPTimeout      = 60 * time.Second
	defaultOllamaURL           = "http://localhost:11434"
	defaultDBPath              = "./ticketlabeler.db"
	defaultMaxLabels           = 2
	disabledDBPath             = "none"
	defaultStoreTimeoutSeconds = int(defaultStoreHTTPTimeout / time.Second)
	defaultLLMTimeoutSeconds   = int(defaultLLMHTTPTimeout / time.Second)
	minHTTPTimeoutSeconds      = 5
	maxWorkers                 = 16
)

type Config struct {
	Store string `yaml:"store"`

	JiraServer     string `yaml:"jira_server"`
	JiraEmail      string `yaml:"jira_email"`
	JiraAPIToken   string `yaml:"jira_api_token"`
	JiraProjectKey string `yaml:"jira_project_key"`

	GitLabURL     string `yaml:"gitlab_url"`
	GitLabToken   string `yaml:"gitlab_token"`
	GitLabProject string `yaml:"gitlab_project"`

	GitHubToken string   `yaml:"github_token"`
	GitHubRepos []string `yaml:"github_repos"`
	GitHubAPI   string   `yaml:"github_api_url"`

	PageSize                int `yaml:"page_size"`
	StoreHTTPTimeoutSeconds int `yaml:"store_http_timeout_seconds"`

	LLMProvider           string `yaml:"llm_provider"`
	LLMModel              string `yaml:"llm_model"`
	OllamaURL             string `yaml:"ollama_url"`
	AnthropicAPIKey       string `yaml:"anthropic_api_key"`
	OpenAIAPIKey          string `yaml:"openai_api_key"`
	GeminiAPIKey          string `yaml:"gemini_api_key"`
	LLMHTTPTimeoutSeconds int    `yaml:"llm_http_timeout_seconds"`
	VocabularyPath        string `yaml:"vocabulary_path"`
	MaxLabels             int    `yaml:"max_labels"`

	Workers int  `yaml:"workers"`
	DryRun  bool `yaml:"dry_run"`

	DBPath string `yaml:"db_path"`

	SlackBotToken   string `yaml:"slack_bot_token"`
	ReportChannelID string `yaml:"report_channel_id"`
	RunSchedule     string `yaml:"run_schedule"`
}

// LoadConfig resolves the config path (explicit path, then $CONFIG_PATH, then
// config.yaml) and loads it.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = "config.yaml"
	}
	return Load(path)
}

// Load reads configPath, applies env overrides and defaults. A missing file is not an error; env
// vars alone can configure everything.
func Load(configPath string) (Config, error) {
	var cfg Config

	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("error parsing %s: %w", configPath, err)
		}
		log.Printf("Loaded config from %s", configPath)
	}

	envOverride(&cfg.Store, "TICKET_STORE")
	envOverride(&cfg.JiraServer, "JIRA_SERVER")
	envOverride(&cfg.JiraEmail, "JIRA_EMAIL")
	envOverride(&cfg.JiraAPIToken, "JIRA_API_TOKEN")
	envOverrideAllowEmpty(&cfg.JiraProjectKey, "JIRA_PROJECT_KEY")
	envOverride(&cfg.GitLabURL, "GITLAB_URL")
	envOverride(&cfg.GitLabToken, "GITLAB_TOKEN")
	envOverrideAllowEmpty(&cfg.GitLabProject, "GITLAB_PROJECT")
	envOverride(&cfg.GitHubToken, "GITHUB_TOKEN")
	envOverride(&cfg.GitHubAPI, "GITHUB_API_URL")
	if repos := os.Getenv("GITHUB_REPOS"); repos != "" {
		cfg.GitHubRepos = splitList(repos)
	}
	envOverride(&cfg.LLMProvider, "LLM_PROVIDER")
	envOverride(&cfg.LLMModel, "LLM_MODEL")
	envOverride(&cfg.OllamaURL, "OLLAMA_URL")
	envOverride(&cfg.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	envOverride(&cfg.OpenAIAPIKey, "OPENAI_API_KEY")
	envOverride(&cfg.GeminiAPIKey, "GEMINI_API_KEY")
	envOverride(&cfg.VocabularyPath, "VOCABULARY_PATH")
	envOverride(&cfg.DBPath, "DB_PATH")
	envOverride(&cfg.SlackBotToken, "SLACK_BOT_TOKEN")
	envOverride(&cfg.ReportChannelID, "REPORT_CHANNEL_ID")
	envOverride(&cfg.RunSchedule, "RUN_SCHEDULE")
	envOverrideBool(&cfg.DryRun, "DRY_RUN")
	for _, o := range []struct {
		field *int
		key   string
	}{
		{&cfg.PageSize, "PAGE_SIZE"},
		{&cfg.StoreHTTPTimeoutSeconds, "STORE_HTTP_TIMEOUT_SECONDS"},
		{&cfg.LLMHTTPTimeoutSeconds, "LLM_HTTP_TIMEOUT_SECONDS"},
		{&cfg.MaxLabels, "MAX_LABELS"},
		{&cfg.Workers, "WORKERS"},
	} {
		if err := envOverrideInt(o.field, o.key); err != nil {
			return cfg, err
		}
	}

	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	cfg.Store = strings.ToLower(strings.TrimSpace(cfg.Store))
	if cfg.Store == "" {
		cfg.Store = StoreJira
	}
	cfg.LLMProvider = strings.ToLower(strings.TrimSpace(cfg.LLMProvider))
	if cfg.LLMProvider == "" {
		cfg.LLMProvider = ProviderOllama
	}
	if cfg.OllamaURL == "" {
		cfg.OllamaURL = defaultOllamaURL
	}
	if cfg.PageSize == 0 {
		cfg.PageSize = defaultPageSize
	}
	if cfg.StoreHTTPTimeoutSeconds == 0 {
		cfg.StoreHTTPTimeoutSeconds = defaultStoreTimeoutSeconds
	}
	if cfg.LLMHTTPTimeoutSeconds == 0 {
		cfg.LLMHTTPTimeoutSeconds = defaultLLMTimeoutSeconds
	}
	if cfg.MaxLabels == 0 {
		cfg.MaxLabels = defaultMaxLabels
	}
	if cfg.Workers == 0 {
		cfg.Workers = 1
	}
	if cfg.DBPath == "" {
		cfg.DBPath = defaultDBPath
	}
	cfg.JiraServer = strings.TrimRight(strings.TrimSpace(cfg.JiraServer), "/")
	cfg.GitLabURL = strings.TrimRight(strings.TrimSpace(cfg.GitLabURL), "/")
}

// Validate checks required fields for the selected store and provider and
// the numeric ranges.
// jiraProjectKeyPattern matches Jira's default project key format.
var jiraProjectKeyPattern = regexp.MustCompile(`^[A-Z][A-Z0-9_]+$`)

func (c Config) Validate() error {
	var required map[string]string
	switch c.Store {
	case StoreJira:
		required = map[string]string{
			"jira_server":    c.JiraServer,
			"jira_email":     c.JiraEmail,
			"jira_api_token": c.JiraAPIToken,
		}
	case StoreGitLab:
		required = map[string]string{
			"gitlab_url":   c.GitLabURL,
			"gitlab_token": c.GitLabToken,
		}
	case StoreGitHub:
		required = map[string]string{
			"github_token": c.GitHubToken,
		}
		if len(c.GitHubRepos) == 0 {
			return fmt.Errorf("github_repos is required when store=github")
		}
	default:
		return fmt.Errorf("store must be 'jira', 'gitlab' or 'github', got '%s'", c.Store)
	}
	for _, name := range sortedKeys(required) {
		if required[name] == "" {
			return fmt.Errorf("Required config '%s' is not set (via config.yaml or env var)", name)
		}
	}
	if key := strings.TrimSpace(c.JiraProjectKey); c.Store == StoreJira && key != "" && !jiraProjectKeyPattern.MatchString(key) {
		return fmt.Errorf("invalid jira_project_key '%s': must match %s", key, jiraProjectKeyPattern)
	}

	switch c.LLMProvider {
	case ProviderOllama:
		if c.OllamaURL == "" {
			return fmt.Errorf("ollama_url is required when llm_provider=ollama")
		}
	case ProviderAnthropic:
		if c.AnthropicAPIKey == "" {
			return fmt.Errorf("anthropic_api_key is required when llm_provider=anthropic")
		}
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("openai_api_key is required when llm_provider=openai")
		}
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("gemini_api_key is required when llm_provider=gemini")
		}
	default:
		return fmt.Errorf("llm_provider must be 'ollama', 'anthropic', 'openai' or 'gemini', got '%s'", c.LLMProvider)
	}

	if c.PageSize < 1 || c.PageSize > 100 {
		return fmt.Errorf("invalid page_size '%d': must be between 1 and 100", c.PageSize)
	}
	if c.StoreHTTPTimeoutSeconds < minHTTPTimeoutSeconds || c.StoreHTTPTimeoutSeconds > 120 {
		return fmt.Errorf("invalid store_http_timeout_seconds '%d': must be between 5 and 120", c.StoreHTTPTimeoutSeconds)
	}
	if c.LLMHTTPTimeoutSeconds < minHTTPTimeoutSeconds || c.LLMHTTPTimeoutSeconds > 600 {
		return fmt.Errorf("invalid llm_http_timeout_seconds '%d': must be between 5 and 600", c.LLMHTTPTimeoutSeconds)
	}
	if c.MaxLabels < 1 || c.MaxLabels > 2 {
		return fmt.Errorf("invalid max_labels '%d': must be 1 or 2", c.MaxLabels)
	}
	if c.Workers < 1 || c.Workers > maxWorkers {
		return fmt.Errorf("invalid workers '%d': must be between 1 and %d", c.Workers, maxWorkers)
	}
	if c.RunSchedule != "" {
		parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
		if _, err := parser.Parse(c.RunSchedule); err != nil {
			return fmt.Errorf("invalid run_schedule '%s': %w", c.RunSchedule, err)
		}
	}
	if c.VocabularyPath != "" {
		if _, err := os.Stat(c.VocabularyPath); err != nil {
			return fmt.Errorf("invalid vocabulary_path '%s': %w", c.VocabularyPath, err)
		}
	}
	return nil
}

func (c Config) StoreHTTPTimeout() time.Duration {
	return time.Duration(c.StoreHTTPTimeoutSeconds) * time.Second
}

func (c Config) LLMHTTPTimeout() time.Duration {
	return time.Duration(c.LLMHTTPTimeoutSeconds) * time.Second
}

// HistoryEnabled is false when db_path is "none".
func (c Config) HistoryEnabled() bool {
	return !strings.EqualFold(strings.TrimSpace(c.DBPath), disabledDBPath)
}

func (c Config) SlackConfigured() bool {
	return c.SlackBotToken != "" && c.ReportChannelID != ""
}

// ScopeFilter is the configured store scope; empty means every ticket the
// credentials can see.
func (c Config) ScopeFilter() string {
	switch c.Store {
	case StoreGitLab:
		return strings.TrimSpace(c.GitLabProject)
	case StoreJira:
		return strings.TrimSpace(c.JiraProjectKey)
	default:
		return ""
	}
}

func envOverride(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

func envOverrideAllowEmpty(field *string, envKey string) {
	if val, ok := os.LookupEnv(envKey); ok {
		*field = val
	}
}

func envOverrideInt(field *int, envKey string) error {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid %s '%s': %w", envKey, val, err)
		}
		*field = parsed
	}
	return nil
}

func envOverrideBool(field *bool, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = strings.EqualFold(val, "true") || val == "1"
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
