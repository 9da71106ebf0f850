package cli

import (
	"context"
	"fmt"
	"log"

	"github.com/slack-go/slack"

	"ticketlabeler/internal/classifier"
	"ticketlabeler/internal/config"
	"ticketlabeler/internal/domain"
	"ticketlabeler/internal/integrations/github"
	"ticketlabeler/internal/integrations/gitlab"
	"ticketlabeler/internal/integrations/jira"
	"ticketlabeler/internal/integrations/llm"
	"ticketlabeler/internal/pipeline"
	"ticketlabeler/internal/report"
	"ticketlabeler/internal/storage/sqlite"
)

// projectInfoer is implemented by stores that can name a scope for the
// start-of-run banner.
type projectInfoer interface {
	ProjectInfo(ctx context.Context, key string) (jira.ProjectInfo, error)
}

type app struct {
	cfg        config.Config
	store      pipeline.TicketStore
	classifier *classifier.Classifier
	audit      *sqlite.Store
	notifier   *report.SlackNotifier
}

func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	log.Printf(
		"Config loaded. Store=%s Scope=%q Provider=%s Model=%s PageSize=%d Workers=%d MaxLabels=%d DryRun=%t StoreTimeout=%s LLMTimeout=%s",
		cfg.Store,
		cfg.ScopeFilter(),
		cfg.LLMProvider,
		cfg.LLMModel,
		cfg.PageSize,
		cfg.Workers,
		cfg.MaxLabels,
		cfg.DryRun,
		cfg.StoreHTTPTimeout(),
		cfg.LLMHTTPTimeout(),
	)

	store, err := newTicketStore(cfg)
	if err != nil {
		return nil, err
	}

	gen, err := llm.New(ctx, llm.Options{
		Provider:        cfg.LLMProvider,
		Model:           cfg.LLMModel,
		OllamaURL:       cfg.OllamaURL,
		AnthropicAPIKey: cfg.AnthropicAPIKey,
		OpenAIAPIKey:    cfg.OpenAIAPIKey,
		GeminiAPIKey:    cfg.GeminiAPIKey,
		Timeout:         cfg.LLMHTTPTimeout(),
	})
	if err != nil {
		return nil, fmt.Errorf("configuring text generation backend: %w", err)
	}

	vocab, err := classifier.LoadVocabulary(cfg.VocabularyPath)
	if err != nil {
		return nil, err
	}
	log.Printf("Vocabulary loaded. Labels=%d Examples=%d", vocab.Len(), len(vocab.Examples()))

	a := &app{
		cfg:        cfg,
		store:      store,
		classifier: classifier.New(gen, vocab, cfg.MaxLabels),
	}

	if cfg.HistoryEnabled() {
		a.audit, err = sqlite.InitDB(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to init database: %w", err)
		}
		log.Printf("Database initialized at %s", cfg.DBPath)
	}
	if cfg.SlackConfigured() {
		a.notifier = report.NewSlackNotifier(slack.New(cfg.SlackBotToken), cfg.ReportChannelID)
	}
	return a, nil
}

func newTicketStore(cfg config.Config) (pipeline.TicketStore, error) {
	switch cfg.Store {
	case config.StoreJira:
		return jira.NewClient(jira.Options{
			Server:   cfg.JiraServer,
			Email:    cfg.JiraEmail,
			APIToken: cfg.JiraAPIToken,
			PageSize: cfg.PageSize,
			Timeout:  cfg.StoreHTTPTimeout(),
		}), nil
	case config.StoreGitLab:
		return gitlab.NewClient(gitlab.Options{
			BaseURL:  cfg.GitLabURL,
			Token:    cfg.GitLabToken,
			PageSize: cfg.PageSize,
			Timeout:  cfg.StoreHTTPTimeout(),
		}), nil
	case config.StoreGitHub:
		return github.NewClient(github.Options{
			APIURL:   cfg.GitHubAPI,
			Token:    cfg.GitHubToken,
			Repos:    cfg.GitHubRepos,
			PageSize: cfg.PageSize,
			Timeout:  cfg.StoreHTTPTimeout(),
		}), nil
	default:
		return nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}

func (a *app) Close() {
	if a.audit != nil {
		if err := a.audit.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}
}

// runPass performs one full labeling pass and delivers its report.
func (a *app) runPass(ctx context.Context, dryRun bool) (domain.RunStatistics, error) {
	filter := a.cfg.ScopeFilter()
	log.Println(report.FormatHeader(a.cfg.Store, filter, a.scopeName(ctx, filter), a.classifier.Provider(), a.classifier.Model()))

	opts := pipeline.Options{
		Filter:   filter,
		DryRun:   dryRun,
		Workers:  a.cfg.Workers,
		Provider: a.classifier.Provider(),
		Model:    a.classifier.Model(),
	}
	if a.audit != nil {
		opts.Recorder = a.audit
	}

	stats, err := pipeline.New(a.store, a.classifier, opts).Run(ctx)
	if err != nil {
		report.Deliver(a.notifier, "Labeling run aborted: "+Explain(err))
		return stats, err
	}
	report.Deliver(a.notifier, report.FormatRunReport(stats, dryRun))
	return stats, nil
}

func (a *app) scopeName(ctx context.Context, filter string) string {
	pi, ok := a.store.(projectInfoer)
	if !ok || filter == "" {
		return ""
	}
	info, err := pi.ProjectInfo(ctx, filter)
	if err != nil {
		log.Printf("project info unavailable key=%s err=%v", filter, err)
		return ""
	}
	return info.Name
}
