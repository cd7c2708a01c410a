package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/akashaba/stock-tracker-app/internal/domain"
	"github.com/akashaba/stock-tracker-app/internal/mail"
	"github.com/akashaba/stock-tracker-app/internal/news"
	"github.com/akashaba/stock-tracker-app/internal/ports"
	"github.com/akashaba/stock-tracker-app/internal/workflow"
)

// EventDailyNews triggers an ad-hoc digest run; the cron schedule fires the
// same workflow with no payload.
const EventDailyNews = "app.send.daily.news"

// ErrNoRecipients terminates a digest run: with nobody to mail there is
// nothing downstream to do.
var ErrNoRecipients = errors.New("digest: no recipients")

// emptySummaryFallback replaces blank model output so a delivered mail is
// never empty.
const emptySummaryFallback = "<p>No market news today.</p>"

// recipientNews pairs a recipient with the articles prepared for them.
type recipientNews struct {
	Recipient domain.Recipient
	Articles  []domain.Article
}

// recipientSummary carries per-recipient digest content. A nil NewsContent
// means personalization failed; that recipient is skipped at delivery rather
// than sent a partial mail.
type recipientSummary struct {
	Recipient   domain.Recipient
	NewsContent *string
}

// deliveryReport is the deliver step's recorded output.
type deliveryReport struct {
	Sent    int `json:"sent"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// DigestDeps wires the digest pipeline's collaborators.
type DigestDeps struct {
	Directory   ports.RecipientDirectory
	Watchlists  ports.WatchlistStore
	Aggregator  *news.Aggregator
	Summarizer  ports.Summarizer
	Mailer      ports.MailSender
	Engine      *workflow.Engine
	Logger      *slog.Logger
	MaxArticles int
}

// DigestPipeline is the daily-news workflow: load recipients, prepare
// per-recipient news, summarize, deliver. Every per-recipient stage is
// failure-isolated; the recipient count is preserved end to end.
type DigestPipeline struct {
	directory   ports.RecipientDirectory
	watchlists  ports.WatchlistStore
	aggregator  *news.Aggregator
	summarizer  ports.Summarizer
	mailer      ports.MailSender
	engine      *workflow.Engine
	logger      *slog.Logger
	maxArticles int
}

// NewDigestPipeline constructs the workflow from its dependencies.
func NewDigestPipeline(deps DigestDeps) *DigestPipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxArticles := deps.MaxArticles
	if maxArticles <= 0 {
		maxArticles = news.DefaultMaxArticles
	}
	return &DigestPipeline{
		directory:   deps.Directory,
		watchlists:  deps.Watchlists,
		aggregator:  deps.Aggregator,
		summarizer:  deps.Summarizer,
		mailer:      deps.Mailer,
		engine:      deps.Engine,
		logger:      logger,
		maxArticles: maxArticles,
	}
}

// Run executes the digest workflow for an event payload or a cron tick; both
// produce structurally identical runs.
func (p *DigestPipeline) Run(ctx context.Context, trigger domain.Trigger) domain.WorkflowRun {
	var (
		recipients []domain.Recipient
		prepared   []recipientNews
		summaries  []recipientSummary
	)

	steps := []workflow.Step{
		{
			Name:    "load-recipients",
			Fatal:   true,
			Retries: 1,
			Run: func(ctx context.Context) (any, error) {
				list, err := p.directory.ListRecipients(ctx)
				if err != nil {
					return nil, fmt.Errorf("list recipients: %w", err)
				}
				// An empty table is deterministic; retrying would only
				// repeat the same query.
				if len(list) == 0 {
					return nil, workflow.Terminal(ErrNoRecipients)
				}
				recipients = list
				return len(list), nil
			},
		},
		{
			Name: "fetch-per-recipient-news",
			Run: func(ctx context.Context) (any, error) {
				var failed int
				prepared, failed = p.fetchNews(ctx, recipients)
				if failed > 0 {
					return len(prepared), workflow.Partial(fmt.Errorf("%d of %d recipients got no news", failed, len(prepared)))
				}
				return len(prepared), nil
			},
		},
		{
			Name: "summarize-per-recipient",
			Run: func(ctx context.Context) (any, error) {
				var failed int
				summaries, failed = p.summarize(ctx, prepared)
				if failed > 0 {
					return len(summaries), workflow.Partial(fmt.Errorf("%d of %d summaries failed", failed, len(summaries)))
				}
				return len(summaries), nil
			},
		},
		{
			Name: "deliver",
			Run: func(ctx context.Context) (any, error) {
				report := p.deliver(ctx, summaries, trigger.FiredAt)
				if report.Sent == 0 && report.Failed == 0 {
					return nil, workflow.ErrSkipStep
				}
				if report.Failed > 0 {
					return report, workflow.Partial(fmt.Errorf("%d deliveries failed", report.Failed))
				}
				return report, nil
			},
		},
	}

	return p.engine.Execute(ctx, "daily-news-digest", trigger, steps)
}

// fetchNews prepares one article list per recipient, sequentially; the
// parallelism lives inside the aggregator's per-symbol fan-out. Recipients
// are isolated: a failure leaves that recipient with an empty list instead of
// dropping them, so output size always equals input size.
func (p *DigestPipeline) fetchNews(ctx context.Context, recipients []domain.Recipient) ([]recipientNews, int) {
	prepared := make([]recipientNews, 0, len(recipients))
	failed := 0
	for _, rec := range recipients {
		articles, err := p.newsFor(ctx, rec)
		if err != nil {
			p.logger.Error("preparing recipient news failed", "recipient", rec.Email, "error", err)
			articles = nil
			failed++
		}
		prepared = append(prepared, recipientNews{Recipient: rec, Articles: articles})
	}
	return prepared, failed
}

// newsFor resolves the recipient's watchlist and aggregates news for it. An
// empty symbol-scoped result is retried once without symbols so everyone who
// can receive some news does. The watchlist lookup is graceful: on error the
// recipient gets general news.
func (p *DigestPipeline) newsFor(ctx context.Context, rec domain.Recipient) ([]domain.Article, error) {
	symbols, err := p.watchlists.SymbolsForRecipient(ctx, rec.Email)
	if err != nil {
		p.logger.Warn("watchlist lookup failed", "recipient", rec.Email, "error", err)
		symbols = nil
	}

	articles, err := p.aggregator.GetNews(ctx, symbols, p.maxArticles)
	if err != nil {
		return nil, err
	}
	if len(articles) == 0 && len(symbols) > 0 {
		articles, err = p.aggregator.GetNews(ctx, nil, p.maxArticles)
		if err != nil {
			return nil, err
		}
	}
	if len(articles) > p.maxArticles {
		articles = articles[:p.maxArticles]
	}
	return articles, nil
}

// summarize runs inference per recipient. A failed call records nil content
// for that recipient and never aborts the others.
func (p *DigestPipeline) summarize(ctx context.Context, prepared []recipientNews) ([]recipientSummary, int) {
	summaries := make([]recipientSummary, 0, len(prepared))
	failed := 0
	for _, item := range prepared {
		content, err := p.summarizeOne(ctx, item)
		if err != nil {
			p.logger.Error("summarize failed", "recipient", item.Recipient.Email, "error", err)
			summaries = append(summaries, recipientSummary{Recipient: item.Recipient})
			failed++
			continue
		}
		summaries = append(summaries, recipientSummary{Recipient: item.Recipient, NewsContent: &content})
	}
	return summaries, failed
}

func (p *DigestPipeline) summarizeOne(ctx context.Context, item recipientNews) (string, error) {
	prompt, err := NewsSummaryPrompt(item.Articles)
	if err != nil {
		return "", err
	}
	text, err := p.summarizer.Summarize(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("summarize news: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		text = emptySummaryFallback
	}
	return text, nil
}

// deliver mails every recipient whose content is ready, concurrently. Each
// branch owns its error slot and all branches are joined before the report is
// read. Nil content is a skip, not an error: those recipients simply get no
// mail this cycle.
func (p *DigestPipeline) deliver(ctx context.Context, summaries []recipientSummary, date time.Time) deliveryReport {
	errs := make([]error, len(summaries))
	var report deliveryReport
	var wg sync.WaitGroup

	for i, s := range summaries {
		if s.NewsContent == nil {
			report.Skipped++
			continue
		}
		wg.Add(1)
		go func(i int, s recipientSummary) {
			defer wg.Done()
			body, err := mail.RenderDigest(date, *s.NewsContent)
			if err != nil {
				errs[i] = err
				return
			}
			errs[i] = p.mailer.Send(ctx, s.Recipient.Email, mail.DigestSubject(date), body)
		}(i, s)
	}
	wg.Wait()

	for i, err := range errs {
		if summaries[i].NewsContent == nil {
			continue
		}
		if err != nil {
			p.logger.Error("digest delivery failed", "recipient", summaries[i].Recipient.Email, "error", err)
			report.Failed++
			continue
		}
		report.Sent++
	}
	return report
}
