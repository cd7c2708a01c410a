package ports

import (
	"context"
	"time"

	"github.com/akashaba/stock-tracker-app/internal/domain"
)

// NewsProvider pulls raw articles from an upstream market-news feed.
type NewsProvider interface {
	CompanyNews(ctx context.Context, symbol string, from, to time.Time) ([]domain.RawArticle, error)
	GeneralNews(ctx context.Context, category string) ([]domain.RawArticle, error)
}

// RecipientDirectory lists everyone subscribed to digest delivery.
type RecipientDirectory interface {
	ListRecipients(ctx context.Context) ([]domain.Recipient, error)
}

// WatchlistStore resolves the ticker symbols a recipient follows.
type WatchlistStore interface {
	SymbolsForRecipient(ctx context.Context, email string) ([]string, error)
}

// Summarizer turns a prompt into model-generated text.
type Summarizer interface {
	Summarize(ctx context.Context, prompt string) (string, error)
}

// MailSender delivers one rendered HTML mail.
type MailSender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// Scheduler controls when periodic workflows execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
