package rssfeed

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/akashaba/stock-tracker-app/internal/domain"
	"github.com/akashaba/stock-tracker-app/internal/ports"
)

// Provider serves general market news from configured RSS feeds. RSS carries
// no symbol-scoped querying, so company-news lookups resolve to no articles
// and aggregation falls back to the general feed.
type Provider struct {
	parser *gofeed.Parser
	feeds  []string
	logger *slog.Logger
}

var _ ports.NewsProvider = (*Provider)(nil)

// NewProvider wires the feed URLs; the logger may be nil.
func NewProvider(feeds []string, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{parser: gofeed.NewParser(), feeds: feeds, logger: logger}
}

// CompanyNews always returns nothing: RSS feeds cannot be queried per symbol.
func (p *Provider) CompanyNews(ctx context.Context, symbol string, from, to time.Time) ([]domain.RawArticle, error) {
	return nil, nil
}

// GeneralNews parses every configured feed in order. Per-feed failures are
// absorbed and logged; an error is returned only when no feed could be read.
func (p *Provider) GeneralNews(ctx context.Context, category string) ([]domain.RawArticle, error) {
	var (
		articles []domain.RawArticle
		parsed   int
	)

	for _, url := range p.feeds {
		feed, err := p.parser.ParseURLWithContext(url, ctx)
		if err != nil {
			p.logger.Warn("rss feed fetch failed", "url", url, "error", err)
			continue
		}
		parsed++
		for _, item := range feed.Items {
			articles = append(articles, toRawArticle(feed, item))
		}
	}

	if parsed == 0 && len(p.feeds) > 0 {
		return nil, fmt.Errorf("all %d rss feeds failed", len(p.feeds))
	}
	return articles, nil
}

func toRawArticle(feed *gofeed.Feed, item *gofeed.Item) domain.RawArticle {
	a := domain.RawArticle{
		ID:       itemID(item),
		Headline: item.Title,
		URL:      item.Link,
		Summary:  item.Description,
		Source:   feed.Title,
	}
	if item.PublishedParsed != nil {
		a.Datetime = item.PublishedParsed.Unix()
	} else if item.UpdatedParsed != nil {
		a.Datetime = item.UpdatedParsed.Unix()
	}
	return a
}

// itemID derives a stable numeric id from the item GUID (or link), since RSS
// items carry no provider id and downstream dedup keys on id+url+headline.
func itemID(item *gofeed.Item) int64 {
	key := item.GUID
	if key == "" {
		key = item.Link
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte(key))
	return int64(h.Sum64() & (1<<63 - 1))
}
