package news

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/akashaba/stock-tracker-app/internal/domain"
	"github.com/akashaba/stock-tracker-app/internal/ports"
)

const (
	// DefaultMaxArticles caps a digest when the caller passes no limit.
	DefaultMaxArticles = 6

	// lookbackDays bounds company-news queries to recent articles.
	lookbackDays = 5

	generalCategory   = "general"
	fallbackKeepLimit = 20
)

// ErrNewsFetch is returned only when the symbol-scoped path produced nothing
// and the general feed also failed, leaving nothing to serve.
var ErrNewsFetch = errors.New("news: fetch failed")

// Aggregator fans per-symbol queries out against a provider and merges the
// results fairly. Per-symbol failures are absorbed; the general market feed
// backstops symbol sets that yield nothing.
type Aggregator struct {
	provider ports.NewsProvider
	logger   *slog.Logger
	now      func() time.Time
}

// NewAggregator wires a provider; the logger may be nil.
func NewAggregator(provider ports.NewsProvider, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{provider: provider, logger: logger, now: time.Now}
}

// GetNews returns at most maxArticles canonical articles for the given
// symbols, interleaved round-robin so no symbol starves another, sorted by
// timestamp descending with batch rank as tie-break. An empty or exhausted
// symbol set falls back to the deduplicated general feed. maxArticles <= 0
// selects DefaultMaxArticles.
func (a *Aggregator) GetNews(ctx context.Context, symbols []string, maxArticles int) ([]domain.Article, error) {
	if maxArticles <= 0 {
		maxArticles = DefaultMaxArticles
	}

	clean := NormalizeSymbols(symbols)
	if len(clean) > 0 {
		queues := a.fetchSymbolQueues(ctx, clean)
		collected := interleave(clean, queues, maxArticles)
		if len(collected) > 0 {
			sort.SliceStable(collected, func(i, j int) bool {
				if collected[i].Datetime != collected[j].Datetime {
					return collected[i].Datetime > collected[j].Datetime
				}
				return collected[i].Rank < collected[j].Rank
			})
			if len(collected) > maxArticles {
				collected = collected[:maxArticles]
			}
			return collected, nil
		}
	}

	return a.generalNews(ctx, maxArticles)
}

// NormalizeSymbols trims, uppercases, and drops empty ticker symbols while
// preserving input order, which round-robin output depends on.
func NormalizeSymbols(symbols []string) []string {
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// fetchSymbolQueues runs one provider query per symbol in parallel. Every
// branch writes only its own slot and all branches are joined before any
// queue is read, so completion timing cannot reorder output. A failed branch
// leaves an empty queue rather than aborting the batch.
func (a *Aggregator) fetchSymbolQueues(ctx context.Context, symbols []string) [][]domain.RawArticle {
	to := a.now()
	from := to.AddDate(0, 0, -lookbackDays)

	queues := make([][]domain.RawArticle, len(symbols))
	var wg sync.WaitGroup
	for i, sym := range symbols {
		wg.Add(1)
		go func(i int, sym string) {
			defer wg.Done()
			raw, err := a.provider.CompanyNews(ctx, sym, from, to)
			if err != nil {
				a.logger.Warn("company news fetch failed", "symbol", sym, "error", err)
				return
			}
			queue := make([]domain.RawArticle, 0, len(raw))
			for _, art := range raw {
				if Valid(art) {
					queue = append(queue, art)
				}
			}
			queues[i] = queue
		}(i, sym)
	}
	wg.Wait()

	return queues
}

// interleave dequeues one article per symbol per round, in input symbol
// order, until maxArticles are collected or maxArticles rounds have passed.
// The round index becomes the article's rank.
func interleave(symbols []string, queues [][]domain.RawArticle, maxArticles int) []domain.Article {
	collected := make([]domain.Article, 0, maxArticles)
	for round := 0; round < maxArticles && len(collected) < maxArticles; round++ {
		for i := range symbols {
			if len(queues[i]) == 0 {
				continue
			}
			raw := queues[i][0]
			queues[i] = queues[i][1:]
			if !Valid(raw) {
				continue
			}
			collected = append(collected, Format(raw, symbols[i], round))
			if len(collected) >= maxArticles {
				break
			}
		}
	}
	return collected
}

// generalNews serves the market-wide feed: validated, deduplicated on the
// id+url+headline composite, capped at fallbackKeepLimit before formatting.
// Provider order is preserved since there is no symbol to interleave.
func (a *Aggregator) generalNews(ctx context.Context, maxArticles int) ([]domain.Article, error) {
	raw, err := a.provider.GeneralNews(ctx, generalCategory)
	if err != nil {
		return nil, fmt.Errorf("%w: general feed: %v", ErrNewsFetch, err)
	}

	seen := make(map[string]struct{}, len(raw))
	unique := make([]domain.RawArticle, 0, fallbackKeepLimit)
	for _, art := range raw {
		if !Valid(art) {
			continue
		}
		key := fmt.Sprintf("%d-%s-%s", art.ID, art.URL, art.Headline)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, art)
		if len(unique) >= fallbackKeepLimit {
			break
		}
	}

	if len(unique) > maxArticles {
		unique = unique[:maxArticles]
	}
	formatted := make([]domain.Article, 0, len(unique))
	for i, art := range unique {
		formatted = append(formatted, Format(art, "", i))
	}
	return formatted, nil
}
