package newscache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/akashaba/stock-tracker-app/internal/domain"
	"github.com/akashaba/stock-tracker-app/internal/ports"
)

// DefaultTTL matches the upstream providers' own freshness: news responses
// stay valid for a few minutes.
const DefaultTTL = 5 * time.Minute

// Provider is a read-through Redis cache in front of another NewsProvider.
// Cache failures are never surfaced: a miss or a broken Redis just means one
// more provider call.
type Provider struct {
	next   ports.NewsProvider
	rdb    *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

var _ ports.NewsProvider = (*Provider)(nil)

// Wrap decorates next with response caching. ttl <= 0 selects DefaultTTL.
func Wrap(next ports.NewsProvider, rdb *redis.Client, ttl time.Duration, logger *slog.Logger) *Provider {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{next: next, rdb: rdb, ttl: ttl, logger: logger}
}

// CompanyNews serves from cache when possible; the date window is part of the
// key so a stale window never leaks into a fresh query.
func (p *Provider) CompanyNews(ctx context.Context, symbol string, from, to time.Time) ([]domain.RawArticle, error) {
	key := fmt.Sprintf("news:company:%s:%s:%s", symbol, from.Format("2006-01-02"), to.Format("2006-01-02"))
	return p.through(ctx, key, func(ctx context.Context) ([]domain.RawArticle, error) {
		return p.next.CompanyNews(ctx, symbol, from, to)
	})
}

// GeneralNews serves the market-wide feed from cache when possible.
func (p *Provider) GeneralNews(ctx context.Context, category string) ([]domain.RawArticle, error) {
	key := "news:general:" + category
	return p.through(ctx, key, func(ctx context.Context) ([]domain.RawArticle, error) {
		return p.next.GeneralNews(ctx, category)
	})
}

func (p *Provider) through(ctx context.Context, key string, fetch func(context.Context) ([]domain.RawArticle, error)) ([]domain.RawArticle, error) {
	if cached, ok := p.get(ctx, key); ok {
		return cached, nil
	}

	articles, err := fetch(ctx)
	if err != nil {
		return nil, err
	}

	p.set(ctx, key, articles)
	return articles, nil
}

func (p *Provider) get(ctx context.Context, key string) ([]domain.RawArticle, bool) {
	raw, err := p.rdb.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			p.logger.Warn("news cache read failed", "key", key, "error", err)
		}
		return nil, false
	}

	var articles []domain.RawArticle
	if err := json.Unmarshal(raw, &articles); err != nil {
		p.logger.Warn("news cache entry corrupt", "key", key, "error", err)
		return nil, false
	}
	return articles, true
}

func (p *Provider) set(ctx context.Context, key string, articles []domain.RawArticle) {
	raw, err := json.Marshal(articles)
	if err != nil {
		p.logger.Warn("news cache encode failed", "key", key, "error", err)
		return
	}
	if err := p.rdb.Set(ctx, key, raw, p.ttl).Err(); err != nil {
		p.logger.Warn("news cache write failed", "key", key, "error", err)
	}
}
