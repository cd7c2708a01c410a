package finnhub

import (
	"context"
	"fmt"
	"time"

	finnhubgo "github.com/Finnhub-Stock-API/finnhub-go/v2"

	"github.com/akashaba/stock-tracker-app/internal/domain"
	"github.com/akashaba/stock-tracker-app/internal/ports"
)

const dateLayout = "2006-01-02"

// Client adapts the Finnhub SDK to the NewsProvider port.
type Client struct {
	api *finnhubgo.DefaultApiService
}

var _ ports.NewsProvider = (*Client)(nil)

// NewClient builds an authenticated Finnhub API client.
func NewClient(apiKey string) *Client {
	cfg := finnhubgo.NewConfiguration()
	cfg.AddDefaultHeader("X-Finnhub-Token", apiKey)
	return &Client{api: finnhubgo.NewAPIClient(cfg).DefaultApi}
}

// CompanyNews fetches symbol-scoped articles within the date window.
func (c *Client) CompanyNews(ctx context.Context, symbol string, from, to time.Time) ([]domain.RawArticle, error) {
	res, _, err := c.api.CompanyNews(ctx).
		Symbol(symbol).
		From(from.Format(dateLayout)).
		To(to.Format(dateLayout)).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("finnhub company news %s: %w", symbol, err)
	}
	converted := make([]finnhubgo.MarketNews, len(res))
	for i, n := range res {
		converted[i] = finnhubgo.MarketNews(n)
	}
	return toRawArticles(converted), nil
}

// GeneralNews fetches the market-wide feed for a category.
func (c *Client) GeneralNews(ctx context.Context, category string) ([]domain.RawArticle, error) {
	res, _, err := c.api.MarketNews(ctx).Category(category).Execute()
	if err != nil {
		return nil, fmt.Errorf("finnhub market news %s: %w", category, err)
	}
	return toRawArticles(res), nil
}

// toRawArticles flattens the SDK's pointer-heavy model; absent fields stay at
// their zero value and get filtered by validation downstream.
func toRawArticles(items []finnhubgo.MarketNews) []domain.RawArticle {
	articles := make([]domain.RawArticle, 0, len(items))
	for _, n := range items {
		var a domain.RawArticle
		if n.Id != nil {
			a.ID = *n.Id
		}
		if n.Headline != nil {
			a.Headline = *n.Headline
		}
		if n.Url != nil {
			a.URL = *n.Url
		}
		if n.Summary != nil {
			a.Summary = *n.Summary
		}
		if n.Source != nil {
			a.Source = *n.Source
		}
		if n.Category != nil {
			a.Category = *n.Category
		}
		if n.Related != nil {
			a.Related = *n.Related
		}
		if n.Datetime != nil {
			a.Datetime = *n.Datetime
		}
		articles = append(articles, a)
	}
	return articles
}
