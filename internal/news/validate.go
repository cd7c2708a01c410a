package news

import (
	"strings"

	"github.com/akashaba/stock-tracker-app/internal/domain"
)

// nonNewsCategories lists provider categories that carry no reportable news.
var nonNewsCategories = map[string]struct{}{
	"press release": {},
	"press-release": {},
	"pr":            {},
	"sponsored":     {},
}

// Valid reports whether a raw article is well formed enough to show a reader:
// non-empty headline and URL, a positive timestamp, and no known non-news
// category. Total and deterministic; malformed input yields false, never an
// error.
func Valid(a domain.RawArticle) bool {
	if strings.TrimSpace(a.Headline) == "" {
		return false
	}
	if strings.TrimSpace(a.URL) == "" {
		return false
	}
	if a.Datetime <= 0 {
		return false
	}
	if a.Category != "" {
		if _, ok := nonNewsCategories[strings.ToLower(strings.TrimSpace(a.Category))]; ok {
			return false
		}
	}
	return true
}
