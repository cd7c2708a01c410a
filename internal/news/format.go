package news

import (
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/akashaba/stock-tracker-app/internal/domain"
)

// Format converts a validated raw article into its canonical form.
// matchedSymbol is empty for general market news; rank is the article's
// insertion order within its batch. Pure and total; it does not validate or
// deduplicate, callers do that first.
func Format(raw domain.RawArticle, matchedSymbol string, rank int) domain.Article {
	return domain.Article{
		ID:            strconv.FormatInt(raw.ID, 10),
		Headline:      strings.TrimSpace(raw.Headline),
		URL:           raw.URL,
		Summary:       StripHTML(raw.Summary),
		Source:        raw.Source,
		Datetime:      raw.Datetime,
		MatchedSymbol: matchedSymbol,
		Rank:          rank,
	}
}

// StripHTML extracts plain text from markup-bearing summaries; RSS-sourced
// general news routinely embeds tags and entities. Total: input without
// markup, or input that fails to parse, comes back unchanged.
func StripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	return strings.TrimSpace(doc.Text())
}
