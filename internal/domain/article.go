package domain

// RawArticle is a provider-native news record. Untrusted: providers may
// return malformed or duplicated entries, so every article is validated
// before use.
type RawArticle struct {
	ID       int64
	Headline string
	URL      string
	Summary  string
	Source   string
	Category string
	Related  string // comma-separated symbols the provider tagged
	Datetime int64  // publish time, epoch seconds
}

// Article is the canonical form consumed by digests. Immutable once built.
type Article struct {
	ID       string
	Headline string
	URL      string
	Summary  string
	Source   string
	Datetime int64

	// MatchedSymbol is set only when the article came from a symbol-specific
	// query; empty means general market news.
	MatchedSymbol string

	// Rank records insertion order within the article's batch and breaks
	// ties between equal timestamps.
	Rank int
}

// Recipient is a digest subscriber with the profile fields used for
// personalization.
type Recipient struct {
	Email             string
	Name              string
	Country           string
	RiskProfile       string
	PreferredIndustry string
}
