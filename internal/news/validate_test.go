package news

import (
	"testing"

	"github.com/akashaba/stock-tracker-app/internal/domain"
)

func TestValid(t *testing.T) {
	t.Parallel()

	base := domain.RawArticle{
		ID:       42,
		Headline: "Apple posts record quarter",
		URL:      "https://example.com/apple",
		Datetime: 1700000000,
	}

	cases := []struct {
		name   string
		mutate func(*domain.RawArticle)
		want   bool
	}{
		{"well formed", func(a *domain.RawArticle) {}, true},
		{"empty headline", func(a *domain.RawArticle) { a.Headline = "" }, false},
		{"whitespace headline", func(a *domain.RawArticle) { a.Headline = "   " }, false},
		{"empty url", func(a *domain.RawArticle) { a.URL = "" }, false},
		{"zero timestamp", func(a *domain.RawArticle) { a.Datetime = 0 }, false},
		{"negative timestamp", func(a *domain.RawArticle) { a.Datetime = -5 }, false},
		{"press release category", func(a *domain.RawArticle) { a.Category = "Press Release" }, false},
		{"sponsored category", func(a *domain.RawArticle) { a.Category = "sponsored" }, false},
		{"news category", func(a *domain.RawArticle) { a.Category = "company" }, true},
		{"zero id is fine", func(a *domain.RawArticle) { a.ID = 0 }, true},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			a := base
			tc.mutate(&a)
			if got := Valid(a); got != tc.want {
				t.Fatalf("Valid() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestValidIsIdempotent(t *testing.T) {
	t.Parallel()

	a := domain.RawArticle{Headline: "h", URL: "u", Datetime: 1}
	first := Valid(a)
	for i := 0; i < 10; i++ {
		if Valid(a) != first {
			t.Fatal("Valid changed its answer for the same input")
		}
	}
}
