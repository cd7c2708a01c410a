package usecase

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/akashaba/stock-tracker-app/internal/domain"
)

const newsSummaryPrompt = `You are a financial news editor writing a short daily digest email.

Summarize the news articles below for a retail investor:
- Open with one neutral sentence on the overall market mood.
- Then 3 to 5 short bullet points, each covering a distinct story.
- Mention company names, tickers, and figures where the articles provide them.
- Plain language, no hype, no investment advice.
- Output simple HTML only: <p> for the opening sentence and <ul><li> for the bullets.

Articles:
{{newsData}}`

const welcomeIntroPrompt = `Write a short, warm two-sentence welcome for a new user of Signalist,
a stock market tracking app. Tailor it to their profile without repeating it back verbatim.
Output plain HTML, a single <p> element, no headings.

Profile:
{{userProfile}}`

// NewsSummaryPrompt builds the per-recipient summarization request from the
// articles prepared for that recipient.
func NewsSummaryPrompt(articles []domain.Article) (string, error) {
	data, err := json.MarshalIndent(articles, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal articles for prompt: %w", err)
	}
	return strings.ReplaceAll(newsSummaryPrompt, "{{newsData}}", string(data)), nil
}

// WelcomeIntroPrompt builds the personalization request for a new user.
func WelcomeIntroPrompt(event UserCreatedEvent) string {
	profile := fmt.Sprintf(
		"- Country: %s\n- Investment goals: %s\n- Risk tolerance: %s\n- Preferred industry: %s",
		event.Country, event.InvestmentGoals, event.RiskTolerance, event.PreferredIndustry,
	)
	return strings.ReplaceAll(welcomeIntroPrompt, "{{userProfile}}", profile)
}
