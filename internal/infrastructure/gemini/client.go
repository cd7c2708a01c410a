package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/akashaba/stock-tracker-app/internal/ports"
)

// Client summarizes prompts with a Gemini model.
type Client struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

var _ ports.Summarizer = (*Client)(nil)

// NewClient builds an authenticated Gemini client for the given model.
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	c, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &Client{client: c, model: c.GenerativeModel(model)}, nil
}

// Summarize sends the prompt and concatenates all returned text parts.
func (c *Client) Summarize(ctx context.Context, prompt string) (string, error) {
	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
			}
		}
	}

	out := strings.TrimSpace(b.String())
	if out == "" {
		return "", fmt.Errorf("gemini returned no text")
	}
	return out, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.client.Close()
}
