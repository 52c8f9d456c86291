package anthropic

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	defaultURL = "https://api.anthropic.com/v1/messages"
	apiVersion = "2023-06-01"
	model      = "claude-3-haiku-20240307"
	maxTokens  = 128

	// NoCommand is what the model answers when the text maps to no command.
	NoCommand = "NONE"
)

// Client defines the interface for AI text processing.
type Client interface {
	TranslateToCommand(ctx context.Context, input string) (string, error)
}

type anthropicClient struct {
	httpClient *resty.Client
	url        string
}

// Option customizes the client.
type Option func(*anthropicClient)

// WithURL points the client at another endpoint.
func WithURL(url string) Option {
	return func(c *anthropicClient) {
		c.url = url
	}
}

// NewClient creates a configured Anthropic client.
func NewClient(apiKey string, opts ...Option) Client {
	client := resty.New().
		SetHeader("x-api-key", apiKey).
		SetHeader("anthropic-version", apiVersion).
		SetHeader("content-type", "application/json").
		SetTimeout(15 * time.Second)

	c := &anthropicClient{httpClient: client, url: defaultURL}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type messageRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system"`
	Messages  []Message `json:"messages"`
}

// Message is one turn of a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messageResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

const systemPrompt = `You translate messages from livestock farmers into exactly one bot command.
Answer with the command line only, no explanation. Amounts are plain numbers without separators.

Commands:
/dashboard
/animals [active|sold|deceased|all]
/butchers [search]
/finance [count]
/buy <type> <price> [breed]
/feed <name> <quantity> <unit price> [supplier]
/vaccinate <animal id> <vaccine> [cost]
/sell <animal id> <price> [buyer]
/delete <animal|sale|feed|vaccination> <id>
/confirm
/cancel
/help

Examples:
"I bought a zebu cow for 2.5 million" -> /buy cow 2500000 zebu
"sold animal 4 to Alpha for 3000000" -> /sell 4 3000000 Alpha
"how is the farm doing?" -> /dashboard

If the message matches none of the commands, answer ` + NoCommand + `.`

// TranslateToCommand asks the model for the slash command matching input. It
// returns an empty string when the model finds no matching command.
func (c *anthropicClient) TranslateToCommand(ctx context.Context, input string) (string, error) {
	reqBody := messageRequest{
		Model:     model,
		MaxTokens: maxTokens,
		System:    systemPrompt,
		Messages: []Message{
			{Role: "user", Content: input},
			// Prefill so the answer starts as a command.
			{Role: "assistant", Content: "/"},
		},
	}

	var respBody messageResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(reqBody).
		SetResult(&respBody).
		Post(c.url)
	if err != nil {
		return "", fmt.Errorf("anthropic api call: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("anthropic api error: %s", resp.String())
	}
	if len(respBody.Content) == 0 {
		return "", fmt.Errorf("empty response from ai")
	}

	return normalize(respBody.Content[0].Text), nil
}

// normalize completes the prefilled answer and keeps only its first line.
func normalize(text string) string {
	text = strings.TrimSpace(text)
	text = strings.Trim(text, "`")
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = text[:idx]
	}
	text = strings.TrimSpace(strings.TrimPrefix(text, "/"))
	if text == "" || strings.EqualFold(text, NoCommand) {
		return ""
	}
	return "/" + text
}
