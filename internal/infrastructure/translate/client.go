// Package translate implements the translation capability against an
// OpenAI-compatible chat completions API.
package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"RegCollector/internal/config"
	"RegCollector/internal/domain"
	"RegCollector/internal/ports"
)

const defaultSystemPrompt = `You translate regulatory and policy articles into Korean.
Respond with a JSON object only: {"title": "<translated title>", "content": "<translated content>"}.
Preserve the document structure; keep agency names, legal citations and technical terms accurate.`

// Client translates articles through a chat completions endpoint. Concurrent
// calls are capped to respect the provider's rate limits.
type Client struct {
	endpoint     string
	model        string
	apiKey       string
	systemPrompt string
	client       *http.Client
	sem          chan struct{}
	logger       *slog.Logger
}

var _ ports.Translator = (*Client)(nil)

// New builds a translate client from config.
func New(cfg config.TranslatorConfig, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	prompt := cfg.SystemPrompt
	if prompt == "" {
		prompt = defaultSystemPrompt
	}
	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent < 1 {
		maxConcurrent = 2
	}
	return &Client{
		endpoint:     cfg.Endpoint,
		model:        cfg.Model,
		apiKey:       cfg.APIKey,
		systemPrompt: prompt,
		client:       httpClient,
		sem:          make(chan struct{}, maxConcurrent),
		logger:       logger,
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

type translatedArticle struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Translate converts the article title and body. Blocks while the concurrency
// cap is saturated; errors are wrapped in TranslationError.
func (c *Client) Translate(ctx context.Context, title, content string) (domain.Translation, error) {
	select {
	case c.sem <- struct{}{}:
		defer func() { <-c.sem }()
	case <-ctx.Done():
		return domain.Translation{}, &domain.TranslationError{Err: ctx.Err()}
	}

	translation, err := c.translateOnce(ctx, title, content)
	if err != nil {
		return domain.Translation{}, &domain.TranslationError{Err: err}
	}
	return translation, nil
}

func (c *Client) translateOnce(ctx context.Context, title, content string) (domain.Translation, error) {
	payload := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: c.systemPrompt},
			{Role: "user", Content: fmt.Sprintf("Title: %s\n\n%s", title, content)},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return domain.Translation{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return domain.Translation{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.Translation{}, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return domain.Translation{}, fmt.Errorf("translation service returned %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return domain.Translation{}, fmt.Errorf("decode response: %w", err)
	}
	if parsed.Error != nil {
		return domain.Translation{}, fmt.Errorf("translation rejected: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return domain.Translation{}, fmt.Errorf("translation returned no choices")
	}

	return parseTranslation(parsed.Choices[0].Message.Content, title)
}

// parseTranslation extracts the translated title and content from the model
// reply. Replies wrapped in markdown code fences are unwrapped first; a reply
// that is not valid JSON is treated as the translated content with the
// original title kept.
func parseTranslation(reply, fallbackTitle string) (domain.Translation, error) {
	text := strings.TrimSpace(reply)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
		text = strings.TrimSpace(text)
	}

	var parsed translatedArticle
	if err := json.Unmarshal([]byte(text), &parsed); err == nil && parsed.Content != "" {
		if parsed.Title == "" {
			parsed.Title = fallbackTitle
		}
		return domain.Translation{Title: parsed.Title, Content: parsed.Content}, nil
	}

	if text == "" {
		return domain.Translation{}, fmt.Errorf("translation returned empty reply")
	}
	return domain.Translation{Title: fallbackTitle, Content: text}, nil
}
