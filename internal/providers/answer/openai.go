package answer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// OpenAIOptions configures the chat-completions backed generator.
type OpenAIOptions struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
	// Timeout bounds a single completion call. External calls must never block
	// the request path longer than this.
	Timeout time.Duration
}

// OpenAIGenerator drafts responses through an OpenAI-compatible
// chat-completions endpoint.
type OpenAIGenerator struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
	timeout time.Duration
}

const (
	openAIDefaultTimeout = 10 * time.Second
	openAIDefaultModel   = "gpt-4o-mini"
	openAIMaxTokens      = 220
	// Controlled randomness is intentional: repeated calls for the same
	// question may legitimately produce different responses.
	openAITemperature = 0.8
)

type openAIChatRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	Temperature float64         `json:"temperature,omitempty"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// NewOpenAIGenerator validates options and builds the client.
func NewOpenAIGenerator(opts OpenAIOptions) (*OpenAIGenerator, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("openai api key is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = openAIDefaultModel
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = openAIDefaultTimeout
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}
	return &OpenAIGenerator{
		apiKey:  strings.TrimSpace(opts.APIKey),
		model:   model,
		baseURL: baseURL,
		client:  client,
		timeout: timeout,
	}, nil
}

// Answer performs one bounded completion call and returns the raw text.
func (o *OpenAIGenerator) Answer(ctx context.Context, req Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	payload := openAIChatRequest{
		Model:       o.model,
		Temperature: openAITemperature,
		MaxTokens:   openAIMaxTokens,
		Messages: []openAIMessage{
			{Role: "system", Content: buildSystemPrompt(req)},
			{Role: "user", Content: buildUserPrompt(req)},
		},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}
	endpoint := fmt.Sprintf("%s/chat/completions", o.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("http request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("openai status %d", resp.StatusCode)
	}
	var out openAIChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", errors.New("no choices")
	}
	text := strings.TrimSpace(out.Choices[0].Message.Content)
	if text == "" {
		return "", errors.New("empty response")
	}
	return text, nil
}

func buildSystemPrompt(req Request) string {
	return fmt.Sprintf(
		"You are %s. Answer as this character in one short, poetic paragraph of at most %d words. "+
			"Never give medical, financial, legal or relationship-ending advice, never mention self-harm, "+
			"and never promise certain outcomes.",
		req.PersonaVoice, req.MaxWords,
	)
}

func buildUserPrompt(req Request) string {
	var b strings.Builder
	if req.UserName != "" {
		fmt.Fprintf(&b, "The seeker's name is %s", req.UserName)
		if !req.BirthDate.IsZero() {
			fmt.Fprintf(&b, ", born on %s", req.BirthDate.Format("2 January 2006"))
		}
		b.WriteString(". ")
	}
	fmt.Fprintf(&b, "Their question: %s", req.Question)
	return b.String()
}

var _ Generator = (*OpenAIGenerator)(nil)
