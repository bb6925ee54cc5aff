// Package anthropic provides a text generation service backed by the
// Anthropic messages API.
package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mnemo-labs/recall/internal/core/domain"
	"github.com/mnemo-labs/recall/internal/core/ports/driven"
)

const (
	defaultBaseURL   = "https://api.anthropic.com"
	defaultModel     = "claude-3-5-sonnet-latest"
	defaultTimeout   = 120 * time.Second
	anthropicVersion = "2023-06-01"

	// The messages API requires max_tokens on every request.
	defaultMaxTokens = 1024
)

// Config holds settings for the Anthropic generation service.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// LLMService generates text via the Anthropic messages API.
type LLMService struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

var _ driven.LLMService = (*LLMService)(nil)

// New creates an Anthropic generation service.
func New(cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}

	return &LLMService{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
		client:  &http.Client{Timeout: cfg.Timeout},
	}, nil
}

type messagesRequest struct {
	Model       string            `json:"model"`
	Messages    []messagesMessage `json:"messages"`
	MaxTokens   int               `json:"max_tokens"`
	Temperature float64           `json:"temperature,omitempty"`
	StopSeqs    []string          `json:"stop_sequences,omitempty"`
}

type messagesMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Generate produces a completion for the given prompt.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	maxTokens := opts.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}

	reqBody := messagesRequest{
		Model:     s.model,
		Messages:  []messagesMessage{{Role: "user", Content: prompt}},
		MaxTokens: maxTokens,
	}
	if opts.Temperature > 0 {
		reqBody.Temperature = opts.Temperature
	}
	if len(opts.StopWords) > 0 {
		reqBody.StopSeqs = opts.StopWords
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.baseURL+"/v1/messages",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", s.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrLLMUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", statusError(resp.StatusCode, body)
	}

	var msgResp messagesResponse
	if err := json.Unmarshal(body, &msgResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if msgResp.Error != nil {
		return "", fmt.Errorf("anthropic error: %s", msgResp.Error.Message)
	}
	if len(msgResp.Content) == 0 {
		return "", fmt.Errorf("anthropic: no response content returned")
	}

	var result strings.Builder
	for _, block := range msgResp.Content {
		if block.Type == "text" {
			result.WriteString(block.Text)
		}
	}
	return result.String(), nil
}

// ModelName returns the configured model identifier.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping sends a minimal request to verify credentials and connectivity.
func (s *LLMService) Ping(ctx context.Context) error {
	_, err := s.Generate(ctx, "ping", driven.GenerateOptions{MaxTokens: 1})
	return err
}

// Close releases idle connections.
func (s *LLMService) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

func statusError(status int, body []byte) error {
	switch status {
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: anthropic status %d", domain.ErrRateLimited, status)
	case http.StatusBadRequest:
		return fmt.Errorf("%w: anthropic status %d: %s", domain.ErrMalformedInput, status, string(body))
	default:
		return fmt.Errorf("anthropic error (status %d): %s", status, string(body))
	}
}
