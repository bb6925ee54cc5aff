// Package ollama provides a text generation service backed by a local
// Ollama instance.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mnemo-labs/recall/internal/core/domain"
	"github.com/mnemo-labs/recall/internal/core/ports/driven"
)

const (
	defaultBaseURL = "http://localhost:11434"
	defaultModel   = "llama3.2"
	defaultTimeout = 120 * time.Second
)

// Config holds settings for the Ollama generation service.
type Config struct {
	BaseURL string
	Model   string
	Timeout time.Duration
}

// LLMService generates text via the Ollama /api/generate endpoint.
type LLMService struct {
	baseURL string
	model   string
	client  *http.Client
}

var _ driven.LLMService = (*LLMService)(nil)

// New creates an Ollama generation service. Zero-value config fields
// fall back to local defaults.
func New(cfg Config) *LLMService {
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
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

type generateRequest struct {
	Model   string           `json:"model"`
	Prompt  string           `json:"prompt"`
	Stream  bool             `json:"stream"`
	Options *generateOptions `json:"options,omitempty"`
}

type generateOptions struct {
	NumPredict  int      `json:"num_predict,omitempty"`
	Temperature float64  `json:"temperature,omitempty"`
	Stop        []string `json:"stop,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

// Generate produces a completion for the given prompt.
func (s *LLMService) Generate(ctx context.Context, prompt string, opts driven.GenerateOptions) (string, error) {
	reqBody := generateRequest{
		Model:  s.model,
		Prompt: prompt,
		Stream: false,
	}

	if opts.MaxTokens > 0 || opts.Temperature > 0 || len(opts.StopWords) > 0 {
		reqBody.Options = &generateOptions{
			NumPredict:  opts.MaxTokens,
			Temperature: opts.Temperature,
			Stop:        opts.StopWords,
		}
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.baseURL+"/api/generate",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

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

	var genResp generateResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if genResp.Error != "" {
		return "", fmt.Errorf("ollama error: %s", genResp.Error)
	}

	return genResp.Response, nil
}

// ModelName returns the configured model identifier.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping checks that the Ollama server is reachable.
func (s *LLMService) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/api/tags", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrLLMUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: status %d", domain.ErrLLMUnavailable, resp.StatusCode)
	}
	return nil
}

// Close releases idle connections.
func (s *LLMService) Close() error {
	s.client.CloseIdleConnections()
	return nil
}

func statusError(status int, body []byte) error {
	switch status {
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: ollama status %d", domain.ErrRateLimited, status)
	case http.StatusBadRequest:
		return fmt.Errorf("%w: ollama status %d: %s", domain.ErrMalformedInput, status, string(body))
	default:
		return fmt.Errorf("ollama error (status %d): %s", status, string(body))
	}
}
