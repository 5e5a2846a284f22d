package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	defaultOpenAIBaseURL = "https://api.openai.com/v1"
	defaultOpenAIModel   = "gpt-4o-mini"
)

// OpenAIProvider talks to a chat-completions endpoint. Any service speaking
// the same protocol can be used through WithBaseURL.
type OpenAIProvider struct {
	apiKey  string
	baseURL string
	model   string
	name    string
	client  *http.Client
}

// OpenAIOption configures an OpenAIProvider.
type OpenAIOption func(*OpenAIProvider)

// WithBaseURL points the provider at another compatible endpoint. Empty keeps the default.
func WithBaseURL(url string) OpenAIOption {
	return func(p *OpenAIProvider) {
		if url != "" {
			p.baseURL = strings.TrimRight(url, "/")
		}
	}
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(client *http.Client) OpenAIOption {
	return func(p *OpenAIProvider) { p.client = client }
}

// WithModel sets the model used when a request does not name one.
func WithModel(model string) OpenAIOption {
	return func(p *OpenAIProvider) {
		if model != "" {
			p.model = model
		}
	}
}

// WithProviderName sets the name reported in UpstreamError.
func WithProviderName(name string) OpenAIOption {
	return func(p *OpenAIProvider) { p.name = name }
}

// NewOpenAIProvider returns a provider for apiKey. A missing key is not an
// error here; every call reports ErrMissingCredential instead. The client has
// no timeout of its own: calls are bounded only by the caller's context.
func NewOpenAIProvider(apiKey string, opts ...OpenAIOption) *OpenAIProvider {
	p := &OpenAIProvider{
		apiKey:  apiKey,
		baseURL: defaultOpenAIBaseURL,
		model:   defaultOpenAIModel,
		name:    "openai",
		client:  &http.Client{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openaiRequest struct {
	Model       string          `json:"model"`
	Messages    []openaiMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	Temperature *float64        `json:"temperature,omitempty"`
}

type openaiChoice struct {
	Message openaiMessage `json:"message"`
}

type openaiResponse struct {
	Model   string         `json:"model"`
	Choices []openaiChoice `json:"choices"`
	Usage   struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// text returns the first choice's content, or "" when there is none.
func (r openaiResponse) text() string {
	if len(r.Choices) == 0 {
		return ""
	}
	return r.Choices[0].Message.Content
}

// buildRequest applies task defaults and the fallback model.
func (p *OpenAIProvider) buildRequest(req CompletionRequest) openaiRequest {
	req = req.WithDefaults()

	out := openaiRequest{
		Model:       req.Model,
		Messages:    make([]openaiMessage, 0, len(req.Messages)),
		MaxTokens:   req.MaxTokens,
		Temperature: &req.Temperature,
	}
	if out.Model == "" {
		out.Model = p.model
	}
	for _, m := range req.Messages {
		out.Messages = append(out.Messages, openaiMessage{Role: m.Role, Content: m.Content})
	}
	return out
}

// Complete sends one chat-completions request. The first choice is returned
// verbatim; there are no retries.
func (p *OpenAIProvider) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	if p.apiKey == "" {
		return CompletionResponse{}, ErrMissingCredential
	}

	payload, err := json.Marshal(p.buildRequest(req))
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("encoding completion request: %w", err)
	}

	raw, err := p.send(ctx, http.MethodPost, "/chat/completions", payload)
	if err != nil {
		return CompletionResponse{}, err
	}

	var resp openaiResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return CompletionResponse{}, fmt.Errorf("%w: decoding completion: %v", ErrUpstreamUnavailable, err)
	}
	content := resp.text()
	if content == "" {
		return CompletionResponse{}, fmt.Errorf("%w: %w from %s", ErrUpstreamUnavailable, ErrEmptyCompletion, p.name)
	}

	return CompletionResponse{
		Content:      content,
		Model:        resp.Model,
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
	}, nil
}

// send performs an authenticated request and returns the body of a 2xx
// response. Transport failures and other statuses wrap ErrUpstreamUnavailable.
func (p *OpenAIProvider) send(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("building %s request: %w", path, err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", ErrUpstreamUnavailable, method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s response: %v", ErrUpstreamUnavailable, path, err)
	}
	if resp.StatusCode/100 != 2 {
		return nil, &UpstreamError{Provider: p.name, Status: resp.StatusCode, Body: string(raw)}
	}
	return raw, nil
}

func (p *OpenAIProvider) Models() []ModelInfo {
	return []ModelInfo{
		{ID: "gpt-4o-mini", Name: "GPT-4o Mini", MaxTokens: 128000, Description: "Default for curriculum, lesson and quiz drafts"},
		{ID: "gpt-4o", Name: "GPT-4o", MaxTokens: 128000, Description: "Higher quality drafts"},
	}
}

// HealthCheck lists models, which needs a valid key but costs no tokens.
func (p *OpenAIProvider) HealthCheck(ctx context.Context) error {
	if p.apiKey == "" {
		return ErrMissingCredential
	}
	if _, err := p.send(ctx, http.MethodGet, "/models", nil); err != nil {
		return fmt.Errorf("health check: %w", err)
	}
	return nil
}
