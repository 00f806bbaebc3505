package completion

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	openai "github.com/sashabaranov/go-openai"

	"inova/internal/domain"
	"inova/internal/infra"
	"inova/internal/metrics"
)

const (
	providerName = "openai"

	defaultTemperature = 0.6
	defaultMaxTokens   = 800
	defaultTimeout     = 60 * time.Second
)

// ErrMissingAPIKey indicates that the client was configured without credentials.
var ErrMissingAPIKey = &domain.ConfigError{Setting: "OpenAI API key"}

type Options struct {
	APIKey       string
	Model        string
	BaseURL      string
	Organization string
	HTTPClient   *http.Client
	Logger       *infra.Logger
	// OnWarning receives model normalisation notices.
	OnWarning func(reason, detail string)
}

// Client talks to the legacy text completions endpoint.
type Client struct {
	apiKey       string
	model        string
	organization string
	http         *resty.Client
	logger       *infra.Logger
}

func NewClient(opts Options) *Client {
	var rc *resty.Client
	if opts.HTTPClient != nil {
		rc = resty.NewWithClient(opts.HTTPClient)
	} else {
		rc = resty.New().SetTimeout(defaultTimeout)
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	rc.SetBaseURL(baseURL).SetHeader("Content-Type", "application/json")

	requested := strings.TrimSpace(opts.Model)
	model, reason := normalizeModel(requested)
	if reason != "" && opts.OnWarning != nil {
		opts.OnWarning("model_"+reason, fmt.Sprintf("requested=%s resolved=%s", coalesce(requested, defaultModel), model))
	}

	return &Client{
		apiKey:       strings.TrimSpace(opts.APIKey),
		model:        model,
		organization: strings.TrimSpace(opts.Organization),
		http:         rc,
		logger:       infra.LoggerOrDiscard(opts.Logger),
	}
}

// HasCredentials reports whether the client can perform remote calls.
func (c *Client) HasCredentials() bool {
	return c != nil && c.apiKey != ""
}

// CredentialError returns ErrMissingAPIKey when no key is configured.
func (c *Client) CredentialError() error {
	if !c.HasCredentials() {
		return ErrMissingAPIKey
	}
	return nil
}

// Model returns the resolved completion model.
func (c *Client) Model() string {
	return c.model
}

// Complete sends one completion request and returns choices[0].text untouched.
// Non-2xx responses are returned as *domain.UpstreamError.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	if !c.HasCredentials() {
		return "", ErrMissingAPIKey
	}
	if strings.TrimSpace(prompt) == "" {
		return "", domain.InvalidInput("Please enter a valid user idea")
	}
	payload := openai.CompletionRequest{
		Model:       c.model,
		Prompt:      prompt,
		Temperature: defaultTemperature,
		MaxTokens:   defaultMaxTokens,
	}
	req := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.apiKey).
		SetBody(payload)
	if c.organization != "" {
		req.SetHeader("OpenAI-Organization", c.organization)
	}
	resp, err := req.Post("/completions")
	if err != nil {
		metrics.ProviderCall(providerName, "complete", "transport_error")
		return "", fmt.Errorf("openai: completion request: %w", err)
	}
	if resp.StatusCode() >= 300 {
		metrics.ProviderCall(providerName, "complete", fmt.Sprintf("http_%d", resp.StatusCode()))
		c.logger.Warn().Int("status", resp.StatusCode()).Msg("openai: completion rejected")
		return "", &domain.UpstreamError{Provider: providerName, StatusCode: resp.StatusCode(), Body: resp.Body()}
	}
	var out openai.CompletionResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		metrics.ProviderCall(providerName, "complete", "decode_error")
		return "", fmt.Errorf("openai: decode completion: %w", err)
	}
	if len(out.Choices) == 0 {
		metrics.ProviderCall(providerName, "complete", "empty_choices")
		return "", fmt.Errorf("%w: no choices", domain.ErrMalformedResponse)
	}
	metrics.ProviderCall(providerName, "complete", "ok")
	c.logger.Debug().
		Str("model", c.model).
		Int("chars", len(out.Choices[0].Text)).
		Msg("openai: completion received")
	return out.Choices[0].Text, nil
}

// Ideas builds the localized ideas prompt for userIdea and completes it.
func (c *Client) Ideas(ctx context.Context, userIdea, locale string) (string, error) {
	if !c.HasCredentials() {
		return "", ErrMissingAPIKey
	}
	if strings.TrimSpace(userIdea) == "" {
		return "", domain.InvalidInput("Please enter a valid user idea")
	}
	return c.Complete(ctx, BuildIdeasPrompt(userIdea, locale))
}

func coalesce(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// Generate produces the raw names/slogans/descriptions block for req.
func (c *Client) Generate(ctx context.Context, req domain.GenerationRequest) (string, error) {
	return c.Ideas(ctx, req.Description, req.Locale)
}
