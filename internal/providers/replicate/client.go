package replicate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"inova/internal/domain"
	"inova/internal/infra"
	"inova/internal/metrics"
)

const providerName = "replicate"

// ErrMissingAPIKey indicates that the client was configured without credentials.
var ErrMissingAPIKey = &domain.ConfigError{Setting: "REPLICATE_API_TOKEN"}

// Options configures the Replicate predictions client.
type Options struct {
	APIToken       string
	BaseURL        string
	ModelVersion   string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client performs HTTP calls to the Replicate predictions API.
type Client struct {
	token   string
	version string
	http    *resty.Client
	logger  *infra.Logger
}

// Input holds the model inputs of a prediction.
type Input struct {
	Prompt            string `json:"prompt"`
	Width             int    `json:"width"`
	Height            int    `json:"height"`
	GuidanceScale     int    `json:"guidance_scale"`
	NumInferenceSteps int    `json:"num_inference_steps"`
	NumOutputs        int    `json:"num_outputs"`
}

type createRequest struct {
	Version string `json:"version"`
	Input   Input  `json:"input"`
}

// Prediction mirrors the subset of the prediction resource the service reads.
// Raw keeps the provider's original JSON so proxy endpoints can relay it.
type Prediction struct {
	ID     string   `json:"id"`
	Status string   `json:"status"`
	Output []string `json:"output"`
	Error  any      `json:"error"`
	Raw    []byte   `json:"-"`
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) *Client {
	var rc *resty.Client
	if opts.HTTPClient != nil {
		rc = resty.NewWithClient(opts.HTTPClient)
	} else {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		rc = resty.New().SetTimeout(timeout)
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.replicate.com/v1"
	}
	rc.SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetHeader("User-Agent", "inova/1.0")

	return &Client{
		token:   strings.TrimSpace(opts.APIToken),
		version: strings.TrimSpace(opts.ModelVersion),
		http:    rc,
		logger:  infra.LoggerOrDiscard(opts.Logger),
	}
}

// HasCredentials reports whether the client can perform remote calls.
func (c *Client) HasCredentials() bool {
	return c != nil && c.token != ""
}

// ModelVersion returns the configured model version identifier.
func (c *Client) ModelVersion() string {
	return c.version
}

// CreatePrediction starts a prediction. Anything other than 201 Created is
// returned as a *domain.UpstreamError carrying the provider payload.
func (c *Client) CreatePrediction(ctx context.Context, input Input) (*Prediction, error) {
	if !c.HasCredentials() {
		return nil, ErrMissingAPIKey
	}
	if strings.TrimSpace(input.Prompt) == "" {
		return nil, domain.InvalidInput("Please enter a valid prompt")
	}
	if c.version == "" {
		return nil, &domain.ConfigError{Setting: "REPLICATE_MODEL_VERSION"}
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", "Token "+c.token).
		SetBody(createRequest{Version: c.version, Input: input}).
		Post("/predictions")
	if err != nil {
		metrics.ProviderCall(providerName, "create", "transport_error")
		return nil, fmt.Errorf("replicate: create prediction: %w", err)
	}
	if resp.StatusCode() != http.StatusCreated {
		metrics.ProviderCall(providerName, "create", fmt.Sprintf("http_%d", resp.StatusCode()))
		c.logger.Warn().Int("status", resp.StatusCode()).Msg("replicate: create prediction rejected")
		return nil, &domain.UpstreamError{Provider: providerName, StatusCode: resp.StatusCode(), Body: resp.Body()}
	}
	metrics.ProviderCall(providerName, "create", "ok")
	prediction, err := decodePrediction(resp.Body())
	if err != nil {
		return nil, err
	}
	c.logger.Debug().
		Str("prediction_id", prediction.ID).
		Str("status", prediction.Status).
		Msg("replicate: prediction created")
	return prediction, nil
}

// GetPrediction fetches the current snapshot of a prediction. Anything other
// than 200 OK is returned as a *domain.UpstreamError.
func (c *Client) GetPrediction(ctx context.Context, id string) (*Prediction, error) {
	if !c.HasCredentials() {
		return nil, ErrMissingAPIKey
	}
	id = strings.TrimSpace(id)
	if id == "" || id == "undefined" {
		return nil, domain.InvalidInput("Please enter a valid ID")
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Authorization", "Token "+c.token).
		SetPathParam("id", id).
		Get("/predictions/{id}")
	if err != nil {
		metrics.ProviderCall(providerName, "get", "transport_error")
		return nil, fmt.Errorf("replicate: get prediction: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		metrics.ProviderCall(providerName, "get", fmt.Sprintf("http_%d", resp.StatusCode()))
		return nil, &domain.UpstreamError{Provider: providerName, StatusCode: resp.StatusCode(), Body: resp.Body()}
	}
	metrics.ProviderCall(providerName, "get", "ok")
	return decodePrediction(resp.Body())
}

// Job converts the prediction into the provider-neutral job snapshot.
func (p *Prediction) Job() (*domain.ImageJob, error) {
	if p == nil || strings.TrimSpace(p.ID) == "" {
		return nil, fmt.Errorf("%w: missing id", domain.ErrInvalidJob)
	}
	status, ok := domain.ParseJobStatus(p.Status)
	if !ok {
		return nil, fmt.Errorf("%w: missing status for %s", domain.ErrInvalidJob, p.ID)
	}
	job := &domain.ImageJob{ID: p.ID, Status: status}
	if status == domain.JobStatusSucceeded {
		job.Outputs = append([]string(nil), p.Output...)
	}
	if p.Error != nil {
		job.Error = fmt.Sprint(p.Error)
	}
	return job, nil
}

var errEmptyBody = errors.New("replicate: empty response body")

func decodePrediction(raw []byte) (*Prediction, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, errEmptyBody
	}
	var p Prediction
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("replicate: decode prediction: %w", err)
	}
	p.Raw = append([]byte(nil), raw...)
	return &p, nil
}
