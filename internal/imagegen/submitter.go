package imagegen

import (
	"context"
	"fmt"
	"strings"

	"inova/internal/domain"
	"inova/internal/infra"
	"inova/internal/providers/replicate"
)

// Fixed generation parameters sent with every logo job.
const (
	imageWidth        = 512
	imageHeight       = 512
	guidanceScale     = 20
	numInferenceSteps = 200
)

// PredictionCreator starts image predictions.
type PredictionCreator interface {
	HasCredentials() bool
	CreatePrediction(ctx context.Context, input replicate.Input) (*replicate.Prediction, error)
}

// Submitter turns a GenerationRequest into one asynchronous image job.
type Submitter struct {
	api    PredictionCreator
	logger *infra.Logger
}

func NewSubmitter(api PredictionCreator, logger *infra.Logger) *Submitter {
	return &Submitter{api: api, logger: infra.LoggerOrDiscard(logger)}
}

// CredentialError returns the configuration error Submit would fail with, or nil.
func (s *Submitter) CredentialError() error {
	if s.api == nil || !s.api.HasCredentials() {
		return replicate.ErrMissingAPIKey
	}
	return nil
}

// CreatePrediction submits req and returns the provider's prediction as is.
// Nothing is retried.
func (s *Submitter) CreatePrediction(ctx context.Context, req domain.GenerationRequest) (*replicate.Prediction, error) {
	if err := s.CredentialError(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Description) == "" {
		return nil, domain.InvalidInput("Please enter a valid prompt")
	}
	input := replicate.Input{
		Prompt:            BuildLogoPrompt(req),
		Width:             imageWidth,
		Height:            imageHeight,
		GuidanceScale:     guidanceScale,
		NumInferenceSteps: numInferenceSteps,
		NumOutputs:        domain.VariantCount,
	}
	return s.api.CreatePrediction(ctx, input)
}

// Submit creates the job and returns its first snapshot.
func (s *Submitter) Submit(ctx context.Context, req domain.GenerationRequest) (*domain.ImageJob, error) {
	prediction, err := s.CreatePrediction(ctx, req)
	if err != nil {
		return nil, err
	}
	job, err := prediction.Job()
	if err != nil {
		return nil, fmt.Errorf("imagegen: submit: %w", err)
	}
	s.logger.Info().
		Str("job_id", job.ID).
		Str("status", string(job.Status)).
		Msg("imagegen: logo job submitted")
	return job, nil
}
