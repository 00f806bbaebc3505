package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"inova/internal/domain"
	"inova/internal/infra"
	"inova/internal/providers/replicate"
)

const maxBodyBytes = 16 << 10

// Generator runs the full generate flow.
type Generator interface {
	Generate(ctx context.Context, sessionID string, req domain.GenerationRequest) ([]domain.GeneratedVariant, error)
}

// LogoCreator starts logo predictions for the proxy endpoint.
type LogoCreator interface {
	CreatePrediction(ctx context.Context, req domain.GenerationRequest) (*replicate.Prediction, error)
}

// PredictionReader fetches prediction snapshots.
type PredictionReader interface {
	GetPrediction(ctx context.Context, id string) (*replicate.Prediction, error)
}

// IdeasService backs the ideas proxy endpoint.
type IdeasService interface {
	Ideas(ctx context.Context, userIdea, locale string) (string, error)
}

type App struct {
	Config      *infra.Config
	Logger      *infra.Logger
	Generator   Generator
	Logos       LogoCreator
	Predictions PredictionReader
	Ideas       IdeasService
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, errorBody{Error: errorDetail{Code: errCode, Message: message}})
}

// raw relays a provider payload untouched.
func (a *App) raw(w http.ResponseWriter, code int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(body)
}

func (a *App) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return false
	}
	return true
}

func (a *App) log(r *http.Request) *zerolog.Logger {
	if l := zerolog.Ctx(r.Context()); l != nil && l.GetLevel() != zerolog.Disabled {
		return l
	}
	return infra.LoggerOrDiscard(a.Logger)
}

// fail maps a flow error onto the HTTP response. Provider rejections are
// relayed with the provider's own status and payload.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	var upstream *domain.UpstreamError
	switch {
	case errors.Is(err, domain.ErrMissingCredential):
		a.log(r).Error().Err(err).Msg("provider credential missing")
		a.error(w, http.StatusInternalServerError, "config", err.Error())
	case errors.Is(err, domain.ErrInvalidInput):
		a.error(w, http.StatusBadRequest, "invalid_input", domain.InputMessage(err))
	case errors.As(err, &upstream):
		a.log(r).Warn().Str("provider", upstream.Provider).Int("status", upstream.StatusCode).Msg("provider rejected request")
		status := upstream.StatusCode
		if status < http.StatusBadRequest {
			status = http.StatusBadGateway
		}
		a.raw(w, status, upstream.Body)
	case errors.Is(err, domain.ErrSuperseded):
		a.error(w, http.StatusConflict, "superseded", "a newer submission replaced this one")
	case errors.Is(err, domain.ErrJobFailed):
		a.log(r).Warn().Err(err).Msg("image job failed")
		a.error(w, http.StatusBadGateway, "job_failed", "image generation failed")
	case errors.Is(err, domain.ErrMalformedResponse), errors.Is(err, domain.ErrInvalidJob):
		a.log(r).Warn().Err(err).Msg("unusable provider response")
		a.error(w, http.StatusBadGateway, "malformed_response", "the provider returned an unusable response")
	case errors.Is(err, domain.ErrPollTimeout):
		a.log(r).Warn().Err(err).Msg("generation timed out")
		a.error(w, http.StatusGatewayTimeout, "timeout", "image generation did not finish in time")
	case errors.Is(err, context.Canceled):
		a.error(w, http.StatusRequestTimeout, "canceled", "request canceled")
	default:
		a.log(r).Error().Err(err).Msg("request failed")
		a.error(w, http.StatusInternalServerError, "internal", "An error occurred during your request.")
	}
}
