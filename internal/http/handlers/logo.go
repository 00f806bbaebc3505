package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"inova/internal/domain"
	"inova/internal/middleware"
)

type logoRequest struct {
	Prompt string `json:"prompt"`
	Select string `json:"select"`
}

// LogoCreate starts one logo prediction and relays the provider's answer.
func (a *App) LogoCreate(w http.ResponseWriter, r *http.Request) {
	var req logoRequest
	if !a.decode(w, r, &req) {
		return
	}
	prediction, err := a.Logos.CreatePrediction(r.Context(), domain.GenerationRequest{
		Description: req.Prompt,
		StyleHint:   req.Select,
		Locale:      middleware.LocaleFromContext(r.Context()),
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.raw(w, http.StatusOK, prediction.Raw)
}

// LogoStatus relays one status snapshot of a prediction.
func (a *App) LogoStatus(w http.ResponseWriter, r *http.Request) {
	prediction, err := a.Predictions.GetPrediction(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.raw(w, http.StatusOK, prediction.Raw)
}
