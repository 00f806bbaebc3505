package handlers

import (
	"net/http"

	"inova/internal/domain"
	"inova/internal/middleware"
)

type generateRequest struct {
	Description string `json:"description"`
	Style       string `json:"style"`
	Color       string `json:"color"`
}

type generateResponse struct {
	Variants []domain.GeneratedVariant `json:"variants"`
}

func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if !a.decode(w, r, &req) {
		return
	}
	variants, err := a.Generator.Generate(r.Context(), middleware.SessionIDFromContext(r.Context()), domain.GenerationRequest{
		Description: req.Description,
		StyleHint:   req.Style,
		ColorHint:   req.Color,
		Locale:      middleware.LocaleFromContext(r.Context()),
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, generateResponse{Variants: variants})
}
