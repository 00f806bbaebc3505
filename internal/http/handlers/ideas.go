package handlers

import (
	"net/http"

	"inova/internal/middleware"
)

type ideasRequest struct {
	UserIdea string `json:"userIdea"`
}

type ideasResponse struct {
	Result string `json:"result"`
}

// IdeasGenerate returns the raw names/slogans/descriptions completion.
func (a *App) IdeasGenerate(w http.ResponseWriter, r *http.Request) {
	var req ideasRequest
	if !a.decode(w, r, &req) {
		return
	}
	result, err := a.Ideas.Ideas(r.Context(), req.UserIdea, middleware.LocaleFromContext(r.Context()))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, ideasResponse{Result: result})
}
