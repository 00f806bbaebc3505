package handlers

import (
	"net/http"
)

func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{
		"status": "ok",
		"providers": map[string]bool{
			"openai":    a.Config != nil && a.Config.HasOpenAI(),
			"replicate": a.Config != nil && a.Config.HasReplicate(),
		},
	})
}
