package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

const defaultTrendingLimit = 3

func (a *App) ListTemplates(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{"items": a.Templates.List()})
}

func (a *App) TrendingTemplates(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", defaultTrendingLimit)
	a.json(w, http.StatusOK, map[string]any{"items": a.Templates.Trending(limit)})
}

func (a *App) GetTemplate(w http.ResponseWriter, r *http.Request) {
	tpl, ok := a.Templates.Get(chi.URLParam(r, "id"))
	if !ok {
		a.error(w, http.StatusNotFound, "not_found", "template not found")
		return
	}
	a.json(w, http.StatusOK, tpl)
}
