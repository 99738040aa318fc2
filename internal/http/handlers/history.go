package handlers

import (
	"net/http"

	"reelsmaker/internal/domain"
	"reelsmaker/internal/history"
)

func (a *App) ListHistory(w http.ResponseWriter, r *http.Request) {
	userID := a.currentUserID(r)
	if userID == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "missing user context")
		return
	}
	if a.History == nil {
		a.error(w, http.StatusServiceUnavailable, "unavailable", "history is not configured")
		return
	}
	items, err := a.History.ListByUser(r.Context(), userID, queryInt(r, "limit", history.DefaultListLimit))
	if err != nil {
		a.Logger.Error().Err(err).Str("user_id", userID).Msg("list history failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load history")
		return
	}
	if items == nil {
		items = []domain.GenerationRecord{}
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}
