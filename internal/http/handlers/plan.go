package handlers

import (
	"errors"
	"net/http"

	"reelsmaker/internal/domain"
)

// Client-visible messages of the generate-plan endpoint.
const (
	msgScriptRequired   = "Script is required"
	msgNoScenes         = "Unable to understand the provided script"
	msgNoTemplate       = "No template available"
	msgGenerationFailed = "Unable to generate video at the moment."
)

func (a *App) GeneratePlan(w http.ResponseWriter, r *http.Request) {
	req, err := a.planRequest(r)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	plan, err := a.Planner.Plan(r.Context(), req)
	if err != nil {
		a.planError(w, err)
		return
	}
	a.json(w, http.StatusOK, plan)
}

func (a *App) planError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrEmptyScript):
		a.error(w, http.StatusUnprocessableEntity, "empty_script", msgScriptRequired)
	case errors.Is(err, domain.ErrNoScenes):
		a.error(w, http.StatusUnprocessableEntity, "no_scenes", msgNoScenes)
	case errors.Is(err, domain.ErrInvalidStyle):
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, domain.ErrTemplateNotFound):
		a.error(w, http.StatusNotFound, "not_found", msgNoTemplate)
	default:
		a.Logger.Error().Err(err).Msg("generate plan failed")
		a.error(w, http.StatusInternalServerError, "internal", msgGenerationFailed)
	}
}
