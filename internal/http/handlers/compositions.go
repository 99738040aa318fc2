package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"reelsmaker/internal/composer"
	"reelsmaker/internal/domain"
	"reelsmaker/pkg/zip"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsPongWait     = 60 * time.Second
	wsPingPeriod   = wsPongWait * 9 / 10
)

func (a *App) CreateComposition(w http.ResponseWriter, r *http.Request) {
	if a.Compositions == nil {
		a.error(w, http.StatusServiceUnavailable, "unavailable", "compositions are not enabled")
		return
	}
	req, err := a.planRequest(r)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	st, err := a.Compositions.Start(composer.Request{Plan: req, UserID: a.currentUserID(r)})
	if err != nil {
		a.compositionError(w, err)
		return
	}
	a.json(w, http.StatusAccepted, st)
}

func (a *App) GetComposition(w http.ResponseWriter, r *http.Request) {
	st, ok := a.lookupComposition(w, r)
	if !ok {
		return
	}
	a.json(w, http.StatusOK, st)
}

func (a *App) DeleteComposition(w http.ResponseWriter, r *http.Request) {
	if a.Compositions == nil {
		a.error(w, http.StatusServiceUnavailable, "unavailable", "compositions are not enabled")
		return
	}
	if err := a.Compositions.Delete(chi.URLParam(r, "id")); err != nil {
		a.compositionError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) CompositionVideo(w http.ResponseWriter, r *http.Request) {
	a.serveResult(w, r, func(res *composer.Result) domain.Asset { return res.Video })
}

func (a *App) CompositionThumbnail(w http.ResponseWriter, r *http.Request) {
	a.serveResult(w, r, func(res *composer.Result) domain.Asset { return res.Thumbnail })
}

// CompositionBundle downloads a ready reel as a zip holding the video, its
// thumbnail, the plan and a publishing note.
func (a *App) CompositionBundle(w http.ResponseWriter, r *http.Request) {
	st, ok := a.lookupComposition(w, r)
	if !ok {
		return
	}
	if st.Status != domain.StatusReady || st.Result == nil {
		a.error(w, http.StatusConflict, "not_ready", "composition is not ready")
		return
	}
	for _, asset := range []domain.Asset{st.Result.Video, st.Result.Thumbnail} {
		if _, err := os.Stat(asset.Path); err != nil {
			a.error(w, http.StatusGone, "gone", "composition output was released")
			return
		}
	}
	entries := []zip.Entry{
		{Name: "reel" + filepath.Ext(st.Result.Video.Path), Path: st.Result.Video.Path},
		{Name: "thumbnail" + filepath.Ext(st.Result.Thumbnail.Path), Path: st.Result.Thumbnail.Path},
	}
	if st.Plan != nil {
		plan, err := json.MarshalIndent(st.Plan, "", "  ")
		if err != nil {
			a.error(w, http.StatusInternalServerError, "internal", "failed to encode plan")
			return
		}
		entries = append(entries,
			zip.Entry{Name: "plan.json", Data: plan},
			zip.Entry{Name: "publishing.txt", Data: []byte(publishingNote(st.Plan))},
		)
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="reel-%s.zip"`, st.ID))
	if err := zip.WriteBundle(w, entries); err != nil {
		// headers are gone, the client sees a truncated archive
		a.Logger.Error().Err(err).Str("composition", st.ID).Msg("bundle write failed")
	}
}

func publishingNote(plan *domain.GenerationPlan) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hook: %s\n", plan.Timeline.Hook)
	fmt.Fprintf(&b, "Caption: %s\n", plan.Guidance.Caption)
	fmt.Fprintf(&b, "Description: %s\n", plan.Guidance.Description)
	fmt.Fprintf(&b, "Best time to post: %s\n", plan.Guidance.PostingTime)
	fmt.Fprintf(&b, "Call to action: %s\n", plan.Timeline.CallToAction)
	if len(plan.Timeline.Hashtags) > 0 {
		fmt.Fprintf(&b, "Hashtags: %s\n", strings.Join(plan.Timeline.Hashtags, " "))
	}
	return b.String()
}

// CompositionEvents streams every JobState of a composition over a websocket
// and closes the socket once the job is terminal.
func (a *App) CompositionEvents(w http.ResponseWriter, r *http.Request) {
	if a.Compositions == nil {
		a.error(w, http.StatusServiceUnavailable, "unavailable", "compositions are not enabled")
		return
	}
	current, updates, cancel, err := a.Compositions.Subscribe(chi.URLParam(r, "id"))
	if err != nil {
		a.compositionError(w, err)
		return
	}
	defer cancel()

	conn, err := a.upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.Logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	gone := make(chan struct{})
	go func() {
		defer close(gone)
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongWait))
		})
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	send := func(st composer.JobState) bool {
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		return conn.WriteJSON(st) == nil
	}
	if !send(current) {
		return
	}
	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()
	for {
		select {
		case st, ok := <-updates:
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done"),
					time.Now().Add(wsWriteTimeout))
				return
			}
			if !send(st) {
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteTimeout)); err != nil {
				return
			}
		case <-gone:
			return
		case <-r.Context().Done():
			return
		}
	}
}

func (a *App) lookupComposition(w http.ResponseWriter, r *http.Request) (composer.JobState, bool) {
	if a.Compositions == nil {
		a.error(w, http.StatusServiceUnavailable, "unavailable", "compositions are not enabled")
		return composer.JobState{}, false
	}
	st, err := a.Compositions.Get(chi.URLParam(r, "id"))
	if err != nil {
		a.compositionError(w, err)
		return composer.JobState{}, false
	}
	return st, true
}

func (a *App) serveResult(w http.ResponseWriter, r *http.Request, pick func(*composer.Result) domain.Asset) {
	st, ok := a.lookupComposition(w, r)
	if !ok {
		return
	}
	if st.Status != domain.StatusReady || st.Result == nil {
		a.error(w, http.StatusConflict, "not_ready", "composition is not ready")
		return
	}
	asset := pick(st.Result)
	f, err := os.Open(asset.Path)
	if err != nil {
		a.error(w, http.StatusGone, "gone", "composition output was released")
		return
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to read composition output")
		return
	}
	w.Header().Set("Content-Type", asset.MIME)
	http.ServeContent(w, r, filepath.Base(asset.Path), info.ModTime(), f)
}

func (a *App) compositionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrEmptyScript):
		a.error(w, http.StatusUnprocessableEntity, "empty_script", msgScriptRequired)
	case errors.Is(err, domain.ErrCaptureUnsupported):
		a.error(w, http.StatusServiceUnavailable, "capture_unsupported", "video capture is not available on this server")
	case errors.Is(err, composer.ErrCapacity):
		a.error(w, http.StatusTooManyRequests, "busy", "too many compositions in progress, try again shortly")
	case errors.Is(err, composer.ErrUnknownJob):
		a.error(w, http.StatusNotFound, "not_found", "composition not found")
	case errors.Is(err, composer.ErrJobInFlight):
		a.error(w, http.StatusConflict, "in_flight", "composition is still running")
	default:
		a.Logger.Error().Err(err).Msg("composition request failed")
		a.error(w, http.StatusInternalServerError, "internal", composer.FailureMessage)
	}
}
