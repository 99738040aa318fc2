package composer

import (
	"errors"
	"os"

	"reelsmaker/internal/domain"
)

// ErrJobInFlight is returned when a session is asked to start or reset while
// a job is still running.
var ErrJobInFlight = errors.New("composer: a job is already in flight")

// FailureMessage is the only error text a job exposes to users.
const FailureMessage = "We could not generate this reel. Try adjusting the prompt."

// Progress checkpoints of a job; rendering fills the span between
// ProgressPlanned and ProgressPlanned+renderSpan.
const (
	ProgressPlanning = 0.05
	ProgressPlanned  = 0.2
	renderSpan       = 0.6
	ProgressRecorded = 0.95
)

// Result is what a ready job exposes.
type Result struct {
	Video     domain.Asset `json:"video"`
	Thumbnail domain.Asset `json:"thumbnail"`
	// VideoURL is set when the reel was persisted to storage.
	VideoURL   string  `json:"videoUrl,omitempty"`
	DurationMs float64 `json:"durationMs"`

	dir string
}

// Release deletes the files backing the result.
func (r *Result) Release() error {
	if r == nil || r.dir == "" {
		return nil
	}
	return os.RemoveAll(r.dir)
}

// JobState is an immutable snapshot of a composition job.
type JobState struct {
	ID       string                   `json:"id"`
	Status   domain.CompositionStatus `json:"status"`
	Progress float64                  `json:"progress"`
	Plan     *domain.GenerationPlan   `json:"plan,omitempty"`
	Result   *Result                  `json:"result,omitempty"`
	Error    string                   `json:"error,omitempty"`
}

// with returns a copy moved to status. Illegal transitions leave the state
// unchanged and report false.
func (s JobState) with(status domain.CompositionStatus, progress float64) (JobState, bool) {
	if s.Status != status && !s.Status.CanTransition(status) {
		return s, false
	}
	s.Status = status
	if progress > s.Progress {
		s.Progress = progress
	}
	return s, true
}

// Observer receives every state change of a job.
type Observer func(JobState)
