package domain

// CompositionStatus enumerates composition job lifecycle states.
type CompositionStatus string

const (
	StatusIdle      CompositionStatus = "idle"
	StatusPlanning  CompositionStatus = "planning"
	StatusRendering CompositionStatus = "rendering"
	StatusUploading CompositionStatus = "uploading"
	StatusReady     CompositionStatus = "ready"
	StatusError     CompositionStatus = "error"
)

// Terminal reports whether no further transition is possible without a reset.
func (s CompositionStatus) Terminal() bool {
	return s == StatusReady || s == StatusError
}

// InFlight reports whether a job in this state is still doing work.
func (s CompositionStatus) InFlight() bool {
	return s == StatusPlanning || s == StatusRendering || s == StatusUploading
}

var compositionTransitions = map[CompositionStatus][]CompositionStatus{
	StatusIdle:      {StatusPlanning},
	StatusPlanning:  {StatusRendering, StatusError},
	StatusRendering: {StatusUploading, StatusReady, StatusError},
	StatusUploading: {StatusReady, StatusError},
}

// CanTransition reports whether moving from s to next is a legal lifecycle step.
func (s CompositionStatus) CanTransition(next CompositionStatus) bool {
	for _, allowed := range compositionTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
