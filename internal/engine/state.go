package engine

// State is the engine's position in the questionnaire loop.
type State int

const (
	StateIdle       State = iota // Constructed, nothing fetched yet
	StateLoading                 // A fetch is in flight
	StateDisplaying              // A question is shown and accepts input
	StateSubmitting              // An answer is in flight
	StateFailed                  // The last fetch failed; waiting for an explicit reload
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateDisplaying:
		return "displaying"
	case StateSubmitting:
		return "submitting"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// NoticeLevel classifies a transient notification.
type NoticeLevel int

const (
	NoticeInfo NoticeLevel = iota
	NoticeError
)

// Notice is a transient message for the user. It never blocks input.
type Notice struct {
	Level NoticeLevel
	Text  string
}
