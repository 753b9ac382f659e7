package status

// State is the requested/observed playback state.
//
// The state machine has three states with the following transitions:
//
//	┌──────────┐   setState(Playing)   ┌──────────┐
//	│  Stopped │ ─────────────────────▶│  Playing │
//	└──────────┘   (async: load,       └──────────┘
//	  ▲   │         prepare, start)         │ ▲
//	  │   │ setState(Paused)       Paused   │ │ Playing
//	  │   │ (async, first frame)            ▼ │
//	  │   │                            ┌──────────┐
//	  │   └───────────────────────────▶│  Paused  │
//	  │                                └──────────┘
//	  └──── setState(Stopped), natural end, media error
//
// Transitions out of Stopped settle asynchronously. Requests are not queued:
// a Playing/Paused request issued while such a transition is settling is
// dropped. Stopped is always honored immediately.
type State int8

const (
	Stopped State = iota
	Playing
	Paused
)

// String returns the state name for debugging.
func (s State) String() string {
	switch s {
	case Stopped:
		return "Stopped"
	case Playing:
		return "Playing"
	case Paused:
		return "Paused"
	default:
		return "Unknown"
	}
}

// IsActive returns true if a pipeline is running (Playing or Paused).
func (s State) IsActive() bool {
	return s == Playing || s == Paused
}

// CanPause returns true if the state allows pausing.
func (s State) CanPause() bool {
	return s == Playing
}

// CanResume returns true if the state allows resuming.
func (s State) CanResume() bool {
	return s == Paused
}
