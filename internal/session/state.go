package session

import "time"

// Phase is the session lifecycle state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseActive
	PhasePaused
	PhaseComplete
)

// String implements fmt.Stringer.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseActive:
		return "active"
	case PhasePaused:
		return "paused"
	case PhaseComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// State is the full session state. The controller owns the single mutable
// instance; State() hands out snapshots.
type State struct {
	Phase    Phase
	Target   []rune
	Input    []rune
	Language string

	Correct    int
	Incorrect  int
	Keystrokes int
	KeyErrors  map[rune]int

	SnippetsCompleted int

	RemainingSeconds int
	ElapsedSeconds   int
	StartedAt        time.Time

	LiveWPM int
}

func (s State) snapshot() State {
	out := s
	out.Target = append([]rune(nil), s.Target...)
	out.Input = append([]rune(nil), s.Input...)
	out.KeyErrors = make(map[rune]int, len(s.KeyErrors))
	for k, v := range s.KeyErrors {
		out.KeyErrors[k] = v
	}
	return out
}
