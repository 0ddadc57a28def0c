package pipeline

// State is the lifecycle position of a run. States only move forward.
type State int

const (
	StateNotOpened State = iota
	StateSourceOpen
	StateSourceAndSinkOpen
	StateCopying
	StateDone
	StateFailed
)

var stateNames = [...]string{
	StateNotOpened:         "not_opened",
	StateSourceOpen:        "source_open",
	StateSourceAndSinkOpen: "source_and_sink_open",
	StateCopying:           "copying",
	StateDone:              "done",
	StateFailed:            "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}
