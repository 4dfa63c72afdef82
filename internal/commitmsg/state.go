package commitmsg

// State is the stage a generation has reached. Every call starts and ends
// in Idle.
type State int

const (
	Idle State = iota
	BuildingPrompt
	AwaitingProvider
	Validated
	FallbackApplied
	Failed
)

var stateNames = [...]string{
	Idle:             "idle",
	BuildingPrompt:   "building prompt",
	AwaitingProvider: "awaiting provider",
	Validated:        "validated",
	FallbackApplied:  "fallback applied",
	Failed:           "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether s ends a generation attempt.
func (s State) Terminal() bool {
	return s == Validated || s == FallbackApplied || s == Failed
}

// StateFunc observes state transitions.
type StateFunc func(State)

func (f StateFunc) emit(s State) {
	if f != nil {
		f(s)
	}
}
