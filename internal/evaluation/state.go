package evaluation

// State is a point in the evaluation lifecycle.
type State int

const (
	StateCreated State = iota
	StateLoaded
	StateExtracting
	StateRoleInferred
	StateScored
	StateCompleted
	StateFailed
)

var stateNames = map[State]string{
	StateCreated:      "created",
	StateLoaded:       "loaded",
	StateExtracting:   "extracting",
	StateRoleInferred: "role_inferred",
	StateScored:       "scored",
	StateCompleted:    "completed",
	StateFailed:       "failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Terminal reports whether no further transition can happen.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}
