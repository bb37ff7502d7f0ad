package syncer

// State is a step of a sync run.
type State int

const (
	StateFetching State = iota
	StateMerging
	StateWriting
	StateConflicted
	StateSucceeded
	StateFailed
)

// String returns a human-readable representation of the state.
func (s State) String() string {
	switch s {
	case StateFetching:
		return "fetching"
	case StateMerging:
		return "merging"
	case StateWriting:
		return "writing"
	case StateConflicted:
		return "conflicted"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition can follow.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed
}
