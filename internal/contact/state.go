package contact

// State is the lifecycle position of a Form.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateInvalid
	StateSubmitting
	StateSuccess
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateInvalid:
		return "invalid"
	case StateSubmitting:
		return "submitting"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Editable reports whether fields may be edited in this state.
func (s State) Editable() bool {
	switch s {
	case StateIdle, StateInvalid, StateSuccess, StateError:
		return true
	}
	return false
}

var transitions = map[State][]State{
	StateIdle:       {StateValidating},
	StateValidating: {StateInvalid, StateSubmitting},
	StateInvalid:    {StateValidating, StateIdle},
	StateSubmitting: {StateSuccess, StateError},
	StateSuccess:    {StateIdle},
	StateError:      {StateValidating, StateIdle},
}

func canTransition(from, to State) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
