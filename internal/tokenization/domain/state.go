package domain

// State is the orchestrator's position in an attempt.
type State int32

const (
	StateIdle State = iota
	StateValidating
	StateKeyAcquisition
	StateEncrypting
	StateSubmitting
	StateSucceeded
	StateFailed
	StateAbandoned
)

var stateNames = map[State]string{
	StateIdle:           "idle",
	StateValidating:     "validating",
	StateKeyAcquisition: "key_acquisition",
	StateEncrypting:     "encrypting",
	StateSubmitting:     "submitting",
	StateSucceeded:      "succeeded",
	StateFailed:         "failed",
	StateAbandoned:      "abandoned",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// IsResolved reports whether the attempt has reached a terminal state.
func (s State) IsResolved() bool {
	return s == StateSucceeded || s == StateFailed || s == StateAbandoned
}

// FailureKind is the error kind a failure during this state is classified as when the
// failing code did not classify it itself (for example, a recovered panic).
func (s State) FailureKind() ErrorKind {
	switch s {
	case StateValidating:
		return KindUpstreamValidation
	case StateKeyAcquisition:
		return KindSessionAcquisition
	case StateEncrypting:
		return KindEncryption
	case StateSubmitting:
		return KindProtocol
	default:
		return KindUnknown
	}
}

// Sentinel returns the sentinel error matching FailureKind.
func (s State) Sentinel() error {
	return s.FailureKind().Sentinel()
}
