package checkout

// State is the checkout step the session is in.
type State int

const (
	StateNoAddress State = iota
	StateNoPayment
	StateReady
	StateSubmitting
	StateSubmitted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateNoAddress:
		return "no_address"
	case StateNoPayment:
		return "no_payment"
	case StateReady:
		return "ready"
	case StateSubmitting:
		return "submitting"
	case StateSubmitted:
		return "submitted"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// phase tracks submission progress; selection steps are derived.
type phase int

const (
	phaseIdle phase = iota
	phaseSubmitting
	phaseSubmitted
	phaseFailed
)
