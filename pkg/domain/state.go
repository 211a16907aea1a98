package domain

// SimulationState is the lifecycle phase of a simulation manager.
// Transitions are strictly linear: Idle -> Provisioned -> Randomized -> Running.
type SimulationState int

const (
	StateIdle        SimulationState = iota // Constructed, nothing sampled yet
	StateProvisioned                        // Identities selected and funded
	StateRandomized                         // Action sequence generated
	StateRunning                            // Action sequence being executed
)

func (s SimulationState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateProvisioned:
		return "provisioned"
	case StateRandomized:
		return "randomized"
	case StateRunning:
		return "running"
	default:
		return "unknown"
	}
}

// Next returns the state that follows s, and false if s is terminal.
func (s SimulationState) Next() (SimulationState, bool) {
	if s < StateIdle || s >= StateRunning {
		return s, false
	}
	return s + 1, true
}
