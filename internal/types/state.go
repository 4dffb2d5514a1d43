package types

// Enum values for Stake State
type StakeState string

const (
	StateActive StakeState = "ACTIVE"
	StateClosed StakeState = "CLOSED"
)

func (s StakeState) String() string {
	return string(s)
}

// QualifiedStatesForSettlement returns the states in which a stake may
// accrue points. Settlement against any other state fails.
func QualifiedStatesForSettlement() []StakeState {
	return []StakeState{StateActive}
}

// QualifiedStatesForClosure returns the states from which a stake may
// transition to CLOSED. CLOSED is terminal; there is no path out of it.
func QualifiedStatesForClosure() []StakeState {
	return []StakeState{StateActive}
}
