package domain

// Status defines the current mode of a simulation session.
type Status string

const (
	StatusIdle      Status = "idle"      // No exploration in progress
	StatusExploring Status = "exploring" // Frontiers are being produced
	StatusAccepted  Status = "accepted"  // An accepting configuration was found
	StatusRejected  Status = "rejected"  // The frontiers ran out without acceptance
)

// Terminal reports whether further steps are no-ops.
func (s Status) Terminal() bool {
	return s == StatusAccepted || s == StatusRejected
}

// StatusFor maps a terminal exploration outcome onto a session status.
func StatusFor(o Outcome) Status {
	switch o {
	case OutcomeAccepted:
		return StatusAccepted
	case OutcomeRejected:
		return StatusRejected
	default:
		return StatusExploring
	}
}
