package domain

// Outcome tells what one exploration round produced.
type Outcome int

const (
	// OutcomeFrontier means a new frontier is available for inspection.
	OutcomeFrontier Outcome = iota
	// OutcomeAccepted means some configuration of the last frontier is accepting.
	OutcomeAccepted
	// OutcomeRejected means a round produced no configurations and nothing was accepted.
	OutcomeRejected
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFrontier:
		return "frontier"
	case OutcomeAccepted:
		return "accepted"
	case OutcomeRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Result is returned by every exploration round.
type Result struct {
	Outcome Outcome
	// Frontier is set when Outcome is OutcomeFrontier.
	Frontier *Frontier
	// Accepting is the first accepting configuration when Outcome is OutcomeAccepted.
	Accepting *Configuration
	// Depth is the number of expansion rounds performed so far.
	Depth int
}

// Terminal reports whether no further rounds will be produced.
func (r Result) Terminal() bool {
	return r.Outcome == OutcomeAccepted || r.Outcome == OutcomeRejected
}
