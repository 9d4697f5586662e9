package domain

// Expectation values for Example.Expect.
const (
	ExpectAccept = "accept"
	ExpectReject = "reject"
)

// Example is a sample input stored next to an automaton, optionally with the expected verdict.
type Example struct {
	Input  string `json:"input" yaml:"input" mapstructure:"input"`
	Expect string `json:"expect,omitempty" yaml:"expect,omitempty" mapstructure:"expect"`
}

// Blueprint is an automaton as authored by a user: rule text and final states,
// before it is compiled into a Definition.
type Blueprint struct {
	ID          string    `json:"id" yaml:"id" mapstructure:"id"`
	Title       string    `json:"title,omitempty" yaml:"title,omitempty" mapstructure:"title"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty" mapstructure:"description"`
	Rules       []string  `json:"rules" yaml:"rules" mapstructure:"rules"`
	Final       []string  `json:"final" yaml:"final" mapstructure:"final"`
	Examples    []Example `json:"examples,omitempty" yaml:"examples,omitempty" mapstructure:"examples"`
}

// ExampleResult is the verdict of running one Example.
type ExampleResult struct {
	Example
	Status Status `json:"status"`
	// Passed is true when the status matches Expect, or when no expectation was given.
	Passed bool   `json:"passed"`
	Error  string `json:"error,omitempty"`
}

// Check compares a terminal status with the expectation.
func (e Example) Check(status Status) bool {
	switch e.Expect {
	case ExpectAccept:
		return status == StatusAccepted
	case ExpectReject:
		return status == StatusRejected
	default:
		return status.Terminal()
	}
}
