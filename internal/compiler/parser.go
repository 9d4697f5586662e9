package compiler

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/aretw0/pdasim/pkg/domain"
)

var (
	// d(state,input,top)=(state,push): states are a lowercase letter plus digits, stack symbols
	// an uppercase letter plus digits, the input one character or nothing.
	ruleRe   = regexp.MustCompile(`d\(([a-z]\d*),(.?),([A-Z]\d*)\)=\(([a-z]\d*),((?:[A-Z]\d*)*|ε)\)`)
	symbolRe = regexp.MustCompile(`[A-Z]\d*`)
	finalsRe = regexp.MustCompile(`^\{(([a-z]\d*)(,[a-z]\d*)*)\}`)
	stateRe  = regexp.MustCompile(`^[a-z]\d*$`)
)

// SyntaxError reports rule text that is not a transition.
type SyntaxError struct {
	Line int
	Text string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: unexpected %q", e.Line, e.Text)
}

// Parser converts user-authored rule text into a Definition.
type Parser struct{}

// NewParser creates a new parser instance.
func NewParser() *Parser {
	return &Parser{}
}

// Parse compiles rules and the final state set into a normalized Definition with initial
// state q0 and initial stack symbol Z0.
func (p *Parser) Parse(rules, finals string) (*domain.Definition, error) {
	transitions, err := p.ParseRules(rules)
	if err != nil {
		return nil, err
	}
	def := &domain.Definition{
		Transitions:  transitions,
		InitialState: domain.DefaultInitialState,
		InitialStack: domain.DefaultInitialStack,
		FinalStates:  ParseFinals(finals),
	}
	norm := def.Normalize()
	if err := norm.Validate(); err != nil {
		return nil, err
	}
	return norm, nil
}

// ParseRules extracts every rule of text in order of appearance. Whitespace other than line
// breaks is ignored, several rules may share a line, and "," ";" or a "#" comment may follow them.
// Anything else fails with a *SyntaxError.
func (p *Parser) ParseRules(text string) ([]domain.Transition, error) {
	var out []domain.Transition
	for i, line := range strings.Split(text, "\n") {
		line = squeeze(line)
		if idx := strings.IndexByte(line, '#'); idx >= 0 {
			line = line[:idx]
		}

		matches := ruleRe.FindAllStringSubmatchIndex(line, -1)
		var residue strings.Builder
		last := 0
		for _, m := range matches {
			residue.WriteString(line[last:m[0]])
			last = m[1]
			out = append(out, transition(line, m))
		}
		residue.WriteString(line[last:])

		if rest := strings.Trim(residue.String(), ",;"); rest != "" {
			return nil, &SyntaxError{Line: i + 1, Text: rest}
		}
	}
	return out, nil
}

func transition(line string, m []int) domain.Transition {
	group := func(n int) string {
		if m[2*n] < 0 {
			return ""
		}
		return line[m[2*n]:m[2*n+1]]
	}
	input := group(2)
	if input == domain.EpsilonGlyph {
		input = ""
	}
	var push []domain.Symbol
	for _, s := range symbolRe.FindAllString(group(5), -1) {
		push = append(push, domain.Symbol(s))
	}
	return domain.Transition{
		From:  group(1),
		Input: domain.Symbol(input),
		Top:   domain.Symbol(group(3)),
		To:    group(4),
		Push:  push,
	}
}

// ParseFinals reads a final state set written as {q1, q2}. Anything else is the empty set.
func ParseFinals(text string) []string {
	m := finalsRe.FindStringSubmatch(squeeze(strings.TrimSpace(text)))
	if m == nil {
		return nil
	}
	return strings.Split(m[1], ",")
}

// squeeze removes whitespace except newlines.
func squeeze(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || !unicode.IsSpace(r) {
			return r
		}
		return -1
	}, s)
}

// Compile is shorthand for NewParser().Parse(rules, finals).
func Compile(rules, finals string) (*domain.Definition, error) {
	return NewParser().Parse(rules, finals)
}

// CompileBlueprint compiles the rules and final states of a blueprint.
// Final entries are either single state names or a {q1, q2} set.
func CompileBlueprint(bp *domain.Blueprint) (*domain.Definition, error) {
	if bp == nil {
		return nil, fmt.Errorf("%w: nil blueprint", domain.ErrInvalidDefinition)
	}
	var finals []string
	for _, f := range bp.Final {
		f = squeeze(strings.TrimSpace(f))
		switch {
		case stateRe.MatchString(f):
			finals = append(finals, f)
		case strings.HasPrefix(f, "{"):
			finals = append(finals, ParseFinals(f)...)
		case f == "":
		default:
			return nil, fmt.Errorf("%w: %q is not a state", domain.ErrInvalidDefinition, f)
		}
	}

	def, err := Compile(strings.Join(bp.Rules, "\n"), "{"+strings.Join(finals, ",")+"}")
	if err != nil {
		return nil, fmt.Errorf("blueprint %q: %w", bp.ID, err)
	}
	return def, nil
}

// FormatRules writes the transitions back in rule notation, one per line.
func FormatRules(transitions []domain.Transition) string {
	var sb strings.Builder
	for _, t := range transitions {
		sb.WriteString(t.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
