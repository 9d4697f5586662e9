package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/pdasim/pkg/domain"
)

// GraphOverlay contains dynamic state data to visualize on the graph.
type GraphOverlay struct {
	VisitedStates []string
	CurrentState  string
}

type edge struct {
	from, to string
}

// GenerateMermaid produces a Mermaid flowchart of the state diagram of def.
// It applies semantic styling:
// - Initial state: ((Circle))
// - Final state: (((Double circle)))
// - Default: (Rounded)
// Rules between the same pair of states share one edge, one label line per rule,
// written "input, top / push". It also applies overlay styles (Visited/Current) if provided.
func GenerateMermaid(def *domain.Definition, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")
	if def == nil {
		return sb.String()
	}

	for _, state := range States(def) {
		safeID := sanitizeMermaidID(state)

		opener, closer := "(", ")"
		switch {
		case def.IsFinal(state):
			opener, closer = "(((", ")))"
		case state == def.InitialState:
			opener, closer = "((", "))"
		}
		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, state, closer))
	}

	var order []edge
	labels := make(map[edge][]string)
	for _, t := range def.Transitions {
		e := edge{from: t.From, to: t.To}
		if _, ok := labels[e]; !ok {
			order = append(order, e)
		}
		labels[e] = append(labels[e], ruleLabel(t))
	}
	for _, e := range order {
		label := strings.Join(labels[e], "<br/>")
		sb.WriteString(fmt.Sprintf("    %s -- \"%s\" --> %s\n",
			sanitizeMermaidID(e.from), label, sanitizeMermaidID(e.to)))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visitedSet := make(map[string]bool)
		for _, id := range overlay.VisitedStates {
			safeID := sanitizeMermaidID(id)
			if !visitedSet[safeID] && safeID != "" {
				visitedSet[safeID] = true
				sb.WriteString(fmt.Sprintf("    class %s visited;\n", safeID))
			}
		}

		if overlay.CurrentState != "" {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", sanitizeMermaidID(overlay.CurrentState)))
		}
	}

	return sb.String()
}

// States lists every state of def: the initial state first, then in order of
// appearance in the rules, then finals no rule mentions.
func States(def *domain.Definition) []string {
	var states []string
	seen := make(map[string]bool)
	add := func(s string) {
		if s != "" && !seen[s] {
			seen[s] = true
			states = append(states, s)
		}
	}
	add(def.InitialState)
	for _, t := range def.Transitions {
		add(t.From)
		add(t.To)
	}
	for _, f := range def.FinalStates {
		add(f)
	}
	return states
}

func ruleLabel(t domain.Transition) string {
	push := domain.JoinSymbols(t.Push)
	if push == "" {
		push = domain.EpsilonGlyph
	}
	label := fmt.Sprintf("%s, %s / %s", t.Input.String(), t.Top.String(), push)
	return strings.ReplaceAll(label, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
