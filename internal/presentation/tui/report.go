package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/pdasim/pkg/domain"
)

// Report writes a markdown summary of an automaton: its tuple, its rules and,
// when given, the verdict of every example.
func Report(bp *domain.Blueprint, def *domain.Definition, results []domain.ExampleResult) string {
	var sb strings.Builder

	title := bp.Title
	if title == "" {
		title = bp.ID
	}
	if title == "" {
		title = "Automaton"
	}
	fmt.Fprintf(&sb, "# %s\n\n", title)
	if bp.Description != "" {
		sb.WriteString(strings.TrimSpace(bp.Description))
		sb.WriteString("\n\n")
	}

	if def != nil {
		sb.WriteString("| | |\n|---|---|\n")
		fmt.Fprintf(&sb, "| States | %s |\n", set(def.States))
		fmt.Fprintf(&sb, "| Input alphabet | %s |\n", set(symbolStrings(def.InputSymbols)))
		fmt.Fprintf(&sb, "| Stack alphabet | %s |\n", set(symbolStrings(def.StackSymbols)))
		fmt.Fprintf(&sb, "| Initial | `%s`, `%s` |\n", def.InitialState, def.InitialStack)
		fmt.Fprintf(&sb, "| Final | %s |\n\n", set(def.FinalStates))

		sb.WriteString("## Rules\n\n")
		for _, t := range def.Transitions {
			fmt.Fprintf(&sb, "- `%s`\n", t)
		}
		sb.WriteString("\n")
	}

	if len(results) > 0 {
		sb.WriteString("## Examples\n\n| input | expect | status | |\n|---|---|---|---|\n")
		for _, r := range results {
			input := r.Input
			if input == "" {
				input = domain.EpsilonGlyph
			}
			verdict := "ok"
			switch {
			case r.Error != "":
				verdict = "error: " + r.Error
			case !r.Passed:
				verdict = "FAIL"
			}
			fmt.Fprintf(&sb, "| `%s` | %s | %s | %s |\n", input, r.Expect, r.Status, verdict)
		}
	}

	return sb.String()
}

func set(items []string) string {
	if len(items) == 0 {
		return "∅"
	}
	return "{" + strings.Join(items, ", ") + "}"
}

func symbolStrings(syms []domain.Symbol) []string {
	out := make([]string, len(syms))
	for i, s := range syms {
		out[i] = s.String()
	}
	return out
}
