package tui_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/aretw0/pdasim/internal/presentation/tui"
	"github.com/aretw0/pdasim/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlainPalette(t *testing.T) {
	p := tui.PlainPalette()

	assert.Equal(t, "ACCEPTED", p.Status(domain.StatusAccepted))
	assert.Equal(t, "REJECTED", p.Status(domain.StatusRejected))
	assert.Equal(t, "EXPLORING", p.Status(domain.StatusExploring))
	assert.Equal(t, "tree\n\nREJECTED!!!", p.Output("tree\n\nREJECTED!!!"))
	assert.Equal(t, "still going", p.Output("still going"))
}

func TestReport(t *testing.T) {
	bp := &domain.Blueprint{ID: "anbn", Description: "Balanced."}
	def := (&domain.Definition{
		Transitions: []domain.Transition{
			{From: "q0", Input: "a", Top: "Z0", To: "q0", Push: domain.Symbols("A", "Z0")},
			{From: "q0", Input: "b", Top: "A", To: "q1"},
		},
		FinalStates: []string{"q1"},
	}).Normalize()
	results := []domain.ExampleResult{
		{Example: domain.Example{Input: "ab", Expect: "accept"}, Status: domain.StatusAccepted, Passed: true},
		{Example: domain.Example{Input: "", Expect: "accept"}, Status: domain.StatusRejected},
	}

	md := tui.Report(bp, def, results)

	assert.True(t, strings.HasPrefix(md, "# anbn\n\nBalanced.\n\n"))
	assert.Contains(t, md, "| States | {q0, q1} |")
	assert.Contains(t, md, "| Input alphabet | {a, b} |")
	assert.Contains(t, md, "| Initial | `q0`, `Z0` |")
	assert.Contains(t, md, "- `d(q0,a,Z0)=(q0,AZ0)`")
	assert.Contains(t, md, "- `d(q0,b,A)=(q1,ε)`")
	assert.Contains(t, md, "| `ab` | accept | accepted | ok |")
	assert.Contains(t, md, "| `ε` | accept | rejected | FAIL |")
}

func TestRenderer_RendersMarkdown(t *testing.T) {
	render := tui.NewRenderer()
	out, err := render("# Title\n\nbody")
	require.NoError(t, err)
	assert.Contains(t, out, "Title")
	assert.Contains(t, out, "body")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	tui.PrintBanner(&buf, "1.2.3")
	assert.Contains(t, buf.String(), "v1.2.3")
}
