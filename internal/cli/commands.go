package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/aretw0/pdasim/internal/presentation/tui"
	"github.com/aretw0/pdasim/pkg/domain"
)

// Simulate runs input to a verdict and writes the tree, or the session snapshot as JSON.
func Simulate(ctx context.Context, env *Env, ref BlueprintRef, input string, asJSON bool, out io.Writer) (*domain.Snapshot, error) {
	bp, err := ResolveBlueprint(ctx, env.Engine, ref)
	if err != nil {
		return nil, err
	}
	snap, err := env.Engine.Simulate(ctx, bp, input)
	if err != nil {
		return nil, err
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return snap, enc.Encode(snap)
	}
	palette := tui.PlainPalette()
	if isTerminal(out) {
		palette = tui.NewPalette()
	}
	fmt.Fprintln(out, palette.Output(snap.Output))
	return snap, nil
}

// Validate runs the examples of every referenced blueprint, or of every stored one
// when refs is empty, and reports whether all of them passed.
func Validate(ctx context.Context, env *Env, refs []BlueprintRef, out io.Writer) (bool, error) {
	if len(refs) == 0 {
		ids, err := env.Engine.Blueprints(ctx)
		if err != nil {
			return false, err
		}
		if len(ids) == 0 {
			return false, fmt.Errorf("no blueprints found in '%s'", env.Config.Dir)
		}
		for _, id := range ids {
			refs = append(refs, BlueprintRef{Ref: id})
		}
	}

	passed := true
	for _, ref := range refs {
		bp, err := ResolveBlueprint(ctx, env.Engine, ref)
		if err != nil {
			return false, err
		}
		results, err := env.Engine.Validate(ctx, bp)
		if err != nil {
			fmt.Fprintf(out, "✗ %s: %v\n", bp.ID, err)
			passed = false
			continue
		}

		ok := 0
		for _, res := range results {
			if res.Passed {
				ok++
			}
		}
		mark := "✓"
		if ok != len(results) {
			mark = "✗"
			passed = false
		}
		fmt.Fprintf(out, "%s %s: %d/%d examples passed\n", mark, bp.ID, ok, len(results))
		for _, res := range results {
			if res.Passed {
				continue
			}
			if res.Error != "" {
				fmt.Fprintf(out, "    %q: %s\n", res.Input, res.Error)
				continue
			}
			fmt.Fprintf(out, "    %q: expected %s, got %s\n", res.Input, res.Expect, res.Status)
		}
	}
	return passed, nil
}

// Inspect writes a Markdown report of the blueprint, rendered for the terminal when render is set.
func Inspect(ctx context.Context, env *Env, ref BlueprintRef, render bool, out io.Writer) error {
	bp, err := ResolveBlueprint(ctx, env.Engine, ref)
	if err != nil {
		return err
	}
	def, err := env.Engine.Compile(bp)
	if err != nil {
		return err
	}
	results, err := env.Engine.Validate(ctx, bp)
	if err != nil {
		return err
	}

	report := tui.Report(bp, def, results)
	if render {
		if rendered, err := tui.NewRenderer()(report); err == nil {
			report = rendered
		}
	}
	_, err = io.WriteString(out, report)
	return err
}

// Graph writes the Mermaid transition diagram, highlighting the run of input if given.
func Graph(ctx context.Context, env *Env, ref BlueprintRef, input string, out io.Writer) error {
	bp, err := ResolveBlueprint(ctx, env.Engine, ref)
	if err != nil {
		return err
	}
	diagram, err := env.Engine.Graph(ctx, bp, input)
	if err != nil {
		return err
	}
	_, err = io.WriteString(out, diagram)
	return err
}
