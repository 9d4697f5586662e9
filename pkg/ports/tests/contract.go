package tests

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/pdasim/pkg/domain"
	"github.com/aretw0/pdasim/pkg/ports"
)

// DefinitionLoaderContractTest is a reusable test suite that verifies if an adapter complies with ports.DefinitionLoader.
// setupData holds the blueprints the adapter was seeded with, by ID.
func DefinitionLoaderContractTest(t *testing.T, loader ports.DefinitionLoader, setupData map[string]*domain.Blueprint) {
	t.Helper()
	ctx := context.Background()

	t.Run("Load_Success", func(t *testing.T) {
		for id, expected := range setupData {
			bp, err := loader.Load(ctx, id)
			if err != nil {
				t.Fatalf("unexpected error loading %s: %v", id, err)
			}
			if bp.ID != id {
				t.Errorf("id mismatch: got %q, want %q", bp.ID, id)
			}
			if len(bp.Rules) != len(expected.Rules) {
				t.Fatalf("rules mismatch for %s: got %v, want %v", id, bp.Rules, expected.Rules)
			}
			for i := range expected.Rules {
				if bp.Rules[i] != expected.Rules[i] {
					t.Errorf("rule %d of %s: got %q, want %q", i, id, bp.Rules[i], expected.Rules[i])
				}
			}
			if len(bp.Final) != len(expected.Final) {
				t.Errorf("final states mismatch for %s: got %v, want %v", id, bp.Final, expected.Final)
			}
			if len(bp.Examples) != len(expected.Examples) {
				t.Errorf("examples mismatch for %s: got %v, want %v", id, bp.Examples, expected.Examples)
			}
		}
	})

	t.Run("Load_NotFound", func(t *testing.T) {
		_, err := loader.Load(ctx, "non-existent-automaton")
		if !errors.Is(err, domain.ErrDefinitionNotFound) {
			t.Errorf("expected ErrDefinitionNotFound, got %v", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		ids, err := loader.List(ctx)
		if err != nil {
			t.Fatalf("unexpected error listing blueprints: %v", err)
		}

		if len(ids) != len(setupData) {
			t.Errorf("expected %d blueprints, got %d", len(setupData), len(ids))
		}

		lookup := make(map[string]bool)
		for _, id := range ids {
			lookup[id] = true
		}

		for id := range setupData {
			if !lookup[id] {
				t.Errorf("blueprint %s missing from list", id)
			}
		}
	})
}
