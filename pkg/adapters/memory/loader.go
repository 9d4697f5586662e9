package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/pdasim/pkg/domain"
)

// Loader implements ports.DefinitionLoader using an in-memory map.
type Loader struct {
	mu         sync.RWMutex
	blueprints map[string]*domain.Blueprint
}

// NewLoader creates a loader holding the given blueprints.
func NewLoader(blueprints ...*domain.Blueprint) (*Loader, error) {
	l := &Loader{blueprints: make(map[string]*domain.Blueprint)}
	for _, bp := range blueprints {
		if err := l.Add(bp); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Add stores bp, replacing any blueprint with the same ID.
func (l *Loader) Add(bp *domain.Blueprint) error {
	if bp == nil || bp.ID == "" {
		return fmt.Errorf("blueprint missing ID")
	}
	c := cloneBlueprint(bp)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.blueprints[bp.ID] = c
	return nil
}

// Load retrieves a blueprint by ID.
func (l *Loader) Load(ctx context.Context, id string) (*domain.Blueprint, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	bp, ok := l.blueprints[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrDefinitionNotFound, id)
	}
	return cloneBlueprint(bp), nil
}

// List returns all available IDs.
func (l *Loader) List(ctx context.Context) ([]string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	keys := make([]string, 0, len(l.blueprints))
	for k := range l.blueprints {
		keys = append(keys, k)
	}
	sort.Strings(keys) // Deterministic order
	return keys, nil
}

func cloneBlueprint(bp *domain.Blueprint) *domain.Blueprint {
	c := *bp
	c.Rules = append([]string(nil), bp.Rules...)
	c.Final = append([]string(nil), bp.Final...)
	c.Examples = append([]domain.Example(nil), bp.Examples...)
	return &c
}
