package ports

import (
	"context"

	"github.com/aretw0/pdasim/pkg/domain"
)

// DefinitionLoader retrieves authored automata (blueprints) by ID.
// This allows the storage layer (Loam, FS, Memory) to be decoupled.
type DefinitionLoader interface {
	// Load returns the blueprint with the given ID.
	// Returns domain.ErrDefinitionNotFound if there is none.
	Load(ctx context.Context, id string) (*domain.Blueprint, error)

	// List returns the IDs of all available blueprints.
	List(ctx context.Context) ([]string, error)
}

// Watchable defines an interface for loaders that can notify about backend changes.
type Watchable interface {
	// Watch returns a channel that receives the ID of every blueprint that changed.
	Watch(ctx context.Context) (<-chan string, error)
}
