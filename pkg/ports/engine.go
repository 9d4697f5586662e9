package ports

import (
	"context"

	"github.com/aretw0/pdasim/pkg/domain"
)

// Simulator is the engine surface used by the outer adapters (HTTP, MCP).
// Blueprints are passed inline or resolved by ID through the engine's loader.
type Simulator interface {
	// Blueprint resolves a blueprint by ID.
	Blueprint(ctx context.Context, id string) (*domain.Blueprint, error)

	// Simulate runs input to a verdict and returns the resulting session without storing it.
	Simulate(ctx context.Context, bp *domain.Blueprint, input string) (*domain.Snapshot, error)

	// Validate runs every example of the blueprint.
	Validate(ctx context.Context, bp *domain.Blueprint) ([]domain.ExampleResult, error)

	// Graph renders the transition diagram as Mermaid, highlighting the states input visits.
	Graph(ctx context.Context, bp *domain.Blueprint, input string) (string, error)

	// StartSession stores a new idle session.
	StartSession(ctx context.Context, sessionID string, bp *domain.Blueprint, input string) (*domain.Snapshot, error)

	// StepSession advances a stored session by count steps.
	StepSession(ctx context.Context, sessionID string, count int) (*domain.Snapshot, error)

	// Session loads a stored session.
	Session(ctx context.Context, sessionID string) (*domain.Snapshot, error)

	// DeleteSession removes a stored session.
	DeleteSession(ctx context.Context, sessionID string) error

	// ListSessions returns the IDs of all stored sessions.
	ListSessions(ctx context.Context) ([]string, error)
}
