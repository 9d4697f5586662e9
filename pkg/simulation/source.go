package simulation

import (
	"context"

	"github.com/aretw0/pdasim/pkg/domain"
)

// Setup is everything needed to start a run.
type Setup struct {
	Definition *domain.Definition
	Input      string
}

// Source supplies the Setup of a run. It is consulted every time the controller initializes,
// so an interactive front end can hand over whatever the user has typed by then.
type Source interface {
	Setup(ctx context.Context) (Setup, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context) (Setup, error)

// Setup calls f(ctx).
func (f SourceFunc) Setup(ctx context.Context) (Setup, error) {
	return f(ctx)
}

// Fixed returns a Source that always runs def over input.
func Fixed(def *domain.Definition, input string) Source {
	return SourceFunc(func(context.Context) (Setup, error) {
		return Setup{Definition: def, Input: input}, nil
	})
}
