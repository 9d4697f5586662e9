package mcp

import (
	"errors"
	"fmt"

	"github.com/aretw0/pdasim/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

var errMissingBlueprint = errors.New("blueprint_id or rules is required")

// BlueprintArgs names a stored blueprint or carries an inline one.
type BlueprintArgs struct {
	BlueprintID string           `mapstructure:"blueprint_id"`
	Rules       []string         `mapstructure:"rules"`
	Final       []string         `mapstructure:"final"`
	Examples    []domain.Example `mapstructure:"examples"`
}

// SimulateArgs are the arguments of the simulate and export_graph tools.
type SimulateArgs struct {
	BlueprintArgs `mapstructure:",squash"`
	Input         string `mapstructure:"input"`
}

// SessionArgs are the arguments of the session tools.
type SessionArgs struct {
	SimulateArgs `mapstructure:",squash"`
	SessionID    string `mapstructure:"session_id"`
	Count        int    `mapstructure:"count"`
}

// decodeArgs decodes raw tool arguments into out.
// Scalars are weakly converted, so a single rule string is accepted where a list is expected.
func decodeArgs(raw map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		ErrorUnused:      false,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(raw); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

// inline reports whether the arguments carry their own rules.
func (a BlueprintArgs) inline() bool {
	return len(a.Rules) > 0
}

func (a BlueprintArgs) blueprint() *domain.Blueprint {
	return &domain.Blueprint{
		ID:       a.BlueprintID,
		Rules:    a.Rules,
		Final:    a.Final,
		Examples: a.Examples,
	}
}
