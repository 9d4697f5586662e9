package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/pdasim"
	"github.com/aretw0/pdasim/pkg/domain"
	"github.com/aretw0/pdasim/pkg/simulation"
)

// openSession resumes the stored session id or starts it for bp and input.
// fresh discards a stored session first. bp may be nil only when the session exists.
func openSession(ctx context.Context, eng *pdasim.Engine, id string, bp *domain.Blueprint, input string, fresh bool) (*domain.Snapshot, bool, error) {
	if fresh {
		if err := eng.DeleteSession(ctx, id); err != nil {
			return nil, false, fmt.Errorf("failed to reset session: %w", err)
		}
	}

	snap, err := eng.Session(ctx, id)
	if err == nil {
		return snap, true, nil
	}
	if !errors.Is(err, domain.ErrSessionNotFound) {
		return nil, false, err
	}
	if bp == nil {
		return nil, false, fmt.Errorf("session '%s' does not exist: %w", id, ErrNoBlueprint)
	}

	snap, err = eng.StartSession(ctx, id, bp, input)
	if err != nil {
		return nil, false, err
	}
	return snap, false, nil
}

// recorder mirrors a controller into its stored session.
// A nil recorder records nothing.
type recorder struct {
	eng    *pdasim.Engine
	id     string
	bp     domain.Blueprint
	input  string
	logger *slog.Logger
}

func (r *recorder) record(ctx context.Context, ctrl *simulation.Controller) {
	if r == nil || ctrl == nil {
		return
	}
	snap := domain.NewSnapshot(r.id, r.bp, r.input)
	snap.Steps = ctrl.Steps()
	snap.Status = ctrl.Status()
	snap.Output = ctrl.Output()
	if err := r.eng.Sessions().Save(ctx, r.id, snap); err != nil {
		r.logger.Warn("Failed to save session", "session_id", r.id, "err", err)
	}
}
