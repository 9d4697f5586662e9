package runtime

import (
	"context"
	"time"

	"github.com/aretw0/pdasim/pkg/domain"
)

func (e *Explorer) emitFrontier(ctx context.Context, evt *domain.FrontierEvent) {
	if e.hooks.OnFrontier == nil {
		return
	}
	evt.EventBase = domain.EventBase{Timestamp: time.Now(), Type: domain.EventFrontier}
	e.hooks.OnFrontier(ctx, evt)
}

func (e *Explorer) emitOutcome(ctx context.Context, evt *domain.OutcomeEvent) {
	if e.hooks.OnOutcome == nil {
		return
	}
	evt.EventBase = domain.EventBase{Timestamp: time.Now(), Type: domain.EventOutcome}
	e.hooks.OnOutcome(ctx, evt)
}
