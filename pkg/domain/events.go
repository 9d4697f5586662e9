package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventFrontier EventType = "frontier"
	EventOutcome  EventType = "outcome"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// FrontierEvent is emitted every time the explorer yields a frontier.
type FrontierEvent struct {
	EventBase
	Depth int `json:"depth"`
	Size  int `json:"size"`
	// Expanded counts the configurations of the previous frontier that had at least one move.
	Expanded int `json:"expanded"`
	// Pruned counts dead ends: configurations with an empty stack or no applicable move.
	Pruned int `json:"pruned"`
	// Merged counts expansions dropped because a content-equal configuration was already in the frontier.
	Merged int `json:"merged"`
}

// OutcomeEvent is emitted once, when the explorer reaches Accepted or Rejected.
type OutcomeEvent struct {
	EventBase
	Outcome   Outcome        `json:"outcome"`
	Depth     int            `json:"depth"`
	Accepting *Configuration `json:"accepting,omitempty"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnFrontier func(context.Context, *FrontierEvent)
	OnOutcome  func(context.Context, *OutcomeEvent)
}
