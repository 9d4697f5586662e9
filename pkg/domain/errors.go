package domain

import "errors"

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrDefinitionNotFound is returned when a loader has no automaton with the requested ID.
var ErrDefinitionNotFound = errors.New("definition not found")

// ErrInvalidDefinition is returned when a definition cannot be explored (e.g. no initial state).
var ErrInvalidDefinition = errors.New("invalid definition")

// ErrExplorationLimit is returned when a frontier grows past the configured depth or size limit.
// It is a fault, not a rejection: the automaton may still accept beyond the limit.
var ErrExplorationLimit = errors.New("exploration limit exceeded")
