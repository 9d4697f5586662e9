package domain

import "time"

// Snapshot is the persisted view of a simulation session.
// Exploration is deterministic, so replaying Steps steps over Blueprint and Input
// reconstructs the session exactly; Output is kept for inspection without replay.
type Snapshot struct {
	SessionID string    `json:"session_id"`
	Blueprint Blueprint `json:"blueprint"`
	Input     string    `json:"input"`
	Steps     int       `json:"steps"`
	Status    Status    `json:"status"`
	Output    string    `json:"output,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSnapshot creates an idle session for blueprint and input.
func NewSnapshot(sessionID string, bp Blueprint, input string) *Snapshot {
	return &Snapshot{
		SessionID: sessionID,
		Blueprint: bp,
		Input:     input,
		Status:    StatusIdle,
		UpdatedAt: time.Now().UTC(),
	}
}

// Clone returns a deep copy, safe to hand out from in-memory stores.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	c := *s
	c.Blueprint.Rules = append([]string(nil), s.Blueprint.Rules...)
	c.Blueprint.Final = append([]string(nil), s.Blueprint.Final...)
	c.Blueprint.Examples = append([]Example(nil), s.Blueprint.Examples...)
	return &c
}
