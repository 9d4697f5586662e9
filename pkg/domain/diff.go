package domain

import "strings"

// SnapshotDiff represents the changes between two snapshots of the same session.
// It is designed to be serialized to JSON for partial updates on the client.
type SnapshotDiff struct {
	// SessionID is always present to identify the target.
	SessionID string `json:"session_id"`

	Status *Status `json:"status,omitempty"`
	Steps  *int    `json:"steps,omitempty"`

	// Appended is the diagram text added since the old snapshot.
	// Output is append-only between resets; a shorter or diverging output sets Reset.
	Appended string `json:"appended,omitempty"`

	// Reset is true when the session was restarted and clients must clear their output.
	Reset bool `json:"reset,omitempty"`
}

// Diff calculates the difference between oldSnap and newSnap.
// If oldSnap is nil, it returns a diff representing the entire newSnap (initial load).
// It returns nil when nothing changed.
func Diff(oldSnap, newSnap *Snapshot) *SnapshotDiff {
	if newSnap == nil {
		return nil
	}

	diff := &SnapshotDiff{
		SessionID: newSnap.SessionID,
	}

	if oldSnap == nil || oldSnap.Status != newSnap.Status {
		diff.Status = &newSnap.Status
	}
	if oldSnap == nil || oldSnap.Steps != newSnap.Steps {
		diff.Steps = &newSnap.Steps
	}

	switch {
	case oldSnap == nil:
		diff.Appended = newSnap.Output
	case strings.HasPrefix(newSnap.Output, oldSnap.Output):
		diff.Appended = newSnap.Output[len(oldSnap.Output):]
	default:
		diff.Reset = true
		diff.Appended = newSnap.Output
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *SnapshotDiff) IsEmpty() bool {
	return d.Status == nil &&
		d.Steps == nil &&
		d.Appended == "" &&
		!d.Reset
}
