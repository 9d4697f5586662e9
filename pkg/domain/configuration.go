package domain

import "unicode/utf8"

// RootParentID is the parent id carried by the initial configuration.
const RootParentID = -1

// Configuration is an immutable snapshot of one NPDA run plus its place in the exploration tree.
type Configuration struct {
	// ID is assigned at creation, monotonically increasing and never reused.
	ID int `json:"id"`
	// ParentID references the configuration of the previous frontier this one was derived from.
	ParentID int `json:"parent_id"`

	State     string `json:"state"`
	Remaining string `json:"remaining"`
	Stack     Stack  `json:"stack"`
}

// NextInput returns the first unread input symbol. ok is false once the input is exhausted.
func (c Configuration) NextInput() (sym Symbol, rest string, ok bool) {
	if c.Remaining == "" {
		return Epsilon, "", false
	}
	r, size := utf8.DecodeRuneInString(c.Remaining)
	return Symbol(string(r)), c.Remaining[size:], true
}

// ContentKey identifies the configuration by content (state, remaining input, stack),
// ignoring ids. Content-equal configurations share a key.
func (c Configuration) ContentKey() string {
	return c.State + "\x1e" + c.Remaining + "\x1e" + c.Stack.Key()
}

// IsAccepting reports acceptance by final state: a final state with the input fully read.
func (c Configuration) IsAccepting(def *Definition) bool {
	return c.Remaining == "" && def.IsFinal(c.State)
}

// DisplayFields returns the three labels shown inside a tree node.
func (c Configuration) DisplayFields() []string {
	return []string{
		"S:" + c.State,
		"V:" + c.Remaining,
		"Z:" + c.Stack.String(),
	}
}
