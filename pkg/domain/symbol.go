package domain

import "strings"

// Symbol is an opaque label drawn from an input or stack alphabet.
type Symbol string

// Epsilon is the empty symbol: no input consumed, or nothing pushed.
const Epsilon Symbol = ""

// EpsilonGlyph is the textual spelling of Epsilon accepted by parsers and used in listings.
const EpsilonGlyph = "ε"

// IsEpsilon reports whether s is the empty symbol.
func (s Symbol) IsEpsilon() bool {
	return s == Epsilon
}

// String returns the symbol, spelling Epsilon as "ε".
func (s Symbol) String() string {
	if s == Epsilon {
		return EpsilonGlyph
	}
	return string(s)
}

// Symbols converts plain strings into symbols, dropping nothing.
func Symbols(ss ...string) []Symbol {
	out := make([]Symbol, len(ss))
	for i, s := range ss {
		out[i] = Symbol(s)
	}
	return out
}

// JoinSymbols concatenates symbols without separators, the way they are written in rules.
func JoinSymbols(syms []Symbol) string {
	var sb strings.Builder
	for _, s := range syms {
		sb.WriteString(string(s))
	}
	return sb.String()
}
