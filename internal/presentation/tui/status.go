package tui

import (
	"strings"

	"github.com/aretw0/pdasim/pkg/domain"
	"github.com/muesli/termenv"
)

// Palette colors terminal output for one color profile.
type Palette struct {
	profile termenv.Profile
}

// NewPalette detects the color profile of stdout.
func NewPalette() Palette {
	return Palette{profile: termenv.ColorProfile()}
}

// PlainPalette never emits escape sequences.
func PlainPalette() Palette {
	return Palette{profile: termenv.Ascii}
}

// markerEmphasis follows the status word in the terminal marker of a simulation output.
const markerEmphasis = "!!!"

// Status renders a status word, green for accepted and red for rejected.
func (p Palette) Status(s domain.Status) string {
	return p.paint(s, strings.ToUpper(string(s)))
}

func (p Palette) paint(s domain.Status, word string) string {
	switch s {
	case domain.StatusAccepted:
		return p.profile.String(word).Foreground(p.profile.Color("#22c55e")).Bold().String()
	case domain.StatusRejected:
		return p.profile.String(word).Foreground(p.profile.Color("#ef4444")).Bold().String()
	default:
		return p.profile.String(word).Foreground(p.profile.Color("#94a3b8")).String()
	}
}

// Output colors the terminal marker at the end of a simulation output, if any.
func (p Palette) Output(out string) string {
	for _, s := range []domain.Status{domain.StatusAccepted, domain.StatusRejected} {
		marker := strings.ToUpper(string(s)) + markerEmphasis
		if strings.HasSuffix(out, marker) {
			return strings.TrimSuffix(out, marker) + p.paint(s, marker)
		}
	}
	return out
}

// Hint renders secondary text such as key bindings.
func (p Palette) Hint(text string) string {
	return p.profile.String(text).Faint().String()
}
