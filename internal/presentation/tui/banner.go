package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the ASCII art banner followed by the version.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	// Using a subtle gradient-like color scheme (Indigo/Violet)
	lines := []struct {
		text, color string
	}{
		{"             _           _           ", "#818cf8"},
		{"  _ __   __| | __ _ ___(_)_ __ ___  ", "#a78bfa"},
		{" | '_ \\ / _` |/ _` / __| | '_ ` _ \\ ", "#c084fc"},
		{" | |_) | (_| | (_| \\__ \\ | | | | | |", "#e879f9"},
		{" | .__/ \\__,_|\\__,_|___/_|_| |_| |_|", "#f472b6"},
		{" |_|", "#fb7185"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	if version != "" {
		fmt.Fprintln(w, termenv.String("  v"+version).Faint())
	}
	fmt.Fprintln(w)
}
