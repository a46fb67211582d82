// Package tui provides the Bubble Tea flashcard interface.
package tui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// wrapLine breaks a string into lines no wider than width terminal cells.
// Hanzi take two cells; breaking happens at spaces when possible.
func wrapLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	var out strings.Builder
	var line strings.Builder
	lineWidth := 0
	lastSpace := -1 // byte offset in line

	flush := func(upto int) {
		text := line.String()
		if upto >= 0 && upto <= len(text) {
			out.WriteString(strings.TrimRight(text[:upto], " "))
			rest := strings.TrimLeft(text[upto:], " ")
			line.Reset()
			line.WriteString(rest)
		} else {
			out.WriteString(text)
			line.Reset()
		}
		out.WriteByte('\n')
		lineWidth = runewidth.StringWidth(line.String())
		lastSpace = strings.LastIndexByte(line.String(), ' ')
	}

	for _, r := range s {
		if r == '\n' {
			flush(-1)
			continue
		}
		w := runewidth.RuneWidth(r)
		if lineWidth+w > width && line.Len() > 0 {
			flush(lastSpace)
		}
		if r == ' ' {
			lastSpace = line.Len()
		}
		line.WriteRune(r)
		lineWidth += w
	}
	out.WriteString(line.String())
	return out.String()
}
