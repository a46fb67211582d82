package tui

import (
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
)

func TestWrapLineASCII(t *testing.T) {
	got := wrapLine("one two three four", 9)
	want := "one two\nthree\nfour"
	if got != want {
		t.Fatalf("wrapLine = %q, want %q", got, want)
	}
}

func TestWrapLineWideRunes(t *testing.T) {
	// Each hanzi is two cells; four of them exceed width 6.
	got := wrapLine("你好你们", 6)
	lines := strings.Split(got, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", got)
	}
	for _, line := range lines {
		if runewidth.StringWidth(line) > 6 {
			t.Fatalf("line %q exceeds width", line)
		}
	}
}

func TestWrapLineNoWidth(t *testing.T) {
	if got := wrapLine("abc", 0); got != "abc" {
		t.Fatalf("expected passthrough, got %q", got)
	}
}

func TestWrapLineKeepsNewlines(t *testing.T) {
	got := wrapLine("a\nb", 10)
	if got != "a\nb" {
		t.Fatalf("unexpected output: %q", got)
	}
}
