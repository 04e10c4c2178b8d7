package tui

import (
	"strings"
	"testing"
)

func TestBuildStyledRunesCursor(t *testing.T) {
	target := []rune("ab")
	input := []rune("a")
	cursorIndex := len(input)

	runes := buildStyledRunes(target, input, cursorIndex)
	if len(runes) != 2 {
		t.Fatalf("expected 2 runes, got %d", len(runes))
	}
	if runes[0].s != correctStyle.Render("a") {
		t.Fatalf("expected correct style for first rune")
	}
	if runes[1].s != cursorStyle.Render("b") {
		t.Fatalf("expected cursor style for second rune")
	}
}

func TestBuildStyledRunesKeepsTargetOnMistype(t *testing.T) {
	target := []rune("ab")
	input := []rune("ax")
	cursorIndex := len(input)

	runes := buildStyledRunes(target, input, cursorIndex)
	if len(runes) != 2 {
		t.Fatalf("expected 2 runes, got %d", len(runes))
	}
	if runes[0].s != correctStyle.Render("a") {
		t.Fatalf("expected correct style for first rune")
	}
	if runes[1].s != incorrectStyle.Render("b") {
		t.Fatalf("expected incorrect style for second rune")
	}
}

func TestBuildStyledRunesWordHighlighting(t *testing.T) {
	target := []rune("one two")
	input := []rune("o")
	cursorIndex := len(input)

	runes := buildStyledRunes(target, input, cursorIndex)
	if runes[0].s != correctStyle.Render("o") {
		t.Fatalf("expected correct style for typed rune")
	}
	if runes[1].s != currentWordStyle.Render("n") {
		t.Fatalf("expected current word style for untyped in current word")
	}
	if runes[4].s != pendingStyle.Render("t") {
		t.Fatalf("expected pending style for next word")
	}
}

func TestBuildStyledRunesWrongSpaceDot(t *testing.T) {
	target := []rune("a b")
	input := []rune("ax")
	cursorIndex := len(input)

	runes := buildStyledRunes(target, input, cursorIndex)
	if len(runes) != 3 {
		t.Fatalf("expected 3 runes, got %d", len(runes))
	}
	if runes[1].s != incorrectStyle.Render("•") {
		t.Fatalf("expected red dot for wrong space")
	}
}

func TestBuildStyledRunesNewlineGlyph(t *testing.T) {
	target := []rune("a\nb")
	input := []rune("a\n")
	cursorIndex := len(input)

	runes := buildStyledRunes(target, input, cursorIndex)
	if len(runes) != 3 {
		t.Fatalf("expected 3 runes, got %d", len(runes))
	}
	if !runes[1].isNewline {
		t.Fatalf("expected newline flag on second rune")
	}
	if runes[1].s != correctStyle.Render("↵") {
		t.Fatalf("expected correctly typed newline rendered as glyph")
	}
}

func TestBuildStyledRunesWrongNewline(t *testing.T) {
	target := []rune("a\nb")
	input := []rune("ax")

	runes := buildStyledRunes(target, input, len(input))
	if runes[1].s != incorrectStyle.Render("•") {
		t.Fatalf("expected red dot for mistyped newline")
	}
}

func TestWrapStyledRunesBreaksAtNewline(t *testing.T) {
	runes := buildStyledRunes([]rune("ab\ncd"), nil, 0)
	out := wrapStyledRunes(runes, 40)
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), out)
	}
}

func TestWrapStyledRunesBreaksAtLastSpace(t *testing.T) {
	runes := buildStyledRunes([]rune("one two three"), nil, 0)
	out := wrapStyledRunes(runes, 8)
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), out)
	}
}

func TestFindWordsSplitsOnNewlines(t *testing.T) {
	words := findWords([]rune("ab\ncd ef"))
	if len(words) != 3 {
		t.Fatalf("expected 3 words, got %d", len(words))
	}
	if words[0].start != 0 || words[0].end != 2 {
		t.Fatalf("unexpected first word range: %+v", words[0])
	}
	if words[1].start != 3 || words[1].end != 5 {
		t.Fatalf("unexpected second word range: %+v", words[1])
	}
}
