package tui

import (
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
)

func TestWrapTextBreaksAtSpaces(t *testing.T) {
	got := wrapText("Press the button when it tells you to.", 16)
	want := "Press the button\nwhen it tells\nyou to."
	if got != want {
		t.Fatalf("unexpected wrap:\n%q\nwant\n%q", got, want)
	}
}

func TestWrapTextSplitsLongWords(t *testing.T) {
	got := wrapText("abcdefghij", 4)
	if got != "abcd\nefgh\nij" {
		t.Fatalf("unexpected wrap: %q", got)
	}
}

func TestWrapTextRespectsWideRunes(t *testing.T) {
	got := wrapText("色色色 色", 4)
	for _, line := range strings.Split(got, "\n") {
		if runewidth.StringWidth(line) > 4 {
			t.Fatalf("line %q exceeds width", line)
		}
	}
}

func TestWrapTextNoWidth(t *testing.T) {
	if got := wrapText("unchanged text", 0); got != "unchanged text" {
		t.Fatalf("unexpected wrap: %q", got)
	}
}
