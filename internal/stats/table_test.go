package stats

import "testing"

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Block", "Latency (ms)", "Prompt"}
	rows := [][]string{
		{"prompt", "612", "Press now."},
		{"color", "1045", "色"},
	}
	rightAlign := map[int]bool{1: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Block  Latency (ms) Prompt" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "prompt          612 Press now." {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "color          1045 色" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestDisplayWidthCountsWideRunes(t *testing.T) {
	if got := displayWidth("色a"); got != 3 {
		t.Fatalf("expected width 3, got %d", got)
	}
}
