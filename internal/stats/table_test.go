package stats

import "testing"

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Player", "Total", "Games"}
	rows := [][]string{
		{"Ann", "+120", "12"},
		{"(W)", "-8", "3"},
	}
	rightAlign := map[int]bool{1: true, 2: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Player  Total  Games" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "Ann      +120     12" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "(W)        -8      3" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestFormatTableWideRunes(t *testing.T) {
	lines := formatTable([]string{"Name", "Total"}, [][]string{{"小明", "+5"}, {"Bo", "0"}}, map[int]bool{1: true})
	if lines[1] != "小明     +5" {
		t.Fatalf("unexpected wide row: %q", lines[1])
	}
	if lines[2] != "Bo        0" {
		t.Fatalf("unexpected narrow row: %q", lines[2])
	}
}
