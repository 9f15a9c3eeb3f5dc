package stats

import (
	"bytes"
	"strings"
	"testing"

	"github.com/verte-zerg/mjtally/internal/model"
	"github.com/verte-zerg/mjtally/internal/scoring"
)

func TestRenderScoresheet(t *testing.T) {
	var outcomes [model.RoundCount]model.RoundOutcome
	outcomes[0] = model.SelfDraw(model.SeatSouth, 3)
	outcomes[1] = model.Discard(model.SeatNorth, model.SeatEast, 5)
	outcomes[2] = model.Draw(0)
	sheet := Sheet{
		Outcomes: outcomes,
		Tally:    scoring.Recompute(outcomes),
		Seating:  model.Seating{model.SeatSouth: "Bo"},
		Current:  3,
	}

	var buf bytes.Buffer
	if err := RenderScoresheet(&buf, sheet, false); err != nil {
		t.Fatalf("render scoresheet: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 1+model.RoundCount+2 {
		t.Fatalf("expected %d lines, got %d", 1+model.RoundCount+2, len(lines))
	}
	if !strings.Contains(lines[0], "Bo") || !strings.Contains(lines[0], "(E)") {
		t.Fatalf("expected seat labels in header, got %q", lines[0])
	}
	if !strings.Contains(lines[1], "E-E*") || !strings.Contains(lines[1], "S zimo") || !strings.Contains(lines[1], "+33") {
		t.Fatalf("unexpected first round: %q", lines[1])
	}
	if !strings.Contains(lines[2], "E-S(Bo)") || !strings.Contains(lines[2], "N off E") || !strings.Contains(lines[2], "+29") {
		t.Fatalf("unexpected second round: %q", lines[2])
	}
	if !strings.Contains(lines[3], "draw") || strings.Contains(lines[3], "+") {
		t.Fatalf("unexpected draw round: %q", lines[3])
	}
	if !strings.HasPrefix(lines[4], ">") {
		t.Fatalf("expected cursor on round 4, got %q", lines[4])
	}
	total := lines[len(lines)-2]
	for _, want := range []string{"-24", "+25", "-19", "+18"} {
		if !strings.Contains(total, want) {
			t.Fatalf("expected %s in totals %q", want, total)
		}
	}
	if !strings.Contains(lines[len(lines)-1], "★0 ◎1 ✗0") {
		t.Fatalf("unexpected stats line: %q", lines[len(lines)-1])
	}
	if strings.Contains(buf.String(), "\x1b[") {
		t.Fatalf("expected no colour codes")
	}
}

func TestRenderHistoryNewestFirst(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderHistory(&buf, testEntries(), false); err != nil {
		t.Fatalf("render history: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d", len(lines))
	}
	if !strings.HasPrefix(strings.TrimSpace(lines[1]), "3") {
		t.Fatalf("expected newest entry first, got %q", lines[1])
	}
	if !strings.Contains(lines[2], "(N) +18") {
		t.Fatalf("expected unnamed seat label, got %q", lines[2])
	}
}

func TestRenderEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderHistory(&buf, nil, false); err != nil {
		t.Fatalf("render history: %v", err)
	}
	if err := RenderLeaderboard(&buf, nil, nil, false); err != nil {
		t.Fatalf("render leaderboard: %v", err)
	}
	if strings.Count(buf.String(), "No closed sessions yet.") != 2 {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}

func TestRenderLeaderboard(t *testing.T) {
	entries := testEntries()
	var buf bytes.Buffer
	if err := RenderLeaderboard(&buf, BuildLeaderboard(entries, 0), entries, true); err != nil {
		t.Fatalf("render leaderboard: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, colorHeader) {
		t.Fatalf("expected coloured header")
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if !strings.HasPrefix(lines[1], "Ann") || !strings.Contains(lines[1], "+35") {
		t.Fatalf("unexpected leader line: %q", lines[1])
	}
}

func TestShouldUseColorRespectsNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	if ShouldUseColor(&bytes.Buffer{}, true) {
		t.Fatalf("expected NO_COLOR to disable colour")
	}
	t.Setenv("NO_COLOR", "")
	if !ShouldUseColor(&bytes.Buffer{}, true) {
		t.Fatalf("expected forced colour")
	}
	if ShouldUseColor(&bytes.Buffer{}, false) {
		t.Fatalf("expected no colour for buffers")
	}
}
