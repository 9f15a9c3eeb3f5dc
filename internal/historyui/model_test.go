package historyui

import (
	"fmt"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/mjtally/internal/model"
	"github.com/verte-zerg/mjtally/internal/stats"
)

func sampleEntries() []model.HistoryEntry {
	base := time.Date(2026, 4, 1, 20, 0, 0, 0, time.UTC)
	return []model.HistoryEntry{
		{ID: "a", Time: base, Totals: model.SeatScores{10, -20, 5, 5}, Seating: model.Seating{model.SeatEast: "Ann"}},
		{ID: "b", Time: base.Add(time.Hour), Totals: model.SeatScores{-24, 25, -19, 18}, Seating: model.Seating{model.SeatSouth: "Ann"}},
	}
}

func sized(m *Model) *Model {
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return m
}

func TestViewShowsHistoryTab(t *testing.T) {
	m := sized(NewModel(sampleEntries(), 0))
	out := m.View()
	if !strings.Contains(out, "Closed sessions: 2") {
		t.Fatalf("expected summary in header")
	}
	if !strings.Contains(out, "Ann +25") {
		t.Fatalf("expected newest game in history view:\n%s", out)
	}
}

func TestSwitchToLeaderboard(t *testing.T) {
	m := sized(NewModel(sampleEntries(), 0))
	m.Update(tea.KeyMsg{Type: tea.KeyRight})
	if m.activeTab != tabLeaderboard {
		t.Fatalf("expected leaderboard tab, got %d", m.activeTab)
	}
	rows := m.board.Rows()
	if len(rows) == 0 || rows[0][0] != "Ann" || rows[0][2] != "+35" {
		t.Fatalf("unexpected leaderboard rows: %v", rows)
	}
}

func TestFilterLastN(t *testing.T) {
	m := sized(NewModel(sampleEntries(), 0))
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	if !m.filterMode {
		t.Fatalf("expected filter mode")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("1")})
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if m.filterMode || m.last != 1 {
		t.Fatalf("expected filter applied, got mode=%v last=%d", m.filterMode, m.last)
	}
	rows := m.board.Rows()
	if len(rows) != 4 {
		t.Fatalf("expected one game worth of rows, got %d", len(rows))
	}
	if rows[0][0] != "Ann" || rows[0][1] != "1" {
		t.Fatalf("unexpected leader after filter: %v", rows[0])
	}
}

func TestFilterRejectsBadInput(t *testing.T) {
	m := sized(NewModel(sampleEntries(), 0))
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("/")})
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !m.filterMode || m.filterError == "" {
		t.Fatalf("expected filter error, got mode=%v err=%q", m.filterMode, m.filterError)
	}
	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.filterMode || m.last != 0 {
		t.Fatalf("expected esc to cancel")
	}
}

func TestEmptyHistory(t *testing.T) {
	m := sized(NewModel(nil, 0))
	if !strings.Contains(m.View(), "No closed sessions yet.") {
		t.Fatalf("expected empty message")
	}
}

func TestParseLast(t *testing.T) {
	if n, err := parseLast(" "); err != nil || n != 0 {
		t.Fatalf("expected empty to mean all, got %d %v", n, err)
	}
	if n, err := parseLast("12"); err != nil || n != 12 {
		t.Fatalf("expected 12, got %d %v", n, err)
	}
	if _, err := parseLast("-1"); err == nil {
		t.Fatalf("expected error for negative")
	}
}

func TestLeaderboardTrendKeepsNewestGames(t *testing.T) {
	base := time.Date(2026, 4, 1, 20, 0, 0, 0, time.UTC)
	var entries []model.HistoryEntry
	for i := 0; i < 20; i++ {
		score := 10
		if i >= 16 {
			score = -10
		}
		entries = append(entries, model.HistoryEntry{
			ID:      fmt.Sprintf("g%d", i),
			Time:    base.Add(time.Duration(i) * time.Hour),
			Totals:  model.SeatScores{score, -score, 0, 0},
			Seating: model.Seating{model.SeatEast: "Ann"},
		})
	}
	m := sized(NewModel(entries, 0))
	var trend string
	for _, row := range m.board.Rows() {
		if row[0] == "Ann" {
			trend = row[7]
		}
	}
	full := stats.Sparkline(stats.Cumulative(stats.Trend(entries, stats.Participant{Name: "Ann"})))
	if len(full) != 20 {
		t.Fatalf("expected 20 points, got %q", full)
	}
	if trend != full[4:] {
		t.Fatalf("expected newest 16 points %q, got %q", full[4:], trend)
	}
}

func TestTrendTail(t *testing.T) {
	if got := trendTail("abc", 5); got != "abc" {
		t.Fatalf("expected short trend untouched, got %q", got)
	}
	if got := trendTail("abcdef", 3); got != "def" {
		t.Fatalf("expected newest points, got %q", got)
	}
}
