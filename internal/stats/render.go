package stats

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"golang.org/x/term"

	"github.com/verte-zerg/mjtally/internal/model"
	"github.com/verte-zerg/mjtally/internal/scoring"
)

const (
	colorReset  = "\x1b[0m"
	colorHeader = "\x1b[36m"
	colorTotals = "\x1b[33m"
)

// Sheet is everything needed to print the active scoresheet.
type Sheet struct {
	Outcomes [model.RoundCount]model.RoundOutcome
	Tally    scoring.Tally
	Seating  model.Seating
	Current  int
}

// RoundLabel names a slot as wind-seat, with the seated player if any.
func RoundLabel(slot model.RoundSlot, seating model.Seating) string {
	label := fmt.Sprintf("%s-%s", slot.Wind, slot.Seat)
	if name := seating.Name(slot.Seat); name != "" {
		label += "(" + name + ")"
	}
	return label
}

// DescribeOutcome is the short result text shown next to a round.
func DescribeOutcome(o model.RoundOutcome) string {
	switch o.Result {
	case model.ResultDraw:
		return "draw"
	case model.ResultWin:
		if o.Method == model.MethodSelfDraw {
			return fmt.Sprintf("%s zimo", o.Winner)
		}
		return fmt.Sprintf("%s off %s", o.Winner, o.Loser)
	}
	return ""
}

// StatsLine summarises one seat: discard wins, self-draws and discard losses.
func StatsLine(s model.SeatStats) string {
	return fmt.Sprintf("★%d ◎%d ✗%d", s.Wins, s.SelfDraws, s.DiscardLosses)
}

// RenderScoresheet prints the 16 rounds with per-seat deltas and totals.
func RenderScoresheet(w io.Writer, sheet Sheet, useColor bool) error {
	headers := []string{"", "Round", "Fan", "Result"}
	for _, seat := range model.Seats {
		headers = append(headers, SeatLabel(sheet.Seating, seat))
	}
	rightAlign := map[int]bool{2: true, 4: true, 5: true, 6: true, 7: true}

	rows := make([][]string, 0, model.RoundCount+2)
	for i, slot := range scoring.GenerateSchedule() {
		o := sheet.Outcomes[i]
		marker := ""
		if i == sheet.Current {
			marker = ">"
		}
		label := RoundLabel(slot, sheet.Seating)
		if scoring.IsDealer(slot) {
			label += "*"
		}
		fan := ""
		if o.Result != model.ResultUnset || o.Fan > 0 {
			fan = strconv.Itoa(o.Fan)
		}
		row := []string{marker, label, fan, DescribeOutcome(o)}
		for _, delta := range sheet.Tally.Rounds[i] {
			cell := ""
			if o.IsWin() {
				cell = FormatSigned(delta)
			}
			row = append(row, cell)
		}
		rows = append(rows, row)
	}
	totals := []string{"", "Total", "", ""}
	stats := []string{"", "Stats", "", ""}
	for _, seat := range model.Seats {
		totals = append(totals, FormatSigned(sheet.Tally.Totals.Of(seat)))
		stats = append(stats, StatsLine(sheet.Tally.Stats.Of(seat)))
	}
	rows = append(rows, totals, stats)

	lines := formatTable(headers, rows, rightAlign)
	totalsLine := len(lines) - 2
	for i, line := range lines {
		if useColor {
			switch i {
			case 0:
				line = colorHeader + line + colorReset
			case totalsLine:
				line = colorTotals + line + colorReset
			}
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderHistory prints closed sessions newest first.
func RenderHistory(w io.Writer, entries []model.HistoryEntry, useColor bool) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No closed sessions yet.")
		return err
	}
	headers := []string{"#", "Closed", "E", "S", "W", "N"}
	rightAlign := map[int]bool{0: true}
	rows := make([][]string, 0, len(entries))
	for i, e := range NewestFirst(entries) {
		row := []string{strconv.Itoa(len(entries) - i), FormatTime(e)}
		for _, seat := range model.Seats {
			row = append(row, fmt.Sprintf("%s %s", SeatLabel(e.Seating, seat), FormatSigned(e.Totals.Of(seat))))
		}
		rows = append(rows, row)
	}
	return writeTable(w, headers, rows, rightAlign, useColor)
}

// RenderLeaderboard prints ranked player rows with a score trend per player.
func RenderLeaderboard(w io.Writer, rows []PlayerRow, entries []model.HistoryEntry, useColor bool) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No closed sessions yet.")
		return err
	}
	headers := []string{"Player", "Games", "Total", "Avg", "Best", "Worst", "Tops", "Trend"}
	rightAlign := map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true, 6: true}
	tableRows := make([][]string, 0, len(rows))
	for _, r := range rows {
		tableRows = append(tableRows, []string{
			r.Name,
			strconv.Itoa(r.Games),
			FormatSigned(r.Total),
			fmt.Sprintf("%.1f", r.Average),
			FormatSigned(r.Best),
			FormatSigned(r.Worst),
			strconv.Itoa(r.Tops),
			Sparkline(Cumulative(Trend(entries, r.Who))),
		})
	}
	return writeTable(w, headers, tableRows, rightAlign, useColor)
}

// FormatTime renders an entry timestamp, or a dash for legacy entries without one.
func FormatTime(e model.HistoryEntry) string {
	if e.Time.IsZero() {
		return "-"
	}
	return e.Time.Local().Format("2006-01-02 15:04")
}

func writeTable(w io.Writer, headers []string, rows [][]string, rightAlign map[int]bool, useColor bool) error {
	for i, line := range formatTable(headers, rows, rightAlign) {
		if i == 0 && useColor {
			line = colorHeader + line + colorReset
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// ShouldUseColor reports whether w is a terminal that should get ANSI colour.
// NO_COLOR always wins; force enables colour for non-terminal writers.
func ShouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
