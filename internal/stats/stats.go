package stats

import (
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/verte-zerg/mjtally/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Trend returns the participant's score in every game they sat in, oldest first.
func Trend(entries []model.HistoryEntry, who Participant) []int {
	var out []int
	for _, e := range entries {
		for _, seat := range model.Seats {
			if ParticipantAt(e.Seating, seat) == who {
				out = append(out, e.Totals.Of(seat))
			}
		}
	}
	return out
}

// Cumulative turns per-game scores into a running balance.
func Cumulative(values []int) []int {
	acc := 0
	return lo.Map(values, func(v int, _ int) int {
		acc += v
		return acc
	})
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []int) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := lo.Min(values), lo.Max(values)
	if minVal == maxVal {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	steps := len(sparkChars) - 1
	var b strings.Builder
	for _, v := range values {
		idx := ((v-minVal)*steps*2 + (maxVal - minVal)) / ((maxVal - minVal) * 2)
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// FormatSigned renders a score with an explicit sign for non-zero values.
func FormatSigned(v int) string {
	if v > 0 {
		return "+" + strconv.Itoa(v)
	}
	return strconv.Itoa(v)
}
