// Package stats builds reports over closed sessions and renders them as text.
package stats

import (
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"

	"github.com/verte-zerg/mjtally/internal/model"
)

// Participant identifies who sat in a seat for one game: a named player, or
// nobody, in which case the seat stands in for them.
type Participant struct {
	Name string
	Seat model.Seat
}

// ParticipantAt returns the participant for seat. Named players are matched
// across seats; empty seats are matched by seat only.
func ParticipantAt(seating model.Seating, seat model.Seat) Participant {
	if name := seating.Name(seat); name != "" {
		return Participant{Name: name}
	}
	return Participant{Seat: seat}
}

// Label is the display name used in tables.
func (p Participant) Label() string {
	if p.Name != "" {
		return p.Name
	}
	return fmt.Sprintf("(%s)", p.Seat)
}

// PlayerRow is one line of the leaderboard.
type PlayerRow struct {
	Who     Participant
	Name    string
	Games   int
	Total   int
	Best    int
	Worst   int
	Average float64
	Tops    int
}

// NewestFirst returns the entries in display order without touching the input.
func NewestFirst(entries []model.HistoryEntry) []model.HistoryEntry {
	out := slices.Clone(entries)
	slices.Reverse(out)
	return out
}

// LastN keeps the newest n entries in their original order. n <= 0 keeps all.
func LastN(entries []model.HistoryEntry, n int) []model.HistoryEntry {
	if n <= 0 || len(entries) <= n {
		return entries
	}
	return entries[len(entries)-n:]
}

// SeatLabel names whoever sat in seat for an entry. Empty seats are shown
// under the seat letter.
func SeatLabel(seating model.Seating, seat model.Seat) string {
	return ParticipantAt(seating, seat).Label()
}

type result struct {
	who   Participant
	score int
	top   bool
}

// BuildLeaderboard ranks players over the last games (all when last <= 0),
// by total score, then by name.
func BuildLeaderboard(entries []model.HistoryEntry, last int) []PlayerRow {
	entries = LastN(entries, last)
	results := lo.FlatMap(entries, func(e model.HistoryEntry, _ int) []result {
		best := lo.Max(e.Totals[:])
		return lo.Map(model.Seats[:], func(seat model.Seat, _ int) result {
			score := e.Totals.Of(seat)
			return result{
				who:   ParticipantAt(e.Seating, seat),
				score: score,
				top:   best > 0 && score == best,
			}
		})
	})

	grouped := lo.GroupBy(results, func(r result) Participant { return r.who })
	rows := make([]PlayerRow, 0, len(grouped))
	for who, rs := range grouped {
		scores := lo.Map(rs, func(r result, _ int) int { return r.score })
		total := lo.Sum(scores)
		rows = append(rows, PlayerRow{
			Who:     who,
			Name:    who.Label(),
			Games:   len(rs),
			Total:   total,
			Best:    lo.Max(scores),
			Worst:   lo.Min(scores),
			Average: float64(total) / float64(len(rs)),
			Tops:    lo.CountBy(rs, func(r result) bool { return r.top }),
		})
	}
	slices.SortFunc(rows, func(a, b PlayerRow) int {
		if a.Total != b.Total {
			return b.Total - a.Total
		}
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		// A player literally named "(E)" sorts before the empty east seat.
		return strings.Compare(string(a.Who.Seat), string(b.Who.Seat))
	})
	return rows
}
