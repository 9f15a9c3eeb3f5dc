package scoring

import "github.com/verte-zerg/mjtally/internal/model"

// Tally is the derived state of a session.
type Tally struct {
	Totals model.SeatScores
	Stats  model.Stats
	Rounds [model.RoundCount]model.SeatScores
}

// Recompute rebuilds totals and stats from scratch over all 16 outcomes.
func Recompute(outcomes [model.RoundCount]model.RoundOutcome) Tally {
	var t Tally
	for i, o := range outcomes {
		rs := Score(o)
		t.Rounds[i] = rs.Deltas
		t.Totals.Add(rs.Deltas)
		t.Stats.Add(rs.Stats)
	}
	return t
}

// RunningTotals returns the cumulative per-seat totals after each round.
func (t Tally) RunningTotals() [model.RoundCount]model.SeatScores {
	var out [model.RoundCount]model.SeatScores
	var acc model.SeatScores
	for i, deltas := range t.Rounds {
		acc.Add(deltas)
		out[i] = acc
	}
	return out
}

// Recorded counts the rounds that have a draw or a win.
func Recorded(outcomes [model.RoundCount]model.RoundOutcome) int {
	n := 0
	for _, o := range outcomes {
		if o.Result != model.ResultUnset {
			n++
		}
	}
	return n
}
