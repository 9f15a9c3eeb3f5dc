package scoring

import "github.com/verte-zerg/mjtally/internal/model"

const (
	// basePayment is added to the fan for every paying seat.
	basePayment = 8
	// bystanderPayment is what each uninvolved seat pays on a discard win.
	bystanderPayment = 8
)

// RoundScore is the effect of one round on the table.
type RoundScore struct {
	Deltas model.SeatScores
	Stats  model.Stats
}

// ClampFan maps negative fan counts to zero and caps them at model.MaxFan.
func ClampFan(fan int) int {
	if fan < 0 {
		return 0
	}
	if fan > model.MaxFan {
		return model.MaxFan
	}
	return fan
}

// Score converts a round outcome into per-seat deltas and stat increments.
// Every win is zero-sum.
func Score(o model.RoundOutcome) RoundScore {
	var rs RoundScore
	if o.Result != model.ResultWin {
		return rs
	}
	winner := o.Winner.Index()
	if winner < 0 {
		return rs
	}
	fan := ClampFan(o.Fan)
	pay := fan + basePayment

	switch o.Method {
	case model.MethodSelfDraw:
		for i := range rs.Deltas {
			if i == winner {
				rs.Deltas[i] = 3 * pay
				continue
			}
			rs.Deltas[i] = -pay
		}
		rs.Stats[winner].SelfDraws++
	case model.MethodDiscard:
		loser := o.Loser.Index()
		if loser < 0 || loser == winner {
			return RoundScore{}
		}
		for i := range rs.Deltas {
			switch i {
			case winner:
				rs.Deltas[i] = pay + 2*bystanderPayment
			case loser:
				rs.Deltas[i] = -pay
			default:
				rs.Deltas[i] = -bystanderPayment
			}
		}
		rs.Stats[winner].Wins++
		rs.Stats[loser].DiscardLosses++
	}
	return rs
}
