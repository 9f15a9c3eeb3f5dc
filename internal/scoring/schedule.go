// Package scoring implements the session schedule and the payout rules.
package scoring

import "github.com/verte-zerg/mjtally/internal/model"

var schedule = buildSchedule()

// GenerateSchedule returns the 16 round slots, wind-major, seats inner.
//
// The dealer is always East. A rotating dealer would follow the wind cycle,
// but scoresheets have always highlighted East and payouts do not depend on it.
func GenerateSchedule() [model.RoundCount]model.RoundSlot {
	return schedule
}

func buildSchedule() [model.RoundCount]model.RoundSlot {
	var out [model.RoundCount]model.RoundSlot
	idx := 0
	for _, wind := range model.Winds {
		for _, seat := range model.Seats {
			out[idx] = model.RoundSlot{
				Index:  idx,
				Wind:   wind,
				Seat:   seat,
				Dealer: model.SeatEast,
			}
			idx++
		}
	}
	return out
}

// IsDealer reports whether the slot is highlighted as the dealer's round.
func IsDealer(slot model.RoundSlot) bool {
	return slot.Seat == slot.Dealer
}
