// Package model defines shared data structures.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"
)

// RoundCount is the number of dealt rounds in a session.
const RoundCount = 16

// MaxFan caps recorded fan counts so 16 rounds of payouts stay in range.
const MaxFan = math.MaxInt32

// Config defines runtime settings resolved from flags and the config file.
type Config struct {
	DBPath   string
	Retries  int
	LogLevel string
	LogFile  string
	Color    bool
}

// RoundSlot is one fixed entry of the session schedule.
type RoundSlot struct {
	Index  int
	Wind   Wind
	Seat   Seat
	Dealer Seat
}

// ResultKind classifies how a round ended.
type ResultKind int

const (
	// ResultUnset means nothing has been recorded for the round yet.
	ResultUnset ResultKind = iota
	// ResultDraw is an exhaustive draw with no winner.
	ResultDraw
	// ResultWin means a player won the round.
	ResultWin
)

// Method says how a winning tile was obtained.
type Method int

const (
	MethodNone Method = iota
	MethodSelfDraw
	MethodDiscard
)

// ErrInvalidOutcome is returned for outcomes that break the win invariants.
var ErrInvalidOutcome = errors.New("invalid round outcome")

// RoundOutcome is the recorded result of a single round.
type RoundOutcome struct {
	Fan    int
	Result ResultKind
	Winner Seat
	Method Method
	Loser  Seat
}

// Draw records an exhaustive draw.
func Draw(fan int) RoundOutcome {
	return RoundOutcome{Fan: fan, Result: ResultDraw}
}

// SelfDraw records a win on a self-drawn tile.
func SelfDraw(winner Seat, fan int) RoundOutcome {
	return RoundOutcome{Fan: fan, Result: ResultWin, Winner: winner, Method: MethodSelfDraw}
}

// Discard records a win on a tile discarded by loser.
func Discard(winner, loser Seat, fan int) RoundOutcome {
	return RoundOutcome{Fan: fan, Result: ResultWin, Winner: winner, Method: MethodDiscard, Loser: loser}
}

// IsWin reports whether the outcome awards points.
func (o RoundOutcome) IsWin() bool {
	return o.Result == ResultWin
}

// Validate checks the seat invariants of a win.
func (o RoundOutcome) Validate() error {
	switch o.Result {
	case ResultUnset, ResultDraw:
		return nil
	case ResultWin:
	default:
		return fmt.Errorf("%w: unknown result %d", ErrInvalidOutcome, o.Result)
	}
	if !o.Winner.Valid() {
		return fmt.Errorf("%w: unknown winner %q", ErrInvalidOutcome, o.Winner)
	}
	switch o.Method {
	case MethodSelfDraw:
		return nil
	case MethodDiscard:
		if !o.Loser.Valid() {
			return fmt.Errorf("%w: unknown loser %q", ErrInvalidOutcome, o.Loser)
		}
		if o.Loser == o.Winner {
			return fmt.Errorf("%w: winner %s cannot discard to themselves", ErrInvalidOutcome, o.Winner)
		}
		return nil
	default:
		return fmt.Errorf("%w: win without a method", ErrInvalidOutcome)
	}
}

// Normalize clamps the fan to [0, MaxFan] and drops fields that do not apply
// to the result.
func (o RoundOutcome) Normalize() RoundOutcome {
	out := RoundOutcome{Fan: min(max(o.Fan, 0), MaxFan), Result: o.Result}
	if o.Result == ResultWin {
		out.Winner = o.Winner
		out.Method = o.Method
		if o.Method == MethodDiscard {
			out.Loser = o.Loser
		}
	}
	return out
}

// SeatScores holds one integer per seat, indexed in seat order.
type SeatScores [SeatCount]int

// Of returns the value for a seat. Unknown seats read as zero.
func (s SeatScores) Of(seat Seat) int {
	idx := seat.Index()
	if idx < 0 {
		return 0
	}
	return s[idx]
}

// Set stores the value for a seat.
func (s *SeatScores) Set(seat Seat, v int) {
	if idx := seat.Index(); idx >= 0 {
		s[idx] = v
	}
}

// Add accumulates other into s.
func (s *SeatScores) Add(other SeatScores) {
	for i := range s {
		s[i] += other[i]
	}
}

// Sum returns the total over all seats.
func (s SeatScores) Sum() int {
	total := 0
	for _, v := range s {
		total += v
	}
	return total
}

// MarshalJSON encodes the scores as a seat-keyed object.
func (s SeatScores) MarshalJSON() ([]byte, error) {
	out := make(map[Seat]int, SeatCount)
	for i, seat := range Seats {
		out[seat] = s[i]
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a seat-keyed object. Every seat must be present.
func (s *SeatScores) UnmarshalJSON(data []byte) error {
	var raw map[Seat]int
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var out SeatScores
	for i, seat := range Seats {
		v, ok := raw[seat]
		if !ok {
			return fmt.Errorf("missing seat %s", seat)
		}
		out[i] = v
	}
	*s = out
	return nil
}

// SeatStats counts round results for one seat.
type SeatStats struct {
	Wins          int `json:"hu"`
	SelfDraws     int `json:"zimo"`
	DiscardLosses int `json:"fp"`
}

// Stats holds per-seat counters, indexed in seat order.
type Stats [SeatCount]SeatStats

// Of returns the counters for a seat.
func (s Stats) Of(seat Seat) SeatStats {
	idx := seat.Index()
	if idx < 0 {
		return SeatStats{}
	}
	return s[idx]
}

// Add accumulates other into s.
func (s *Stats) Add(other Stats) {
	for i := range s {
		s[i].Wins += other[i].Wins
		s[i].SelfDraws += other[i].SelfDraws
		s[i].DiscardLosses += other[i].DiscardLosses
	}
}

// MarshalJSON encodes the stats as a seat-keyed object.
func (s Stats) MarshalJSON() ([]byte, error) {
	out := make(map[Seat]SeatStats, SeatCount)
	for i, seat := range Seats {
		out[seat] = s[i]
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a seat-keyed object; absent seats stay zero.
func (s *Stats) UnmarshalJSON(data []byte) error {
	var raw map[Seat]SeatStats
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	var out Stats
	for i, seat := range Seats {
		out[i] = raw[seat]
	}
	*s = out
	return nil
}

// Seating maps seats to player names. Unassigned seats are absent.
type Seating map[Seat]string

// Clone returns a deep copy that never aliases s.
func (s Seating) Clone() Seating {
	out := make(Seating, len(s))
	for seat, name := range s {
		out[seat] = name
	}
	return out
}

// Name returns the player assigned to a seat, or "".
func (s Seating) Name(seat Seat) string {
	if s == nil {
		return ""
	}
	return s[seat]
}

// HistoryEntry is the immutable summary of a closed session.
type HistoryEntry struct {
	ID      string
	Time    time.Time
	Totals  SeatScores
	Seating Seating
}
