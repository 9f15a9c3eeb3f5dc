package session

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/verte-zerg/mjtally/internal/model"
	"github.com/verte-zerg/mjtally/internal/scoring"
)

// Persisted record keys.
const (
	KeyPlayers = "players"
	KeySeating = "seating"
	KeyGame    = "game"
	KeyHistory = "history"
)

// AllKeys lists every key the session owns.
var AllKeys = []string{KeyPlayers, KeySeating, KeyGame, KeyHistory}

const (
	tagDraw     = "huang"
	tagSelfDraw = "zimo"
)

// legacyTimeLayouts are tried after RFC 3339 for entries written by older scoresheets.
var legacyTimeLayouts = []string{
	"1/2/2006, 3:04:05 PM",
	"2006/1/2 15:04:05",
	"2006-01-02 15:04:05",
}

// gameRecord stores stats for readers of the raw record; they are never trusted on load.
type gameRecord struct {
	Rounds       []roundRecord   `json:"rounds"`
	Stats        json.RawMessage `json:"stats,omitempty"`
	CurrentRound int             `json:"currentRound"`
}

type roundRecord struct {
	Fan fanValue `json:"fan"`
	Hu  string   `json:"hu"`
	Fp  string   `json:"fp"`
}

type historyRecord struct {
	ID      string            `json:"id,omitempty"`
	Time    string            `json:"time"`
	Scores  model.SeatScores  `json:"scores"`
	Seating map[string]string `json:"seating"`
}

// fanValue decodes leniently: numbers, numeric strings, anything else is 0.
type fanValue int

func (f *fanValue) UnmarshalJSON(data []byte) error {
	*f = fanValue(CoerceFan(string(bytes.Trim(bytes.TrimSpace(data), `"`))))
	return nil
}

// CoerceFan parses user or stored fan input. Non-numeric and negative values
// become 0; anything above model.MaxFan is capped.
func CoerceFan(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return scoring.ClampFan(n)
	}
	if v, err := strconv.ParseFloat(raw, 64); err == nil && !math.IsNaN(v) {
		switch {
		case v <= 0:
			return 0
		case v >= model.MaxFan:
			return model.MaxFan
		}
		return int(v)
	}
	return 0
}

func encodeGame(outcomes [model.RoundCount]model.RoundOutcome, stats model.Stats, current int) ([]byte, error) {
	rawStats, err := json.Marshal(stats)
	if err != nil {
		return nil, err
	}
	rec := gameRecord{
		Rounds:       make([]roundRecord, len(outcomes)),
		Stats:        rawStats,
		CurrentRound: current,
	}
	for i, o := range outcomes {
		rec.Rounds[i] = encodeRound(o)
	}
	return json.Marshal(rec)
}

func encodeRound(o model.RoundOutcome) roundRecord {
	r := roundRecord{Fan: fanValue(o.Fan)}
	switch o.Result {
	case model.ResultDraw:
		r.Hu = tagDraw
	case model.ResultWin:
		r.Hu = string(o.Winner)
		switch o.Method {
		case model.MethodSelfDraw:
			r.Fp = tagSelfDraw
		case model.MethodDiscard:
			r.Fp = string(o.Loser)
		}
	}
	return r
}

// decodeGame returns the outcomes and the cursor clamped to a valid slot.
// Stored stats are ignored; callers recompute them.
func decodeGame(data []byte) ([model.RoundCount]model.RoundOutcome, int, error) {
	var outcomes [model.RoundCount]model.RoundOutcome
	var rec gameRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return outcomes, 0, err
	}
	if len(rec.Rounds) != model.RoundCount {
		return outcomes, 0, fmt.Errorf("expected %d rounds, got %d", model.RoundCount, len(rec.Rounds))
	}
	for i, r := range rec.Rounds {
		o, err := decodeRound(r)
		if err != nil {
			return outcomes, 0, fmt.Errorf("round %d: %w", i+1, err)
		}
		outcomes[i] = o
	}
	return outcomes, clampIndex(rec.CurrentRound), nil
}

func decodeRound(r roundRecord) (model.RoundOutcome, error) {
	fan := int(r.Fan)
	switch r.Hu {
	case "":
		return model.RoundOutcome{Fan: fan}, nil
	case tagDraw:
		return model.Draw(fan), nil
	}
	winner := model.Seat(r.Hu)
	if !winner.Valid() {
		return model.RoundOutcome{}, fmt.Errorf("unknown winner tag %q", r.Hu)
	}
	var o model.RoundOutcome
	switch r.Fp {
	case "":
		// Winner picked but no payer yet; nothing is scored.
		return model.RoundOutcome{Fan: fan}, nil
	case tagSelfDraw:
		o = model.SelfDraw(winner, fan)
	default:
		o = model.Discard(winner, model.Seat(r.Fp), fan)
	}
	if err := o.Validate(); err != nil {
		return model.RoundOutcome{}, err
	}
	return o, nil
}

func encodePlayers(players []string) ([]byte, error) {
	if players == nil {
		players = []string{}
	}
	return json.Marshal(players)
}

func decodePlayers(data []byte) ([]string, error) {
	var raw []string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	players := make([]string, 0, len(raw))
	for _, name := range raw {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		players = append(players, name)
	}
	return players, nil
}

func encodeSeating(seating model.Seating) ([]byte, error) {
	out := make(map[string]string, len(seating))
	for seat, name := range seating {
		out[string(seat)] = name
	}
	return json.Marshal(out)
}

func decodeSeating(data []byte) (model.Seating, error) {
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return seatingFromMap(raw)
}

func seatingFromMap(raw map[string]string) (model.Seating, error) {
	seating := model.Seating{}
	for key, name := range raw {
		seat := model.Seat(key)
		if !seat.Valid() {
			return nil, fmt.Errorf("unknown seat key %q", key)
		}
		if name = strings.TrimSpace(name); name != "" {
			seating[seat] = name
		}
	}
	return seating, nil
}

func encodeHistory(entries []model.HistoryEntry) ([]byte, error) {
	recs := make([]historyRecord, len(entries))
	for i, e := range entries {
		seating := make(map[string]string, len(e.Seating))
		for seat, name := range e.Seating {
			seating[string(seat)] = name
		}
		recs[i] = historyRecord{
			ID:      e.ID,
			Time:    e.Time.Format(time.RFC3339),
			Scores:  e.Totals,
			Seating: seating,
		}
	}
	return json.Marshal(recs)
}

func decodeHistory(data []byte) ([]model.HistoryEntry, error) {
	var recs []historyRecord
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, err
	}
	entries := make([]model.HistoryEntry, 0, len(recs))
	for i, r := range recs {
		seating, err := seatingFromMap(r.Seating)
		if err != nil {
			return nil, fmt.Errorf("history entry %d: %w", i+1, err)
		}
		entries = append(entries, model.HistoryEntry{
			ID:      r.ID,
			Time:    parseEntryTime(r.Time),
			Totals:  r.Scores,
			Seating: seating,
		})
	}
	return entries, nil
}

func parseEntryTime(value string) time.Time {
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t
	}
	for _, layout := range legacyTimeLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t
		}
	}
	return time.Time{}
}

func clampIndex(idx int) int {
	if idx < 0 {
		return 0
	}
	if idx >= model.RoundCount {
		return model.RoundCount - 1
	}
	return idx
}
