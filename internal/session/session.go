// Package session owns the active scoresheet, the seating, the player roster
// and the ledger of closed sessions, and keeps them persisted.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/verte-zerg/mjtally/internal/model"
	"github.com/verte-zerg/mjtally/internal/scoring"
	"github.com/verte-zerg/mjtally/internal/store"
)

// KV is the persistence contract the session writes through.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, keys ...string) error
	Commit(ctx context.Context, writes ...store.Write) error
}

// State is the lifecycle phase of the active scoresheet.
type State int

const (
	StateEmpty State = iota
	StateInProgress
)

func (s State) String() string {
	if s == StateInProgress {
		return "in progress"
	}
	return "empty"
}

// Session is the single owner of all mutable scorekeeping state.
type Session struct {
	kv    KV
	log   zerolog.Logger
	now   func() time.Time
	newID func() string

	players  []string
	seating  model.Seating
	outcomes [model.RoundCount]model.RoundOutcome
	current  int
	tally    scoring.Tally
	history  []model.HistoryEntry
	// historyLoaded is false until the history record has been read, so a
	// failed read never leads to the stored ledger being overwritten.
	historyLoaded bool
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger used for persistence warnings.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Session) {
		s.log = log
	}
}

// WithClock overrides the time source used for history timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.now = now
	}
}

// WithIDGenerator overrides how history entry IDs are minted.
func WithIDGenerator(newID func() string) Option {
	return func(s *Session) {
		s.newID = newID
	}
}

// New returns an empty session bound to kv. Call Load to restore saved state.
func New(kv KV, opts ...Option) *Session {
	s := &Session{
		kv:      kv,
		log:     zerolog.Nop(),
		now:     time.Now,
		newID:   uuid.NewString,
		seating: model.Seating{},
	}
	for _, opt := range opts {
		opt(s)
	}
	s.recompute()
	return s
}

// Load restores every record from the store. Malformed records are replaced
// by fresh values and reported as ErrMalformedState warnings. An unreadable
// record is reported as ErrPersistence; if that record is the history,
// CloseSession retries the read and refuses to close until it succeeds.
func (s *Session) Load(ctx context.Context) error {
	var errs []error
	s.players = nil
	if data, ok, err := s.read(ctx, KeyPlayers); err != nil {
		errs = append(errs, err)
	} else if ok {
		players, err := decodePlayers(data)
		if err != nil {
			errs = append(errs, s.malformed(KeyPlayers, err))
		} else {
			s.players = players
		}
	}

	s.seating = model.Seating{}
	if data, ok, err := s.read(ctx, KeySeating); err != nil {
		errs = append(errs, err)
	} else if ok {
		seating, err := decodeSeating(data)
		if err != nil {
			errs = append(errs, s.malformed(KeySeating, err))
		} else {
			s.seating = seating
		}
	}

	s.resetGame()
	if data, ok, err := s.read(ctx, KeyGame); err != nil {
		errs = append(errs, err)
	} else if ok {
		outcomes, current, err := decodeGame(data)
		if err != nil {
			errs = append(errs, s.malformed(KeyGame, err))
		} else {
			s.outcomes = outcomes
			s.current = current
		}
	}
	s.recompute()

	if err := s.loadHistory(ctx); err != nil {
		errs = append(errs, err)
	}

	s.log.Debug().
		Int("players", len(s.players)).
		Int("recorded", scoring.Recorded(s.outcomes)).
		Int("history", len(s.history)).
		Msg("session-loaded")
	return errors.Join(errs...)
}

// SetOutcome replaces the outcome of round index and persists the scoresheet.
// An index outside [0,15] is rejected before anything changes. A persistence
// error leaves the in-memory update in place.
func (s *Session) SetOutcome(ctx context.Context, index int, outcome model.RoundOutcome) error {
	if err := checkIndex(index); err != nil {
		return err
	}
	outcome = outcome.Normalize()
	if err := outcome.Validate(); err != nil {
		return err
	}
	s.outcomes[index] = outcome
	s.recompute()
	return s.saveGame(ctx)
}

// ClearRound resets round index to Unset with fan 0.
func (s *Session) ClearRound(ctx context.Context, index int) error {
	return s.SetOutcome(ctx, index, model.RoundOutcome{})
}

// SetCurrentRound moves the advisory cursor. It has no effect on scoring.
func (s *Session) SetCurrentRound(ctx context.Context, index int) error {
	if err := checkIndex(index); err != nil {
		return err
	}
	if s.current == index {
		return nil
	}
	s.current = index
	return s.saveGame(ctx)
}

// CloseSession snapshots the current totals and seating into the history
// ledger, then starts a fresh scoresheet with no seating. The roster is kept.
// The history append and the reset are committed in one batch.
func (s *Session) CloseSession(ctx context.Context) (model.HistoryEntry, error) {
	if !s.historyLoaded {
		if err := s.loadHistory(ctx); errors.Is(err, ErrPersistence) {
			return model.HistoryEntry{}, fmt.Errorf("%w: %w", ErrHistoryUnavailable, err)
		}
	}
	entry := model.HistoryEntry{
		ID:      s.newID(),
		Time:    s.now(),
		Totals:  s.tally.Totals,
		Seating: s.seating.Clone(),
	}
	stored := entry
	stored.Seating = entry.Seating.Clone()
	s.history = append(s.history, stored)
	s.resetGame()
	s.seating = model.Seating{}
	s.recompute()

	data, err := encodeHistory(s.history)
	if err != nil {
		return entry, s.persistErr(KeyHistory, err)
	}
	if err := s.kv.Commit(ctx,
		store.Write{Key: KeyHistory, Value: data},
		store.Delete(KeyGame),
		store.Delete(KeySeating),
	); err != nil {
		return entry, s.persistErr(KeyHistory, err)
	}
	s.log.Info().
		Str("id", entry.ID).
		Ints("totals", entry.Totals[:]).
		Int("history", len(s.history)).
		Msg("session-closed")
	return entry, nil
}

// ResetAll wipes the scoresheet, seating, history and roster.
// Callers are responsible for confirming with the user first.
func (s *Session) ResetAll(ctx context.Context) error {
	s.players = nil
	s.seating = model.Seating{}
	s.history = nil
	s.historyLoaded = true
	s.resetGame()
	s.recompute()
	if err := s.kv.Remove(ctx, AllKeys...); err != nil {
		return s.persistErr("all", err)
	}
	s.log.Info().Msg("session-reset-all")
	return nil
}

// State reports whether any round has been recorded.
func (s *Session) State() State {
	if scoring.Recorded(s.outcomes) > 0 {
		return StateInProgress
	}
	return StateEmpty
}

// Outcomes returns a copy of the 16 round outcomes.
func (s *Session) Outcomes() [model.RoundCount]model.RoundOutcome {
	return s.outcomes
}

// Outcome returns the outcome of a single round.
func (s *Session) Outcome(index int) (model.RoundOutcome, error) {
	if err := checkIndex(index); err != nil {
		return model.RoundOutcome{}, err
	}
	return s.outcomes[index], nil
}

// CurrentRound returns the advisory cursor.
func (s *Session) CurrentRound() int {
	return s.current
}

// Tally returns the derived totals, stats and per-round deltas.
func (s *Session) Tally() scoring.Tally {
	return s.tally
}

// Totals returns the running per-seat totals.
func (s *Session) Totals() model.SeatScores {
	return s.tally.Totals
}

// Stats returns the derived per-seat counters.
func (s *Session) Stats() model.Stats {
	return s.tally.Stats
}

// History returns a copy of the closed sessions, oldest first.
func (s *Session) History() []model.HistoryEntry {
	out := make([]model.HistoryEntry, len(s.history))
	for i, e := range s.history {
		e.Seating = e.Seating.Clone()
		out[i] = e
	}
	return out
}

func (s *Session) recompute() {
	s.tally = scoring.Recompute(s.outcomes)
}

func (s *Session) resetGame() {
	s.outcomes = [model.RoundCount]model.RoundOutcome{}
	s.current = 0
}

func (s *Session) saveGame(ctx context.Context) error {
	data, err := encodeGame(s.outcomes, s.tally.Stats, s.current)
	if err != nil {
		return s.persistErr(KeyGame, err)
	}
	if err := s.kv.Set(ctx, KeyGame, data); err != nil {
		return s.persistErr(KeyGame, err)
	}
	return nil
}

// loadHistory reads the history record. A malformed record counts as loaded
// (empty); a read failure leaves the history marked unloaded.
func (s *Session) loadHistory(ctx context.Context) error {
	s.history = nil
	s.historyLoaded = false
	data, ok, err := s.read(ctx, KeyHistory)
	if err != nil {
		return err
	}
	s.historyLoaded = true
	if !ok {
		return nil
	}
	history, err := decodeHistory(data)
	if err != nil {
		return s.malformed(KeyHistory, err)
	}
	s.history = history
	return nil
}

func (s *Session) read(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		return nil, false, s.persistErr(key, err)
	}
	return data, ok, nil
}

func (s *Session) persistErr(key string, err error) error {
	s.log.Warn().Err(err).Str("key", key).Msg("persist-failed")
	return fmt.Errorf("%w: %s: %w", ErrPersistence, key, err)
}

func (s *Session) malformed(key string, err error) error {
	s.log.Warn().Err(err).Str("key", key).Msg("malformed-record-reset")
	return fmt.Errorf("%w: %s: %w", ErrMalformedState, key, err)
}

func checkIndex(index int) error {
	if index < 0 || index >= model.RoundCount {
		return fmt.Errorf("%w: %d (want 0-%d)", ErrInvalidIndex, index, model.RoundCount-1)
	}
	return nil
}
