package session

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/verte-zerg/mjtally/internal/model"
	"github.com/verte-zerg/mjtally/internal/store"
)

// Players returns the roster in insertion order.
func (s *Session) Players() []string {
	return slices.Clone(s.players)
}

// Seating returns a copy of the current seat assignments.
func (s *Session) Seating() model.Seating {
	return s.seating.Clone()
}

// AddPlayer appends a trimmed, unique name to the roster.
func (s *Session) AddPlayer(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	if slices.Contains(s.players, name) {
		return fmt.Errorf("%w: %s", ErrDuplicatePlayer, name)
	}
	s.players = append(s.players, name)
	return s.savePlayers(ctx)
}

// RemovePlayer drops a name from the roster and frees any seat it held.
func (s *Session) RemovePlayer(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	idx := slices.Index(s.players, name)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownPlayer, name)
	}
	s.players = slices.Delete(s.players, idx, idx+1)
	for seat, seated := range s.seating {
		if seated == name {
			delete(s.seating, seat)
		}
	}

	players, err := encodePlayers(s.players)
	if err != nil {
		return s.persistErr(KeyPlayers, err)
	}
	seating, err := encodeSeating(s.seating)
	if err != nil {
		return s.persistErr(KeySeating, err)
	}
	if err := s.kv.Commit(ctx,
		store.Write{Key: KeyPlayers, Value: players},
		store.Write{Key: KeySeating, Value: seating},
	); err != nil {
		return s.persistErr(KeyPlayers, err)
	}
	return nil
}

// AssignSeat seats a roster player. An empty name frees the seat.
// A player holds at most one seat, so assigning moves them.
func (s *Session) AssignSeat(ctx context.Context, seat model.Seat, name string) error {
	if !seat.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownSeat, seat)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		delete(s.seating, seat)
		return s.saveSeating(ctx)
	}
	if !slices.Contains(s.players, name) {
		return fmt.Errorf("%w: %s", ErrUnknownPlayer, name)
	}
	for other, seated := range s.seating {
		if seated == name && other != seat {
			delete(s.seating, other)
		}
	}
	s.seating[seat] = name
	return s.saveSeating(ctx)
}

// CycleSeat assigns the next roster player (or nobody) to seat, skipping
// players seated elsewhere. It returns the new occupant.
func (s *Session) CycleSeat(ctx context.Context, seat model.Seat) (string, error) {
	if !seat.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownSeat, seat)
	}
	options := []string{""}
	for _, name := range s.players {
		taken := false
		for other, seated := range s.seating {
			if seated == name && other != seat {
				taken = true
				break
			}
		}
		if !taken {
			options = append(options, name)
		}
	}
	next := options[(slices.Index(options, s.seating[seat])+1)%len(options)]
	return next, s.AssignSeat(ctx, seat, next)
}

func (s *Session) savePlayers(ctx context.Context) error {
	data, err := encodePlayers(s.players)
	if err != nil {
		return s.persistErr(KeyPlayers, err)
	}
	if err := s.kv.Set(ctx, KeyPlayers, data); err != nil {
		return s.persistErr(KeyPlayers, err)
	}
	return nil
}

func (s *Session) saveSeating(ctx context.Context) error {
	data, err := encodeSeating(s.seating)
	if err != nil {
		return s.persistErr(KeySeating, err)
	}
	if err := s.kv.Set(ctx, KeySeating, data); err != nil {
		return s.persistErr(KeySeating, err)
	}
	return nil
}
