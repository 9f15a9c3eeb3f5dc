package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/mjtally/internal/model"
	"github.com/verte-zerg/mjtally/internal/store"
)

func TestAddPlayer(t *testing.T) {
	ctx := context.Background()
	s := New(store.NewMemory())

	require.NoError(t, s.AddPlayer(ctx, "  Ann "))
	require.ErrorIs(t, s.AddPlayer(ctx, "Ann"), ErrDuplicatePlayer)
	require.ErrorIs(t, s.AddPlayer(ctx, "   "), ErrEmptyName)
	require.NoError(t, s.AddPlayer(ctx, "Bo"))
	assert.Equal(t, []string{"Ann", "Bo"}, s.Players())

	players := s.Players()
	players[0] = "Mallory"
	assert.Equal(t, "Ann", s.Players()[0])
}

func TestRemovePlayerFreesSeat(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	s := New(kv)
	require.NoError(t, s.AddPlayer(ctx, "Ann"))
	require.NoError(t, s.AddPlayer(ctx, "Bo"))
	require.NoError(t, s.AssignSeat(ctx, model.SeatEast, "Ann"))
	require.NoError(t, s.AssignSeat(ctx, model.SeatSouth, "Bo"))

	require.NoError(t, s.RemovePlayer(ctx, "Ann"))
	assert.Equal(t, []string{"Bo"}, s.Players())
	assert.Equal(t, model.Seating{model.SeatSouth: "Bo"}, s.Seating())

	commits := kv.Commits()
	last := commits[len(commits)-1]
	require.Len(t, last, 2)
	assert.Equal(t, KeyPlayers, last[0].Key)
	assert.Equal(t, KeySeating, last[1].Key)

	require.ErrorIs(t, s.RemovePlayer(ctx, "Ann"), ErrUnknownPlayer)
}

func TestAssignSeat(t *testing.T) {
	ctx := context.Background()
	s := New(store.NewMemory())
	require.NoError(t, s.AddPlayer(ctx, "Ann"))

	require.ErrorIs(t, s.AssignSeat(ctx, model.SeatEast, "Bo"), ErrUnknownPlayer)
	require.ErrorIs(t, s.AssignSeat(ctx, model.Seat("X"), "Ann"), ErrUnknownSeat)

	require.NoError(t, s.AssignSeat(ctx, model.SeatEast, "Ann"))
	require.NoError(t, s.AssignSeat(ctx, model.SeatWest, "Ann"))
	assert.Equal(t, model.Seating{model.SeatWest: "Ann"}, s.Seating())

	require.NoError(t, s.AssignSeat(ctx, model.SeatWest, ""))
	assert.Empty(t, s.Seating())
}

func TestCycleSeat(t *testing.T) {
	ctx := context.Background()
	s := New(store.NewMemory())
	for _, name := range []string{"Ann", "Bo", "Cy"} {
		require.NoError(t, s.AddPlayer(ctx, name))
	}
	require.NoError(t, s.AssignSeat(ctx, model.SeatSouth, "Bo"))

	var got []string
	for i := 0; i < 4; i++ {
		name, err := s.CycleSeat(ctx, model.SeatEast)
		require.NoError(t, err)
		got = append(got, name)
	}
	assert.Equal(t, []string{"Ann", "Cy", "", "Ann"}, got)
	assert.Equal(t, "Bo", s.Seating().Name(model.SeatSouth))
}

func TestSeatingSurvivesReload(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemory()
	s := New(kv)
	require.NoError(t, s.AddPlayer(ctx, "Ann"))
	require.NoError(t, s.AssignSeat(ctx, model.SeatNorth, "Ann"))

	reloaded := New(kv)
	require.NoError(t, reloaded.Load(ctx))
	assert.Equal(t, "Ann", reloaded.Seating().Name(model.SeatNorth))
}
