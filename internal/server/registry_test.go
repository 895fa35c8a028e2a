package server

import (
	"context"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardamertdedeoglu/casino-with-friends-sub000/internal/bank"
	"github.com/ardamertdedeoglu/casino-with-friends-sub000/internal/blackjack"
	"github.com/ardamertdedeoglu/casino-with-friends-sub000/internal/liarsdice"
	"github.com/ardamertdedeoglu/casino-with-friends-sub000/internal/okey"
)

func testDefaults() GameDefaults {
	return GameDefaults{
		Blackjack:       blackjack.DefaultSettings(),
		BlackjackPolicy: blackjack.StandardPolicy,
		Dice:            liarsdice.DefaultSettings(),
		Okey:            okey.DefaultSettings(),
	}
}

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	return NewRegistry(bank.NewMemoryLedger(1000), testDefaults(), 1, log.New(io.Discard))
}

func TestJoinCreatesRoomOnFirstUse(t *testing.T) {
	t.Parallel()
	reg := newTestRegistry(t)

	e, err := reg.Join("R00M01", GameBlackjack, "p1", "Alice")
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, GameBlackjack, e.Type)
	require.NotNil(t, e.Blackjack)
	assert.Equal(t, 1, reg.Count())

	// A second join lands in the same room.
	e2, err := reg.Join("R00M01", GameBlackjack, "p2", "Bob")
	require.NoError(t, err)
	assert.Same(t, e, e2)
	assert.Equal(t, 1, reg.Count())
}

func TestJoinNormalizesRoomCodes(t *testing.T) {
	t.Parallel()
	reg := newTestRegistry(t)

	e, err := reg.Join("r00m01", GameDice, "p1", "Alice")
	require.NoError(t, err)

	// Lowercase and the O/0 lookalike map onto the same room.
	e2, err := reg.Join("ROOM01", GameDice, "p2", "Bob")
	require.NoError(t, err)
	assert.Same(t, e, e2)
}

func TestJoinRejectsMalformedRoomCodes(t *testing.T) {
	t.Parallel()
	reg := newTestRegistry(t)

	_, err := reg.Join("AB", GameBlackjack, "p1", "Alice")
	require.Error(t, err)

	_, err = reg.Join("ROOM-1", GameBlackjack, "p1", "Alice")
	require.Error(t, err)
	assert.Equal(t, 0, reg.Count())
}

func TestJoinRejectsUnknownGameType(t *testing.T) {
	t.Parallel()
	reg := newTestRegistry(t)

	_, err := reg.Join("R00M01", GameType("roulette"), "p1", "Alice")
	require.ErrorIs(t, err, ErrUnknownGameType)
	assert.Equal(t, 0, reg.Count())
}

func TestJoinRejectsGameTypeMismatch(t *testing.T) {
	t.Parallel()
	reg := newTestRegistry(t)

	_, err := reg.Join("R00M01", GameBlackjack, "p1", "Alice")
	require.NoError(t, err)

	_, err = reg.Join("R00M01", GameOkey, "p2", "Bob")
	require.ErrorIs(t, err, ErrGameTypeInUse)

	// The original room is untouched.
	e := reg.Get("R00M01")
	require.NotNil(t, e)
	assert.Equal(t, GameBlackjack, e.Type)
}

func TestFailedFirstJoinLeavesNoRoomBehind(t *testing.T) {
	t.Parallel()
	reg := newTestRegistry(t)

	_, err := reg.Join("R00M01", GameOkey, "p1", "Alice")
	require.NoError(t, err)
	_, err = reg.Join("R00M01", GameOkey, "p2", "Bob")
	require.NoError(t, err)
	_, err = reg.Join("R00M01", GameOkey, "p3", "Carol")
	require.NoError(t, err)
	_, err = reg.Join("R00M01", GameOkey, "p4", "Dave")
	require.NoError(t, err)

	// Room is full; the fifth join fails but the room lives on.
	_, err = reg.Join("R00M01", GameOkey, "p5", "Eve")
	require.ErrorIs(t, err, okey.ErrRoomFull)
	assert.Equal(t, 1, reg.Count())
}

func TestLeaveDestroysEmptyRoom(t *testing.T) {
	t.Parallel()
	reg := newTestRegistry(t)
	ctx := context.Background()

	_, err := reg.Join("R00M01", GameBlackjack, "p1", "Alice")
	require.NoError(t, err)
	_, err = reg.Join("R00M01", GameBlackjack, "p2", "Bob")
	require.NoError(t, err)

	require.NoError(t, reg.Leave(ctx, "R00M01", "p1"))
	assert.Equal(t, 1, reg.Count())

	require.NoError(t, reg.Leave(ctx, "R00M01", "p2"))
	assert.Equal(t, 0, reg.Count())
	assert.Nil(t, reg.Get("R00M01"))

	// A fresh join after destruction gets a brand new room.
	e, err := reg.Join("R00M01", GameDice, "p1", "Alice")
	require.NoError(t, err)
	assert.Equal(t, GameDice, e.Type)
}

func TestLeaveUnknownRoom(t *testing.T) {
	t.Parallel()
	reg := newTestRegistry(t)

	err := reg.Leave(context.Background(), "R00M01", "p1")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestDoDispatchesUnderRoomLock(t *testing.T) {
	t.Parallel()
	reg := newTestRegistry(t)

	_, err := reg.Join("R00M01", GameBlackjack, "p1", "Alice")
	require.NoError(t, err)

	var seen GameType
	err = reg.Do("R00M01", func(e *Entry) error {
		seen = e.Type
		return e.Blackjack.PlaceBet(context.Background(), "p1", 100)
	})
	require.NoError(t, err)
	assert.Equal(t, GameBlackjack, seen)

	err = reg.Do("NOSUCH", func(e *Entry) error { return nil })
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestRoomsAreIsolated(t *testing.T) {
	t.Parallel()
	reg := newTestRegistry(t)

	_, err := reg.Join("R00M01", GameBlackjack, "p1", "Alice")
	require.NoError(t, err)
	_, err = reg.Join("R00M02", GameBlackjack, "p1", "Alice")
	require.NoError(t, err)
	assert.Equal(t, 2, reg.Count())

	// Destroying one room leaves the other alone.
	require.NoError(t, reg.Leave(context.Background(), "R00M02", "p1"))
	assert.Equal(t, 1, reg.Count())
	assert.NotNil(t, reg.Get("R00M01"))
}
