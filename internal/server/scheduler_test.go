package server

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardamertdedeoglu/casino-with-friends-sub000/internal/blackjack"
)

const stepDelay = 800 * time.Millisecond

// dealRound seats one player, takes a bet and plays the hand to the point
// where the dealer is due. With a single player a dealt natural leaves no
// turn to stand on, so standing is conditional.
func dealRound(t *testing.T, reg *Registry, roomID string) *Entry {
	t.Helper()
	ctx := context.Background()

	e, err := reg.Join(roomID, GameBlackjack, "p1", "Alice")
	require.NoError(t, err)

	require.NoError(t, reg.Do(roomID, func(e *Entry) error {
		if err := e.Blackjack.PlaceBet(ctx, "p1", 100); err != nil {
			return err
		}
		if err := e.Blackjack.StartRound(ctx); err != nil {
			return err
		}
		if e.Blackjack.CurrentTurn() == "p1" {
			return e.Blackjack.Stand("p1")
		}
		return nil
	}))
	return e
}

func pending(e *Entry) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dealerPending
}

func TestDealerRunsOneStepPerTick(t *testing.T) {
	ctx := context.Background()
	mClock := quartz.NewMock(t)
	reg := newTestRegistry(t)
	sched := NewDealerScheduler(mClock, stepDelay, log.New(io.Discard))

	e := dealRound(t, reg, "R00M01")

	var broadcasts int
	sched.Kick(e, func() { broadcasts++ })
	require.True(t, pending(e))
	assert.Zero(t, broadcasts, "nothing happens before the delay elapses")

	// The hole card is still down until the first tick.
	require.NoError(t, reg.Do("R00M01", func(e *Entry) error {
		assert.Equal(t, 1, e.Blackjack.Snapshot().Dealer.HoleCount)
		return nil
	}))

	mClock.Advance(stepDelay).MustWait(ctx)
	require.NoError(t, reg.Do("R00M01", func(e *Entry) error {
		assert.Zero(t, e.Blackjack.Snapshot().Dealer.HoleCount, "first step reveals")
		return nil
	}))
	assert.Equal(t, 1, broadcasts)

	advances := 1
	for i := 0; i < 20; i++ {
		var phase blackjack.Phase
		require.NoError(t, reg.Do("R00M01", func(e *Entry) error {
			phase = e.Blackjack.Phase()
			return nil
		}))
		if phase == blackjack.PhaseFinished {
			break
		}
		mClock.Advance(stepDelay).MustWait(ctx)
		advances++
	}

	require.NoError(t, reg.Do("R00M01", func(e *Entry) error {
		assert.Equal(t, blackjack.PhaseFinished, e.Blackjack.Phase())
		return nil
	}))
	assert.False(t, pending(e))
	assert.Equal(t, advances, broadcasts, "every applied step broadcasts exactly once")
}

func TestResetInvalidatesScheduledSteps(t *testing.T) {
	ctx := context.Background()
	mClock := quartz.NewMock(t)
	reg := newTestRegistry(t)
	sched := NewDealerScheduler(mClock, stepDelay, log.New(io.Discard))

	e := dealRound(t, reg, "R00M01")

	var broadcasts int
	sched.Kick(e, func() { broadcasts++ })
	require.True(t, pending(e))

	// Reset the room between the kick and the first tick.
	require.NoError(t, reg.Do("R00M01", func(e *Entry) error {
		e.Blackjack.Reset(ctx, true)
		return nil
	}))

	mClock.Advance(stepDelay).MustWait(ctx)

	assert.Zero(t, broadcasts, "stale step must not broadcast")
	assert.False(t, pending(e))
	require.NoError(t, reg.Do("R00M01", func(e *Entry) error {
		assert.Equal(t, blackjack.PhaseWaiting, e.Blackjack.Phase())
		// Reset handed the dealer a fresh empty hand; the dropped step
		// never revealed anything.
		dealer := e.Blackjack.Snapshot().Dealer
		assert.Empty(t, dealer.Cards)
		assert.Zero(t, dealer.HoleCount)
		return nil
	}))
}

func TestLeaveCompletingRoundStartsDealer(t *testing.T) {
	ctx := context.Background()
	mClock := quartz.NewMock(t)
	reg := newTestRegistry(t)
	sched := NewDealerScheduler(mClock, stepDelay, log.New(io.Discard))
	srv := NewServer("localhost:0", reg, sched, log.New(io.Discard))

	e, err := reg.Join("R00M01", GameBlackjack, "p1", "Alice")
	require.NoError(t, err)
	_, err = reg.Join("R00M01", GameBlackjack, "p2", "Bob")
	require.NoError(t, err)

	require.NoError(t, reg.Do("R00M01", func(e *Entry) error {
		if err := e.Blackjack.PlaceBet(ctx, "p1", 100); err != nil {
			return err
		}
		if err := e.Blackjack.PlaceBet(ctx, "p2", 100); err != nil {
			return err
		}
		return e.Blackjack.StartRound(ctx)
	}))

	// Alice stands if she holds the turn; Bob departs while his hand is
	// the last thing keeping the round open.
	require.NoError(t, reg.Do("R00M01", func(e *Entry) error {
		if e.Blackjack.CurrentTurn() == "p1" {
			return e.Blackjack.Stand("p1")
		}
		return nil
	}))
	require.NoError(t, reg.Leave(ctx, "R00M01", "p2"))

	// Both the leave handler and the disconnect cleanup follow a leave
	// with a room state broadcast; that must schedule the dealer.
	srv.BroadcastRoomState("R00M01")
	require.True(t, pending(e), "leave left the dealer due but unscheduled")

	for i := 0; i < 20; i++ {
		var phase blackjack.Phase
		require.NoError(t, reg.Do("R00M01", func(e *Entry) error {
			phase = e.Blackjack.Phase()
			return nil
		}))
		if phase == blackjack.PhaseFinished {
			break
		}
		mClock.Advance(stepDelay).MustWait(ctx)
	}

	require.NoError(t, reg.Do("R00M01", func(e *Entry) error {
		assert.Equal(t, blackjack.PhaseFinished, e.Blackjack.Phase())
		return nil
	}))
	assert.False(t, pending(e))
}

func TestKickIsIdempotentWhilePending(t *testing.T) {
	ctx := context.Background()
	mClock := quartz.NewMock(t)
	reg := newTestRegistry(t)
	sched := NewDealerScheduler(mClock, stepDelay, log.New(io.Discard))

	e := dealRound(t, reg, "R00M01")

	var broadcasts int
	sched.Kick(e, func() { broadcasts++ })
	sched.Kick(e, func() { broadcasts++ })
	require.True(t, pending(e))

	// A single chain means a single step fires on the first tick.
	mClock.Advance(stepDelay).MustWait(ctx)
	assert.Equal(t, 1, broadcasts)
}

func TestKickIgnoresRoomsWithNoDealerDue(t *testing.T) {
	mClock := quartz.NewMock(t)
	reg := newTestRegistry(t)
	sched := NewDealerScheduler(mClock, stepDelay, log.New(io.Discard))

	// Waiting phase, no dealer due.
	e, err := reg.Join("R00M01", GameBlackjack, "p1", "Alice")
	require.NoError(t, err)
	sched.Kick(e, func() { t.Fatal("broadcast on an idle room") })
	assert.False(t, pending(e))

	// Non-blackjack rooms have no dealer at all.
	d, err := reg.Join("R00M02", GameDice, "p1", "Alice")
	require.NoError(t, err)
	sched.Kick(d, func() { t.Fatal("broadcast on a dice room") })
	assert.False(t, pending(d))
}
