package turns

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// handTable is a simple fixture mapping player ids to active hand indexes.
type handTable map[string][]int

func (h handTable) active(playerID string) []int { return h[playerID] }

func TestStartPositionsOnFirstActivePlayer(t *testing.T) {
	t.Parallel()

	hands := handTable{"a": {0}, "b": {0}, "c": {0}}
	s := New([]string{"a", "b", "c"})

	require.True(t, s.Start(hands.active))
	player, hand, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, "a", player)
	assert.Equal(t, 0, hand)
}

func TestStartSkipsTerminalPlayers(t *testing.T) {
	t.Parallel()

	hands := handTable{"a": nil, "b": {0}}
	s := New([]string{"a", "b"})

	require.True(t, s.Start(hands.active))
	player, _, _ := s.Current()
	assert.Equal(t, "b", player)
}

func TestStartWithNoActiveHandsCompletesRound(t *testing.T) {
	t.Parallel()

	hands := handTable{"a": nil, "b": nil}
	s := New([]string{"a", "b"})

	assert.False(t, s.Start(hands.active))
	assert.True(t, s.RoundComplete())
}

func TestAdvanceIsCyclicWhileHandsRemainActive(t *testing.T) {
	t.Parallel()

	hands := handTable{"a": {0}, "b": {0}, "c": {0}, "d": {0}}
	s := New([]string{"a", "b", "c", "d"})
	require.True(t, s.Start(hands.active))

	for i := 0; i < 4; i++ {
		require.True(t, s.Advance(hands.active), "advance %d", i)
	}

	player, _, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, "a", player, "N advances over N single-hand players must return to the first")
}

func TestAdvanceVisitsSplitHandsBeforeNextPlayer(t *testing.T) {
	t.Parallel()

	hands := handTable{"a": {0, 1}, "b": {0}}
	s := New([]string{"a", "b"})
	require.True(t, s.Start(hands.active))

	require.True(t, s.Advance(hands.active))
	player, hand, _ := s.Current()
	assert.Equal(t, "a", player)
	assert.Equal(t, 1, hand, "second split hand plays before the turn passes")

	hands["a"] = nil
	require.True(t, s.Advance(hands.active))
	player, hand, _ = s.Current()
	assert.Equal(t, "b", player)
	assert.Equal(t, 0, hand)
}

func TestAdvanceSignalsRoundComplete(t *testing.T) {
	t.Parallel()

	hands := handTable{"a": {0}, "b": {0}}
	s := New([]string{"a", "b"})
	require.True(t, s.Start(hands.active))

	hands["a"] = nil
	require.True(t, s.Advance(hands.active))

	hands["b"] = nil
	assert.False(t, s.Advance(hands.active))
	assert.True(t, s.RoundComplete())

	_, _, ok := s.Current()
	assert.False(t, ok)
}

func TestRemoveOffTurnKeepsPointer(t *testing.T) {
	t.Parallel()

	hands := handTable{"a": {0}, "b": {0}, "c": {0}}
	s := New([]string{"a", "b", "c"})
	require.True(t, s.Start(hands.active))
	require.True(t, s.Advance(hands.active)) // turn on b

	delete(hands, "c")
	require.True(t, s.Remove("c", hands.active))

	player, _, _ := s.Current()
	assert.Equal(t, "b", player)
	assert.Equal(t, []string{"a", "b"}, s.Order())
}

func TestRemoveOnTurnReassignsSynchronously(t *testing.T) {
	t.Parallel()

	hands := handTable{"a": {0}, "b": {0}, "c": {0}}
	s := New([]string{"a", "b", "c"})
	require.True(t, s.Start(hands.active))
	require.True(t, s.Advance(hands.active)) // turn on b

	delete(hands, "b")
	require.True(t, s.Remove("b", hands.active))

	player, _, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, "c", player)
}

func TestRemoveOnTurnBeforeEarlierIndexAdjusts(t *testing.T) {
	t.Parallel()

	hands := handTable{"a": {0}, "b": {0}, "c": {0}}
	s := New([]string{"a", "b", "c"})
	require.True(t, s.Start(hands.active))
	require.True(t, s.Advance(hands.active))
	require.True(t, s.Advance(hands.active)) // turn on c

	delete(hands, "a")
	require.True(t, s.Remove("a", hands.active))

	player, _, _ := s.Current()
	assert.Equal(t, "c", player)
}

func TestRemoveLastActivePlayerCompletesRound(t *testing.T) {
	t.Parallel()

	hands := handTable{"a": {0}, "b": nil}
	s := New([]string{"a", "b"})
	require.True(t, s.Start(hands.active))

	delete(hands, "a")
	assert.False(t, s.Remove("a", hands.active))
	assert.True(t, s.RoundComplete())
}

func TestRemoveFinalPlayer(t *testing.T) {
	t.Parallel()

	hands := handTable{"a": {0}}
	s := New([]string{"a"})
	require.True(t, s.Start(hands.active))

	delete(hands, "a")
	assert.False(t, s.Remove("a", hands.active))
	assert.True(t, s.RoundComplete())
	assert.Empty(t, s.Order())
}
