// Package turns tracks whose turn it is across the players of a round,
// including players holding several hands after a split.
package turns

// ActiveHands reports the hand indexes a player can still act on, in
// ascending order. The sequencer owns no hand state of its own; callers
// supply this view on every transition.
type ActiveHands func(playerID string) []int

// Sequencer walks players in join order, finishing every active hand of a
// player before play passes on.
type Sequencer struct {
	order    []string
	cur      int
	hand     int
	complete bool
}

// New builds a sequencer over the given player ids in join order. The
// round starts un-positioned; call Start before reading Current.
func New(playerIDs []string) *Sequencer {
	order := make([]string, len(playerIDs))
	copy(order, playerIDs)
	return &Sequencer{order: order, cur: -1, hand: -1, complete: len(order) == 0}
}

// Start positions the turn on the first player holding an active hand.
// Returns false if no player can act, in which case the round is already
// complete.
func (s *Sequencer) Start(active ActiveHands) bool {
	for i, id := range s.order {
		if hands := active(id); len(hands) > 0 {
			s.cur = i
			s.hand = hands[0]
			s.complete = false
			return true
		}
	}
	s.markComplete()
	return false
}

// Current returns the player and hand index holding the turn
func (s *Sequencer) Current() (playerID string, handIdx int, ok bool) {
	if s.complete || s.cur < 0 || s.cur >= len(s.order) {
		return "", 0, false
	}
	return s.order[s.cur], s.hand, true
}

// Advance moves the turn forward: first to the current player's next active
// hand at a higher index (split hands finish before play passes on), then
// to the next player in join order holding any active hand, wrapping around
// the table. Returns false when no active hand remains anywhere, which
// signals round completion.
func (s *Sequencer) Advance(active ActiveHands) bool {
	if s.complete || len(s.order) == 0 {
		return false
	}

	// Remaining split hand of the current player comes first.
	if s.cur >= 0 && s.cur < len(s.order) {
		for _, idx := range active(s.order[s.cur]) {
			if idx > s.hand {
				s.hand = idx
				return true
			}
		}
	}

	// Otherwise the next player in join order with any active hand.
	n := len(s.order)
	for step := 1; step <= n; step++ {
		i := (s.cur + step) % n
		if hands := active(s.order[i]); len(hands) > 0 {
			s.cur = i
			s.hand = hands[0]
			return true
		}
	}

	s.markComplete()
	return false
}

// Remove drops a player from the rotation. If that player held the turn the
// sequencer advances to the next eligible player immediately; the caller
// must treat a false return as round completion. Removing a player who is
// not on turn never moves the pointer.
func (s *Sequencer) Remove(playerID string, active ActiveHands) bool {
	idx := -1
	for i, id := range s.order {
		if id == playerID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return !s.complete
	}

	held := idx == s.cur

	s.order = append(s.order[:idx], s.order[idx+1:]...)
	if len(s.order) == 0 {
		s.markComplete()
		return false
	}

	if idx < s.cur {
		s.cur--
	} else if held {
		// Step back so Advance lands on the player now occupying this slot.
		s.cur = idx - 1
		s.hand = int(^uint(0) >> 1) // force hand scan to restart on next player
		return s.Advance(active)
	}

	return !s.complete
}

// RoundComplete reports whether every hand in the round is terminal
func (s *Sequencer) RoundComplete() bool {
	return s.complete
}

// Order returns the players still in the rotation, in join order
func (s *Sequencer) Order() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

func (s *Sequencer) markComplete() {
	s.complete = true
	s.cur = -1
	s.hand = -1
}
