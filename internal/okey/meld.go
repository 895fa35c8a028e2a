// Package okey implements the okey 101 tile game room: dealing from the
// 106-tile set, the draw/discard turn loop, meld validation against the
// round's okey tile, and the opening threshold.
package okey

import (
	"github.com/ardamertdedeoglu/casino-with-friends-sub000/internal/deck"
)

// isWild reports whether the tile plays as a wild. Only the two copies of
// the okey tile itself are wild; the printed jokers are not.
func isWild(t, okey deck.Tile) bool {
	return !t.Joker && t.Color == okey.Color && t.Number == okey.Number
}

// concrete resolves the tile a piece actually plays as. The printed jokers
// stand in for the okey tile's face.
func concrete(t, okey deck.Tile) deck.Tile {
	if t.Joker {
		return deck.Tile{Color: okey.Color, Number: okey.Number}
	}
	return t
}

// FakeJokerPenalty is the fixed value a printed joker adds to a losing
// hand when it was never grouped.
const FakeJokerPenalty = 30

// SetScore validates a set: three or four tiles of one number in distinct
// colours, wilds filling any colour. Returns the group's score and whether
// the group is a valid set. Wilds count zero.
func SetScore(group []deck.Tile, okey deck.Tile) (int, bool) {
	if len(group) < 3 || len(group) > 4 {
		return 0, false
	}

	number := 0
	score := 0
	var seen [4]bool
	for _, t := range group {
		if isWild(t, okey) {
			continue
		}
		c := concrete(t, okey)
		if number == 0 {
			number = c.Number
		} else if c.Number != number {
			return 0, false
		}
		if seen[c.Color] {
			return 0, false
		}
		seen[c.Color] = true
		score += c.Number
	}
	if number == 0 {
		// Every tile wild; nothing anchors the set's number.
		return 0, false
	}

	return score, true
}

// RunScore validates a run as arranged by the player: at least three
// consecutive numbers in one colour, wilds filling gaps. The 13-1 wrap is
// allowed only as a final 1 directly after a 13 (12-13-1); a run may not
// continue past the wrap. Returns the summed face values and validity.
// Wilds count zero.
func RunScore(group []deck.Tile, okey deck.Tile) (int, bool) {
	n := len(group)
	if n < 3 || n > 13 {
		return 0, false
	}

	// Anchor on the first non-wild tile.
	anchor := -1
	for i, t := range group {
		if !isWild(t, okey) {
			anchor = i
			break
		}
	}
	if anchor == -1 {
		return 0, false
	}
	color := concrete(group[anchor], okey).Color

	start := concrete(group[anchor], okey).Number - anchor
	wrapped := false
	if start < 1 {
		// Only a trailing 1 after 13 may wrap; the anchor itself was the 1.
		if anchor != n-1 || concrete(group[anchor], okey).Number != 1 {
			return 0, false
		}
		start = 13 - (n - 2)
		wrapped = true
	}
	if start < 1 || (!wrapped && start+n-1 > 14) {
		return 0, false
	}

	score := 0
	for i, t := range group {
		want := start + i
		if want == 14 {
			if i != n-1 {
				return 0, false
			}
			want = 1
		}
		if want > 13 {
			return 0, false
		}

		if isWild(t, okey) {
			continue
		}
		c := concrete(t, okey)
		if c.Color != color || c.Number != want {
			return 0, false
		}
		score += want
	}

	return score, true
}

// GroupScore validates a group as either a set or a run and returns its
// score. Wild tiles contribute nothing to the score.
func GroupScore(group []deck.Tile, okey deck.Tile) (int, bool) {
	if s, ok := SetScore(group, okey); ok {
		return s, true
	}
	if s, ok := RunScore(group, okey); ok {
		return s, true
	}
	return 0, false
}

// OpeningScore validates every group and sums their scores. Returns the
// total and whether all groups are valid melds.
func OpeningScore(groups [][]deck.Tile, okey deck.Tile) (int, bool) {
	total := 0
	for _, g := range groups {
		s, ok := GroupScore(g, okey)
		if !ok {
			return 0, false
		}
		total += s
	}
	return total, true
}

// HandValue sums the face values left in a hand for end-of-round scoring.
// A held printed joker costs the fixed FakeJokerPenalty; a held okey tile
// counts its own face.
func HandValue(hand []deck.Tile, okey deck.Tile) int {
	total := 0
	for _, t := range hand {
		if t.Joker {
			total += FakeJokerPenalty
			continue
		}
		total += t.Number
	}
	return total
}
