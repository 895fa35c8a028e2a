package deck

import (
	"testing"

	"github.com/ardamertdedeoglu/casino-with-friends-sub000/internal/randutil"
)

func TestNewDeckSize(t *testing.T) {
	t.Parallel()

	for _, count := range []int{1, 2, 4, 6} {
		d := New(count, randutil.New(1))
		if d.Remaining() != count*52 {
			t.Errorf("deck count %d: expected %d cards, got %d", count, count*52, d.Remaining())
		}
	}
}

func TestDrawAllCardsUnique(t *testing.T) {
	t.Parallel()

	d := New(2, randutil.New(42))
	seen := make(map[Card]int)

	for d.Remaining() > 0 {
		card, err := d.Draw()
		if err != nil {
			t.Fatalf("unexpected draw error: %v", err)
		}
		seen[card]++
	}

	if len(seen) != 52 {
		t.Errorf("expected 52 distinct cards across 2 decks, got %d", len(seen))
	}
	for card, n := range seen {
		if n != 2 {
			t.Errorf("card %s drawn %d times, expected 2", card, n)
		}
	}
}

func TestDrawExhaustedSurfacesError(t *testing.T) {
	t.Parallel()

	d := New(1, randutil.New(7))
	for i := 0; i < 52; i++ {
		if _, err := d.Draw(); err != nil {
			t.Fatalf("draw %d failed: %v", i, err)
		}
	}

	if _, err := d.Draw(); err != ErrExhausted {
		t.Errorf("expected ErrExhausted, got %v", err)
	}
}

func TestShuffleDeterministicWithSeed(t *testing.T) {
	t.Parallel()

	a := New(1, randutil.New(99))
	b := New(1, randutil.New(99))

	for a.Remaining() > 0 {
		ca, _ := a.Draw()
		cb, _ := b.Draw()
		if ca != cb {
			t.Fatalf("same seed produced different orders: %s vs %s", ca, cb)
		}
	}
}

func TestRigPlacesCardsOnTop(t *testing.T) {
	t.Parallel()

	d := New(1, randutil.New(3))
	d.Rig(NewCard(Spades, Ten), NewCard(Hearts, Nine))

	first, _ := d.Draw()
	second, _ := d.Draw()
	if first != NewCard(Spades, Ten) || second != NewCard(Hearts, Nine) {
		t.Errorf("rigged cards not drawn in order: %s, %s", first, second)
	}
}

func TestBlackjackValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		card Card
		want int
	}{
		{NewCard(Spades, Two), 2},
		{NewCard(Hearts, Nine), 9},
		{NewCard(Diamonds, Ten), 10},
		{NewCard(Clubs, Jack), 10},
		{NewCard(Spades, Queen), 10},
		{NewCard(Hearts, King), 10},
		{NewCard(Diamonds, Ace), 11},
	}

	for _, tt := range tests {
		if got := tt.card.BlackjackValue(); got != tt.want {
			t.Errorf("%s: expected value %d, got %d", tt.card, tt.want, got)
		}
	}
}
