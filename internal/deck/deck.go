package deck

import (
	"errors"
	"fmt"
	rand "math/rand/v2"
)

// ErrExhausted is returned when a draw is attempted on an empty deck or
// tile pile. It is fatal to the current round and must never be swallowed.
var ErrExhausted = errors.New("deck exhausted")

// Deck represents one or more standard 52-card packs shuffled together
type Deck struct {
	cards []Card
	rng   *rand.Rand
}

// New creates a shuffled deck built from deckCount standard 52-card packs.
func New(deckCount int, rng *rand.Rand) *Deck {
	if deckCount < 1 {
		deckCount = 1
	}

	d := &Deck{
		cards: make([]Card, 0, deckCount*52),
		rng:   rng,
	}

	for i := 0; i < deckCount; i++ {
		for suit := Spades; suit <= Clubs; suit++ {
			for rank := Two; rank <= Ace; rank++ {
				d.cards = append(d.cards, NewCard(suit, rank))
			}
		}
	}

	d.Shuffle()
	return d
}

// Shuffle randomizes the order of cards with an in-place Fisher-Yates pass
func (d *Deck) Shuffle() {
	for i := len(d.cards) - 1; i > 0; i-- {
		j := d.rng.IntN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// Draw removes and returns the top card from the deck
func (d *Deck) Draw() (Card, error) {
	if len(d.cards) == 0 {
		return Card{}, ErrExhausted
	}

	card := d.cards[0]
	d.cards = d.cards[1:]
	return card, nil
}

// Remaining returns the number of cards left in the deck
func (d *Deck) Remaining() int {
	return len(d.cards)
}

// Rig replaces the deck contents so the given cards come off the top in
// order. Used by tests to build deterministic scenarios.
func (d *Deck) Rig(cards ...Card) {
	d.cards = append(cards, d.cards...)
}

// String describes the deck for logging
func (d *Deck) String() string {
	return fmt.Sprintf("deck(%d cards)", len(d.cards))
}
