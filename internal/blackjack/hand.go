package blackjack

import (
	"github.com/ardamertdedeoglu/casino-with-friends-sub000/internal/deck"
)

// HandStatus tracks where a hand is in its lifecycle for the round
type HandStatus string

const (
	HandActive HandStatus = "active"
	HandStood  HandStatus = "stood"
	HandBusted HandStatus = "busted"
)

// Hand is one independently scored and resolved run of cards. A player
// normally holds one; a split creates a second. Once Status leaves
// HandActive the hand is immutable for the rest of the round.
type Hand struct {
	Cards     []deck.Card `json:"cards"`
	Bet       int         `json:"bet"`
	Score     int         `json:"score"`
	Status    HandStatus  `json:"status"`
	Blackjack bool        `json:"blackjack"`
	Doubled   bool        `json:"doubled"`
}

// NewHand creates an empty active hand carrying the given wager
func NewHand(bet int) *Hand {
	return &Hand{Bet: bet, Status: HandActive}
}

// AddCard appends a card and recomputes the score immediately. The score is
// never left stale: busting is flagged the instant it happens.
func (h *Hand) AddCard(c deck.Card) {
	h.Cards = append(h.Cards, c)
	h.Score = ScoreCards(h.Cards)
	if h.Score > 21 {
		h.Status = HandBusted
	}
}

// MarkDealtBlackjack flags a two-card 21 from the opening deal. Only the
// original deal qualifies for the blackjack payout; a 21 reached by hitting,
// or a two-card 21 assembled after a split, pays as an ordinary win.
func (h *Hand) MarkDealtBlackjack() {
	if len(h.Cards) == 2 && h.Score == 21 {
		h.Blackjack = true
		h.Status = HandStood
	}
}

// Stand marks the hand stood
func (h *Hand) Stand() {
	if h.Status == HandActive {
		h.Status = HandStood
	}
}

// IsBust reports whether the hand went over 21
func (h *Hand) IsBust() bool {
	return h.Status == HandBusted
}

// ScoreCards computes the blackjack score of a card sequence. Each Ace
// starts at 11 and is re-counted as 1, one at a time, while the total
// exceeds 21.
func ScoreCards(cards []deck.Card) int {
	total := 0
	softAces := 0

	for _, c := range cards {
		total += c.BlackjackValue()
		if c.IsAce() {
			softAces++
		}
	}

	for total > 21 && softAces > 0 {
		total -= 10
		softAces--
	}

	return total
}

// DealerHand is the house's hand. The first card stays concealed until the
// dealer's turn begins; snapshots must never expose it while Hidden is true.
type DealerHand struct {
	Cards     []deck.Card `json:"-"`
	Score     int         `json:"score"`
	Blackjack bool        `json:"blackjack"`
	Hidden    bool        `json:"hidden"`
}

// AddCard appends a card and recomputes the visible-aware score
func (d *DealerHand) AddCard(c deck.Card) {
	d.Cards = append(d.Cards, c)
	d.recompute()
}

// Reveal uncovers the hidden card and recomputes the full score
func (d *DealerHand) Reveal() {
	d.Hidden = false
	d.recompute()
	if len(d.Cards) == 2 && d.Score == 21 {
		d.Blackjack = true
	}
}

// VisibleCards returns only the cards a snapshot may show
func (d *DealerHand) VisibleCards() []deck.Card {
	if !d.Hidden || len(d.Cards) == 0 {
		out := make([]deck.Card, len(d.Cards))
		copy(out, d.Cards)
		return out
	}
	out := make([]deck.Card, len(d.Cards)-1)
	copy(out, d.Cards[1:])
	return out
}

// UpCard returns the dealer's face-up card. The concealed card is always
// the first dealt, so the up card is the second.
func (d *DealerHand) UpCard() (deck.Card, bool) {
	if len(d.Cards) < 2 {
		return deck.Card{}, false
	}
	return d.Cards[1], true
}

// IsBust reports whether the dealer went over 21
func (d *DealerHand) IsBust() bool {
	return d.Score > 21
}

func (d *DealerHand) recompute() {
	if d.Hidden {
		d.Score = ScoreCards(d.VisibleCards())
		return
	}
	d.Score = ScoreCards(d.Cards)
}
