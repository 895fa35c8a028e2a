package blackjack

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ardamertdedeoglu/casino-with-friends-sub000/internal/deck"
)

func handWith(bet int, ranks ...deck.Rank) *Hand {
	h := NewHand(bet)
	for i, r := range ranks {
		h.AddCard(deck.NewCard(deck.Suit(i%4), r))
	}
	return h
}

func dealtBlackjack(bet int) *Hand {
	h := handWith(bet, deck.Ace, deck.King)
	h.MarkDealtBlackjack()
	return h
}

func revealedDealer(ranks ...deck.Rank) *DealerHand {
	d := &DealerHand{Hidden: true}
	for i, r := range ranks {
		d.AddCard(deck.NewCard(deck.Suit((i+2)%4), r))
	}
	d.Reveal()
	return d
}

func TestResolveHand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		hand     *Hand
		dealer   *DealerHand
		outcome  Outcome
		reason   string
		returned int
	}{
		{"blackjack pays three to two", dealtBlackjack(100), revealedDealer(deck.Ten, deck.Nine), OutcomeWin, ReasonBlackjack, 250},
		{"blackjack against dealer blackjack pushes", dealtBlackjack(100), revealedDealer(deck.Ace, deck.King), OutcomePush, ReasonPush, 100},
		{"bust always loses", handWith(100, deck.Ten, deck.Nine, deck.Five), revealedDealer(deck.Ten, deck.Six, deck.King), OutcomeLoss, ReasonBusted, 0},
		{"dealer blackjack beats ordinary twenty", handWith(100, deck.Ten, deck.Queen), revealedDealer(deck.Ace, deck.King), OutcomeLoss, ReasonDealerBlackjack, 0},
		{"dealer bust pays even money", handWith(100, deck.Ten, deck.Eight), revealedDealer(deck.Ten, deck.Six, deck.King), OutcomeWin, ReasonDealerBusted, 200},
		{"higher score wins", handWith(100, deck.Ten, deck.Nine), revealedDealer(deck.Ten, deck.Eight), OutcomeWin, ReasonHigherScore, 200},
		{"lower score loses", handWith(100, deck.Ten, deck.Nine), revealedDealer(deck.Ten, deck.Six, deck.Five), OutcomeLoss, ReasonLowerScore, 0},
		{"equal score pushes", handWith(100, deck.Ten, deck.Nine), revealedDealer(deck.Ten, deck.Nine), OutcomePush, ReasonPush, 100},
		{"hit twenty-one is not blackjack pay", handWith(100, deck.Seven, deck.Seven, deck.Seven), revealedDealer(deck.Ten, deck.Eight), OutcomeWin, ReasonHigherScore, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := resolveHand(tt.hand, tt.dealer)
			assert.Equal(t, tt.outcome, r.Outcome)
			assert.Equal(t, tt.reason, r.Reason)
			assert.Equal(t, tt.returned, r.Returned)
			assert.Equal(t, tt.returned-tt.hand.Bet, r.Net)
		})
	}
}

func TestResolveHandPayoutProperties(t *testing.T) {
	t.Parallel()

	// Blackjack against a non-blackjack dealer nets +150 on a 100 bet.
	r := resolveHand(dealtBlackjack(100), revealedDealer(deck.Ten, deck.Seven))
	assert.Equal(t, 150, r.Net)
	assert.Equal(t, 250, r.Returned)

	// A push returns exactly the wager, net zero.
	r = resolveHand(handWith(100, deck.Ten, deck.Seven), revealedDealer(deck.Ten, deck.Seven))
	assert.Equal(t, 0, r.Net)
	assert.Equal(t, 100, r.Returned)

	// A bust nets -100 even though the dealer busts harder later.
	r = resolveHand(handWith(100, deck.Ten, deck.Nine, deck.Five), revealedDealer(deck.Ten, deck.Six, deck.King))
	assert.Equal(t, -100, r.Net)
}

func TestResolvePlayerInsuranceIndependence(t *testing.T) {
	t.Parallel()

	// Dealer blackjack: main hand loses, insurance pays 2:1 regardless.
	p := &Player{ID: "p1", Name: "Alice", Hands: []*Hand{handWith(100, deck.Ten, deck.Nine)}, InsuranceBet: 50}
	res := resolvePlayer(p, revealedDealer(deck.King, deck.Ace))

	assert.Equal(t, OutcomeLoss, res.Outcome)
	assert.Equal(t, 150, res.InsuranceReturned, "insurance returns stake plus 2x")
	assert.Equal(t, 150, res.Wagered)
	assert.Equal(t, 150, res.Returned)
	assert.Equal(t, 0, res.Net)

	// No dealer blackjack: the insurance stake is forfeited.
	p2 := &Player{ID: "p2", Name: "Bob", Hands: []*Hand{handWith(100, deck.Ten, deck.Nine)}, InsuranceBet: 50}
	res2 := resolvePlayer(p2, revealedDealer(deck.Seven, deck.Ace))

	assert.Equal(t, OutcomeWin, res2.Outcome)
	assert.Equal(t, 0, res2.InsuranceReturned)
	assert.Equal(t, 200-150, res2.Net, "win pays 200 but 150 was staked in total")
}

func TestResolvePlayerMixedSplitOutcome(t *testing.T) {
	t.Parallel()

	p := &Player{
		ID:   "p1",
		Name: "Carol",
		Hands: []*Hand{
			handWith(100, deck.Ten, deck.Nine),            // 19 beats dealer 18
			handWith(100, deck.Ten, deck.Five, deck.King), // busted
		},
	}
	res := resolvePlayer(p, revealedDealer(deck.Ten, deck.Eight))

	assert.Equal(t, OutcomeMixed, res.Outcome)
	assert.Equal(t, 200, res.Wagered)
	assert.Equal(t, 200, res.Returned)
	assert.Equal(t, 0, res.Net)
}

func TestResolvePlayerAllPushes(t *testing.T) {
	t.Parallel()

	p := &Player{ID: "p1", Name: "Dan", Hands: []*Hand{handWith(100, deck.Ten, deck.Eight)}}
	res := resolvePlayer(p, revealedDealer(deck.Ten, deck.Eight))

	assert.Equal(t, OutcomePush, res.Outcome)
	assert.Equal(t, 0, res.Net)
}
