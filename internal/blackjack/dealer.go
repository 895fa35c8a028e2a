package blackjack

// DealerPolicy decides whether the dealer draws another card. It is a pure
// function of the dealer's current score and the scores of every player
// hand still standing (not busted, not blackjack), so policies stay
// deterministic and unit-testable away from timers.
type DealerPolicy func(dealerScore int, playerScores []int) bool

// StandardPolicy is the traditional house rule: hit while below 17, stand
// on 17 or better.
func StandardPolicy(dealerScore int, playerScores []int) bool {
	return dealerScore < 17
}

// AdaptivePolicy plays against the table instead of the rulebook: it keeps
// hitting while any surviving player hand beats the dealer, even past 17,
// and stands early the moment every surviving hand is matched or beaten.
// With no surviving hands it never draws.
func AdaptivePolicy(dealerScore int, playerScores []int) bool {
	if dealerScore > 21 {
		return false
	}

	best := 0
	for _, s := range playerScores {
		if s > best {
			best = s
		}
	}
	return best > dealerScore
}
