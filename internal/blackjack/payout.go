package blackjack

// Outcome classifies a player's round for display
type Outcome string

const (
	OutcomeWin   Outcome = "win"
	OutcomeLoss  Outcome = "loss"
	OutcomePush  Outcome = "push"
	OutcomeMixed Outcome = "mixed"
)

// Reason codes attached to per-hand classifications. They are stable
// identifiers the client renders, not free text.
const (
	ReasonBusted          = "busted"
	ReasonDealerBusted    = "dealer_busted"
	ReasonBlackjack       = "blackjack"
	ReasonDealerBlackjack = "dealer_blackjack"
	ReasonHigherScore     = "higher_score"
	ReasonLowerScore      = "lower_score"
	ReasonPush            = "push"
)

// HandResult is the resolution of one hand against the dealer
type HandResult struct {
	Outcome  Outcome `json:"outcome"`
	Reason   string  `json:"reason"`
	Wagered  int     `json:"wagered"`
	Returned int     `json:"returned"`
	Net      int     `json:"net"`
}

// PlayerResult aggregates a player's hands plus any insurance side-bet
type PlayerResult struct {
	PlayerID          string       `json:"playerId"`
	Name              string       `json:"name"`
	Outcome           Outcome      `json:"outcome"`
	Hands             []HandResult `json:"hands"`
	InsuranceStake    int          `json:"insuranceStake,omitempty"`
	InsuranceReturned int          `json:"insuranceReturned,omitempty"`
	Wagered           int          `json:"wagered"`
	Returned          int          `json:"returned"`
	Net               int          `json:"net"`
}

// RoundResult is the full resolution of one round
type RoundResult struct {
	Players    []PlayerResult `json:"players"`
	DealerBust bool           `json:"dealerBust"`
	Scoreboard map[string]int `json:"scoreboard"`
}

// resolveHand classifies a single hand against the dealer and computes the
// amount returned to the player. Blackjack pays 3:2, an ordinary win 1:1, a
// push returns the wager, a loss returns nothing.
func resolveHand(h *Hand, dealer *DealerHand) HandResult {
	r := HandResult{Wagered: h.Bet}

	switch {
	case h.IsBust():
		r.Outcome, r.Reason = OutcomeLoss, ReasonBusted
	case h.Blackjack && dealer.Blackjack:
		r.Outcome, r.Reason = OutcomePush, ReasonPush
		r.Returned = h.Bet
	case h.Blackjack:
		r.Outcome, r.Reason = OutcomeWin, ReasonBlackjack
		r.Returned = h.Bet + h.Bet*3/2
	case dealer.Blackjack:
		r.Outcome, r.Reason = OutcomeLoss, ReasonDealerBlackjack
	case dealer.IsBust():
		r.Outcome, r.Reason = OutcomeWin, ReasonDealerBusted
		r.Returned = h.Bet * 2
	case h.Score > dealer.Score:
		r.Outcome, r.Reason = OutcomeWin, ReasonHigherScore
		r.Returned = h.Bet * 2
	case h.Score < dealer.Score:
		r.Outcome, r.Reason = OutcomeLoss, ReasonLowerScore
	default:
		r.Outcome, r.Reason = OutcomePush, ReasonPush
		r.Returned = h.Bet
	}

	r.Net = r.Returned - r.Wagered
	return r
}

// resolvePlayer resolves every hand of one player plus insurance. Insurance
// settles independently of the main hands: it pays 2:1 exactly when the
// dealer holds blackjack and is forfeited otherwise.
func resolvePlayer(p *Player, dealer *DealerHand) PlayerResult {
	res := PlayerResult{PlayerID: p.ID, Name: p.Name}

	wins, losses := 0, 0
	for _, h := range p.Hands {
		hr := resolveHand(h, dealer)
		res.Hands = append(res.Hands, hr)
		res.Wagered += hr.Wagered
		res.Returned += hr.Returned

		switch hr.Outcome {
		case OutcomeWin:
			wins++
		case OutcomeLoss:
			losses++
		}
	}

	switch {
	case wins > 0 && losses > 0:
		res.Outcome = OutcomeMixed
	case wins > 0:
		res.Outcome = OutcomeWin
	case losses > 0:
		res.Outcome = OutcomeLoss
	default:
		res.Outcome = OutcomePush
	}

	if p.InsuranceBet > 0 {
		res.InsuranceStake = p.InsuranceBet
		res.Wagered += p.InsuranceBet
		if dealer.Blackjack {
			res.InsuranceReturned = p.InsuranceBet * 3
		}
		res.Returned += res.InsuranceReturned
	}

	res.Net = res.Returned - res.Wagered
	return res
}
