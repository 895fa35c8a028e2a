package blackjack

import (
	"github.com/ardamertdedeoglu/casino-with-friends-sub000/internal/deck"
)

// HandView is the broadcast shape of one hand
type HandView struct {
	Cards     []deck.Card `json:"cards"`
	Score     int         `json:"score"`
	Status    HandStatus  `json:"status"`
	Bet       int         `json:"bet"`
	Blackjack bool        `json:"blackjack"`
	Doubled   bool        `json:"doubled"`
}

// PlayerView is the broadcast shape of one seated player
type PlayerView struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Hands        []HandView `json:"hands"`
	CurrentHand  int        `json:"currentHand"`
	Winnings     int        `json:"winnings"`
	InsuranceBet int        `json:"insuranceBet,omitempty"`
	InRound      bool       `json:"inRound"`
}

// DealerView shows the house hand without ever exposing the hole card
// while it is still concealed.
type DealerView struct {
	Cards     []deck.Card `json:"cards"`
	HoleCount int         `json:"holeCount"`
	Score     int         `json:"score"`
	Hidden    bool        `json:"hidden"`
	Blackjack bool        `json:"blackjack"`
}

// BetView is the broadcast shape of a pre-round bet decision
type BetView struct {
	Decided bool `json:"decided"`
	Wants   bool `json:"wants"`
	Amount  int  `json:"amount"`
}

// Snapshot is the full broadcast-ready room state. Reading it twice
// without an intervening action yields identical output.
type Snapshot struct {
	RoomID        string             `json:"roomId"`
	GameType      string             `json:"gameType"`
	Phase         Phase              `json:"phase"`
	Players       []PlayerView       `json:"players"`
	Dealer        DealerView         `json:"dealer"`
	Turn          string             `json:"turn"`
	OwnerID       string             `json:"ownerId"`
	Bets          map[string]BetView `json:"bets,omitempty"`
	LastResult    *RoundResult       `json:"lastResult"`
	Scoreboard    map[string]int     `json:"scoreboard"`
	DeckRemaining int                `json:"deckRemaining"`
	Settings      Settings           `json:"settings"`
}

// Snapshot builds the state broadcast to every room member after a
// mutating action.
func (r *Room) Snapshot() Snapshot {
	snap := Snapshot{
		RoomID:     r.id,
		GameType:   "blackjack",
		Phase:      r.phase,
		Turn:       r.CurrentTurn(),
		OwnerID:    r.ownerID,
		LastResult: r.lastResult,
		Scoreboard: make(map[string]int, len(r.players)),
		Settings:   r.settings,
	}

	for _, p := range r.players {
		pv := PlayerView{
			ID:           p.ID,
			Name:         p.Name,
			CurrentHand:  p.CurrentHand,
			Winnings:     p.Winnings,
			InsuranceBet: p.InsuranceBet,
			InRound:      p.InRound,
		}
		for _, h := range p.Hands {
			cards := make([]deck.Card, len(h.Cards))
			copy(cards, h.Cards)
			pv.Hands = append(pv.Hands, HandView{
				Cards:     cards,
				Score:     h.Score,
				Status:    h.Status,
				Bet:       h.Bet,
				Blackjack: h.Blackjack,
				Doubled:   h.Doubled,
			})
		}
		snap.Players = append(snap.Players, pv)
		snap.Scoreboard[p.ID] = p.Winnings
	}

	snap.Dealer = DealerView{
		Cards:     r.dealer.VisibleCards(),
		Score:     r.dealer.Score,
		Hidden:    r.dealer.Hidden,
		Blackjack: r.dealer.Blackjack,
	}
	if r.dealer.Hidden && len(r.dealer.Cards) > 0 {
		snap.Dealer.HoleCount = 1
	}

	if len(r.bets) > 0 {
		snap.Bets = make(map[string]BetView, len(r.bets))
		for id, dec := range r.bets {
			snap.Bets[id] = BetView{Decided: dec.Decided, Wants: dec.Wants, Amount: dec.Amount}
		}
	}

	if r.shoe != nil {
		snap.DeckRemaining = r.shoe.Remaining()
	}
	return snap
}
