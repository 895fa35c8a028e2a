package okey

import (
	"github.com/ardamertdedeoglu/casino-with-friends-sub000/internal/deck"
)

// PlayerView is the broadcast shape of one seated player. The hand itself
// is included only for the viewer; opened melds are public.
type PlayerView struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	HandCount int           `json:"handCount"`
	Hand      []deck.Tile   `json:"hand,omitempty"`
	Melds     [][]deck.Tile `json:"melds,omitempty"`
	Opened    bool          `json:"opened"`
	Discards  []deck.Tile   `json:"discards"`
	Score     int           `json:"score"`
}

// Snapshot is the room state rendered for one viewer
type Snapshot struct {
	RoomID        string         `json:"roomId"`
	GameType      string         `json:"gameType"`
	Phase         Phase          `json:"phase"`
	Players       []PlayerView   `json:"players"`
	Turn          string         `json:"turn"`
	OwnerID       string         `json:"ownerId"`
	Indicator     *deck.Tile     `json:"indicator,omitempty"`
	Okey          *deck.Tile     `json:"okey,omitempty"`
	PileRemaining int            `json:"pileRemaining"`
	LastResult    *RoundResult   `json:"lastResult"`
	Scoreboard    map[string]int `json:"scoreboard"`
	Settings      Settings       `json:"settings"`
}

// Snapshot builds the state sent to viewerID. Other players' hands are
// never included; their tile counts and melds are.
func (r *Room) Snapshot(viewerID string) Snapshot {
	snap := Snapshot{
		RoomID:     r.id,
		GameType:   "okey",
		Phase:      r.phase,
		Turn:       r.CurrentTurn(),
		OwnerID:    r.ownerID,
		LastResult: r.lastResult,
		Scoreboard: make(map[string]int, len(r.players)),
		Settings:   r.settings,
	}

	if r.phase != PhaseWaiting {
		ind, okey := r.indicator, r.okey
		snap.Indicator = &ind
		snap.Okey = &okey
	}
	if r.pile != nil {
		snap.PileRemaining = r.pile.Remaining()
	}

	for _, p := range r.players {
		pv := PlayerView{
			ID:        p.ID,
			Name:      p.Name,
			HandCount: len(p.Hand),
			Opened:    p.Opened,
			Score:     p.Score,
		}
		for _, m := range p.Melds {
			pv.Melds = append(pv.Melds, append([]deck.Tile(nil), m...))
		}
		pv.Discards = append([]deck.Tile(nil), r.discards[p.ID]...)
		if p.ID == viewerID {
			pv.Hand = append([]deck.Tile(nil), p.Hand...)
		}
		snap.Players = append(snap.Players, pv)
		snap.Scoreboard[p.ID] = p.Score
	}
	return snap
}
