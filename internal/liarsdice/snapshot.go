package liarsdice

// PlayerView is the broadcast shape of one seated player. Dice are included
// only for the viewer while a round is live; everyone's dice appear in the
// round result once a call reveals the table.
type PlayerView struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Balance   int    `json:"balance"`
	DiceCount int    `json:"diceCount"`
	Dice      []int  `json:"dice,omitempty"`
	Out       bool   `json:"out"`
}

// Snapshot is the room state rendered for one viewer
type Snapshot struct {
	RoomID     string         `json:"roomId"`
	GameType   string         `json:"gameType"`
	Phase      Phase          `json:"phase"`
	Players    []PlayerView   `json:"players"`
	Turn       string         `json:"turn"`
	OwnerID    string         `json:"ownerId"`
	Bid        *Bid           `json:"bid"`
	LastResult *RoundResult   `json:"lastResult"`
	Scoreboard map[string]int `json:"scoreboard"`
	GameOver   bool           `json:"gameOver"`
	Settings   Settings       `json:"settings"`
}

// Snapshot builds the state sent to viewerID. Other players' live dice are
// never included while the round is in play.
func (r *Room) Snapshot(viewerID string) Snapshot {
	snap := Snapshot{
		RoomID:     r.id,
		GameType:   "dice",
		Phase:      r.phase,
		Turn:       r.CurrentTurn(),
		OwnerID:    r.ownerID,
		Bid:        r.StandingBid(),
		LastResult: r.lastResult,
		Scoreboard: make(map[string]int, len(r.players)),
		GameOver:   r.gameOver,
		Settings:   r.settings,
	}

	for _, p := range r.players {
		pv := PlayerView{
			ID:        p.ID,
			Name:      p.Name,
			Balance:   p.Balance,
			DiceCount: len(p.Dice),
			Out:       p.Out,
		}
		if p.ID == viewerID && r.phase == PhasePlaying {
			pv.Dice = append([]int(nil), p.Dice...)
		}
		snap.Players = append(snap.Players, pv)
		snap.Scoreboard[p.ID] = p.Balance - r.settings.StartBalance
	}
	return snap
}
