// Package liarsdice implements the dice-bluffing game room: hidden dice
// re-rolled each round, a strictly increasing bid ladder, and challenge
// and spot-on calls that transfer chips between players until one player
// holds all the chips.
package liarsdice

import (
	"errors"
	"fmt"
	rand "math/rand/v2"

	"github.com/charmbracelet/log"

	"github.com/ardamertdedeoglu/casino-with-friends-sub000/internal/turns"
)

// Phase is the room's position in the round lifecycle
type Phase string

const (
	PhaseWaiting  Phase = "waiting"
	PhasePlaying  Phase = "playing"
	PhaseFinished Phase = "finished"
)

// Validation errors. Their text is returned to the acting player verbatim.
var (
	ErrWrongPhase       = errors.New("action not allowed in this phase")
	ErrRoomFull         = errors.New("room is full")
	ErrNameTaken        = errors.New("name already in use")
	ErrNotSeated        = errors.New("player not in room")
	ErrNotYourTurn      = errors.New("not your turn")
	ErrNotEnoughPlayers = errors.New("at least two players are needed")
	ErrNoStandingBid    = errors.New("no bid to call")
	ErrBidTooLow        = errors.New("bid must raise the face at the same quantity or raise the quantity")
	ErrOwnBid           = errors.New("cannot call your own bid")
	ErrGameOver         = errors.New("game is over")
	ErrEliminated       = errors.New("player is eliminated")
)

// Settings are the room parameters fixed at creation
type Settings struct {
	DicePerPlayer    int `json:"dicePerPlayer"`
	Stake            int `json:"stake"`
	SpotOnMultiplier int `json:"spotOnMultiplier"`
	StartBalance     int `json:"startBalance"`
	MaxPlayers       int `json:"maxPlayers"`
}

// DefaultSettings returns the room defaults applied when a setting is unset
func DefaultSettings() Settings {
	return Settings{
		DicePerPlayer:    5,
		Stake:            100,
		SpotOnMultiplier: 2,
		StartBalance:     500,
		MaxPlayers:       6,
	}
}

// Bid is one claim on the table: "at least Quantity dice show Face"
type Bid struct {
	Quantity int    `json:"quantity"`
	Face     int    `json:"face"`
	PlayerID string `json:"playerId"`
}

// Beats reports whether b strictly raises prev: same quantity with a
// higher face, or any higher quantity.
func (b Bid) Beats(prev Bid) bool {
	if b.Quantity == prev.Quantity {
		return b.Face > prev.Face
	}
	return b.Quantity > prev.Quantity
}

// Player is a seated player. Dice are hidden from everyone else until a
// challenge reveals the table.
type Player struct {
	ID      string
	Name    string
	Dice    []int
	Balance int
	Out     bool
}

// CallKind distinguishes the two ways a bid can be called
type CallKind string

const (
	CallChallenge CallKind = "challenge"
	CallSpotOn    CallKind = "spot_on"
)

// RoundResult is the revealed outcome of one round
type RoundResult struct {
	Kind       CallKind         `json:"kind"`
	Bid        Bid              `json:"bid"`
	CallerID   string           `json:"callerId"`
	Actual     int              `json:"actual"`
	WinnerID   string           `json:"winnerId"`
	LoserID    string           `json:"loserId"`
	Amount     int              `json:"amount"`
	Dice       map[string][]int `json:"dice"`
	Eliminated []string         `json:"eliminated,omitempty"`
	GameOver   bool             `json:"gameOver"`
	ChampionID string           `json:"championId,omitempty"`
}

// Room is one dice room. Methods are not safe for concurrent use; the
// transport layer serializes all actions for a room.
type Room struct {
	id       string
	logger   *log.Logger
	rng      *rand.Rand
	settings Settings

	phase      Phase
	players    []*Player
	ownerID    string
	seq        *turns.Sequencer
	standing   *Bid
	lastResult *RoundResult
	starterID  string
	gameOver   bool
	generation uint64
}

// NewRoom creates an empty room in the waiting phase
func NewRoom(id string, settings Settings, rng *rand.Rand, logger *log.Logger) *Room {
	def := DefaultSettings()
	if settings.DicePerPlayer < 1 {
		settings.DicePerPlayer = def.DicePerPlayer
	}
	if settings.Stake < 1 {
		settings.Stake = def.Stake
	}
	if settings.SpotOnMultiplier < 1 {
		settings.SpotOnMultiplier = def.SpotOnMultiplier
	}
	if settings.StartBalance < 1 {
		settings.StartBalance = def.StartBalance
	}
	if settings.MaxPlayers < 2 {
		settings.MaxPlayers = def.MaxPlayers
	}

	return &Room{
		id:       id,
		logger:   logger.WithPrefix("liarsdice").With("room", id),
		rng:      rng,
		settings: settings,
		phase:    PhaseWaiting,
	}
}

// ID returns the room identifier
func (r *Room) ID() string { return r.id }

// Phase returns the current lifecycle phase
func (r *Room) Phase() Phase { return r.phase }

// Generation counts round starts, for invalidating scheduled work
func (r *Room) Generation() uint64 { return r.generation }

// OwnerID returns the player authorized to change settings
func (r *Room) OwnerID() string { return r.ownerID }

// Empty reports whether no player is seated
func (r *Room) Empty() bool { return len(r.players) == 0 }

// GameOver reports whether only one player still holds chips
func (r *Room) GameOver() bool { return r.gameOver }

// Join seats a player with the configured starting balance. Joining again
// with the same id is a reconnect and just refreshes the display name.
func (r *Room) Join(playerID, name string) error {
	for _, p := range r.players {
		if p.ID == playerID {
			p.Name = name
			r.logger.Info("player reconnected", "player", playerID, "name", name)
			return nil
		}
	}

	if r.phase != PhaseWaiting {
		return ErrWrongPhase
	}
	if len(r.players) >= r.settings.MaxPlayers {
		return ErrRoomFull
	}
	for _, p := range r.players {
		if p.Name == name {
			return ErrNameTaken
		}
	}

	r.players = append(r.players, &Player{
		ID:      playerID,
		Name:    name,
		Balance: r.settings.StartBalance,
	})
	if r.ownerID == "" {
		r.ownerID = playerID
	}

	r.logger.Info("player joined", "player", playerID, "name", name, "seated", len(r.players))
	return nil
}

// Leave removes a player. If they held the turn it passes on synchronously;
// if their departure leaves fewer than two contenders mid-round, the round
// is abandoned back to the waiting phase.
func (r *Room) Leave(playerID string) (bool, error) {
	idx := -1
	for i, p := range r.players {
		if p.ID == playerID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return r.Empty(), ErrNotSeated
	}

	if r.phase == PhasePlaying && r.seq != nil {
		r.seq.Remove(playerID, r.activePlayers)
	}
	r.players = append(r.players[:idx], r.players[idx+1:]...)

	if r.ownerID == playerID {
		r.ownerID = ""
		if len(r.players) > 0 {
			r.ownerID = r.players[0].ID
		}
	}
	if r.standing != nil && r.standing.PlayerID == playerID {
		r.standing = nil
	}

	if r.phase == PhasePlaying && len(r.contenders()) < 2 {
		r.phase = PhaseWaiting
		r.seq = nil
		r.standing = nil
		r.logger.Info("round abandoned, not enough players", "player", playerID)
	}

	r.logger.Info("player left", "player", playerID, "seated", len(r.players))
	return r.Empty(), nil
}

// StartRound re-rolls every contender's dice and opens the bidding. The
// loser of the previous call opens the next round while still in the game.
func (r *Room) StartRound() error {
	if r.gameOver {
		return ErrGameOver
	}
	if r.phase == PhasePlaying {
		return ErrWrongPhase
	}

	contenders := r.contenders()
	if len(contenders) < 2 {
		return ErrNotEnoughPlayers
	}

	r.generation++
	r.standing = nil
	r.lastResult = nil

	ids := make([]string, 0, len(contenders))
	for _, p := range contenders {
		p.Dice = r.roll(r.settings.DicePerPlayer)
		ids = append(ids, p.ID)
	}

	// Rotate so the previous round's loser opens the bidding.
	if r.starterID != "" {
		for i, id := range ids {
			if id == r.starterID {
				ids = append(ids[i:], ids[:i]...)
				break
			}
		}
	}

	r.seq = turns.New(ids)
	r.seq.Start(r.activePlayers)
	r.phase = PhasePlaying

	r.logger.Info("round started", "players", len(ids), "dice", r.settings.DicePerPlayer, "generation", r.generation)
	return nil
}

// PlaceBid registers a claim that must strictly raise the standing bid
func (r *Room) PlaceBid(playerID string, quantity, face int) error {
	if err := r.checkTurn(playerID); err != nil {
		return err
	}
	if face < 1 || face > 6 {
		return fmt.Errorf("face must be between 1 and 6, got %d", face)
	}
	if quantity < 1 {
		return fmt.Errorf("quantity must be positive, got %d", quantity)
	}

	bid := Bid{Quantity: quantity, Face: face, PlayerID: playerID}
	if r.standing != nil && !bid.Beats(*r.standing) {
		return ErrBidTooLow
	}

	r.standing = &bid
	r.seq.Advance(r.activePlayers)
	r.logger.Debug("bid placed", "player", playerID, "quantity", quantity, "face", face)
	return nil
}

// Challenge calls the standing bid as a lie. All dice are revealed; if the
// table holds at least the claimed count the bidder wins, otherwise the
// challenger does. The fixed stake moves from loser to winner.
func (r *Room) Challenge(playerID string) error {
	return r.call(playerID, CallChallenge)
}

// SpotOn calls the standing bid as exactly correct. It pays the stake
// multiplier, but only an exact count wins; over or under loses.
func (r *Room) SpotOn(playerID string) error {
	return r.call(playerID, CallSpotOn)
}

func (r *Room) call(playerID string, kind CallKind) error {
	if err := r.checkTurn(playerID); err != nil {
		return err
	}
	if r.standing == nil {
		return ErrNoStandingBid
	}
	if r.standing.PlayerID == playerID {
		return ErrOwnBid
	}

	bid := *r.standing
	actual := r.countFace(bid.Face)

	var callerWins bool
	amount := r.settings.Stake
	switch kind {
	case CallChallenge:
		callerWins = actual < bid.Quantity
	case CallSpotOn:
		callerWins = actual == bid.Quantity
		amount *= r.settings.SpotOnMultiplier
	}

	winnerID, loserID := bid.PlayerID, playerID
	if callerWins {
		winnerID, loserID = playerID, bid.PlayerID
	}

	result := &RoundResult{
		Kind:     kind,
		Bid:      bid,
		CallerID: playerID,
		Actual:   actual,
		WinnerID: winnerID,
		LoserID:  loserID,
		Amount:   amount,
		Dice:     make(map[string][]int),
	}
	for _, p := range r.contenders() {
		result.Dice[p.ID] = append([]int(nil), p.Dice...)
	}

	winner := r.findPlayer(winnerID)
	loser := r.findPlayer(loserID)
	winner.Balance += amount
	loser.Balance -= amount

	if loser.Balance <= 0 {
		loser.Out = true
		result.Eliminated = append(result.Eliminated, loser.ID)
		r.logger.Info("player eliminated", "player", loser.ID, "balance", loser.Balance)
	}

	// The loser opens the next round, unless the loss eliminated them.
	r.starterID = loserID
	if loser.Out {
		r.starterID = winnerID
	}

	if remaining := r.contenders(); len(remaining) == 1 {
		r.gameOver = true
		result.GameOver = true
		result.ChampionID = remaining[0].ID
		r.logger.Info("game over", "champion", remaining[0].ID, "balance", remaining[0].Balance)
	}

	r.standing = nil
	r.seq = nil
	r.lastResult = result
	r.phase = PhaseFinished

	r.logger.Info("bid called", "kind", string(kind), "claim", bid.Quantity, "face", bid.Face,
		"actual", actual, "winner", winnerID, "loser", loserID, "amount", amount)
	return nil
}

// CurrentTurn returns the id of the player holding the turn, or ""
func (r *Room) CurrentTurn() string {
	if r.seq == nil {
		return ""
	}
	pid, _, ok := r.seq.Current()
	if !ok {
		return ""
	}
	return pid
}

// StandingBid returns the bid currently on the table, or nil
func (r *Room) StandingBid() *Bid {
	if r.standing == nil {
		return nil
	}
	b := *r.standing
	return &b
}

func (r *Room) checkTurn(playerID string) error {
	if r.phase != PhasePlaying {
		return ErrWrongPhase
	}
	p := r.findPlayer(playerID)
	if p == nil {
		return ErrNotSeated
	}
	if p.Out {
		return ErrEliminated
	}
	if r.CurrentTurn() != playerID {
		return ErrNotYourTurn
	}
	return nil
}

// countFace tallies how many dice across every contender show the face
func (r *Room) countFace(face int) int {
	n := 0
	for _, p := range r.contenders() {
		for _, d := range p.Dice {
			if d == face {
				n++
			}
		}
	}
	return n
}

// contenders returns the players still holding chips, in join order
func (r *Room) contenders() []*Player {
	var out []*Player
	for _, p := range r.players {
		if !p.Out {
			out = append(out, p)
		}
	}
	return out
}

// activePlayers adapts player state to the turn sequencer's view; every
// contender has exactly one "hand".
func (r *Room) activePlayers(playerID string) []int {
	p := r.findPlayer(playerID)
	if p == nil || p.Out {
		return nil
	}
	return []int{0}
}

func (r *Room) findPlayer(playerID string) *Player {
	for _, p := range r.players {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}

func (r *Room) roll(n int) []int {
	dice := make([]int, n)
	for i := range dice {
		dice[i] = r.rng.IntN(6) + 1
	}
	return dice
}
