package okey

import (
	"errors"
	"fmt"
	rand "math/rand/v2"

	"github.com/charmbracelet/log"

	"github.com/ardamertdedeoglu/casino-with-friends-sub000/internal/deck"
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
	ErrAlreadyDrawn     = errors.New("already drew a tile this turn")
	ErrMustDrawFirst    = errors.New("draw a tile before this action")
	ErrTileNotHeld      = errors.New("tile is not in your hand")
	ErrNoDiscard        = errors.New("previous player has no discard to take")
	ErrBelowThreshold   = errors.New("opening groups do not reach the threshold")
	ErrInvalidGroups    = errors.New("groups are not all valid sets or runs")
	ErrNotOpened        = errors.New("open your hand before finishing")
)

// Settings are the room parameters fixed at creation
type Settings struct {
	OpeningThreshold int `json:"openingThreshold"`
	MaxPlayers       int `json:"maxPlayers"`
}

// DefaultSettings returns the room defaults applied when a setting is unset
func DefaultSettings() Settings {
	return Settings{OpeningThreshold: 101, MaxPlayers: 4}
}

// Player is a seated player. Opened melds are public; the hand is not.
type Player struct {
	ID     string
	Name   string
	Hand   []deck.Tile
	Melds  [][]deck.Tile
	Opened bool
	Score  int
}

// RoundResult is the outcome of one round
type RoundResult struct {
	WinnerID   string         `json:"winnerId,omitempty"`
	Drawn      bool           `json:"drawn"`
	HandValues map[string]int `json:"handValues"`
	Scoreboard map[string]int `json:"scoreboard"`
}

// Room is one okey room. Methods are not safe for concurrent use; the
// transport layer serializes all actions for a room.
type Room struct {
	id       string
	logger   *log.Logger
	rng      *rand.Rand
	settings Settings

	phase      Phase
	players    []*Player
	ownerID    string
	pile       *deck.Pile
	indicator  deck.Tile
	okey       deck.Tile
	discards   map[string][]deck.Tile
	seq        *turns.Sequencer
	drawn      bool
	starterID  string
	lastResult *RoundResult
	generation uint64

	// newPile builds the tile pile for a round; tests swap in rigged piles.
	newPile func() *deck.Pile
}

// NewRoom creates an empty room in the waiting phase
func NewRoom(id string, settings Settings, rng *rand.Rand, logger *log.Logger) *Room {
	def := DefaultSettings()
	if settings.OpeningThreshold < 1 {
		settings.OpeningThreshold = def.OpeningThreshold
	}
	if settings.MaxPlayers < 2 || settings.MaxPlayers > 4 {
		settings.MaxPlayers = def.MaxPlayers
	}

	r := &Room{
		id:       id,
		logger:   logger.WithPrefix("okey").With("room", id),
		rng:      rng,
		settings: settings,
		phase:    PhaseWaiting,
		discards: make(map[string][]deck.Tile),
	}
	r.newPile = func() *deck.Pile {
		return deck.NewPile(r.rng)
	}
	return r
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

// Indicator returns the face-up indicator and the okey tile it designates
func (r *Room) Indicator() (indicator, okey deck.Tile) {
	return r.indicator, r.okey
}

// Join seats a player. Joining again with the same id is a reconnect and
// just refreshes the display name.
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

	r.players = append(r.players, &Player{ID: playerID, Name: name})
	if r.ownerID == "" {
		r.ownerID = playerID
	}

	r.logger.Info("player joined", "player", playerID, "name", name, "seated", len(r.players))
	return nil
}

// Leave removes a player. A round that drops below two players is
// abandoned back to the waiting phase.
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
		onTurn := r.CurrentTurn() == playerID
		r.seq.Remove(playerID, r.activePlayers)
		if onTurn {
			r.drawn = false
		}
	}
	r.players = append(r.players[:idx], r.players[idx+1:]...)
	delete(r.discards, playerID)

	if r.ownerID == playerID {
		r.ownerID = ""
		if len(r.players) > 0 {
			r.ownerID = r.players[0].ID
		}
	}

	if r.phase == PhasePlaying && len(r.players) < 2 {
		r.phase = PhaseWaiting
		r.seq = nil
		r.logger.Info("round abandoned, not enough players", "player", playerID)
	}

	r.logger.Info("player left", "player", playerID, "seated", len(r.players))
	return r.Empty(), nil
}

// StartRound shuffles the tile set, draws the indicator and deals 14 tiles
// to every player and a 15th to the starter, who leads by discarding.
func (r *Room) StartRound() error {
	if r.phase == PhasePlaying {
		return ErrWrongPhase
	}
	if len(r.players) < 2 {
		return ErrNotEnoughPlayers
	}

	r.generation++
	r.lastResult = nil
	r.pile = r.newPile()
	r.discards = make(map[string][]deck.Tile)

	// The indicator must be a numbered tile; skipped jokers go back under.
	var skipped []deck.Tile
	for {
		t, err := r.pile.Draw()
		if err != nil {
			return fmt.Errorf("drawing indicator: %w", err)
		}
		if !t.Joker {
			r.indicator = t
			break
		}
		skipped = append(skipped, t)
	}
	if len(skipped) > 0 {
		r.pile.Rig(skipped...)
		r.pile.Shuffle()
	}
	r.okey = deck.OkeyFor(r.indicator)

	ids := make([]string, 0, len(r.players))
	for _, p := range r.players {
		p.Hand = nil
		p.Melds = nil
		p.Opened = false
		ids = append(ids, p.ID)
	}
	if r.starterID != "" {
		for i, id := range ids {
			if id == r.starterID {
				ids = append(ids[i:], ids[:i]...)
				break
			}
		}
	}

	for _, id := range ids {
		p := r.findPlayer(id)
		count := 14
		if id == ids[0] {
			count = 15
		}
		for i := 0; i < count; i++ {
			t, err := r.pile.Draw()
			if err != nil {
				return fmt.Errorf("dealing: %w", err)
			}
			p.Hand = append(p.Hand, t)
		}
	}

	r.seq = turns.New(ids)
	r.seq.Start(r.activePlayers)
	r.drawn = true // the starter's 15th tile is their draw
	r.phase = PhasePlaying

	r.logger.Info("round started", "players", len(ids),
		"indicator", r.indicator.String(), "okey", r.okey.String(), "generation", r.generation)
	return nil
}

// Draw takes the top tile from the pile. An exhausted pile ends the round
// as a draw with no winner.
func (r *Room) Draw(playerID string) error {
	if err := r.checkTurn(playerID); err != nil {
		return err
	}
	if r.drawn {
		return ErrAlreadyDrawn
	}

	t, err := r.pile.Draw()
	if err != nil {
		if errors.Is(err, deck.ErrExhausted) {
			r.finishDrawn()
			return nil
		}
		return err
	}

	p := r.findPlayer(playerID)
	p.Hand = append(p.Hand, t)
	r.drawn = true
	r.logger.Debug("tile drawn", "player", playerID, "remaining", r.pile.Remaining())
	return nil
}

// DrawDiscard takes the previous player's latest discard instead of
// drawing blind from the pile.
func (r *Room) DrawDiscard(playerID string) error {
	if err := r.checkTurn(playerID); err != nil {
		return err
	}
	if r.drawn {
		return ErrAlreadyDrawn
	}

	prev := r.previousPlayer(playerID)
	stack := r.discards[prev]
	if len(stack) == 0 {
		return ErrNoDiscard
	}
	t := stack[len(stack)-1]
	r.discards[prev] = stack[:len(stack)-1]

	p := r.findPlayer(playerID)
	p.Hand = append(p.Hand, t)
	r.drawn = true
	r.logger.Debug("discard taken", "player", playerID, "tile", t.String(), "from", prev)
	return nil
}

// Discard drops a held tile onto the player's own stack and passes the
// turn. Discarding the last tile of an opened hand wins the round.
func (r *Room) Discard(playerID string, tile deck.Tile) error {
	if err := r.checkTurn(playerID); err != nil {
		return err
	}
	if !r.drawn {
		return ErrMustDrawFirst
	}

	p := r.findPlayer(playerID)
	if !removeTile(&p.Hand, tile) {
		return ErrTileNotHeld
	}
	r.discards[playerID] = append(r.discards[playerID], tile)
	r.drawn = false

	if len(p.Hand) == 0 {
		if !p.Opened {
			// Roll the discard back; a closed hand cannot finish.
			p.Hand = append(p.Hand, tile)
			stack := r.discards[playerID]
			r.discards[playerID] = stack[:len(stack)-1]
			r.drawn = true
			return ErrNotOpened
		}
		r.finishWon(p)
		return nil
	}

	r.seq.Advance(r.activePlayers)
	r.logger.Debug("tile discarded", "player", playerID, "tile", tile.String())
	return nil
}

// OpenMelds lays groups from the hand face up. The first opening must meet
// the room's threshold; later extensions only need valid groups.
func (r *Room) OpenMelds(playerID string, groups [][]deck.Tile) error {
	if err := r.checkTurn(playerID); err != nil {
		return err
	}
	if !r.drawn {
		return ErrMustDrawFirst
	}
	if len(groups) == 0 {
		return ErrInvalidGroups
	}

	p := r.findPlayer(playerID)

	// Validate held tiles without mutating until everything checks out.
	remaining := append([]deck.Tile(nil), p.Hand...)
	for _, g := range groups {
		for _, t := range g {
			if !removeTile(&remaining, t) {
				return ErrTileNotHeld
			}
		}
	}

	score, ok := OpeningScore(groups, r.okey)
	if !ok {
		return ErrInvalidGroups
	}
	if !p.Opened && score < r.settings.OpeningThreshold {
		return ErrBelowThreshold
	}

	p.Hand = remaining
	p.Melds = append(p.Melds, groups...)
	p.Opened = true
	r.logger.Info("melds opened", "player", playerID, "groups", len(groups), "score", score)
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

func (r *Room) finishWon(winner *Player) {
	result := &RoundResult{
		WinnerID:   winner.ID,
		HandValues: make(map[string]int),
		Scoreboard: make(map[string]int),
	}
	for _, p := range r.players {
		if p.ID == winner.ID {
			continue
		}
		v := HandValue(p.Hand, r.okey)
		result.HandValues[p.ID] = v
		winner.Score += v
	}
	for _, p := range r.players {
		result.Scoreboard[p.ID] = p.Score
	}

	r.starterID = winner.ID
	r.seq = nil
	r.lastResult = result
	r.phase = PhaseFinished
	r.logger.Info("round won", "winner", winner.ID, "score", winner.Score)
}

func (r *Room) finishDrawn() {
	result := &RoundResult{
		Drawn:      true,
		HandValues: make(map[string]int),
		Scoreboard: make(map[string]int),
	}
	for _, p := range r.players {
		result.HandValues[p.ID] = HandValue(p.Hand, r.okey)
		result.Scoreboard[p.ID] = p.Score
	}

	r.seq = nil
	r.lastResult = result
	r.phase = PhaseFinished
	r.logger.Info("round drawn, pile exhausted")
}

func (r *Room) checkTurn(playerID string) error {
	if r.phase != PhasePlaying {
		return ErrWrongPhase
	}
	if r.findPlayer(playerID) == nil {
		return ErrNotSeated
	}
	if r.CurrentTurn() != playerID {
		return ErrNotYourTurn
	}
	return nil
}

// previousPlayer returns the id seated before playerID in turn order
func (r *Room) previousPlayer(playerID string) string {
	order := r.seq.Order()
	for i, id := range order {
		if id == playerID {
			return order[(i-1+len(order))%len(order)]
		}
	}
	return ""
}

func (r *Room) activePlayers(playerID string) []int {
	if r.findPlayer(playerID) == nil {
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

// removeTile deletes the first tile equal to t from the slice, reporting
// whether it was present.
func removeTile(hand *[]deck.Tile, t deck.Tile) bool {
	for i, h := range *hand {
		if h == t {
			*hand = append((*hand)[:i], (*hand)[i+1:]...)
			return true
		}
	}
	return false
}
