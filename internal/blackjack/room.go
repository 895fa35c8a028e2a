// Package blackjack implements the per-room blackjack state machine: seat
// management, pre-round betting, dealing, player actions, the stepped
// dealer turn and round resolution.
package blackjack

import (
	"context"
	"errors"
	"fmt"
	rand "math/rand/v2"

	"github.com/charmbracelet/log"

	"github.com/ardamertdedeoglu/casino-with-friends-sub000/internal/bank"
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
	ErrWrongPhase           = errors.New("action not allowed in this phase")
	ErrRoomFull             = errors.New("room is full")
	ErrNameTaken            = errors.New("name already in use")
	ErrNotSeated            = errors.New("player not in room")
	ErrNotOwner             = errors.New("only the room owner can change settings")
	ErrNotYourTurn          = errors.New("not your turn")
	ErrHandNotActive        = errors.New("hand is no longer active")
	ErrBetsPending          = errors.New("waiting for every player to place or decline a bet")
	ErrBetAlreadyPlaced     = errors.New("bet already placed")
	ErrNoBets               = errors.New("no bets placed")
	ErrCannotDouble         = errors.New("double down requires exactly two cards and no prior double")
	ErrCannotSplit          = errors.New("only a two-card pair of equal value can be split")
	ErrInsuranceUnavailable = errors.New("insurance is only offered against a dealer ace")
	ErrInsuranceTaken       = errors.New("insurance already taken")
	ErrInsuranceTooLarge    = errors.New("insurance is capped at half the main bet")
	ErrNotInRound           = errors.New("player is sitting this round out")
	ErrDealerNotDue         = errors.New("dealer is not due to act")
)

// Settings are the owner-adjustable room parameters
type Settings struct {
	DeckCount  int `json:"deckCount"`
	MaxPlayers int `json:"maxPlayers"`
}

// DefaultSettings returns the room defaults applied when a setting is unset
func DefaultSettings() Settings {
	return Settings{DeckCount: 4, MaxPlayers: 6}
}

// Player is a seated player. ID is the stable identity; it survives
// reconnects and is independent of any transport connection.
type Player struct {
	ID           string
	Name         string
	Hands        []*Hand
	CurrentHand  int
	Winnings     int
	InsuranceBet int
	InRound      bool

	session *bank.Session
}

// BetDecision records one player's pre-round choice
type BetDecision struct {
	Decided bool
	Wants   bool
	Amount  int

	session *bank.Session
}

// Room is one blackjack room. Methods are not safe for concurrent use; the
// transport layer serializes all actions for a room, including scheduled
// dealer steps.
type Room struct {
	id       string
	logger   *log.Logger
	ledger   bank.Ledger
	rng      *rand.Rand
	policy   DealerPolicy
	settings Settings

	phase      Phase
	players    []*Player
	ownerID    string
	dealer     *DealerHand
	shoe       *deck.Deck
	seq        *turns.Sequencer
	bets       map[string]*BetDecision
	lastResult *RoundResult
	generation uint64

	// newShoe builds the shoe for a round; tests swap in rigged decks.
	newShoe func() *deck.Deck
}

// NewRoom creates an empty room in the waiting phase
func NewRoom(id string, settings Settings, ledger bank.Ledger, policy DealerPolicy, rng *rand.Rand, logger *log.Logger) *Room {
	if settings.DeckCount < 1 {
		settings.DeckCount = DefaultSettings().DeckCount
	}
	if settings.MaxPlayers < 1 {
		settings.MaxPlayers = DefaultSettings().MaxPlayers
	}
	if policy == nil {
		policy = StandardPolicy
	}

	r := &Room{
		id:       id,
		logger:   logger.WithPrefix("blackjack").With("room", id),
		ledger:   ledger,
		rng:      rng,
		policy:   policy,
		settings: settings,
		phase:    PhaseWaiting,
		dealer:   &DealerHand{Hidden: true},
		bets:     make(map[string]*BetDecision),
	}
	r.newShoe = func() *deck.Deck {
		return deck.New(r.settings.DeckCount, r.rng)
	}
	return r
}

// ID returns the room identifier
func (r *Room) ID() string { return r.id }

// Phase returns the current lifecycle phase
func (r *Room) Phase() Phase { return r.phase }

// Generation returns the room's reset counter. Scheduled dealer steps carry
// the generation they were created under and no-op when it has moved on.
func (r *Room) Generation() uint64 { return r.generation }

// OwnerID returns the player authorized to change settings
func (r *Room) OwnerID() string { return r.ownerID }

// Empty reports whether no player is seated
func (r *Room) Empty() bool { return len(r.players) == 0 }

// Join seats a player. The first joiner becomes owner. Joining again with
// the same id is a reconnect and just refreshes the display name; a new id
// with a name already in use is rejected.
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

	p := &Player{ID: playerID, Name: name, Hands: []*Hand{NewHand(0)}}
	r.players = append(r.players, p)
	if r.ownerID == "" {
		r.ownerID = playerID
	}

	r.logger.Info("player joined", "player", playerID, "name", name, "seated", len(r.players))
	return nil
}

// Leave removes a player. A placed but unplayed bet is refunded; a player
// departing mid-round forfeits their stake and their hands are dropped
// unscored, with the turn reassigned synchronously if they held it.
// Returns true when the room is now empty.
func (r *Room) Leave(ctx context.Context, playerID string) (bool, error) {
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
	p := r.players[idx]

	if dec, ok := r.bets[playerID]; ok {
		if dec.session != nil {
			if err := r.ledger.Settle(ctx, dec.session, dec.session.Staked); err != nil {
				r.logger.Error("failed to refund bet on leave", "player", playerID, "error", err)
			}
		}
		delete(r.bets, playerID)
	}

	if r.phase == PhasePlaying && p.InRound {
		if p.session != nil {
			if err := r.ledger.Settle(ctx, p.session, 0); err != nil {
				r.logger.Error("failed to forfeit stake on leave", "player", playerID, "error", err)
			}
			p.session = nil
		}
		r.seq.Remove(playerID, r.activeHands)
	}

	r.players = append(r.players[:idx], r.players[idx+1:]...)
	if r.ownerID == playerID {
		r.ownerID = ""
		if len(r.players) > 0 {
			r.ownerID = r.players[0].ID
		}
	}
	r.syncTurn()

	r.logger.Info("player left", "player", playerID, "seated", len(r.players))
	return r.Empty(), nil
}

// ChangeSettings updates deck count and capacity. Owner only, waiting only.
func (r *Room) ChangeSettings(callerID string, s Settings) error {
	if callerID != r.ownerID {
		return ErrNotOwner
	}
	if r.phase != PhaseWaiting {
		return ErrWrongPhase
	}
	if s.DeckCount < 1 || s.DeckCount > 8 {
		return fmt.Errorf("deck count must be between 1 and 8, got %d", s.DeckCount)
	}
	if s.MaxPlayers < len(r.players) {
		return fmt.Errorf("capacity %d is below the %d players already seated", s.MaxPlayers, len(r.players))
	}

	r.settings = s
	r.logger.Info("settings changed", "decks", s.DeckCount, "capacity", s.MaxPlayers)
	return nil
}

// PlaceBet records a wager for the coming round, debiting the ledger
func (r *Room) PlaceBet(ctx context.Context, playerID string, amount int) error {
	if r.phase != PhaseWaiting {
		return ErrWrongPhase
	}
	if r.findPlayer(playerID) == nil {
		return ErrNotSeated
	}
	if dec, ok := r.bets[playerID]; ok && dec.Decided {
		return ErrBetAlreadyPlaced
	}
	if amount <= 0 {
		return fmt.Errorf("bet amount must be positive, got %d", amount)
	}

	session, err := r.ledger.PlaceBet(ctx, playerID, amount)
	if err != nil {
		return err
	}

	r.bets[playerID] = &BetDecision{Decided: true, Wants: true, Amount: amount, session: session}
	r.logger.Info("bet placed", "player", playerID, "amount", amount)
	return nil
}

// DeclineBet records an explicit no-bet decision; the player sits the
// coming round out but keeps their seat.
func (r *Room) DeclineBet(playerID string) error {
	if r.phase != PhaseWaiting {
		return ErrWrongPhase
	}
	if r.findPlayer(playerID) == nil {
		return ErrNotSeated
	}
	if dec, ok := r.bets[playerID]; ok && dec.Decided && dec.session != nil {
		return ErrBetAlreadyPlaced
	}

	r.bets[playerID] = &BetDecision{Decided: true}
	return nil
}

// StartRound shuffles a fresh shoe and deals the opening hands. Every
// seated player must have registered a bet decision first.
func (r *Room) StartRound(ctx context.Context) error {
	if r.phase != PhaseWaiting {
		return ErrWrongPhase
	}

	var participants []*Player
	for _, p := range r.players {
		dec, ok := r.bets[p.ID]
		if !ok || !dec.Decided {
			return ErrBetsPending
		}
		if dec.Wants {
			participants = append(participants, p)
		}
	}
	if len(participants) == 0 {
		return ErrNoBets
	}

	r.generation++
	r.lastResult = nil
	r.shoe = r.newShoe()
	r.dealer = &DealerHand{Hidden: true}

	for _, p := range r.players {
		dec := r.bets[p.ID]
		p.CurrentHand = 0
		p.InsuranceBet = 0
		p.InRound = dec.Wants
		p.session = dec.session
		dec.session = nil
		if dec.Wants {
			p.Hands = []*Hand{NewHand(dec.Amount)}
		} else {
			p.Hands = []*Hand{NewHand(0)}
		}
	}

	// Two passes around the table, dealer last each pass.
	for pass := 0; pass < 2; pass++ {
		for _, p := range participants {
			card, err := r.shoe.Draw()
			if err != nil {
				return r.abortRound(ctx, err)
			}
			p.Hands[0].AddCard(card)
		}
		card, err := r.shoe.Draw()
		if err != nil {
			return r.abortRound(ctx, err)
		}
		r.dealer.AddCard(card)
	}

	for _, p := range participants {
		p.Hands[0].MarkDealtBlackjack()
	}

	r.bets = make(map[string]*BetDecision)
	r.phase = PhasePlaying
	ids := make([]string, len(participants))
	for i, p := range participants {
		ids[i] = p.ID
	}
	r.seq = turns.New(ids)
	r.seq.Start(r.activeHands)
	r.syncTurn()

	r.logger.Info("round started", "players", len(participants), "decks", r.settings.DeckCount, "generation", r.generation)
	return nil
}

// Hit deals one card to the acting player's active hand
func (r *Room) Hit(ctx context.Context, playerID string) error {
	_, h, err := r.actingHand(playerID)
	if err != nil {
		return err
	}

	card, err := r.shoe.Draw()
	if err != nil {
		return r.abortRound(ctx, err)
	}
	h.AddCard(card)
	r.logger.Debug("hit", "player", playerID, "card", card.String(), "score", h.Score)

	if h.Status == HandBusted {
		r.advanceTurn()
		return nil
	}
	if h.Score == 21 {
		h.Stand()
		r.advanceTurn()
	}
	return nil
}

// Stand marks the acting hand stood and passes the turn
func (r *Room) Stand(playerID string) error {
	_, h, err := r.actingHand(playerID)
	if err != nil {
		return err
	}

	h.Stand()
	r.advanceTurn()
	return nil
}

// DoubleDown doubles the wager on a two-card hand, draws exactly one card
// and ends the hand.
func (r *Room) DoubleDown(ctx context.Context, playerID string) error {
	p, h, err := r.actingHand(playerID)
	if err != nil {
		return err
	}
	if len(h.Cards) != 2 || h.Doubled {
		return ErrCannotDouble
	}

	if err := r.ledger.Extend(ctx, p.session, h.Bet); err != nil {
		return err
	}
	h.Bet *= 2
	h.Doubled = true

	card, err := r.shoe.Draw()
	if err != nil {
		return r.abortRound(ctx, err)
	}
	h.AddCard(card)
	h.Stand()
	r.logger.Debug("double down", "player", playerID, "card", card.String(), "score", h.Score)

	r.advanceTurn()
	return nil
}

// Split divides a two-card pair into two hands, dealing one fresh card to
// each. Split aces stand immediately on both hands.
func (r *Room) Split(ctx context.Context, playerID string) error {
	p, h, err := r.actingHand(playerID)
	if err != nil {
		return err
	}
	if len(p.Hands) != 1 || len(h.Cards) != 2 || h.Cards[0].SplitValue() != h.Cards[1].SplitValue() {
		return ErrCannotSplit
	}

	if err := r.ledger.Extend(ctx, p.session, h.Bet); err != nil {
		return err
	}

	splitAces := h.Cards[0].IsAce()
	second := NewHand(h.Bet)
	second.AddCard(h.Cards[1])
	h.Cards = h.Cards[:1]
	h.Score = ScoreCards(h.Cards)

	for _, hand := range []*Hand{h, second} {
		card, err := r.shoe.Draw()
		if err != nil {
			return r.abortRound(ctx, err)
		}
		hand.AddCard(card)
	}
	p.Hands = append(p.Hands, second)

	if splitAces {
		h.Stand()
		second.Stand()
	}
	r.logger.Debug("split", "player", playerID, "aces", splitAces)

	// The turn stays on the first split hand unless it is already terminal.
	if h.Status != HandActive {
		r.advanceTurn()
	}
	return nil
}

// Insurance places the side-bet against a dealer blackjack. Only offered
// while the dealer's up card is an ace and the hole card is still hidden.
func (r *Room) Insurance(ctx context.Context, playerID string, amount int) error {
	if r.phase != PhasePlaying {
		return ErrWrongPhase
	}
	p := r.findPlayer(playerID)
	if p == nil {
		return ErrNotSeated
	}
	if !p.InRound {
		return ErrNotInRound
	}

	up, ok := r.dealer.UpCard()
	if !ok || !up.IsAce() || !r.dealer.Hidden {
		return ErrInsuranceUnavailable
	}
	if p.InsuranceBet > 0 {
		return ErrInsuranceTaken
	}
	if amount <= 0 || amount > p.Hands[0].Bet/2 {
		return ErrInsuranceTooLarge
	}

	if err := r.ledger.Extend(ctx, p.session, amount); err != nil {
		return err
	}
	p.InsuranceBet = amount
	r.logger.Info("insurance taken", "player", playerID, "amount", amount)
	return nil
}

// NeedsDealer reports whether every player hand is terminal and the dealer
// sequence should be scheduled.
func (r *Room) NeedsDealer() bool {
	return r.phase == PhasePlaying && r.seq != nil && r.seq.RoundComplete()
}

// DealerStep performs exactly one observable step of the dealer's turn:
// reveal, a single hit, or the final resolution. Callers schedule steps
// with a delay between them and re-validate the room generation before
// each call. Returns true once the round is resolved.
func (r *Room) DealerStep(ctx context.Context) (bool, error) {
	if !r.NeedsDealer() {
		return false, ErrDealerNotDue
	}

	if r.dealer.Hidden {
		r.dealer.Reveal()
		r.logger.Debug("dealer reveals", "score", r.dealer.Score, "blackjack", r.dealer.Blackjack)
		if r.dealer.Blackjack {
			return true, r.resolve(ctx)
		}
		return false, nil
	}

	if !r.dealer.IsBust() && r.policy(r.dealer.Score, r.survivingScores()) {
		card, err := r.shoe.Draw()
		if err != nil {
			return true, r.abortRound(ctx, err)
		}
		r.dealer.AddCard(card)
		r.logger.Debug("dealer hits", "card", card.String(), "score", r.dealer.Score)
		return false, nil
	}

	return true, r.resolve(ctx)
}

// Reset returns the room to the waiting phase for the next round. Any
// outstanding stakes are refunded. Cumulative winnings survive unless the
// caller asks for a clean scoreboard.
func (r *Room) Reset(ctx context.Context, preserveWinnings bool) {
	r.generation++

	for _, dec := range r.bets {
		if dec.session != nil {
			if err := r.ledger.Settle(ctx, dec.session, dec.session.Staked); err != nil {
				r.logger.Error("failed to refund bet on reset", "error", err)
			}
		}
	}
	r.bets = make(map[string]*BetDecision)

	for _, p := range r.players {
		if p.session != nil {
			if err := r.ledger.Settle(ctx, p.session, p.session.Staked); err != nil {
				r.logger.Error("failed to refund stake on reset", "player", p.ID, "error", err)
			}
			p.session = nil
		}
		p.Hands = []*Hand{NewHand(0)}
		p.CurrentHand = 0
		p.InsuranceBet = 0
		p.InRound = false
		if !preserveWinnings {
			p.Winnings = 0
		}
	}

	r.dealer = &DealerHand{Hidden: true}
	r.shoe = nil
	r.seq = nil
	r.lastResult = nil
	r.phase = PhaseWaiting

	r.logger.Info("room reset", "preserveWinnings", preserveWinnings, "generation", r.generation)
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

// resolve compares every surviving hand against the dealer, settles all
// sessions and publishes the round result.
func (r *Room) resolve(ctx context.Context) error {
	result := &RoundResult{
		DealerBust: r.dealer.IsBust(),
		Scoreboard: make(map[string]int),
	}

	var settleErr error
	for _, p := range r.players {
		if !p.InRound {
			continue
		}
		pr := resolvePlayer(p, r.dealer)
		p.Winnings += pr.Net
		result.Players = append(result.Players, pr)

		if p.session != nil {
			if err := r.ledger.Settle(ctx, p.session, pr.Returned); err != nil {
				settleErr = errors.Join(settleErr, fmt.Errorf("settle %s: %w", p.ID, err))
			}
			p.session = nil
		}
	}
	for _, p := range r.players {
		result.Scoreboard[p.ID] = p.Winnings
	}

	r.lastResult = result
	r.bets = make(map[string]*BetDecision)
	r.phase = PhaseFinished

	r.logger.Info("round resolved", "dealerScore", r.dealer.Score, "dealerBust", result.DealerBust)
	return settleErr
}

// abortRound surfaces a fatal round error (deck exhaustion), refunding
// every stake and returning the room to the waiting phase.
func (r *Room) abortRound(ctx context.Context, cause error) error {
	r.logger.Error("round aborted", "error", cause)
	r.Reset(ctx, true)
	return fmt.Errorf("round aborted: %w", cause)
}

// actingHand validates that it is the player's turn and returns their
// currently active hand.
func (r *Room) actingHand(playerID string) (*Player, *Hand, error) {
	if r.phase != PhasePlaying {
		return nil, nil, ErrWrongPhase
	}
	pid, handIdx, ok := r.seq.Current()
	if !ok || pid != playerID {
		return nil, nil, ErrNotYourTurn
	}

	p := r.findPlayer(playerID)
	if p == nil {
		return nil, nil, ErrNotSeated
	}
	if handIdx >= len(p.Hands) {
		return nil, nil, ErrHandNotActive
	}
	h := p.Hands[handIdx]
	if h.Status != HandActive {
		return nil, nil, ErrHandNotActive
	}
	return p, h, nil
}

func (r *Room) advanceTurn() {
	r.seq.Advance(r.activeHands)
	r.syncTurn()
}

func (r *Room) syncTurn() {
	if r.seq == nil {
		return
	}
	if pid, handIdx, ok := r.seq.Current(); ok {
		if p := r.findPlayer(pid); p != nil {
			p.CurrentHand = handIdx
		}
	}
}

func (r *Room) findPlayer(playerID string) *Player {
	for _, p := range r.players {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}

// activeHands adapts player state to the turn sequencer's view
func (r *Room) activeHands(playerID string) []int {
	p := r.findPlayer(playerID)
	if p == nil || !p.InRound {
		return nil
	}
	var out []int
	for i, h := range p.Hands {
		if h.Status == HandActive {
			out = append(out, i)
		}
	}
	return out
}

// survivingScores collects the scores of the player hands whose outcome
// still depends on the dealer's total, the input the dealer policy acts
// on. Busted hands have already lost and dealt blackjacks settle at 3:2
// whatever the dealer draws, so both are excluded.
func (r *Room) survivingScores() []int {
	var scores []int
	for _, p := range r.players {
		if !p.InRound {
			continue
		}
		for _, h := range p.Hands {
			if !h.IsBust() && !h.Blackjack {
				scores = append(scores, h.Score)
			}
		}
	}
	return scores
}
