package server

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/ardamertdedeoglu/casino-with-friends-sub000/internal/bank"
	"github.com/ardamertdedeoglu/casino-with-friends-sub000/internal/blackjack"
	"github.com/ardamertdedeoglu/casino-with-friends-sub000/internal/liarsdice"
	"github.com/ardamertdedeoglu/casino-with-friends-sub000/internal/okey"
	"github.com/ardamertdedeoglu/casino-with-friends-sub000/internal/randutil"
	"github.com/ardamertdedeoglu/casino-with-friends-sub000/internal/roomid"
)

// GameType tags which engine a room runs
type GameType string

const (
	GameBlackjack GameType = "blackjack"
	GameDice      GameType = "dice"
	GameOkey      GameType = "okey"
)

var (
	ErrUnknownGameType = errors.New("unknown game type")
	ErrRoomNotFound    = errors.New("room not found")
	ErrGameTypeInUse   = errors.New("room already runs a different game")
)

// Entry is one live room plus the lock serializing every action against
// it, including scheduled dealer steps. Exactly one of the game fields is
// set, matching Type.
type Entry struct {
	mu   sync.Mutex
	Type GameType

	Blackjack *blackjack.Room
	Dice      *liarsdice.Room
	Okey      *okey.Room

	// dealerPending guards against scheduling two dealer step chains.
	// Protected by mu.
	dealerPending bool
}

// empty reports whether no player remains. Caller holds mu.
func (e *Entry) empty() bool {
	switch e.Type {
	case GameBlackjack:
		return e.Blackjack.Empty()
	case GameDice:
		return e.Dice.Empty()
	case GameOkey:
		return e.Okey.Empty()
	}
	return true
}

// GameDefaults are the per-game settings applied to newly created rooms
type GameDefaults struct {
	Blackjack       blackjack.Settings
	BlackjackPolicy blackjack.DealerPolicy
	Dice            liarsdice.Settings
	Okey            okey.Settings
}

// Registry owns the roomID → room mapping. Rooms are created on the first
// join of an unseen id and destroyed when the last player leaves. Rooms are
// fully isolated; actions against different rooms run concurrently.
type Registry struct {
	mu    sync.Mutex
	rooms map[string]*Entry

	ledger   bank.Ledger
	defaults GameDefaults
	logger   *log.Logger

	seed    int64
	created int64
}

// NewRegistry creates an empty registry. Room decks are seeded from seed
// plus a per-room counter so a fixed seed reproduces every room's shuffle.
func NewRegistry(ledger bank.Ledger, defaults GameDefaults, seed int64, logger *log.Logger) *Registry {
	return &Registry{
		rooms:    make(map[string]*Entry),
		ledger:   ledger,
		defaults: defaults,
		logger:   logger.WithPrefix("registry"),
		seed:     seed,
	}
}

// Join looks up or creates the room and seats the player. The game type
// must match on an existing room.
func (r *Registry) Join(roomID string, gameType GameType, playerID, name string) (*Entry, error) {
	id := roomid.Normalize(roomID)
	if err := roomid.Validate(id); err != nil {
		return nil, err
	}

	r.mu.Lock()
	e, ok := r.rooms[id]
	if !ok {
		var err error
		e, err = r.newEntry(id, gameType)
		if err != nil {
			r.mu.Unlock()
			return nil, err
		}
		r.rooms[id] = e
		r.logger.Info("room created", "room", id, "game", string(gameType))
	}
	r.mu.Unlock()

	if e.Type != gameType {
		return nil, fmt.Errorf("%w: room %s runs %s", ErrGameTypeInUse, id, e.Type)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	var err error
	switch e.Type {
	case GameBlackjack:
		err = e.Blackjack.Join(playerID, name)
	case GameDice:
		err = e.Dice.Join(playerID, name)
	case GameOkey:
		err = e.Okey.Join(playerID, name)
	}
	if err != nil {
		r.reapLocked(id, e)
		return nil, err
	}
	return e, nil
}

// Leave removes the player from the room and destroys the room if it is
// now empty.
func (r *Registry) Leave(ctx context.Context, roomID, playerID string) error {
	id := roomid.Normalize(roomID)
	e := r.Get(id)
	if e == nil {
		return ErrRoomNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	var err error
	switch e.Type {
	case GameBlackjack:
		_, err = e.Blackjack.Leave(ctx, playerID)
	case GameDice:
		_, err = e.Dice.Leave(playerID)
	case GameOkey:
		_, err = e.Okey.Leave(playerID)
	}

	r.reapLocked(id, e)
	return err
}

// Get returns the live room entry, or nil
func (r *Registry) Get(roomID string) *Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rooms[roomid.Normalize(roomID)]
}

// Do runs fn against the room with all other actions for that room
// excluded. Rooms never share state, so fn can never observe another
// room's mutation.
func (r *Registry) Do(roomID string, fn func(*Entry) error) error {
	e := r.Get(roomID)
	if e == nil {
		return ErrRoomNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e)
}

// Count returns the number of live rooms
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms)
}

// reapLocked destroys the room if it is empty. Caller holds e.mu.
func (r *Registry) reapLocked(id string, e *Entry) {
	if !e.empty() {
		return
	}
	r.mu.Lock()
	delete(r.rooms, id)
	r.mu.Unlock()
	r.logger.Info("room destroyed", "room", id)
}

func (r *Registry) newEntry(id string, gameType GameType) (*Entry, error) {
	r.created++
	rng := randutil.New(r.seed + r.created)

	switch gameType {
	case GameBlackjack:
		return &Entry{
			Type:      GameBlackjack,
			Blackjack: blackjack.NewRoom(id, r.defaults.Blackjack, r.ledger, r.defaults.BlackjackPolicy, rng, r.logger),
		}, nil
	case GameDice:
		return &Entry{
			Type: GameDice,
			Dice: liarsdice.NewRoom(id, r.defaults.Dice, rng, r.logger),
		}, nil
	case GameOkey:
		return &Entry{
			Type: GameOkey,
			Okey: okey.NewRoom(id, r.defaults.Okey, rng, r.logger),
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownGameType, gameType)
	}
}
