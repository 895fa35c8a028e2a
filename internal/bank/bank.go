// Package bank is the engine's narrow boundary to the chip ledger. The
// engine decides outcomes and amounts; durable balances live behind the
// Ledger interface.
package bank

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrInsufficientBalance rejects a wager the player cannot cover. The text
// is shown to the player as-is.
var ErrInsufficientBalance = errors.New("insufficient balance")

// Session is the handle returned when a bet is placed. Staked accumulates
// the player's total exposure for the round: the opening wager plus any
// double-down, split or insurance stakes added through Extend.
type Session struct {
	ID       string
	PlayerID string
	Staked   int
}

// Ledger is implemented by chip stores. All methods are safe for
// concurrent use across rooms.
type Ledger interface {
	// PlaceBet deducts the opening wager and opens a session.
	PlaceBet(ctx context.Context, playerID string, amount int) (*Session, error)
	// Extend deducts an additional stake against an open session.
	Extend(ctx context.Context, s *Session, amount int) error
	// Settle closes the session, crediting the amount returned to the
	// player. A losing round settles with returned == 0.
	Settle(ctx context.Context, s *Session, returned int) error
	// Balance reports the player's spendable chips.
	Balance(ctx context.Context, playerID string) (int, error)
}

func newSessionID() string {
	return uuid.NewString()
}
