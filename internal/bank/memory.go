package bank

import (
	"context"
	"fmt"
	"sync"
)

// MemoryLedger keeps balances in process memory. Used for tests and for
// standalone play where no external chip store is configured.
type MemoryLedger struct {
	mu       sync.Mutex
	balances map[string]int
	starting int
}

// NewMemoryLedger creates a ledger that grants every new player the given
// starting balance on first use.
func NewMemoryLedger(startingBalance int) *MemoryLedger {
	return &MemoryLedger{
		balances: make(map[string]int),
		starting: startingBalance,
	}
}

// PlaceBet implements Ledger
func (m *MemoryLedger) PlaceBet(ctx context.Context, playerID string, amount int) (*Session, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("bet amount must be positive, got %d", amount)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	bal := m.balanceLocked(playerID)
	if bal < amount {
		return nil, ErrInsufficientBalance
	}
	m.balances[playerID] = bal - amount

	return &Session{ID: newSessionID(), PlayerID: playerID, Staked: amount}, nil
}

// Extend implements Ledger
func (m *MemoryLedger) Extend(ctx context.Context, s *Session, amount int) error {
	if amount <= 0 {
		return fmt.Errorf("stake amount must be positive, got %d", amount)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	bal := m.balanceLocked(s.PlayerID)
	if bal < amount {
		return ErrInsufficientBalance
	}
	m.balances[s.PlayerID] = bal - amount
	s.Staked += amount
	return nil
}

// Settle implements Ledger
func (m *MemoryLedger) Settle(ctx context.Context, s *Session, returned int) error {
	if returned < 0 {
		return fmt.Errorf("settlement cannot be negative, got %d", returned)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.balances[s.PlayerID] = m.balanceLocked(s.PlayerID) + returned
	return nil
}

// Balance implements Ledger
func (m *MemoryLedger) Balance(ctx context.Context, playerID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balanceLocked(playerID), nil
}

func (m *MemoryLedger) balanceLocked(playerID string) int {
	if bal, ok := m.balances[playerID]; ok {
		return bal
	}
	m.balances[playerID] = m.starting
	return m.starting
}
