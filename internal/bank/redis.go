package bank

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisLedger stores balances in Redis so chips survive server restarts.
// Balances live under one key per player; the deduction is a Lua script so
// the check-and-debit is atomic against concurrent rooms.
type RedisLedger struct {
	client   *redis.Client
	starting int
}

// debitScript debits amount from the key if the balance covers it,
// initialising absent players to the starting balance first. Returns the
// new balance, or -1 when the balance is insufficient.
var debitScript = redis.NewScript(`
local bal = redis.call("GET", KEYS[1])
if not bal then
  bal = ARGV[2]
  redis.call("SET", KEYS[1], bal)
end
bal = tonumber(bal)
local amount = tonumber(ARGV[1])
if bal < amount then
  return -1
end
return redis.call("DECRBY", KEYS[1], amount)
`)

// NewRedisLedger creates a ledger backed by the given Redis client
func NewRedisLedger(client *redis.Client, startingBalance int) *RedisLedger {
	return &RedisLedger{client: client, starting: startingBalance}
}

func balanceKey(playerID string) string {
	return "casino:balance:" + playerID
}

// PlaceBet implements Ledger
func (r *RedisLedger) PlaceBet(ctx context.Context, playerID string, amount int) (*Session, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("bet amount must be positive, got %d", amount)
	}

	if err := r.debit(ctx, playerID, amount); err != nil {
		return nil, err
	}
	return &Session{ID: newSessionID(), PlayerID: playerID, Staked: amount}, nil
}

// Extend implements Ledger
func (r *RedisLedger) Extend(ctx context.Context, s *Session, amount int) error {
	if amount <= 0 {
		return fmt.Errorf("stake amount must be positive, got %d", amount)
	}

	if err := r.debit(ctx, s.PlayerID, amount); err != nil {
		return err
	}
	s.Staked += amount
	return nil
}

// Settle implements Ledger
func (r *RedisLedger) Settle(ctx context.Context, s *Session, returned int) error {
	if returned < 0 {
		return fmt.Errorf("settlement cannot be negative, got %d", returned)
	}
	if returned == 0 {
		return nil
	}

	if err := r.client.IncrBy(ctx, balanceKey(s.PlayerID), int64(returned)).Err(); err != nil {
		return fmt.Errorf("settle %s: %w", s.ID, err)
	}
	return nil
}

// Balance implements Ledger
func (r *RedisLedger) Balance(ctx context.Context, playerID string) (int, error) {
	bal, err := r.client.Get(ctx, balanceKey(playerID)).Int()
	if err == redis.Nil {
		return r.starting, nil
	}
	if err != nil {
		return 0, fmt.Errorf("balance %s: %w", playerID, err)
	}
	return bal, nil
}

func (r *RedisLedger) debit(ctx context.Context, playerID string, amount int) error {
	res, err := debitScript.Run(ctx, r.client,
		[]string{balanceKey(playerID)}, amount, r.starting).Int64()
	if err != nil {
		return fmt.Errorf("debit %s: %w", playerID, err)
	}
	if res < 0 {
		return ErrInsufficientBalance
	}
	return nil
}
