package server

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
)

// DealerScheduler drives a blackjack room's dealer turn as time-delayed
// steps so clients can render the reveal and each hit as they happen. One
// chain runs per room at a time; every tick re-validates the room
// generation before mutating, so a reset mid-chain makes the remaining
// ticks no-ops.
type DealerScheduler struct {
	clock  quartz.Clock
	delay  time.Duration
	logger *log.Logger
}

// NewDealerScheduler creates a scheduler ticking on the given clock
func NewDealerScheduler(clock quartz.Clock, delay time.Duration, logger *log.Logger) *DealerScheduler {
	return &DealerScheduler{
		clock:  clock,
		delay:  delay,
		logger: logger.WithPrefix("dealer"),
	}
}

// Kick starts the step chain if the room's dealer is due and no chain is
// already pending. broadcast runs after every applied step.
func (s *DealerScheduler) Kick(e *Entry, broadcast func()) {
	if e.Blackjack == nil {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.dealerPending || !e.Blackjack.NeedsDealer() {
		return
	}
	e.dealerPending = true
	s.schedule(e, e.Blackjack.Generation(), broadcast)
}

// schedule queues one step. Caller holds e.mu.
func (s *DealerScheduler) schedule(e *Entry, generation uint64, broadcast func()) {
	s.clock.AfterFunc(s.delay, func() {
		e.mu.Lock()
		r := e.Blackjack

		if r.Generation() != generation || !r.NeedsDealer() {
			e.dealerPending = false
			e.mu.Unlock()
			s.logger.Debug("dealer step dropped", "room", r.ID(), "generation", generation)
			return
		}

		done, err := r.DealerStep(context.Background())
		if err != nil {
			s.logger.Error("dealer step failed", "room", r.ID(), "error", err)
		}
		if done {
			e.dealerPending = false
		} else {
			s.schedule(e, generation, broadcast)
		}
		e.mu.Unlock()

		broadcast()
	})
}
