package session

import (
	"context"
	"time"
)

// Warning thresholds for session-timer mode, in seconds remaining. The
// signals are advisory; correctness never depends on their delivery.
var warningThresholds = [...]int{30, 10}

// startTimer launches the one-tick-per-second countdown goroutine. The
// goroutine is scoped to this session only, never shared across sessions,
// and is torn down the instant the session submits.
func (s *Session) startTimer() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancelTimer = cancel

	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.tick()
			}
		}
	}()
}

// stopTimerLocked cancels the countdown goroutine. Must hold s.mu, so the
// teardown is atomic with the phase transition that triggered it: once a
// transition fires, the countdown cannot fire again for the same state.
func (s *Session) stopTimerLocked() {
	if s.cancelTimer != nil {
		s.cancelTimer()
		s.cancelTimer = nil
	}
}

// tick applies one countdown second. A tick arriving after submission (the
// manual-submit-vs-expiry race) is a no-op thanks to the phase check; the
// mutex guarantees the losing trigger observes the winner's completed
// transition, never a partial one.
func (s *Session) tick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == PhaseSubmitted {
		return
	}

	switch s.cfg.Mode {
	case ModeSessionTimer:
		s.sessionRemaining--
		if s.sessionRemaining < 0 {
			s.sessionRemaining = 0
		}
		s.notifier.Countdown(s.sessionRemaining, -1)
		for _, t := range warningThresholds {
			if s.sessionRemaining == t {
				s.notifier.Warning(t)
			}
		}
		if s.sessionRemaining == 0 {
			// Forced, non-interactive submit regardless of position or
			// answer completeness.
			_, _ = s.finalizeLocked(s.clock.Now())
		}

	case ModePerItemTimer:
		s.itemRemaining--
		if s.itemRemaining < 0 {
			s.itemRemaining = 0
		}
		s.notifier.Countdown(-1, s.itemRemaining)
		if s.itemRemaining == 0 {
			s.advanceForcedLocked()
		}
	}
}
