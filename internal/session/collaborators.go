package session

import (
	"context"
	"time"

	"github.com/quizzine/quizzine-backend/internal/model"
)

// Clock supplies wall-clock time. Elapsed time is always computed from
// timestamp deltas, never from tick counts, so missed ticks under load do
// not lose accounting accuracy. Tests inject a manual clock.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// AttemptSink receives the finished AttemptRecord. The engine treats the
// handoff as fire-and-forget: a sink error is logged and never re-entered
// into the (already terminal) state machine.
type AttemptSink interface {
	PersistAttempt(ctx context.Context, record *model.AttemptRecord) error
}

// Notifier receives advisory UI signals. None of them carry state the
// engine depends on; dropping every signal never affects correctness.
type Notifier interface {
	// Countdown reports the remaining seconds after a tick. The timer that
	// does not apply to the session's mode is reported as -1.
	Countdown(sessionRemaining, itemRemaining int)
	// Warning fires at fixed remaining-time thresholds in session-timer mode.
	Warning(secondsRemaining int)
	// Submitted fires once, when the attempt record has been produced.
	Submitted(record *model.AttemptRecord)
}

// NopNotifier discards all signals.
type NopNotifier struct{}

func (NopNotifier) Countdown(sessionRemaining, itemRemaining int) {}
func (NopNotifier) Warning(secondsRemaining int)                  {}
func (NopNotifier) Submitted(record *model.AttemptRecord)         {}

// nopSink discards attempt records. Used when no sink is configured
// (unit tests, dry runs); the record still reaches the caller.
type nopSink struct{}

func (nopSink) PersistAttempt(ctx context.Context, record *model.AttemptRecord) error { return nil }
