// Package session implements the timed assessment engine: it turns a stored
// quiz definition into a live, navigable, time-bounded attempt and produces
// an immutable AttemptRecord when the attempt ends. The package is purely
// in-memory; persistence and transport are injected as narrow interfaces.
package session

import "github.com/quizzine/quizzine-backend/internal/model"

// Mode is the timing discipline of one attempt, resolved exactly once at
// session creation. No component re-derives it from raw config afterwards.
type Mode string

const (
	// ModeSessionTimer runs a single countdown over the whole attempt.
	ModeSessionTimer Mode = "SESSION_TIMER"
	// ModeUntimed runs no countdown at all.
	ModeUntimed Mode = "UNTIMED"
	// ModePerItemTimer runs one countdown per item and locks navigation
	// to strictly forward.
	ModePerItemTimer Mode = "PER_ITEM_TIMER"
)

// Phase is the session-level lifecycle state. PhaseSubmitted is terminal.
type Phase string

const (
	PhaseInProgress Phase = "IN_PROGRESS"
	PhaseReviewing  Phase = "REVIEWING"
	PhaseSubmitted  Phase = "SUBMITTED"
)

// ItemStatus tracks how far the user has interacted with one item. The
// progression is one-way: once ATTEMPTED an item never reverts.
type ItemStatus string

const (
	ItemUnseen    ItemStatus = "UNSEEN"
	ItemSeen      ItemStatus = "SEEN"
	ItemAttempted ItemStatus = "ATTEMPTED"
)

// Config holds the settings resolved for one attempt: the quiz's own values
// with any per-attempt overrides applied field by field. Immutable for the
// session's lifetime.
type Config struct {
	Mode                    Mode
	SessionTimeLimitSeconds int
	PerItemTimeLimitSeconds int
	Randomize               bool
}

// resolveConfig merges overrides over the quiz definition and derives the
// mode. Precedence: a per-item limit wins over a session limit; neither
// means untimed.
func resolveConfig(quiz *model.Quiz, ov *model.SessionOverrides) Config {
	sessionLimit := quiz.SessionTimeLimitSeconds
	perItemLimit := quiz.PerItemTimeLimitSeconds
	randomize := quiz.Randomize

	if ov != nil {
		if ov.SessionTimeLimitSeconds != nil {
			sessionLimit = ov.SessionTimeLimitSeconds
		}
		if ov.PerItemTimeLimitSeconds != nil {
			perItemLimit = ov.PerItemTimeLimitSeconds
		}
		if ov.Randomize != nil {
			randomize = *ov.Randomize
		}
	}

	cfg := Config{Mode: ModeUntimed, Randomize: randomize}
	switch {
	case perItemLimit != nil && *perItemLimit > 0:
		cfg.Mode = ModePerItemTimer
		cfg.PerItemTimeLimitSeconds = *perItemLimit
	case sessionLimit != nil && *sessionLimit > 0:
		cfg.Mode = ModeSessionTimer
		cfg.SessionTimeLimitSeconds = *sessionLimit
	}
	return cfg
}
