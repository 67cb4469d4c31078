package websocket

import (
	"sync"

	"github.com/quizzine/quizzine-backend/internal/model"
	"github.com/rs/zerolog"
)

// SessionHub fans timer events from one live session out to its stream
// subscribers. It satisfies the session engine's Notifier interface, so
// the engine never learns about websockets.
type SessionHub struct {
	mu          sync.Mutex
	subscribers map[chan Event]struct{}
	closed      bool
	log         zerolog.Logger
}

// NewSessionHub creates a hub for a single session.
func NewSessionHub(log zerolog.Logger) *SessionHub {
	return &SessionHub{
		subscribers: make(map[chan Event]struct{}),
		log:         log.With().Str("component", "session_hub").Logger(),
	}
}

// Subscribe registers a new stream. The returned channel is buffered; a
// subscriber that stops draining loses events rather than stalling the
// session's timer goroutine. The second return value unsubscribes.
func (h *SessionHub) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 16)

	h.mu.Lock()
	if h.closed {
		close(ch)
		h.mu.Unlock()
		return ch, func() {}
	}
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()

	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.subscribers[ch]; ok {
			delete(h.subscribers, ch)
			close(ch)
		}
	}
}

// Close drops all subscribers. Called when the session leaves the registry.
func (h *SessionHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for ch := range h.subscribers {
		close(ch)
	}
	h.subscribers = nil
}

func (h *SessionHub) broadcast(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subscribers {
		select {
		case ch <- ev:
		default:
			h.log.Debug().Str("event", ev.Type).Msg("Subscriber buffer full, event dropped")
		}
	}
}

// Countdown implements session.Notifier.
func (h *SessionHub) Countdown(sessionRemaining, itemRemaining int) {
	payload := CountdownPayload{}
	if sessionRemaining >= 0 {
		payload.SessionRemainingSeconds = &sessionRemaining
	}
	if itemRemaining >= 0 {
		payload.ItemRemainingSeconds = &itemRemaining
	}
	h.broadcast(Event{Type: EventCountdown, Payload: payload})
}

// Warning implements session.Notifier.
func (h *SessionHub) Warning(secondsRemaining int) {
	h.broadcast(Event{Type: EventWarning, Payload: WarningPayload{SecondsRemaining: secondsRemaining}})
}

// Submitted implements session.Notifier.
func (h *SessionHub) Submitted(record *model.AttemptRecord) {
	h.broadcast(Event{
		Type: EventSubmitted,
		Payload: SubmittedPayload{
			AttemptID:       record.ID.String(),
			ScorePercentage: record.ScorePercentage,
		},
	})
}
