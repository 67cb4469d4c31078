package websocket

// Server-to-client event types.
const (
	EventCountdown = "countdown"
	EventWarning   = "warning"
	EventSubmitted = "submitted"
	EventError     = "error"
	EventPong      = "pong"
)

// Client-to-server action types.
const (
	ActionPing = "ping"
)

// Event is the envelope for every server-to-client message.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// CountdownPayload carries the remaining seconds for whichever timers the
// session mode runs. Absent fields mean the timer does not apply.
type CountdownPayload struct {
	SessionRemainingSeconds *int `json:"session_remaining_seconds,omitempty"`
	ItemRemainingSeconds    *int `json:"item_remaining_seconds,omitempty"`
}

// WarningPayload announces an approaching expiry.
type WarningPayload struct {
	SecondsRemaining int `json:"seconds_remaining"`
}

// SubmittedPayload announces that the session has been finalized, by the
// taker or by timer expiry.
type SubmittedPayload struct {
	AttemptID       string  `json:"attempt_id"`
	ScorePercentage float64 `json:"score_percentage"`
}

// ErrorPayload reports a stream-level problem before the connection closes.
type ErrorPayload struct {
	Message string `json:"message"`
}

// Action is the envelope for client-to-server messages.
type Action struct {
	Type string `json:"type"`
}
