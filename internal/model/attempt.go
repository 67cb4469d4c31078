package model

import (
	"time"

	"github.com/google/uuid"
)

// Unanswered is the sentinel stored in SelectedAnswers for an item the user
// never answered. It can never match a correct-option index.
const Unanswered = -1

// AttemptRecord is the immutable result of one completed quiz attempt.
// SelectedAnswers and ElapsedSecondsPerItem are indexed by the item's
// position in the stored quiz, regardless of the order the session
// presented items in.
type AttemptRecord struct {
	ID                    uuid.UUID `json:"id"`
	SessionID             uuid.UUID `json:"session_id"`
	QuizID                uuid.UUID `json:"quiz_id"`
	UserID                uuid.UUID `json:"user_id"`
	SelectedAnswers       []int     `json:"selected_answers"`
	ElapsedSecondsPerItem []int64   `json:"elapsed_seconds_per_item"`
	TotalElapsedSeconds   int64     `json:"total_elapsed_seconds"`
	ScorePercentage       float64   `json:"score_percentage"`
	CompletedAt           time.Time `json:"completed_at"`
}

// SessionOverrides optionally replaces a quiz's timing/randomize settings
// for a single attempt. Nil fields defer to the stored definition. The
// stored quiz is never mutated.
type SessionOverrides struct {
	SessionTimeLimitSeconds *int  `json:"session_time_limit_seconds" binding:"omitempty,min=10,max=86400"`
	PerItemTimeLimitSeconds *int  `json:"per_item_time_limit_seconds" binding:"omitempty,min=5,max=3600"`
	Randomize               *bool `json:"randomize" binding:"omitempty"`
}
