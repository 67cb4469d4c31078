package model

import (
	"time"

	"github.com/google/uuid"
)

// QuizItem is one question: its text, ordered options, and the index of the
// correct option within that order.
type QuizItem struct {
	QuestionText  string   `json:"question_text"`
	Options       []string `json:"options"`
	CorrectOption int      `json:"correct_option"`
}

// Quiz is a stored quiz definition. Items live as a jsonb column. The two
// time-limit fields are independent raw settings; which one governs an
// attempt is resolved at session start, never here.
type Quiz struct {
	ID                      uuid.UUID  `json:"id"`
	OwnerID                 uuid.UUID  `json:"owner_id"`
	FolderID                *uuid.UUID `json:"folder_id,omitempty"`
	Title                   string     `json:"title"`
	Items                   []QuizItem `json:"items"`
	SessionTimeLimitSeconds *int       `json:"session_time_limit_seconds,omitempty"`
	PerItemTimeLimitSeconds *int       `json:"per_item_time_limit_seconds,omitempty"`
	Randomize               bool       `json:"randomize"`
	ShareCode               string     `json:"share_code,omitempty"`
	CreatedAt               time.Time  `json:"created_at"`
	UpdatedAt               time.Time  `json:"updated_at"`
}

// QuizItemRequest mirrors QuizItem with validation tags for authoring.
type QuizItemRequest struct {
	QuestionText  string   `json:"question_text" binding:"required,min=1,max=2000"`
	Options       []string `json:"options" binding:"required,min=2,max=10,dive,min=1,max=500"`
	CorrectOption int      `json:"correct_option" binding:"min=0"`
}

// CreateQuizRequest is the payload for creating a quiz.
type CreateQuizRequest struct {
	Title                   string            `json:"title" binding:"required,min=1,max=255"`
	Items                   []QuizItemRequest `json:"items" binding:"required,min=1,dive"`
	SessionTimeLimitSeconds *int              `json:"session_time_limit_seconds" binding:"omitempty,min=10,max=86400"`
	PerItemTimeLimitSeconds *int              `json:"per_item_time_limit_seconds" binding:"omitempty,min=5,max=3600"`
	Randomize               bool              `json:"randomize"`
	FolderID                *uuid.UUID        `json:"folder_id" binding:"omitempty"`
}

// UpdateQuizRequest is the payload for updating a quiz. Nil fields are
// left untouched.
type UpdateQuizRequest struct {
	Title                   *string           `json:"title" binding:"omitempty,min=1,max=255"`
	Items                   []QuizItemRequest `json:"items" binding:"omitempty,min=1,dive"`
	SessionTimeLimitSeconds *int              `json:"session_time_limit_seconds" binding:"omitempty,min=10,max=86400"`
	PerItemTimeLimitSeconds *int              `json:"per_item_time_limit_seconds" binding:"omitempty,min=5,max=3600"`
	Randomize               *bool             `json:"randomize" binding:"omitempty"`
	FolderID                *uuid.UUID        `json:"folder_id" binding:"omitempty"`
}

// GrantRole enumerates what a permission grant allows.
type GrantRole string

const (
	// GrantRoleViewer may see the quiz definition (without answer keys).
	GrantRoleViewer GrantRole = "VIEWER"
	// GrantRoleTaker may start attempts against the quiz.
	GrantRoleTaker GrantRole = "TAKER"
)

// QuizGrant is a per-user permission on a quiz.
type QuizGrant struct {
	QuizID    uuid.UUID `json:"quiz_id"`
	UserID    uuid.UUID `json:"user_id"`
	Role      GrantRole `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// AddGrantRequest is the payload for granting a user access to a quiz.
type AddGrantRequest struct {
	UserEmail string `json:"user_email" binding:"required,email"`
	Role      string `json:"role" binding:"required,oneof=VIEWER TAKER"`
}

// QuizForTaker is a quiz stripped of answer keys, safe to send to someone
// about to take it. Cached in Redis keyed by quiz ID.
type QuizForTaker struct {
	ID                      uuid.UUID      `json:"id"`
	Title                   string         `json:"title"`
	Items                   []ItemForTaker `json:"items"`
	SessionTimeLimitSeconds *int           `json:"session_time_limit_seconds,omitempty"`
	PerItemTimeLimitSeconds *int           `json:"per_item_time_limit_seconds,omitempty"`
	Randomize               bool           `json:"randomize"`
}

// ItemForTaker is a question without its correct-option index.
type ItemForTaker struct {
	QuestionText string   `json:"question_text"`
	Options      []string `json:"options"`
}

// ForTaker builds the answer-key-free projection of a quiz.
func (q *Quiz) ForTaker() *QuizForTaker {
	items := make([]ItemForTaker, len(q.Items))
	for i, it := range q.Items {
		items[i] = ItemForTaker{QuestionText: it.QuestionText, Options: it.Options}
	}
	return &QuizForTaker{
		ID:                      q.ID,
		Title:                   q.Title,
		Items:                   items,
		SessionTimeLimitSeconds: q.SessionTimeLimitSeconds,
		PerItemTimeLimitSeconds: q.PerItemTimeLimitSeconds,
		Randomize:               q.Randomize,
	}
}
