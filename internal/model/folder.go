package model

import (
	"time"

	"github.com/google/uuid"
)

// Folder groups quizzes for one owner.
type Folder struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Name      string    `json:"name"`
	QuizCount int       `json:"quiz_count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateFolderRequest is the payload for creating a folder.
type CreateFolderRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// RenameFolderRequest is the payload for renaming a folder.
type RenameFolderRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}
