package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/quizzine/quizzine-backend/internal/model"
	"github.com/quizzine/quizzine-backend/internal/repository"
)

// ErrNotFolderOwner is returned when a caller operates on someone else's folder.
var ErrNotFolderOwner = errors.New("not the owner of this folder")

// FolderService manages the flat folder organization of quizzes.
type FolderService struct {
	folderRepo *repository.FolderRepository
	quizRepo   *repository.QuizRepository
}

// NewFolderService creates a new FolderService.
func NewFolderService(folderRepo *repository.FolderRepository, quizRepo *repository.QuizRepository) *FolderService {
	return &FolderService{folderRepo: folderRepo, quizRepo: quizRepo}
}

// Create makes a new empty folder for the caller.
func (s *FolderService) Create(ctx context.Context, ownerID uuid.UUID, req *model.CreateFolderRequest) (*model.Folder, error) {
	folder := &model.Folder{OwnerID: ownerID, Name: req.Name}
	if err := s.folderRepo.Create(ctx, folder); err != nil {
		return nil, fmt.Errorf("create folder: %w", err)
	}
	return folder, nil
}

// List returns all of the caller's folders with quiz counts.
func (s *FolderService) List(ctx context.Context, ownerID uuid.UUID) ([]model.Folder, error) {
	folders, err := s.folderRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if folders == nil {
		folders = []model.Folder{}
	}
	return folders, nil
}

// ListQuizzes returns the quizzes filed under a folder; owner only.
func (s *FolderService) ListQuizzes(ctx context.Context, folderID, callerID uuid.UUID) ([]model.Quiz, error) {
	if _, err := s.getOwned(ctx, folderID, callerID); err != nil {
		return nil, err
	}
	quizzes, err := s.quizRepo.ListByFolder(ctx, folderID)
	if err != nil {
		return nil, err
	}
	if quizzes == nil {
		quizzes = []model.Quiz{}
	}
	return quizzes, nil
}

// Rename changes a folder's name; owner only.
func (s *FolderService) Rename(ctx context.Context, folderID, callerID uuid.UUID, req *model.RenameFolderRequest) (*model.Folder, error) {
	folder, err := s.getOwned(ctx, folderID, callerID)
	if err != nil {
		return nil, err
	}
	if err := s.folderRepo.Rename(ctx, folderID, req.Name); err != nil {
		return nil, fmt.Errorf("rename folder: %w", err)
	}
	folder.Name = req.Name
	return folder, nil
}

// Delete removes a folder; owner only. Quizzes filed under it are kept
// and become unfiled.
func (s *FolderService) Delete(ctx context.Context, folderID, callerID uuid.UUID) error {
	if _, err := s.getOwned(ctx, folderID, callerID); err != nil {
		return err
	}
	return s.folderRepo.Delete(ctx, folderID)
}

func (s *FolderService) getOwned(ctx context.Context, folderID, callerID uuid.UUID) (*model.Folder, error) {
	folder, err := s.folderRepo.GetByID(ctx, folderID)
	if err != nil {
		return nil, fmt.Errorf("get folder: %w", err)
	}
	if folder.OwnerID != callerID {
		return nil, ErrNotFolderOwner
	}
	return folder, nil
}
