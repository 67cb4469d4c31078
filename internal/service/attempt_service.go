package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/quizzine/quizzine-backend/internal/model"
	"github.com/quizzine/quizzine-backend/internal/repository"
)

// ErrNotAttemptOwner is returned when a caller reads someone else's attempt.
var ErrNotAttemptOwner = errors.New("attempt belongs to another user")

// AttemptService exposes completed attempt records: takers see their own,
// quiz owners see everyone's results for their quiz.
type AttemptService struct {
	attemptRepo *repository.AttemptRepository
	quizRepo    *repository.QuizRepository
}

// NewAttemptService creates a new AttemptService.
func NewAttemptService(attemptRepo *repository.AttemptRepository, quizRepo *repository.QuizRepository) *AttemptService {
	return &AttemptService{attemptRepo: attemptRepo, quizRepo: quizRepo}
}

// Get retrieves one attempt. Readable by the taker and by the quiz owner.
func (s *AttemptService) Get(ctx context.Context, attemptID, callerID uuid.UUID) (*model.AttemptRecord, error) {
	attempt, err := s.attemptRepo.GetByID(ctx, attemptID)
	if err != nil {
		return nil, fmt.Errorf("get attempt: %w", err)
	}
	if attempt.UserID == callerID {
		return attempt, nil
	}
	quiz, err := s.quizRepo.GetByID(ctx, attempt.QuizID)
	if err != nil || quiz.OwnerID != callerID {
		return nil, ErrNotAttemptOwner
	}
	return attempt, nil
}

// ListMine retrieves a page of the caller's own attempts.
func (s *AttemptService) ListMine(ctx context.Context, userID uuid.UUID, page, perPage int) ([]model.AttemptRecord, int, error) {
	page, perPage = clampPage(page, perPage)
	attempts, total, err := s.attemptRepo.ListByUser(ctx, userID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}
	if attempts == nil {
		attempts = []model.AttemptRecord{}
	}
	return attempts, total, nil
}

// ListForQuiz retrieves a page of results for a quiz; owner only.
func (s *AttemptService) ListForQuiz(ctx context.Context, quizID, callerID uuid.UUID, page, perPage int) ([]repository.QuizAttemptResult, int, error) {
	quiz, err := s.quizRepo.GetByID(ctx, quizID)
	if err != nil {
		return nil, 0, fmt.Errorf("get quiz: %w", err)
	}
	if quiz.OwnerID != callerID {
		return nil, 0, ErrNotQuizOwner
	}

	page, perPage = clampPage(page, perPage)
	results, total, err := s.attemptRepo.ListByQuiz(ctx, quizID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}
	if results == nil {
		results = []repository.QuizAttemptResult{}
	}
	return results, total, nil
}
