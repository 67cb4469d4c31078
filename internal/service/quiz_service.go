package service

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/quizzine/quizzine-backend/internal/config"
	"github.com/quizzine/quizzine-backend/internal/model"
	"github.com/quizzine/quizzine-backend/internal/repository"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Domain errors.
var (
	ErrNotQuizOwner       = errors.New("not the owner of this quiz")
	ErrQuizAccess         = errors.New("no access to this quiz")
	ErrGrantExists        = errors.New("grant already exists for this user")
	ErrInvalidCorrectOpt  = errors.New("correct option index out of option range")
	ErrShareCodeThrottled = errors.New("too many share code lookups")
)

const (
	shareCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	shareCodeLength   = 6

	// quizPayloadTTL bounds staleness of the cached taker payload; edits
	// also invalidate eagerly.
	quizPayloadTTL = time.Hour

	// shareCodeLookupBudget caps code-guessing per user per hour.
	shareCodeLookupBudget = 30
)

// QuizService handles quiz authoring, sharing, and the answer-key-free
// payload cache in Redis.
type QuizService struct {
	quizRepo *repository.QuizRepository
	userRepo *repository.UserRepository
	rdb      *redis.Client
	log      zerolog.Logger
}

// NewQuizService creates a new QuizService.
func NewQuizService(quizRepo *repository.QuizRepository, userRepo *repository.UserRepository, rdb *redis.Client, log zerolog.Logger) *QuizService {
	return &QuizService{
		quizRepo: quizRepo,
		userRepo: userRepo,
		rdb:      rdb,
		log:      log.With().Str("component", "quiz_service").Logger(),
	}
}

// newShareCode draws a random code from an alphabet without look-alike
// characters.
func newShareCode() (string, error) {
	code := make([]byte, shareCodeLength)
	max := big.NewInt(int64(len(shareCodeAlphabet)))
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		code[i] = shareCodeAlphabet[n.Int64()]
	}
	return string(code), nil
}

func itemsFromRequest(reqItems []model.QuizItemRequest) ([]model.QuizItem, error) {
	items := make([]model.QuizItem, len(reqItems))
	for i, it := range reqItems {
		if it.CorrectOption < 0 || it.CorrectOption >= len(it.Options) {
			return nil, fmt.Errorf("item %d: %w", i, ErrInvalidCorrectOpt)
		}
		items[i] = model.QuizItem{
			QuestionText:  it.QuestionText,
			Options:       it.Options,
			CorrectOption: it.CorrectOption,
		}
	}
	return items, nil
}

// Create inserts a new quiz with a fresh share code.
func (s *QuizService) Create(ctx context.Context, ownerID uuid.UUID, req *model.CreateQuizRequest) (*model.Quiz, error) {
	items, err := itemsFromRequest(req.Items)
	if err != nil {
		return nil, err
	}
	code, err := newShareCode()
	if err != nil {
		return nil, fmt.Errorf("share code: %w", err)
	}

	quiz := &model.Quiz{
		OwnerID:                 ownerID,
		FolderID:                req.FolderID,
		Title:                   req.Title,
		Items:                   items,
		SessionTimeLimitSeconds: req.SessionTimeLimitSeconds,
		PerItemTimeLimitSeconds: req.PerItemTimeLimitSeconds,
		Randomize:               req.Randomize,
		ShareCode:               code,
	}
	if err := s.quizRepo.Create(ctx, quiz); err != nil {
		return nil, fmt.Errorf("create quiz: %w", err)
	}
	return quiz, nil
}

// GetForOwner retrieves a quiz including answer keys; owner only.
func (s *QuizService) GetForOwner(ctx context.Context, quizID, callerID uuid.UUID) (*model.Quiz, error) {
	quiz, err := s.quizRepo.GetByID(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("get quiz: %w", err)
	}
	if quiz.OwnerID != callerID {
		return nil, ErrNotQuizOwner
	}
	return quiz, nil
}

// GetForViewer retrieves the answer-key-free projection for a grant
// holder. Any grant role may view; owners should use GetForOwner.
func (s *QuizService) GetForViewer(ctx context.Context, quizID, callerID uuid.UUID) (*model.QuizForTaker, error) {
	if _, err := s.quizRepo.GetGrant(ctx, quizID, callerID); err != nil {
		return nil, ErrQuizAccess
	}
	return s.GetTakerPayload(ctx, quizID)
}

// Update modifies a quiz in place; owner only. The payload cache is
// invalidated so takers never see a stale mix.
func (s *QuizService) Update(ctx context.Context, quizID, callerID uuid.UUID, req *model.UpdateQuizRequest) (*model.Quiz, error) {
	quiz, err := s.GetForOwner(ctx, quizID, callerID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		quiz.Title = *req.Title
	}
	if req.Items != nil {
		items, err := itemsFromRequest(req.Items)
		if err != nil {
			return nil, err
		}
		quiz.Items = items
	}
	if req.SessionTimeLimitSeconds != nil {
		quiz.SessionTimeLimitSeconds = req.SessionTimeLimitSeconds
	}
	if req.PerItemTimeLimitSeconds != nil {
		quiz.PerItemTimeLimitSeconds = req.PerItemTimeLimitSeconds
	}
	if req.Randomize != nil {
		quiz.Randomize = *req.Randomize
	}
	if req.FolderID != nil {
		quiz.FolderID = req.FolderID
	}

	if err := s.quizRepo.Update(ctx, quiz); err != nil {
		return nil, fmt.Errorf("update quiz: %w", err)
	}
	s.invalidatePayload(ctx, quizID)
	return quiz, nil
}

// Delete removes a quiz; owner only.
func (s *QuizService) Delete(ctx context.Context, quizID, callerID uuid.UUID) error {
	quiz, err := s.GetForOwner(ctx, quizID, callerID)
	if err != nil {
		return err
	}
	if err := s.quizRepo.Delete(ctx, quizID); err != nil {
		return fmt.Errorf("delete quiz: %w", err)
	}
	s.invalidatePayload(ctx, quizID)
	if err := s.rdb.Del(ctx, config.CacheKey.ShareCodeKey(quiz.ShareCode)).Err(); err != nil {
		s.log.Warn().Err(err).Msg("Stale share code eviction failed")
	}
	return nil
}

// ListByOwner retrieves a page of the caller's quizzes along with the
// total count.
func (s *QuizService) ListByOwner(ctx context.Context, ownerID uuid.UUID, page, perPage int) ([]model.Quiz, int, error) {
	page, perPage = clampPage(page, perPage)
	quizzes, total, err := s.quizRepo.ListByOwnerPaginated(ctx, ownerID, perPage, (page-1)*perPage)
	if err != nil {
		return nil, 0, err
	}
	if quizzes == nil {
		quizzes = []model.Quiz{}
	}
	return quizzes, total, nil
}

// RegenerateShareCode replaces the quiz's share code; owner only. The old
// code stops working immediately.
func (s *QuizService) RegenerateShareCode(ctx context.Context, quizID, callerID uuid.UUID) (string, error) {
	quiz, err := s.GetForOwner(ctx, quizID, callerID)
	if err != nil {
		return "", err
	}
	code, err := newShareCode()
	if err != nil {
		return "", fmt.Errorf("share code: %w", err)
	}
	if err := s.quizRepo.SetShareCode(ctx, quizID, code); err != nil {
		return "", fmt.Errorf("set share code: %w", err)
	}
	if err := s.rdb.Del(ctx, config.CacheKey.ShareCodeKey(quiz.ShareCode)).Err(); err != nil {
		s.log.Warn().Err(err).Msg("Stale share code eviction failed")
	}
	return code, nil
}

// ResolveShareCode maps a share code to the taker-safe quiz payload.
// Lookups are budgeted per user in Redis to slow down code guessing.
func (s *QuizService) ResolveShareCode(ctx context.Context, callerID uuid.UUID, code string) (*model.QuizForTaker, error) {
	budgetKey := config.CacheKey.ShareCodeLookupBudgetKey(callerID.String())
	count, err := s.rdb.Incr(ctx, budgetKey).Result()
	if err == nil && count == 1 {
		s.rdb.Expire(ctx, budgetKey, time.Hour)
	}
	if err == nil && count > shareCodeLookupBudget {
		return nil, ErrShareCodeThrottled
	}

	// The code→quiz mapping is cached so repeated joins through the same
	// code skip the indexed-column scan.
	codeKey := config.CacheKey.ShareCodeKey(code)
	if cached, err := s.rdb.Get(ctx, codeKey).Result(); err == nil {
		if quizID, err := uuid.Parse(cached); err == nil {
			return s.GetTakerPayload(ctx, quizID)
		}
	}

	quiz, err := s.quizRepo.GetByShareCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("resolve code: %w", err)
	}
	if err := s.rdb.Set(ctx, codeKey, quiz.ID.String(), quizPayloadTTL).Err(); err != nil {
		s.log.Warn().Err(err).Msg("Share code cache write failed")
	}
	return quiz.ForTaker(), nil
}

// CanTake reports whether a user may start an attempt: the owner always
// can, a TAKER grant can, and anyone holding the current share code can.
func (s *QuizService) CanTake(ctx context.Context, quiz *model.Quiz, userID uuid.UUID, shareCode string) bool {
	if quiz.OwnerID == userID {
		return true
	}
	if shareCode != "" && quiz.ShareCode == shareCode {
		return true
	}
	grant, err := s.quizRepo.GetGrant(ctx, quiz.ID, userID)
	if err != nil {
		return false
	}
	return grant.Role == model.GrantRoleTaker
}

// GetTakerPayload returns the answer-key-free quiz payload, cached in
// Redis. Cache misses fall back to PostgreSQL and self-heal the cache.
func (s *QuizService) GetTakerPayload(ctx context.Context, quizID uuid.UUID) (*model.QuizForTaker, error) {
	key := config.CacheKey.QuizPayloadKey(quizID.String())

	raw, err := s.rdb.Get(ctx, key).Result()
	if err == nil {
		payload := &model.QuizForTaker{}
		if err := json.Unmarshal([]byte(raw), payload); err == nil {
			return payload, nil
		}
		// Corrupt cache entry: fall through and rebuild.
	} else if !errors.Is(err, redis.Nil) {
		s.log.Warn().Err(err).Msg("Payload cache read failed")
	}

	quiz, err := s.quizRepo.GetByID(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("get quiz: %w", err)
	}
	payload := quiz.ForTaker()

	if encoded, err := json.Marshal(payload); err == nil {
		if err := s.rdb.Set(ctx, key, encoded, quizPayloadTTL).Err(); err != nil {
			s.log.Warn().Err(err).Msg("Payload cache write failed")
		}
	}
	return payload, nil
}

// AddGrant gives a user (looked up by email) access to a quiz; owner only.
func (s *QuizService) AddGrant(ctx context.Context, quizID, callerID uuid.UUID, req *model.AddGrantRequest) (*model.QuizGrant, error) {
	if _, err := s.GetForOwner(ctx, quizID, callerID); err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByEmail(ctx, req.UserEmail)
	if err != nil {
		return nil, fmt.Errorf("lookup grantee: %w", err)
	}

	grant := &model.QuizGrant{QuizID: quizID, UserID: user.ID, Role: model.GrantRole(req.Role)}
	if err := s.quizRepo.AddGrant(ctx, grant); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrGrantExists
		}
		return nil, fmt.Errorf("add grant: %w", err)
	}
	return grant, nil
}

// RemoveGrant revokes a user's access; owner only.
func (s *QuizService) RemoveGrant(ctx context.Context, quizID, callerID, granteeID uuid.UUID) error {
	if _, err := s.GetForOwner(ctx, quizID, callerID); err != nil {
		return err
	}
	return s.quizRepo.RemoveGrant(ctx, quizID, granteeID)
}

// ListGrants lists a quiz's grants; owner only.
func (s *QuizService) ListGrants(ctx context.Context, quizID, callerID uuid.UUID) ([]model.QuizGrant, error) {
	if _, err := s.GetForOwner(ctx, quizID, callerID); err != nil {
		return nil, err
	}
	grants, err := s.quizRepo.ListGrants(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if grants == nil {
		grants = []model.QuizGrant{}
	}
	return grants, nil
}

// GetByID loads a quiz with answer keys. Callers outside the owner path
// must not expose the keys; prefer GetTakerPayload for anything user-facing.
func (s *QuizService) GetByID(ctx context.Context, quizID uuid.UUID) (*model.Quiz, error) {
	return s.quizRepo.GetByID(ctx, quizID)
}

func (s *QuizService) invalidatePayload(ctx context.Context, quizID uuid.UUID) {
	if err := s.rdb.Del(ctx, config.CacheKey.QuizPayloadKey(quizID.String())).Err(); err != nil {
		s.log.Warn().Err(err).Str("quiz_id", quizID.String()).Msg("Payload cache invalidation failed")
	}
}

func clampPage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 100 {
		perPage = 100
	}
	return page, perPage
}
