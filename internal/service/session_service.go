package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/quizzine/quizzine-backend/internal/config"
	"github.com/quizzine/quizzine-backend/internal/model"
	"github.com/quizzine/quizzine-backend/internal/session"
	"github.com/quizzine/quizzine-backend/internal/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Domain errors.
var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrNotSessionOwner      = errors.New("session belongs to another user")
	ErrSessionAlreadyActive = errors.New("user already has an active session")
)

// activeSessionTTL is a safety net on the per-user active-session marker:
// a session whose process dies without cleanup stops blocking new starts
// after this long.
const activeSessionTTL = 6 * time.Hour

// StartSessionRequest carries per-attempt overrides and an optional share
// code for quizzes the caller was not granted access to.
type StartSessionRequest struct {
	SessionTimeLimitSeconds *int   `json:"session_time_limit_seconds" binding:"omitempty,min=1,max=86400"`
	PerItemTimeLimitSeconds *int   `json:"per_item_time_limit_seconds" binding:"omitempty,min=1,max=3600"`
	Randomize               *bool  `json:"randomize"`
	ShareCode               string `json:"share_code" binding:"omitempty,len=6"`
}

// liveSession pairs a running engine with its event hub.
type liveSession struct {
	engine *session.Session
	hub    *websocket.SessionHub
}

// SessionService owns the in-memory registry of live sessions. All durable
// state flows through the attempt queue; the registry itself is
// process-local and lost on restart, which ends those sessions without a
// record (browser refreshes reconnect through the same process).
type SessionService struct {
	mu      sync.RWMutex
	live    map[uuid.UUID]*liveSession
	byUser  map[uuid.UUID]uuid.UUID
	quizSvc *QuizService
	rdb     *redis.Client
	log     zerolog.Logger
	baseLog zerolog.Logger
}

// NewSessionService creates a SessionService.
func NewSessionService(quizSvc *QuizService, rdb *redis.Client, log zerolog.Logger) *SessionService {
	return &SessionService{
		live:    make(map[uuid.UUID]*liveSession),
		byUser:  make(map[uuid.UUID]uuid.UUID),
		quizSvc: quizSvc,
		rdb:     rdb,
		log:     log.With().Str("component", "session_service").Logger(),
		baseLog: log,
	}
}

// Start loads the quiz, checks access, and boots a new engine. A user runs
// at most one live session at a time.
func (s *SessionService) Start(ctx context.Context, userID uuid.UUID, quizID uuid.UUID, req *StartSessionRequest) (*session.Session, error) {
	quiz, err := s.quizSvc.GetByID(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("load quiz: %w", err)
	}
	if !s.quizSvc.CanTake(ctx, quiz, userID, req.ShareCode) {
		return nil, ErrQuizAccess
	}

	// A session whose guard TTL ran out is dead weight in the registry;
	// reap it before taking a fresh guard for the same user.
	s.reapExpired(ctx, userID)

	activeKey := config.CacheKey.UserActiveSessionKey(userID.String())
	ok, err := s.rdb.SetNX(ctx, activeKey, quizID.String(), activeSessionTTL).Result()
	if err != nil {
		return nil, fmt.Errorf("active session guard: %w", err)
	}
	if !ok {
		return nil, ErrSessionAlreadyActive
	}

	overrides := &model.SessionOverrides{
		SessionTimeLimitSeconds: req.SessionTimeLimitSeconds,
		PerItemTimeLimitSeconds: req.PerItemTimeLimitSeconds,
		Randomize:               req.Randomize,
	}

	hub := websocket.NewSessionHub(s.baseLog)
	engine, err := session.New(quiz, overrides, userID,
		session.WithNotifier(hub),
		session.WithSink(s),
		session.WithLogger(s.baseLog),
	)
	if err != nil {
		s.rdb.Del(ctx, activeKey)
		return nil, err
	}

	s.mu.Lock()
	s.live[engine.ID()] = &liveSession{engine: engine, hub: hub}
	s.byUser[userID] = engine.ID()
	s.mu.Unlock()

	// Overwrite the guard placeholder with the session ID so a browser
	// refresh can find its way back through Active.
	if err := s.rdb.Set(ctx, activeKey, engine.ID().String(), activeSessionTTL).Err(); err != nil {
		s.log.Warn().Err(err).Str("session_id", engine.ID().String()).Msg("Active session marker update failed")
	}

	s.log.Info().
		Str("session_id", engine.ID().String()).
		Str("quiz_id", quizID.String()).
		Str("user_id", userID.String()).
		Str("mode", string(engine.Mode())).
		Msg("Session started")
	return engine, nil
}

// Get returns a live engine, enforcing that the caller started it.
func (s *SessionService) Get(sessionID, userID uuid.UUID) (*session.Session, error) {
	s.mu.RLock()
	ls, ok := s.live[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	if ls.engine.UserID() != userID {
		return nil, ErrNotSessionOwner
	}
	return ls.engine, nil
}

// Active resolves the caller's live session through the Redis marker. A
// marker pointing at a session this process no longer holds (for example
// after a restart) reads as no session.
func (s *SessionService) Active(ctx context.Context, userID uuid.UUID) (*session.Session, error) {
	activeKey := config.CacheKey.UserActiveSessionKey(userID.String())
	raw, err := s.rdb.Get(ctx, activeKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("active session lookup: %w", err)
	}
	sessionID, err := uuid.Parse(raw)
	if err != nil {
		return nil, ErrSessionNotFound
	}
	return s.Get(sessionID, userID)
}

// Hub returns the event hub for a live session, for stream subscribers.
func (s *SessionService) Hub(sessionID, userID uuid.UUID) (*websocket.SessionHub, error) {
	s.mu.RLock()
	ls, ok := s.live[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	if ls.engine.UserID() != userID {
		return nil, ErrNotSessionOwner
	}
	return ls.hub, nil
}

// Abandon discards a live session without producing an attempt record.
func (s *SessionService) Abandon(ctx context.Context, sessionID, userID uuid.UUID) error {
	engine, err := s.Get(sessionID, userID)
	if err != nil {
		return err
	}
	engine.Close()
	s.evict(ctx, sessionID, userID)
	s.log.Info().Str("session_id", sessionID.String()).Msg("Session abandoned")
	return nil
}

// PersistAttempt implements session.AttemptSink. The record is queued to
// Redis for the background writer; the engine's terminal transition never
// waits on PostgreSQL.
func (s *SessionService) PersistAttempt(ctx context.Context, record *model.AttemptRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal attempt: %w", err)
	}
	if err := s.rdb.RPush(ctx, config.WorkerKey.PersistAttemptsQueue, payload).Err(); err != nil {
		return fmt.Errorf("enqueue attempt: %w", err)
	}
	s.evict(ctx, record.SessionID, record.UserID)
	return nil
}

// reapExpired closes a user's leftover session once its Redis guard has
// lapsed. Abandoned untimed sessions have no expiry of their own, so this
// is what keeps them from surviving in the registry until shutdown.
func (s *SessionService) reapExpired(ctx context.Context, userID uuid.UUID) {
	s.mu.RLock()
	sessionID, ok := s.byUser[userID]
	s.mu.RUnlock()
	if !ok {
		return
	}

	activeKey := config.CacheKey.UserActiveSessionKey(userID.String())
	held, err := s.rdb.Exists(ctx, activeKey).Result()
	if err != nil || held > 0 {
		return
	}

	s.mu.RLock()
	ls, live := s.live[sessionID]
	s.mu.RUnlock()
	if live {
		ls.engine.Close()
	}
	s.evict(ctx, sessionID, userID)
	s.log.Info().
		Str("session_id", sessionID.String()).
		Str("user_id", userID.String()).
		Msg("Expired session reaped")
}

// evict drops the registry entry and clears the user's active-session
// marker. Safe to call more than once per session.
func (s *SessionService) evict(ctx context.Context, sessionID, userID uuid.UUID) {
	s.mu.Lock()
	ls, ok := s.live[sessionID]
	if ok {
		delete(s.live, sessionID)
	}
	if cur, tracked := s.byUser[userID]; tracked && cur == sessionID {
		delete(s.byUser, userID)
	}
	s.mu.Unlock()
	if ok {
		ls.hub.Close()
	}

	activeKey := config.CacheKey.UserActiveSessionKey(userID.String())
	if err := s.rdb.Del(ctx, activeKey).Err(); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID.String()).Msg("Active session marker cleanup failed")
	}
}

// Shutdown closes every live session. In-progress sessions end without an
// attempt record.
func (s *SessionService) Shutdown(ctx context.Context) {
	s.mu.Lock()
	live := s.live
	s.live = make(map[uuid.UUID]*liveSession)
	s.byUser = make(map[uuid.UUID]uuid.UUID)
	s.mu.Unlock()

	for id, ls := range live {
		ls.engine.Close()
		ls.hub.Close()
		activeKey := config.CacheKey.UserActiveSessionKey(ls.engine.UserID().String())
		if err := s.rdb.Del(ctx, activeKey).Err(); err != nil {
			s.log.Warn().Err(err).Str("session_id", id.String()).Msg("Active session marker cleanup failed")
		}
	}
	if len(live) > 0 {
		s.log.Info().Int("count", len(live)).Msg("Live sessions closed on shutdown")
	}
}
