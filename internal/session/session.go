package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/quizzine/quizzine-backend/internal/model"
	"github.com/rs/zerolog"
)

// Session is one user's live attempt at a quiz. All state is owned
// exclusively by this struct for the attempt's lifetime; a single mutex
// serializes user actions and timer ticks, so every transition runs to
// completion before the next one is dispatched.
type Session struct {
	mu sync.Mutex

	id     uuid.UUID
	quizID uuid.UUID
	userID uuid.UUID
	cfg    Config

	items    []orderedItem
	pos      int
	answers  []int           // selected option per presentation position, -1 = unanswered
	elapsed  []time.Duration // accumulated time per presentation position
	statuses []ItemStatus
	marked   []bool

	phase            Phase
	sessionRemaining int
	itemRemaining    int

	startedAt time.Time
	entryAt   time.Time // when the current item became current

	clock    Clock
	notifier Notifier
	sink     AttemptSink
	log      zerolog.Logger

	cancelTimer context.CancelFunc
	manualTimer bool
}

// Option customizes a session at creation time.
type Option func(*Session)

// WithClock injects a clock. Defaults to the system clock.
func WithClock(c Clock) Option { return func(s *Session) { s.clock = c } }

// WithNotifier injects a UI-signal receiver. Defaults to a no-op.
func WithNotifier(n Notifier) Option { return func(s *Session) { s.notifier = n } }

// WithSink injects the attempt-record receiver. Defaults to a no-op sink;
// the record is still returned to the caller of the submitting action.
func WithSink(sink AttemptSink) Option { return func(s *Session) { s.sink = sink } }

// WithLogger injects a logger. Defaults to a disabled logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Session) { s.log = log.With().Str("component", "session").Logger() }
}

// withManualTimer suppresses the background ticker; tests drive ticks
// directly through tick().
func withManualTimer() Option { return func(s *Session) { s.manualTimer = true } }

// New creates a live session from a quiz definition, optional per-attempt
// overrides, and the attempting user. It resolves the timing mode, orders
// the items, and marks item 0 as seen. Fails with ErrInvalidQuiz if the
// quiz has no items; no partial state exists after a failure.
func New(quiz *model.Quiz, overrides *model.SessionOverrides, userID uuid.UUID, opts ...Option) (*Session, error) {
	if len(quiz.Items) == 0 {
		return nil, ErrInvalidQuiz
	}

	cfg := resolveConfig(quiz, overrides)
	n := len(quiz.Items)

	s := &Session{
		id:       uuid.New(),
		quizID:   quiz.ID,
		userID:   userID,
		cfg:      cfg,
		items:    sequence(quiz.Items, cfg.Randomize),
		answers:  make([]int, n),
		elapsed:  make([]time.Duration, n),
		statuses: make([]ItemStatus, n),
		marked:   make([]bool, n),
		phase:    PhaseInProgress,
		clock:    systemClock{},
		notifier: NopNotifier{},
		sink:     nopSink{},
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	for i := range s.answers {
		s.answers[i] = model.Unanswered
		s.statuses[i] = ItemUnseen
	}
	s.statuses[0] = ItemSeen

	s.startedAt = s.clock.Now()
	s.entryAt = s.startedAt

	switch cfg.Mode {
	case ModeSessionTimer:
		s.sessionRemaining = cfg.SessionTimeLimitSeconds
	case ModePerItemTimer:
		s.itemRemaining = cfg.PerItemTimeLimitSeconds
	}

	if cfg.Mode != ModeUntimed && !s.manualTimer {
		s.startTimer()
	}

	return s, nil
}

// ID returns the session's unique identifier.
func (s *Session) ID() uuid.UUID { return s.id }

// QuizID returns the quiz this session is an attempt at.
func (s *Session) QuizID() uuid.UUID { return s.quizID }

// UserID returns the attempting user.
func (s *Session) UserID() uuid.UUID { return s.userID }

// Mode returns the resolved timing mode.
func (s *Session) Mode() Mode { return s.cfg.Mode }

// Snapshot is a read-only view of session state for reconnecting clients
// and navigator displays.
type Snapshot struct {
	ID              uuid.UUID    `json:"id"`
	QuizID          uuid.UUID    `json:"quiz_id"`
	Mode            Mode         `json:"mode"`
	Phase           Phase        `json:"phase"`
	CurrentPosition int          `json:"current_position"`
	ItemCount       int          `json:"item_count"`
	ItemOrder       []int        `json:"item_order"` // original index per presentation position
	SelectedAnswers []int        `json:"selected_answers"`
	Statuses        []ItemStatus `json:"statuses"`
	MarkedForReview []bool       `json:"marked_for_review"`

	SessionSecondsRemaining *int `json:"session_seconds_remaining,omitempty"`
	ItemSecondsRemaining    *int `json:"item_seconds_remaining,omitempty"`
}

// Snapshot returns a consistent copy of the observable session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		ID:              s.id,
		QuizID:          s.quizID,
		Mode:            s.cfg.Mode,
		Phase:           s.phase,
		CurrentPosition: s.pos,
		ItemCount:       len(s.items),
		ItemOrder:       make([]int, len(s.items)),
		SelectedAnswers: append([]int(nil), s.answers...),
		Statuses:        append([]ItemStatus(nil), s.statuses...),
		MarkedForReview: append([]bool(nil), s.marked...),
	}
	for i, it := range s.items {
		snap.ItemOrder[i] = it.originalIndex
	}
	switch s.cfg.Mode {
	case ModeSessionTimer:
		v := s.sessionRemaining
		snap.SessionSecondsRemaining = &v
	case ModePerItemTimer:
		v := s.itemRemaining
		snap.ItemSecondsRemaining = &v
	}
	return snap
}

// Close tears down the session's countdown without producing a record.
// Used when an attempt is abandoned; the state is simply discarded.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopTimerLocked()
	if s.phase != PhaseSubmitted {
		s.phase = PhaseSubmitted // terminal; no record, no sink handoff
	}
}

// leaveCurrentLocked flushes elapsed time for the current item. Additive:
// revisits accumulate, the recorded time for an item visited across N
// intervals is the sum of all N.
func (s *Session) leaveCurrentLocked(now time.Time) {
	s.elapsed[s.pos] += now.Sub(s.entryAt)
	s.entryAt = now
}

// enterLocked makes position p current and restarts its accounting
// interval. In per-item mode the item countdown resets here.
func (s *Session) enterLocked(p int, now time.Time) {
	s.pos = p
	s.entryAt = now
	if s.statuses[p] == ItemUnseen {
		s.statuses[p] = ItemSeen
	}
	if s.cfg.Mode == ModePerItemTimer {
		s.itemRemaining = s.cfg.PerItemTimeLimitSeconds
	}
}
