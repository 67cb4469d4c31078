package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/quizzine/quizzine-backend/internal/model"
)

// Shared test fixtures for the engine suite.

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type captureSink struct {
	mu      sync.Mutex
	records []*model.AttemptRecord
}

func (s *captureSink) PersistAttempt(ctx context.Context, r *model.AttemptRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, r)
	return nil
}

func (s *captureSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

type captureNotifier struct {
	mu        sync.Mutex
	warnings  []int
	submitted int
}

func (n *captureNotifier) Countdown(sessionRemaining, itemRemaining int) {}

func (n *captureNotifier) Warning(secondsRemaining int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.warnings = append(n.warnings, secondsRemaining)
}

func (n *captureNotifier) Submitted(record *model.AttemptRecord) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.submitted++
}

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

// threeItemQuiz has answer key [1, 1, 2].
func threeItemQuiz() *model.Quiz {
	return &model.Quiz{
		ID:      uuid.New(),
		OwnerID: uuid.New(),
		Title:   "capitals",
		Items: []model.QuizItem{
			{QuestionText: "q0", Options: []string{"a", "b", "c"}, CorrectOption: 1},
			{QuestionText: "q1", Options: []string{"a", "b"}, CorrectOption: 1},
			{QuestionText: "q2", Options: []string{"a", "b", "c", "d"}, CorrectOption: 2},
		},
	}
}

// newTestSession builds a session with a fake clock and no background
// ticker; tests drive ticks through tick().
func newTestSession(quiz *model.Quiz, ov *model.SessionOverrides, opts ...Option) (*Session, *fakeClock, *captureSink) {
	clock := newFakeClock()
	sink := &captureSink{}
	base := []Option{WithClock(clock), WithSink(sink), withManualTimer()}
	s, err := New(quiz, ov, uuid.New(), append(base, opts...)...)
	if err != nil {
		panic(err)
	}
	return s, clock, sink
}
