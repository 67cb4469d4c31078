package session

import (
	"errors"
	"testing"
	"time"

	"github.com/quizzine/quizzine-backend/internal/model"
)

func TestSessionTimerExpiryForcesSubmit(t *testing.T) {
	quiz := threeItemQuiz()
	quiz.SessionTimeLimitSeconds = intPtr(3)
	notifier := &captureNotifier{}
	s, clock, sink := newTestSession(quiz, nil, WithNotifier(notifier))

	if err := s.SelectAnswer(1); err != nil {
		t.Fatalf("select: %v", err)
	}

	for i := 0; i < 3; i++ {
		clock.Advance(time.Second)
		s.tick()
	}

	snap := s.Snapshot()
	if snap.Phase != PhaseSubmitted {
		t.Fatalf("phase = %s, want SUBMITTED", snap.Phase)
	}
	if sink.count() != 1 {
		t.Fatalf("sink received %d records, want 1", sink.count())
	}
	if notifier.submitted != 1 {
		t.Fatalf("submitted signal fired %d times, want 1", notifier.submitted)
	}

	// Items never visited stay unanswered and score as incorrect.
	record := sink.records[0]
	if record.SelectedAnswers[1] != model.Unanswered || record.SelectedAnswers[2] != model.Unanswered {
		t.Fatalf("unvisited items answered: %v", record.SelectedAnswers)
	}
}

func TestSessionTimerWarningThresholds(t *testing.T) {
	quiz := threeItemQuiz()
	quiz.SessionTimeLimitSeconds = intPtr(32)
	notifier := &captureNotifier{}
	s, clock, _ := newTestSession(quiz, nil, WithNotifier(notifier))

	// 25 ticks take the countdown from 32s to 7s, crossing both thresholds.
	for i := 0; i < 25; i++ {
		clock.Advance(time.Second)
		s.tick()
	}

	if len(notifier.warnings) != 2 || notifier.warnings[0] != 30 || notifier.warnings[1] != 10 {
		t.Fatalf("warnings = %v, want [30 10]", notifier.warnings)
	}
}

func TestPerItemExpiryForcesAdvance(t *testing.T) {
	quiz := threeItemQuiz()
	quiz.PerItemTimeLimitSeconds = intPtr(2)
	s, clock, sink := newTestSession(quiz, nil)

	// Item 0 expires unanswered: forced advance, not submission.
	clock.Advance(time.Second)
	s.tick()
	clock.Advance(time.Second)
	s.tick()

	snap := s.Snapshot()
	if snap.Phase != PhaseInProgress {
		t.Fatalf("phase = %s, want IN_PROGRESS", snap.Phase)
	}
	if snap.CurrentPosition != 1 {
		t.Fatalf("pos = %d, want 1", snap.CurrentPosition)
	}
	if snap.SelectedAnswers[0] != model.Unanswered {
		t.Fatalf("expired item answered: %d", snap.SelectedAnswers[0])
	}
	if *snap.ItemSecondsRemaining != 2 {
		t.Fatalf("item countdown = %d, want reset to 2", *snap.ItemSecondsRemaining)
	}
	if sink.count() != 0 {
		t.Fatal("session submitted before last item expired")
	}

	// Expire items 1 and 2; the last expiry submits.
	for i := 0; i < 4; i++ {
		clock.Advance(time.Second)
		s.tick()
	}
	if snap := s.Snapshot(); snap.Phase != PhaseSubmitted {
		t.Fatalf("phase = %s, want SUBMITTED", snap.Phase)
	}
	if sink.count() != 1 {
		t.Fatalf("sink received %d records, want 1", sink.count())
	}
}

func TestPerItemCountdownResetsOnManualAdvance(t *testing.T) {
	quiz := threeItemQuiz()
	quiz.PerItemTimeLimitSeconds = intPtr(10)
	s, clock, _ := newTestSession(quiz, nil)

	clock.Advance(3 * time.Second)
	for i := 0; i < 3; i++ {
		s.tick()
	}
	if snap := s.Snapshot(); *snap.ItemSecondsRemaining != 7 {
		t.Fatalf("countdown = %d, want 7", *snap.ItemSecondsRemaining)
	}

	if err := s.SelectAnswer(0); err != nil {
		t.Fatalf("select: %v", err)
	}
	if _, err := s.Next(); err != nil {
		t.Fatalf("next: %v", err)
	}
	if snap := s.Snapshot(); *snap.ItemSecondsRemaining != 10 {
		t.Fatalf("countdown after advance = %d, want 10", *snap.ItemSecondsRemaining)
	}
}

func TestUntimedHasNoCountdowns(t *testing.T) {
	s, _, _ := newTestSession(threeItemQuiz(), nil)
	snap := s.Snapshot()
	if snap.SessionSecondsRemaining != nil || snap.ItemSecondsRemaining != nil {
		t.Fatal("untimed session exposes a countdown")
	}
	// A stray tick is inert.
	s.tick()
	if snap := s.Snapshot(); snap.Phase != PhaseInProgress {
		t.Fatalf("phase = %s after tick, want IN_PROGRESS", snap.Phase)
	}
}

// Simulated race: expiry firing the same tick a manual submit is processed
// must produce exactly one attempt record.
func TestIdempotentSubmission(t *testing.T) {
	quiz := threeItemQuiz()
	quiz.SessionTimeLimitSeconds = intPtr(1)
	s, clock, sink := newTestSession(quiz, nil)

	record, err := s.EndEarly()
	if err != nil {
		t.Fatalf("end early: %v", err)
	}
	if record == nil {
		t.Fatal("no record from manual submit")
	}

	// The countdown fires anyway: must be a no-op.
	clock.Advance(time.Second)
	s.tick()

	if _, err := s.FinalSubmit(); !errors.Is(err, ErrSessionSubmitted) {
		t.Fatalf("second submit err = %v, want ErrSessionSubmitted", err)
	}
	if _, err := s.EndEarly(); !errors.Is(err, ErrSessionSubmitted) {
		t.Fatalf("second end-early err = %v, want ErrSessionSubmitted", err)
	}
	if sink.count() != 1 {
		t.Fatalf("sink received %d records, want exactly 1", sink.count())
	}
}
