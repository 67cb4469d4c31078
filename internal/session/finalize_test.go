package session

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/quizzine/quizzine-backend/internal/model"
)

// Visiting item 0 for 5s, item 1 for 2s, then item 0 again for 3s must
// record 8s for item 0: intervals accumulate, they are never overwritten.
func TestAdditiveTimeAccounting(t *testing.T) {
	s, clock, sink := newTestSession(threeItemQuiz(), nil)

	clock.Advance(5 * time.Second)
	if _, err := s.Next(); err != nil {
		t.Fatalf("next: %v", err)
	}
	clock.Advance(2 * time.Second)
	if err := s.JumpTo(0); err != nil {
		t.Fatalf("jump: %v", err)
	}
	clock.Advance(3 * time.Second)
	if _, err := s.EndEarly(); err != nil {
		t.Fatalf("end early: %v", err)
	}

	record := sink.records[0]
	if record.ElapsedSecondsPerItem[0] != 8 {
		t.Fatalf("item 0 elapsed = %d, want 8", record.ElapsedSecondsPerItem[0])
	}
	if record.ElapsedSecondsPerItem[1] != 2 {
		t.Fatalf("item 1 elapsed = %d, want 2", record.ElapsedSecondsPerItem[1])
	}
	if record.TotalElapsedSeconds != 10 {
		t.Fatalf("total elapsed = %d, want 10", record.TotalElapsedSeconds)
	}
}

// Untimed 3-item quiz, no randomize: answer item 0 correctly, skip item 1,
// answer item 2 incorrectly, review, submit.
func TestEndToEndUntimedScenario(t *testing.T) {
	s, clock, sink := newTestSession(threeItemQuiz(), nil)

	if err := s.SelectAnswer(1); err != nil { // correct (key 1)
		t.Fatalf("select: %v", err)
	}
	clock.Advance(4 * time.Second)
	if _, err := s.Next(); err != nil {
		t.Fatalf("next: %v", err)
	}
	clock.Advance(time.Second)
	if _, err := s.Next(); err != nil { // skip item 1
		t.Fatalf("next: %v", err)
	}
	if err := s.SelectAnswer(0); err != nil { // incorrect (key 2)
		t.Fatalf("select: %v", err)
	}
	clock.Advance(3 * time.Second)
	if _, err := s.Next(); err != nil { // past last → reviewing
		t.Fatalf("next: %v", err)
	}

	record, err := s.FinalSubmit()
	if err != nil {
		t.Fatalf("final submit: %v", err)
	}

	want := 100.0 / 3.0
	if math.Abs(record.ScorePercentage-want) > 1e-9 {
		t.Fatalf("score = %v, want %v", record.ScorePercentage, want)
	}
	if record.SelectedAnswers[1] != model.Unanswered {
		t.Fatalf("skipped item answer = %d, want -1", record.SelectedAnswers[1])
	}
	if sink.count() != 1 {
		t.Fatalf("sink received %d records, want 1", sink.count())
	}
	if sink.records[0] != record {
		t.Fatal("sink record differs from returned record")
	}
}

// teardownNotifier refuses signals once closed, the way a hub does after
// the runtime evicts its session.
type teardownNotifier struct {
	closed    bool
	delivered bool
	missed    bool
}

func (n *teardownNotifier) Countdown(sessionRemaining, itemRemaining int) {}

func (n *teardownNotifier) Warning(secondsRemaining int) {}

func (n *teardownNotifier) Submitted(record *model.AttemptRecord) {
	if n.closed {
		n.missed = true
		return
	}
	n.delivered = true
}

// teardownSink closes the notifier during the handoff, mirroring the
// runtime sink that evicts the session and closes its event hub.
type teardownSink struct {
	notifier *teardownNotifier
}

func (s *teardownSink) PersistAttempt(ctx context.Context, r *model.AttemptRecord) error {
	s.notifier.closed = true
	return nil
}

// The submitted signal must go out before the sink handoff: the sink may
// tear down the session's transport, and a signal fired after that is lost.
func TestSubmittedSignalPrecedesSinkHandoff(t *testing.T) {
	notifier := &teardownNotifier{}
	sink := &teardownSink{notifier: notifier}
	s, err := New(threeItemQuiz(), nil, uuid.New(),
		WithClock(newFakeClock()), WithSink(sink), WithNotifier(notifier), withManualTimer())
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	if _, err := s.EndEarly(); err != nil {
		t.Fatalf("end early: %v", err)
	}
	if notifier.missed {
		t.Fatal("submitted signal fired after the sink closed the stream")
	}
	if !notifier.delivered {
		t.Fatal("submitted signal never fired")
	}
}

func TestFinalSubmitOnlyFromReviewing(t *testing.T) {
	s, _, _ := newTestSession(threeItemQuiz(), nil)
	if _, err := s.FinalSubmit(); !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("err = %v, want ErrIllegalTransition", err)
	}
}

func TestEndEarlyRejectedInPerItemMode(t *testing.T) {
	quiz := threeItemQuiz()
	quiz.PerItemTimeLimitSeconds = intPtr(30)
	s, _, _ := newTestSession(quiz, nil)
	if _, err := s.EndEarly(); !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("err = %v, want ErrIllegalTransition", err)
	}
}

func TestPerItemLastAnswerSubmitsDirectly(t *testing.T) {
	quiz := threeItemQuiz()
	quiz.PerItemTimeLimitSeconds = intPtr(30)
	s, _, sink := newTestSession(quiz, nil)

	for pos := 0; pos < 3; pos++ {
		key := s.items[pos].item.CorrectOption
		if err := s.SelectAnswer(key); err != nil {
			t.Fatalf("select at %d: %v", pos, err)
		}
		record, err := s.Next()
		if err != nil {
			t.Fatalf("next at %d: %v", pos, err)
		}
		// Reviewing is bypassed entirely: the last Next yields the record.
		if pos < 2 && record != nil {
			t.Fatalf("record produced before last item")
		}
		if pos == 2 {
			if record == nil {
				t.Fatal("no record from last-item Next")
			}
			if record.ScorePercentage != 100 {
				t.Fatalf("score = %v, want 100", record.ScorePercentage)
			}
		}
	}
	if sink.count() != 1 {
		t.Fatalf("sink received %d records, want 1", sink.count())
	}
}

func TestRecordMapsShuffledOrderBack(t *testing.T) {
	quiz := threeItemQuiz()
	s, clock, _ := newTestSession(quiz, &model.SessionOverrides{Randomize: boolPtr(true)})

	// Answer only the item presented first, spending 6s on it.
	first := s.items[0].originalIndex
	if err := s.SelectAnswer(0); err != nil {
		t.Fatalf("select: %v", err)
	}
	clock.Advance(6 * time.Second)
	record, err := s.EndEarly()
	if err != nil {
		t.Fatalf("end early: %v", err)
	}

	if record.SelectedAnswers[first] != 0 {
		t.Fatalf("answer not mapped to original index %d: %v", first, record.SelectedAnswers)
	}
	if record.ElapsedSecondsPerItem[first] != 6 {
		t.Fatalf("elapsed not mapped to original index %d: %v", first, record.ElapsedSecondsPerItem)
	}
	for i := range record.SelectedAnswers {
		if i != first && record.SelectedAnswers[i] != model.Unanswered {
			t.Fatalf("unexpected answer at original index %d", i)
		}
	}
}
