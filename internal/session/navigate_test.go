package session

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/quizzine/quizzine-backend/internal/model"
)

func TestNewRejectsEmptyQuiz(t *testing.T) {
	_, err := New(&model.Quiz{ID: uuid.New()}, nil, uuid.New())
	if !errors.Is(err, ErrInvalidQuiz) {
		t.Fatalf("err = %v, want ErrInvalidQuiz", err)
	}
}

func TestNewMarksFirstItemSeen(t *testing.T) {
	s, _, _ := newTestSession(threeItemQuiz(), nil)
	snap := s.Snapshot()
	if snap.Statuses[0] != ItemSeen {
		t.Fatalf("item 0 status = %s, want SEEN", snap.Statuses[0])
	}
	for i := 1; i < 3; i++ {
		if snap.Statuses[i] != ItemUnseen {
			t.Fatalf("item %d status = %s, want UNSEEN", i, snap.Statuses[i])
		}
	}
	if snap.Phase != PhaseInProgress {
		t.Fatalf("phase = %s, want IN_PROGRESS", snap.Phase)
	}
}

func TestModePrecedence(t *testing.T) {
	cases := []struct {
		name     string
		session  *int
		perItem  *int
		override *model.SessionOverrides
		want     Mode
	}{
		{"neither set", nil, nil, nil, ModeUntimed},
		{"session only", intPtr(300), nil, nil, ModeSessionTimer},
		{"per-item only", nil, intPtr(20), nil, ModePerItemTimer},
		{"both set resolves to per-item", intPtr(300), intPtr(20), nil, ModePerItemTimer},
		{"override adds per-item", intPtr(300), nil, &model.SessionOverrides{PerItemTimeLimitSeconds: intPtr(15)}, ModePerItemTimer},
		{"override adds session limit", nil, nil, &model.SessionOverrides{SessionTimeLimitSeconds: intPtr(60)}, ModeSessionTimer},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			quiz := threeItemQuiz()
			quiz.SessionTimeLimitSeconds = c.session
			quiz.PerItemTimeLimitSeconds = c.perItem
			s, _, _ := newTestSession(quiz, c.override)
			if s.Mode() != c.want {
				t.Fatalf("mode = %s, want %s", s.Mode(), c.want)
			}
		})
	}
}

func TestFreeNavigationAndReviewing(t *testing.T) {
	s, _, _ := newTestSession(threeItemQuiz(), nil)

	if _, err := s.Next(); err != nil {
		t.Fatalf("next: %v", err)
	}
	if _, err := s.Next(); err != nil {
		t.Fatalf("next: %v", err)
	}
	if err := s.Previous(); err != nil {
		t.Fatalf("previous: %v", err)
	}
	if err := s.JumpTo(2); err != nil {
		t.Fatalf("jump: %v", err)
	}

	// Next past the last item enters the reviewing phase.
	if _, err := s.Next(); err != nil {
		t.Fatalf("next past last: %v", err)
	}
	if snap := s.Snapshot(); snap.Phase != PhaseReviewing {
		t.Fatalf("phase = %s, want REVIEWING", snap.Phase)
	}

	// Selecting an item from reviewing resumes the attempt there.
	if err := s.JumpTo(1); err != nil {
		t.Fatalf("jump from reviewing: %v", err)
	}
	snap := s.Snapshot()
	if snap.Phase != PhaseInProgress || snap.CurrentPosition != 1 {
		t.Fatalf("phase=%s pos=%d, want IN_PROGRESS at 1", snap.Phase, snap.CurrentPosition)
	}
}

func TestPreviousAtFirstItemRejected(t *testing.T) {
	s, _, _ := newTestSession(threeItemQuiz(), nil)
	if err := s.Previous(); !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("err = %v, want ErrIllegalTransition", err)
	}
}

func TestSelectAnswerMarksAttemptedSticky(t *testing.T) {
	s, _, _ := newTestSession(threeItemQuiz(), nil)

	if err := s.SelectAnswer(1); err != nil {
		t.Fatalf("select: %v", err)
	}
	if snap := s.Snapshot(); snap.Statuses[0] != ItemAttempted {
		t.Fatalf("status = %s, want ATTEMPTED", snap.Statuses[0])
	}

	// Leaving and revisiting never reverts an attempted item.
	if _, err := s.Next(); err != nil {
		t.Fatalf("next: %v", err)
	}
	if err := s.Previous(); err != nil {
		t.Fatalf("previous: %v", err)
	}
	if snap := s.Snapshot(); snap.Statuses[0] != ItemAttempted {
		t.Fatalf("status after revisit = %s, want ATTEMPTED", snap.Statuses[0])
	}
}

func TestSelectAnswerRejectsOutOfRange(t *testing.T) {
	s, _, _ := newTestSession(threeItemQuiz(), nil)
	if err := s.SelectAnswer(3); !errors.Is(err, ErrInvalidOption) {
		t.Fatalf("err = %v, want ErrInvalidOption", err)
	}
	if err := s.SelectAnswer(-1); !errors.Is(err, ErrInvalidOption) {
		t.Fatalf("err = %v, want ErrInvalidOption", err)
	}
}

func TestMarkForReview(t *testing.T) {
	s, _, _ := newTestSession(threeItemQuiz(), nil)

	if err := s.SetMarkedForReview(true); err != nil {
		t.Fatalf("mark: %v", err)
	}
	if snap := s.Snapshot(); !snap.MarkedForReview[0] {
		t.Fatal("item 0 not marked")
	}
	if err := s.SetMarkedForReview(false); err != nil {
		t.Fatalf("unmark: %v", err)
	}
	if snap := s.Snapshot(); snap.MarkedForReview[0] {
		t.Fatal("item 0 still marked")
	}
}

func TestForwardOnlyLockInPerItemMode(t *testing.T) {
	quiz := threeItemQuiz()
	quiz.PerItemTimeLimitSeconds = intPtr(30)
	s, _, _ := newTestSession(quiz, nil)

	if err := s.SelectAnswer(1); err != nil {
		t.Fatalf("select: %v", err)
	}
	if _, err := s.Next(); err != nil {
		t.Fatalf("next: %v", err)
	}

	before := s.Snapshot()
	if err := s.Previous(); !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("previous err = %v, want ErrIllegalTransition", err)
	}
	if err := s.JumpTo(0); !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("jump err = %v, want ErrIllegalTransition", err)
	}
	if err := s.SetMarkedForReview(true); !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("mark err = %v, want ErrIllegalTransition", err)
	}

	after := s.Snapshot()
	if after.CurrentPosition != before.CurrentPosition || after.Phase != before.Phase {
		t.Fatal("rejected navigation mutated session state")
	}
}

func TestPerItemNextRequiresAnswer(t *testing.T) {
	quiz := threeItemQuiz()
	quiz.PerItemTimeLimitSeconds = intPtr(30)
	s, _, _ := newTestSession(quiz, nil)

	if _, err := s.Next(); !errors.Is(err, ErrIllegalTransition) {
		t.Fatalf("next without answer err = %v, want ErrIllegalTransition", err)
	}
	if err := s.SelectAnswer(0); err != nil {
		t.Fatalf("select: %v", err)
	}
	if _, err := s.Next(); err != nil {
		t.Fatalf("next with answer: %v", err)
	}
}

func TestActionsAfterSubmitRejected(t *testing.T) {
	s, _, _ := newTestSession(threeItemQuiz(), nil)
	if _, err := s.EndEarly(); err != nil {
		t.Fatalf("end early: %v", err)
	}

	if err := s.SelectAnswer(0); !errors.Is(err, ErrSessionSubmitted) {
		t.Fatalf("select err = %v, want ErrSessionSubmitted", err)
	}
	if _, err := s.Next(); !errors.Is(err, ErrSessionSubmitted) {
		t.Fatalf("next err = %v, want ErrSessionSubmitted", err)
	}
	if err := s.JumpTo(0); !errors.Is(err, ErrSessionSubmitted) {
		t.Fatalf("jump err = %v, want ErrSessionSubmitted", err)
	}
}
