package session

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/quizzine/quizzine-backend/internal/model"
)

// FinalSubmit finishes the attempt from the reviewing phase. In per-item
// mode submission happens through Next on the last item instead; while
// still in progress, EndEarly is the explicit way out.
func (s *Session) FinalSubmit() (*model.AttemptRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == PhaseSubmitted {
		return nil, ErrSessionSubmitted
	}
	if s.phase != PhaseReviewing {
		return nil, ErrIllegalTransition
	}
	return s.finalizeLocked(s.clock.Now())
}

// EndEarly finishes the attempt from any position, regardless of unanswered
// items; never-visited items stay unanswered and score as incorrect. Not
// available in per-item mode.
func (s *Session) EndEarly() (*model.AttemptRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == PhaseSubmitted {
		return nil, ErrSessionSubmitted
	}
	if s.cfg.Mode == ModePerItemTimer {
		return nil, ErrIllegalTransition
	}
	return s.finalizeLocked(s.clock.Now())
}

// finalizeLocked freezes the session into an AttemptRecord. Idempotent by
// construction: the phase flips to Submitted as the first mutation, and
// every entry point checks the phase before calling here, so a second
// concurrent trigger (expiry in the same tick as a manual submit) is a
// no-op. Must hold s.mu.
func (s *Session) finalizeLocked(now time.Time) (*model.AttemptRecord, error) {
	wasInProgress := s.phase == PhaseInProgress
	s.phase = PhaseSubmitted
	s.stopTimerLocked()

	// Final accountant flush for the item that was current. Review time
	// belongs to no item.
	if wasInProgress {
		s.leaveCurrentLocked(now)
	}

	n := len(s.items)
	selected := make([]int, n)
	elapsed := make([]int64, n)
	key := make([]int, n)
	for pos, it := range s.items {
		selected[it.originalIndex] = s.answers[pos]
		elapsed[it.originalIndex] = int64(s.elapsed[pos].Seconds())
		key[it.originalIndex] = it.item.CorrectOption
	}

	record := &model.AttemptRecord{
		ID:                    uuid.New(),
		SessionID:             s.id,
		QuizID:                s.quizID,
		UserID:                s.userID,
		SelectedAnswers:       selected,
		ElapsedSecondsPerItem: elapsed,
		TotalElapsedSeconds:   int64(now.Sub(s.startedAt).Seconds()),
		ScorePercentage:       Score(selected, key),
		CompletedAt:           now,
	}

	// Notify before the sink handoff: the sink may tear down the session's
	// transport, and subscribers must hear the result first.
	s.notifier.Submitted(record)

	if err := s.sink.PersistAttempt(context.Background(), record); err != nil {
		// The record is already in the caller's hands; storage retries are
		// the sink's concern, not the state machine's.
		s.log.Error().Err(err).
			Str("session_id", s.id.String()).
			Str("quiz_id", s.quizID.String()).
			Msg("Attempt handoff failed")
	}

	return record, nil
}
