package session

import "github.com/quizzine/quizzine-backend/internal/model"

// SelectAnswer records an option choice for the current item and marks it
// attempted. Attempted status is sticky: it never reverts to seen/unseen.
func (s *Session) SelectAnswer(option int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == PhaseSubmitted {
		return ErrSessionSubmitted
	}
	if s.phase != PhaseInProgress {
		return ErrIllegalTransition
	}
	if option < 0 || option >= len(s.items[s.pos].item.Options) {
		return ErrInvalidOption
	}

	s.answers[s.pos] = option
	s.statuses[s.pos] = ItemAttempted
	return nil
}

// SetMarkedForReview toggles the review flag on the current item. The flag
// is an overlay independent of item status, and is unavailable in per-item
// mode, whose one-way auto-advance leaves nothing to come back to.
func (s *Session) SetMarkedForReview(marked bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == PhaseSubmitted {
		return ErrSessionSubmitted
	}
	if s.phase != PhaseInProgress || s.cfg.Mode == ModePerItemTimer {
		return ErrIllegalTransition
	}

	s.marked[s.pos] = marked
	return nil
}

// Next advances to the following item. Past the last item it enters the
// reviewing phase, except in per-item mode which requires an answer first
// and submits directly from the last item.
func (s *Session) Next() (*model.AttemptRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == PhaseSubmitted {
		return nil, ErrSessionSubmitted
	}
	if s.phase != PhaseInProgress {
		return nil, ErrIllegalTransition
	}

	now := s.clock.Now()

	if s.cfg.Mode == ModePerItemTimer {
		// Forward-only: a manual advance needs an answer. Timer expiry is
		// the only path past an unanswered item (advanceForcedLocked).
		if s.answers[s.pos] == model.Unanswered {
			return nil, ErrIllegalTransition
		}
		if s.pos == len(s.items)-1 {
			return s.finalizeLocked(now)
		}
		s.leaveCurrentLocked(now)
		s.enterLocked(s.pos+1, now)
		return nil, nil
	}

	s.leaveCurrentLocked(now)
	if s.pos == len(s.items)-1 {
		s.phase = PhaseReviewing
		return nil, nil
	}
	s.enterLocked(s.pos+1, now)
	return nil, nil
}

// Previous moves back one item. Rejected in per-item mode and at item 0;
// the session state is untouched on rejection.
func (s *Session) Previous() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == PhaseSubmitted {
		return ErrSessionSubmitted
	}
	if s.phase != PhaseInProgress || s.cfg.Mode == ModePerItemTimer || s.pos == 0 {
		return ErrIllegalTransition
	}

	now := s.clock.Now()
	s.leaveCurrentLocked(now)
	s.enterLocked(s.pos-1, now)
	return nil
}

// JumpTo makes the item at presentation position p current. Allowed while
// in progress and from reviewing (which resumes the attempt at p); rejected
// in per-item mode.
func (s *Session) JumpTo(p int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == PhaseSubmitted {
		return ErrSessionSubmitted
	}
	if s.cfg.Mode == ModePerItemTimer {
		return ErrIllegalTransition
	}
	if p < 0 || p >= len(s.items) {
		return ErrInvalidPosition
	}

	now := s.clock.Now()
	switch s.phase {
	case PhaseInProgress:
		s.leaveCurrentLocked(now)
	case PhaseReviewing:
		// Review time is attributed to no item; the clock for item p
		// starts now.
		s.phase = PhaseInProgress
	}
	s.enterLocked(p, now)
	return nil
}

// advanceForcedLocked is the expiry path in per-item mode: the same advance
// as a manual Next but without the answer requirement. The unanswered
// sentinel stays in place. Expiring on the last item submits the session.
func (s *Session) advanceForcedLocked() {
	now := s.clock.Now()
	if s.pos == len(s.items)-1 {
		_, _ = s.finalizeLocked(now)
		return
	}
	s.leaveCurrentLocked(now)
	s.enterLocked(s.pos+1, now)
}
