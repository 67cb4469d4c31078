package session

import (
	"testing"

	"github.com/quizzine/quizzine-backend/internal/model"
)

func tenItems() []model.QuizItem {
	items := make([]model.QuizItem, 10)
	for i := range items {
		items[i] = model.QuizItem{
			QuestionText:  "q",
			Options:       []string{"a", "b", "c", "d"},
			CorrectOption: i % 4,
		}
	}
	return items
}

func TestSequenceIdentity(t *testing.T) {
	ordered := sequence(tenItems(), false)
	for i, it := range ordered {
		if it.originalIndex != i {
			t.Fatalf("position %d holds original index %d, want identity order", i, it.originalIndex)
		}
	}
}

func TestSequenceShuffleIsPermutation(t *testing.T) {
	items := tenItems()
	ordered := sequence(items, true)
	if len(ordered) != len(items) {
		t.Fatalf("got %d items, want %d", len(ordered), len(items))
	}

	seen := make(map[int]bool, len(ordered))
	for _, it := range ordered {
		if it.originalIndex < 0 || it.originalIndex >= len(items) {
			t.Fatalf("original index %d out of range", it.originalIndex)
		}
		if seen[it.originalIndex] {
			t.Fatalf("original index %d appears twice", it.originalIndex)
		}
		seen[it.originalIndex] = true

		// Shuffling reorders items, never their own answer keys.
		if it.item.CorrectOption != items[it.originalIndex].CorrectOption {
			t.Fatalf("item %d lost its answer key", it.originalIndex)
		}
	}
}

// Scoring a shuffled session must equal scoring the same answers mapped back
// to original order: the correct answer per item is independent of order.
func TestShuffleScoringInvariance(t *testing.T) {
	quiz := &model.Quiz{Items: tenItems()}

	for trial := 0; trial < 20; trial++ {
		s, _, _ := newTestSession(quiz, &model.SessionOverrides{Randomize: boolPtr(true)})

		// Answer every item correctly in presentation order.
		for pos := 0; pos < len(quiz.Items); pos++ {
			key := s.items[pos].item.CorrectOption
			if err := s.SelectAnswer(key); err != nil {
				t.Fatalf("select at pos %d: %v", pos, err)
			}
			if _, err := s.Next(); err != nil {
				t.Fatalf("next at pos %d: %v", pos, err)
			}
		}

		record, err := s.FinalSubmit()
		if err != nil {
			t.Fatalf("final submit: %v", err)
		}
		if record.ScorePercentage != 100 {
			t.Fatalf("trial %d: score %v, want 100", trial, record.ScorePercentage)
		}
		for i, sel := range record.SelectedAnswers {
			if sel != quiz.Items[i].CorrectOption {
				t.Fatalf("trial %d: answer for original item %d is %d, want %d",
					trial, i, sel, quiz.Items[i].CorrectOption)
			}
		}
	}
}
