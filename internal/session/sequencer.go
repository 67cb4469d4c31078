package session

import (
	"math/rand"

	"github.com/quizzine/quizzine-backend/internal/model"
)

// orderedItem is one quiz item in presentation order, tagged with the index
// it holds in the stored quiz. The item carries its own correct-option
// index, so shuffling reorders items without ever detaching an answer key.
type orderedItem struct {
	item          model.QuizItem
	originalIndex int
}

// sequence produces the presentation order for one session: identity order,
// or a uniform permutation when randomize is set. One shuffle per session
// start; there is no reproducibility requirement.
func sequence(items []model.QuizItem, randomize bool) []orderedItem {
	ordered := make([]orderedItem, len(items))
	for i, it := range items {
		ordered[i] = orderedItem{item: it, originalIndex: i}
	}
	if randomize {
		rand.Shuffle(len(ordered), func(i, j int) {
			ordered[i], ordered[j] = ordered[j], ordered[i]
		})
	}
	return ordered
}
