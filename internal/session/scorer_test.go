package session

import (
	"math"
	"testing"
)

func TestScore(t *testing.T) {
	cases := []struct {
		name     string
		selected []int
		key      []int
		want     float64
	}{
		{"all correct", []int{0, 1, 2}, []int{0, 1, 2}, 100},
		{"all wrong", []int{1, 2, 0}, []int{0, 1, 2}, 0},
		{"half with unanswered", []int{1, -1, 2, 0}, []int{1, 1, 2, 3}, 50},
		{"unanswered never matches", []int{-1, -1}, []int{0, 1}, 0},
		{"single item correct", []int{3}, []int{3}, 100},
		{"empty key", nil, nil, 0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := Score(c.selected, c.key); got != c.want {
				t.Fatalf("Score(%v, %v) = %v, want %v", c.selected, c.key, got, c.want)
			}
		})
	}
}

func TestScoreThirds(t *testing.T) {
	got := Score([]int{1, -1, 0}, []int{1, 1, 2})
	want := 100.0 / 3.0
	if math.Abs(got-want) > 1e-9 {
		t.Fatalf("Score = %v, want %v", got, want)
	}
}
