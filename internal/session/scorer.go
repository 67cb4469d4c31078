package session

// Score compares selected answers to the answer key, both indexed by the
// item's position in the stored quiz. Unanswered items (the -1 sentinel)
// never match and count as incorrect. No partial credit, no negative
// marking. Returns 100 * correct / total.
func Score(selected []int, correctOptions []int) float64 {
	total := len(correctOptions)
	if total == 0 {
		return 0
	}
	correct := 0
	for i, key := range correctOptions {
		if i < len(selected) && selected[i] == key {
			correct++
		}
	}
	return 100 * float64(correct) / float64(total)
}
