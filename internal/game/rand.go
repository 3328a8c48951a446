package game

import "math/rand"

// pickWord draws one secret word uniformly from the pool.
func pickWord(r *rand.Rand, words []string) string {
	return words[r.Intn(len(words))]
}

// pickImposters draws n distinct player ids uniformly from the roster
// order, without replacement.
func pickImposters(r *rand.Rand, roster []int64, n int) map[int64]struct{} {
	if n > len(roster) {
		n = len(roster)
	}
	out := make(map[int64]struct{}, n)
	for _, i := range r.Perm(len(roster))[:n] {
		out[roster[i]] = struct{}{}
	}
	return out
}
