package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPickWord(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 50; i++ {
		assert.Contains(t, testWords, pickWord(r, testWords))
	}
}

func TestPickImposters(t *testing.T) {
	roster := []int64{10, 20, 30, 40, 50, 60, 70}
	r := rand.New(rand.NewSource(7))

	for i := 0; i < 50; i++ {
		picked := pickImposters(r, roster, 2)
		assert.Len(t, picked, 2)
		for uid := range picked {
			assert.Contains(t, roster, uid)
		}
	}

	// n capped at roster size
	all := pickImposters(r, roster[:2], 5)
	assert.Len(t, all, 2)
}

func TestPickImpostersReproducible(t *testing.T) {
	roster := []int64{1, 2, 3, 4, 5}
	a := pickImposters(rand.New(rand.NewSource(3)), roster, 2)
	b := pickImposters(rand.New(rand.NewSource(3)), roster, 2)
	assert.Equal(t, a, b)
}
