package game

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryCreateGetRemove(t *testing.T) {
	r := NewRegistry()
	ref := ChannelRef{Community: 1, Channel: 2}

	assert.Nil(t, r.Get(ref))

	s, err := r.Create(ref, 7)
	require.NoError(t, err)
	assert.Same(t, s, r.Get(ref))
	assert.Equal(t, int64(7), s.HostID)

	_, err = r.Create(ref, 8)
	assert.ErrorIs(t, err, ErrLobbyExists)

	assert.True(t, r.Remove(ref))
	assert.False(t, r.Remove(ref), "second remove must report false")
	assert.Nil(t, r.Get(ref))
}

func TestRegistryRemoveRace(t *testing.T) {
	r := NewRegistry()
	ref := ChannelRef{Community: 1, Channel: 2}
	_, err := r.Create(ref, 1)
	require.NoError(t, err)

	const n = 16
	wins := make(chan bool, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			wins <- r.Remove(ref)
		}()
	}
	wg.Wait()
	close(wins)

	won := 0
	for w := range wins {
		if w {
			won++
		}
	}
	assert.Equal(t, 1, won, "exactly one teardown path may win")
}

func TestNewSessionSeedsHost(t *testing.T) {
	s := newSession(ChannelRef{Community: 1, Channel: 2}, 42)
	assert.Equal(t, []int64{42}, s.joinOrder)
	assert.Contains(t, s.players, int64(42))
	assert.True(t, s.players[42].Alive)
}
