package game

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// waitTime bounds every blocking wait in loop tests.
const waitTime = 5 * time.Second

func TestRoundLoopFixedOrderAndRecaps(t *testing.T) {
	cfg := testConfig()
	cfg.RoundsBeforeVote = 2
	m, pres := testManager(cfg)

	require.NoError(t, m.CreateLobby(testRef, 1))
	require.NoError(t, m.Join(testRef, 2))
	require.NoError(t, m.Join(testRef, 3))
	require.NoError(t, m.Start(testRef, 1, 1))

	for round := 1; round <= 2; round++ {
		e := pres.wait(t, "round", waitTime)
		assert.Equal(t, round, e.round)
		assert.Equal(t, []int64{1, 2, 3}, e.order, "turn order must equal join order every round")

		for _, uid := range []int64{1, 2, 3} {
			turn := pres.wait(t, "turn", waitTime)
			require.Equal(t, uid, turn.player)
			require.NoError(t, m.SubmitClue(testRef, uid, fmt.Sprintf("clue-%d-%d", round, uid)))
		}

		recap := pres.wait(t, "recap", waitTime)
		assert.Equal(t, round, recap.round)
		require.Len(t, recap.clues, 3)
		for _, uid := range []int64{1, 2, 3} {
			assert.Equal(t, fmt.Sprintf("clue-%d-%d", round, uid), recap.clues[uid])
		}
	}

	pres.wait(t, "voting", waitTime)

	s := m.Registry().Get(testRef)
	s.mu.Lock()
	require.Len(t, s.history, 2)
	assert.Equal(t, 1, s.history[0].Round)
	assert.Equal(t, 2, s.history[1].Round)
	s.mu.Unlock()

	require.NoError(t, m.EndGame(testRef, 1))
}

func TestTurnTimeoutRecordsPlaceholder(t *testing.T) {
	cfg := testConfig()
	cfg.RoundsBeforeVote = 1
	cfg.TurnTimeout = 50 * time.Millisecond
	m, pres := testManager(cfg)

	require.NoError(t, m.CreateLobby(testRef, 1))
	require.NoError(t, m.Join(testRef, 2))
	require.NoError(t, m.Join(testRef, 3))
	require.NoError(t, m.Start(testRef, 1, 1))

	// player 2 answers, 1 and 3 sleep through their windows
	timedOut := map[int64]bool{}
	for i := 0; i < 3; i++ {
		turn := pres.wait(t, "turn", waitTime)
		if turn.player == 2 {
			require.NoError(t, m.SubmitClue(testRef, 2, "warm"))
			continue
		}
		out := pres.wait(t, "timeout", waitTime)
		timedOut[out.player] = true
	}
	assert.True(t, timedOut[1])
	assert.True(t, timedOut[3])

	recap := pres.wait(t, "recap", waitTime)
	assert.Equal(t, TimeoutClue, recap.clues[1])
	assert.Equal(t, "warm", recap.clues[2])
	assert.Equal(t, TimeoutClue, recap.clues[3])

	pres.wait(t, "voting", waitTime)
	require.NoError(t, m.EndGame(testRef, 1))
}

func TestCluesRejectedWhileVoting(t *testing.T) {
	cfg := testConfig()
	cfg.RoundsBeforeVote = 1
	m, pres := testManager(cfg)

	require.NoError(t, m.CreateLobby(testRef, 1))
	require.NoError(t, m.Join(testRef, 2))
	require.NoError(t, m.Join(testRef, 3))
	require.NoError(t, m.Start(testRef, 1, 1))

	for _, uid := range []int64{1, 2, 3} {
		turn := pres.wait(t, "turn", waitTime)
		require.Equal(t, uid, turn.player)
		require.NoError(t, m.SubmitClue(testRef, uid, "x"))
	}
	pres.wait(t, "voting", waitTime)

	assert.ErrorIs(t, m.SubmitClue(testRef, 1, "late"), ErrVotingInProgress)
	require.NoError(t, m.EndGame(testRef, 1))
}

func TestEndGameAbortsRoundLoop(t *testing.T) {
	cfg := testConfig()
	cfg.TurnTimeout = time.Minute // never elapses in this test
	m, pres := testManager(cfg)

	require.NoError(t, m.CreateLobby(testRef, 1))
	require.NoError(t, m.Join(testRef, 2))
	require.NoError(t, m.Join(testRef, 3))
	require.NoError(t, m.Start(testRef, 1, 1))

	pres.wait(t, "turn", waitTime)
	require.NoError(t, m.EndGame(testRef, 1))
	assert.Nil(t, m.Registry().Get(testRef))

	// the aborted loop must not announce anything further
	select {
	case e := <-pres.ch:
		t.Fatalf("unexpected %q event after endgame", e.kind)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestEndToEndThreePlayerGame(t *testing.T) {
	cfg := testConfig()
	cfg.VoteTimeout = 500 * time.Millisecond
	m, pres := testManager(cfg)
	store := &fakeStore{}
	m.store = store

	require.NoError(t, m.CreateLobby(testRef, 1))
	require.NoError(t, m.Join(testRef, 2))
	require.NoError(t, m.Join(testRef, 3))
	require.NoError(t, m.Start(testRef, 1, 1))

	s := m.Registry().Get(testRef)
	s.mu.Lock()
	word := s.secretWord
	imposters := s.impostersLocked()
	s.mu.Unlock()
	require.Len(t, imposters, 1)
	require.NotEmpty(t, word)

	for round := 1; round <= cfg.RoundsBeforeVote; round++ {
		for _, uid := range []int64{1, 2, 3} {
			turn := pres.wait(t, "turn", waitTime)
			require.Equal(t, uid, turn.player)
			require.NoError(t, m.SubmitClue(testRef, uid, fmt.Sprintf("r%du%d", round, uid)))
		}
		recap := pres.wait(t, "recap", waitTime)
		assert.Len(t, recap.clues, 3)
	}

	pres.wait(t, "voting", waitTime)

	// everyone accuses player 2
	require.NoError(t, m.CastVote(testRef, 1, 2))
	require.NoError(t, m.CastVote(testRef, 3, 2))

	reveal := pres.wait(t, "reveal", waitTime)
	assert.Equal(t, word, reveal.rev.Word)
	assert.Equal(t, imposters, reveal.rev.Imposters)
	assert.True(t, reveal.rev.HasTop)
	assert.Equal(t, int64(2), reveal.rev.TopGuess)

	pres.wait(t, "ended", waitTime)
	assert.Nil(t, m.Registry().Get(testRef), "session must be gone after reveal")

	store.mu.Lock()
	require.Len(t, store.records, 1)
	rec := store.records[0]
	store.mu.Unlock()
	assert.Equal(t, word, rec.Word)
	assert.Equal(t, imposters, rec.Imposters)
	assert.Equal(t, []int64{1, 2, 3}, rec.Roster)
	assert.Equal(t, imposters[0] == 2, rec.Caught)
}
