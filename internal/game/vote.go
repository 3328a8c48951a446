package game

import (
	"context"
	"log"
	"sort"
	"time"
)

// maxVoteRows caps the vote breakdown shown at reveal.
const maxVoteRows = 12

// openVoting flips the session into the voting phase, announces it and
// arms the finalize timer. Called by the round loop after the last
// round; ctx is the session's task context.
func (m *Manager) openVoting(ctx context.Context, s *Session) {
	s.mu.Lock()
	s.votingOpen = true
	s.votes = make(map[int64]int64)
	s.expecting = 0
	order := s.turnOrderLocked()
	s.mu.Unlock()

	ref := s.Ref()
	m.pres.VotingOpened(ref, order, m.cfg.VoteTimeout)

	go func() {
		timer := time.NewTimer(m.cfg.VoteTimeout)
		defer timer.Stop()
		select {
		case <-timer.C:
			m.finalizeVote(s)
		case <-ctx.Done():
		}
	}()
}

// CastVote records one vote. Target 0 is an explicit skip. Re-voting
// overwrites; the last accepted vote per voter wins.
func (m *Manager) CastVote(ref ChannelRef, voterID, targetID int64) error {
	s := m.registry.Get(ref)
	if s == nil {
		return ErrNoActiveSession
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.votingOpen {
		return ErrVotingClosed
	}
	if _, ok := s.players[voterID]; !ok {
		return ErrNotAPlayer
	}
	if targetID != 0 {
		if targetID == voterID {
			return ErrSelfVote
		}
		if _, ok := s.players[targetID]; !ok {
			return ErrUnknownTarget
		}
	}
	s.votes[voterID] = targetID
	return nil
}

// ClearVote drops the voter's current vote. No-op if none exists.
func (m *Manager) ClearVote(ref ChannelRef, voterID int64) error {
	s := m.registry.Get(ref)
	if s == nil {
		return ErrNoActiveSession
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.votes, voterID)
	return nil
}

// finalizeVote closes the window, tallies, reveals and tears the
// session down. Safe against double firing: only the call that flips
// votingOpen proceeds.
func (m *Manager) finalizeVote(s *Session) {
	ref := s.Ref()

	s.mu.Lock()
	if !s.votingOpen {
		s.mu.Unlock()
		return
	}
	s.votingOpen = false

	counts := make(map[int64]int)
	for voter, target := range s.votes {
		if _, ok := s.players[voter]; !ok {
			continue
		}
		if target != 0 {
			if _, ok := s.players[target]; !ok {
				continue
			}
		}
		counts[target]++
	}

	top, hasTop := topGuess(counts)

	rev := Reveal{
		Word:      s.secretWord,
		Imposters: s.impostersLocked(),
		Counts:    sortedCounts(counts, maxVoteRows),
		TopGuess:  top,
		HasTop:    hasTop,
	}
	roster := append([]int64(nil), s.joinOrder...)
	s.cancelLocked()
	s.mu.Unlock()

	m.pres.RevealResult(ref, rev)

	caught := false
	if hasTop {
		for _, imp := range rev.Imposters {
			if imp == top {
				caught = true
				break
			}
		}
	}
	m.recordResult(GameRecord{
		Community:  ref.Community,
		Channel:    ref.Channel,
		Word:       rev.Word,
		Roster:     roster,
		Imposters:  rev.Imposters,
		TopGuess:   top,
		HasTop:     hasTop,
		Caught:     caught,
		FinishedAt: time.Now(),
	})

	if m.registry.Remove(ref) {
		log.Printf("[GAME] finished in %d/%d, word %q", ref.Community, ref.Channel, rev.Word)
		m.pres.GameEnded(ref)
	}
}

// topGuess picks the unique target with the strictly highest count.
// Skip votes are left out of the pool as long as any non-skip vote
// exists; with nothing but skips, the skip bucket itself can win. A
// tie for the highest count means no top guess.
func topGuess(counts map[int64]int) (int64, bool) {
	if len(counts) == 0 {
		return 0, false
	}
	pool := make(map[int64]int, len(counts))
	for target, c := range counts {
		if target != 0 {
			pool[target] = c
		}
	}
	if len(pool) == 0 {
		pool = counts
	}

	best, bestCount, unique := int64(0), -1, false
	for target, c := range pool {
		switch {
		case c > bestCount:
			best, bestCount, unique = target, c, true
		case c == bestCount:
			unique = false
		}
	}
	return best, unique
}

// sortedCounts orders the tally descending by count for display,
// breaking count ties by target id so output is stable, capped at n.
func sortedCounts(counts map[int64]int, n int) []VoteCount {
	out := make([]VoteCount, 0, len(counts))
	for target, c := range counts {
		out = append(out, VoteCount{Target: target, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Target < out[j].Target
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}
