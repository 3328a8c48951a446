package game

import (
	"context"
	"time"
)

// runGame drives the round loop: for each round, walk the fixed order,
// give every player one bounded turn window, recap, and after the
// configured number of rounds hand off to the final vote. The loop is
// abortable at every wait point through ctx.
func (m *Manager) runGame(ctx context.Context, s *Session) {
	ref := s.Ref()

	for {
		s.mu.Lock()
		s.roundNo++
		round := s.roundNo
		s.currentClues = make(map[int64]string)
		s.expecting = 0
		order := s.turnOrderLocked()
		s.mu.Unlock()

		m.pres.RoundStarted(ref, round, order)

		for _, pid := range order {
			s.mu.Lock()
			if s.votingOpen {
				// voting forced open by another path, stop emitting turns
				s.mu.Unlock()
				return
			}
			s.expecting = pid
			signal := make(chan struct{}, 1)
			s.clueSignal = signal
			s.mu.Unlock()

			m.pres.TurnPrompt(ref, pid, m.cfg.TurnTimeout)

			if !m.awaitClue(ctx, signal) {
				if ctx.Err() != nil {
					return
				}
				s.mu.Lock()
				if _, ok := s.currentClues[pid]; !ok {
					s.currentClues[pid] = TimeoutClue
				}
				s.mu.Unlock()
				m.pres.ClueTimedOut(ref, pid)
			}

			s.mu.Lock()
			s.expecting = 0
			s.clueSignal = nil
			s.mu.Unlock()

			if !sleepCtx(ctx, m.cfg.BetweenTurns) {
				return
			}
		}

		s.mu.Lock()
		clues := make(map[int64]string, len(s.currentClues))
		for uid, c := range s.currentClues {
			clues[uid] = c
		}
		s.history = append(s.history, RoundRecord{Round: round, Clues: clues})
		s.mu.Unlock()

		m.pres.RoundRecap(ref, round, order, clues)

		if round >= m.cfg.RoundsBeforeVote {
			m.openVoting(ctx, s)
			return
		}
	}
}

// awaitClue blocks until the current player's clue arrives, the turn
// window elapses, or ctx is cancelled. True means a clue was accepted.
func (m *Manager) awaitClue(ctx context.Context, signal <-chan struct{}) bool {
	timer := time.NewTimer(m.cfg.TurnTimeout)
	defer timer.Stop()
	select {
	case <-signal:
		return true
	case <-timer.C:
		return false
	case <-ctx.Done():
		return false
	}
}

// sleepCtx pauses for d unless ctx is cancelled first. True means the
// full pause elapsed.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
