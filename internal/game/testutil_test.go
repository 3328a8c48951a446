package game

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/EndiD-D/Imposter/internal/config"
)

// event is one recorded presenter notification.
type event struct {
	kind   string
	player int64
	round  int
	order  []int64
	clues  map[int64]string
	rev    Reveal
}

// fakePresenter records notifications and streams them to the test.
type fakePresenter struct {
	mu     sync.Mutex
	events []event
	ch     chan event
}

func newFakePresenter() *fakePresenter {
	return &fakePresenter{ch: make(chan event, 256)}
}

func (f *fakePresenter) record(e event) {
	f.mu.Lock()
	f.events = append(f.events, e)
	f.mu.Unlock()
	select {
	case f.ch <- e:
	default:
	}
}

func (f *fakePresenter) LobbyUpdated(ref ChannelRef, view LobbyView) {
	f.record(event{kind: "lobby", order: view.Order})
}
func (f *fakePresenter) GameStarted(ref ChannelRef, order []int64, rounds int) {
	f.record(event{kind: "started", order: order})
}
func (f *fakePresenter) RoundStarted(ref ChannelRef, round int, order []int64) {
	f.record(event{kind: "round", round: round, order: order})
}
func (f *fakePresenter) TurnPrompt(ref ChannelRef, player int64, timeout time.Duration) {
	f.record(event{kind: "turn", player: player})
}
func (f *fakePresenter) ClueSubmitted(ref ChannelRef, player int64, clue string) {
	f.record(event{kind: "clue", player: player})
}
func (f *fakePresenter) ClueTimedOut(ref ChannelRef, player int64) {
	f.record(event{kind: "timeout", player: player})
}
func (f *fakePresenter) RoundRecap(ref ChannelRef, round int, order []int64, clues map[int64]string) {
	f.record(event{kind: "recap", round: round, order: order, clues: clues})
}
func (f *fakePresenter) VotingOpened(ref ChannelRef, order []int64, timeout time.Duration) {
	f.record(event{kind: "voting", order: order})
}
func (f *fakePresenter) RevealResult(ref ChannelRef, rev Reveal) {
	f.record(event{kind: "reveal", rev: rev})
}
func (f *fakePresenter) GameEnded(ref ChannelRef) {
	f.record(event{kind: "ended"})
}

// wait blocks until an event of the given kind arrives, consuming and
// discarding everything emitted before it.
func (f *fakePresenter) wait(t *testing.T, kind string, timeout time.Duration) event {
	t.Helper()
	deadline := time.After(timeout)
	for {
		select {
		case e := <-f.ch:
			if e.kind == kind {
				return e
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %q event", kind)
			return event{}
		}
	}
}

// fakeStore records GameRecords passed to it.
type fakeStore struct {
	mu      sync.Mutex
	records []GameRecord
}

func (f *fakeStore) RecordGame(ctx context.Context, rec GameRecord) error {
	f.mu.Lock()
	f.records = append(f.records, rec)
	f.mu.Unlock()
	return nil
}

// testConfig shrinks the timing knobs so loop tests run in
// milliseconds.
func testConfig() *config.Config {
	c := config.Default()
	c.TurnTimeout = 200 * time.Millisecond
	c.BetweenTurns = time.Millisecond
	// long enough to never elapse mid-test; the end-to-end test
	// shortens it where the timeout itself is under test
	c.VoteTimeout = time.Minute
	return c
}

var testWords = []string{"PIZZA", "VOLCANO", "ROBOT"}

func testManager(cfg *config.Config) (*Manager, *fakePresenter) {
	pres := newFakePresenter()
	m := NewManagerWithRand(cfg, testWords, pres, nil, rand.New(rand.NewSource(1)))
	return m, pres
}

var testRef = ChannelRef{Community: 100, Channel: 200}
