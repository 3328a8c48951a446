package game

import (
	"context"
	"time"
)

// LobbyView is what the platform layer renders after a roster change.
type LobbyView struct {
	Host  int64
	Order []int64 // join order, also the fixed turn order
}

// VoteCount is one bucket of the final tally. Target 0 is the skip
// bucket.
type VoteCount struct {
	Target int64
	Count  int
}

// Reveal carries everything announced when the game ends.
type Reveal struct {
	Word      string
	Imposters []int64
	Counts    []VoteCount // descending by count, capped for display
	TopGuess  int64       // meaningful only when HasTop
	HasTop    bool        // false on a tie or when nobody voted
}

// RoleInfo is the private answer to a reveal-role request.
type RoleInfo struct {
	Imposter bool
	Word     string // empty for imposters
}

// Presenter is the outbound notification boundary. Calls are
// fire-and-forget: the engine never depends on delivery for
// correctness, and implementations must not call back into the engine.
type Presenter interface {
	LobbyUpdated(ref ChannelRef, view LobbyView)
	GameStarted(ref ChannelRef, order []int64, rounds int)
	RoundStarted(ref ChannelRef, round int, order []int64)
	TurnPrompt(ref ChannelRef, player int64, timeout time.Duration)
	ClueSubmitted(ref ChannelRef, player int64, clue string)
	ClueTimedOut(ref ChannelRef, player int64)
	RoundRecap(ref ChannelRef, round int, order []int64, clues map[int64]string)
	VotingOpened(ref ChannelRef, order []int64, timeout time.Duration)
	RevealResult(ref ChannelRef, rev Reveal)
	GameEnded(ref ChannelRef)
}

// GameRecord is the outcome summary persisted after reveal.
type GameRecord struct {
	Community  int64
	Channel    int64
	Word       string
	Roster     []int64
	Imposters  []int64
	TopGuess   int64
	HasTop     bool
	Caught     bool // top guess landed on an imposter
	FinishedAt time.Time
}

// ResultStore persists finished games. The engine treats it as best
// effort: a nil store or a failed write never affects game flow.
type ResultStore interface {
	RecordGame(ctx context.Context, rec GameRecord) error
}

// Service is the command/interaction surface the platform handlers
// call. Implemented by Manager.
type Service interface {
	CreateLobby(ref ChannelRef, hostID int64) error
	Join(ref ChannelRef, userID int64) error
	Leave(ref ChannelRef, userID int64) (lobbyClosed bool, err error)
	StartOptions(ref ChannelRef, userID int64) ([]int, error)
	Start(ref ChannelRef, userID int64, imposterCount int) error
	EndGame(ref ChannelRef, userID int64) error
	RevealRole(ref ChannelRef, userID int64) (RoleInfo, error)
	SubmitClue(ref ChannelRef, userID int64, text string) error
	CastVote(ref ChannelRef, voterID, targetID int64) error
	ClearVote(ref ChannelRef, voterID int64) error
	HostOf(ref ChannelRef) (int64, bool)
}
