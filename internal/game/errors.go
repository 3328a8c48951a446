package game

import "errors"

// Rejections surfaced to the acting player. None of them mutate session
// state and none are fatal to the process.
var (
	ErrNoActiveSession  = errors.New("no active game in this channel")
	ErrLobbyExists      = errors.New("a lobby already exists in this channel")
	ErrAlreadyStarted   = errors.New("game already started")
	ErrAlreadyJoined    = errors.New("player already in the lobby")
	ErrNotInLobby       = errors.New("player not in the lobby")
	ErrNotHost          = errors.New("host-only action")
	ErrNotEnoughPlayers = errors.New("not enough players to start")
	ErrNotYourTurn      = errors.New("not this player's turn")
	ErrAlreadySubmitted = errors.New("clue already submitted this round")
	ErrExactWord        = errors.New("clue equals the secret word")
	ErrEmptyClue        = errors.New("clue is empty")
	ErrClueTooLong      = errors.New("clue is too long")
	ErrVotingInProgress = errors.New("voting is open, clues are closed")
	ErrVotingClosed     = errors.New("voting is closed")
	ErrNotAPlayer       = errors.New("only players can act in this game")
	ErrSelfVote         = errors.New("players cannot vote for themselves")
	ErrUnknownTarget    = errors.New("vote target is not in this game")
)
