package storage

import "time"

// Player mirrors one row of the players table. Score accumulates
// across recorded games: civilians earn a point when the imposters are
// caught, imposters earn two when they slip through.
type Player struct {
	UserID      int64
	Username    string
	DisplayName string
	Score       int
	Games       int
}

// Game is one recorded finished game.
type Game struct {
	ID         string // uuid
	Community  int64
	Channel    int64
	Word       string
	Caught     bool
	FinishedAt time.Time
}
