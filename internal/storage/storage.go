package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/EndiD-D/Imposter/internal/game"
)

// Storage records finished games and keeps the leaderboard. The bot
// runs fine without it; main only wires it when POSTGRES_DSN is set.
type Storage struct {
	db *pgxpool.Pool
}

func New(dsn string) (*Storage, error) {
	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to db: %w", err)
	}
	return &Storage{db: pool}, nil
}

// Ping checks the DB connection.
func (s *Storage) Ping() error {
	return s.db.Ping(context.Background())
}

func (s *Storage) Close() {
	s.db.Close()
}

// UpsertPlayer registers a player, refreshing names on conflict so the
// leaderboard shows current display names.
func (s *Storage) UpsertPlayer(ctx context.Context, userID int64, username, displayName string) error {
	_, err := s.db.Exec(ctx,
		`INSERT INTO players (user_id, username, display_name, score, games)
		 VALUES ($1, $2, $3, 0, 0)
		 ON CONFLICT (user_id) DO UPDATE SET username = $2, display_name = $3`,
		userID, username, displayName)
	return err
}

// RecordGame persists one finished game and credits the scores in a
// single transaction: +1 per civilian when the imposters were caught,
// +2 per imposter when they were not.
func (s *Storage) RecordGame(ctx context.Context, rec game.GameRecord) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	gameID := uuid.New().String()
	_, err = tx.Exec(ctx,
		`INSERT INTO games (id, community_id, channel_id, word, caught, finished_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		gameID, rec.Community, rec.Channel, rec.Word, rec.Caught, rec.FinishedAt)
	if err != nil {
		return err
	}

	imposters := make(map[int64]struct{}, len(rec.Imposters))
	for _, uid := range rec.Imposters {
		imposters[uid] = struct{}{}
	}

	for _, uid := range rec.Roster {
		_, isImposter := imposters[uid]
		points := 0
		switch {
		case rec.Caught && !isImposter:
			points = 1
		case !rec.Caught && isImposter:
			points = 2
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO players (user_id, username, display_name, score, games)
			 VALUES ($1, '', '', $2, 1)
			 ON CONFLICT (user_id) DO UPDATE
			 SET score = players.score + $2, games = players.games + 1`,
			uid, points)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO game_players (game_id, user_id, imposter, points)
			 VALUES ($1, $2, $3, $4)`,
			gameID, uid, isImposter, points)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// Leaderboard returns up to limit players ordered by score.
func (s *Storage) Leaderboard(ctx context.Context, limit int) ([]Player, error) {
	rows, err := s.db.Query(ctx,
		`SELECT user_id, username, display_name, score, games
		 FROM players
		 ORDER BY score DESC, games ASC, user_id ASC
		 LIMIT $1`,
		limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []Player
	for rows.Next() {
		var p Player
		if err := rows.Scan(&p.UserID, &p.Username, &p.DisplayName, &p.Score, &p.Games); err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}
