package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config collects every recognized option. Values come from the
// environment (a .env file is loaded by main) with the game's stock
// defaults filled in.
type Config struct {
	Prefix    string // command prefix shown in help text
	WordsFile string

	MinPlayers int
	MaxClueLen int

	TurnTimeout  time.Duration
	BetweenTurns time.Duration // pacing between turns, presentation only

	RoundsBeforeVote int
	VoteTimeout      time.Duration

	// roster size from which the host may pick 2 imposters
	AllowTwoImpostersAt int

	HealthPort int
}

func Default() *Config {
	return &Config{
		Prefix:              "!",
		WordsFile:           "words.txt",
		MinPlayers:          3,
		MaxClueLen:          80,
		TurnTimeout:         75 * time.Second,
		BetweenTurns:        600 * time.Millisecond,
		RoundsBeforeVote:    3,
		VoteTimeout:         60 * time.Second,
		AllowTwoImpostersAt: 7,
		HealthPort:          3000,
	}
}

// FromEnv builds a config from defaults overridden by environment
// variables. Durations are given in seconds.
func FromEnv() (*Config, error) {
	c := Default()

	if v := os.Getenv("COMMAND_PREFIX"); v != "" {
		c.Prefix = v
	}
	if v := os.Getenv("WORDS_FILE"); v != "" {
		c.WordsFile = v
	}

	var err error
	if c.MinPlayers, err = intEnv("MIN_PLAYERS", c.MinPlayers); err != nil {
		return nil, err
	}
	if c.MaxClueLen, err = intEnv("MAX_CLUE_LEN", c.MaxClueLen); err != nil {
		return nil, err
	}
	if c.TurnTimeout, err = secondsEnv("TURN_TIMEOUT", c.TurnTimeout); err != nil {
		return nil, err
	}
	if c.VoteTimeout, err = secondsEnv("VOTE_TIMEOUT", c.VoteTimeout); err != nil {
		return nil, err
	}
	if c.RoundsBeforeVote, err = intEnv("ROUNDS_BEFORE_FINAL_VOTE", c.RoundsBeforeVote); err != nil {
		return nil, err
	}
	if c.AllowTwoImpostersAt, err = intEnv("ALLOW_2_IMPOSTERS_AT", c.AllowTwoImpostersAt); err != nil {
		return nil, err
	}
	if c.HealthPort, err = intEnv("PORT", c.HealthPort); err != nil {
		return nil, err
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	if c.MinPlayers < 3 {
		return fmt.Errorf("MIN_PLAYERS must be at least 3, got %d", c.MinPlayers)
	}
	if c.MaxClueLen <= 0 {
		return fmt.Errorf("MAX_CLUE_LEN must be positive, got %d", c.MaxClueLen)
	}
	if c.TurnTimeout <= 0 {
		return fmt.Errorf("TURN_TIMEOUT must be positive")
	}
	if c.VoteTimeout <= 0 {
		return fmt.Errorf("VOTE_TIMEOUT must be positive")
	}
	if c.RoundsBeforeVote <= 0 {
		return fmt.Errorf("ROUNDS_BEFORE_FINAL_VOTE must be positive, got %d", c.RoundsBeforeVote)
	}
	if c.AllowTwoImpostersAt < c.MinPlayers {
		return fmt.Errorf("ALLOW_2_IMPOSTERS_AT (%d) must not be below MIN_PLAYERS (%d)",
			c.AllowTwoImpostersAt, c.MinPlayers)
	}
	if c.HealthPort <= 0 || c.HealthPort > 65535 {
		return fmt.Errorf("PORT must be a valid port, got %d", c.HealthPort)
	}
	return nil
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s=%q: %w", key, v, err)
	}
	return n, nil
}

func secondsEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s=%q: %w", key, v, err)
	}
	return time.Duration(n) * time.Second, nil
}
