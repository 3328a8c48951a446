package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()
	assert.Equal(t, 3, c.MinPlayers)
	assert.Equal(t, 80, c.MaxClueLen)
	assert.Equal(t, 75*time.Second, c.TurnTimeout)
	assert.Equal(t, 600*time.Millisecond, c.BetweenTurns)
	assert.Equal(t, 3, c.RoundsBeforeVote)
	assert.Equal(t, 60*time.Second, c.VoteTimeout)
	assert.Equal(t, 7, c.AllowTwoImpostersAt)
	assert.Equal(t, 3000, c.HealthPort)
	require.NoError(t, c.Validate())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("COMMAND_PREFIX", "?")
	t.Setenv("WORDS_FILE", "custom.txt")
	t.Setenv("MIN_PLAYERS", "4")
	t.Setenv("TURN_TIMEOUT", "30")
	t.Setenv("VOTE_TIMEOUT", "45")
	t.Setenv("ROUNDS_BEFORE_FINAL_VOTE", "2")
	t.Setenv("ALLOW_2_IMPOSTERS_AT", "8")
	t.Setenv("PORT", "8080")

	c, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "?", c.Prefix)
	assert.Equal(t, "custom.txt", c.WordsFile)
	assert.Equal(t, 4, c.MinPlayers)
	assert.Equal(t, 30*time.Second, c.TurnTimeout)
	assert.Equal(t, 45*time.Second, c.VoteTimeout)
	assert.Equal(t, 2, c.RoundsBeforeVote)
	assert.Equal(t, 8, c.AllowTwoImpostersAt)
	assert.Equal(t, 8080, c.HealthPort)
}

func TestFromEnvRejectsGarbage(t *testing.T) {
	t.Setenv("TURN_TIMEOUT", "soon")
	_, err := FromEnv()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"min players below 3", func(c *Config) { c.MinPlayers = 2 }},
		{"zero clue length", func(c *Config) { c.MaxClueLen = 0 }},
		{"zero turn timeout", func(c *Config) { c.TurnTimeout = 0 }},
		{"zero vote timeout", func(c *Config) { c.VoteTimeout = 0 }},
		{"zero rounds", func(c *Config) { c.RoundsBeforeVote = 0 }},
		{"two-imposter threshold below minimum", func(c *Config) { c.AllowTwoImpostersAt = 2 }},
		{"bad port", func(c *Config) { c.HealthPort = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}
