package server

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "server.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.hcl"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigFillsUnsetFields(t *testing.T) {
	t.Parallel()

	path := writeConfigFile(t, `
server {
  port      = 9090
  log_level = "debug"
}

blackjack {
  deck_count      = 2
  adaptive_dealer = true
}

redis {
  addr = "localhost:6379"
}
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "localhost", cfg.Server.Address)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.LogLevel)
	assert.Equal(t, 800, cfg.Server.DealerDelayMS)

	assert.Equal(t, 2, cfg.Blackjack.DeckCount)
	assert.True(t, cfg.Blackjack.AdaptiveDealer)
	assert.Equal(t, 6, cfg.Blackjack.MaxPlayers)
	assert.Equal(t, 1000, cfg.Blackjack.StartingChips)

	// Absent blocks come back as full defaults.
	assert.Equal(t, DefaultConfig().Dice, cfg.Dice)
	assert.Equal(t, DefaultConfig().Okey, cfg.Okey)

	require.NotNil(t, cfg.Redis)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "localhost:9090", cfg.GetServerAddress())
}

func TestLoadConfigRejectsBadSyntax(t *testing.T) {
	t.Parallel()

	path := writeConfigFile(t, `server { port = `)
	_, err := LoadConfig(path)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		mutate func(*Config)
	}{
		{"port too low", func(c *Config) { c.Server.Port = 0 }},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }},
		{"negative dealer delay", func(c *Config) { c.Server.DealerDelayMS = -1 }},
		{"zero decks", func(c *Config) { c.Blackjack.DeckCount = 0 }},
		{"too many decks", func(c *Config) { c.Blackjack.DeckCount = 9 }},
		{"blackjack players", func(c *Config) { c.Blackjack.MaxPlayers = 11 }},
		{"zero chips", func(c *Config) { c.Blackjack.StartingChips = 0 }},
		{"zero stake", func(c *Config) { c.Dice.Stake = 0 }},
		{"balance below stake", func(c *Config) { c.Dice.StartBalance = 50 }},
		{"dice players", func(c *Config) { c.Dice.MaxPlayers = 1 }},
		{"zero threshold", func(c *Config) { c.Okey.OpeningThreshold = 0 }},
		{"okey players", func(c *Config) { c.Okey.MaxPlayers = 5 }},
		{"redis without addr", func(c *Config) { c.Redis = &RedisConfig{} }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			require.NoError(t, cfg.Validate())
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestGameDefaultsMapping(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	d := cfg.GameDefaults()

	assert.Equal(t, 4, d.Blackjack.DeckCount)
	assert.Equal(t, 6, d.Blackjack.MaxPlayers)
	assert.Equal(t, 5, d.Dice.DicePerPlayer)
	assert.Equal(t, 100, d.Dice.Stake)
	assert.Equal(t, 2, d.Dice.SpotOnMultiplier)
	assert.Equal(t, 500, d.Dice.StartBalance)
	assert.Equal(t, 101, d.Okey.OpeningThreshold)
	assert.Equal(t, 4, d.Okey.MaxPlayers)

	// Policies are functions; tell them apart by behaviour on 17 against
	// a table showing 20.
	require.NotNil(t, d.BlackjackPolicy)
	assert.False(t, d.BlackjackPolicy(17, []int{20}))

	cfg.Blackjack.AdaptiveDealer = true
	d = cfg.GameDefaults()
	assert.True(t, d.BlackjackPolicy(17, []int{20}))
}
