package server

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/ardamertdedeoglu/casino-with-friends-sub000/internal/blackjack"
)

// Config represents the complete server configuration
type Config struct {
	Server    ServerSettings   `hcl:"server,block"`
	Blackjack *BlackjackConfig `hcl:"blackjack,block"`
	Dice      *DiceConfig      `hcl:"dice,block"`
	Okey      *OkeyConfig      `hcl:"okey,block"`
	Redis     *RedisConfig     `hcl:"redis,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address       string `hcl:"address,optional"`
	Port          int    `hcl:"port,optional"`
	LogLevel      string `hcl:"log_level,optional"`
	DealerDelayMS int    `hcl:"dealer_delay_ms,optional"`
	Seed          int64  `hcl:"seed,optional"`
}

// BlackjackConfig sets the defaults for new blackjack rooms
type BlackjackConfig struct {
	DeckCount      int  `hcl:"deck_count,optional"`
	MaxPlayers     int  `hcl:"max_players,optional"`
	AdaptiveDealer bool `hcl:"adaptive_dealer,optional"`
	StartingChips  int  `hcl:"starting_chips,optional"`
}

// DiceConfig sets the defaults for new dice rooms
type DiceConfig struct {
	DicePerPlayer    int `hcl:"dice_per_player,optional"`
	Stake            int `hcl:"stake,optional"`
	SpotOnMultiplier int `hcl:"spot_on_multiplier,optional"`
	StartBalance     int `hcl:"start_balance,optional"`
	MaxPlayers       int `hcl:"max_players,optional"`
}

// OkeyConfig sets the defaults for new okey rooms
type OkeyConfig struct {
	OpeningThreshold int `hcl:"opening_threshold,optional"`
	MaxPlayers       int `hcl:"max_players,optional"`
}

// RedisConfig enables the Redis chip ledger instead of the in-memory one
type RedisConfig struct {
	Addr     string `hcl:"addr"`
	Password string `hcl:"password,optional"`
	DB       int    `hcl:"db,optional"`
}

// DefaultConfig returns the default server configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerSettings{
			Address:       "localhost",
			Port:          8080,
			LogLevel:      "info",
			DealerDelayMS: 800,
		},
		Blackjack: &BlackjackConfig{
			DeckCount:     4,
			MaxPlayers:    6,
			StartingChips: 1000,
		},
		Dice: &DiceConfig{
			DicePerPlayer:    5,
			Stake:            100,
			SpotOnMultiplier: 2,
			StartBalance:     500,
			MaxPlayers:       6,
		},
		Okey: &OkeyConfig{
			OpeningThreshold: 101,
			MaxPlayers:       4,
		},
	}
}

// LoadConfig loads server configuration from an HCL file, falling back to
// defaults when the file does not exist.
func LoadConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config Config
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	def := DefaultConfig()
	if config.Server.Address == "" {
		config.Server.Address = def.Server.Address
	}
	if config.Server.Port == 0 {
		config.Server.Port = def.Server.Port
	}
	if config.Server.LogLevel == "" {
		config.Server.LogLevel = def.Server.LogLevel
	}
	if config.Server.DealerDelayMS == 0 {
		config.Server.DealerDelayMS = def.Server.DealerDelayMS
	}
	if config.Blackjack == nil {
		config.Blackjack = def.Blackjack
	} else {
		if config.Blackjack.DeckCount == 0 {
			config.Blackjack.DeckCount = def.Blackjack.DeckCount
		}
		if config.Blackjack.MaxPlayers == 0 {
			config.Blackjack.MaxPlayers = def.Blackjack.MaxPlayers
		}
		if config.Blackjack.StartingChips == 0 {
			config.Blackjack.StartingChips = def.Blackjack.StartingChips
		}
	}
	if config.Dice == nil {
		config.Dice = def.Dice
	} else {
		if config.Dice.DicePerPlayer == 0 {
			config.Dice.DicePerPlayer = def.Dice.DicePerPlayer
		}
		if config.Dice.Stake == 0 {
			config.Dice.Stake = def.Dice.Stake
		}
		if config.Dice.SpotOnMultiplier == 0 {
			config.Dice.SpotOnMultiplier = def.Dice.SpotOnMultiplier
		}
		if config.Dice.StartBalance == 0 {
			config.Dice.StartBalance = def.Dice.StartBalance
		}
		if config.Dice.MaxPlayers == 0 {
			config.Dice.MaxPlayers = def.Dice.MaxPlayers
		}
	}
	if config.Okey == nil {
		config.Okey = def.Okey
	} else {
		if config.Okey.OpeningThreshold == 0 {
			config.Okey.OpeningThreshold = def.Okey.OpeningThreshold
		}
		if config.Okey.MaxPlayers == 0 {
			config.Okey.MaxPlayers = def.Okey.MaxPlayers
		}
	}

	return &config, nil
}

// Validate validates the server configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Server.DealerDelayMS < 0 {
		return fmt.Errorf("dealer delay must not be negative: %d", c.Server.DealerDelayMS)
	}

	if c.Blackjack.DeckCount < 1 || c.Blackjack.DeckCount > 8 {
		return fmt.Errorf("blackjack: deck count must be between 1 and 8, got %d", c.Blackjack.DeckCount)
	}
	if c.Blackjack.MaxPlayers < 1 || c.Blackjack.MaxPlayers > 10 {
		return fmt.Errorf("blackjack: max players must be between 1 and 10, got %d", c.Blackjack.MaxPlayers)
	}
	if c.Blackjack.StartingChips < 1 {
		return fmt.Errorf("blackjack: starting chips must be positive, got %d", c.Blackjack.StartingChips)
	}

	if c.Dice.Stake < 1 {
		return fmt.Errorf("dice: stake must be positive, got %d", c.Dice.Stake)
	}
	if c.Dice.StartBalance < c.Dice.Stake {
		return fmt.Errorf("dice: start balance %d is below the stake %d", c.Dice.StartBalance, c.Dice.Stake)
	}
	if c.Dice.MaxPlayers < 2 {
		return fmt.Errorf("dice: max players must be at least 2, got %d", c.Dice.MaxPlayers)
	}

	if c.Okey.OpeningThreshold < 1 {
		return fmt.Errorf("okey: opening threshold must be positive, got %d", c.Okey.OpeningThreshold)
	}
	if c.Okey.MaxPlayers < 2 || c.Okey.MaxPlayers > 4 {
		return fmt.Errorf("okey: max players must be between 2 and 4, got %d", c.Okey.MaxPlayers)
	}

	if c.Redis != nil && c.Redis.Addr == "" {
		return fmt.Errorf("redis: addr is required")
	}

	return nil
}

// GetServerAddress returns the full listen address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// GameDefaults converts the config into the registry's per-game defaults
func (c *Config) GameDefaults() GameDefaults {
	d := GameDefaults{}
	d.Blackjack.DeckCount = c.Blackjack.DeckCount
	d.Blackjack.MaxPlayers = c.Blackjack.MaxPlayers
	d.BlackjackPolicy = blackjack.StandardPolicy
	if c.Blackjack.AdaptiveDealer {
		d.BlackjackPolicy = blackjack.AdaptivePolicy
	}
	d.Dice.DicePerPlayer = c.Dice.DicePerPlayer
	d.Dice.Stake = c.Dice.Stake
	d.Dice.SpotOnMultiplier = c.Dice.SpotOnMultiplier
	d.Dice.StartBalance = c.Dice.StartBalance
	d.Dice.MaxPlayers = c.Dice.MaxPlayers
	d.Okey.OpeningThreshold = c.Okey.OpeningThreshold
	d.Okey.MaxPlayers = c.Okey.MaxPlayers
	return d
}
