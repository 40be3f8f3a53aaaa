package server

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/blackjack/internal/game"
)

// Config represents the complete server configuration
type Config struct {
	Server  ServerSettings   `hcl:"server,block"`
	Table   *TableSettings   `hcl:"table,block"`
	Session *SessionSettings `hcl:"session,block"`
	Store   *StoreSettings   `hcl:"store,block"`
	History *HistorySettings `hcl:"history,block"`
	Auth    *AuthSettings    `hcl:"auth,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
	LogFile  string `hcl:"log_file,optional"`
}

// TableSettings defines the table rules every session plays under.
// Zero fields fall back to the engine defaults.
type TableSettings struct {
	InitialBalance     int   `hcl:"initial_balance,optional"`
	Decks              int   `hcl:"decks,optional"`
	MinBet             int   `hcl:"min_bet,optional"`
	MaxBet             int   `hcl:"max_bet,optional"`
	MaxHands           int   `hcl:"max_hands,optional"`
	ReshuffleThreshold int   `hcl:"reshuffle_threshold,optional"`
	Seed               int64 `hcl:"seed,optional"` // 0 means crypto-seeded shuffles
}

// SessionSettings controls per-connection session lifecycle
type SessionSettings struct {
	IdleTimeoutSeconds int `hcl:"idle_timeout_seconds,optional"`
	MaxSessions        int `hcl:"max_sessions,optional"`
}

// StoreSettings selects the snapshot persistence backend
type StoreSettings struct {
	Backend       string `hcl:"backend,optional"` // memory, file or redis
	Dir           string `hcl:"dir,optional"`
	RedisAddr     string `hcl:"redis_addr,optional"`
	RedisTTLHours int    `hcl:"redis_ttl_hours,optional"`
}

// HistorySettings controls round history recording
type HistorySettings struct {
	Enabled bool   `hcl:"enabled,optional"`
	Path    string `hcl:"path,optional"`
}

// AuthSettings selects the token validator
type AuthSettings struct {
	Mode        string            `hcl:"mode,optional"` // none, static or http
	Endpoint    string            `hcl:"endpoint,optional"`
	AdminSecret string            `hcl:"admin_secret,optional"`
	Tokens      map[string]string `hcl:"tokens,optional"` // token -> player name
}

// GameConfig converts the table settings into an engine configuration.
func (t *TableSettings) GameConfig() game.Config {
	return game.Config{
		InitialBalance:     t.InitialBalance,
		DeckCount:          t.Decks,
		MinBet:             t.MinBet,
		MaxBet:             t.MaxBet,
		MaxHands:           t.MaxHands,
		ReshuffleThreshold: t.ReshuffleThreshold,
	}
}

// DefaultConfig returns default server configuration
func DefaultConfig() *Config {
	return &Config{
		Server: ServerSettings{
			Address:  "localhost",
			Port:     8080,
			LogLevel: "info",
		},
		Table: &TableSettings{
			InitialBalance: game.DefaultInitialBalance,
			Decks:          game.DefaultDeckCount,
			MinBet:         game.DefaultMinBet,
			MaxBet:         game.DefaultMaxBet,
			MaxHands:       game.DefaultMaxHands,
		},
		Session: &SessionSettings{
			IdleTimeoutSeconds: 300,
			MaxSessions:        128,
		},
		Store: &StoreSettings{
			Backend:       "memory",
			Dir:           "sessions",
			RedisAddr:     "localhost:6379",
			RedisTTLHours: 24,
		},
		History: &HistorySettings{
			Enabled: true,
			Path:    "blackjack-history.jsonl",
		},
		Auth: &AuthSettings{
			Mode: "none",
		},
	}
}

// LoadConfig loads server configuration from an HCL file. A missing
// file yields the defaults.
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

	config.applyDefaults()
	return &config, nil
}

// applyDefaults fills missing blocks and zero values from DefaultConfig.
func (c *Config) applyDefaults() {
	def := DefaultConfig()

	if c.Server.Address == "" {
		c.Server.Address = def.Server.Address
	}
	if c.Server.Port == 0 {
		c.Server.Port = def.Server.Port
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = def.Server.LogLevel
	}

	if c.Table == nil {
		c.Table = def.Table
	} else {
		if c.Table.InitialBalance == 0 {
			c.Table.InitialBalance = def.Table.InitialBalance
		}
		if c.Table.Decks == 0 {
			c.Table.Decks = def.Table.Decks
		}
		if c.Table.MinBet == 0 {
			c.Table.MinBet = def.Table.MinBet
		}
		if c.Table.MaxBet == 0 {
			c.Table.MaxBet = def.Table.MaxBet
		}
		if c.Table.MaxHands == 0 {
			c.Table.MaxHands = def.Table.MaxHands
		}
	}

	if c.Session == nil {
		c.Session = def.Session
	} else {
		if c.Session.IdleTimeoutSeconds == 0 {
			c.Session.IdleTimeoutSeconds = def.Session.IdleTimeoutSeconds
		}
		if c.Session.MaxSessions == 0 {
			c.Session.MaxSessions = def.Session.MaxSessions
		}
	}

	if c.Store == nil {
		c.Store = def.Store
	} else {
		if c.Store.Backend == "" {
			c.Store.Backend = def.Store.Backend
		}
		if c.Store.Dir == "" {
			c.Store.Dir = def.Store.Dir
		}
		if c.Store.RedisAddr == "" {
			c.Store.RedisAddr = def.Store.RedisAddr
		}
		if c.Store.RedisTTLHours == 0 {
			c.Store.RedisTTLHours = def.Store.RedisTTLHours
		}
	}

	if c.History == nil {
		c.History = def.History
	} else if c.History.Enabled && c.History.Path == "" {
		c.History.Path = def.History.Path
	}

	if c.Auth == nil {
		c.Auth = def.Auth
	} else if c.Auth.Mode == "" {
		c.Auth.Mode = def.Auth.Mode
	}
}

// Validate validates the server configuration
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}

	if err := c.Table.GameConfig().WithDefaults().Validate(); err != nil {
		return fmt.Errorf("table: %w", err)
	}

	if c.Session.IdleTimeoutSeconds < 1 {
		return fmt.Errorf("session: idle timeout must be positive, got %d", c.Session.IdleTimeoutSeconds)
	}
	if c.Session.MaxSessions < 1 {
		return fmt.Errorf("session: max sessions must be positive, got %d", c.Session.MaxSessions)
	}

	switch c.Store.Backend {
	case "memory":
	case "file":
		if c.Store.Dir == "" {
			return fmt.Errorf("store: file backend requires a dir")
		}
	case "redis":
		if c.Store.RedisAddr == "" {
			return fmt.Errorf("store: redis backend requires redis_addr")
		}
	default:
		return fmt.Errorf("store: unknown backend %q", c.Store.Backend)
	}

	if c.History.Enabled && c.History.Path == "" {
		return fmt.Errorf("history: enabled but no path configured")
	}

	switch c.Auth.Mode {
	case "none":
	case "static":
		if len(c.Auth.Tokens) == 0 {
			return fmt.Errorf("auth: static mode requires at least one token")
		}
	case "http":
		if c.Auth.Endpoint == "" {
			return fmt.Errorf("auth: http mode requires an endpoint")
		}
	default:
		return fmt.Errorf("auth: unknown mode %q", c.Auth.Mode)
	}

	return nil
}

// GetServerAddress returns the full server address
func (c *Config) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}
