package game

import (
	"fmt"

	"github.com/lox/blackjack/internal/deck"
)

// Defaults for table configuration. A zero field in Config means "use
// the default".
const (
	DefaultInitialBalance = 1000
	DefaultDeckCount      = 6
	DefaultMinBet         = 10
	DefaultMaxBet         = 500
	DefaultMaxHands       = 3
)

// Config holds the table rules for a Game.
type Config struct {
	// InitialBalance is the starting bankroll.
	InitialBalance int
	// DeckCount is the number of 52 card decks shuffled into the shoe.
	DeckCount int
	// MinBet and MaxBet bound a single hand's wager.
	MinBet int
	MaxBet int
	// MaxHands caps how many hands may be staked per round.
	MaxHands int
	// ReshuffleThreshold rebuilds and reshuffles the shoe before any
	// deal that would start with fewer cards than this. The default of
	// one full shoe means every round deals from a fresh shuffle.
	ReshuffleThreshold int
}

// DefaultConfig returns the standard six deck table.
func DefaultConfig() Config {
	return Config{
		InitialBalance:     DefaultInitialBalance,
		DeckCount:          DefaultDeckCount,
		MinBet:             DefaultMinBet,
		MaxBet:             DefaultMaxBet,
		MaxHands:           DefaultMaxHands,
		ReshuffleThreshold: deck.DeckSize * DefaultDeckCount,
	}
}

// WithDefaults fills zero fields from DefaultConfig.
func (c Config) WithDefaults() Config {
	if c.InitialBalance == 0 {
		c.InitialBalance = DefaultInitialBalance
	}
	if c.DeckCount == 0 {
		c.DeckCount = DefaultDeckCount
	}
	if c.MinBet == 0 {
		c.MinBet = DefaultMinBet
	}
	if c.MaxBet == 0 {
		c.MaxBet = DefaultMaxBet
	}
	if c.MaxHands == 0 {
		c.MaxHands = DefaultMaxHands
	}
	if c.ReshuffleThreshold == 0 {
		c.ReshuffleThreshold = deck.DeckSize * c.DeckCount
	}
	return c
}

// Validate checks the configuration for contradictions.
func (c Config) Validate() error {
	if c.InitialBalance < 0 {
		return fmt.Errorf("%w: initial balance %d is negative", ErrInvalidArgument, c.InitialBalance)
	}
	if c.DeckCount < 1 {
		return fmt.Errorf("%w: deck count %d", ErrInvalidArgument, c.DeckCount)
	}
	if c.MinBet < 1 {
		return fmt.Errorf("%w: min bet %d", ErrInvalidArgument, c.MinBet)
	}
	if c.MaxBet < c.MinBet {
		return fmt.Errorf("%w: max bet %d below min bet %d", ErrInvalidArgument, c.MaxBet, c.MinBet)
	}
	if c.MaxHands < 1 || c.MaxHands > 3 {
		return fmt.Errorf("%w: max hands %d outside 1..3", ErrInvalidArgument, c.MaxHands)
	}
	if shoe := deck.DeckSize * c.DeckCount; c.ReshuffleThreshold < 1 || c.ReshuffleThreshold > shoe {
		return fmt.Errorf("%w: reshuffle threshold %d outside 1..%d", ErrInvalidArgument, c.ReshuffleThreshold, shoe)
	}
	return nil
}
