package game

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/lox/blackjack/internal/deck"
)

// Option configures optional Game behaviour.
type Option func(*gameConfig)

type gameConfig struct {
	logger *log.Logger
	bus    EventBus
	shoe   *deck.Shoe
}

func defaultGameConfig() *gameConfig {
	return &gameConfig{
		logger: log.New(io.Discard),
		bus:    NewEventBus(),
	}
}

// WithLogger routes engine logging to the given logger.
func WithLogger(logger *log.Logger) Option {
	return func(c *gameConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithEventBus publishes game events to the given bus instead of a
// private one. Subscribers attached before NewGame see the first
// round's events.
func WithEventBus(bus EventBus) Option {
	return func(c *gameConfig) {
		if bus != nil {
			c.bus = bus
		}
	}
}

// WithShoe deals from the given shoe instead of building one from the
// configured deck count. Useful for scripted deals in tests.
func WithShoe(shoe *deck.Shoe) Option {
	return func(c *gameConfig) {
		if shoe != nil {
			c.shoe = shoe
		}
	}
}
