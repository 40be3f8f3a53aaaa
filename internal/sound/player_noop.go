//go:build ci

package sound

import (
	"github.com/charmbracelet/log"

	"github.com/lox/blackjack/internal/game"
)

// Player is a no-op stand-in for builds without audio support.
type Player struct{}

func NewPlayer(logger *log.Logger, enabled bool) *Player {
	return &Player{}
}

func (p *Player) OnEvent(event game.GameEvent) {}

func (p *Player) Play(cue Cue) {}

func (p *Player) SetEnabled(enabled bool) {}

func (p *Player) Enabled() bool { return false }

func (p *Player) Close() {}
