// Package sound plays short generated tones for game events. No audio
// assets ship with the binary; every cue is synthesized at play time.
package sound

import (
	"time"

	"github.com/lox/blackjack/internal/game"
)

// Cue identifies one of the tone sequences the player can emit.
type Cue string

const (
	CueDeal      Cue = "deal"
	CueWin       Cue = "win"
	CueLose      Cue = "lose"
	CuePush      Cue = "push"
	CueBlackjack Cue = "blackjack"
	CueBust      Cue = "bust"
	CueGameOver  Cue = "game_over"
)

// note is a single sine tone within a cue.
type note struct {
	freq float64
	dur  time.Duration
}

// cueNotes maps each cue to the sequence of tones that plays for it.
var cueNotes = map[Cue][]note{
	CueDeal:      {{880, 35 * time.Millisecond}},
	CueWin:       {{523.25, 110 * time.Millisecond}, {659.25, 150 * time.Millisecond}},
	CueBlackjack: {{523.25, 100 * time.Millisecond}, {659.25, 100 * time.Millisecond}, {783.99, 180 * time.Millisecond}},
	CuePush:      {{440, 120 * time.Millisecond}},
	CueLose:      {{196, 200 * time.Millisecond}},
	CueBust:      {{146.83, 110 * time.Millisecond}, {110, 200 * time.Millisecond}},
	CueGameOver:  {{392, 140 * time.Millisecond}, {311.13, 140 * time.Millisecond}, {261.63, 260 * time.Millisecond}},
}

// cueFor maps a game event to the cue that should play for it, or ""
// when the event is silent.
func cueFor(event game.GameEvent) Cue {
	switch e := event.(type) {
	case game.CardDealtEvent:
		return CueDeal
	case game.DealerRevealedEvent:
		return CueDeal
	case game.HandBustedEvent:
		return CueBust
	case game.InsuranceResolvedEvent:
		if e.Won {
			return CueWin
		}
	case game.HandSettledEvent:
		switch e.Outcome {
		case game.OutcomeBlackjack:
			return CueBlackjack
		case game.OutcomeWin:
			return CueWin
		case game.OutcomePush:
			return CuePush
		default:
			return CueLose
		}
	case game.GameOverEvent:
		return CueGameOver
	}
	return ""
}
