package game

import "fmt"

// Phase identifies where a round is in its lifecycle. Transitions are
// driven entirely by the operation methods on Game.
type Phase int

const (
	PhaseBetting Phase = iota
	PhaseDealing
	PhaseInsuranceCheck
	PhasePlayerTurn
	PhaseDealerTurn
	PhaseResolution
	PhaseGameOver
)

var phaseNames = [...]string{
	"BETTING",
	"DEALING",
	"INSURANCE_CHECK",
	"PLAYER_TURN",
	"DEALER_TURN",
	"RESOLUTION",
	"GAME_OVER",
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("Phase(%d)", int(p))
	}
	return phaseNames[p]
}

// MarshalText implements encoding.TextMarshaler so snapshots carry the
// phase name rather than its ordinal.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Phase) UnmarshalText(text []byte) error {
	for i, name := range phaseNames {
		if name == string(text) {
			*p = Phase(i)
			return nil
		}
	}
	return fmt.Errorf("%w: unknown phase %q", ErrInvalidArgument, string(text))
}
