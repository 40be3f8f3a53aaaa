// Package sim plays unattended rounds against the rules engine to
// measure what a playing policy returns per round.
package sim

import (
	"fmt"

	"github.com/lox/blackjack/internal/game"
)

// Policy decides the play at each decision point. Implementations see
// only the snapshot, the same view a remote player gets.
type Policy interface {
	Name() string
	// Play picks the action for the current hand during the player turn.
	Play(snap game.Snapshot) game.ActionType
	// TakesInsurance reports whether to take the offered side bet.
	TakesInsurance(snap game.Snapshot) bool
}

// NewPolicy returns the named policy. An empty name means basic.
func NewPolicy(name string) (Policy, error) {
	switch name {
	case "", "basic":
		return BasicStrategy{}, nil
	case "dealer":
		return DealerMimic{}, nil
	default:
		return nil, fmt.Errorf("unknown policy %q", name)
	}
}

// BasicStrategy is a trimmed basic strategy chart: split aces and
// eights, double hard 10 and 11 against a dealer 9 or lower, stand on
// hard 17+ and soft 18+, stand with a stiff hand against a dealer bust
// card, otherwise hit. It never takes insurance.
type BasicStrategy struct{}

func (BasicStrategy) Name() string { return "basic" }

func (BasicStrategy) TakesInsurance(game.Snapshot) bool { return false }

func (BasicStrategy) Play(snap game.Snapshot) game.ActionType {
	if snap.CurrentHand < 0 || snap.CurrentHand >= len(snap.Hands) {
		return game.ActionStand
	}
	hand := snap.Hands[snap.CurrentHand]
	up := dealerUpValue(snap)

	if allowed(snap, game.ActionSplit) && splitsPair(hand) {
		return game.ActionSplit
	}
	if allowed(snap, game.ActionDouble) && !hand.Soft && (hand.Value == 10 || hand.Value == 11) && up <= 9 {
		return game.ActionDouble
	}
	if hand.Soft {
		if hand.Value >= 18 {
			return game.ActionStand
		}
		return game.ActionHit
	}
	switch {
	case hand.Value >= 17:
		return game.ActionStand
	case hand.Value >= 13 && up >= 2 && up <= 6:
		return game.ActionStand
	case hand.Value == 12 && up >= 4 && up <= 6:
		return game.ActionStand
	default:
		return game.ActionHit
	}
}

// splitsPair reports whether the hand is a pair worth splitting. Only
// aces and eights qualify; tens and faces stay together even though
// the table would allow the split.
func splitsPair(hand game.HandView) bool {
	if len(hand.Cards) != 2 {
		return false
	}
	rank := hand.Cards[0].Rank
	if rank != hand.Cards[1].Rank {
		return false
	}
	return rank == "ace" || rank == "8"
}

// DealerMimic plays the house rule from the player seat: hit below 17
// and on soft 17, stand otherwise. It never splits, doubles or
// insures, which makes it a useful lower bound for other policies.
type DealerMimic struct{}

func (DealerMimic) Name() string { return "dealer" }

func (DealerMimic) TakesInsurance(game.Snapshot) bool { return false }

func (DealerMimic) Play(snap game.Snapshot) game.ActionType {
	if snap.CurrentHand < 0 || snap.CurrentHand >= len(snap.Hands) {
		return game.ActionStand
	}
	hand := snap.Hands[snap.CurrentHand]
	if hand.Value < 17 || (hand.Value == 17 && hand.Soft) {
		return game.ActionHit
	}
	return game.ActionStand
}

func allowed(snap game.Snapshot, action game.ActionType) bool {
	for _, a := range snap.Actions {
		if a.Action == action {
			return true
		}
	}
	return false
}

// dealerUpValue returns the value of the dealer's visible card, with
// an ace counting 11.
func dealerUpValue(snap game.Snapshot) int {
	if len(snap.Dealer.Cards) == 0 {
		return 0
	}
	return snap.Dealer.Cards[0].Value
}
