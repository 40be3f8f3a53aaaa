package game

import (
	"testing"

	"github.com/lox/blackjack/internal/randutil"
)

func hasAction(actions []ValidAction, want ActionType) bool {
	for _, a := range actions {
		if a.Action == want {
			return true
		}
	}
	return false
}

func findAction(t *testing.T, actions []ValidAction, want ActionType) ValidAction {
	t.Helper()
	for _, a := range actions {
		if a.Action == want {
			return a
		}
	}
	t.Fatalf("action %s not offered in %v", want, actions)
	return ValidAction{}
}

func TestValidActionsDuringBetting(t *testing.T) {
	t.Parallel()

	g, _ := newStackedGame(t, Config{}, "Th 7c 9h Td")

	actions := g.ValidActions()
	bet := findAction(t, actions, ActionBet)
	if bet.MinAmount != 10 || bet.MaxAmount != 500 {
		t.Errorf("bet bounds = %d..%d, want 10..500", bet.MinAmount, bet.MaxAmount)
	}
	if hasAction(actions, ActionDeal) {
		t.Error("deal offered before any bet")
	}

	must(t, g.PlaceBet(0, 10))
	actions = g.ValidActions()
	if !hasAction(actions, ActionDeal) || !hasAction(actions, ActionNewRound) {
		t.Errorf("staked betting actions = %v, want deal and new_round", actions)
	}
}

func TestValidActionsDuringInsurance(t *testing.T) {
	t.Parallel()

	g, _ := newStackedGame(t, Config{}, "Th Ah 9h 7d")
	must(t, g.PlaceBet(0, 20))
	must(t, g.Deal())

	actions := g.ValidActions()
	ins := findAction(t, actions, ActionInsurance)
	if ins.MinAmount != 10 || ins.MaxAmount != 10 {
		t.Errorf("insurance stake = %d..%d, want 10..10", ins.MinAmount, ins.MaxAmount)
	}
	if !hasAction(actions, ActionNoInsurance) {
		t.Error("no_insurance not offered")
	}
}

func TestValidActionsOmitUnaffordableInsurance(t *testing.T) {
	t.Parallel()

	g, _ := newStackedGame(t, Config{InitialBalance: 20}, "Th Ah 9h 7d")
	must(t, g.PlaceBet(0, 20))
	must(t, g.Deal())

	actions := g.ValidActions()
	if hasAction(actions, ActionInsurance) {
		t.Errorf("insurance offered with an empty bankroll: %v", actions)
	}
	if !hasAction(actions, ActionNoInsurance) {
		t.Error("no_insurance not offered")
	}
}

func TestValidActionsDuringPlayerTurn(t *testing.T) {
	t.Parallel()

	g, _ := newStackedGame(t, Config{}, "8h 6s 8d Th 2c")
	must(t, g.PlaceBet(0, 10))
	must(t, g.Deal())

	actions := g.ValidActions()
	for _, want := range []ActionType{ActionHit, ActionStand, ActionDouble, ActionSplit} {
		if !hasAction(actions, want) {
			t.Errorf("pair hand should offer %s, got %v", want, actions)
		}
	}

	// A third card rules out doubling and splitting
	must(t, g.Hit(0))
	actions = g.ValidActions()
	if hasAction(actions, ActionDouble) || hasAction(actions, ActionSplit) {
		t.Errorf("three card hand offers %v", actions)
	}
	if !hasAction(actions, ActionHit) || !hasAction(actions, ActionStand) {
		t.Errorf("three card hand missing hit or stand: %v", actions)
	}
}

func TestValidActionsOmitUnaffordableDouble(t *testing.T) {
	t.Parallel()

	g, _ := newStackedGame(t, Config{InitialBalance: 10}, "8h 6s 5d Th")
	must(t, g.PlaceBet(0, 10))
	must(t, g.Deal())

	actions := g.ValidActions()
	if hasAction(actions, ActionDouble) {
		t.Errorf("double offered with an empty bankroll: %v", actions)
	}
}

func TestValidActionsForHouseTurns(t *testing.T) {
	t.Parallel()

	g, _ := newStackedGame(t, Config{}, "Th 7c 9h Td")
	must(t, g.PlaceBet(0, 10))
	must(t, g.Deal())
	must(t, g.Stand(0))

	if actions := g.ValidActions(); !hasAction(actions, ActionPlayDealer) {
		t.Errorf("dealer turn actions = %v, want play_dealer", actions)
	}

	must(t, g.PlayDealerTurn())
	if actions := g.ValidActions(); !hasAction(actions, ActionResolve) {
		t.Errorf("resolution actions = %v, want resolve", actions)
	}

	must(t, g.ResolveRound())
	actions := g.ValidActions()
	if !hasAction(actions, ActionNewRound) || hasAction(actions, ActionResolve) {
		t.Errorf("settled actions = %v, want new_round only", actions)
	}
}

func TestValidActionsAfterGameOver(t *testing.T) {
	t.Parallel()

	g, err := NewGame(Config{InitialBalance: 5}, randutil.New(1))
	if err != nil {
		t.Fatalf("NewGame error: %v", err)
	}
	if actions := g.ValidActions(); len(actions) != 0 {
		t.Errorf("game over actions = %v, want none", actions)
	}
}
