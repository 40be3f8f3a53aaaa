package game

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestStateConcealsHoleCard(t *testing.T) {
	t.Parallel()

	g, _ := newStackedGame(t, Config{}, "Th 7c 9h Td")
	must(t, g.PlaceBet(0, 10))
	must(t, g.Deal())

	s := g.State()
	if s.Dealer.HoleRevealed {
		t.Error("hole marked revealed before the dealer played")
	}
	if len(s.Dealer.Cards) != 1 {
		t.Fatalf("dealer shows %d cards, want 1", len(s.Dealer.Cards))
	}
	if s.Dealer.Cards[0].Display != "7♣" {
		t.Errorf("up card = %s, want 7♣", s.Dealer.Cards[0].Display)
	}
	if s.Dealer.Value != 7 {
		t.Errorf("dealer value = %d, want the up card alone", s.Dealer.Value)
	}

	must(t, g.Stand(0))
	must(t, g.PlayDealerTurn())

	s = g.State()
	if !s.Dealer.HoleRevealed || len(s.Dealer.Cards) != 2 {
		t.Errorf("dealer after reveal = %+v", s.Dealer)
	}
	if s.Dealer.Value != 17 {
		t.Errorf("dealer value = %d, want 17", s.Dealer.Value)
	}
}

func TestSnapshotJSONRoundTrip(t *testing.T) {
	t.Parallel()

	g, _ := newStackedGame(t, Config{}, "As 7c Kd Td")
	must(t, g.PlaceBet(0, 10))
	must(t, g.Deal())

	data, err := json.Marshal(g.State())
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	if !strings.Contains(string(data), `"phase":"DEALER_TURN"`) {
		t.Errorf("phase not serialised by name: %s", data)
	}
	if !strings.Contains(string(data), `"id":"spades-ace"`) {
		t.Errorf("card ids missing: %s", data)
	}

	var got Snapshot
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if got.Phase != PhaseDealerTurn {
		t.Errorf("Phase = %s, want DEALER_TURN", got.Phase)
	}
	if got.Balance != 990 || len(got.Hands) != 1 {
		t.Errorf("snapshot round trip lost state: %+v", got)
	}
}

func TestSnapshotIsDetachedFromEngine(t *testing.T) {
	t.Parallel()

	g, _ := newStackedGame(t, Config{}, "5h 7c 9h Td 2c")
	must(t, g.PlaceBet(0, 10))
	must(t, g.Deal())

	before := g.State()
	must(t, g.Hit(0))

	if len(before.Hands[0].Cards) != 2 {
		t.Errorf("earlier snapshot grew to %d cards", len(before.Hands[0].Cards))
	}
	if after := g.State(); len(after.Hands[0].Cards) != 3 {
		t.Errorf("new snapshot has %d cards, want 3", len(after.Hands[0].Cards))
	}
}
