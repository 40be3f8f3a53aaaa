package sim

import (
	"math"
	"testing"

	"github.com/lox/blackjack/internal/game"
)

func TestStatisticsAdd(t *testing.T) {
	stats := &Statistics{}

	stats.Add(RoundResult{
		Net:      15,
		Wagered:  10,
		Outcomes: []game.Outcome{game.OutcomeBlackjack},
	})
	stats.Add(RoundResult{
		Net:      -20,
		Wagered:  20,
		Outcomes: []game.Outcome{game.OutcomeLose, game.OutcomeLose},
	})
	stats.Add(RoundResult{
		Net:      0,
		Wagered:  10,
		Outcomes: []game.Outcome{game.OutcomePush},
	})
	stats.Add(RoundResult{
		Net:      10,
		Wagered:  10,
		Outcomes: []game.Outcome{game.OutcomeWin},
	})

	if stats.Rounds != 4 {
		t.Errorf("Expected 4 rounds, got %d", stats.Rounds)
	}
	if stats.HandsPlayed != 5 {
		t.Errorf("Expected 5 hands, got %d", stats.HandsPlayed)
	}
	if stats.Wins != 1 || stats.Losses != 2 || stats.Pushes != 1 || stats.Blackjacks != 1 {
		t.Errorf("Outcome counters wrong: wins=%d losses=%d pushes=%d blackjacks=%d",
			stats.Wins, stats.Losses, stats.Pushes, stats.Blackjacks)
	}
	if stats.TotalNet != 5 {
		t.Errorf("Expected total net 5, got %d", stats.TotalNet)
	}
	if stats.TotalWagered != 50 {
		t.Errorf("Expected total wagered 50, got %d", stats.TotalWagered)
	}
	if err := stats.Validate(); err != nil {
		t.Errorf("Validate() failed: %v", err)
	}
}

func TestStatisticsMoments(t *testing.T) {
	stats := &Statistics{}
	for _, net := range []int{10, -10, 0, 20} {
		stats.Add(RoundResult{Net: net, Wagered: 10, Outcomes: []game.Outcome{game.OutcomePush}})
	}

	if mean := stats.Mean(); mean != 5 {
		t.Errorf("Expected mean 5, got %f", mean)
	}
	if median := stats.Median(); median != 5 {
		t.Errorf("Expected median 5, got %f", median)
	}

	// Sample variance of {10,-10,0,20} around 5 is 500/3.
	wantVar := 500.0 / 3.0
	if v := stats.Variance(); math.Abs(v-wantVar) > 1e-9 {
		t.Errorf("Expected variance %f, got %f", wantVar, v)
	}
	if sd := stats.StdDev(); math.Abs(sd-math.Sqrt(wantVar)) > 1e-9 {
		t.Errorf("Expected stddev %f, got %f", math.Sqrt(wantVar), sd)
	}

	wantSE := math.Sqrt(wantVar) / 2
	if se := stats.StdError(); math.Abs(se-wantSE) > 1e-9 {
		t.Errorf("Expected stderr %f, got %f", wantSE, se)
	}

	low, high := stats.ConfidenceInterval95()
	if math.Abs((low+high)/2-5) > 1e-9 {
		t.Errorf("CI should be centred on the mean, got [%f, %f]", low, high)
	}
	if math.Abs((high-low)/2-1.96*wantSE) > 1e-9 {
		t.Errorf("CI half width should be 1.96 standard errors, got %f", (high-low)/2)
	}
}

func TestStatisticsPercentile(t *testing.T) {
	stats := &Statistics{}
	for _, net := range []int{40, 0, 10, 30, 20} {
		stats.Add(RoundResult{Net: net, Wagered: 10, Outcomes: []game.Outcome{game.OutcomePush}})
	}

	tests := []struct {
		p    float64
		want float64
	}{
		{0, 0},
		{0.25, 10},
		{0.5, 20},
		{0.75, 30},
		{1, 40},
	}
	for _, tt := range tests {
		if got := stats.Percentile(tt.p); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Percentile(%.2f) = %f, want %f", tt.p, got, tt.want)
		}
	}
}

func TestStatisticsMerge(t *testing.T) {
	a := &Statistics{}
	a.Add(RoundResult{Net: 10, Wagered: 10, Outcomes: []game.Outcome{game.OutcomeWin}})
	a.Bankrupts = 1

	b := &Statistics{}
	b.Add(RoundResult{Net: -10, Wagered: 10, Outcomes: []game.Outcome{game.OutcomeLose}})
	b.Add(RoundResult{Net: 0, Wagered: 10, Outcomes: []game.Outcome{game.OutcomePush}})

	merged := &Statistics{}
	merged.Merge(a)
	merged.Merge(b)

	if merged.Rounds != 3 {
		t.Errorf("Expected 3 rounds after merge, got %d", merged.Rounds)
	}
	if len(merged.Values) != 3 {
		t.Errorf("Expected 3 values after merge, got %d", len(merged.Values))
	}
	if merged.Wins != 1 || merged.Losses != 1 || merged.Pushes != 1 {
		t.Errorf("Outcome counters wrong after merge: wins=%d losses=%d pushes=%d",
			merged.Wins, merged.Losses, merged.Pushes)
	}
	if merged.Bankrupts != 1 {
		t.Errorf("Expected 1 bankrupt after merge, got %d", merged.Bankrupts)
	}
	if merged.TotalNet != 0 {
		t.Errorf("Expected total net 0 after merge, got %d", merged.TotalNet)
	}
	if err := merged.Validate(); err != nil {
		t.Errorf("Validate() failed after merge: %v", err)
	}
}

func TestStatisticsEVPerUnit(t *testing.T) {
	stats := &Statistics{}
	stats.Add(RoundResult{Net: -5, Wagered: 500, Outcomes: []game.Outcome{game.OutcomeLose}})
	stats.Add(RoundResult{Net: 0, Wagered: 500, Outcomes: []game.Outcome{game.OutcomePush}})

	if ev := stats.EVPerUnit(); math.Abs(ev-(-0.005)) > 1e-9 {
		t.Errorf("Expected EV -0.005 per unit, got %f", ev)
	}

	empty := &Statistics{}
	if ev := empty.EVPerUnit(); ev != 0 {
		t.Errorf("Expected zero EV with nothing wagered, got %f", ev)
	}
}

func TestStatisticsValidate(t *testing.T) {
	empty := &Statistics{}
	if err := empty.Validate(); err == nil {
		t.Error("Expected validation to fail with no rounds")
	}

	broken := &Statistics{}
	broken.Add(RoundResult{Net: 10, Wagered: 10, Outcomes: []game.Outcome{game.OutcomeWin}})
	broken.Values = append(broken.Values, 99)
	if err := broken.Validate(); err == nil {
		t.Error("Expected validation to fail with a values length mismatch")
	}

	drifted := &Statistics{}
	drifted.Add(RoundResult{Net: 10, Wagered: 10, Outcomes: []game.Outcome{game.OutcomeWin}})
	drifted.HandsPlayed++
	if err := drifted.Validate(); err == nil {
		t.Error("Expected validation to fail with an outcome counter mismatch")
	}
}
