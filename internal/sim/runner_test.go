package sim

import (
	"context"
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/lox/blackjack/internal/game"
)

func testLogger() *log.Logger {
	return log.New(io.Discard)
}

func TestNewRejectsBadConfig(t *testing.T) {
	if _, err := New(Config{Rounds: 0}); err == nil {
		t.Error("Expected an error for zero rounds")
	}
	if _, err := New(Config{Rounds: 10, Bet: -5}); err == nil {
		t.Error("Expected an error for a negative bet")
	}
	if _, err := New(Config{
		Rounds: 10,
		Table:  game.Config{MinBet: 100, MaxBet: 50},
		Logger: testLogger(),
	}); err == nil {
		t.Error("Expected an error for min bet above max bet")
	}
}

func TestRunPlaysRequestedRounds(t *testing.T) {
	runner, err := New(Config{
		Rounds:  60,
		Workers: 3,
		Seed:    42,
		Logger:  testLogger(),
	})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	stats, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if stats.Rounds != 60 {
		t.Errorf("Expected 60 rounds, got %d", stats.Rounds)
	}
	if stats.HandsPlayed < 60 {
		t.Errorf("Expected at least one hand per round, got %d", stats.HandsPlayed)
	}
	if stats.TotalWagered < 600 {
		t.Errorf("Expected at least the minimum wagered per round, got %d", stats.TotalWagered)
	}
	if err := stats.Validate(); err != nil {
		t.Errorf("Validate() failed: %v", err)
	}
}

func TestRunIsDeterministic(t *testing.T) {
	run := func() *Statistics {
		runner, err := New(Config{
			Rounds:  120,
			Workers: 2,
			Seed:    7,
			Bet:     25,
			Policy:  BasicStrategy{},
			Logger:  testLogger(),
		})
		if err != nil {
			t.Fatalf("New() failed: %v", err)
		}
		stats, err := runner.Run(context.Background())
		if err != nil {
			t.Fatalf("Run() failed: %v", err)
		}
		return stats
	}

	first := run()
	second := run()

	if first.SumNet != second.SumNet {
		t.Errorf("Same seed produced different nets: %f vs %f", first.SumNet, second.SumNet)
	}
	if first.HandsPlayed != second.HandsPlayed {
		t.Errorf("Same seed produced different hand counts: %d vs %d", first.HandsPlayed, second.HandsPlayed)
	}
	if len(first.Values) != len(second.Values) {
		t.Fatalf("Same seed produced different round counts: %d vs %d", len(first.Values), len(second.Values))
	}
	for i := range first.Values {
		if first.Values[i] != second.Values[i] {
			t.Fatalf("Round %d differs between runs: %f vs %f", i, first.Values[i], second.Values[i])
		}
	}
}

func TestRunSurvivesBankruptcy(t *testing.T) {
	runner, err := New(Config{
		Rounds: 300,
		Seed:   3,
		Bet:    10,
		Table: game.Config{
			InitialBalance: 10,
			MinBet:         10,
			MaxBet:         500,
		},
		Logger: testLogger(),
	})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	stats, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if stats.Rounds != 300 {
		t.Errorf("Expected 300 rounds despite bankruptcies, got %d", stats.Rounds)
	}
	if stats.Bankrupts == 0 {
		t.Error("Expected a single bet bankroll to bust at least once in 300 rounds")
	}
}

func TestRunHonoursContext(t *testing.T) {
	runner, err := New(Config{
		Rounds:  100000,
		Workers: 2,
		Seed:    1,
		Logger:  testLogger(),
	})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := runner.Run(ctx); err == nil {
		t.Error("Expected Run to fail once the context is cancelled")
	}
}

func TestRunWithDealerMimic(t *testing.T) {
	runner, err := New(Config{
		Rounds: 400,
		Seed:   99,
		Policy: DealerMimic{},
		Logger: testLogger(),
	})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	stats, err := runner.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if stats.Rounds != 400 {
		t.Errorf("Expected 400 rounds, got %d", stats.Rounds)
	}
	// The mimic never splits, so hands and rounds line up one to one.
	if stats.HandsPlayed != 400 {
		t.Errorf("Expected one hand per round, got %d", stats.HandsPlayed)
	}
	t.Logf("dealer mimic: mean %+.3f $/round, edge %+.3f%%", stats.Mean(), stats.EVPerUnit()*100)
}
