package main

import (
	"fmt"
	"time"

	"github.com/lox/blackjack/cmd/blackjack/shared"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/sim"
)

// SimulateCmd auto-plays rounds against the engine and reports the
// aggregate results.
type SimulateCmd struct {
	Rounds  int    `kong:"default='100000',help='Number of rounds to play'"`
	Workers int    `kong:"default='4',help='Parallel workers, one table each'"`
	Policy  string `kong:"default='basic',help='Playing policy: basic or dealer'"`
	Bet     int    `kong:"help='Flat stake per round (defaults to the table minimum)'"`
	Seed    int64  `kong:"help='RNG seed (0 derives one from the clock)'"`
	Balance int    `kong:"default='10000',help='Starting bankroll per worker'"`
	Decks   int    `kong:"default='6',help='Decks in the shoe'"`
	Verbose bool   `kong:"short='v',help='Verbose logging'"`
}

func (c *SimulateCmd) Run() error {
	level := "warn"
	if c.Verbose {
		level = "debug"
	}
	logger := shared.SetupLogger(level)

	seed := c.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	policy, err := sim.NewPolicy(c.Policy)
	if err != nil {
		return err
	}

	runner, err := sim.New(sim.Config{
		Rounds:  c.Rounds,
		Workers: c.Workers,
		Seed:    seed,
		Bet:     c.Bet,
		Policy:  policy,
		Table: game.Config{
			InitialBalance: c.Balance,
			DeckCount:      c.Decks,
		},
		Logger: logger,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Simulating %d rounds with the %s policy (seed: %d, workers: %d)\n",
		c.Rounds, policy.Name(), seed, c.Workers)

	ctx := shared.SetupSignalHandler()
	started := time.Now()
	stats, err := runner.Run(ctx)
	if err != nil {
		return err
	}
	duration := time.Since(started)

	sim.PrintSummary(stats, policy.Name())
	fmt.Printf("\nPlayed %d rounds in %v (%.0f rounds/sec)\n",
		stats.Rounds, duration.Round(time.Millisecond),
		float64(stats.Rounds)/duration.Seconds())
	return nil
}
