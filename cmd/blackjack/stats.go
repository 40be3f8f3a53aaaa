package main

import (
	"fmt"
	"os"

	"github.com/lox/blackjack/internal/history"
)

// StatsCmd summarises a round history file.
type StatsCmd struct {
	File string `arg:"" optional:"" name:"file" help:"History file (defaults to ~/.blackjack/history.jsonl)"`
}

func (c *StatsCmd) Run() error {
	path := c.File
	if path == "" {
		var err error
		if path, err = defaultHistoryPath(); err != nil {
			return err
		}
	}

	rounds, err := history.Read(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("no history at %s; play some rounds first", path)
		}
		return err
	}
	if len(rounds) == 0 {
		return fmt.Errorf("no rounds recorded in %s", path)
	}

	printHistorySummary(path, rounds, summarize(rounds))
	return nil
}

// historySummary tallies a history file for display.
type historySummary struct {
	Hands    int
	Net      int
	Wagered  int
	Wins     int
	Losses   int
	Pushes   int
	Naturals int
	Best     int
	Worst    int
}

func summarize(rounds []history.Round) historySummary {
	s := historySummary{Best: rounds[0].Net, Worst: rounds[0].Net}
	for _, r := range rounds {
		s.Net += r.Net
		s.Wagered += r.Insurance
		for _, h := range r.Hands {
			s.Hands++
			s.Wagered += h.Bet
			switch h.Outcome {
			case "BLACKJACK":
				s.Naturals++
			case "WIN":
				s.Wins++
			case "PUSH":
				s.Pushes++
			default:
				s.Losses++
			}
		}
		if r.Net > s.Best {
			s.Best = r.Net
		}
		if r.Net < s.Worst {
			s.Worst = r.Net
		}
	}
	return s
}

func printHistorySummary(path string, rounds []history.Round, s historySummary) {
	first, last := rounds[0], rounds[len(rounds)-1]

	fmt.Printf("=== HISTORY: %s ===\n", path)
	fmt.Printf("Rounds: %d (%d hands), %s to %s\n", len(rounds), s.Hands,
		first.Timestamp.Format("2006-01-02"), last.Timestamp.Format("2006-01-02"))
	fmt.Printf("Net: %+d over $%d wagered", s.Net, s.Wagered)
	if s.Wagered > 0 {
		fmt.Printf(" (%+.2f%%)", float64(s.Net)/float64(s.Wagered)*100)
	}
	fmt.Printf("\n")
	fmt.Printf("Balance after last round: $%d\n", last.Balance)
	fmt.Printf("Best round: %+d, worst: %+d\n", s.Best, s.Worst)

	if s.Hands > 0 {
		fh := float64(s.Hands)
		fmt.Printf("\n=== HAND OUTCOMES ===\n")
		fmt.Printf("Wins: %d (%.1f%%)\n", s.Wins, float64(s.Wins)/fh*100)
		fmt.Printf("Blackjacks: %d (%.1f%%)\n", s.Naturals, float64(s.Naturals)/fh*100)
		fmt.Printf("Pushes: %d (%.1f%%)\n", s.Pushes, float64(s.Pushes)/fh*100)
		fmt.Printf("Losses: %d (%.1f%%)\n", s.Losses, float64(s.Losses)/fh*100)
	}
}
