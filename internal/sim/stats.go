package sim

import (
	"fmt"
	"math"
	"sort"

	"github.com/lox/blackjack/internal/game"
)

// RoundResult represents the outcome of a single simulated round
type RoundResult struct {
	Net      int            // bankroll change for the round
	Wagered  int            // total escrowed: hand bets plus insurance
	Outcomes []game.Outcome // one per hand, splits included
	Seed     int64          // engine seed for this round (for replay)
}

// Statistics aggregates simulated rounds. Net units are dollars per
// round.
type Statistics struct {
	Rounds  int
	SumNet  float64
	SumNet2 float64   // Sum of squares for variance calculation
	Values  []float64 // Store all values for median/percentile calculation

	// Outcome counters over individual hands, splits included.
	HandsPlayed int
	Wins        int
	Losses      int
	Pushes      int
	Blackjacks  int

	TotalNet     int
	TotalWagered int
	Bankrupts    int // bankrolls that fell below the table minimum
}

// Add incorporates a round result into the statistics
func (s *Statistics) Add(result RoundResult) {
	net := float64(result.Net)
	s.Rounds++
	s.SumNet += net
	s.SumNet2 += net * net
	s.Values = append(s.Values, net)
	s.TotalNet += result.Net
	s.TotalWagered += result.Wagered

	for _, outcome := range result.Outcomes {
		s.HandsPlayed++
		switch outcome {
		case game.OutcomeBlackjack:
			s.Blackjacks++
		case game.OutcomeWin:
			s.Wins++
		case game.OutcomePush:
			s.Pushes++
		default:
			s.Losses++
		}
	}
}

// Merge folds another statistics block into this one. Workers each
// aggregate their own block; merging in worker order keeps the values
// slice deterministic for a given seed.
func (s *Statistics) Merge(other *Statistics) {
	s.Rounds += other.Rounds
	s.SumNet += other.SumNet
	s.SumNet2 += other.SumNet2
	s.Values = append(s.Values, other.Values...)
	s.HandsPlayed += other.HandsPlayed
	s.Wins += other.Wins
	s.Losses += other.Losses
	s.Pushes += other.Pushes
	s.Blackjacks += other.Blackjacks
	s.TotalNet += other.TotalNet
	s.TotalWagered += other.TotalWagered
	s.Bankrupts += other.Bankrupts
}

// Mean returns the arithmetic mean result in dollars per round
func (s *Statistics) Mean() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return s.SumNet / float64(s.Rounds)
}

// Variance returns the sample variance of all results
func (s *Statistics) Variance() float64 {
	if s.Rounds < 2 {
		return 0
	}
	mean := s.Mean()
	return (s.SumNet2 - float64(s.Rounds)*mean*mean) / float64(s.Rounds-1)
}

// StdDev returns the sample standard deviation of all results
func (s *Statistics) StdDev() float64 {
	return math.Sqrt(s.Variance())
}

// StdError returns the standard error of the mean
func (s *Statistics) StdError() float64 {
	if s.Rounds == 0 {
		return 0
	}
	return s.StdDev() / math.Sqrt(float64(s.Rounds))
}

// ConfidenceInterval95 returns the 95% confidence interval for the mean
func (s *Statistics) ConfidenceInterval95() (float64, float64) {
	mean := s.Mean()
	margin := 1.96 * s.StdError()
	return mean - margin, mean + margin
}

// Median returns the median value of all results
func (s *Statistics) Median() float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)

	n := len(sorted)
	if n%2 == 0 {
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return sorted[n/2]
}

// Percentile returns the value at the given percentile (0.0 to 1.0)
func (s *Statistics) Percentile(p float64) float64 {
	if len(s.Values) == 0 {
		return 0
	}
	sorted := make([]float64, len(s.Values))
	copy(sorted, s.Values)
	sort.Float64s(sorted)

	index := p * float64(len(sorted)-1)
	lower := int(index)
	upper := lower + 1

	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}

// EVPerUnit returns the net result divided by the amount wagered, the
// conventional edge figure. Negative is the house's edge.
func (s *Statistics) EVPerUnit() float64 {
	if s.TotalWagered == 0 {
		return 0
	}
	return float64(s.TotalNet) / float64(s.TotalWagered)
}

// Validate performs consistency checks on the aggregated data
func (s *Statistics) Validate() error {
	if s.Rounds <= 0 {
		return fmt.Errorf("invalid round count: %d", s.Rounds)
	}
	if len(s.Values) != s.Rounds {
		return fmt.Errorf("values array length (%d) does not match round count (%d)",
			len(s.Values), s.Rounds)
	}
	if counted := s.Wins + s.Losses + s.Pushes + s.Blackjacks; counted != s.HandsPlayed {
		return fmt.Errorf("outcome counters (%d) do not match hands played (%d)",
			counted, s.HandsPlayed)
	}
	if s.HandsPlayed < s.Rounds {
		return fmt.Errorf("hands played (%d) below round count (%d)", s.HandsPlayed, s.Rounds)
	}
	if math.Abs(float64(s.TotalNet)-s.SumNet) > 1e-6 {
		return fmt.Errorf("ledger mismatch: TotalNet=%d, SumNet=%.6f", s.TotalNet, s.SumNet)
	}
	return nil
}

// PrintSummary prints a summary of simulation results to stdout
func PrintSummary(stats *Statistics, policy string) {
	mean := stats.Mean()
	low, high := stats.ConfidenceInterval95()

	fmt.Printf("\n=== RESULTS: %s policy ===\n", policy)
	fmt.Printf("Rounds played: %d (%d hands", stats.Rounds, stats.HandsPlayed)
	if stats.Bankrupts > 0 {
		fmt.Printf(", %d bankrupts", stats.Bankrupts)
	}
	fmt.Printf(")\n")

	fmt.Printf("\n=== STATISTICAL RESULTS ===\n")
	fmt.Printf("Mean: %+.4f $/round\n", mean)
	fmt.Printf("Median: %+.4f $/round\n", stats.Median())
	fmt.Printf("Std Dev: %.4f\n", stats.StdDev())
	fmt.Printf("Std Error: %.4f\n", stats.StdError())
	fmt.Printf("95%% CI: [%+.4f, %+.4f] $/round\n", low, high)
	fmt.Printf("Percentiles: P5=%+.2f, P25=%+.2f, P75=%+.2f, P95=%+.2f\n",
		stats.Percentile(0.05), stats.Percentile(0.25), stats.Percentile(0.75), stats.Percentile(0.95))
	fmt.Printf("Edge: %+.3f%% of $%d wagered\n", stats.EVPerUnit()*100, stats.TotalWagered)

	fmt.Printf("\n=== HAND OUTCOMES ===\n")
	hands := float64(stats.HandsPlayed)
	if hands > 0 {
		fmt.Printf("Wins: %d (%.1f%%)\n", stats.Wins, float64(stats.Wins)/hands*100)
		fmt.Printf("Blackjacks: %d (%.1f%%)\n", stats.Blackjacks, float64(stats.Blackjacks)/hands*100)
		fmt.Printf("Pushes: %d (%.1f%%)\n", stats.Pushes, float64(stats.Pushes)/hands*100)
		fmt.Printf("Losses: %d (%.1f%%)\n", stats.Losses, float64(stats.Losses)/hands*100)
	}
}
