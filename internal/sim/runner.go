package sim

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/randutil"
)

// maxTurnsPerRound bounds the decision loop. Three hands of repeated
// small hits plus splits and insurance stay well under this.
const maxTurnsPerRound = 64

var errBankrupt = errors.New("bankroll below table minimum")

// Config holds configuration for a simulation run
type Config struct {
	Rounds  int
	Workers int
	Seed    int64
	Bet     int // flat wager per round; 0 means the table minimum
	Policy  Policy
	Table   game.Config
	Logger  *log.Logger
}

// Runner plays rounds across a pool of workers, one engine per worker
// so no lock sits between a policy and its table.
type Runner struct {
	config Config
}

// New creates a runner with the given configuration
func New(config Config) (*Runner, error) {
	if config.Rounds <= 0 {
		return nil, fmt.Errorf("rounds must be positive, got %d", config.Rounds)
	}
	if config.Workers <= 0 {
		config.Workers = 1
	}
	if config.Policy == nil {
		config.Policy = BasicStrategy{}
	}
	if config.Logger == nil {
		config.Logger = log.New(io.Discard)
	}
	if config.Bet < 0 {
		return nil, fmt.Errorf("bet must not be negative, got %d", config.Bet)
	}

	// Zero table fields default inside the engine, so validate by
	// constructing one rather than second-guessing the defaults here.
	if _, err := game.NewGame(config.Table, randutil.New(config.Seed), game.WithLogger(config.Logger)); err != nil {
		return nil, fmt.Errorf("table: %w", err)
	}
	return &Runner{config: config}, nil
}

// Run plays the configured number of rounds and returns the merged
// statistics. Rounds are split across workers, each seeded from the
// run seed plus its index, so a run is reproducible for a given seed
// and worker count.
func (r *Runner) Run(ctx context.Context) (*Statistics, error) {
	cfg := r.config
	started := time.Now()

	perWorker := make([]*Statistics, cfg.Workers)
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < cfg.Workers; i++ {
		share := cfg.Rounds / cfg.Workers
		if i < cfg.Rounds%cfg.Workers {
			share++
		}
		if share == 0 {
			continue
		}
		worker := i
		rounds := share
		perWorker[worker] = &Statistics{}
		g.Go(func() error {
			return r.runWorker(ctx, worker, rounds, perWorker[worker])
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := &Statistics{}
	for _, ws := range perWorker {
		if ws != nil {
			stats.Merge(ws)
		}
	}
	if err := stats.Validate(); err != nil {
		return nil, fmt.Errorf("statistics validation failed: %w", err)
	}

	cfg.Logger.Info("simulation complete",
		"policy", cfg.Policy.Name(),
		"rounds", stats.Rounds,
		"mean", fmt.Sprintf("%+.4f", stats.Mean()),
		"elapsed", time.Since(started),
	)
	return stats, nil
}

func (r *Runner) runWorker(ctx context.Context, worker, rounds int, stats *Statistics) error {
	seed := r.config.Seed + int64(worker)
	engine, err := r.newEngine(seed)
	if err != nil {
		return err
	}

	fresh := true
	for played := 0; played < rounds; {
		if err := ctx.Err(); err != nil {
			return err
		}

		result, err := r.playRound(engine)
		switch {
		case errors.Is(err, errBankrupt):
			if fresh {
				return fmt.Errorf("worker %d: initial balance cannot cover the table minimum", worker)
			}
			// Fresh bankroll on a reseeded engine. Stepping by the
			// worker count keeps the seed out of other workers' ranges.
			stats.Bankrupts++
			seed += int64(r.config.Workers)
			if engine, err = r.newEngine(seed); err != nil {
				return err
			}
			fresh = true
			continue
		case err != nil:
			return fmt.Errorf("worker %d round %d: %w", worker, played+1, err)
		}

		result.Seed = seed
		stats.Add(result)
		played++
		fresh = false
	}
	return nil
}

func (r *Runner) newEngine(seed int64) (*game.Game, error) {
	return game.NewGame(r.config.Table, randutil.New(seed), game.WithLogger(r.config.Logger))
}

// playRound drives one round from betting to settlement.
func (r *Runner) playRound(engine *game.Game) (RoundResult, error) {
	snap := engine.State()
	if snap.Settled {
		if err := r.apply(engine, game.ActionNewRound, 0, 0); err != nil {
			return RoundResult{}, err
		}
		snap = engine.State()
	}
	switch snap.Phase {
	case game.PhaseBetting:
	case game.PhaseGameOver:
		return RoundResult{}, errBankrupt
	default:
		return RoundResult{}, fmt.Errorf("round opened in phase %s", snap.Phase)
	}

	if err := r.apply(engine, game.ActionBet, 0, r.betAmount(snap)); err != nil {
		return RoundResult{}, err
	}
	if err := r.apply(engine, game.ActionDeal, 0, 0); err != nil {
		return RoundResult{}, err
	}

	policy := r.config.Policy
	for turns := 0; ; turns++ {
		if turns > maxTurnsPerRound {
			return RoundResult{}, fmt.Errorf("round did not settle after %d turns", maxTurnsPerRound)
		}
		snap = engine.State()
		if snap.Settled {
			break
		}

		switch snap.Phase {
		case game.PhaseInsuranceCheck:
			action, amount := game.ActionNoInsurance, 0
			if stake, ok := insuranceStake(snap); ok && policy.TakesInsurance(snap) {
				action, amount = game.ActionInsurance, stake
			}
			if err := r.apply(engine, action, 0, amount); err != nil {
				return RoundResult{}, err
			}
		case game.PhasePlayerTurn:
			if err := r.apply(engine, policy.Play(snap), snap.CurrentHand, 0); err != nil {
				return RoundResult{}, err
			}
		default:
			return RoundResult{}, fmt.Errorf("no play available in phase %s", snap.Phase)
		}
	}

	return resultFromSnapshot(snap), nil
}

// apply runs an action and then any house turns it unlocked.
func (r *Runner) apply(engine *game.Game, action game.ActionType, hand, amount int) error {
	if err := engine.Apply(action, hand, amount); err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}
	return engine.Advance()
}

// betAmount clamps the flat wager to the table bounds and the
// remaining bankroll. The bounds come from the snapshot so partial
// table configs resolve to whatever the engine defaulted them to.
func (r *Runner) betAmount(snap game.Snapshot) int {
	bet := r.config.Bet
	for _, a := range snap.Actions {
		if a.Action != game.ActionBet {
			continue
		}
		if bet < a.MinAmount {
			bet = a.MinAmount
		}
		if bet > a.MaxAmount {
			bet = a.MaxAmount
		}
	}
	if bet > snap.Balance {
		bet = snap.Balance
	}
	return bet
}

func insuranceStake(snap game.Snapshot) (int, bool) {
	for _, a := range snap.Actions {
		if a.Action == game.ActionInsurance {
			return a.MinAmount, true
		}
	}
	return 0, false
}

func resultFromSnapshot(snap game.Snapshot) RoundResult {
	result := RoundResult{Net: snap.Net, Wagered: snap.InsuranceBet}
	for _, hand := range snap.Hands {
		result.Wagered += hand.Bet
		var outcome game.Outcome
		if err := outcome.UnmarshalText([]byte(hand.Outcome)); err == nil {
			result.Outcomes = append(result.Outcomes, outcome)
		}
	}
	return result
}
