// Package game implements a single player blackjack table: a shoe of
// cards, a bankroll ledger, up to three player hands and a dealer that
// hits soft 17. All state changes go through the operation methods on
// Game and are mirrored onto an event bus.
package game

import (
	"fmt"
	"math/rand/v2"

	"github.com/charmbracelet/log"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/roundid"
)

// Game is a blackjack table for one player. It is not safe for
// concurrent use; callers that share a Game across goroutines must
// serialise access themselves.
type Game struct {
	cfg    Config
	shoe   *deck.Shoe
	ledger *Ledger
	hands  []*Hand
	dealer *Hand

	phase   Phase
	current int
	roundID string
	round   int

	holeRevealed     bool
	insuranceOffered bool
	insuranceTaken   bool
	insuranceSettled bool
	settled          bool
	outcomes         []Outcome
	messages         []string

	logger *log.Logger
	bus    EventBus
}

// NewGame creates a table with the given rules. Zero config fields take
// their defaults. The rng drives the shoe shuffle and must not be nil;
// a nil rng panics rather than degrading to a predictable shuffle.
func NewGame(cfg Config, rng *rand.Rand, opts ...Option) (*Game, error) {
	if rng == nil {
		panic("game: rng is required")
	}

	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := defaultGameConfig()
	for _, opt := range opts {
		opt(o)
	}

	shoe := o.shoe
	if shoe == nil {
		shoe = deck.NewShoe(rng)
	}

	g := &Game{
		cfg:     cfg,
		shoe:    shoe,
		ledger:  NewLedger(cfg.InitialBalance, cfg.MinBet, cfg.MaxBet),
		current: -1,
		logger:  o.logger,
		bus:     o.bus,
	}
	g.startRound()
	return g, nil
}

// Phase returns the current lifecycle phase.
func (g *Game) Phase() Phase {
	return g.phase
}

// Balance returns the current bankroll.
func (g *Game) Balance() int {
	if g.ledger == nil {
		return 0
	}
	return g.ledger.Balance()
}

// Round returns the one-based round counter.
func (g *Game) Round() int {
	return g.round
}

// RoundID returns the identifier of the round in progress.
func (g *Game) RoundID() string {
	return g.roundID
}

// RoundSettled reports whether the current round has been resolved.
func (g *Game) RoundSettled() bool {
	return g.settled
}

// EventBus returns the bus the engine publishes to.
func (g *Game) EventBus() EventBus {
	return g.bus
}

// StartNewRound clears the table for a fresh round. From BETTING it
// refunds any escrowed bets and stays put; from a settled RESOLUTION or
// from GAME_OVER it opens the next round. The next phase is BETTING
// unless the bankroll no longer covers the table minimum, in which case
// the game ends.
func (g *Game) StartNewRound() error {
	if g.ledger == nil {
		return fmt.Errorf("%w: game was not constructed with NewGame", ErrNotInitialized)
	}
	switch g.phase {
	case PhaseBetting:
		g.ledger.RefundAll()
	case PhaseResolution:
		if !g.settled {
			return fmt.Errorf("%w: round must be resolved before a new one starts", ErrIllegalAction)
		}
	case PhaseGameOver:
	default:
		return fmt.Errorf("%w: cannot start a new round during %s", ErrIllegalAction, g.phase)
	}
	g.startRound()
	return nil
}

func (g *Game) startRound() {
	g.ledger.Reset()
	g.hands = nil
	g.dealer = nil
	g.current = -1
	g.holeRevealed = false
	g.insuranceOffered = false
	g.insuranceTaken = false
	g.insuranceSettled = false
	g.settled = false
	g.outcomes = nil
	g.messages = nil
	g.round++
	g.roundID = roundid.New()

	if g.ledger.Balance() < g.cfg.MinBet {
		g.setPhase(PhaseGameOver)
		g.pushMessage("balance $%d cannot cover the $%d minimum bet", g.ledger.Balance(), g.cfg.MinBet)
		g.logger.Info("game over", "round", g.round, "balance", g.ledger.Balance(), "minBet", g.cfg.MinBet)
		g.bus.Publish(NewGameOverEvent(g.ledger.Balance(), g.cfg.MinBet))
		return
	}

	g.setPhase(PhaseBetting)
	g.logger.Debug("round started", "round", g.round, "roundID", g.roundID, "balance", g.ledger.Balance())
	g.bus.Publish(NewRoundStartedEvent(g.roundID, g.round, g.ledger.Balance()))
}

// PlaceBet escrows a wager on hand i during BETTING. Hands are staked
// contiguously from index 0; betting again on a staked hand refunds the
// old wager and escrows the new one.
func (g *Game) PlaceBet(handIndex, amount int) error {
	if err := g.requirePhase("bet", PhaseBetting); err != nil {
		return err
	}
	if handIndex >= g.cfg.MaxHands {
		return fmt.Errorf("%w: hand %d exceeds the %d hand limit", ErrInvalidArgument, handIndex, g.cfg.MaxHands)
	}
	if err := g.ledger.PlaceBet(handIndex, amount); err != nil {
		return err
	}
	g.logger.Debug("bet placed", "hand", handIndex, "amount", amount, "balance", g.ledger.Balance())
	g.bus.Publish(NewBetPlacedEvent(handIndex, amount, g.ledger.Balance()))
	return nil
}

// Deal closes betting and deals the round: two cards to every staked
// hand and two to the dealer, the second face down. If the dealer shows
// an ace the round pauses for the insurance decision; otherwise play
// proceeds to the first hand that is not a natural blackjack.
func (g *Game) Deal() error {
	if err := g.requirePhase("deal", PhaseBetting); err != nil {
		return err
	}
	if g.ledger.HandCount() == 0 {
		return fmt.Errorf("%w: no bets placed", ErrIllegalAction)
	}

	if g.shoe.Count() < g.cfg.ReshuffleThreshold {
		if err := g.shoe.Build(g.cfg.DeckCount); err != nil {
			return fmt.Errorf("build shoe: %w", err)
		}
		g.shoe.Shuffle()
		g.logger.Debug("shuffled shoe", "decks", g.cfg.DeckCount, "cards", g.shoe.Count())
	}

	bets := g.ledger.Bets()
	g.hands = make([]*Hand, len(bets))
	for i, bet := range bets {
		g.hands[i] = NewHand(bet)
	}
	g.dealer = NewHand(0)

	g.setPhase(PhaseDealing)

	// First pass to every hand and the dealer's up card, then the
	// second pass and the hole card.
	for pass := 0; pass < 2; pass++ {
		for i, h := range g.hands {
			if err := g.dealTo(h, i, false); err != nil {
				return err
			}
		}
		if err := g.dealTo(g.dealer, -1, pass == 1); err != nil {
			return err
		}
	}

	for i, h := range g.hands {
		if h.Natural() {
			h.Standing = true
			g.pushMessage("hand %d has blackjack", i+1)
		}
	}

	g.logger.Debug("dealt round",
		"round", g.round,
		"hands", len(g.hands),
		"upcard", g.dealer.Cards[0].String(),
	)

	if g.dealer.Cards[0].IsAce() {
		g.insuranceOffered = true
		g.setPhase(PhaseInsuranceCheck)
		g.bus.Publish(NewInsuranceOfferedEvent(g.dealer.Cards[0], g.ledger.Bet(0)/2))
		return nil
	}

	g.beginPlay()
	return nil
}

// Hit deals one card to the current hand. Busting or reaching 21 ends
// the hand's turn.
func (g *Game) Hit(handIndex int) error {
	if err := g.requireTurn("hit", handIndex); err != nil {
		return err
	}
	h := g.hands[handIndex]
	if err := g.dealTo(h, handIndex, false); err != nil {
		return err
	}
	switch {
	case h.Bust():
		g.pushMessage("hand %d busts with %d", handIndex+1, h.Value())
		g.bus.Publish(NewHandBustedEvent(handIndex, h.Value()))
		g.advanceTurn()
	case h.Value() == 21:
		h.Standing = true
		g.bus.Publish(NewHandStoodEvent(handIndex, h.Value()))
		g.advanceTurn()
	}
	return nil
}

// Stand ends the current hand's turn.
func (g *Game) Stand(handIndex int) error {
	if err := g.requireTurn("stand", handIndex); err != nil {
		return err
	}
	h := g.hands[handIndex]
	h.Standing = true
	g.bus.Publish(NewHandStoodEvent(handIndex, h.Value()))
	g.advanceTurn()
	return nil
}

// DoubleDown doubles the wager on a two card hand, deals exactly one
// more card and stands the hand.
func (g *Game) DoubleDown(handIndex int) error {
	if err := g.requireTurn("double", handIndex); err != nil {
		return err
	}
	h := g.hands[handIndex]
	if len(h.Cards) != 2 {
		return fmt.Errorf("%w: double down requires exactly two cards, hand %d has %d", ErrIllegalAction, handIndex, len(h.Cards))
	}
	if err := g.ledger.EscrowDouble(handIndex); err != nil {
		return err
	}
	h.Bet = g.ledger.Bet(handIndex)
	h.Doubled = true
	g.bus.Publish(NewHandDoubledEvent(handIndex, h.Bet))
	if err := g.dealTo(h, handIndex, false); err != nil {
		return err
	}
	if h.Bust() {
		g.pushMessage("hand %d busts with %d", handIndex+1, h.Value())
		g.bus.Publish(NewHandBustedEvent(handIndex, h.Value()))
	}
	h.Standing = true
	g.advanceTurn()
	return nil
}

// Split turns a two card pair of equal value into two hands, escrowing
// a matching bet on the new one. Each hand receives a second card
// immediately; a resulting 21 stands automatically but is not a
// blackjack.
func (g *Game) Split(handIndex int) error {
	if err := g.requireTurn("split", handIndex); err != nil {
		return err
	}
	if !g.canSplit(handIndex) {
		return fmt.Errorf("%w: hand %d cannot be split", ErrIllegalAction, handIndex)
	}
	if err := g.ledger.EscrowSplit(handIndex); err != nil {
		return err
	}

	h := g.hands[handIndex]
	moved := h.Cards[1]
	h.Cards = h.Cards[:1]
	h.FromSplit = true

	split := NewHand(h.Bet)
	split.FromSplit = true
	split.Add(moved)

	g.hands = append(g.hands, nil)
	copy(g.hands[handIndex+2:], g.hands[handIndex+1:])
	g.hands[handIndex+1] = split

	g.bus.Publish(NewHandSplitEvent(handIndex, handIndex+1, h.Bet))
	g.logger.Debug("hand split", "hand", handIndex, "card", moved.String(), "bet", h.Bet)

	for offset, hand := range []*Hand{h, split} {
		i := handIndex + offset
		if err := g.dealTo(hand, i, false); err != nil {
			return err
		}
		if hand.Value() == 21 {
			hand.Standing = true
			g.bus.Publish(NewHandStoodEvent(i, hand.Value()))
			g.pushMessage("hand %d makes 21", i+1)
		}
	}

	g.advanceTurn()
	return nil
}

// TakeInsurance escrows the side bet of half the first hand's wager,
// rounded down. On a dealer blackjack it pays 2:1 immediately and the
// round moves to the reveal; otherwise the stake rides until settlement
// and play continues.
func (g *Game) TakeInsurance() error {
	if err := g.requirePhase("insurance", PhaseInsuranceCheck); err != nil {
		return err
	}
	stake := g.ledger.Bet(0) / 2
	if err := g.ledger.EscrowInsurance(stake); err != nil {
		return err
	}
	g.insuranceTaken = true
	g.logger.Debug("insurance taken", "stake", stake, "balance", g.ledger.Balance())

	if g.dealer.Natural() {
		payout := g.ledger.SettleInsurance(true)
		g.insuranceSettled = true
		g.pushMessage("insurance pays $%d", payout)
		g.bus.Publish(NewInsuranceResolvedEvent(stake, true, payout))
		g.setPhase(PhaseDealerTurn)
		return nil
	}

	g.beginPlay()
	return nil
}

// DeclineInsurance waves the side bet away. On a dealer blackjack the
// round moves straight to the reveal; otherwise play continues.
func (g *Game) DeclineInsurance() error {
	if err := g.requirePhase("decline insurance", PhaseInsuranceCheck); err != nil {
		return err
	}
	if g.dealer.Natural() {
		g.setPhase(PhaseDealerTurn)
		return nil
	}
	g.beginPlay()
	return nil
}

// PlayDealerTurn reveals the hole card and plays out the dealer: hit on
// 16 or less and on soft 17, stand otherwise. The dealer only draws
// when at least one player hand is still contending, then the round
// moves to RESOLUTION.
func (g *Game) PlayDealerTurn() error {
	if err := g.requirePhase("play dealer", PhaseDealerTurn); err != nil {
		return err
	}

	g.holeRevealed = true
	hole := g.dealer.Cards[1]
	g.pushMessage("dealer reveals %s (%d)", hole, g.dealer.Value())
	g.bus.Publish(NewDealerRevealedEvent(hole, g.dealer.Value(), g.dealer.Natural()))

	if g.anyContender() {
		for dealerShouldDraw(g.dealer) {
			if err := g.dealTo(g.dealer, -1, false); err != nil {
				return err
			}
		}
		if g.dealer.Bust() {
			g.pushMessage("dealer busts with %d", g.dealer.Value())
		}
	}

	g.logger.Debug("dealer played", "value", g.dealer.Value(), "cards", len(g.dealer.Cards), "bust", g.dealer.Bust())
	g.setPhase(PhaseResolution)
	return nil
}

// ResolveRound settles every hand against the dealer, then the
// insurance leg, crediting the ledger once per leg. It may be called
// once per round.
func (g *Game) ResolveRound() error {
	if err := g.requirePhase("resolve", PhaseResolution); err != nil {
		return err
	}
	if g.settled {
		return fmt.Errorf("%w: round already resolved", ErrIllegalAction)
	}

	g.outcomes = make([]Outcome, len(g.hands))
	for i, h := range g.hands {
		outcome := g.resolveOutcome(h)
		payout := g.ledger.Settle(i, outcome)
		g.outcomes[i] = outcome
		g.pushMessage("hand %d: %s", i+1, settleMessage(outcome, h.Bet, payout))
		g.bus.Publish(NewHandSettledEvent(i, outcome, h.Bet, payout, g.ledger.Balance()))
	}

	if g.insuranceTaken && !g.insuranceSettled {
		stake := g.ledger.Insurance()
		g.ledger.SettleInsurance(false)
		g.insuranceSettled = true
		g.pushMessage("insurance forfeited ($%d)", stake)
		g.bus.Publish(NewInsuranceResolvedEvent(stake, false, 0))
	}

	g.settled = true
	net := g.ledger.Net()
	g.pushMessage("round net %+d, balance $%d", net, g.ledger.Balance())
	g.logger.Info("round settled",
		"round", g.round,
		"hands", len(g.hands),
		"net", net,
		"balance", g.ledger.Balance(),
	)
	g.bus.Publish(NewRoundSettledEvent(g.roundID, g.round, net, g.ledger.Balance(), g.outcomes))
	return nil
}

// Advance runs any pending house turns: the dealer's play and the round
// settlement. It stops in phases that wait on player input.
func (g *Game) Advance() error {
	for {
		switch {
		case g.phase == PhaseDealerTurn:
			if err := g.PlayDealerTurn(); err != nil {
				return err
			}
		case g.phase == PhaseResolution && !g.settled:
			if err := g.ResolveRound(); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

// Apply dispatches an action by name. Amount is only read for bets and
// handIndex only for per hand actions.
func (g *Game) Apply(action ActionType, handIndex, amount int) error {
	switch action {
	case ActionNewRound:
		return g.StartNewRound()
	case ActionBet:
		return g.PlaceBet(handIndex, amount)
	case ActionDeal:
		return g.Deal()
	case ActionHit:
		return g.Hit(handIndex)
	case ActionStand:
		return g.Stand(handIndex)
	case ActionDouble:
		return g.DoubleDown(handIndex)
	case ActionSplit:
		return g.Split(handIndex)
	case ActionInsurance:
		return g.TakeInsurance()
	case ActionNoInsurance:
		return g.DeclineInsurance()
	case ActionPlayDealer:
		return g.PlayDealerTurn()
	case ActionResolve:
		return g.ResolveRound()
	default:
		return fmt.Errorf("%w: unknown action %q", ErrInvalidArgument, action)
	}
}

// beginPlay hands the round to the first playable hand, or to the
// dealer when every hand already stands.
func (g *Game) beginPlay() {
	g.current = g.nextPlayable(0)
	if g.current < 0 {
		g.setPhase(PhaseDealerTurn)
		return
	}
	g.setPhase(PhasePlayerTurn)
}

// advanceTurn moves to the next hand still in play, starting from the
// current one, and hands over to the dealer when none remain.
func (g *Game) advanceTurn() {
	g.current = g.nextPlayable(g.current)
	if g.current < 0 {
		g.setPhase(PhaseDealerTurn)
	}
}

func (g *Game) nextPlayable(from int) int {
	for i := from; i < len(g.hands); i++ {
		h := g.hands[i]
		if !h.Standing && !h.Bust() {
			return i
		}
	}
	return -1
}

// anyContender reports whether any hand still contests the dealer's
// total: busts have already lost and naturals are paid regardless of
// what the dealer draws.
func (g *Game) anyContender() bool {
	for _, h := range g.hands {
		if !h.Bust() && !h.Natural() {
			return true
		}
	}
	return false
}

func (g *Game) resolveOutcome(h *Hand) Outcome {
	switch {
	case h.Bust():
		return OutcomeLose
	case h.Natural() && g.dealer.Natural():
		return OutcomePush
	case h.Natural():
		return OutcomeBlackjack
	case g.dealer.Natural():
		return OutcomeLose
	case g.dealer.Bust():
		return OutcomeWin
	case h.Value() > g.dealer.Value():
		return OutcomeWin
	case h.Value() < g.dealer.Value():
		return OutcomeLose
	default:
		return OutcomePush
	}
}

func settleMessage(outcome Outcome, bet, payout int) string {
	switch outcome {
	case OutcomeBlackjack:
		return fmt.Sprintf("blackjack, pays $%d", payout)
	case OutcomeWin:
		return fmt.Sprintf("wins $%d", payout-bet)
	case OutcomePush:
		return "push"
	default:
		return fmt.Sprintf("loses $%d", bet)
	}
}

func (g *Game) canSplit(handIndex int) bool {
	if handIndex < 0 || handIndex >= len(g.hands) {
		return false
	}
	h := g.hands[handIndex]
	return len(h.Cards) == 2 &&
		h.Cards[0].Rank.Value() == h.Cards[1].Rank.Value() &&
		len(g.hands) < g.cfg.MaxHands
}

// dealTo draws the next card into a hand and publishes it. handIndex
// is -1 for the dealer; the hole card is dealt concealed.
func (g *Game) dealTo(h *Hand, handIndex int, concealed bool) error {
	card, err := g.shoe.Deal()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEmptyResource, err)
	}
	h.Add(card)
	if handIndex < 0 {
		g.bus.Publish(NewDealerCardEvent(card, concealed))
	} else {
		g.bus.Publish(NewCardDealtEvent(handIndex, card))
	}
	return nil
}

func (g *Game) setPhase(next Phase) {
	if g.phase == next {
		return
	}
	prev := g.phase
	g.phase = next
	g.logger.Debug("phase changed", "from", prev.String(), "to", next.String())
	g.bus.Publish(NewPhaseChangedEvent(prev, next))
}

func (g *Game) requirePhase(verb string, want Phase) error {
	if g.ledger == nil {
		return fmt.Errorf("%w: game was not constructed with NewGame", ErrNotInitialized)
	}
	if g.phase != want {
		return fmt.Errorf("%w: cannot %s during %s", ErrIllegalAction, verb, g.phase)
	}
	return nil
}

func (g *Game) requireTurn(verb string, handIndex int) error {
	if err := g.requirePhase(verb, PhasePlayerTurn); err != nil {
		return err
	}
	if handIndex < 0 || handIndex >= len(g.hands) {
		return fmt.Errorf("%w: no hand %d", ErrInvalidArgument, handIndex)
	}
	if handIndex != g.current {
		return fmt.Errorf("%w: cannot %s hand %d, hand %d is acting", ErrIllegalAction, verb, handIndex, g.current)
	}
	return nil
}

func (g *Game) pushMessage(format string, args ...any) {
	g.messages = append(g.messages, fmt.Sprintf(format, args...))
}
