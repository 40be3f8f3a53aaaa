package game

import "fmt"

// Ledger tracks the bankroll and the wagers escrowed for the round in
// progress. Chips leave the balance the moment a wager is placed;
// settlement credits are the only way they come back.
type Ledger struct {
	balance   int
	bets      []int
	insurance int
	staked    int
	returned  int
	minBet    int
	maxBet    int
}

// NewLedger creates a ledger with the starting bankroll and table limits.
func NewLedger(balance, minBet, maxBet int) *Ledger {
	return &Ledger{
		balance: balance,
		minBet:  minBet,
		maxBet:  maxBet,
	}
}

// Balance returns the current bankroll.
func (l *Ledger) Balance() int {
	return l.balance
}

// Bets returns a copy of the escrowed bets in hand order.
func (l *Ledger) Bets() []int {
	bets := make([]int, len(l.bets))
	copy(bets, l.bets)
	return bets
}

// Bet returns the escrowed bet for hand i, or zero if no such hand.
func (l *Ledger) Bet(i int) int {
	if i < 0 || i >= len(l.bets) {
		return 0
	}
	return l.bets[i]
}

// HandCount returns the number of hands with an escrowed bet.
func (l *Ledger) HandCount() int {
	return len(l.bets)
}

// Insurance returns the escrowed insurance stake.
func (l *Ledger) Insurance() int {
	return l.insurance
}

// PlaceBet escrows amount on hand i, refunding and replacing any bet
// already there. Hands must be staked contiguously from index 0.
func (l *Ledger) PlaceBet(i, amount int) error {
	if i < 0 || i > len(l.bets) {
		return fmt.Errorf("%w: hand %d cannot be staked before hand %d", ErrInvalidArgument, i, len(l.bets))
	}
	if amount < l.minBet || amount > l.maxBet {
		return fmt.Errorf("%w: bet %d outside table limits %d..%d", ErrInvalidArgument, amount, l.minBet, l.maxBet)
	}
	refund := 0
	if i < len(l.bets) {
		refund = l.bets[i]
	}
	if amount > l.balance+refund {
		return fmt.Errorf("%w: bet %d exceeds balance %d", ErrInsufficientFunds, amount, l.balance+refund)
	}
	l.balance += refund - amount
	l.staked += amount - refund
	if i == len(l.bets) {
		l.bets = append(l.bets, amount)
	} else {
		l.bets[i] = amount
	}
	return nil
}

// EscrowDouble doubles the bet on hand i, debiting the original amount
// a second time.
func (l *Ledger) EscrowDouble(i int) error {
	if i < 0 || i >= len(l.bets) {
		return fmt.Errorf("%w: no bet for hand %d", ErrInvalidArgument, i)
	}
	bet := l.bets[i]
	if bet > l.balance {
		return fmt.Errorf("%w: doubling hand %d needs %d, balance is %d", ErrInsufficientFunds, i, bet, l.balance)
	}
	l.balance -= bet
	l.staked += bet
	l.bets[i] *= 2
	return nil
}

// EscrowSplit debits a matching bet for the hand split off hand i and
// records it at position i+1.
func (l *Ledger) EscrowSplit(i int) error {
	if i < 0 || i >= len(l.bets) {
		return fmt.Errorf("%w: no bet for hand %d", ErrInvalidArgument, i)
	}
	bet := l.bets[i]
	if bet > l.balance {
		return fmt.Errorf("%w: splitting hand %d needs %d, balance is %d", ErrInsufficientFunds, i, bet, l.balance)
	}
	l.balance -= bet
	l.staked += bet
	l.bets = append(l.bets, 0)
	copy(l.bets[i+2:], l.bets[i+1:])
	l.bets[i+1] = bet
	return nil
}

// EscrowInsurance debits the insurance stake.
func (l *Ledger) EscrowInsurance(stake int) error {
	if stake <= 0 {
		return fmt.Errorf("%w: insurance stake %d", ErrInvalidArgument, stake)
	}
	if stake > l.balance {
		return fmt.Errorf("%w: insurance needs %d, balance is %d", ErrInsufficientFunds, stake, l.balance)
	}
	l.balance -= stake
	l.staked += stake
	l.insurance = stake
	return nil
}

// Settle credits hand i for the outcome and returns the amount paid
// back: nothing on a loss, the bet on a push, twice the bet on a win,
// and the bet plus three halves of it (rounded down) on a blackjack.
func (l *Ledger) Settle(i int, outcome Outcome) int {
	if i < 0 || i >= len(l.bets) {
		return 0
	}
	bet := l.bets[i]
	payout := 0
	switch outcome {
	case OutcomePush:
		payout = bet
	case OutcomeWin:
		payout = bet * 2
	case OutcomeBlackjack:
		payout = bet + bet*3/2
	}
	l.balance += payout
	l.returned += payout
	return payout
}

// SettleInsurance credits the insurance leg and returns the payout.
// A winning stake pays 2:1, so three times the stake comes back.
func (l *Ledger) SettleInsurance(dealerBlackjack bool) int {
	payout := 0
	if dealerBlackjack {
		payout = l.insurance * 3
	}
	l.balance += payout
	l.returned += payout
	return payout
}

// RefundAll returns every escrowed wager to the bankroll and clears the
// round's bets.
func (l *Ledger) RefundAll() {
	for _, bet := range l.bets {
		l.balance += bet
		l.staked -= bet
	}
	l.balance += l.insurance
	l.staked -= l.insurance
	l.bets = nil
	l.insurance = 0
}

// Reset clears the per round state without touching the bankroll.
func (l *Ledger) Reset() {
	l.bets = nil
	l.insurance = 0
	l.staked = 0
	l.returned = 0
}

// Net returns chips returned minus chips staked for the round so far.
func (l *Ledger) Net() int {
	return l.returned - l.staked
}
