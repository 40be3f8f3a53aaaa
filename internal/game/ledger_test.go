package game

import (
	"errors"
	"testing"
)

func TestLedgerPlaceBet(t *testing.T) {
	t.Parallel()

	l := NewLedger(1000, 10, 500)

	if err := l.PlaceBet(0, 50); err != nil {
		t.Fatalf("PlaceBet error: %v", err)
	}
	if l.Balance() != 950 {
		t.Errorf("Balance() = %d, want 950", l.Balance())
	}
	if l.Bet(0) != 50 {
		t.Errorf("Bet(0) = %d, want 50", l.Bet(0))
	}

	// Re-betting the same hand refunds the old wager first
	if err := l.PlaceBet(0, 100); err != nil {
		t.Fatalf("PlaceBet error: %v", err)
	}
	if l.Balance() != 900 {
		t.Errorf("Balance() after re-bet = %d, want 900", l.Balance())
	}
	if l.Bet(0) != 100 {
		t.Errorf("Bet(0) after re-bet = %d, want 100", l.Bet(0))
	}

	if err := l.PlaceBet(1, 10); err != nil {
		t.Fatalf("PlaceBet hand 1 error: %v", err)
	}
	if l.HandCount() != 2 {
		t.Errorf("HandCount() = %d, want 2", l.HandCount())
	}
}

func TestLedgerPlaceBetValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		hand    int
		amount  int
		wantErr error
	}{
		{"below minimum", 0, 5, ErrInvalidArgument},
		{"above maximum", 0, 600, ErrInvalidArgument},
		{"negative", 0, -10, ErrInvalidArgument},
		{"non contiguous hand", 1, 50, ErrInvalidArgument},
		{"negative hand", -1, 50, ErrInvalidArgument},
		{"beyond balance", 0, 500, ErrInsufficientFunds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLedger(100, 10, 500)
			if err := l.PlaceBet(tt.hand, tt.amount); !errors.Is(err, tt.wantErr) {
				t.Errorf("PlaceBet(%d, %d) error = %v, want %v", tt.hand, tt.amount, err, tt.wantErr)
			}
			if l.Balance() != 100 {
				t.Errorf("failed bet changed balance to %d", l.Balance())
			}
		})
	}
}

func TestLedgerEscrowDouble(t *testing.T) {
	t.Parallel()

	l := NewLedger(100, 10, 500)
	if err := l.PlaceBet(0, 40); err != nil {
		t.Fatalf("PlaceBet error: %v", err)
	}

	if err := l.EscrowDouble(0); err != nil {
		t.Fatalf("EscrowDouble error: %v", err)
	}
	if l.Balance() != 20 {
		t.Errorf("Balance() = %d, want 20", l.Balance())
	}
	if l.Bet(0) != 80 {
		t.Errorf("Bet(0) = %d, want 80", l.Bet(0))
	}

	// 80 escrowed, 20 left: doubling again cannot be covered
	if err := l.EscrowDouble(0); !errors.Is(err, ErrInsufficientFunds) {
		t.Errorf("EscrowDouble error = %v, want ErrInsufficientFunds", err)
	}
	if err := l.EscrowDouble(3); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("EscrowDouble(3) error = %v, want ErrInvalidArgument", err)
	}
}

func TestLedgerEscrowSplit(t *testing.T) {
	t.Parallel()

	l := NewLedger(100, 10, 500)
	if err := l.PlaceBet(0, 20); err != nil {
		t.Fatalf("PlaceBet error: %v", err)
	}
	if err := l.PlaceBet(1, 40); err != nil {
		t.Fatalf("PlaceBet error: %v", err)
	}

	if err := l.EscrowSplit(0); err != nil {
		t.Fatalf("EscrowSplit error: %v", err)
	}
	if l.Balance() != 20 {
		t.Errorf("Balance() = %d, want 20", l.Balance())
	}

	// The split bet lands right after its source hand
	want := []int{20, 20, 40}
	got := l.Bets()
	if len(got) != len(want) {
		t.Fatalf("Bets() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Bets()[%d] = %d, want %d", i, got[i], want[i])
		}
	}

	if err := l.EscrowSplit(2); !errors.Is(err, ErrInsufficientFunds) {
		t.Errorf("EscrowSplit error = %v, want ErrInsufficientFunds", err)
	}
}

func TestLedgerInsurance(t *testing.T) {
	t.Parallel()

	l := NewLedger(100, 10, 500)
	if err := l.PlaceBet(0, 50); err != nil {
		t.Fatalf("PlaceBet error: %v", err)
	}

	if err := l.EscrowInsurance(25); err != nil {
		t.Fatalf("EscrowInsurance error: %v", err)
	}
	if l.Balance() != 25 {
		t.Errorf("Balance() = %d, want 25", l.Balance())
	}
	if l.Insurance() != 25 {
		t.Errorf("Insurance() = %d, want 25", l.Insurance())
	}

	// Winning insurance pays 2:1, so stake comes back tripled
	if payout := l.SettleInsurance(true); payout != 75 {
		t.Errorf("SettleInsurance(true) = %d, want 75", payout)
	}
	if l.Balance() != 100 {
		t.Errorf("Balance() = %d, want 100", l.Balance())
	}
}

func TestLedgerInsuranceValidation(t *testing.T) {
	t.Parallel()

	l := NewLedger(10, 10, 500)
	if err := l.EscrowInsurance(0); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("EscrowInsurance(0) error = %v, want ErrInvalidArgument", err)
	}
	if err := l.EscrowInsurance(25); !errors.Is(err, ErrInsufficientFunds) {
		t.Errorf("EscrowInsurance(25) error = %v, want ErrInsufficientFunds", err)
	}

	l2 := NewLedger(100, 10, 500)
	if err := l2.EscrowInsurance(20); err != nil {
		t.Fatalf("EscrowInsurance error: %v", err)
	}
	if payout := l2.SettleInsurance(false); payout != 0 {
		t.Errorf("SettleInsurance(false) = %d, want 0", payout)
	}
	if l2.Balance() != 80 {
		t.Errorf("Balance() = %d, want 80", l2.Balance())
	}
}

func TestLedgerSettle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		bet     int
		outcome Outcome
		payout  int
	}{
		{"lose returns nothing", 50, OutcomeLose, 0},
		{"push returns the bet", 50, OutcomePush, 50},
		{"win pays even money", 50, OutcomeWin, 100},
		{"blackjack pays three to two", 50, OutcomeBlackjack, 125},
		{"blackjack floors odd bets", 25, OutcomeBlackjack, 62},
		{"blackjack on fifteen", 15, OutcomeBlackjack, 37},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLedger(1000, 10, 500)
			if err := l.PlaceBet(0, tt.bet); err != nil {
				t.Fatalf("PlaceBet error: %v", err)
			}
			if payout := l.Settle(0, tt.outcome); payout != tt.payout {
				t.Errorf("Settle() = %d, want %d", payout, tt.payout)
			}
			if want := 1000 - tt.bet + tt.payout; l.Balance() != want {
				t.Errorf("Balance() = %d, want %d", l.Balance(), want)
			}
			if want := tt.payout - tt.bet; l.Net() != want {
				t.Errorf("Net() = %d, want %d", l.Net(), want)
			}
		})
	}
}

func TestLedgerRefundAll(t *testing.T) {
	t.Parallel()

	l := NewLedger(200, 10, 500)
	if err := l.PlaceBet(0, 50); err != nil {
		t.Fatalf("PlaceBet error: %v", err)
	}
	if err := l.PlaceBet(1, 30); err != nil {
		t.Fatalf("PlaceBet error: %v", err)
	}
	if err := l.EscrowInsurance(10); err != nil {
		t.Fatalf("EscrowInsurance error: %v", err)
	}

	l.RefundAll()
	if l.Balance() != 200 {
		t.Errorf("Balance() = %d, want 200", l.Balance())
	}
	if l.HandCount() != 0 {
		t.Errorf("HandCount() = %d, want 0", l.HandCount())
	}
	if l.Insurance() != 0 {
		t.Errorf("Insurance() = %d, want 0", l.Insurance())
	}
	if l.Net() != 0 {
		t.Errorf("Net() = %d, want 0", l.Net())
	}
}

func TestLedgerReset(t *testing.T) {
	t.Parallel()

	l := NewLedger(100, 10, 500)
	if err := l.PlaceBet(0, 40); err != nil {
		t.Fatalf("PlaceBet error: %v", err)
	}
	l.Settle(0, OutcomeWin)

	l.Reset()
	if l.Balance() != 140 {
		t.Errorf("Reset() changed balance to %d", l.Balance())
	}
	if l.HandCount() != 0 || l.Net() != 0 || l.Insurance() != 0 {
		t.Errorf("Reset() left round state: bets=%d net=%d insurance=%d", l.HandCount(), l.Net(), l.Insurance())
	}
}
