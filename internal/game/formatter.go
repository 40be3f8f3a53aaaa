package game

import "fmt"

// EventFormatter renders game events as one line log entries for the
// TUI transcript and server logs.
type EventFormatter struct{}

// NewEventFormatter creates a new event formatter
func NewEventFormatter() *EventFormatter {
	return &EventFormatter{}
}

// FormatEvent renders any game event. Events with no presentation,
// such as phase changes, yield an empty string.
func (f *EventFormatter) FormatEvent(event GameEvent) string {
	switch e := event.(type) {
	case RoundStartedEvent:
		return fmt.Sprintf("--- round %d --- balance $%d", e.Round, e.Balance)
	case BetPlacedEvent:
		return fmt.Sprintf("bet $%d on hand %d", e.Amount, e.HandIndex+1)
	case CardDealtEvent:
		if e.Dealer {
			if e.Concealed {
				return "dealer takes the hole card"
			}
			return fmt.Sprintf("dealer draws %s", e.Card)
		}
		return fmt.Sprintf("hand %d draws %s", e.HandIndex+1, e.Card)
	case InsuranceOfferedEvent:
		return fmt.Sprintf("dealer shows %s, insurance open for $%d", e.UpCard, e.MaxStake)
	case InsuranceResolvedEvent:
		if e.Won {
			return fmt.Sprintf("insurance pays $%d", e.Payout)
		}
		return fmt.Sprintf("insurance forfeited ($%d)", e.Stake)
	case HandSplitEvent:
		return fmt.Sprintf("hand %d split for another $%d", e.HandIndex+1, e.Bet)
	case HandDoubledEvent:
		return fmt.Sprintf("hand %d doubles to $%d", e.HandIndex+1, e.Bet)
	case HandStoodEvent:
		return fmt.Sprintf("hand %d stands on %d", e.HandIndex+1, e.Value)
	case HandBustedEvent:
		return fmt.Sprintf("hand %d busts with %d", e.HandIndex+1, e.Value)
	case DealerRevealedEvent:
		if e.Natural {
			return fmt.Sprintf("dealer reveals %s: blackjack", e.HoleCard)
		}
		return fmt.Sprintf("dealer reveals %s (%d)", e.HoleCard, e.Value)
	case HandSettledEvent:
		switch e.Outcome {
		case OutcomeBlackjack:
			return fmt.Sprintf("hand %d blackjack, pays $%d", e.HandIndex+1, e.Payout)
		case OutcomeWin:
			return fmt.Sprintf("hand %d wins $%d", e.HandIndex+1, e.Payout-e.Bet)
		case OutcomePush:
			return fmt.Sprintf("hand %d pushes", e.HandIndex+1)
		default:
			return fmt.Sprintf("hand %d loses $%d", e.HandIndex+1, e.Bet)
		}
	case RoundSettledEvent:
		return fmt.Sprintf("round over: net %+d, balance $%d", e.Net, e.Balance)
	case GameOverEvent:
		return fmt.Sprintf("game over: $%d left, table minimum is $%d", e.Balance, e.MinBet)
	case PhaseChangedEvent:
		return ""
	}
	return ""
}
