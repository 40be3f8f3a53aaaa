package game

// ActionType identifies a table operation a caller can request.
type ActionType string

const (
	ActionNewRound    ActionType = "new_round"
	ActionBet         ActionType = "bet"
	ActionDeal        ActionType = "deal"
	ActionHit         ActionType = "hit"
	ActionStand       ActionType = "stand"
	ActionDouble      ActionType = "double"
	ActionSplit       ActionType = "split"
	ActionInsurance   ActionType = "insurance"
	ActionNoInsurance ActionType = "no_insurance"
	ActionPlayDealer  ActionType = "play_dealer"
	ActionResolve     ActionType = "resolve"
)

func (a ActionType) String() string {
	return string(a)
}

// ValidAction describes an action that is legal right now, with amount
// bounds for the ones that take a wager.
type ValidAction struct {
	Action    ActionType `json:"action"`
	MinAmount int        `json:"minAmount,omitempty"`
	MaxAmount int        `json:"maxAmount,omitempty"`
}

// ValidActions returns the operations that are legal in the current
// phase. House turns (play_dealer, resolve) are included so that
// callers driving the engine manually can discover them.
func (g *Game) ValidActions() []ValidAction {
	if g.ledger == nil {
		return nil
	}
	var actions []ValidAction
	switch g.phase {
	case PhaseBetting:
		actions = append(actions, ValidAction{Action: ActionBet, MinAmount: g.cfg.MinBet, MaxAmount: g.cfg.MaxBet})
		if g.ledger.HandCount() > 0 {
			actions = append(actions,
				ValidAction{Action: ActionDeal},
				ValidAction{Action: ActionNewRound},
			)
		}
	case PhaseInsuranceCheck:
		if stake := g.ledger.Bet(0) / 2; stake <= g.ledger.Balance() {
			actions = append(actions, ValidAction{Action: ActionInsurance, MinAmount: stake, MaxAmount: stake})
		}
		actions = append(actions, ValidAction{Action: ActionNoInsurance})
	case PhasePlayerTurn:
		h := g.hands[g.current]
		actions = append(actions,
			ValidAction{Action: ActionHit},
			ValidAction{Action: ActionStand},
		)
		if len(h.Cards) == 2 && g.ledger.Bet(g.current) <= g.ledger.Balance() {
			actions = append(actions, ValidAction{Action: ActionDouble})
		}
		if g.canSplit(g.current) && g.ledger.Bet(g.current) <= g.ledger.Balance() {
			actions = append(actions, ValidAction{Action: ActionSplit})
		}
	case PhaseDealerTurn:
		actions = append(actions, ValidAction{Action: ActionPlayDealer})
	case PhaseResolution:
		if g.settled {
			actions = append(actions, ValidAction{Action: ActionNewRound})
		} else {
			actions = append(actions, ValidAction{Action: ActionResolve})
		}
	case PhaseGameOver:
	}
	return actions
}
