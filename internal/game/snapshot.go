package game

import "github.com/lox/blackjack/internal/deck"

// CardView is the serialisable form of a card.
type CardView struct {
	ID      string `json:"id"`
	Suit    string `json:"suit"`
	Rank    string `json:"rank"`
	Display string `json:"display"`
	Value   int    `json:"value"`
}

// NewCardView creates a card view from a card
func NewCardView(c deck.Card) CardView {
	return CardView{
		ID:      c.ID(),
		Suit:    c.Suit.Name(),
		Rank:    c.Rank.Name(),
		Display: c.String(),
		Value:   c.Value(),
	}
}

// HandView is the serialisable form of a player hand.
type HandView struct {
	Cards     []CardView `json:"cards"`
	Value     int        `json:"value"`
	Soft      bool       `json:"soft,omitempty"`
	Bust      bool       `json:"bust,omitempty"`
	Blackjack bool       `json:"blackjack,omitempty"`
	Standing  bool       `json:"standing,omitempty"`
	Doubled   bool       `json:"doubled,omitempty"`
	FromSplit bool       `json:"fromSplit,omitempty"`
	Bet       int        `json:"bet"`
	Outcome   string     `json:"outcome,omitempty"`
}

// DealerView is the serialisable form of the dealer's hand. Until the
// hole card is revealed it contains only the up card, so snapshots can
// be relayed without leaking the concealed card.
type DealerView struct {
	Cards        []CardView `json:"cards"`
	HoleRevealed bool       `json:"holeRevealed"`
	Value        int        `json:"value"`
	Soft         bool       `json:"soft,omitempty"`
	Bust         bool       `json:"bust,omitempty"`
	Blackjack    bool       `json:"blackjack,omitempty"`
}

// Snapshot is a copy of the observable table state. It contains no
// references into the engine and is safe to serialise or retain.
type Snapshot struct {
	RoundID          string        `json:"roundId"`
	Round            int           `json:"round"`
	Phase            Phase         `json:"phase"`
	Balance          int           `json:"balance"`
	Bets             []int         `json:"bets,omitempty"`
	Hands            []HandView    `json:"hands,omitempty"`
	Dealer           DealerView    `json:"dealer"`
	CurrentHand      int           `json:"currentHand"`
	InsuranceOffered bool          `json:"insuranceOffered,omitempty"`
	InsuranceTaken   bool          `json:"insuranceTaken,omitempty"`
	InsuranceBet     int           `json:"insuranceBet,omitempty"`
	Settled          bool          `json:"settled,omitempty"`
	Net              int           `json:"net"`
	ShoeRemaining    int           `json:"shoeRemaining"`
	Messages         []string      `json:"messages,omitempty"`
	Actions          []ValidAction `json:"actions,omitempty"`
}

// State returns a snapshot of the current table.
func (g *Game) State() Snapshot {
	s := Snapshot{
		RoundID:          g.roundID,
		Round:            g.round,
		Phase:            g.phase,
		CurrentHand:      g.current,
		InsuranceOffered: g.insuranceOffered,
		InsuranceTaken:   g.insuranceTaken,
		Settled:          g.settled,
		Actions:          g.ValidActions(),
	}
	if g.ledger != nil {
		s.Balance = g.ledger.Balance()
		s.Bets = g.ledger.Bets()
		s.InsuranceBet = g.ledger.Insurance()
		if g.settled {
			s.Net = g.ledger.Net()
		}
	}
	if g.shoe != nil {
		s.ShoeRemaining = g.shoe.Count()
	}
	if len(g.messages) > 0 {
		s.Messages = make([]string, len(g.messages))
		copy(s.Messages, g.messages)
	}

	s.Hands = make([]HandView, len(g.hands))
	for i, h := range g.hands {
		s.Hands[i] = g.handView(i, h)
	}
	s.Dealer = g.dealerView()
	return s
}

func (g *Game) handView(i int, h *Hand) HandView {
	eval := h.Evaluate()
	view := HandView{
		Cards:     cardViews(h.Cards),
		Value:     eval.Value,
		Soft:      eval.Soft,
		Bust:      eval.Bust,
		Blackjack: eval.Natural,
		Standing:  h.Standing,
		Doubled:   h.Doubled,
		FromSplit: h.FromSplit,
		Bet:       h.Bet,
	}
	if g.settled && i < len(g.outcomes) {
		view.Outcome = g.outcomes[i].String()
	}
	return view
}

func (g *Game) dealerView() DealerView {
	if g.dealer == nil || len(g.dealer.Cards) == 0 {
		return DealerView{HoleRevealed: g.holeRevealed}
	}
	shown := g.dealer.Cards
	if !g.holeRevealed {
		// Only the up card leaves the engine before the reveal.
		shown = g.dealer.Cards[:1]
	}
	visible := Hand{Cards: shown}
	eval := visible.Evaluate()
	return DealerView{
		Cards:        cardViews(shown),
		HoleRevealed: g.holeRevealed,
		Value:        eval.Value,
		Soft:         eval.Soft,
		Bust:         eval.Bust,
		Blackjack:    g.holeRevealed && g.dealer.Natural(),
	}
}

func cardViews(cards []deck.Card) []CardView {
	views := make([]CardView, len(cards))
	for i, c := range cards {
		views[i] = NewCardView(c)
	}
	return views
}
