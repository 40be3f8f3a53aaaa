package game

import (
	"fmt"
	"strings"

	"github.com/lox/blackjack/internal/deck"
)

// Hand is one blackjack hand: its cards, its wager and its play state.
// A split produces two Hands with FromSplit set on both.
type Hand struct {
	Cards     []deck.Card
	Bet       int
	Standing  bool
	Doubled   bool
	FromSplit bool
}

// NewHand creates an empty hand staking the given bet.
func NewHand(bet int) *Hand {
	return &Hand{Cards: make([]deck.Card, 0, 4), Bet: bet}
}

// Add appends a card to the hand.
func (h *Hand) Add(card deck.Card) {
	h.Cards = append(h.Cards, card)
}

// Value returns the best total for the hand. Aces count as 11 and are
// demoted to 1 one at a time while the total would bust.
func (h *Hand) Value() int {
	value, _ := h.value()
	return value
}

// Soft reports whether an ace is still counted as 11.
func (h *Hand) Soft() bool {
	_, soft := h.value()
	return soft
}

func (h *Hand) value() (int, bool) {
	return value(h.Cards)
}

func value(cards []deck.Card) (int, bool) {
	total := 0
	aces := 0
	for _, c := range cards {
		total += c.Rank.Value()
		if c.Rank == deck.Ace {
			aces++
		}
	}
	for total > 21 && aces > 0 {
		total -= 10
		aces--
	}
	return total, aces > 0
}

// Bust reports whether the hand exceeded 21.
func (h *Hand) Bust() bool {
	return h.Value() > 21
}

// BlackjackCandidate reports a two card 21, however the hand was formed.
func (h *Hand) BlackjackCandidate() bool {
	return len(h.Cards) == 2 && h.Value() == 21
}

// Natural reports a two card 21 on an original hand. A 21 assembled
// after a split pays as a regular win, not as blackjack.
func (h *Hand) Natural() bool {
	return h.BlackjackCandidate() && !h.FromSplit
}

// Evaluation is a point in time summary of a hand.
type Evaluation struct {
	Value   int
	Soft    bool
	Bust    bool
	Natural bool
}

// Evaluate values an arbitrary set of cards. Without a Hand there is no
// split context, so any two card 21 counts as natural.
func Evaluate(cards []deck.Card) Evaluation {
	total, soft := value(cards)
	return Evaluation{
		Value:   total,
		Soft:    soft,
		Bust:    total > 21,
		Natural: len(cards) == 2 && total == 21,
	}
}

// Evaluate returns the hand's current evaluation.
func (h *Hand) Evaluate() Evaluation {
	ev := Evaluate(h.Cards)
	ev.Natural = h.Natural()
	return ev
}

// String renders the hand like "A♠ K♥ (21)".
func (h *Hand) String() string {
	if len(h.Cards) == 0 {
		return "(empty)"
	}
	parts := make([]string, len(h.Cards))
	for i, c := range h.Cards {
		parts[i] = c.String()
	}
	return fmt.Sprintf("%s (%d)", strings.Join(parts, " "), h.Value())
}
