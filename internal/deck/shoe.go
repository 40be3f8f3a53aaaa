package deck

import (
	"errors"
	"fmt"

	rand "math/rand/v2"
)

// DeckSize is the number of cards in a single standard deck.
const DeckSize = 52

var (
	// ErrEmpty is returned when dealing or peeking at an empty shoe.
	ErrEmpty = errors.New("shoe is empty")

	// ErrNotBuilt is returned when resetting a shoe that was never built.
	ErrNotBuilt = errors.New("shoe has not been built")

	// ErrDeckCount is returned when building with fewer than one deck.
	ErrDeckCount = errors.New("deck count must be at least 1")
)

// Shoe holds the cards of one or more standard decks. Cards are dealt
// from the end of the sequence, so index len-1 is the top of the shoe.
type Shoe struct {
	cards     []Card
	built     []Card
	deckCount int
	rng       *rand.Rand
}

// NewShoe creates an empty shoe that shuffles with the provided RNG.
// The RNG is required to make randomness explicit and testing deterministic.
func NewShoe(rng *rand.Rand) *Shoe {
	if rng == nil {
		panic("deck: rng is required")
	}
	return &Shoe{rng: rng}
}

// Build replaces the shoe contents with deckCount standard 52-card sets
// in canonical order (suits ascending, ranks ascending within each suit).
// The built order is retained so Reset can restore it later.
func (s *Shoe) Build(deckCount int) error {
	if deckCount < 1 {
		return fmt.Errorf("%w: got %d", ErrDeckCount, deckCount)
	}

	s.built = make([]Card, 0, deckCount*DeckSize)
	for d := 0; d < deckCount; d++ {
		for suit := Spades; suit <= Clubs; suit++ {
			for rank := Two; rank <= Ace; rank++ {
				s.built = append(s.built, NewCard(suit, rank))
			}
		}
	}

	s.deckCount = deckCount
	s.cards = make([]Card, len(s.built))
	copy(s.cards, s.built)
	return nil
}

// NewStackedShoe creates a shoe that deals the given cards in order.
// It never shuffles, so no RNG is required. Intended for scripted
// deals in tests.
func NewStackedShoe(cards ...Card) *Shoe {
	stacked := make([]Card, len(cards))
	for i, c := range cards {
		stacked[len(cards)-1-i] = c
	}
	built := make([]Card, len(stacked))
	copy(built, stacked)
	return &Shoe{cards: stacked, built: built}
}

// Shuffle randomizes the order of the remaining cards using Fisher-Yates.
// Shuffling changes only the order, never the composition.
func (s *Shoe) Shuffle() {
	for i := len(s.cards) - 1; i > 0; i-- {
		j := s.rng.IntN(i + 1)
		s.cards[i], s.cards[j] = s.cards[j], s.cards[i]
	}
}

// Deal removes and returns the top card of the shoe. The returned card
// is a value copy independent of the shoe's internal storage.
func (s *Shoe) Deal() (Card, error) {
	if len(s.cards) == 0 {
		return Card{}, ErrEmpty
	}
	card := s.cards[len(s.cards)-1]
	s.cards = s.cards[:len(s.cards)-1]
	return card, nil
}

// Peek returns the top card without removing it.
func (s *Shoe) Peek() (Card, error) {
	if len(s.cards) == 0 {
		return Card{}, ErrEmpty
	}
	return s.cards[len(s.cards)-1], nil
}

// Reset restores the exact set and order produced by the most recent
// Build, discarding any shuffles and deals since. It does not reshuffle.
func (s *Shoe) Reset() error {
	if s.built == nil {
		return ErrNotBuilt
	}
	s.cards = make([]Card, len(s.built))
	copy(s.cards, s.built)
	return nil
}

// Count returns the number of cards remaining in the shoe.
func (s *Shoe) Count() int {
	return len(s.cards)
}

// IsEmpty returns true if no cards remain.
func (s *Shoe) IsEmpty() bool {
	return len(s.cards) == 0
}

// DeckCount returns the number of decks from the most recent Build,
// or 0 if the shoe was never built.
func (s *Shoe) DeckCount() int {
	return s.deckCount
}
