package deck

import (
	"errors"
	"testing"

	"github.com/lox/blackjack/internal/randutil"
)

func TestNewShoeRequiresRNG(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for nil rng")
		}
	}()
	NewShoe(nil)
}

func TestBuildComposition(t *testing.T) {
	for _, deckCount := range []int{1, 2, 6} {
		s := NewShoe(randutil.New(1))
		if err := s.Build(deckCount); err != nil {
			t.Fatalf("Build(%d) error: %v", deckCount, err)
		}

		if got, want := s.Count(), deckCount*DeckSize; got != want {
			t.Errorf("Count() = %d, want %d", got, want)
		}
		if got := s.DeckCount(); got != deckCount {
			t.Errorf("DeckCount() = %d, want %d", got, deckCount)
		}

		// Every suit/rank combination appears exactly deckCount times
		counts := make(map[Card]int)
		for !s.IsEmpty() {
			c, err := s.Deal()
			if err != nil {
				t.Fatalf("Deal() error: %v", err)
			}
			counts[c]++
		}
		if len(counts) != DeckSize {
			t.Errorf("distinct cards = %d, want %d", len(counts), DeckSize)
		}
		for card, n := range counts {
			if n != deckCount {
				t.Errorf("card %s appears %d times, want %d", card, n, deckCount)
			}
		}
	}
}

func TestBuildRejectsBadDeckCount(t *testing.T) {
	s := NewShoe(randutil.New(1))
	for _, deckCount := range []int{0, -1} {
		if err := s.Build(deckCount); !errors.Is(err, ErrDeckCount) {
			t.Errorf("Build(%d) error = %v, want ErrDeckCount", deckCount, err)
		}
	}
}

func TestShufflePreservesComposition(t *testing.T) {
	s := NewShoe(randutil.New(42))
	if err := s.Build(2); err != nil {
		t.Fatalf("Build error: %v", err)
	}
	s.Shuffle()

	counts := make(map[Card]int)
	for !s.IsEmpty() {
		c, _ := s.Deal()
		counts[c]++
	}
	if len(counts) != DeckSize {
		t.Errorf("distinct cards after shuffle = %d, want %d", len(counts), DeckSize)
	}
	for card, n := range counts {
		if n != 2 {
			t.Errorf("after shuffle card %s appears %d times, want 2", card, n)
		}
	}
}

func TestShuffleIsDeterministicPerSeed(t *testing.T) {
	deal := func(seed int64) []Card {
		s := NewShoe(randutil.New(seed))
		if err := s.Build(1); err != nil {
			t.Fatalf("Build error: %v", err)
		}
		s.Shuffle()
		var cards []Card
		for !s.IsEmpty() {
			c, _ := s.Deal()
			cards = append(cards, c)
		}
		return cards
	}

	a, b := deal(7), deal(7)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same seed diverged at card %d: %s vs %s", i, a[i], b[i])
		}
	}

	c := deal(8)
	same := true
	for i := range a {
		if a[i] != c[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds produced identical order")
	}
}

func TestDealDecrementsAndEmpties(t *testing.T) {
	s := NewShoe(randutil.New(1))
	if err := s.Build(1); err != nil {
		t.Fatalf("Build error: %v", err)
	}

	for i := DeckSize; i > 0; i-- {
		if s.Count() != i {
			t.Fatalf("Count() = %d, want %d", s.Count(), i)
		}
		if _, err := s.Deal(); err != nil {
			t.Fatalf("Deal() error with %d cards left: %v", i, err)
		}
	}

	if !s.IsEmpty() {
		t.Error("shoe should be empty")
	}
	if _, err := s.Deal(); !errors.Is(err, ErrEmpty) {
		t.Errorf("Deal() on empty shoe error = %v, want ErrEmpty", err)
	}
	if _, err := s.Peek(); !errors.Is(err, ErrEmpty) {
		t.Errorf("Peek() on empty shoe error = %v, want ErrEmpty", err)
	}
}

func TestPeekDoesNotRemove(t *testing.T) {
	s := NewShoe(randutil.New(1))
	if err := s.Build(1); err != nil {
		t.Fatalf("Build error: %v", err)
	}

	top, err := s.Peek()
	if err != nil {
		t.Fatalf("Peek() error: %v", err)
	}
	if s.Count() != DeckSize {
		t.Errorf("Peek() changed count to %d", s.Count())
	}
	dealt, err := s.Deal()
	if err != nil {
		t.Fatalf("Deal() error: %v", err)
	}
	if top != dealt {
		t.Errorf("Peek() = %s but Deal() = %s", top, dealt)
	}
}

func TestResetRestoresBuiltOrder(t *testing.T) {
	s := NewShoe(randutil.New(3))
	if err := s.Build(1); err != nil {
		t.Fatalf("Build error: %v", err)
	}

	var original []Card
	for !s.IsEmpty() {
		c, _ := s.Deal()
		original = append(original, c)
	}

	if err := s.Reset(); err != nil {
		t.Fatalf("Reset() error: %v", err)
	}
	s.Shuffle()
	if err := s.Reset(); err != nil {
		t.Fatalf("Reset() after shuffle error: %v", err)
	}

	for i := 0; !s.IsEmpty(); i++ {
		c, _ := s.Deal()
		if c != original[i] {
			t.Fatalf("card %d after Reset = %s, want %s", i, c, original[i])
		}
	}
}

func TestResetUnbuilt(t *testing.T) {
	s := NewShoe(randutil.New(1))
	if err := s.Reset(); !errors.Is(err, ErrNotBuilt) {
		t.Errorf("Reset() error = %v, want ErrNotBuilt", err)
	}
}

func TestNewStackedShoeDealsInOrder(t *testing.T) {
	cards := MustParseCards("As Kh 7d 2c")
	s := NewStackedShoe(cards...)

	if s.Count() != len(cards) {
		t.Fatalf("Count() = %d, want %d", s.Count(), len(cards))
	}
	for i, want := range cards {
		got, err := s.Deal()
		if err != nil {
			t.Fatalf("Deal() %d error: %v", i, err)
		}
		if got != want {
			t.Errorf("Deal() %d = %s, want %s", i, got, want)
		}
	}
}
