package game

import (
	"sync"
	"time"

	"github.com/lox/blackjack/internal/deck"
)

// EventType represents a game event type with type safety
type EventType string

// EventType constants for game domain events. Every state change the
// engine makes is mirrored by one of these.
const (
	EventTypeRoundStarted      EventType = "round_started"
	EventTypeBetPlaced         EventType = "bet_placed"
	EventTypeCardDealt         EventType = "card_dealt"
	EventTypeInsuranceOffered  EventType = "insurance_offered"
	EventTypeInsuranceResolved EventType = "insurance_resolved"
	EventTypeHandSplit         EventType = "hand_split"
	EventTypeHandDoubled       EventType = "hand_doubled"
	EventTypeHandStood         EventType = "hand_stood"
	EventTypeHandBusted        EventType = "hand_busted"
	EventTypeDealerRevealed    EventType = "dealer_revealed"
	EventTypeHandSettled       EventType = "hand_settled"
	EventTypeRoundSettled      EventType = "round_settled"
	EventTypeGameOver          EventType = "game_over"
	EventTypePhaseChanged      EventType = "phase_changed"
)

// String returns the string representation of the event type
func (et EventType) String() string {
	return string(et)
}

// GameEvent represents any event that occurs during a blackjack round
type GameEvent interface {
	EventType() EventType
	Timestamp() time.Time
}

// RoundStartedEvent is published when a fresh betting round opens
type RoundStartedEvent struct {
	RoundID   string
	Round     int
	Balance   int
	timestamp time.Time
}

func (e RoundStartedEvent) EventType() EventType { return EventTypeRoundStarted }
func (e RoundStartedEvent) Timestamp() time.Time { return e.timestamp }

// NewRoundStartedEvent creates a new round started event
func NewRoundStartedEvent(roundID string, round, balance int) RoundStartedEvent {
	return RoundStartedEvent{
		RoundID:   roundID,
		Round:     round,
		Balance:   balance,
		timestamp: time.Now(),
	}
}

// BetPlacedEvent is published when a wager is escrowed on a hand
type BetPlacedEvent struct {
	HandIndex int
	Amount    int
	Balance   int
	timestamp time.Time
}

func (e BetPlacedEvent) EventType() EventType { return EventTypeBetPlaced }
func (e BetPlacedEvent) Timestamp() time.Time { return e.timestamp }

// NewBetPlacedEvent creates a new bet placed event
func NewBetPlacedEvent(handIndex, amount, balance int) BetPlacedEvent {
	return BetPlacedEvent{
		HandIndex: handIndex,
		Amount:    amount,
		Balance:   balance,
		timestamp: time.Now(),
	}
}

// CardDealtEvent is published for every card that leaves the shoe. The
// dealer's hole card is dealt concealed and carries a zero Card so the
// value cannot leak to relays before the reveal.
type CardDealtEvent struct {
	HandIndex int // -1 for the dealer
	Dealer    bool
	Card      deck.Card
	Concealed bool
	timestamp time.Time
}

func (e CardDealtEvent) EventType() EventType { return EventTypeCardDealt }
func (e CardDealtEvent) Timestamp() time.Time { return e.timestamp }

// NewCardDealtEvent creates a new card dealt event for a player hand
func NewCardDealtEvent(handIndex int, card deck.Card) CardDealtEvent {
	return CardDealtEvent{
		HandIndex: handIndex,
		Card:      card,
		timestamp: time.Now(),
	}
}

// NewDealerCardEvent creates a new card dealt event for the dealer
func NewDealerCardEvent(card deck.Card, concealed bool) CardDealtEvent {
	e := CardDealtEvent{
		HandIndex: -1,
		Dealer:    true,
		Concealed: concealed,
		timestamp: time.Now(),
	}
	if !concealed {
		e.Card = card
	}
	return e
}

// InsuranceOfferedEvent is published when the dealer shows an ace
type InsuranceOfferedEvent struct {
	UpCard    deck.Card
	MaxStake  int
	timestamp time.Time
}

func (e InsuranceOfferedEvent) EventType() EventType { return EventTypeInsuranceOffered }
func (e InsuranceOfferedEvent) Timestamp() time.Time { return e.timestamp }

// NewInsuranceOfferedEvent creates a new insurance offered event
func NewInsuranceOfferedEvent(upCard deck.Card, maxStake int) InsuranceOfferedEvent {
	return InsuranceOfferedEvent{
		UpCard:    upCard,
		MaxStake:  maxStake,
		timestamp: time.Now(),
	}
}

// InsuranceResolvedEvent is published when a taken insurance bet is
// paid or forfeited
type InsuranceResolvedEvent struct {
	Stake     int
	Won       bool
	Payout    int
	timestamp time.Time
}

func (e InsuranceResolvedEvent) EventType() EventType { return EventTypeInsuranceResolved }
func (e InsuranceResolvedEvent) Timestamp() time.Time { return e.timestamp }

// NewInsuranceResolvedEvent creates a new insurance resolved event
func NewInsuranceResolvedEvent(stake int, won bool, payout int) InsuranceResolvedEvent {
	return InsuranceResolvedEvent{
		Stake:     stake,
		Won:       won,
		Payout:    payout,
		timestamp: time.Now(),
	}
}

// HandSplitEvent is published when a pair is split into two hands
type HandSplitEvent struct {
	HandIndex    int
	NewHandIndex int
	Bet          int
	timestamp    time.Time
}

func (e HandSplitEvent) EventType() EventType { return EventTypeHandSplit }
func (e HandSplitEvent) Timestamp() time.Time { return e.timestamp }

// NewHandSplitEvent creates a new hand split event
func NewHandSplitEvent(handIndex, newHandIndex, bet int) HandSplitEvent {
	return HandSplitEvent{
		HandIndex:    handIndex,
		NewHandIndex: newHandIndex,
		Bet:          bet,
		timestamp:    time.Now(),
	}
}

// HandDoubledEvent is published when a hand doubles down
type HandDoubledEvent struct {
	HandIndex int
	Bet       int // total wager after doubling
	timestamp time.Time
}

func (e HandDoubledEvent) EventType() EventType { return EventTypeHandDoubled }
func (e HandDoubledEvent) Timestamp() time.Time { return e.timestamp }

// NewHandDoubledEvent creates a new hand doubled event
func NewHandDoubledEvent(handIndex, bet int) HandDoubledEvent {
	return HandDoubledEvent{
		HandIndex: handIndex,
		Bet:       bet,
		timestamp: time.Now(),
	}
}

// HandStoodEvent is published when a hand stands, by choice or because
// it reached 21
type HandStoodEvent struct {
	HandIndex int
	Value     int
	timestamp time.Time
}

func (e HandStoodEvent) EventType() EventType { return EventTypeHandStood }
func (e HandStoodEvent) Timestamp() time.Time { return e.timestamp }

// NewHandStoodEvent creates a new hand stood event
func NewHandStoodEvent(handIndex, value int) HandStoodEvent {
	return HandStoodEvent{
		HandIndex: handIndex,
		Value:     value,
		timestamp: time.Now(),
	}
}

// HandBustedEvent is published when a hand exceeds 21
type HandBustedEvent struct {
	HandIndex int
	Value     int
	timestamp time.Time
}

func (e HandBustedEvent) EventType() EventType { return EventTypeHandBusted }
func (e HandBustedEvent) Timestamp() time.Time { return e.timestamp }

// NewHandBustedEvent creates a new hand busted event
func NewHandBustedEvent(handIndex, value int) HandBustedEvent {
	return HandBustedEvent{
		HandIndex: handIndex,
		Value:     value,
		timestamp: time.Now(),
	}
}

// DealerRevealedEvent is published when the hole card is turned over
type DealerRevealedEvent struct {
	HoleCard  deck.Card
	Value     int
	Natural   bool
	timestamp time.Time
}

func (e DealerRevealedEvent) EventType() EventType { return EventTypeDealerRevealed }
func (e DealerRevealedEvent) Timestamp() time.Time { return e.timestamp }

// NewDealerRevealedEvent creates a new dealer revealed event
func NewDealerRevealedEvent(holeCard deck.Card, value int, natural bool) DealerRevealedEvent {
	return DealerRevealedEvent{
		HoleCard:  holeCard,
		Value:     value,
		Natural:   natural,
		timestamp: time.Now(),
	}
}

// HandSettledEvent is published once per hand at resolution
type HandSettledEvent struct {
	HandIndex int
	Outcome   Outcome
	Bet       int
	Payout    int
	Balance   int
	timestamp time.Time
}

func (e HandSettledEvent) EventType() EventType { return EventTypeHandSettled }
func (e HandSettledEvent) Timestamp() time.Time { return e.timestamp }

// NewHandSettledEvent creates a new hand settled event
func NewHandSettledEvent(handIndex int, outcome Outcome, bet, payout, balance int) HandSettledEvent {
	return HandSettledEvent{
		HandIndex: handIndex,
		Outcome:   outcome,
		Bet:       bet,
		Payout:    payout,
		Balance:   balance,
		timestamp: time.Now(),
	}
}

// RoundSettledEvent is published after every hand and the insurance
// leg have been settled
type RoundSettledEvent struct {
	RoundID   string
	Round     int
	Net       int
	Balance   int
	Outcomes  []Outcome
	timestamp time.Time
}

func (e RoundSettledEvent) EventType() EventType { return EventTypeRoundSettled }
func (e RoundSettledEvent) Timestamp() time.Time { return e.timestamp }

// NewRoundSettledEvent creates a new round settled event
func NewRoundSettledEvent(roundID string, round, net, balance int, outcomes []Outcome) RoundSettledEvent {
	copied := make([]Outcome, len(outcomes))
	copy(copied, outcomes)
	return RoundSettledEvent{
		RoundID:   roundID,
		Round:     round,
		Net:       net,
		Balance:   balance,
		Outcomes:  copied,
		timestamp: time.Now(),
	}
}

// GameOverEvent is published when the bankroll can no longer cover the
// table minimum
type GameOverEvent struct {
	Balance   int
	MinBet    int
	timestamp time.Time
}

func (e GameOverEvent) EventType() EventType { return EventTypeGameOver }
func (e GameOverEvent) Timestamp() time.Time { return e.timestamp }

// NewGameOverEvent creates a new game over event
func NewGameOverEvent(balance, minBet int) GameOverEvent {
	return GameOverEvent{
		Balance:   balance,
		MinBet:    minBet,
		timestamp: time.Now(),
	}
}

// PhaseChangedEvent is published on every phase transition
type PhaseChangedEvent struct {
	From      Phase
	To        Phase
	timestamp time.Time
}

func (e PhaseChangedEvent) EventType() EventType { return EventTypePhaseChanged }
func (e PhaseChangedEvent) Timestamp() time.Time { return e.timestamp }

// NewPhaseChangedEvent creates a new phase changed event
func NewPhaseChangedEvent(from, to Phase) PhaseChangedEvent {
	return PhaseChangedEvent{
		From:      from,
		To:        to,
		timestamp: time.Now(),
	}
}

// EventSubscriber can subscribe to game events
type EventSubscriber interface {
	OnEvent(event GameEvent)
}

// EventBus manages event publishing and subscription
type EventBus interface {
	Subscribe(subscriber EventSubscriber)
	Unsubscribe(subscriber EventSubscriber)
	Publish(event GameEvent)
}

// SimpleEventBus is a basic in-memory event bus implementation.
// Delivery is synchronous, in subscription order.
type SimpleEventBus struct {
	mu          sync.RWMutex
	subscribers []EventSubscriber
}

// NewEventBus creates a new event bus
func NewEventBus() EventBus {
	return &SimpleEventBus{
		subscribers: make([]EventSubscriber, 0),
	}
}

// Subscribe adds a subscriber to receive events
func (bus *SimpleEventBus) Subscribe(subscriber EventSubscriber) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	bus.subscribers = append(bus.subscribers, subscriber)
}

// Unsubscribe removes a subscriber from receiving events
func (bus *SimpleEventBus) Unsubscribe(subscriber EventSubscriber) {
	bus.mu.Lock()
	defer bus.mu.Unlock()
	for i, sub := range bus.subscribers {
		if sub == subscriber {
			bus.subscribers = append(bus.subscribers[:i], bus.subscribers[i+1:]...)
			break
		}
	}
}

// Publish sends an event to all subscribers
func (bus *SimpleEventBus) Publish(event GameEvent) {
	bus.mu.RLock()
	subscribers := make([]EventSubscriber, len(bus.subscribers))
	copy(subscribers, bus.subscribers)
	bus.mu.RUnlock()
	for _, subscriber := range subscribers {
		subscriber.OnEvent(event)
	}
}
