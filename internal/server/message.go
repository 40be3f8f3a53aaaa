package server

import (
	"encoding/json"
	"time"

	"github.com/lox/blackjack/internal/game"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
	RequestID string          `json:"requestId,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data interface{}) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}

// Client → Server Messages

type HelloData struct {
	PlayerName string `json:"playerName"`
	Token      string `json:"token,omitempty"`
	// SessionID resumes the bankroll of a stored session.
	SessionID string `json:"sessionId,omitempty"`
}

type ActionData struct {
	Action string `json:"action"`
	Hand   int    `json:"hand,omitempty"`
	Amount int    `json:"amount,omitempty"`
}

// Server → Client Messages

type TableRules struct {
	Decks    int `json:"decks"`
	MinBet   int `json:"minBet"`
	MaxBet   int `json:"maxBet"`
	MaxHands int `json:"maxHands"`
}

type WelcomeData struct {
	SessionID  string     `json:"sessionId"`
	PlayerID   string     `json:"playerId"`
	PlayerName string     `json:"playerName"`
	Resumed    bool       `json:"resumed,omitempty"`
	Rules      TableRules `json:"rules"`
}

type StateData struct {
	State game.Snapshot `json:"state"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Event frames. Each carries the typed fields of the engine event it
// mirrors plus a preformatted display line so thin clients can render
// a transcript without reimplementing the formatter.

type RoundStartedData struct {
	RoundID string `json:"roundId"`
	Round   int    `json:"round"`
	Balance int    `json:"balance"`
	Text    string `json:"text,omitempty"`
}

type BetPlacedData struct {
	Hand    int    `json:"hand"`
	Amount  int    `json:"amount"`
	Balance int    `json:"balance"`
	Text    string `json:"text,omitempty"`
}

type CardDealtData struct {
	Hand      int            `json:"hand"` // -1 for the dealer
	Dealer    bool           `json:"dealer,omitempty"`
	Concealed bool           `json:"concealed,omitempty"`
	Card      *game.CardView `json:"card,omitempty"` // nil while concealed
	Text      string         `json:"text,omitempty"`
}

type InsuranceOfferedData struct {
	UpCard   game.CardView `json:"upCard"`
	MaxStake int           `json:"maxStake"`
	Text     string        `json:"text,omitempty"`
}

type InsuranceResolvedData struct {
	Stake  int    `json:"stake"`
	Won    bool   `json:"won"`
	Payout int    `json:"payout"`
	Text   string `json:"text,omitempty"`
}

type HandSplitData struct {
	Hand    int    `json:"hand"`
	NewHand int    `json:"newHand"`
	Bet     int    `json:"bet"`
	Text    string `json:"text,omitempty"`
}

type HandDoubledData struct {
	Hand int    `json:"hand"`
	Bet  int    `json:"bet"`
	Text string `json:"text,omitempty"`
}

type HandStoodData struct {
	Hand  int    `json:"hand"`
	Value int    `json:"value"`
	Text  string `json:"text,omitempty"`
}

type HandBustedData struct {
	Hand  int    `json:"hand"`
	Value int    `json:"value"`
	Text  string `json:"text,omitempty"`
}

type DealerRevealedData struct {
	HoleCard game.CardView `json:"holeCard"`
	Value    int           `json:"value"`
	Natural  bool          `json:"natural,omitempty"`
	Text     string        `json:"text,omitempty"`
}

type HandSettledData struct {
	Hand    int    `json:"hand"`
	Outcome string `json:"outcome"`
	Bet     int    `json:"bet"`
	Payout  int    `json:"payout"`
	Balance int    `json:"balance"`
	Text    string `json:"text,omitempty"`
}

type RoundSettledData struct {
	RoundID  string   `json:"roundId"`
	Round    int      `json:"round"`
	Net      int      `json:"net"`
	Balance  int      `json:"balance"`
	Outcomes []string `json:"outcomes"`
	Text     string   `json:"text,omitempty"`
}

type GameOverData struct {
	Balance int    `json:"balance"`
	MinBet  int    `json:"minBet"`
	Text    string `json:"text,omitempty"`
}

var wireFormatter = game.NewEventFormatter()

// EventMessage converts an engine event into its wire frame. The
// second return is false for events that have no wire form.
func EventMessage(event game.GameEvent) (*Message, bool) {
	text := wireFormatter.FormatEvent(event)

	switch e := event.(type) {
	case game.RoundStartedEvent:
		return eventMessage(MessageTypeRoundStarted, RoundStartedData{
			RoundID: e.RoundID,
			Round:   e.Round,
			Balance: e.Balance,
			Text:    text,
		})

	case game.BetPlacedEvent:
		return eventMessage(MessageTypeBetPlaced, BetPlacedData{
			Hand:    e.HandIndex,
			Amount:  e.Amount,
			Balance: e.Balance,
			Text:    text,
		})

	case game.CardDealtEvent:
		data := CardDealtData{
			Hand:      e.HandIndex,
			Dealer:    e.Dealer,
			Concealed: e.Concealed,
			Text:      text,
		}
		if !e.Concealed {
			card := game.NewCardView(e.Card)
			data.Card = &card
		}
		return eventMessage(MessageTypeCardDealt, data)

	case game.InsuranceOfferedEvent:
		return eventMessage(MessageTypeInsuranceOffered, InsuranceOfferedData{
			UpCard:   game.NewCardView(e.UpCard),
			MaxStake: e.MaxStake,
			Text:     text,
		})

	case game.InsuranceResolvedEvent:
		return eventMessage(MessageTypeInsuranceResolved, InsuranceResolvedData{
			Stake:  e.Stake,
			Won:    e.Won,
			Payout: e.Payout,
			Text:   text,
		})

	case game.HandSplitEvent:
		return eventMessage(MessageTypeHandSplit, HandSplitData{
			Hand:    e.HandIndex,
			NewHand: e.NewHandIndex,
			Bet:     e.Bet,
			Text:    text,
		})

	case game.HandDoubledEvent:
		return eventMessage(MessageTypeHandDoubled, HandDoubledData{
			Hand: e.HandIndex,
			Bet:  e.Bet,
			Text: text,
		})

	case game.HandStoodEvent:
		return eventMessage(MessageTypeHandStood, HandStoodData{
			Hand:  e.HandIndex,
			Value: e.Value,
			Text:  text,
		})

	case game.HandBustedEvent:
		return eventMessage(MessageTypeHandBusted, HandBustedData{
			Hand:  e.HandIndex,
			Value: e.Value,
			Text:  text,
		})

	case game.DealerRevealedEvent:
		return eventMessage(MessageTypeDealerRevealed, DealerRevealedData{
			HoleCard: game.NewCardView(e.HoleCard),
			Value:    e.Value,
			Natural:  e.Natural,
			Text:     text,
		})

	case game.HandSettledEvent:
		return eventMessage(MessageTypeHandSettled, HandSettledData{
			Hand:    e.HandIndex,
			Outcome: e.Outcome.String(),
			Bet:     e.Bet,
			Payout:  e.Payout,
			Balance: e.Balance,
			Text:    text,
		})

	case game.RoundSettledEvent:
		outcomes := make([]string, len(e.Outcomes))
		for i, o := range e.Outcomes {
			outcomes[i] = o.String()
		}
		return eventMessage(MessageTypeRoundSettled, RoundSettledData{
			RoundID:  e.RoundID,
			Round:    e.Round,
			Net:      e.Net,
			Balance:  e.Balance,
			Outcomes: outcomes,
			Text:     text,
		})

	case game.GameOverEvent:
		return eventMessage(MessageTypeGameOver, GameOverData{
			Balance: e.Balance,
			MinBet:  e.MinBet,
			Text:    text,
		})
	}

	// Phase changes and anything else stay engine-internal; the state
	// frame carries the phase.
	return nil, false
}

func eventMessage(messageType MessageType, data interface{}) (*Message, bool) {
	msg, err := NewMessage(messageType, data)
	if err != nil {
		return nil, false
	}
	return msg, true
}
