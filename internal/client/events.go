package client

import (
	"encoding/json"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/game"
	"github.com/lox/blackjack/internal/server"
)

// Event is a game event frame pushed by the server. Text is the
// server's preformatted display line; Game carries the reconstructed
// engine event for consumers that want the typed fields. Card values
// on reconstructed events are zero because the wire carries rendered
// card views, not shoe cards; render from Text or from the snapshot.
type Event struct {
	Type server.MessageType
	Text string
	Game game.GameEvent
}

// decodeEvent converts a pushed frame back into an Event. The second
// return is false for frames that are not game events.
func decodeEvent(msg *server.Message) (Event, bool) {
	switch msg.Type {
	case server.MessageTypeRoundStarted:
		var data server.RoundStartedData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return Event{}, false
		}
		return Event{
			Type: msg.Type,
			Text: data.Text,
			Game: game.NewRoundStartedEvent(data.RoundID, data.Round, data.Balance),
		}, true

	case server.MessageTypeBetPlaced:
		var data server.BetPlacedData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return Event{}, false
		}
		return Event{
			Type: msg.Type,
			Text: data.Text,
			Game: game.NewBetPlacedEvent(data.Hand, data.Amount, data.Balance),
		}, true

	case server.MessageTypeCardDealt:
		var data server.CardDealtData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return Event{}, false
		}
		var event game.CardDealtEvent
		if data.Dealer {
			event = game.NewDealerCardEvent(deck.Card{}, data.Concealed)
		} else {
			event = game.NewCardDealtEvent(data.Hand, deck.Card{})
		}
		return Event{Type: msg.Type, Text: data.Text, Game: event}, true

	case server.MessageTypeInsuranceOffered:
		var data server.InsuranceOfferedData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return Event{}, false
		}
		return Event{
			Type: msg.Type,
			Text: data.Text,
			Game: game.NewInsuranceOfferedEvent(deck.Card{}, data.MaxStake),
		}, true

	case server.MessageTypeInsuranceResolved:
		var data server.InsuranceResolvedData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return Event{}, false
		}
		return Event{
			Type: msg.Type,
			Text: data.Text,
			Game: game.NewInsuranceResolvedEvent(data.Stake, data.Won, data.Payout),
		}, true

	case server.MessageTypeHandSplit:
		var data server.HandSplitData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return Event{}, false
		}
		return Event{
			Type: msg.Type,
			Text: data.Text,
			Game: game.NewHandSplitEvent(data.Hand, data.NewHand, data.Bet),
		}, true

	case server.MessageTypeHandDoubled:
		var data server.HandDoubledData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return Event{}, false
		}
		return Event{
			Type: msg.Type,
			Text: data.Text,
			Game: game.NewHandDoubledEvent(data.Hand, data.Bet),
		}, true

	case server.MessageTypeHandStood:
		var data server.HandStoodData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return Event{}, false
		}
		return Event{
			Type: msg.Type,
			Text: data.Text,
			Game: game.NewHandStoodEvent(data.Hand, data.Value),
		}, true

	case server.MessageTypeHandBusted:
		var data server.HandBustedData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return Event{}, false
		}
		return Event{
			Type: msg.Type,
			Text: data.Text,
			Game: game.NewHandBustedEvent(data.Hand, data.Value),
		}, true

	case server.MessageTypeDealerRevealed:
		var data server.DealerRevealedData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return Event{}, false
		}
		return Event{
			Type: msg.Type,
			Text: data.Text,
			Game: game.NewDealerRevealedEvent(deck.Card{}, data.Value, data.Natural),
		}, true

	case server.MessageTypeHandSettled:
		var data server.HandSettledData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return Event{}, false
		}
		var outcome game.Outcome
		if err := outcome.UnmarshalText([]byte(data.Outcome)); err != nil {
			return Event{}, false
		}
		return Event{
			Type: msg.Type,
			Text: data.Text,
			Game: game.NewHandSettledEvent(data.Hand, outcome, data.Bet, data.Payout, data.Balance),
		}, true

	case server.MessageTypeRoundSettled:
		var data server.RoundSettledData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return Event{}, false
		}
		outcomes := make([]game.Outcome, len(data.Outcomes))
		for i, name := range data.Outcomes {
			if err := outcomes[i].UnmarshalText([]byte(name)); err != nil {
				return Event{}, false
			}
		}
		return Event{
			Type: msg.Type,
			Text: data.Text,
			Game: game.NewRoundSettledEvent(data.RoundID, data.Round, data.Net, data.Balance, outcomes),
		}, true

	case server.MessageTypeGameOver:
		var data server.GameOverData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			return Event{}, false
		}
		return Event{
			Type: msg.Type,
			Text: data.Text,
			Game: game.NewGameOverEvent(data.Balance, data.MinBet),
		}, true
	}

	return Event{}, false
}
