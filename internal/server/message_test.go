package server

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/blackjack/internal/deck"
	"github.com/lox/blackjack/internal/game"
)

func decodeData[T any](t *testing.T, msg *Message) T {
	t.Helper()
	var data T
	require.NoError(t, json.Unmarshal(msg.Data, &data))
	return data
}

func TestNewMessageMarshalsPayload(t *testing.T) {
	t.Parallel()

	msg, err := NewMessage(MessageTypeHello, HelloData{PlayerName: "alice", Token: "tok"})
	require.NoError(t, err)

	assert.Equal(t, MessageTypeHello, msg.Type)
	assert.False(t, msg.Timestamp.IsZero())

	data := decodeData[HelloData](t, msg)
	assert.Equal(t, "alice", data.PlayerName)
	assert.Equal(t, "tok", data.Token)
}

func TestEventMessageCardDealt(t *testing.T) {
	t.Parallel()

	card := deck.MustParseCards("As")[0]
	msg, ok := EventMessage(game.NewCardDealtEvent(0, card))
	require.True(t, ok)
	assert.Equal(t, MessageTypeCardDealt, msg.Type)

	data := decodeData[CardDealtData](t, msg)
	assert.Equal(t, 0, data.Hand)
	assert.False(t, data.Dealer)
	require.NotNil(t, data.Card)
	assert.Equal(t, "A♠", data.Card.Display)
	assert.Equal(t, "hand 1 draws A♠", data.Text)
}

func TestEventMessageConcealedHoleCard(t *testing.T) {
	t.Parallel()

	card := deck.MustParseCards("Kd")[0]
	msg, ok := EventMessage(game.NewDealerCardEvent(card, true))
	require.True(t, ok)

	data := decodeData[CardDealtData](t, msg)
	assert.Equal(t, -1, data.Hand)
	assert.True(t, data.Dealer)
	assert.True(t, data.Concealed)
	assert.Nil(t, data.Card, "concealed card must not reach the wire")
	assert.Equal(t, "dealer takes the hole card", data.Text)
}

func TestEventMessageHandSettled(t *testing.T) {
	t.Parallel()

	msg, ok := EventMessage(game.NewHandSettledEvent(1, game.OutcomeBlackjack, 10, 25, 1015))
	require.True(t, ok)
	assert.Equal(t, MessageTypeHandSettled, msg.Type)

	data := decodeData[HandSettledData](t, msg)
	assert.Equal(t, 1, data.Hand)
	assert.Equal(t, "BLACKJACK", data.Outcome)
	assert.Equal(t, 10, data.Bet)
	assert.Equal(t, 25, data.Payout)
	assert.Equal(t, 1015, data.Balance)
	assert.Equal(t, "hand 2 blackjack, pays $25", data.Text)
}

func TestEventMessageRoundSettled(t *testing.T) {
	t.Parallel()

	event := game.NewRoundSettledEvent("r-9", 3, -20, 980, []game.Outcome{game.OutcomeLose, game.OutcomeWin})
	msg, ok := EventMessage(event)
	require.True(t, ok)
	assert.Equal(t, MessageTypeRoundSettled, msg.Type)

	data := decodeData[RoundSettledData](t, msg)
	assert.Equal(t, "r-9", data.RoundID)
	assert.Equal(t, 3, data.Round)
	assert.Equal(t, -20, data.Net)
	assert.Equal(t, []string{"LOSE", "WIN"}, data.Outcomes)
	assert.Equal(t, "round over: net -20, balance $980", data.Text)
}

func TestEventMessageTypes(t *testing.T) {
	t.Parallel()

	ace := deck.MustParseCards("Ah")[0]

	tests := []struct {
		event game.GameEvent
		want  MessageType
	}{
		{game.NewRoundStartedEvent("r1", 1, 1000), MessageTypeRoundStarted},
		{game.NewBetPlacedEvent(0, 25, 975), MessageTypeBetPlaced},
		{game.NewInsuranceOfferedEvent(ace, 12), MessageTypeInsuranceOffered},
		{game.NewInsuranceResolvedEvent(12, true, 36), MessageTypeInsuranceResolved},
		{game.NewHandSplitEvent(0, 1, 25), MessageTypeHandSplit},
		{game.NewHandDoubledEvent(0, 50), MessageTypeHandDoubled},
		{game.NewHandStoodEvent(0, 20), MessageTypeHandStood},
		{game.NewHandBustedEvent(0, 23), MessageTypeHandBusted},
		{game.NewDealerRevealedEvent(ace, 21, true), MessageTypeDealerRevealed},
		{game.NewGameOverEvent(5, 10), MessageTypeGameOver},
	}

	for _, tt := range tests {
		msg, ok := EventMessage(tt.event)
		require.True(t, ok, "event %s", tt.event.EventType())
		assert.Equal(t, tt.want, msg.Type)
	}
}

func TestEventMessageSkipsPhaseChanges(t *testing.T) {
	t.Parallel()

	_, ok := EventMessage(game.NewPhaseChangedEvent(game.PhaseBetting, game.PhaseDealing))
	assert.False(t, ok)
}

func TestCodeForError(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "insufficient_funds", codeForError(game.ErrInsufficientFunds))
	assert.Equal(t, "invalid_argument", codeForError(game.ErrInvalidArgument))
	assert.Equal(t, "illegal_action", codeForError(game.ErrIllegalAction))
	assert.Equal(t, "not_initialized", codeForError(game.ErrNotInitialized))
	assert.Equal(t, "empty_shoe", codeForError(game.ErrEmptyResource))
	assert.Equal(t, "internal", codeForError(assert.AnError))
}
