package server

// MessageType represents a WebSocket message type with type safety
type MessageType string

// WebSocket message type constants
// These are used for client-server communication protocol
const (
	// Client to server messages
	MessageTypeHello    MessageType = "hello"
	MessageTypeAction   MessageType = "action"
	MessageTypeGetState MessageType = "get_state"

	// Server to client messages
	MessageTypeWelcome MessageType = "welcome"
	MessageTypeState   MessageType = "state"
	MessageTypeError   MessageType = "error"

	// Game event frames pushed as the round progresses
	MessageTypeRoundStarted      MessageType = "round_started"
	MessageTypeBetPlaced         MessageType = "bet_placed"
	MessageTypeCardDealt         MessageType = "card_dealt"
	MessageTypeInsuranceOffered  MessageType = "insurance_offered"
	MessageTypeInsuranceResolved MessageType = "insurance_resolved"
	MessageTypeHandSplit         MessageType = "hand_split"
	MessageTypeHandDoubled       MessageType = "hand_doubled"
	MessageTypeHandStood         MessageType = "hand_stood"
	MessageTypeHandBusted        MessageType = "hand_busted"
	MessageTypeDealerRevealed    MessageType = "dealer_revealed"
	MessageTypeHandSettled       MessageType = "hand_settled"
	MessageTypeRoundSettled      MessageType = "round_settled"
	MessageTypeGameOver          MessageType = "game_over"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}
