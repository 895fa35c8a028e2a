package server

// MessageType represents a WebSocket message type with type safety
type MessageType string

// WebSocket message type constants
const (
	// Client to server messages
	MessageTypeAuth           MessageType = "auth"
	MessageTypeSetName        MessageType = "set_name"
	MessageTypeJoinRoom       MessageType = "join_room"
	MessageTypeLeaveRoom      MessageType = "leave_room"
	MessageTypeChangeSettings MessageType = "change_settings"
	MessageTypePlaceBet       MessageType = "place_bet"
	MessageTypeDeclineBet     MessageType = "decline_bet"
	MessageTypeStartRound     MessageType = "start_round"
	MessageTypeHit            MessageType = "hit"
	MessageTypeStand          MessageType = "stand"
	MessageTypeDoubleDown     MessageType = "double_down"
	MessageTypeSplit          MessageType = "split"
	MessageTypeInsurance      MessageType = "insurance"
	MessageTypeResetRoom      MessageType = "reset_room"
	MessageTypeBid            MessageType = "bid"
	MessageTypeChallenge      MessageType = "challenge"
	MessageTypeSpotOn         MessageType = "spot_on"
	MessageTypeDraw           MessageType = "draw"
	MessageTypeDrawDiscard    MessageType = "draw_discard"
	MessageTypeDiscard        MessageType = "discard"
	MessageTypeOpenMelds      MessageType = "open_melds"
	MessageTypeShowIndicator  MessageType = "show_indicator"

	// Server to client messages
	MessageTypeError        MessageType = "error"
	MessageTypeAuthResponse MessageType = "auth_response"
	MessageTypeRoomJoined   MessageType = "room_joined"
	MessageTypeRoomLeft     MessageType = "room_left"
	MessageTypeRoomState    MessageType = "room_state"
	MessageTypeIndicator    MessageType = "indicator"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}
