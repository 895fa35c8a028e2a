package server

import (
	"encoding/json"
	"time"

	"github.com/ardamertdedeoglu/casino-with-friends-sub000/internal/deck"
)

// Message represents the base WebSocket message structure
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
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

// AuthData identifies the player. A returning client supplies the player id
// it was issued before to rebind the new connection to its old seat.
type AuthData struct {
	PlayerName string `json:"playerName"`
	PlayerID   string `json:"playerId,omitempty"`
}

type SetNameData struct {
	Name string `json:"name"`
}

type JoinRoomData struct {
	RoomID   string `json:"roomId"`
	GameType string `json:"gameType"`
}

type ChangeSettingsData struct {
	DeckCount  int `json:"deckCount"`
	MaxPlayers int `json:"maxPlayers"`
}

type PlaceBetData struct {
	Amount int `json:"amount"`
}

type InsuranceData struct {
	Amount int `json:"amount"`
}

type ResetRoomData struct {
	PreserveWinnings bool `json:"preserveWinnings"`
}

type BidData struct {
	Quantity int `json:"quantity"`
	Face     int `json:"face"`
}

type DiscardData struct {
	Tile deck.Tile `json:"tile"`
}

type OpenMeldsData struct {
	Groups [][]deck.Tile `json:"groups"`
}

// Server → Client Messages

type AuthResponseData struct {
	Success  bool   `json:"success"`
	PlayerID string `json:"playerId,omitempty"`
	Error    string `json:"error,omitempty"`
}

type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type RoomJoinedData struct {
	RoomID   string `json:"roomId"`
	GameType string `json:"gameType"`
	PlayerID string `json:"playerId"`
}

type RoomLeftData struct {
	RoomID string `json:"roomId"`
}

type IndicatorData struct {
	Indicator deck.Tile `json:"indicator"`
	Okey      deck.Tile `json:"okey"`
}

// RoomStateData wraps a game-specific snapshot. The snapshot shape depends
// on the room's game type; clients switch on gameType.
type RoomStateData struct {
	RoomID   string          `json:"roomId"`
	GameType string          `json:"gameType"`
	State    json.RawMessage `json:"state"`
}
