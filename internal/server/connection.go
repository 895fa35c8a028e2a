package server

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ardamertdedeoglu/casino-with-friends-sub000/internal/blackjack"
)

// Connection represents a WebSocket connection to a client. The player id
// is issued at auth and is independent of the connection: a client that
// reconnects presents its old id and is rebound to its seat.
type Connection struct {
	conn      *websocket.Conn
	send      chan *Message
	playerID  string
	name      string
	roomID    string
	server    *Server
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.RWMutex
	closeOnce sync.Once
}

// NewConnection creates a new connection wrapper
func NewConnection(conn *websocket.Conn, server *Server, logger *log.Logger) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		conn:   conn,
		send:   make(chan *Message, 256),
		server: server,
		logger: logger.WithPrefix("conn"),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		close(c.send)
		err = c.conn.Close()
	})
	return err
}

// SendMessage sends a message to the client
func (c *Connection) SendMessage(msg *Message) error {
	defer func() {
		if r := recover(); r != nil {
			// Channel was closed, expected during shutdown.
			c.logger.Debug("Attempted to send message on closed connection", "error", r)
		}
	}()

	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		_ = c.Close()
		return ErrConnectionClosed
	}
}

// SetPlayer associates this connection with a player identity
func (c *Connection) SetPlayer(playerID, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playerID = playerID
	c.name = name
}

// GetPlayer returns the associated player ID
func (c *Connection) GetPlayer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerID
}

// GetName returns the associated display name
func (c *Connection) GetName() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.name
}

// SetRoom associates this connection with a room
func (c *Connection) SetRoom(roomID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roomID = roomID
}

// GetRoom returns the associated room ID
func (c *Connection) GetRoom() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.roomID
}

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192
)

var ErrConnectionClosed = websocket.ErrCloseSent

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		var msg Message
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			break
		}

		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// handleMessage processes incoming messages from the client
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("Received message", "type", msg.Type, "player", c.GetPlayer())

	switch msg.Type {
	case MessageTypeAuth:
		var data AuthData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse auth data")
			return
		}
		c.handleAuth(data)

	case MessageTypeSetName:
		var data SetNameData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse name data")
			return
		}
		c.handleSetName(data)

	case MessageTypeJoinRoom:
		var data JoinRoomData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse join room data")
			return
		}
		c.handleJoinRoom(data)

	case MessageTypeLeaveRoom:
		c.handleLeaveRoom()

	case MessageTypeChangeSettings:
		var data ChangeSettingsData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse settings data")
			return
		}
		c.handleChangeSettings(data)

	case MessageTypePlaceBet:
		var data PlaceBetData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse bet data")
			return
		}
		c.blackjackAction(func(e *Entry) error {
			return e.Blackjack.PlaceBet(c.ctx, c.GetPlayer(), data.Amount)
		})

	case MessageTypeDeclineBet:
		c.blackjackAction(func(e *Entry) error {
			return e.Blackjack.DeclineBet(c.GetPlayer())
		})

	case MessageTypeStartRound:
		c.handleStartRound()

	case MessageTypeHit:
		c.blackjackAction(func(e *Entry) error {
			return e.Blackjack.Hit(c.ctx, c.GetPlayer())
		})

	case MessageTypeStand:
		c.blackjackAction(func(e *Entry) error {
			return e.Blackjack.Stand(c.GetPlayer())
		})

	case MessageTypeDoubleDown:
		c.blackjackAction(func(e *Entry) error {
			return e.Blackjack.DoubleDown(c.ctx, c.GetPlayer())
		})

	case MessageTypeSplit:
		c.blackjackAction(func(e *Entry) error {
			return e.Blackjack.Split(c.ctx, c.GetPlayer())
		})

	case MessageTypeInsurance:
		var data InsuranceData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse insurance data")
			return
		}
		c.blackjackAction(func(e *Entry) error {
			return e.Blackjack.Insurance(c.ctx, c.GetPlayer(), data.Amount)
		})

	case MessageTypeResetRoom:
		var data ResetRoomData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse reset data")
			return
		}
		c.blackjackAction(func(e *Entry) error {
			e.Blackjack.Reset(c.ctx, data.PreserveWinnings)
			return nil
		})

	case MessageTypeBid:
		var data BidData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse bid data")
			return
		}
		c.diceAction(func(e *Entry) error {
			return e.Dice.PlaceBid(c.GetPlayer(), data.Quantity, data.Face)
		})

	case MessageTypeChallenge:
		c.diceAction(func(e *Entry) error {
			return e.Dice.Challenge(c.GetPlayer())
		})

	case MessageTypeSpotOn:
		c.diceAction(func(e *Entry) error {
			return e.Dice.SpotOn(c.GetPlayer())
		})

	case MessageTypeDraw:
		c.okeyAction(func(e *Entry) error {
			return e.Okey.Draw(c.GetPlayer())
		})

	case MessageTypeDrawDiscard:
		c.okeyAction(func(e *Entry) error {
			return e.Okey.DrawDiscard(c.GetPlayer())
		})

	case MessageTypeDiscard:
		var data DiscardData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse discard data")
			return
		}
		c.okeyAction(func(e *Entry) error {
			return e.Okey.Discard(c.GetPlayer(), data.Tile)
		})

	case MessageTypeShowIndicator:
		c.handleShowIndicator()

	case MessageTypeOpenMelds:
		var data OpenMeldsData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_message", "Failed to parse melds data")
			return
		}
		c.okeyAction(func(e *Entry) error {
			return e.Okey.OpenMelds(c.GetPlayer(), data.Groups)
		})

	default:
		c.sendError("unknown_message_type", "Unknown message type: "+msg.Type.String())
	}
}

// sendError sends an error message to the client
func (c *Connection) sendError(code, message string) {
	errorMsg, err := NewMessage(MessageTypeError, ErrorData{
		Code:    code,
		Message: message,
	})
	if err != nil {
		c.logger.Error("Failed to create error message", "error", err)
		return
	}

	_ = c.SendMessage(errorMsg)
}

func (c *Connection) handleAuth(data AuthData) {
	if data.PlayerName == "" {
		c.sendError("invalid_auth", "Player name required")
		return
	}

	playerID := data.PlayerID
	if playerID == "" {
		playerID = uuid.NewString()
	}
	c.SetPlayer(playerID, data.PlayerName)
	c.logger.Info("Authenticated", "player", playerID, "name", data.PlayerName)

	response, _ := NewMessage(MessageTypeAuthResponse, AuthResponseData{
		Success:  true,
		PlayerID: playerID,
	})
	_ = c.SendMessage(response)
}

// handleSetName refreshes the display name. Seated players are re-joined
// with their existing id, which the rooms treat as a reconnect refresh.
func (c *Connection) handleSetName(data SetNameData) {
	playerID := c.GetPlayer()
	if playerID == "" {
		c.sendError("not_authenticated", "Must authenticate first")
		return
	}
	if data.Name == "" {
		c.sendError("invalid_name", "Name required")
		return
	}

	c.SetPlayer(playerID, data.Name)

	roomID := c.GetRoom()
	if roomID == "" {
		return
	}
	if _, err := c.server.registry.Join(roomID, c.roomGameType(), playerID, data.Name); err != nil {
		c.sendError("action_failed", err.Error())
		return
	}
	c.server.BroadcastRoomState(roomID)
}

// handleShowIndicator answers with the round's indicator tile and the okey
// it designates. Only the requesting client gets the reply.
func (c *Connection) handleShowIndicator() {
	roomID := c.GetRoom()
	if roomID == "" {
		c.sendError("not_in_room", "Not in a room")
		return
	}

	var payload IndicatorData
	err := c.server.registry.Do(roomID, func(e *Entry) error {
		if e.Type != GameOkey {
			return fmt.Errorf("%w: room %s runs %s", ErrGameTypeInUse, roomID, e.Type)
		}
		payload.Indicator, payload.Okey = e.Okey.Indicator()
		return nil
	})
	if err != nil {
		c.sendError("action_failed", err.Error())
		return
	}

	response, _ := NewMessage(MessageTypeIndicator, payload)
	_ = c.SendMessage(response)
}

// roomGameType looks up the game type of the connection's current room.
func (c *Connection) roomGameType() GameType {
	e := c.server.registry.Get(c.GetRoom())
	if e == nil {
		return ""
	}
	return e.Type
}

func (c *Connection) handleJoinRoom(data JoinRoomData) {
	playerID := c.GetPlayer()
	if playerID == "" {
		c.sendError("not_authenticated", "Must authenticate first")
		return
	}
	if c.GetRoom() != "" {
		c.sendError("already_in_room", "Leave the current room first")
		return
	}

	_, err := c.server.registry.Join(data.RoomID, GameType(data.GameType), playerID, c.GetName())
	if err != nil {
		c.sendError("join_failed", err.Error())
		return
	}
	c.SetRoom(data.RoomID)

	response, _ := NewMessage(MessageTypeRoomJoined, RoomJoinedData{
		RoomID:   data.RoomID,
		GameType: data.GameType,
		PlayerID: playerID,
	})
	_ = c.SendMessage(response)
	c.server.BroadcastRoomState(data.RoomID)
}

func (c *Connection) handleLeaveRoom() {
	roomID := c.GetRoom()
	if roomID == "" {
		c.sendError("not_in_room", "Not in a room")
		return
	}

	if err := c.server.registry.Leave(c.ctx, roomID, c.GetPlayer()); err != nil {
		c.sendError("leave_failed", err.Error())
		return
	}
	c.SetRoom("")

	response, _ := NewMessage(MessageTypeRoomLeft, RoomLeftData{RoomID: roomID})
	_ = c.SendMessage(response)
	c.server.BroadcastRoomState(roomID)
}

func (c *Connection) handleChangeSettings(data ChangeSettingsData) {
	c.blackjackAction(func(e *Entry) error {
		return e.Blackjack.ChangeSettings(c.GetPlayer(), blackjack.Settings{
			DeckCount:  data.DeckCount,
			MaxPlayers: data.MaxPlayers,
		})
	})
}

func (c *Connection) handleStartRound() {
	roomID := c.GetRoom()
	if roomID == "" {
		c.sendError("not_in_room", "Not in a room")
		return
	}

	err := c.server.registry.Do(roomID, func(e *Entry) error {
		switch e.Type {
		case GameBlackjack:
			return e.Blackjack.StartRound(c.ctx)
		case GameDice:
			return e.Dice.StartRound()
		case GameOkey:
			return e.Okey.StartRound()
		}
		return ErrUnknownGameType
	})
	if err != nil {
		c.sendError("action_failed", err.Error())
		return
	}

	c.server.BroadcastRoomState(roomID)
}

// blackjackAction runs fn against the connection's blackjack room and
// broadcasts the new state, which also kicks the dealer chain if it is
// now due.
func (c *Connection) blackjackAction(fn func(*Entry) error) {
	c.gameAction(GameBlackjack, fn)
}

func (c *Connection) diceAction(fn func(*Entry) error) {
	c.gameAction(GameDice, fn)
}

func (c *Connection) okeyAction(fn func(*Entry) error) {
	c.gameAction(GameOkey, fn)
}

func (c *Connection) gameAction(gt GameType, fn func(*Entry) error) {
	roomID := c.GetRoom()
	if roomID == "" {
		c.sendError("not_in_room", "Not in a room")
		return
	}

	err := c.server.registry.Do(roomID, func(e *Entry) error {
		if e.Type != gt {
			return fmt.Errorf("%w: room %s runs %s", ErrGameTypeInUse, roomID, e.Type)
		}
		return fn(e)
	})
	if err != nil {
		c.sendError("action_failed", err.Error())
		return
	}

	c.server.BroadcastRoomState(roomID)
}
