package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
)

// Server represents the WebSocket server
type Server struct {
	addr        string
	upgrader    websocket.Upgrader
	connections map[*Connection]bool
	register    chan *Connection
	unregister  chan *Connection
	logger      *log.Logger
	mu          sync.RWMutex
	ctx         context.Context
	cancel      context.CancelFunc
	registry    *Registry
	scheduler   *DealerScheduler
	httpServer  *http.Server
}

// NewServer creates a new WebSocket server
func NewServer(addr string, registry *Registry, scheduler *DealerScheduler, logger *log.Logger) *Server {
	ctx, cancel := context.WithCancel(context.Background())

	return &Server{
		addr: addr,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// For development, allow all origins
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		connections: make(map[*Connection]bool),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		logger:      logger.WithPrefix("server"),
		ctx:         ctx,
		cancel:      cancel,
		registry:    registry,
		scheduler:   scheduler,
	}
}

// Start starts the WebSocket server. It blocks until Stop is called, then
// returns http.ErrServerClosed.
func (s *Server) Start() error {
	go s.run()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)

	s.httpServer = &http.Server{Addr: s.addr, Handler: mux}

	s.logger.Info("Starting WebSocket server", "addr", s.addr)
	return s.httpServer.ListenAndServe()
}

// Stop stops the WebSocket server
func (s *Server) Stop() error {
	s.cancel()

	s.mu.Lock()
	for conn := range s.connections {
		_ = conn.Close()
	}
	s.mu.Unlock()

	if s.httpServer != nil {
		return s.httpServer.Shutdown(context.Background())
	}
	return nil
}

// run handles connection lifecycle
func (s *Server) run() {
	for {
		select {
		case conn := <-s.register:
			s.mu.Lock()
			s.connections[conn] = true
			s.mu.Unlock()
			s.logger.Info("Client connected", "total", len(s.connections))

		case conn := <-s.unregister:
			s.mu.Lock()
			_, known := s.connections[conn]
			if known {
				delete(s.connections, conn)
			}
			total := len(s.connections)
			s.mu.Unlock()

			if known {
				// A dropped connection leaves its room immediately.
				playerID := conn.GetPlayer()
				roomID := conn.GetRoom()
				if playerID != "" && roomID != "" {
					s.logger.Info("Cleaning up disconnected player", "player", playerID, "room", roomID)
					if err := s.registry.Leave(context.Background(), roomID, playerID); err != nil {
						s.logger.Debug("disconnect cleanup", "error", err)
					}
					s.BroadcastRoomState(roomID)
				}
				_ = conn.Close()
			}
			s.logger.Info("Client disconnected", "total", total)

		case <-s.ctx.Done():
			return
		}
	}
}

// handleWebSocket handles WebSocket upgrade requests
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	client := NewConnection(conn, s, s.logger)
	s.register <- client
	client.Start()

	go func() {
		<-client.ctx.Done()
		s.unregister <- client
	}()
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}

// BroadcastRoomState renders and sends the room snapshot to every
// connection in the room. Snapshots are per-viewer: hidden hands and dice
// are only included for their owner. Any state change can leave the
// blackjack dealer due, a leave or disconnect included, so the dealer
// chain is kicked here rather than at individual call sites.
func (s *Server) BroadcastRoomState(roomID string) {
	e := s.registry.Get(roomID)
	if e == nil {
		return
	}
	defer s.kickDealer(roomID, e)

	s.mu.RLock()
	var members []*Connection
	for conn := range s.connections {
		if conn.GetRoom() == roomID {
			members = append(members, conn)
		}
	}
	s.mu.RUnlock()

	for _, conn := range members {
		state, gameType, err := s.renderState(e, conn.GetPlayer())
		if err != nil {
			s.logger.Error("Failed to render room state", "room", roomID, "error", err)
			continue
		}
		msg, err := NewMessage(MessageTypeRoomState, RoomStateData{
			RoomID:   roomID,
			GameType: gameType,
			State:    state,
		})
		if err != nil {
			s.logger.Error("Failed to create room state message", "error", err)
			continue
		}
		if err := conn.SendMessage(msg); err != nil {
			s.logger.Error("Failed to send room state", "error", err, "player", conn.GetPlayer())
		}
	}

	s.logger.Debug("Broadcasted room state", "room", roomID, "recipients", len(members))
}

// renderState builds one viewer's snapshot of the room
func (s *Server) renderState(e *Entry, viewerID string) (json.RawMessage, string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var snap interface{}
	switch e.Type {
	case GameBlackjack:
		snap = e.Blackjack.Snapshot()
	case GameDice:
		snap = e.Dice.Snapshot(viewerID)
	case GameOkey:
		snap = e.Okey.Snapshot(viewerID)
	}

	raw, err := json.Marshal(snap)
	return raw, string(e.Type), err
}

// kickDealer starts the scheduled dealer chain if the room's blackjack
// dealer is due after an action.
func (s *Server) kickDealer(roomID string, e *Entry) {
	s.scheduler.Kick(e, func() {
		s.BroadcastRoomState(roomID)
	})
}

// SendToPlayer sends a message to a specific player
func (s *Server) SendToPlayer(playerID string, msg *Message) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for conn := range s.connections {
		if conn.GetPlayer() == playerID {
			return conn.SendMessage(msg)
		}
	}

	return fmt.Errorf("player not found: %s", playerID)
}

// GetConnectedPlayers returns a list of connected player IDs
func (s *Server) GetConnectedPlayers() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var players []string
	for conn := range s.connections {
		if playerID := conn.GetPlayer(); playerID != "" {
			players = append(players, playerID)
		}
	}

	return players
}
