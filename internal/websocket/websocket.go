package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/abrezinsky/swipick/internal/game"
	"github.com/abrezinsky/swipick/internal/logger"
	"github.com/abrezinsky/swipick/internal/models"
	"github.com/abrezinsky/swipick/internal/services"
)

// Message types pushed to clients
const (
	TypeSessionState = "session_state"
	TypeLiveWeek     = "live_week"
	TypeCountdown    = "countdown"
	TypeKickoff      = "kickoff"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Mobile clients connect from any origin
	},
}

// envelope is a message addressed to one client, one user, or to everyone
// when both are empty
type envelope struct {
	client *Client
	userID string
	msg    models.WSMessage
}

// Hub maintains the set of active clients and broadcasts messages to the clients
type Hub struct {
	log        logger.Logger
	clients    map[*Client]bool
	broadcast  chan envelope
	register   chan *Client
	unregister chan *Client
	mutex      sync.RWMutex
	fixtures   services.FixtureServicer
	now        func() time.Time

	// fixture the countdown is tracking, used to announce its kickoff
	lastFixture *models.Fixture
}

// Client is a middleman between the websocket connection and the hub
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	send   chan models.WSMessage
	userID string
}

// New creates a new Hub instance with injected dependencies
func New(log logger.Logger, fixtures services.FixtureServicer) *Hub {
	return &Hub{
		log:        log,
		clients:    make(map[*Client]bool),
		broadcast:  make(chan envelope, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		fixtures:   fixtures,
		now:        time.Now,
	}
}

// Start begins the hub's main loop in a goroutine
func (h *Hub) Start() {
	go h.run()
}

// run handles client registration/unregistration and message broadcasting
func (h *Hub) run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			total := len(h.clients)
			h.mutex.Unlock()
			h.log.Debug("Client connected", "user_id", client.userID, "total_clients", total)

			// Send the live week to the new client. The reply goes back through
			// the broadcast queue so only run touches client.send.
			go func() {
				week, err := h.fixtures.CurrentWeek(context.Background())
				if err != nil {
					h.log.Warn("Failed to read live week", "error", err)
					return
				}
				h.enqueue(envelope{client: client, msg: models.WSMessage{
					Type:    TypeLiveWeek,
					Payload: map[string]interface{}{"week": week},
				}})
			}()

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			total := len(h.clients)
			h.mutex.Unlock()
			h.log.Debug("Client disconnected", "user_id", client.userID, "total_clients", total)

		case env := <-h.broadcast:
			h.mutex.RLock()
			if env.client != nil {
				// gone already when it disconnected during the lookup
				if h.clients[env.client] {
					select {
					case env.client.send <- env.msg:
					default:
					}
				}
				h.mutex.RUnlock()
				continue
			}
			for client := range h.clients {
				if env.userID != "" && client.userID != env.userID {
					continue
				}
				select {
				case client.send <- env.msg:
				default:
					// Client's send channel is full, unregister
					go func(c *Client) {
						h.unregister <- c
					}(client)
				}
			}
			h.mutex.RUnlock()
		}
	}
}

func (h *Hub) enqueue(env envelope) {
	select {
	case h.broadcast <- env:
	default:
		h.log.Warn("Broadcast queue full, dropping message", "type", env.msg.Type, "user_id", env.userID)
	}
}

// BroadcastMessage sends a message to all connected clients
func (h *Hub) BroadcastMessage(msgType string, payload interface{}) {
	h.enqueue(envelope{msg: models.WSMessage{Type: msgType, Payload: payload}})
}

// SendToUser sends a message to the clients connected as userID
func (h *Hub) SendToUser(userID, msgType string, payload interface{}) {
	if userID == "" {
		return
	}
	h.enqueue(envelope{userID: userID, msg: models.WSMessage{Type: msgType, Payload: payload}})
}

// BroadcastSession implements services.Broadcaster
func (h *Hub) BroadcastSession(userID string, state game.State) {
	h.SendToUser(userID, TypeSessionState, state)
}

// BroadcastLiveWeek implements services.Broadcaster. Week 0 means the
// override was cleared and clients should ask for the detected week.
func (h *Hub) BroadcastLiveWeek(week int) {
	h.BroadcastMessage(TypeLiveWeek, map[string]interface{}{"week": week})
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// readPump pumps messages from the websocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Debug("WebSocket error", "error", err)
			}
			break
		}

		var msg models.WSMessage
		if err := json.Unmarshal(message, &msg); err == nil {
			c.hub.log.Debug("Received message", "type", msg.Type, "user_id", c.userID)
		}
	}
}

// writePump pumps messages from the hub to the websocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				// Hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}

			msgBytes, _ := json.Marshal(message)
			w.Write(msgBytes)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeWs handles websocket requests from clients. The optional user query
// parameter subscribes the connection to that user's session updates.
func (h *Hub) ServeWs(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("WebSocket upgrade error", "error", err)
		return
	}

	client := &Client{
		hub:    h,
		conn:   conn,
		send:   make(chan models.WSMessage, 256),
		userID: r.URL.Query().Get("user"),
	}
	h.register <- client

	go client.writePump()
	go client.readPump()
}

// StartKickoffCountdown broadcasts the time left before the next kickoff
// every interval until ctx is cancelled
func (h *Hub) StartKickoffCountdown(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.log.Info("Kickoff countdown stopped")
			return
		case <-ticker.C:
			h.checkAndUpdateCountdown(ctx)
		}
	}
}

// checkAndUpdateCountdown announces a kickoff that has passed and sends
// the countdown to the next one
func (h *Hub) checkAndUpdateCountdown(ctx context.Context) {
	now := h.now()

	if h.lastFixture != nil && h.lastFixture.Started(now) {
		h.log.Info("Fixture kicked off", "fixture_id", h.lastFixture.ID, "week", h.lastFixture.Week)
		h.BroadcastMessage(TypeKickoff, map[string]interface{}{
			"fixture_id": h.lastFixture.ID,
			"week":       h.lastFixture.Week,
		})
		h.lastFixture = nil
	}

	next, err := h.fixtures.NextKickoff(ctx)
	if err != nil {
		h.log.Warn("Failed to read next kickoff", "error", err)
		return
	}
	if next == nil {
		return
	}
	h.lastFixture = next

	h.BroadcastMessage(TypeCountdown, map[string]interface{}{
		"fixture_id":        next.ID,
		"week":              next.Week,
		"kickoff":           next.Kickoff.UTC().Format(time.RFC3339),
		"seconds_remaining": int(next.Kickoff.Sub(now).Seconds()),
	})
}
