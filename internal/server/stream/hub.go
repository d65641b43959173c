// Package stream pushes recomputed views to websocket clients and applies
// the interaction events they send back.
package stream

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-playground/validator"
	"github.com/gorilla/websocket"

	"github.com/TomasH60/semantic-blockchain/pkg/explorer"
	"github.com/TomasH60/semantic-blockchain/pkg/logger"
	"github.com/TomasH60/semantic-blockchain/pkg/view"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	sendBuffer = 8
	maxMessage = 64 << 10
)

// Command types a client may send.
const (
	CommandClick      = "click"
	CommandSearch     = "search"
	CommandReset      = "reset"
	CommandAccumulate = "accumulate"
)

// ErrUnknownNode is reported to a client that clicked a node that does not exist.
var ErrUnknownNode = errors.New("unknown node")

// Command is an interaction event received from a client.
type Command struct {
	Type    string `json:"type" validate:"required,oneof=click search reset accumulate"`
	ID      string `json:"id,omitempty"`
	Query   string `json:"query,omitempty"`
	Enabled bool   `json:"enabled,omitempty"`
}

// Message is what the hub sends to clients.
type Message struct {
	Type  string     `json:"type"`
	View  *view.View `json:"view,omitempty"`
	Error string     `json:"error,omitempty"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.send)
	})
}

// Hub tracks connected clients and fans views out to them.
type Hub struct {
	mu       sync.RWMutex
	clients  map[*client]struct{}
	upgrader websocket.Upgrader
	validate *validator.Validate
}

// NewHub creates a hub accepting connections from any origin in
// allowOrigins; "*" allows all.
func NewHub(allowOrigins []string) *Hub {
	return &Hub{
		clients:  make(map[*client]struct{}),
		validate: validator.New(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     originChecker(allowOrigins),
		},
	}
}

func originChecker(allowOrigins []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, allowed := range allowOrigins {
			if allowed == "*" || allowed == origin {
				return true
			}
		}
		return false
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends v to every client. It never blocks: a client whose buffer
// is full misses this view and receives the next one.
func (h *Hub) Broadcast(v view.View) {
	data, err := json.Marshal(Message{Type: "view", View: &v})
	if err != nil {
		logger.Error("[Stream] Failed to marshal view", "err", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			logger.Debug("[Stream] Dropping view for slow client", "remote", c.conn.RemoteAddr().String())
		}
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		c.close()
		delete(h.clients, c)
	}
}

// Serve upgrades the request and runs the client until it disconnects. The
// current view is sent right after the upgrade.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, session *explorer.Session) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("websocket upgrade failed: %w", err)
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	h.register(c)
	logger.Info("[Stream] Client connected", "remote", conn.RemoteAddr().String(), "clients", h.Clients())

	go h.writePump(c)

	current := session.View()
	h.reply(c, Message{Type: "view", View: &current})
	h.readPump(c, session)
	return nil
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
	}
	h.mu.Unlock()
	c.close()
}

func (h *Hub) reply(c *client, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (h *Hub) readPump(c *client, session *explorer.Session) {
	defer func() {
		h.unregister(c)
		logger.Info("[Stream] Client disconnected", "remote", c.conn.RemoteAddr().String())
	}()

	c.conn.SetReadLimit(maxMessage)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("[Stream] Unexpected close", "err", err)
			}
			return
		}

		var cmd Command
		if err := json.Unmarshal(data, &cmd); err != nil {
			h.reply(c, Message{Type: "error", Error: "invalid command"})
			continue
		}
		if err := h.validate.Struct(cmd); err != nil {
			h.reply(c, Message{Type: "error", Error: "invalid command"})
			continue
		}
		if err := Apply(session, cmd); err != nil {
			h.reply(c, Message{Type: "error", Error: err.Error()})
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Apply runs a client command against the session. The resulting view
// reaches clients through the session's change listeners.
func Apply(session *explorer.Session, cmd Command) error {
	switch cmd.Type {
	case CommandClick:
		if _, ok := session.Click(cmd.ID); !ok {
			return fmt.Errorf("%w: %s", ErrUnknownNode, cmd.ID)
		}
	case CommandSearch:
		session.Search(cmd.Query)
	case CommandReset:
		session.Reset()
	case CommandAccumulate:
		session.SetAccumulate(cmd.Enabled)
	default:
		return fmt.Errorf("unknown command %q", cmd.Type)
	}
	return nil
}
