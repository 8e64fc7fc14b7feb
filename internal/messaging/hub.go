package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/frahmantamala/projecthub/internal/auth"
	"github.com/frahmantamala/projecthub/internal/core/events"
	"github.com/frahmantamala/projecthub/internal/transport"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 64
)

// Push is the frame written to websocket clients.
type Push struct {
	Type           string      `json:"type"`
	ConversationID int64       `json:"conversationId"`
	Message        interface{} `json:"message"`
}

type wsClient struct {
	userID int64
	conn   *websocket.Conn
	send   chan []byte
	once   sync.Once
}

func (c *wsClient) close() {
	c.once.Do(func() { close(c.send) })
}

// Hub keeps the open websocket connections per user and pushes message.sent events to them.
type Hub struct {
	*transport.BaseHandler
	mu       sync.RWMutex
	clients  map[int64]map[*wsClient]struct{}
	upgrader websocket.Upgrader
}

func NewHub(allowedOrigins string, logger *slog.Logger) *Hub {
	h := &Hub{
		BaseHandler: transport.NewBaseHandler(logger),
		clients:     map[int64]map[*wsClient]struct{}{},
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

// HandleMessageSent is the event bus subscriber for message.sent.
func (h *Hub) HandleMessageSent(_ context.Context, event events.Event) error {
	sent, ok := event.(*events.MessageSentEvent)
	if !ok {
		return fmt.Errorf("unexpected event %T for %s", event, events.EventTypeMessageSent)
	}
	frame, err := json.Marshal(Push{Type: events.EventTypeMessageSent, ConversationID: sent.ConversationID, Message: sent.Message})
	if err != nil {
		return fmt.Errorf("encode push: %w", err)
	}

	targets := append([]int64{sent.SenderID}, sent.RecipientIDs...)
	delivered := 0
	for _, userID := range targets {
		delivered += h.deliver(userID, frame)
	}
	h.Logger.Debug("message pushed", "message_id", sent.MessageID, "connections", delivered)
	return nil
}

// ServeWS upgrades an authenticated request. Clients only receive; anything they send is ignored.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	u, err := auth.RequireUser(r.Context())
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Logger.Warn("websocket upgrade failed", "user_id", u.ID, "error", err)
		return
	}

	c := &wsClient{userID: u.ID, conn: conn, send: make(chan []byte, sendBuffer)}
	h.register(c)
	go h.writePump(c)
	go h.readPump(c)
}

// Connections returns the number of open connections for a user.
func (h *Hub) Connections(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// TotalConnections counts open connections across all users.
func (h *Hub) TotalConnections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for userID, set := range h.clients {
		for c := range set {
			c.close()
		}
		delete(h.clients, userID)
	}
}

func (h *Hub) register(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.userID]
	if !ok {
		set = map[*wsClient]struct{}{}
		h.clients[c.userID] = set
	}
	set[c] = struct{}{}
	h.Logger.Debug("websocket connected", "user_id", c.userID, "connections", len(set))
}

func (h *Hub) unregister(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.clients[c.userID]; ok {
		if _, ok := set[c]; ok {
			delete(set, c)
			c.close()
		}
		if len(set) == 0 {
			delete(h.clients, c.userID)
		}
	}
}

func (h *Hub) deliver(userID int64, frame []byte) int {
	h.mu.RLock()
	var slow []*wsClient
	n := 0
	for c := range h.clients[userID] {
		select {
		case c.send <- frame:
			n++
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.Logger.Warn("dropping slow websocket client", "user_id", c.userID)
		h.unregister(c)
	}
	return n
}

func (h *Hub) readPump(c *wsClient) {
	defer func() {
		h.unregister(c)
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.Logger.Debug("websocket closed", "user_id", c.userID, "error", err)
			}
			return
		}
	}
}

func (h *Hub) writePump(c *wsClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
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

func originChecker(allowed string) func(r *http.Request) bool {
	allowed = strings.TrimSpace(allowed)
	if allowed == "" || allowed == "*" {
		return func(*http.Request) bool { return true }
	}
	origins := map[string]bool{}
	for _, o := range strings.Split(allowed, ",") {
		origins[strings.TrimSpace(o)] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || origins[origin]
	}
}
