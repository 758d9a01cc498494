package ws

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	sendBuffer = 256
	writeWait  = 10 * time.Second
)

type Client struct {
	Conn *websocket.Conn
	Send chan []byte
}

// Hub fans messages out to every open socket of a user.
// A socket that misses pongs for PongWait is dropped.
type Hub struct {
	clients map[string]map[*websocket.Conn]*Client
	mu      sync.RWMutex

	PongWait   time.Duration
	PingPeriod time.Duration
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*websocket.Conn]*Client),
		PongWait:   60 * time.Second,
		PingPeriod: 54 * time.Second,
	}
}

// H is the process-wide hub used by the HTTP handlers.
var H = NewHub()

// RegisterUser adds conn to userID's sockets and starts its write pump.
func (h *Hub) RegisterUser(userID string, conn *websocket.Conn) *Client {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[userID]; !ok {
		h.clients[userID] = make(map[*websocket.Conn]*Client)
	}
	client := &Client{Conn: conn, Send: make(chan []byte, sendBuffer)}
	h.clients[userID][conn] = client

	go writePump(client, h.PingPeriod)
	return client
}

func (h *Hub) UnregisterUser(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[userID]
	if !ok {
		return
	}
	if client, ok := clients[conn]; ok {
		close(client.Send)
		delete(clients, conn)
	}
	if len(clients) == 0 {
		delete(h.clients, userID)
	}
}

// BroadcastToUser queues data on every socket of userID. Slow sockets drop the message.
func (h *Hub) BroadcastToUser(userID string, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients[userID] {
		select {
		case client.Send <- data:
		default:
		}
	}
}

// SendJSON marshals v and broadcasts it to userID.
func (h *Hub) SendJSON(userID string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("ws json marshal failed", "error", err)
		return
	}
	h.BroadcastToUser(userID, data)
}

// SendBadgeUpdate pushes the unread notification count of userID.
func (h *Hub) SendBadgeUpdate(userID string, unread int64) {
	h.SendJSON(userID, map[string]any{"type": "badge_update", "unread_count": unread})
}

type Stats struct {
	Users       int `json:"users"`
	Connections int `json:"connections"`
}

func (h *Hub) GetStats() Stats {
	h.mu.RLock()
	defer h.mu.RUnlock()

	s := Stats{Users: len(h.clients)}
	for _, conns := range h.clients {
		s.Connections += len(conns)
	}
	return s
}

func writePump(client *Client, pingPeriod time.Duration) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
		client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
		client.Conn.Close()
	}()
	for {
		select {
		case msg, ok := <-client.Send:
			if !ok {
				return
			}
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
