package hub

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/weiawesome/camlink/internal/config"
	pkglog "github.com/weiawesome/camlink/pkg/log"
)

// Hub tracks every websocket connection and the room broadcast groups
// they are subscribed to.
//
// Sends never block: a recipient whose buffer is full misses the message.
// Send channels are closed only under the write lock and written only under
// the read lock.
type Hub struct {
	clients map[string]*Client
	rooms   map[string]map[string]*Client // room code -> client id -> client
	mu      sync.RWMutex
	config  config.WebSocketConfig
	done    chan struct{}
}

// NewHub creates a new Hub.
func NewHub(cfg config.WebSocketConfig) *Hub {
	if cfg.SendBuffer <= 0 {
		cfg.SendBuffer = 64
	}
	if cfg.PongWait <= 0 {
		cfg.PongWait = 60 * time.Second
	}
	if cfg.PingInterval <= 0 || cfg.PingInterval >= cfg.PongWait {
		cfg.PingInterval = cfg.PongWait * 9 / 10
	}
	if cfg.WriteWait <= 0 {
		cfg.WriteWait = 10 * time.Second
	}
	return &Hub{
		clients: make(map[string]*Client),
		rooms:   make(map[string]map[string]*Client),
		config:  cfg,
		done:    make(chan struct{}),
	}
}

// Run blocks until ctx is done, then closes every connection.
func (h *Hub) Run(ctx context.Context) error {
	<-ctx.Done()

	h.mu.Lock()
	for id, c := range h.clients {
		close(c.Send)
		delete(h.clients, id)
	}
	h.rooms = make(map[string]map[string]*Client)
	close(h.done)
	h.mu.Unlock()

	l := pkglog.L()
	l.Info().Msg("hub stopped")
	return nil
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	select {
	case <-h.done:
		close(c.Send)
		return
	default:
	}
	h.clients[c.ID] = c

	l := pkglog.L()
	l.Debug().Str(pkglog.FieldConnID, c.ID).Int("connections", len(h.clients)).Msg("client registered")
}

// Unregister removes a client from the hub and every room group, then
// closes its send channel. It is safe to call more than once.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if cur, ok := h.clients[c.ID]; !ok || cur != c {
		return
	}
	for code, members := range h.rooms {
		delete(members, c.ID)
		if len(members) == 0 {
			delete(h.rooms, code)
		}
	}
	delete(h.clients, c.ID)
	close(c.Send)

	l := pkglog.L()
	l.Debug().Str(pkglog.FieldConnID, c.ID).Int("connections", len(h.clients)).Msg("client unregistered")
}

// JoinRoom subscribes a connection to a room's broadcast group.
func (h *Hub) JoinRoom(clientID, roomCode string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.clients[clientID]
	if !ok {
		return
	}
	if _, ok := h.rooms[roomCode]; !ok {
		h.rooms[roomCode] = make(map[string]*Client)
	}
	h.rooms[roomCode][clientID] = c
}

// LeaveRoom unsubscribes a connection from a room's broadcast group.
func (h *Hub) LeaveRoom(clientID, roomCode string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if members, ok := h.rooms[roomCode]; ok {
		delete(members, clientID)
		if len(members) == 0 {
			delete(h.rooms, roomCode)
		}
	}
}

// CloseRoom drops a room's broadcast group. Connections stay open.
func (h *Hub) CloseRoom(roomCode string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.rooms, roomCode)
}

// ConnectionCount returns the number of registered connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// BroadcastToRoom sends a message to every member of a room except exclude.
func (h *Hub) BroadcastToRoom(roomCode string, message interface{}, exclude string) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for id, c := range h.rooms[roomCode] {
		if id == exclude {
			continue
		}
		h.trySend(c, data)
	}
	return nil
}

// SendToClient sends a message to one connection. Unknown ids are ignored.
func (h *Hub) SendToClient(clientID string, message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if c, ok := h.clients[clientID]; ok {
		h.trySend(c, data)
	}
	return nil
}

// trySend must be called with at least the read lock held.
func (h *Hub) trySend(c *Client, data []byte) {
	select {
	case c.Send <- data:
	default:
		l := pkglog.L()
		l.Warn().Str(pkglog.FieldConnID, c.ID).Msg("send buffer full, dropping message")
	}
}
