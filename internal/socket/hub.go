// server/internal/socket/hub.go
package socket

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// RoomAdmins is the room every authenticated admin dashboard joins.
const RoomAdmins = "admins"

// Hub manages all WebSocket clients, grouped into rooms. Delivery is
// best-effort: a failed or missing connection is logged and dropped, never
// surfaced to the caller's request.
type Hub struct {
	// clients maps userID -> connection.
	clients map[string]*websocket.Conn
	// rooms maps room name -> set of userIDs.
	rooms map[string]map[string]struct{}
	mu    sync.RWMutex
	log   *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[string]*websocket.Conn),
		rooms:   make(map[string]map[string]struct{}),
		log:     log,
	}
}

// Register adds a client and joins it to the given rooms.
func (h *Hub) Register(userID string, conn *websocket.Conn, rooms ...string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[userID] = conn
	for _, room := range rooms {
		if h.rooms[room] == nil {
			h.rooms[room] = make(map[string]struct{})
		}
		h.rooms[room][userID] = struct{}{}
	}
	h.log.Info("websocket client registered", zap.String("userID", userID))
}

// Unregister removes a client from the hub and every room.
func (h *Hub) Unregister(userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[userID]; !ok {
		return
	}
	delete(h.clients, userID)
	for _, members := range h.rooms {
		delete(members, userID)
	}
	h.log.Info("websocket client unregistered", zap.String("userID", userID))
}

// Send pushes one event to a specific client. A missing client is not an
// error, they are simply offline.
func (h *Hub) Send(userID string, event string, payload interface{}) {
	h.mu.RLock()
	conn, ok := h.clients[userID]
	h.mu.RUnlock()
	if !ok {
		return
	}
	h.write(userID, conn, event, payload)
}

// Broadcast pushes one event to every client in a room.
func (h *Hub) Broadcast(room string, event string, payload interface{}) {
	h.mu.RLock()
	members := make([]string, 0, len(h.rooms[room]))
	for userID := range h.rooms[room] {
		members = append(members, userID)
	}
	h.mu.RUnlock()

	for _, userID := range members {
		h.mu.RLock()
		conn, ok := h.clients[userID]
		h.mu.RUnlock()
		if ok {
			h.write(userID, conn, event, payload)
		}
	}
}

func (h *Hub) write(userID string, conn *websocket.Conn, event string, payload interface{}) {
	message, err := json.Marshal(map[string]interface{}{
		"event": event,
		"data":  payload,
	})
	if err != nil {
		h.log.Error("failed to marshal websocket event", zap.String("event", event), zap.Error(err))
		return
	}
	if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
		h.log.Warn("failed to push websocket event, dropping client",
			zap.String("userID", userID), zap.Error(err))
	}
}
