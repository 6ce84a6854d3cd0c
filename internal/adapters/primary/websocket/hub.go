package websocket

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/taskhive/taskhive-backend/internal/core/domain"
)

// roomMessage pairs an outbound frame with the project room it targets.
type roomMessage struct {
	ProjectID uuid.UUID
	Message   Message
}

// Hub maintains the set of active Clients and fans frames out to project
// rooms. A room is the set of connections watching one project's board.
//
// All map mutation happens on the Run goroutine. Frames for a given room are
// drained from a single channel by that one goroutine, so two frames queued
// in order reach every room member in that order.
type Hub struct {
	// Clients maps user IDs to their active connections
	// A single user can have multiple connections (multiple tabs/devices)
	clients map[uuid.UUID]map[*Client]bool

	// Rooms maps project IDs to joined clients
	rooms map[uuid.UUID]map[*Client]bool

	// Broadcast channel for room-targeted frames
	broadcast chan roomMessage

	// Register requests from clients
	Register chan *Client

	// Unregister requests from clients
	Unregister chan *Client

	// mu protects the clients and rooms maps for readers off the Run goroutine
	mu sync.RWMutex

	// logger for the hub
	logger *slog.Logger
}

// NewHub creates a new WebSocket hub
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[uuid.UUID]map[*Client]bool),
		rooms:      make(map[uuid.UUID]map[*Client]bool),
		broadcast:  make(chan roomMessage, 256),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		logger:     logger.With("component", "websocket_hub"),
	}
}

// EmitToProject queues a frame for every connection in the project's room.
// A full broadcast channel drops the frame rather than blocking the caller.
func (h *Hub) EmitToProject(projectID uuid.UUID, event string, data any) {
	msg := roomMessage{
		ProjectID: projectID,
		Message:   Message{Event: event, Data: data},
	}

	select {
	case h.broadcast <- msg:
	default:
		h.logger.Warn("broadcast channel full, dropping frame",
			"event", event,
			"project_id", projectID,
		)
	}
}

// Run starts the hub's event loop. This MUST be run as a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.Unregister:
			h.unregisterClient(client)

		case msg := <-h.broadcast:
			h.broadcastToRoom(msg)
		}
	}
}

// registerClient adds a client to the hub and its project room. The handshake
// already validated both identity and project, so a zero value here means a
// wiring bug; such a connection is closed rather than joined to a bogus room.
func (h *Hub) registerClient(client *Client) {
	if client.Identity.UserID == uuid.Nil || client.ProjectID == uuid.Nil {
		h.logger.Error("rejecting client with missing identity or project",
			"user_id", client.Identity.UserID,
			"project_id", client.ProjectID,
		)
		client.CloseSend()
		if client.Conn != nil {
			client.Conn.Close()
		}
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[client.Identity.UserID] == nil {
		h.clients[client.Identity.UserID] = make(map[*Client]bool)
	}
	h.clients[client.Identity.UserID][client] = true

	if h.rooms[client.ProjectID] == nil {
		h.rooms[client.ProjectID] = make(map[*Client]bool)
	}
	h.rooms[client.ProjectID][client] = true

	h.logger.Info("client joined project room",
		"user_id", client.Identity.UserID,
		"project_id", client.ProjectID,
		"room_size", len(h.rooms[client.ProjectID]),
	)
}

// unregisterClient removes a client from the hub and its room, then tells the
// remaining room members that the user left.
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()

	// 1. Remove from the global user map
	if userClients, ok := h.clients[client.Identity.UserID]; ok {
		if _, exists := userClients[client]; exists {
			delete(userClients, client)
			if len(userClients) == 0 {
				delete(h.clients, client.Identity.UserID)
			}
		}
	}

	// 2. Remove from the project room
	var remaining []*Client
	if room, ok := h.rooms[client.ProjectID]; ok {
		if _, exists := room[client]; exists {
			delete(room, client)
			if len(room) == 0 {
				delete(h.rooms, client.ProjectID)
			} else {
				remaining = make([]*Client, 0, len(room))
				for member := range room {
					remaining = append(remaining, member)
				}
			}
		}
	}

	// 3. Safely close the send channel
	client.CloseSend()

	h.mu.Unlock()

	h.logger.Info("client left project room",
		"user_id", client.Identity.UserID,
		"project_id", client.ProjectID,
	)

	// Notify the rest of the room directly. Queueing through the broadcast
	// channel here would deadlock the Run goroutine against itself.
	if len(remaining) > 0 {
		msg := Message{
			Event: string(domain.EventUserDisconnected),
			Data: map[string]any{
				"userId":    client.Identity.UserID.String(),
				"username":  client.Identity.Username,
				"timestamp": time.Now().UTC().Format(time.RFC3339),
			},
		}
		for _, member := range remaining {
			h.deliver(member, msg)
		}
	}
}

// broadcastToRoom sends a frame to every client in the target project room
func (h *Hub) broadcastToRoom(msg roomMessage) {
	h.mu.RLock()
	room, ok := h.rooms[msg.ProjectID]
	if !ok {
		h.mu.RUnlock()
		return
	}

	// Copy the client list to avoid holding the lock while sending
	clients := make([]*Client, 0, len(room))
	for client := range room {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	h.logger.Debug("broadcasting to room",
		"event", msg.Message.Event,
		"project_id", msg.ProjectID,
		"client_count", len(clients),
	)

	for _, client := range clients {
		h.deliver(client, msg.Message)
	}
}

// deliver queues a frame on one client, dropping the connection when its
// send buffer is full. Must only be called from the Run goroutine.
func (h *Hub) deliver(client *Client, msg Message) {
	select {
	case client.Send <- msg:
		// Successfully queued
	default:
		// Client's send buffer is full, drop them. Calling unregisterClient
		// inline keeps this on the Run goroutine without self-deadlock.
		h.logger.Warn("client send buffer full, unregistering",
			"user_id", client.Identity.UserID,
			"project_id", client.ProjectID,
		)
		h.unregisterClient(client)
	}
}

// GetClientCount returns the total number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	count := 0
	for _, userClients := range h.clients {
		count += len(userClients)
	}
	return count
}

// GetRoomCount returns the number of active project rooms
func (h *Hub) GetRoomCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

// GetClientsInRoom returns the number of clients in a project room
func (h *Hub) GetClientsInRoom(projectID uuid.UUID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if room, ok := h.rooms[projectID]; ok {
		return len(room)
	}
	return 0
}

// IsUserConnected checks if a user has any active connections
func (h *Hub) IsUserConnected(userID uuid.UUID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients, ok := h.clients[userID]
	return ok && len(clients) > 0
}
