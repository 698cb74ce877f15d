// Pictonet - Minimal Social Network with Image and Audio Sharing
// Copyright 2026 Pictonet contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pictonet/pictonet

// Package relay implements the room-scoped realtime layer. A client
// joins a room keyed by chat identifier; messages sent to that room
// are persisted and then broadcast to every current room member,
// sender included.
package relay

import (
	"context"
	"sort"
	"sync"

	"github.com/pictonet/pictonet/internal/logging"
	"github.com/pictonet/pictonet/internal/metrics"
)

// ShutdownReason identifies why the hub is shutting down.
type ShutdownReason string

const (
	// ShutdownReasonContextCanceled is the normal graceful shutdown
	// path (e.g. SIGTERM).
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"

	// ShutdownReasonContextDeadline may indicate a hung operation
	// during shutdown.
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// joinRequest moves a client into a room. Processed by the run loop so
// membership mutations are serialized with broadcasts.
type joinRequest struct {
	client *Client
	chatID int
}

// roomMessage targets a broadcast at a single room.
type roomMessage struct {
	chatID int
	msg    Message
}

// Hub maintains room membership and broadcasts messages to room
// members. Membership is shared mutable state: all mutations happen in
// the run loop, reads outside it take the mutex.
type Hub struct {
	rooms      map[int]map[*Client]bool
	clients    map[*Client]bool
	broadcast  chan roomMessage
	join       chan joinRequest
	Register   chan *Client
	Unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[int]map[*Client]bool),
		clients:    make(map[*Client]bool),
		broadcast:  make(chan roomMessage, 256),
		join:       make(chan joinRequest),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

// Join requests membership of the room keyed by chatID. A client is in
// at most one room; joining again moves it. Membership does not
// survive reconnects and is never validated against the chats table.
func (h *Hub) Join(client *Client, chatID int) {
	h.join <- joinRequest{client: client, chatID: chatID}
}

// Broadcast queues a message for every member of the room keyed by
// chatID. An empty room makes this a no-op, not a failure.
func (h *Hub) Broadcast(chatID int, msg Message) {
	select {
	case h.broadcast <- roomMessage{chatID: chatID, msg: msg}:
	default:
		logging.Warn().Int("chat_id", chatID).Str("type", msg.Type).Msg("broadcast channel full, dropping message")
	}
}

// RunWithContext runs the hub until the context is canceled. Designed
// for suture supervision: on cancellation all clients are closed and
// ctx.Err() is returned so the supervisor sees a clean stop.
//
// Channel selection is priority ordered so behavior stays predictable
// when several channels are ready: shutdown first, then lifecycle
// events, then broadcasts. Go's select picks randomly among ready
// cases, so each priority tier gets its own select.
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		// Priority 1: shutdown (non-blocking check).
		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		default:
		}

		// Priority 2: lifecycle events (non-blocking check).
		select {
		case client := <-h.Register:
			h.registerClient(client)
			continue
		case client := <-h.Unregister:
			h.unregisterClient(client)
			continue
		case req := <-h.join:
			h.joinRoom(req.client, req.chatID)
			continue
		default:
		}

		// Priority 3: wait for any event (blocking).
		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()

		case client := <-h.Register:
			h.registerClient(client)

		case client := <-h.Unregister:
			h.unregisterClient(client)

		case req := <-h.join:
			h.joinRoom(req.client, req.chatID)

		case rm := <-h.broadcast:
			h.broadcastToRoom(rm.chatID, rm.msg)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	total := len(h.clients)
	h.mu.Unlock()
	metrics.RelayConnections.Set(float64(total))
	logging.Info().Int("total_clients", total).Msg("relay client connected")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		h.removeFromRoomLocked(client)
		close(client.send)
	}
	total := len(h.clients)
	rooms := len(h.rooms)
	h.mu.Unlock()
	metrics.RelayConnections.Set(float64(total))
	metrics.RelayRooms.Set(float64(rooms))
	logging.Info().Int("total_clients", total).Msg("relay client disconnected")
}

// joinRoom moves a client into a room, leaving any previous one.
func (h *Hub) joinRoom(client *Client, chatID int) {
	h.mu.Lock()
	if _, ok := h.clients[client]; !ok {
		// Disconnected before the join was processed.
		h.mu.Unlock()
		return
	}
	h.removeFromRoomLocked(client)
	room, ok := h.rooms[chatID]
	if !ok {
		room = make(map[*Client]bool)
		h.rooms[chatID] = room
	}
	room[client] = true
	client.room = chatID
	client.joined = true
	members := len(room)
	rooms := len(h.rooms)
	h.mu.Unlock()

	metrics.RelayRooms.Set(float64(rooms))
	logging.Debug().Int("chat_id", chatID).Int("members", members).Msg("client joined room")
}

// removeFromRoomLocked detaches a client from its room, dropping the
// room when it empties. Caller holds h.mu.
func (h *Hub) removeFromRoomLocked(client *Client) {
	if !client.joined {
		return
	}
	if room, ok := h.rooms[client.room]; ok {
		delete(room, client)
		if len(room) == 0 {
			delete(h.rooms, client.room)
		}
	}
	client.joined = false
}

// broadcastToRoom sends a message to every member of a room in client
// ID order. Stable ordering keeps delivery reproducible across runs.
func (h *Hub) broadcastToRoom(chatID int, msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[chatID]
	if !ok {
		// Empty room: broadcast is a no-op.
		return
	}

	members := make([]*Client, 0, len(room))
	for client := range room {
		members = append(members, client)
	}
	sort.Slice(members, func(i, j int) bool {
		return members[i].id < members[j].id
	})

	var toRemove []*Client
	for _, client := range members {
		select {
		case client.send <- msg:
		default:
			// Channel full or closed, drop the client.
			toRemove = append(toRemove, client)
		}
	}

	for _, client := range toRemove {
		close(client.send)
		delete(h.clients, client)
		h.removeFromRoomLocked(client)
	}
}

func (h *Hub) logGracefulShutdown(ctx context.Context) {
	clientCount := h.GetClientCount()
	h.closeAllClients()

	logging.Info().
		Str("component", "relay-hub").
		Str("reason", string(getShutdownReason(ctx))).
		Int("clients_closed", clientCount).
		Msg("relay hub stopped")
}

func getShutdownReason(ctx context.Context) ShutdownReason {
	switch ctx.Err() {
	case context.Canceled:
		return ShutdownReasonContextCanceled
	case context.DeadlineExceeded:
		return ShutdownReasonContextDeadline
	default:
		return ShutdownReasonContextCanceled
	}
}

// closeAllClients closes every connected client in ID order.
func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})

	for _, client := range clients {
		close(client.send)
		delete(h.clients, client)
		h.removeFromRoomLocked(client)
	}
	logging.Info().Msg("closed all relay clients during shutdown")
}

// GetClientCount returns the number of connected clients.
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// GetRoomSize returns the number of clients joined to a room.
func (h *Hub) GetRoomSize(chatID int) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[chatID])
}
