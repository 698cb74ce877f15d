// Pictonet - Minimal Social Network with Image and Audio Sharing
// Copyright 2026 Pictonet contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pictonet/pictonet

package relay

import (
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/pictonet/pictonet/internal/logging"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 32 * 1024 * 1024 // inline media payloads are large
)

// SendHandler handles a send_message event from a client. The sender
// learns of success only by receiving its own broadcast; failures are
// reported through client.SendError.
type SendHandler interface {
	HandleSend(client *Client, req SendRequest)
}

// clientIDCounter generates unique, monotonically increasing client
// IDs so broadcast iteration order is stable.
var clientIDCounter atomic.Uint64

// Client is a middleman between a websocket connection and the hub.
type Client struct {
	id      uint64
	hub     *Hub
	conn    *websocket.Conn
	handler SendHandler
	send    chan Message

	// room and joined are owned by the hub; only hub methods touch
	// them, under the hub mutex.
	room   int
	joined bool
}

// NewClient creates a new Client with a unique ID.
func NewClient(hub *Hub, conn *websocket.Conn, handler SendHandler) *Client {
	return &Client{
		id:      clientIDCounter.Add(1),
		hub:     hub,
		conn:    conn,
		handler: handler,
		send:    make(chan Message, 256),
	}
}

// ID returns the client's unique identifier.
func (c *Client) ID() uint64 {
	return c.id
}

// SendError pushes an error event to this client only. Drops the event
// if the client's send buffer is full.
func (c *Client) SendError(code, message string) {
	select {
	case c.send <- Message{Type: EventTypeError, Data: ErrorData{Code: code, Message: message}}:
	default:
	}
}

// readPump pumps events from the websocket connection into the hub.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister <- c
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		logging.Error().Err(err).Msg("failed to set read deadline")
		return
	}

	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var env Envelope
		if err := c.conn.ReadJSON(&env); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logging.Error().Err(err).Msg("unexpected websocket close error")
			}
			break
		}
		c.dispatch(env)
	}
}

// dispatch routes a single inbound event.
func (c *Client) dispatch(env Envelope) {
	switch env.Type {
	case EventTypeJoin:
		var data JoinData
		if err := json.Unmarshal(env.Data, &data); err != nil {
			c.SendError("bad_request", "malformed join payload")
			return
		}
		c.hub.Join(c, data.ChatID)

	case EventTypeSendMessage:
		var req SendRequest
		if err := json.Unmarshal(env.Data, &req); err != nil {
			c.SendError("bad_request", "malformed send_message payload")
			return
		}
		if c.handler == nil {
			c.SendError("internal_failure", "no message handler configured")
			return
		}
		c.handler.HandleSend(c, req)

	case EventTypePing:
		select {
		case c.send <- Message{Type: EventTypePong}:
		default:
		}

	default:
		logging.Debug().Str("type", env.Type).Msg("ignoring unknown relay event")
	}
}

// writePump pumps messages from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logging.Error().Err(err).Msg("failed to set write deadline")
				return
			}

			if !ok {
				// The hub closed the channel.
				if err := c.conn.WriteMessage(websocket.CloseMessage, []byte{}); err != nil {
					logging.Error().Err(err).Msg("failed to write close message")
				}
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				logging.Error().Err(err).Msg("failed to write JSON message")
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logging.Error().Err(err).Msg("failed to set write deadline for ping")
				return
			}

			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Start begins reading and writing for the client.
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}
