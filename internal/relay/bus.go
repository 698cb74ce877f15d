// Pictonet - Minimal Social Network with Image and Audio Sharing
// Copyright 2026 Pictonet contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pictonet/pictonet

package relay

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/nats-io/nats.go"

	"github.com/pictonet/pictonet/internal/logging"
	"github.com/pictonet/pictonet/internal/models"
)

// chatSubjectPrefix namespaces room traffic on the bus. Each room maps
// to one subject: chat.<id>.
const chatSubjectPrefix = "chat."

// chatSubjectWildcard matches all room subjects.
const chatSubjectWildcard = chatSubjectPrefix + ">"

// RoomBus fans messages out over NATS subjects, one subject per room.
// Every server instance subscribes to all rooms and delivers into its
// local hub, so a message published anywhere reaches every member.
type RoomBus struct {
	conn *nats.Conn
	hub  *Hub
	sub  *nats.Subscription
}

// NewRoomBus connects to the NATS server at url.
func NewRoomBus(url string, hub *Hub) (*RoomBus, error) {
	conn, err := nats.Connect(url,
		nats.Name("pictonet-relay"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logging.Warn().Err(err).Msg("room bus disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logging.Info().Str("url", nc.ConnectedUrl()).Msg("room bus reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect room bus: %w", err)
	}

	return &RoomBus{
		conn: conn,
		hub:  hub,
	}, nil
}

// Start subscribes to all room subjects and routes inbound messages
// into the hub.
func (b *RoomBus) Start() error {
	sub, err := b.conn.Subscribe(chatSubjectWildcard, b.handleMessage)
	if err != nil {
		return fmt.Errorf("failed to subscribe to room subjects: %w", err)
	}
	b.sub = sub

	logging.Info().Str("subject", chatSubjectWildcard).Msg("room bus subscribed")
	return nil
}

// Publish sends a materialized message to its room's subject.
func (b *RoomBus) Publish(msg *models.Message) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message for bus: %w", err)
	}
	subject := chatSubjectPrefix + strconv.Itoa(msg.FkChat)
	if err := b.conn.Publish(subject, payload); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}
	return nil
}

// handleMessage delivers one bus message into the local hub room.
func (b *RoomBus) handleMessage(natsMsg *nats.Msg) {
	chatID, err := chatIDFromSubject(natsMsg.Subject)
	if err != nil {
		logging.Warn().Err(err).Str("subject", natsMsg.Subject).Msg("ignoring bus message with bad subject")
		return
	}

	var msg models.Message
	if err := json.Unmarshal(natsMsg.Data, &msg); err != nil {
		logging.Warn().Err(err).Str("subject", natsMsg.Subject).Msg("ignoring malformed bus message")
		return
	}

	b.hub.Broadcast(chatID, Message{Type: EventTypeNewMessage, Data: &msg})
}

// chatIDFromSubject extracts the room key from a chat.<id> subject.
func chatIDFromSubject(subject string) (int, error) {
	raw, ok := strings.CutPrefix(subject, chatSubjectPrefix)
	if !ok {
		return 0, fmt.Errorf("subject %q lacks prefix %q", subject, chatSubjectPrefix)
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("subject %q has non-numeric room key: %w", subject, err)
	}
	return id, nil
}

// Close drains the subscription and closes the connection.
func (b *RoomBus) Close() {
	if b.sub != nil {
		if err := b.sub.Drain(); err != nil {
			logging.Warn().Err(err).Msg("failed to drain room bus subscription")
		}
	}
	if b.conn != nil {
		b.conn.Close()
	}
}
