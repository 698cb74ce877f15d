// Pictonet - Minimal Social Network with Image and Audio Sharing
// Copyright 2026 Pictonet contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pictonet/pictonet

package relay

import (
	"github.com/goccy/go-json"
)

// Event types for the realtime protocol. Clients send join and
// send_message; the server emits new_message and error.
const (
	EventTypeJoin        = "join"
	EventTypeSendMessage = "send_message"
	EventTypeNewMessage  = "new_message"
	EventTypeError       = "error"
	EventTypePing        = "ping"
	EventTypePong        = "pong"
)

// Envelope is an inbound client event with a lazily-decoded payload.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Message is an outbound server event.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// JoinData is the payload of a join event.
type JoinData struct {
	ChatID int `json:"chat_id"`
}

// SendRequest is the payload of a send_message event. Image and Audio
// carry inline-encoded media; at least one must decode successfully
// for the message to persist.
type SendRequest struct {
	FkChat   int    `json:"fk_chat"`
	FkAuthor int    `json:"fk_author"`
	Image    string `json:"image,omitempty"`
	Audio    string `json:"audio,omitempty"`
}

// ErrorData is the payload of an error event sent back to a single
// client.
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MarshalMessage converts an outbound message to JSON.
func MarshalMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}
