// Pictonet - Minimal Social Network with Image and Audio Sharing
// Copyright 2026 Pictonet contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pictonet/pictonet

package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pictonet/pictonet/internal/logging"
	"github.com/pictonet/pictonet/internal/relay"
)

// getUpgrader builds the websocket upgrader with origin checking and a
// handshake timeout.
func (h *Handler) getUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin validates the Origin header against the
// configured CORS origins. Requests without an Origin header are
// allowed: non-browser clients omit it, and browsers always send it.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if h.cfg == nil {
		return true
	}
	for _, allowed := range h.cfg.API.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	logging.Warn().Str("origin", sanitizeLogValue(origin)).Msg("websocket connection rejected")
	return false
}

// WebSocket handles GET /ws, upgrading the connection and handing it
// to the relay. Room membership starts empty; the client must send a
// join event before it receives anything.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil || h.relay == nil {
		respondError(w, http.StatusServiceUnavailable, CodeInternalFailure, "realtime relay not available", nil)
		return
	}

	upgrader := h.getUpgrader()
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote an HTTP error to the client.
		logging.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := relay.NewClient(h.hub, conn, h.relay)
	h.hub.Register <- client
	client.Start()
}
