// Pictonet - Minimal Social Network with Image and Audio Sharing
// Copyright 2026 Pictonet contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pictonet/pictonet

package relay

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/pictonet/pictonet/internal/database"
	"github.com/pictonet/pictonet/internal/logging"
	"github.com/pictonet/pictonet/internal/media"
	"github.com/pictonet/pictonet/internal/metrics"
	"github.com/pictonet/pictonet/internal/models"
)

// persistTimeout bounds the store and database work for one send.
const persistTimeout = 30 * time.Second

// Service implements the send pipeline: persist attachments, insert
// the message row, broadcast the materialized message to the room.
type Service struct {
	hub   *Hub
	store *media.Store
	db    *database.DB
	bus   *RoomBus
}

// NewService creates the relay service. The bus is optional; without
// one, broadcasts go straight to the local hub.
func NewService(hub *Hub, store *media.Store, db *database.DB) *Service {
	return &Service{
		hub:   hub,
		store: store,
		db:    db,
	}
}

// SetBus routes broadcasts through a NATS room bus instead of the
// local hub. The bus delivers back into the hub on subscription.
func (s *Service) SetBus(bus *RoomBus) {
	s.bus = bus
}

// HandleSend processes a send_message event.
//
// Each attachment persists independently; a failed attachment is
// treated as absent, not as a fatal error. A send that ends up with no
// attachment at all is rejected with an error event to the sender; no
// row is written and nothing is broadcast. Sends to rooms nobody has
// joined still persist; the empty broadcast is a no-op.
func (s *Service) HandleSend(client *Client, req SendRequest) {
	owner := strconv.Itoa(req.FkAuthor)

	imgRef := s.storeAttachment(req.Image, owner, media.KindImage)
	audioRef := s.storeAttachment(req.Audio, owner, media.KindAudio)

	if imgRef == "" && audioRef == "" {
		logging.Warn().
			Int("chat_id", req.FkChat).
			Int("author", req.FkAuthor).
			Msg("rejecting message with no persisted attachment")
		metrics.RelayMessagesRejected.Inc()
		if client != nil {
			client.SendError("bad_request", "message requires at least one attachment")
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	msg, err := s.db.CreateMessage(ctx, req.FkChat, req.FkAuthor, imgRef, audioRef)
	if err != nil {
		logging.Error().Err(err).Int("chat_id", req.FkChat).Msg("failed to persist message")
		if client != nil {
			client.SendError("internal_failure", "failed to persist message")
		}
		return
	}

	s.publish(msg)
}

// storeAttachment persists one inline payload, returning its reference
// or "" when the payload is absent or failed to decode.
func (s *Service) storeAttachment(payload, owner string, kind media.Kind) string {
	if payload == "" {
		return ""
	}
	ref, err := s.store.Store(payload, owner, kind)
	if err != nil {
		if errors.Is(err, media.ErrEmptyPayload) {
			return ""
		}
		logging.Warn().Err(err).Str("kind", string(kind)).Msg("attachment failed to persist, treating as absent")
		return ""
	}
	return ref
}

// publish fans the materialized message out to the room, through the
// bus when one is attached.
func (s *Service) publish(msg *models.Message) {
	metrics.RelayMessagesBroadcast.Inc()
	if s.bus != nil {
		if err := s.bus.Publish(msg); err != nil {
			logging.Error().Err(err).Int("chat_id", msg.FkChat).Msg("bus publish failed, broadcasting locally")
			s.hub.Broadcast(msg.FkChat, Message{Type: EventTypeNewMessage, Data: msg})
		}
		return
	}
	s.hub.Broadcast(msg.FkChat, Message{Type: EventTypeNewMessage, Data: msg})
}
