// Pictonet - Minimal Social Network with Image and Audio Sharing
// Copyright 2026 Pictonet contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pictonet/pictonet

package relay

import (
	"context"
	"testing"
	"time"

	"github.com/pictonet/pictonet/internal/models"
)

func TestRoomBusRoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping embedded NATS test in short mode")
	}

	srv, err := NewEmbeddedServer(-1)
	if err != nil {
		t.Fatalf("failed to start embedded NATS server: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})

	if !srv.IsRunning() {
		t.Fatal("embedded server not running")
	}

	hub := setupHub(t)
	bus, err := NewRoomBus(srv.ClientURL(), hub)
	if err != nil {
		t.Fatalf("failed to connect room bus: %v", err)
	}
	t.Cleanup(bus.Close)

	if err := bus.Start(); err != nil {
		t.Fatalf("failed to start room bus: %v", err)
	}

	member := createTestClient(t, hub)
	hub.Join(member, 7)
	waitFor(t, func() bool { return hub.GetRoomSize(7) == 1 })

	sent := &models.Message{
		ID:        12,
		FkChat:    7,
		FkAuthor:  3,
		FkImg:     "/uploads/3/image_1700000000.123.png",
		Timestamp: time.Now().UTC().Truncate(time.Millisecond),
	}
	if err := bus.Publish(sent); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	msg := receiveMessage(t, member)
	if msg.Type != EventTypeNewMessage {
		t.Fatalf("message type = %q, want %q", msg.Type, EventTypeNewMessage)
	}
	got, ok := msg.Data.(*models.Message)
	if !ok {
		t.Fatalf("payload type = %T", msg.Data)
	}
	if got.ID != sent.ID || got.FkChat != sent.FkChat || got.FkImg != sent.FkImg {
		t.Errorf("received %+v, want %+v", got, sent)
	}
}

func TestRoomBusIgnoresForeignSubjects(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping embedded NATS test in short mode")
	}

	srv, err := NewEmbeddedServer(-1)
	if err != nil {
		t.Fatalf("failed to start embedded NATS server: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})

	hub := setupHub(t)
	bus, err := NewRoomBus(srv.ClientURL(), hub)
	if err != nil {
		t.Fatalf("failed to connect room bus: %v", err)
	}
	t.Cleanup(bus.Close)
	if err := bus.Start(); err != nil {
		t.Fatalf("failed to start room bus: %v", err)
	}

	member := createTestClient(t, hub)
	hub.Join(member, 7)
	waitFor(t, func() bool { return hub.GetRoomSize(7) == 1 })

	// Non-numeric room key is dropped, not delivered and not fatal.
	if err := bus.conn.Publish("chat.not-a-number", []byte(`{}`)); err != nil {
		t.Fatalf("raw publish failed: %v", err)
	}
	if err := bus.conn.Flush(); err != nil {
		t.Fatalf("flush failed: %v", err)
	}

	select {
	case msg := <-member.send:
		t.Errorf("unexpected delivery: %+v", msg)
	case <-time.After(200 * time.Millisecond):
	}
}
