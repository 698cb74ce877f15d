// Pictonet - Minimal Social Network with Image and Audio Sharing
// Copyright 2026 Pictonet contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pictonet/pictonet

package relay

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/pictonet/pictonet/internal/config"
	"github.com/pictonet/pictonet/internal/database"
	"github.com/pictonet/pictonet/internal/media"
	"github.com/pictonet/pictonet/internal/models"
)

// setupService wires a hub, an in-memory database and a temp-dir media
// store, and seeds two users with a chat between them.
func setupService(t *testing.T) (*Service, *Hub, *database.DB, *models.Chat) {
	t.Helper()

	hub := setupHub(t)

	db, err := database.New(&config.DatabaseConfig{
		Path:      ":memory:",
		MaxMemory: "512MB",
		Threads:   2,
	})
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	store, err := media.NewStore(&config.MediaConfig{Root: t.TempDir(), MaxBytes: 1 << 20})
	if err != nil {
		t.Fatalf("failed to create media store: %v", err)
	}

	ctx := context.Background()
	alice, err := db.CreateUser(ctx, "alice", "hash", "")
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	bob, err := db.CreateUser(ctx, "bob", "hash", "")
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	chat, err := db.CreateChat(ctx, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("failed to create chat: %v", err)
	}

	return NewService(hub, store, db), hub, db, chat
}

func imagePayload(content string) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte(content))
}

func TestHandleSendBroadcastsToWholeRoom(t *testing.T) {
	svc, hub, db, chat := setupService(t)

	sender := createTestClient(t, hub)
	receiver := NewClient(hub, nil, nil)
	hub.Register <- receiver
	waitFor(t, func() bool { return hub.GetClientCount() == 2 })

	hub.Join(sender, chat.ID)
	hub.Join(receiver, chat.ID)
	waitFor(t, func() bool { return hub.GetRoomSize(chat.ID) == 2 })

	svc.HandleSend(sender, SendRequest{
		FkChat:   chat.ID,
		FkAuthor: 1,
		Image:    imagePayload("picture"),
	})

	// Broadcast scope is the whole room: the sender receives its own
	// message too, and that is its only acknowledgment.
	senderMsg := receiveMessage(t, sender)
	receiverMsg := receiveMessage(t, receiver)

	for _, msg := range []Message{senderMsg, receiverMsg} {
		if msg.Type != EventTypeNewMessage {
			t.Fatalf("message type = %q, want %q", msg.Type, EventTypeNewMessage)
		}
	}

	a, aok := senderMsg.Data.(*models.Message)
	b, bok := receiverMsg.Data.(*models.Message)
	if !aok || !bok {
		t.Fatalf("broadcast payloads are not messages: %T, %T", senderMsg.Data, receiverMsg.Data)
	}
	if a.ID != b.ID || a.FkImg != b.FkImg || !a.Timestamp.Equal(b.Timestamp) {
		t.Errorf("room members received different messages: %+v vs %+v", a, b)
	}
	if a.FkImg == "" {
		t.Error("expected a persisted image reference")
	}

	history, err := db.ListMessages(context.Background(), chat.ID)
	if err != nil {
		t.Fatalf("ListMessages failed: %v", err)
	}
	if len(history) != 1 || history[0].ID != a.ID {
		t.Errorf("history = %+v, want the broadcast message", history)
	}
}

func TestHandleSendWithoutAttachmentIsRejected(t *testing.T) {
	svc, hub, db, chat := setupService(t)

	sender := createTestClient(t, hub)
	hub.Join(sender, chat.ID)
	waitFor(t, func() bool { return hub.GetRoomSize(chat.ID) == 1 })

	svc.HandleSend(sender, SendRequest{FkChat: chat.ID, FkAuthor: 1})

	// The sender gets an explicit error event instead of a silent drop.
	msg := receiveMessage(t, sender)
	if msg.Type != EventTypeError {
		t.Fatalf("message type = %q, want %q", msg.Type, EventTypeError)
	}
	errData, ok := msg.Data.(ErrorData)
	if !ok {
		t.Fatalf("error payload type = %T", msg.Data)
	}
	if errData.Code != "bad_request" {
		t.Errorf("error code = %q, want bad_request", errData.Code)
	}

	history, err := db.ListMessages(context.Background(), chat.ID)
	if err != nil {
		t.Fatalf("ListMessages failed: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("no row should be persisted, got %d", len(history))
	}
}

func TestHandleSendMalformedAttachmentTreatedAsAbsent(t *testing.T) {
	svc, hub, db, chat := setupService(t)

	sender := createTestClient(t, hub)
	hub.Join(sender, chat.ID)
	waitFor(t, func() bool { return hub.GetRoomSize(chat.ID) == 1 })

	// Image fails to decode, audio persists: the message goes through
	// with only the audio reference.
	svc.HandleSend(sender, SendRequest{
		FkChat:   chat.ID,
		FkAuthor: 1,
		Image:    "data:image/png;base64,!!!broken!!!",
		Audio:    "data:audio/m4a;base64," + base64.StdEncoding.EncodeToString([]byte("sound")),
	})

	msg := receiveMessage(t, sender)
	if msg.Type != EventTypeNewMessage {
		t.Fatalf("message type = %q, want %q", msg.Type, EventTypeNewMessage)
	}
	persisted, ok := msg.Data.(*models.Message)
	if !ok {
		t.Fatalf("payload type = %T", msg.Data)
	}
	if persisted.FkImg != "" {
		t.Errorf("broken image should be absent, got %q", persisted.FkImg)
	}
	if persisted.FkAudio == "" {
		t.Error("audio reference missing")
	}

	history, _ := db.ListMessages(context.Background(), chat.ID)
	if len(history) != 1 {
		t.Errorf("history length = %d, want 1", len(history))
	}
}

func TestHandleSendToUnjoinedRoomStillPersists(t *testing.T) {
	svc, _, db, chat := setupService(t)

	// No connection ever joined this room.
	svc.HandleSend(nil, SendRequest{
		FkChat:   chat.ID,
		FkAuthor: 1,
		Image:    imagePayload("lonely"),
	})

	history, err := db.ListMessages(context.Background(), chat.ID)
	if err != nil {
		t.Fatalf("ListMessages failed: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("history length = %d, want 1 (empty-room send persists)", len(history))
	}
	if history[0].FkImg == "" {
		t.Error("persisted message lacks its image reference")
	}
}
