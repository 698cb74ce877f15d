// Pictonet - Minimal Social Network with Image and Audio Sharing
// Copyright 2026 Pictonet contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pictonet/pictonet

package models

import (
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func TestUserPasswordHashNeverSerialized(t *testing.T) {
	u := User{
		ID:           1,
		Nickname:     "alice",
		PasswordHash: "$2a$10$secretsecret",
		CreatedAt:    time.Now(),
	}

	data, err := json.Marshal(u)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if strings.Contains(string(data), "secret") {
		t.Errorf("password hash leaked into JSON: %s", data)
	}
	if !strings.Contains(string(data), `"nickname":"alice"`) {
		t.Errorf("nickname missing from JSON: %s", data)
	}
}

func TestChatParticipants(t *testing.T) {
	c := Chat{ID: 1, FkUserA: 3, FkUserB: 7}

	a, b := c.Participants()
	if a != 3 || b != 7 {
		t.Errorf("Participants() = (%d, %d), want (3, 7)", a, b)
	}

	tests := []struct {
		userID int
		want   bool
	}{
		{3, true},
		{7, true},
		{5, false},
		{0, false},
	}
	for _, tt := range tests {
		if got := c.HasParticipant(tt.userID); got != tt.want {
			t.Errorf("HasParticipant(%d) = %v, want %v", tt.userID, got, tt.want)
		}
	}
}

func TestMessageHasAttachment(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
		want bool
	}{
		{"image only", Message{FkImg: "/uploads/1/image_1.png"}, true},
		{"audio only", Message{FkAudio: "/uploads/1/audio_1.m4a"}, true},
		{"both", Message{FkImg: "/uploads/1/a.png", FkAudio: "/uploads/1/b.m4a"}, true},
		{"neither", Message{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.msg.HasAttachment(); got != tt.want {
				t.Errorf("HasAttachment() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMessageJSONFieldNames(t *testing.T) {
	m := Message{
		ID:       42,
		FkChat:   5,
		FkAuthor: 9,
		FkImg:    "/uploads/9/image_1700000000.123.png",
	}

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	for _, field := range []string{`"fk_chat":5`, `"fk_author":9`, `"fk_img":`} {
		if !strings.Contains(string(data), field) {
			t.Errorf("expected %s in JSON, got %s", field, data)
		}
	}
	if strings.Contains(string(data), "fk_audio") {
		t.Errorf("empty fk_audio should be omitted, got %s", data)
	}
}
