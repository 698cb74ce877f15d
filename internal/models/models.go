// Pictonet - Minimal Social Network with Image and Audio Sharing
// Copyright 2026 Pictonet contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pictonet/pictonet

// Package models defines the core domain records shared across the
// database, relay and API layers.
package models

import "time"

// User is a registered account. PasswordHash is never serialized.
type User struct {
	ID           int       `json:"id"`
	Nickname     string    `json:"nickname"`
	Avatar       string    `json:"avatar,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Post is a feed entry owned by a user. Image and Audio hold media
// references under /uploads/; either may be empty but not both.
type Post struct {
	ID        int       `json:"id"`
	FkUser    int       `json:"fk_user"`
	Image     string    `json:"image,omitempty"`
	Audio     string    `json:"audio,omitempty"`
	CreatedAt time.Time `json:"timestamp"`
}

// UserSummary is the embedded author view returned with feed entries.
type UserSummary struct {
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar,omitempty"`
}

// FeedPost is a post joined with its author for the public feed.
type FeedPost struct {
	ID        int         `json:"id"`
	Image     string      `json:"image,omitempty"`
	Audio     string      `json:"audio,omitempty"`
	CreatedAt time.Time   `json:"timestamp"`
	User      UserSummary `json:"user"`
}

// Chat is a conversation pairing between two users. Pairs are not
// deduplicated: (a,b) and (b,a) are distinct rows.
type Chat struct {
	ID        int       `json:"id"`
	FkUserA   int       `json:"user_1"`
	FkUserB   int       `json:"user_2"`
	CreatedAt time.Time `json:"created_at"`
}

// Participants returns both member IDs of the chat.
func (c Chat) Participants() (int, int) {
	return c.FkUserA, c.FkUserB
}

// HasParticipant reports whether the given user is a member of the chat.
func (c Chat) HasParticipant(userID int) bool {
	return c.FkUserA == userID || c.FkUserB == userID
}

// Message is a chat message carrying at least one media reference.
type Message struct {
	ID        int       `json:"id"`
	FkChat    int       `json:"fk_chat"`
	FkAuthor  int       `json:"fk_author"`
	FkImg     string    `json:"fk_img,omitempty"`
	FkAudio   string    `json:"fk_audio,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// HasAttachment reports whether the message carries any media.
func (m Message) HasAttachment() bool {
	return m.FkImg != "" || m.FkAudio != ""
}
