// Pictonet - Minimal Social Network with Image and Audio Sharing
// Copyright 2026 Pictonet contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pictonet/pictonet

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/pictonet/pictonet/internal/models"
)

// CreateMessage inserts a chat message with the current UTC timestamp.
// At least one of fkImg and fkAudio must be set; the relay enforces
// this before calling.
func (db *DB) CreateMessage(ctx context.Context, fkChat, fkAuthor int, fkImg, fkAudio string) (msg *models.Message, err error) {
	defer func(start time.Time) { observe("insert", "messages", start, err) }(time.Now())

	msg = &models.Message{
		FkChat:   fkChat,
		FkAuthor: fkAuthor,
		FkImg:    fkImg,
		FkAudio:  fkAudio,
	}

	err = db.conn.QueryRowContext(ctx,
		`INSERT INTO messages (fk_chat, fk_author, fk_img, fk_audio, ts)
		 VALUES (?, ?, ?, ?, ?)
		 RETURNING id, ts`,
		fkChat, fkAuthor, fkImg, fkAudio, time.Now().UTC(),
	).Scan(&msg.ID, &msg.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("failed to create message: %w", err)
	}

	return msg, nil
}

// ListMessages returns the full history of a chat in non-decreasing
// timestamp order, ties broken by insertion order.
func (db *DB) ListMessages(ctx context.Context, chatID int) (messages []models.Message, err error) {
	defer func(start time.Time) { observe("select", "messages", start, err) }(time.Now())

	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, fk_chat, fk_author, fk_img, fk_audio, ts
		 FROM messages WHERE fk_chat = ? ORDER BY ts, id`, chatID)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer closeWithLog(rows, "messages rows")

	messages = make([]models.Message, 0)
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.FkChat, &m.FkAuthor, &m.FkImg, &m.FkAudio, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("message row iteration failed: %w", err)
	}

	return messages, nil
}
