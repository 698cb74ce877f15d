// Pictonet - Minimal Social Network with Image and Audio Sharing
// Copyright 2026 Pictonet contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pictonet/pictonet

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pictonet/pictonet/internal/models"
)

// CreateChat inserts a new chat pairing. Pairs are not deduplicated:
// (a,b) and (b,a) create two distinct chats.
func (db *DB) CreateChat(ctx context.Context, fkUserA, fkUserB int) (chat *models.Chat, err error) {
	defer func(start time.Time) { observe("insert", "chats", start, err) }(time.Now())

	chat = &models.Chat{
		FkUserA: fkUserA,
		FkUserB: fkUserB,
	}

	err = db.conn.QueryRowContext(ctx,
		`INSERT INTO chats (fk_user_a, fk_user_b)
		 VALUES (?, ?)
		 RETURNING id, created_at`,
		fkUserA, fkUserB,
	).Scan(&chat.ID, &chat.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat: %w", err)
	}

	return chat, nil
}

// GetChatByID fetches a chat by its identifier.
func (db *DB) GetChatByID(ctx context.Context, id int) (*models.Chat, error) {
	chat := &models.Chat{}
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, fk_user_a, fk_user_b, created_at
		 FROM chats WHERE id = ?`, id,
	).Scan(&chat.ID, &chat.FkUserA, &chat.FkUserB, &chat.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan chat: %w", err)
	}
	return chat, nil
}

// ListChats returns all chat pairings in creation order.
func (db *DB) ListChats(ctx context.Context) ([]models.Chat, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, fk_user_a, fk_user_b, created_at
		 FROM chats ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query chats: %w", err)
	}
	defer closeWithLog(rows, "chats rows")

	chats := make([]models.Chat, 0)
	for rows.Next() {
		var c models.Chat
		if err := rows.Scan(&c.ID, &c.FkUserA, &c.FkUserB, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat: %w", err)
		}
		chats = append(chats, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("chat row iteration failed: %w", err)
	}

	return chats, nil
}
