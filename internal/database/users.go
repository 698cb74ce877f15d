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

// CreateUser inserts a new user. Returns ErrDuplicateName if the
// nickname is already taken.
func (db *DB) CreateUser(ctx context.Context, nickname, passwordHash, avatar string) (user *models.User, err error) {
	defer func(start time.Time) { observe("insert", "users", start, err) }(time.Now())

	// Pre-check gives the common case a clean error; the unique
	// constraint backstops concurrent registrations.
	if _, lookupErr := db.GetUserByNickname(ctx, nickname); lookupErr == nil {
		return nil, ErrDuplicateName
	} else if !errors.Is(lookupErr, ErrNotFound) {
		return nil, lookupErr
	}

	user = &models.User{
		Nickname:     nickname,
		Avatar:       avatar,
		PasswordHash: passwordHash,
	}

	err = db.conn.QueryRowContext(ctx,
		`INSERT INTO users (nickname, avatar, password_hash)
		 VALUES (?, ?, ?)
		 RETURNING id, created_at`,
		nickname, avatar, passwordHash,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateName
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// GetUserByID fetches a user by its identifier.
func (db *DB) GetUserByID(ctx context.Context, id int) (*models.User, error) {
	return db.scanUser(db.conn.QueryRowContext(ctx,
		`SELECT id, nickname, avatar, password_hash, created_at
		 FROM users WHERE id = ?`, id))
}

// GetUserByNickname fetches a user by its display name.
func (db *DB) GetUserByNickname(ctx context.Context, nickname string) (*models.User, error) {
	return db.scanUser(db.conn.QueryRowContext(ctx,
		`SELECT id, nickname, avatar, password_hash, created_at
		 FROM users WHERE nickname = ?`, nickname))
}

// UpdateUserAvatar replaces the avatar reference for a user.
func (db *DB) UpdateUserAvatar(ctx context.Context, userID int, avatar string) error {
	result, err := db.conn.ExecContext(ctx,
		`UPDATE users SET avatar = ? WHERE id = ?`, avatar, userID)
	if err != nil {
		return fmt.Errorf("failed to update avatar: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *DB) scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.ID, &user.Nickname, &user.Avatar, &user.PasswordHash, &user.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return user, nil
}
