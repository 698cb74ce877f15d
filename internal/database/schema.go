// Pictonet - Minimal Social Network with Image and Audio Sharing
// Copyright 2026 Pictonet contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pictonet/pictonet

package database

import (
	"context"
	"fmt"
)

// getSequenceCreationQueries returns the DDL for the ID sequences.
// DuckDB has no AUTO_INCREMENT; sequences feed the id column defaults.
func getSequenceCreationQueries() []string {
	return []string{
		`CREATE SEQUENCE IF NOT EXISTS seq_users_id START 1`,
		`CREATE SEQUENCE IF NOT EXISTS seq_posts_id START 1`,
		`CREATE SEQUENCE IF NOT EXISTS seq_chats_id START 1`,
		`CREATE SEQUENCE IF NOT EXISTS seq_messages_id START 1`,
	}
}

// getTableCreationQueries returns the DDL for all tables.
func getTableCreationQueries() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY DEFAULT nextval('seq_users_id'),
			nickname VARCHAR NOT NULL UNIQUE,
			avatar VARCHAR NOT NULL DEFAULT '',
			password_hash VARCHAR NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT current_timestamp
		)`,
		// fk_* columns are plain integers. Inserts are never checked
		// against the referenced tables; a dangling reference persists.
		`CREATE TABLE IF NOT EXISTS posts (
			id INTEGER PRIMARY KEY DEFAULT nextval('seq_posts_id'),
			fk_user INTEGER NOT NULL,
			image VARCHAR NOT NULL DEFAULT '',
			audio VARCHAR NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL DEFAULT current_timestamp
		)`,
		`CREATE TABLE IF NOT EXISTS chats (
			id INTEGER PRIMARY KEY DEFAULT nextval('seq_chats_id'),
			fk_user_a INTEGER NOT NULL,
			fk_user_b INTEGER NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT current_timestamp
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id INTEGER PRIMARY KEY DEFAULT nextval('seq_messages_id'),
			fk_chat INTEGER NOT NULL,
			fk_author INTEGER NOT NULL,
			fk_img VARCHAR NOT NULL DEFAULT '',
			fk_audio VARCHAR NOT NULL DEFAULT '',
			ts TIMESTAMP NOT NULL DEFAULT current_timestamp
		)`,
	}
}

// getIndexCreationQueries returns the DDL for secondary indexes.
func getIndexCreationQueries() []string {
	return []string{
		`CREATE INDEX IF NOT EXISTS idx_posts_fk_user ON posts(fk_user)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_fk_chat ON messages(fk_chat)`,
		`CREATE INDEX IF NOT EXISTS idx_chats_users ON chats(fk_user_a, fk_user_b)`,
	}
}

// createTables creates the sequences and tables if they do not exist.
func (db *DB) createTables(ctx context.Context) error {
	for _, query := range getSequenceCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create sequence: %w", err)
		}
	}
	for _, query := range getTableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}

// createIndexes creates secondary indexes if they do not exist.
func (db *DB) createIndexes(ctx context.Context) error {
	for _, query := range getIndexCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}
