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

// CreatePost inserts a new post owned by fkUser. image is required,
// audio optional; ownership is never transferred.
func (db *DB) CreatePost(ctx context.Context, fkUser int, image, audio string) (post *models.Post, err error) {
	defer func(start time.Time) { observe("insert", "posts", start, err) }(time.Now())

	post = &models.Post{
		FkUser: fkUser,
		Image:  image,
		Audio:  audio,
	}

	err = db.conn.QueryRowContext(ctx,
		`INSERT INTO posts (fk_user, image, audio)
		 VALUES (?, ?, ?)
		 RETURNING id, created_at`,
		fkUser, image, audio,
	).Scan(&post.ID, &post.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	return post, nil
}

// ListFeed returns all posts joined with their authors, newest first.
// The insert and this join are separate trips; there is no transaction
// around post creation and feed reads.
func (db *DB) ListFeed(ctx context.Context) (feed []models.FeedPost, err error) {
	defer func(start time.Time) { observe("select", "posts", start, err) }(time.Now())

	rows, err := db.conn.QueryContext(ctx,
		`SELECT p.id, p.image, p.audio, p.created_at, u.nickname, u.avatar
		 FROM posts p JOIN users u ON u.id = p.fk_user
		 ORDER BY p.created_at DESC, p.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query feed: %w", err)
	}
	defer closeWithLog(rows, "feed rows")

	feed = make([]models.FeedPost, 0)
	for rows.Next() {
		var p models.FeedPost
		if err := rows.Scan(&p.ID, &p.Image, &p.Audio, &p.CreatedAt, &p.User.Nickname, &p.User.Avatar); err != nil {
			return nil, fmt.Errorf("failed to scan feed post: %w", err)
		}
		feed = append(feed, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("feed row iteration failed: %w", err)
	}

	return feed, nil
}

// ListPostsByUser returns the posts owned by a user, newest first.
func (db *DB) ListPostsByUser(ctx context.Context, userID int) ([]models.Post, error) {
	return db.queryPosts(ctx,
		`SELECT id, fk_user, image, audio, created_at
		 FROM posts WHERE fk_user = ? ORDER BY created_at DESC, id DESC`, userID)
}

func (db *DB) queryPosts(ctx context.Context, query string, args ...any) ([]models.Post, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query posts: %w", err)
	}
	defer closeWithLog(rows, "posts rows")

	posts := make([]models.Post, 0)
	for rows.Next() {
		var p models.Post
		if err := rows.Scan(&p.ID, &p.FkUser, &p.Image, &p.Audio, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("post row iteration failed: %w", err)
	}

	return posts, nil
}
