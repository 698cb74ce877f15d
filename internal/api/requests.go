// Pictonet - Minimal Social Network with Image and Audio Sharing
// Copyright 2026 Pictonet contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pictonet/pictonet

package api

// createUserRequest is the body of POST /users. Avatar is an optional
// base64 or data-URI payload stored at creation time.
type createUserRequest struct {
	Nickname string `json:"nickname" validate:"required,min=1,max=64"`
	Password string `json:"password" validate:"required,min=1,max=128"`
	Avatar   string `json:"avatar"`
}

// registerRequest is the body of POST /register. The avatar payload is
// mandatory here; its absence is reported with a fixed message.
type registerRequest struct {
	Username string `json:"username" validate:"required,min=1,max=64"`
	Password string `json:"password" validate:"required,min=1,max=128"`
	Avatar   string `json:"avatar"`
}

// loginRequest is the body of POST /login.
type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// uploadRequest is the body of POST /upload. At least one of Image or
// Audio must decode; both are independently optional payloads.
type uploadRequest struct {
	FkUserID int    `json:"fk_user_id" validate:"required,min=1"`
	Image    string `json:"image"`
	Audio    string `json:"audio"`
}

// createChatRequest is the body of POST /chats. Pairings are not
// deduplicated; posting (a,b) and (b,a) creates two rows.
type createChatRequest struct {
	User1 int `json:"user_1" validate:"required,min=1"`
	User2 int `json:"user_2" validate:"required,min=1"`
}
