// Pictonet - Minimal Social Network with Image and Audio Sharing
// Copyright 2026 Pictonet contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pictonet/pictonet

// Package api exposes the REST and websocket surface.
package api

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/pictonet/pictonet/internal/config"
	"github.com/pictonet/pictonet/internal/database"
	"github.com/pictonet/pictonet/internal/logging"
	"github.com/pictonet/pictonet/internal/media"
	"github.com/pictonet/pictonet/internal/models"
	"github.com/pictonet/pictonet/internal/relay"
)

// dummyHash is compared against when a login names an unknown user, so
// response timing does not reveal whether the nickname exists.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("pictonet-placeholder"), bcrypt.DefaultCost)

// defaultAvatar is the shared placeholder reference stored for users
// created without an avatar payload.
const defaultAvatar = "/uploads/default/avatar.png"

// Handler wires the stores and the relay into HTTP handlers.
type Handler struct {
	db    *database.DB
	media *media.Store
	hub   *relay.Hub
	relay *relay.Service
	cfg   *config.Config
}

// NewHandler creates a Handler. The hub and relay service may be nil
// when the websocket surface is not served (some tests do this).
func NewHandler(db *database.DB, store *media.Store, hub *relay.Hub, svc *relay.Service, cfg *config.Config) *Handler {
	return &Handler{
		db:    db,
		media: store,
		hub:   hub,
		relay: svc,
		cfg:   cfg,
	}
}

// userResponse is the public view of a user record.
type userResponse struct {
	ID       int    `json:"id"`
	Nickname string `json:"nickname"`
	Avatar   string `json:"avatar"`
}

// loginResponse mirrors userResponse with the original field name used
// by the login flow.
type loginResponse struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

// profileResponse is a user joined with their posts.
type profileResponse struct {
	ID       int           `json:"id"`
	Username string        `json:"username"`
	Avatar   string        `json:"avatar"`
	Posts    []models.Post `json:"posts"`
}

type avatarResponse struct {
	Avatar string `json:"avatar"`
}

// maxJSONBody bounds JSON bodies; inline media payloads are base64 so
// the ceiling is the decoded media limit plus encoding overhead.
func (h *Handler) maxJSONBody() int64 {
	return h.cfg.Media.MaxBytes*2 + 64*1024
}

// createUser persists a user with a hashed credential and an optional
// avatar payload stored under the nickname. Shared by CreateUser and
// Register, which differ only in field names and avatar requirements.
func (h *Handler) createUser(w http.ResponseWriter, r *http.Request, nickname, password, avatar string, avatarRequired bool) {
	avatarRef := ""
	if avatar != "" {
		ref, err := h.media.Store(avatar, nickname, media.KindAvatar)
		if err != nil {
			logging.Warn().Err(err).Str("nickname", sanitizeLogValue(nickname)).Msg("avatar payload rejected")
		} else {
			avatarRef = ref
		}
	}
	if avatarRef == "" {
		if avatarRequired {
			respondError(w, http.StatusBadRequest, CodeBadRequest, "Avatar required", nil)
			return
		}
		avatarRef = defaultAvatar
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		respondInternal(w, err)
		return
	}

	user, err := h.db.CreateUser(r.Context(), nickname, string(hash), avatarRef)
	if err != nil {
		if errors.Is(err, database.ErrDuplicateName) {
			respondError(w, http.StatusBadRequest, CodeDuplicateName, "Nickname already taken", nil)
			return
		}
		respondInternal(w, err)
		return
	}

	logging.Info().Int("user_id", user.ID).Str("nickname", sanitizeLogValue(user.Nickname)).Msg("user created")
	respondJSON(w, http.StatusCreated, userResponse{ID: user.ID, Nickname: user.Nickname, Avatar: user.Avatar})
}

// CreateUser handles POST /users.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeJSON(w, r, h.maxJSONBody(), &req); err != nil {
		respondError(w, http.StatusBadRequest, CodeBadRequest, err.Error(), nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, CodeBadRequest, apiErr.Message, nil)
		return
	}
	h.createUser(w, r, req.Nickname, req.Password, req.Avatar, false)
}

// Register handles POST /register. Unlike POST /users the avatar
// payload is mandatory and its absence gets a fixed message.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, h.maxJSONBody(), &req); err != nil {
		respondError(w, http.StatusBadRequest, CodeBadRequest, err.Error(), nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, CodeBadRequest, apiErr.Message, nil)
		return
	}
	h.createUser(w, r, req.Username, req.Password, req.Avatar, true)
}

// Login handles POST /login. An unknown username and a wrong password
// produce the same response.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, 64*1024, &req); err != nil {
		respondError(w, http.StatusBadRequest, CodeBadRequest, err.Error(), nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, CodeBadRequest, apiErr.Message, nil)
		return
	}

	user, err := h.db.GetUserByNickname(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(req.Password))
			respondError(w, http.StatusUnauthorized, CodeInvalidCredentials, "Invalid credentials", nil)
			return
		}
		respondInternal(w, err)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		respondError(w, http.StatusUnauthorized, CodeInvalidCredentials, "Invalid credentials", nil)
		return
	}

	respondJSON(w, http.StatusOK, loginResponse{ID: user.ID, Username: user.Nickname, Avatar: user.Avatar})
}

// GetUser handles GET /users/{id}.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeBadRequest, "user id must be an integer", nil)
		return
	}

	user, err := h.db.GetUserByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, CodeNotFound, "User not found", nil)
			return
		}
		respondInternal(w, err)
		return
	}

	respondJSON(w, http.StatusOK, userResponse{ID: user.ID, Nickname: user.Nickname, Avatar: user.Avatar})
}

// ListPosts handles GET /posts, returning the feed joined with each
// author's nickname and avatar.
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	feed, err := h.db.ListFeed(r.Context())
	if err != nil {
		respondInternal(w, err)
		return
	}
	respondJSON(w, http.StatusOK, feed)
}

// Upload handles POST /upload. Image and audio persist independently;
// a post with neither is rejected.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	var req uploadRequest
	if err := decodeJSON(w, r, h.maxJSONBody(), &req); err != nil {
		respondError(w, http.StatusBadRequest, CodeBadRequest, err.Error(), nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, CodeBadRequest, apiErr.Message, nil)
		return
	}

	owner := strconv.Itoa(req.FkUserID)
	imageRef := h.storeOptional(req.Image, owner, media.KindImage)
	audioRef := h.storeOptional(req.Audio, owner, media.KindAudio)
	if imageRef == "" && audioRef == "" {
		respondError(w, http.StatusBadRequest, CodeBadRequest, "At least one of image or audio is required", nil)
		return
	}

	post, err := h.db.CreatePost(r.Context(), req.FkUserID, imageRef, audioRef)
	if err != nil {
		respondInternal(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, post)
}

// storeOptional persists a payload and treats decode failure as an
// absent attachment.
func (h *Handler) storeOptional(payload, owner string, kind media.Kind) string {
	if payload == "" {
		return ""
	}
	ref, err := h.media.Store(payload, owner, kind)
	if err != nil {
		logging.Warn().Err(err).Str("kind", string(kind)).Msg("attachment payload rejected")
		return ""
	}
	return ref
}

// GetProfile handles GET /profile/{username}.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	user, err := h.db.GetUserByNickname(r.Context(), username)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, CodeNotFound, "Profile not found", nil)
			return
		}
		respondInternal(w, err)
		return
	}

	posts, err := h.db.ListPostsByUser(r.Context(), user.ID)
	if err != nil {
		respondInternal(w, err)
		return
	}

	respondJSON(w, http.StatusOK, profileResponse{
		ID:       user.ID,
		Username: user.Nickname,
		Avatar:   user.Avatar,
		Posts:    posts,
	})
}

// UpdateAvatar handles POST /profile/{username}/avatar with a
// multipart file upload.
func (h *Handler) UpdateAvatar(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	user, err := h.db.GetUserByNickname(r.Context(), username)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, CodeNotFound, "Profile not found", nil)
			return
		}
		respondInternal(w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.Media.MaxBytes+64*1024)
	file, header, err := r.FormFile("avatar")
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeBadRequest, "multipart field 'avatar' is required", nil)
		return
	}
	defer func() {
		_ = file.Close()
	}()

	data, err := io.ReadAll(io.LimitReader(file, h.cfg.Media.MaxBytes+1))
	if err != nil {
		respondInternal(w, err)
		return
	}
	if int64(len(data)) > h.cfg.Media.MaxBytes {
		respondError(w, http.StatusBadRequest, CodeBadRequest, "avatar file too large", nil)
		return
	}

	ref, err := h.media.StoreBytes(data, user.Nickname, media.KindAvatar, avatarExtension(header))
	if err != nil {
		if errors.Is(err, media.ErrEmptyPayload) || errors.Is(err, media.ErrPayloadTooLarge) {
			respondError(w, http.StatusBadRequest, CodeBadRequest, err.Error(), nil)
			return
		}
		respondInternal(w, err)
		return
	}

	if err := h.db.UpdateUserAvatar(r.Context(), user.ID, ref); err != nil {
		respondInternal(w, err)
		return
	}

	respondJSON(w, http.StatusOK, avatarResponse{Avatar: ref})
}

// avatarExtension derives a file extension from the uploaded filename,
// defaulting to the avatar kind's extension.
func avatarExtension(header *multipart.FileHeader) string {
	ext := strings.TrimPrefix(filepath.Ext(header.Filename), ".")
	if ext == "" {
		return "png"
	}
	return strings.ToLower(ext)
}

// CreateChat handles POST /chats.
func (h *Handler) CreateChat(w http.ResponseWriter, r *http.Request) {
	var req createChatRequest
	if err := decodeJSON(w, r, 64*1024, &req); err != nil {
		respondError(w, http.StatusBadRequest, CodeBadRequest, err.Error(), nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, CodeBadRequest, apiErr.Message, nil)
		return
	}

	chat, err := h.db.CreateChat(r.Context(), req.User1, req.User2)
	if err != nil {
		respondInternal(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, chat)
}

// ListChats handles GET /chats.
func (h *Handler) ListChats(w http.ResponseWriter, r *http.Request) {
	chats, err := h.db.ListChats(r.Context())
	if err != nil {
		respondInternal(w, err)
		return
	}
	respondJSON(w, http.StatusOK, chats)
}

// ListMessages handles GET /messages/{chatId}. History is unbounded
// and in insertion order.
func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	chatID, err := strconv.Atoi(chi.URLParam(r, "chatId"))
	if err != nil {
		respondError(w, http.StatusBadRequest, CodeBadRequest, "chat id must be an integer", nil)
		return
	}

	messages, err := h.db.ListMessages(r.Context(), chatID)
	if err != nil {
		respondInternal(w, err)
		return
	}
	respondJSON(w, http.StatusOK, messages)
}

// ServeUpload handles GET /uploads/{userId}/{filename}, serving stored
// media. Both path components are sanitized before touching the
// filesystem.
func (h *Handler) ServeUpload(w http.ResponseWriter, r *http.Request) {
	owner := chi.URLParam(r, "userId")
	filename := chi.URLParam(r, "filename")

	path, err := h.media.FilePath(owner, filename)
	if err != nil {
		respondError(w, http.StatusNotFound, CodeNotFound, "File not found", nil)
		return
	}

	http.ServeFile(w, r, path)
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Ping(r.Context()); err != nil {
		respondError(w, http.StatusServiceUnavailable, CodeInternalFailure, "database unavailable", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
