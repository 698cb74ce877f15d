// Pictonet - Minimal Social Network with Image and Audio Sharing
// Copyright 2026 Pictonet contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pictonet/pictonet

// Package media decodes inline-encoded upload payloads and writes them
// under a per-owner directory, returning a stable reference path.
//
// Payloads arrive either as data URIs ("data:image/png;base64,....")
// or as bare base64 with no metadata. The store owns the on-disk
// bytes; the database keeps only the returned references.
package media

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pictonet/pictonet/internal/config"
	"github.com/pictonet/pictonet/internal/logging"
	"github.com/pictonet/pictonet/internal/metrics"
)

// Kind classifies an upload and selects the fallback file extension.
type Kind string

const (
	KindImage  Kind = "image"
	KindAudio  Kind = "audio"
	KindAvatar Kind = "avatar"
)

// Errors returned by Store. Callers treat ErrEmptyPayload and
// ErrMalformedPayload as "no attachment" unless a business rule
// requires one.
var (
	ErrEmptyPayload     = errors.New("empty media payload")
	ErrMalformedPayload = errors.New("malformed media payload")
	ErrPayloadTooLarge  = errors.New("media payload exceeds size ceiling")
	ErrInvalidOwner     = errors.New("invalid media owner")
)

// ReferencePrefix is the URL path prefix of all media references.
const ReferencePrefix = "/uploads/"

// Store writes decoded media under a root directory.
type Store struct {
	root     string
	maxBytes int64
}

// NewStore creates a media store rooted at cfg.Root, creating the
// directory if absent.
func NewStore(cfg *config.MediaConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.Root, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create media root %s: %w", cfg.Root, err)
	}
	return &Store{
		root:     cfg.Root,
		maxBytes: cfg.MaxBytes,
	}, nil
}

// Store decodes an inline payload and writes it to
// {root}/{owner}/{kind}_{timestamp}.{ext}, returning the reference
// path /uploads/{owner}/{filename}.
//
// A data URI payload picks its extension from the MIME subtype; a bare
// base64 payload falls back to the default extension for kind.
func (s *Store) Store(payload, owner string, kind Kind) (string, error) {
	data, ext, err := decodePayload(payload, kind)
	if err != nil {
		metrics.RecordMediaStore(string(kind), 0, err)
		return "", err
	}
	return s.StoreBytes(data, owner, kind, ext)
}

// StoreBytes writes already-decoded bytes, for callers that receive raw
// uploads (multipart avatar updates). ext must not contain a dot.
func (s *Store) StoreBytes(data []byte, owner string, kind Kind, ext string) (string, error) {
	if len(data) == 0 {
		return "", ErrEmptyPayload
	}
	if s.maxBytes > 0 && int64(len(data)) > s.maxBytes {
		return "", fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, len(data))
	}

	owner = sanitizeComponent(owner)
	if owner == "" {
		return "", ErrInvalidOwner
	}
	if ext == "" {
		ext = defaultExtension(kind)
	}

	// Concurrent-safe: MkdirAll tolerates the directory appearing
	// between check and creation.
	dir := filepath.Join(s.root, owner)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create owner directory: %w", err)
	}

	filename := fmt.Sprintf("%s_%s.%s", kind, fractionalTimestamp(time.Now()), ext)
	target := filepath.Join(dir, filename)

	if err := os.WriteFile(target, data, 0o640); err != nil {
		metrics.RecordMediaStore(string(kind), 0, err)
		return "", fmt.Errorf("failed to write media file: %w", err)
	}
	metrics.RecordMediaStore(string(kind), len(data), nil)

	logging.Debug().
		Str("owner", owner).
		Str("kind", string(kind)).
		Int("bytes", len(data)).
		Str("reference", ReferencePrefix+owner+"/"+filename).
		Msg("Stored media payload")

	return ReferencePrefix + owner + "/" + filename, nil
}

// FilePath resolves an owner/filename pair from a reference to an
// on-disk path, rejecting traversal attempts. Used by the static file
// handler; never accepts caller-supplied paths directly.
func (s *Store) FilePath(owner, filename string) (string, error) {
	owner = sanitizeComponent(owner)
	filename = sanitizeComponent(filename)
	if owner == "" || filename == "" {
		return "", ErrInvalidOwner
	}
	return filepath.Join(s.root, owner, filename), nil
}

// Root returns the store's root directory.
func (s *Store) Root() string {
	return s.root
}

// decodePayload splits an optional data-URI header off the payload and
// base64-decodes the rest.
func decodePayload(payload string, kind Kind) ([]byte, string, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, "", ErrEmptyPayload
	}

	encoded := payload
	ext := defaultExtension(kind)

	if strings.HasPrefix(payload, "data:") {
		header, rest, found := strings.Cut(payload, ",")
		if !found || rest == "" {
			return nil, "", fmt.Errorf("%w: data URI missing data segment", ErrMalformedPayload)
		}
		encoded = rest
		if mimeExt := extensionFromDataHeader(header); mimeExt != "" {
			ext = mimeExt
		}
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		// Some encoders omit padding.
		data, err = base64.RawStdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %v", ErrMalformedPayload, err)
		}
	}
	if len(data) == 0 {
		return nil, "", ErrEmptyPayload
	}

	return data, ext, nil
}

// extensionFromDataHeader extracts the MIME subtype from a data-URI
// header such as "data:image/png;base64".
func extensionFromDataHeader(header string) string {
	mime := strings.TrimPrefix(header, "data:")
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = mime[:i]
	}
	_, subtype, found := strings.Cut(mime, "/")
	if !found {
		return ""
	}
	return sanitizeComponent(subtype)
}

// defaultExtension returns the fallback extension for a kind when the
// payload carries no MIME type.
func defaultExtension(kind Kind) string {
	switch kind {
	case KindImage:
		return "png"
	case KindAudio:
		return "m4a"
	case KindAvatar:
		return "png"
	default:
		return "dat"
	}
}

// fractionalTimestamp formats a time as unix seconds with millisecond
// precision, e.g. "1700000000.123".
func fractionalTimestamp(t time.Time) string {
	return fmt.Sprintf("%d.%03d", t.Unix(), t.Nanosecond()/1e6)
}

// sanitizeComponent strips path separators and filesystem-unsafe
// characters from a single path component.
func sanitizeComponent(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_' || r == '.':
			b.WriteRune(r)
		}
	}
	out := b.String()
	// A dot-only component would still escape the directory.
	if strings.Trim(out, ".") == "" {
		return ""
	}
	return out
}
