// Pictonet - Minimal Social Network with Image and Audio Sharing
// Copyright 2026 Pictonet contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pictonet/pictonet

package media

import (
	"encoding/base64"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pictonet/pictonet/internal/config"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(&config.MediaConfig{
		Root:     t.TempDir(),
		MaxBytes: 1 << 20,
	})
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	return store
}

func TestStoreDataURIRoundTrip(t *testing.T) {
	store := setupStore(t)

	original := []byte("not really a png")
	payload := "data:image/png;base64," + base64.StdEncoding.EncodeToString(original)

	ref, err := store.Store(payload, "7", KindImage)
	if err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	if !strings.HasPrefix(ref, "/uploads/7/image_") {
		t.Errorf("reference = %q, want /uploads/7/image_... prefix", ref)
	}
	if !strings.HasSuffix(ref, ".png") {
		t.Errorf("reference = %q, want .png suffix", ref)
	}

	// Fetching via the returned reference yields the decoded bytes.
	filename := ref[strings.LastIndexByte(ref, '/')+1:]
	path, err := store.FilePath("7", filename)
	if err != nil {
		t.Fatalf("FilePath failed: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading stored file failed: %v", err)
	}
	if string(got) != string(original) {
		t.Errorf("stored bytes = %q, want %q", got, original)
	}
}

func TestStoreBareBase64UsesKindDefault(t *testing.T) {
	store := setupStore(t)

	tests := []struct {
		kind Kind
		ext  string
	}{
		{KindImage, ".png"},
		{KindAudio, ".m4a"},
		{KindAvatar, ".png"},
		{Kind("other"), ".dat"},
	}

	payload := base64.StdEncoding.EncodeToString([]byte("payload"))
	for _, tt := range tests {
		ref, err := store.Store(payload, "3", tt.kind)
		if err != nil {
			t.Fatalf("Store(%s) failed: %v", tt.kind, err)
		}
		if !strings.HasSuffix(ref, tt.ext) {
			t.Errorf("Store(%s) reference = %q, want %s suffix", tt.kind, ref, tt.ext)
		}
	}
}

func TestStoreAudioDataURI(t *testing.T) {
	store := setupStore(t)

	payload := "data:audio/m4a;base64," + base64.StdEncoding.EncodeToString([]byte("audio bytes"))
	ref, err := store.Store(payload, "alice", KindAudio)
	if err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	if !strings.HasPrefix(ref, "/uploads/alice/audio_") || !strings.HasSuffix(ref, ".m4a") {
		t.Errorf("reference = %q, want /uploads/alice/audio_*.m4a", ref)
	}
}

func TestStoreRejectsMalformedPayload(t *testing.T) {
	store := setupStore(t)

	tests := []struct {
		name    string
		payload string
		wantErr error
	}{
		{"empty", "", ErrEmptyPayload},
		{"whitespace", "   ", ErrEmptyPayload},
		{"data URI without data", "data:image/png;base64,", ErrMalformedPayload},
		{"data URI without comma", "data:image/png;base64", ErrMalformedPayload},
		{"invalid base64", "data:image/png;base64,!!!not-base64!!!", ErrMalformedPayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := store.Store(tt.payload, "1", KindImage)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Store error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestStoreUnpaddedBase64(t *testing.T) {
	store := setupStore(t)

	payload := base64.RawStdEncoding.EncodeToString([]byte("x"))
	if _, err := store.Store(payload, "1", KindImage); err != nil {
		t.Errorf("unpadded base64 should decode, got %v", err)
	}
}

func TestStoreEnforcesSizeCeiling(t *testing.T) {
	store, err := NewStore(&config.MediaConfig{Root: t.TempDir(), MaxBytes: 4})
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	payload := base64.StdEncoding.EncodeToString([]byte("five!"))
	if _, err := store.Store(payload, "1", KindImage); !errors.Is(err, ErrPayloadTooLarge) {
		t.Errorf("oversized payload error = %v, want ErrPayloadTooLarge", err)
	}
}

func TestStoreSanitizesOwner(t *testing.T) {
	store := setupStore(t)

	payload := base64.StdEncoding.EncodeToString([]byte("data"))

	ref, err := store.Store(payload, "../../etc", KindImage)
	if err != nil {
		t.Fatalf("Store failed: %v", err)
	}
	// Traversal characters are stripped, not honored.
	if strings.Contains(ref, "..") {
		t.Errorf("reference contains traversal: %q", ref)
	}
	if !strings.HasPrefix(ref, "/uploads/etc/") {
		t.Errorf("reference = %q, want sanitized owner etc", ref)
	}

	if _, err := store.Store(payload, "../..", KindImage); !errors.Is(err, ErrInvalidOwner) {
		t.Errorf("dot-only owner error = %v, want ErrInvalidOwner", err)
	}
}

func TestFilePathRejectsTraversal(t *testing.T) {
	store := setupStore(t)

	path, err := store.FilePath("7", "image_1.png")
	if err != nil {
		t.Fatalf("FilePath failed: %v", err)
	}
	want := filepath.Join(store.Root(), "7", "image_1.png")
	if path != want {
		t.Errorf("FilePath = %q, want %q", path, want)
	}

	if _, err := store.FilePath("..", "passwd"); !errors.Is(err, ErrInvalidOwner) {
		t.Errorf("traversal owner error = %v, want ErrInvalidOwner", err)
	}
	if _, err := store.FilePath("7", "../../passwd"); err == nil {
		// Separators stripped: resolves inside owner dir, never above it.
		p, _ := store.FilePath("7", "../../passwd")
		if !strings.HasPrefix(p, filepath.Join(store.Root(), "7")) {
			t.Errorf("FilePath escaped owner directory: %q", p)
		}
	}
}

func TestStoreBytesForMultipartUploads(t *testing.T) {
	store := setupStore(t)

	ref, err := store.StoreBytes([]byte{0x89, 0x50, 0x4e, 0x47}, "alice", KindAvatar, "")
	if err != nil {
		t.Fatalf("StoreBytes failed: %v", err)
	}
	if !strings.HasPrefix(ref, "/uploads/alice/avatar_") || !strings.HasSuffix(ref, ".png") {
		t.Errorf("reference = %q, want /uploads/alice/avatar_*.png", ref)
	}

	if _, err := store.StoreBytes(nil, "alice", KindAvatar, ""); !errors.Is(err, ErrEmptyPayload) {
		t.Errorf("empty bytes error = %v, want ErrEmptyPayload", err)
	}
}

func TestFractionalTimestampFormat(t *testing.T) {
	store := setupStore(t)

	payload := base64.StdEncoding.EncodeToString([]byte("x"))
	ref, err := store.Store(payload, "1", KindImage)
	if err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	// image_<seconds>.<millis>.png
	filename := ref[strings.LastIndexByte(ref, '/')+1:]
	trimmed := strings.TrimSuffix(strings.TrimPrefix(filename, "image_"), ".png")
	parts := strings.Split(trimmed, ".")
	if len(parts) != 2 || len(parts[1]) != 3 {
		t.Errorf("filename %q does not carry a fractional-second timestamp", filename)
	}
}
