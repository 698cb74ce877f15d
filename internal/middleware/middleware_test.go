// Pictonet - Minimal Social Network with Image and Audio Sharing
// Copyright 2026 Pictonet contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pictonet/pictonet

package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pictonet/pictonet/internal/logging"
)

func TestPrometheusMetricsPassesThrough(t *testing.T) {
	handler := PrometheusMetrics(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		if _, err := w.Write([]byte("ok")); err != nil {
			t.Fatalf("write: %v", err)
		}
	})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodPost, "/users", nil))

	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	if rec.Body.String() != "ok" {
		t.Errorf("unexpected body %q", rec.Body.String())
	}
}

func TestRequestIDGeneratesHeader(t *testing.T) {
	var ctxID string
	handler := RequestID(func(w http.ResponseWriter, r *http.Request) {
		ctxID, _ = logging.RequestIDFromContext(r.Context())
	})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/posts", nil))

	headerID := rec.Header().Get("X-Request-ID")
	if headerID == "" {
		t.Fatal("expected X-Request-ID header to be set")
	}
	if ctxID != headerID {
		t.Errorf("context ID %q does not match header %q", ctxID, headerID)
	}
}

func TestRequestIDPreservesUpstreamID(t *testing.T) {
	handler := RequestID(func(w http.ResponseWriter, r *http.Request) {})

	req := httptest.NewRequest(http.MethodGet, "/posts", nil)
	req.Header.Set("X-Request-ID", "upstream-id")
	rec := httptest.NewRecorder()
	handler(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "upstream-id" {
		t.Errorf("expected upstream ID to be kept, got %q", got)
	}
}

func TestCompressionGzipsWhenAccepted(t *testing.T) {
	payload := strings.Repeat("feed entry ", 100)
	handler := Compression(func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte(payload)); err != nil {
			t.Fatalf("write: %v", err)
		}
	})

	req := httptest.NewRequest(http.MethodGet, "/posts", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Header().Get("Content-Encoding") != "gzip" {
		t.Fatal("expected gzip Content-Encoding")
	}
	gz, err := gzip.NewReader(rec.Body)
	if err != nil {
		t.Fatalf("gzip reader: %v", err)
	}
	decoded, err := io.ReadAll(gz)
	if err != nil {
		t.Fatalf("decompress: %v", err)
	}
	if string(decoded) != payload {
		t.Error("decompressed body does not match original")
	}
}

func TestCompressionSkipsUploads(t *testing.T) {
	handler := Compression(func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte{0x89, 0x50, 0x4e, 0x47}); err != nil {
			t.Fatalf("write: %v", err)
		}
	})

	req := httptest.NewRequest(http.MethodGet, "/uploads/alice/avatar_1.png", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	handler(rec, req)

	if rec.Header().Get("Content-Encoding") == "gzip" {
		t.Error("media files must not be recompressed")
	}
}

func TestCompressionSkipsWithoutAcceptHeader(t *testing.T) {
	handler := Compression(func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("plain")); err != nil {
			t.Fatalf("write: %v", err)
		}
	})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/posts", nil))

	if rec.Header().Get("Content-Encoding") == "gzip" {
		t.Error("response compressed without Accept-Encoding: gzip")
	}
	if rec.Body.String() != "plain" {
		t.Errorf("unexpected body %q", rec.Body.String())
	}
}
