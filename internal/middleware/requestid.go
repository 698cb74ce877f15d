// Pictonet - Minimal Social Network with Image and Audio Sharing
// Copyright 2026 Pictonet contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pictonet/pictonet

package middleware

import (
	"net/http"

	"github.com/pictonet/pictonet/internal/logging"
)

// RequestID tags each request with an X-Request-ID header and threads the
// identifier through the context so log lines can be correlated. An ID
// supplied by an upstream proxy is reused.
func RequestID(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = logging.GenerateRequestID()
		}

		w.Header().Set("X-Request-ID", requestID)

		ctx := logging.WithRequestID(r.Context(), requestID)
		next(w, r.WithContext(ctx))
	}
}
