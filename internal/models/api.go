// Pictonet - Minimal Social Network with Image and Audio Sharing
// Copyright 2026 Pictonet contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pictonet/pictonet

package models

// APIError is the wire shape of a request failure.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// ErrorResponse wraps an APIError for JSON serialization. Success
// responses carry their payload directly, without an envelope.
type ErrorResponse struct {
	Error *APIError `json:"error"`
}
