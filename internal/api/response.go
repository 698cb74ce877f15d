// Pictonet - Minimal Social Network with Image and Audio Sharing
// Copyright 2026 Pictonet contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pictonet/pictonet

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/pictonet/pictonet/internal/logging"
	"github.com/pictonet/pictonet/internal/models"
	"github.com/pictonet/pictonet/internal/validation"
)

// Error codes of the request failure taxonomy.
const (
	CodeDuplicateName      = "DUPLICATE_NAME"
	CodeNotFound           = "NOT_FOUND"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeBadRequest         = "BAD_REQUEST"
	CodeInternalFailure    = "INTERNAL_FAILURE"
)

// internalFailureMessage is the only detail clients see for unexpected
// store or filesystem errors.
const internalFailureMessage = "Internal server error"

// sanitizeLogValue strips control characters so attacker-supplied
// strings cannot forge log lines.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			result.WriteString(fmt.Sprintf("\\x%02x", r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// respondJSON sends v as the response body. Success payloads are
// serialized directly, without a wrapper envelope.
func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")

	data, err := json.Marshal(v)
	if err != nil {
		logging.Error().Err(err).Msg("failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("failed to write JSON response")
	}
}

// respondError sends an error body and logs the underlying cause when
// one is supplied.
func respondError(w http.ResponseWriter, status int, code, message string, err error) {
	if err != nil {
		logging.Error().
			Str("code", sanitizeLogValue(code)).
			Str("error", sanitizeLogValue(err.Error())).
			Msg("request failed")
	}

	respondJSON(w, status, &models.ErrorResponse{
		Error: &models.APIError{
			Code:    code,
			Message: message,
		},
	})
}

// respondInternal maps an unexpected error to a fixed 500 body.
func respondInternal(w http.ResponseWriter, err error) {
	respondError(w, http.StatusInternalServerError, CodeInternalFailure, internalFailureMessage, err)
}

// decodeJSON reads a bounded JSON body into dst. The caller gets a
// client-facing error message back; a nil return means dst is
// populated.
func decodeJSON(w http.ResponseWriter, r *http.Request, maxBytes int64, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return fmt.Errorf("request body exceeds %d bytes", maxErr.Limit)
		}
		return errors.New("malformed JSON body")
	}
	return nil
}

// validateRequest runs struct validation and converts failures to the
// API error shape.
func validateRequest(v interface{}) *models.APIError {
	validationErr := validation.ValidateStruct(v)
	if validationErr == nil {
		return nil
	}
	apiErr := validationErr.ToAPIError()
	return &models.APIError{
		Code:    apiErr.Code,
		Message: apiErr.Message,
		Details: apiErr.Details,
	}
}
