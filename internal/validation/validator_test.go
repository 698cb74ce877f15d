// Pictonet - Minimal Social Network with Image and Audio Sharing
// Copyright 2026 Pictonet contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pictonet/pictonet

package validation

import (
	"strings"
	"testing"
)

type registerRequest struct {
	Username string `validate:"required,min=1,max=64"`
	Password string `validate:"required,min=1"`
	Avatar   string `validate:"omitempty"`
}

func TestValidateStructPasses(t *testing.T) {
	req := registerRequest{Username: "alice", Password: "secret"}
	if verr := ValidateStruct(&req); verr != nil {
		t.Errorf("expected valid struct, got %v", verr)
	}
}

func TestValidateStructMissingFields(t *testing.T) {
	req := registerRequest{}
	verr := ValidateStruct(&req)
	if verr == nil {
		t.Fatal("expected validation failure")
	}

	if len(verr.Errors()) != 2 {
		t.Errorf("got %d errors, want 2", len(verr.Errors()))
	}
	if !strings.Contains(verr.Error(), "Username is required") {
		t.Errorf("error = %q, want Username required message", verr.Error())
	}
}

func TestValidateStructMaxLength(t *testing.T) {
	req := registerRequest{Username: strings.Repeat("x", 65), Password: "p"}
	verr := ValidateStruct(&req)
	if verr == nil {
		t.Fatal("expected validation failure")
	}

	errs := verr.Errors()
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1", len(errs))
	}
	if errs[0].Field() != "Username" || errs[0].Tag() != "max" {
		t.Errorf("error = %s/%s, want Username/max", errs[0].Field(), errs[0].Tag())
	}
	if !strings.Contains(errs[0].Error(), "at most 64 characters") {
		t.Errorf("message = %q, want character-count wording", errs[0].Error())
	}
}

func TestToAPIErrorSingle(t *testing.T) {
	req := registerRequest{Username: "alice"}
	verr := ValidateStruct(&req)
	if verr == nil {
		t.Fatal("expected validation failure")
	}

	apiErr := verr.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("code = %q, want VALIDATION_ERROR", apiErr.Code)
	}
	if apiErr.Details["field"] != "Password" {
		t.Errorf("details field = %v, want Password", apiErr.Details["field"])
	}
}

func TestToAPIErrorMultiple(t *testing.T) {
	req := registerRequest{}
	apiErr := ValidateStruct(&req).ToAPIError()

	fields, ok := apiErr.Details["fields"].([]map[string]interface{})
	if !ok {
		t.Fatalf("details fields type = %T", apiErr.Details["fields"])
	}
	if len(fields) != 2 {
		t.Errorf("got %d detail fields, want 2", len(fields))
	}
}

func TestGetValidatorIsSingleton(t *testing.T) {
	if GetValidator() != GetValidator() {
		t.Error("GetValidator returned different instances")
	}
}
