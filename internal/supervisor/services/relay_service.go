// Pictonet - Minimal Social Network with Image and Audio Sharing
// Copyright 2026 Pictonet contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pictonet/pictonet

package services

import (
	"context"
)

// ContextRunner matches the relay hub's RunWithContext method without
// importing the relay package.
type ContextRunner interface {
	RunWithContext(ctx context.Context) error
}

// HubService supervises the relay hub. RunWithContext already follows
// the suture contract, so the wrapper only contributes a name.
type HubService struct {
	hub  ContextRunner
	name string
}

// NewHubService creates the wrapper.
func NewHubService(hub ContextRunner) *HubService {
	return &HubService{
		hub:  hub,
		name: "relay-hub",
	}
}

// Serve implements suture.Service.
func (s *HubService) Serve(ctx context.Context) error {
	return s.hub.RunWithContext(ctx)
}

func (s *HubService) String() string {
	return s.name
}
