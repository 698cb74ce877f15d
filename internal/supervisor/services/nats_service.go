// Pictonet - Minimal Social Network with Image and Audio Sharing
// Copyright 2026 Pictonet contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pictonet/pictonet

package services

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// NATSServer matches the embedded server's lifecycle surface.
type NATSServer interface {
	IsRunning() bool
	Shutdown(ctx context.Context) error
}

// NATSServerService supervises the embedded NATS server. The server is
// already listening when constructed; the service holds it open until
// cancellation and then shuts it down with a bounded wait.
type NATSServerService struct {
	server          NATSServer
	shutdownTimeout time.Duration
	name            string
}

// NewNATSServerService creates the wrapper.
func NewNATSServerService(server NATSServer, shutdownTimeout time.Duration) *NATSServerService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &NATSServerService{
		server:          server,
		shutdownTimeout: shutdownTimeout,
		name:            "nats-server",
	}
}

// Serve implements suture.Service. A server that stopped running on
// its own is an error so suture restarts the messaging layer.
func (s *NATSServerService) Serve(ctx context.Context) error {
	if !s.server.IsRunning() {
		return errors.New("embedded NATS server is not running")
	}

	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
			defer cancel()
			if err := s.server.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("nats server shutdown failed: %w", err)
			}
			return ctx.Err()

		case <-ticker.C:
			if !s.server.IsRunning() {
				return errors.New("embedded NATS server stopped unexpectedly")
			}
		}
	}
}

func (s *NATSServerService) String() string {
	return s.name
}

// RoomBusLifecycle matches the relay bus Start/Close surface.
type RoomBusLifecycle interface {
	Start() error
	Close()
}

// RoomBusService supervises the NATS room bus subscription.
type RoomBusService struct {
	bus  RoomBusLifecycle
	name string
}

// NewRoomBusService creates the wrapper.
func NewRoomBusService(bus RoomBusLifecycle) *RoomBusService {
	return &RoomBusService{
		bus:  bus,
		name: "room-bus",
	}
}

// Serve implements suture.Service. Start subscribes; Close drains the
// connection on shutdown.
func (s *RoomBusService) Serve(ctx context.Context) error {
	if err := s.bus.Start(); err != nil {
		return fmt.Errorf("room bus start failed: %w", err)
	}

	<-ctx.Done()
	s.bus.Close()
	return ctx.Err()
}

func (s *RoomBusService) String() string {
	return s.name
}
