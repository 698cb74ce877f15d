// Pictonet - Minimal Social Network with Image and Audio Sharing
// Copyright 2026 Pictonet contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pictonet/pictonet

package supervisor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

// blockingService runs until canceled and counts its starts.
type blockingService struct {
	starts atomic.Int32
}

func (s *blockingService) Serve(ctx context.Context) error {
	s.starts.Add(1)
	<-ctx.Done()
	return ctx.Err()
}

func (s *blockingService) String() string { return "blocking-service" }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDefaultTreeConfig(t *testing.T) {
	cfg := DefaultTreeConfig()
	if cfg.FailureThreshold != 5.0 {
		t.Errorf("FailureThreshold = %v, want 5.0", cfg.FailureThreshold)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 10s", cfg.ShutdownTimeout)
	}
}

func TestTreeAppliesDefaultsForZeroValues(t *testing.T) {
	tree := NewTree(discardLogger(), TreeConfig{})
	if tree.config.FailureThreshold != 5.0 {
		t.Errorf("zero threshold not defaulted: %v", tree.config.FailureThreshold)
	}
	if tree.config.FailureBackoff != 15*time.Second {
		t.Errorf("zero backoff not defaulted: %v", tree.config.FailureBackoff)
	}
}

func TestTreeServesAndStopsServices(t *testing.T) {
	tree := NewTree(discardLogger(), DefaultTreeConfig())

	msgSvc := &blockingService{}
	apiSvc := &blockingService{}
	tree.AddMessagingService(msgSvc)
	tree.AddAPIService(apiSvc)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := tree.ServeBackground(ctx)

	deadline := time.After(2 * time.Second)
	for msgSvc.starts.Load() == 0 || apiSvc.starts.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("services did not start")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			t.Errorf("unexpected serve error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("tree did not stop after cancel")
	}
}
