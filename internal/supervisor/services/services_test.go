// Pictonet - Minimal Social Network with Image and Audio Sharing
// Copyright 2026 Pictonet contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pictonet/pictonet

package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

// fakeHTTPServer blocks in ListenAndServe until Shutdown is called.
type fakeHTTPServer struct {
	serveErr error
	closed   chan struct{}
	shutdown bool
}

func newFakeHTTPServer() *fakeHTTPServer {
	return &fakeHTTPServer{closed: make(chan struct{})}
}

func (f *fakeHTTPServer) ListenAndServe() error {
	if f.serveErr != nil {
		return f.serveErr
	}
	<-f.closed
	return http.ErrServerClosed
}

func (f *fakeHTTPServer) Shutdown(ctx context.Context) error {
	f.shutdown = true
	close(f.closed)
	return nil
}

func TestHTTPServerServiceGracefulShutdown(t *testing.T) {
	srv := newFakeHTTPServer()
	svc := NewHTTPServerService(srv, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
	if !srv.shutdown {
		t.Error("Shutdown was not called")
	}
}

func TestHTTPServerServiceReportsStartupFailure(t *testing.T) {
	srv := newFakeHTTPServer()
	srv.serveErr = errors.New("address in use")
	svc := NewHTTPServerService(srv, time.Second)

	err := svc.Serve(context.Background())
	if err == nil || !errors.Is(err, srv.serveErr) {
		t.Errorf("Serve returned %v, want wrapped startup error", err)
	}
}

type fakeRunner struct {
	ran chan struct{}
}

func (f *fakeRunner) RunWithContext(ctx context.Context) error {
	close(f.ran)
	<-ctx.Done()
	return ctx.Err()
}

func TestHubServiceDelegates(t *testing.T) {
	runner := &fakeRunner{ran: make(chan struct{})}
	svc := NewHubService(runner)
	if svc.String() != "relay-hub" {
		t.Errorf("unexpected name %q", svc.String())
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	select {
	case <-runner.ran:
	case <-time.After(time.Second):
		t.Fatal("hub was not started")
	}
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve returned %v, want context.Canceled", err)
	}
}

type fakeNATSServer struct {
	running  bool
	shutdown bool
}

func (f *fakeNATSServer) IsRunning() bool { return f.running }
func (f *fakeNATSServer) Shutdown(ctx context.Context) error {
	f.shutdown = true
	return nil
}

func TestNATSServerServiceRejectsStoppedServer(t *testing.T) {
	svc := NewNATSServerService(&fakeNATSServer{running: false}, time.Second)
	if err := svc.Serve(context.Background()); err == nil {
		t.Error("expected error for a server that is not running")
	}
}

func TestNATSServerServiceShutsDownOnCancel(t *testing.T) {
	srv := &fakeNATSServer{running: true}
	svc := NewNATSServerService(srv, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
	if !srv.shutdown {
		t.Error("Shutdown was not called")
	}
}

type fakeBus struct {
	started bool
	closed  bool
}

func (f *fakeBus) Start() error { f.started = true; return nil }
func (f *fakeBus) Close()       { f.closed = true }

func TestRoomBusServiceLifecycle(t *testing.T) {
	bus := &fakeBus{}
	svc := NewRoomBusService(bus)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve returned %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Serve did not return after cancel")
	}
	if !bus.started || !bus.closed {
		t.Errorf("bus lifecycle incomplete: started=%v closed=%v", bus.started, bus.closed)
	}
}
