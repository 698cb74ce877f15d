// Pictonet - Minimal Social Network with Image and Audio Sharing
// Copyright 2026 Pictonet contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pictonet/pictonet

// Package main is the entry point for the Pictonet server.
//
// Pictonet is a minimal social network for image and audio sharing:
// users register with an avatar, publish image/audio posts to a public
// feed, pair up into chats and exchange media messages over a realtime
// websocket relay.
//
// Startup order:
//
//  1. Configuration: koanf v2 layered sources (defaults, config file,
//     environment variables)
//  2. Logging: zerolog, configured from the loaded settings
//  3. Database: DuckDB file store with the four-table schema
//  4. Media store: decoded uploads under the configured root
//  5. Relay: hub, send pipeline, optional NATS room bus with an
//     embedded or external server
//  6. HTTP server: chi router with the REST and websocket surface
//  7. Supervisor tree: suture, messaging and api layers
//
// Shutdown is graceful on SIGINT and SIGTERM.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pictonet/pictonet/internal/api"
	"github.com/pictonet/pictonet/internal/config"
	"github.com/pictonet/pictonet/internal/database"
	"github.com/pictonet/pictonet/internal/logging"
	"github.com/pictonet/pictonet/internal/media"
	"github.com/pictonet/pictonet/internal/relay"
	"github.com/pictonet/pictonet/internal/supervisor"
	"github.com/pictonet/pictonet/internal/supervisor/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("addr", cfg.Server.Addr()).
		Str("db_path", cfg.Database.Path).
		Str("media_root", cfg.Media.Root).
		Bool("nats_enabled", cfg.NATS.Enabled).
		Msg("Starting Pictonet")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	store, err := media.NewStore(&cfg.Media)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize media store")
	}

	hub := relay.NewHub()
	svc := relay.NewService(hub, store, db)

	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	tree.AddMessagingService(services.NewHubService(hub))

	// The room bus is optional; without it sends fan out through the
	// hub directly.
	if cfg.NATS.Enabled {
		natsURL := cfg.NATS.URL
		if cfg.NATS.EmbeddedServer {
			natsServer, err := relay.NewEmbeddedServer(cfg.NATS.Port)
			if err != nil {
				logging.Fatal().Err(err).Msg("Failed to start embedded NATS server")
			}
			natsURL = natsServer.ClientURL()
			tree.AddMessagingService(services.NewNATSServerService(natsServer, 10*time.Second))
			logging.Info().Str("url", natsURL).Msg("Embedded NATS server started")
		}

		bus, err := relay.NewRoomBus(natsURL, hub)
		if err != nil {
			logging.Fatal().Err(err).Str("url", natsURL).Msg("Failed to connect to NATS")
		}
		svc.SetBus(bus)
		tree.AddMessagingService(services.NewRoomBusService(bus))
		logging.Info().Str("url", natsURL).Msg("Room bus connected")
	}

	handler := api.NewHandler(db, store, hub, svc, cfg)
	router := api.NewRouter(handler, cfg)
	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.Setup(),
		ReadHeaderTimeout: cfg.Server.Timeout,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, s := range unstopped {
		logging.Warn().Str("service", s.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Pictonet stopped")
}
