// Pictonet - Minimal Social Network with Image and Audio Sharing
// Copyright 2026 Pictonet contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pictonet/pictonet

// Package metrics provides Prometheus instrumentation for the HTTP
// surface, the DuckDB store, the media store and the realtime relay.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Database metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)

	// Media store metrics
	MediaStoredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_stored_total",
			Help: "Total number of media payloads stored",
		},
		[]string{"kind"},
	)

	MediaStoredBytes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_stored_bytes_total",
			Help: "Total decoded bytes written by the media store",
		},
		[]string{"kind"},
	)

	MediaStoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "media_store_errors_total",
			Help: "Total number of media store failures",
		},
		[]string{"kind"},
	)

	// Relay metrics
	RelayConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "relay_connections",
			Help: "Current number of active relay connections",
		},
	)

	RelayRooms = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "relay_rooms",
			Help: "Current number of rooms with at least one member",
		},
	)

	RelayMessagesBroadcast = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_messages_broadcast_total",
			Help: "Total number of messages broadcast to rooms",
		},
	)

	RelayMessagesRejected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "relay_messages_rejected_total",
			Help: "Total number of sends rejected for lacking attachments",
		},
	)
)

// RecordAPIRequest records one completed API request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks in-flight API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordDBQuery records one database query.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// RecordMediaStore records one media store attempt.
func RecordMediaStore(kind string, bytes int, err error) {
	if err != nil {
		MediaStoreErrors.WithLabelValues(kind).Inc()
		return
	}
	MediaStoredTotal.WithLabelValues(kind).Inc()
	MediaStoredBytes.WithLabelValues(kind).Add(float64(bytes))
}
