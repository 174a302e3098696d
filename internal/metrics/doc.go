// Package metrics defines the Prometheus collectors exported by
// WebVideoA and the standalone metrics HTTP server.
//
// All metrics use the "webvideoa_" prefix. Collectors are registered
// via promauto at package initialization; InitializeMetrics should be
// called once at startup to pre-populate known label combinations so
// every series is present from the first scrape.
package metrics
