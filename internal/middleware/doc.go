// Package middleware provides HTTP middleware for request logging and
// Prometheus instrumentation.
package middleware
