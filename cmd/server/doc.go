// Package main is the entry point for the Filedock backend server.
//
// The server exposes a REST API over a local filesystem root: directory
// listing, file and directory lifecycle, text load/save with charset
// handling, ZIP compress/extract jobs with progress and cancellation, and
// saved connection profiles.
//
// Configuration:
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//   - Defaults for development
//
// Usage:
//
//	# Production mode
//	./server -port 8090 -root /srv/files
//
//	# Development mode (colored logs, debug level)
//	./server -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
