// Package logging provides the structured logger used across the backend:
// a thin wrapper over zap with production (JSON) and development (console)
// presets.
package logging
