// Package logger provides a slog factory with environment presets and
// shared attribute helpers for consistent log keys across packages.
package logger
