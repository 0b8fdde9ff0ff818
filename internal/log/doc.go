// Package log provides structured logging helpers built on log/slog.
// Its Handler wrapper redacts credential-bearing attributes (site configs
// may carry Authorization headers and cookies) and truncates oversized
// attribute values so raw page bodies never flood the log output.
package log
