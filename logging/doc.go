// Package logging provides the minimal logging interface used across cadkg.
//
// The Logger interface defines the standard structured methods (Debug, Info,
// Warn, Error) that coordinators, managers and specialists use for
// observability. This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - SwarmLogger, a configurable logger carrying component and run context
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	cfg := logging.DefaultLoggerConfig()
//	cfg.Component = "assembly"
//	logger := logging.NewLogger(cfg)
//
// The interface is intentionally minimal to avoid vendor lock-in while
// supporting structured key/value logging where available.
package logging
