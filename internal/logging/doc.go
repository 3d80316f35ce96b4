// Package logging provides structured logging for the picoprov agent.
//
// This package wraps zap logger with convenience functions for common logging
// patterns used throughout the agent. It provides both general logging functions
// and specialized functions for connection-lifecycle logging needs.
//
// # Log Levels
//
// The package supports standard log levels:
//   - Debug: Detailed debugging info (record hex dumps, button timing, ticks)
//   - Info: Normal operations (status changes, join attempts, portal lifecycle)
//   - Warn: Non-fatal issues (join failures, storage corruption recovery)
//   - Error: Fatal issues (storage unavailable, radio faults)
//
// # Structured Logging
//
// All log functions use structured fields for queryability:
//
//	logging.Info("Credentials saved",
//	    zap.String("ssid", "HomeNetwork"),
//	)
//
// # Silent by Default
//
// The agent is designed to run on constrained devices where log output is
// optional. When PICOPROV_LOG_LEVEL is unset, the logger is a no-op and
// produces zero output and near-zero overhead.
package logging
