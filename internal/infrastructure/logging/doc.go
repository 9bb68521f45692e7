// Package logging provides structured logging for the gateway.
//
// This package wraps Go's standard log/slog package so every component
// logs with the same handler and default fields.
//
// # Features
//
//   - JSON output for production (machine-parsable)
//   - Text output for development (human-readable)
//   - Default fields (service, version) on all log entries
//   - Level-based filtering (debug, info, warn, error)
//
// # Configuration
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// # Security
//
// Never log passwords, communication passwords, or JWT secrets. Accounts are
// logged by display name; use Redact when an account number must appear:
//
//	logger.Info("logon", "account", logging.Redact(acct.Number))
package logging
