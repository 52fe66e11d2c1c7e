// Package logging builds the zap loggers used across the shell backend.
//
// Two modes:
//   - Production: JSON output for machine parsing
//   - Development: colored console output, debug level by default
//
// Components take a *zap.Logger and fall back to zap.NewNop() when none is
// given, so only the server entry point builds a Logger.
//
// Example Usage:
//
//	logger, err := logging.New(logging.Config{Level: "info"})
//	sessions := logger.Component("session")
//	sessions.Debug("Visit", zap.String("location", location))
package logging
