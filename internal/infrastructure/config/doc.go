// Package config provides 12-factor configuration for the shell backend.
//
// Configuration is loaded from environment variables with defaults. CLI flags
// in cmd/server can override the most common ones.
//
// Configuration Sections:
//   - Server: HTTP listener and shutdown
//   - Shell: start location, debug mode, proposal throttle, redirect probes
//   - PathConfig: bundled file, remote URL and cache directory
//   - HTTP: outbound client used for path configuration and probes
//   - Logging: log level and output format
//   - RateLimit: per-IP limits on the inspection API
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	fmt.Printf("Serving %s on %s\n", cfg.Shell.StartLocation, cfg.Server.Addr())
package config
