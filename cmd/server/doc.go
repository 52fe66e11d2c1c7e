// Package main is the entry point for the WebShell backend server.
//
// The server hosts native navigation for a server-rendered web app: each
// connected web view gets a shell that coordinates its visits and keeps its
// back stack, driven by the path configuration.
//
// Architecture:
//
//	Web view (engine) ⇄ /bridge WebSocket ⇄ Shell (session + navigator)
//	                                          ↑
//	                     path configuration (bundled, cached, remote)
//
// The server provides:
//   - WebSocket bridge for content engines
//   - REST inspection API for shells and path configuration
//   - Prometheus metrics
//
// Configuration:
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//
// Usage:
//
//	./server -port 8000 -start https://app.example.com/ -path-config configs/path-configuration.json
//
//	# Development mode (colored logs, debug level, invalid patterns panic)
//	./server -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
