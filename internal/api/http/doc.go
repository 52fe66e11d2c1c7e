// Package http exposes the REST inspection API: health, the active shells
// and their back stacks, programmatic routing, and the resolved path
// configuration for a location.
package http
