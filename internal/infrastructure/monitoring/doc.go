/*
Package monitoring collects Prometheus metrics for the shell.

# Overview

Each Metrics owns its own registry so tests and multiple shells in one
process never collide on registration. Every recording method is nil-safe:
components take an optional *Metrics and call it unconditionally.

# Metrics

  - webshell_http_requests_total, webshell_http_request_duration_seconds
  - webshell_visits_total{outcome}: visits started, rendered, completed, failed
  - webshell_visit_errors_total{kind}: failures by error taxonomy
  - webshell_proposals_total{result}: proposals accepted or throttled
  - webshell_navigations_total{operation}: back stack operations
  - webshell_pathconfig_loads_total{source,outcome}
  - webshell_redirect_probes_total{result}
  - webshell_breaker_state{name}
  - webshell_sessions_active, webshell_bridge_connections
  - webshell_bridge_messages_total{direction,type}

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
*/
package monitoring
