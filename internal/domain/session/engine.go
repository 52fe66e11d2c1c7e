package session

import (
	"context"

	"github.com/GriffinCanCode/webshell/backend/internal/domain/visit"
	"github.com/GriffinCanCode/webshell/backend/internal/providers/redirect"
)

// Engine is the embedded web view as seen by the session.
type Engine interface {
	// LoadURL performs a full page load (cold boot).
	LoadURL(location string)
	// Reload reloads the current page (cold boot).
	Reload()
	// VisitLocation asks the page's navigation library for a visit.
	VisitLocation(location string, options visit.Options, restorationID string)
	// InstallBridge injects the bridge script after a full load.
	InstallBridge()
}

// RedirectProber fetches a location outside the web view.
type RedirectProber interface {
	Fetch(ctx context.Context, location string) redirect.Result
}
