package navigation

import (
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// Decision is a route handler's verdict.
type Decision int

const (
	// DecisionNavigate lets the navigator handle the location.
	DecisionNavigate Decision = iota
	// DecisionCancel stops routing.
	DecisionCancel
)

// RouteHandler claims locations before the navigator sees them.
type RouteHandler interface {
	Name() string
	Matches(location *url.URL, start *url.URL) bool
	Handle(location string) Decision
}

// Router offers locations to handlers in registration order. The first
// matching handler decides.
type Router struct {
	start    *url.URL
	handlers []RouteHandler
	logger   *zap.Logger
}

// NewRouter creates a router for an app rooted at startLocation.
func NewRouter(startLocation string, logger *zap.Logger, handlers ...RouteHandler) (*Router, error) {
	start, err := url.Parse(startLocation)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{start: start, handlers: handlers, logger: logger}, nil
}

// Decide returns the decision of the first matching handler. Locations no
// handler claims, or that do not parse, are navigated.
func (r *Router) Decide(location string) Decision {
	u, err := url.Parse(location)
	if err != nil {
		return DecisionNavigate
	}
	for _, h := range r.handlers {
		if !h.Matches(u, r.start) {
			continue
		}
		decision := h.Handle(location)
		r.logger.Debug("Route decision",
			zap.String("handler", h.Name()),
			zap.String("location", location),
			zap.Bool("cancel", decision == DecisionCancel))
		return decision
	}
	return DecisionNavigate
}

// AppNavigationHandler navigates locations on the app's own host.
type AppNavigationHandler struct{}

func (AppNavigationHandler) Name() string { return "app-navigation" }

func (AppNavigationHandler) Matches(location, start *url.URL) bool {
	return strings.EqualFold(location.Hostname(), start.Hostname())
}

func (AppNavigationHandler) Handle(string) Decision { return DecisionNavigate }

// ExternalOpener opens a location outside the app.
type ExternalOpener interface {
	Open(location string) error
}

// ExternalHandler hands locations on other hosts, or with other schemes, to
// an ExternalOpener and cancels navigation.
type ExternalHandler struct {
	Opener ExternalOpener
	Logger *zap.Logger
}

func (h ExternalHandler) Name() string { return "external" }

func (h ExternalHandler) Matches(location, start *url.URL) bool {
	return !strings.EqualFold(location.Hostname(), start.Hostname()) ||
		!strings.EqualFold(location.Scheme, start.Scheme)
}

func (h ExternalHandler) Handle(location string) Decision {
	if h.Opener != nil {
		if err := h.Opener.Open(location); err != nil && h.Logger != nil {
			h.Logger.Warn("Failed to open external location", zap.String("location", location), zap.Error(err))
		}
	}
	return DecisionCancel
}
