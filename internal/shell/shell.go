package shell

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/webshell/backend/internal/domain/navigation"
	"github.com/GriffinCanCode/webshell/backend/internal/domain/pathconfig"
	"github.com/GriffinCanCode/webshell/backend/internal/domain/session"
	"github.com/GriffinCanCode/webshell/backend/internal/domain/visit"
	"github.com/GriffinCanCode/webshell/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/webshell/backend/internal/providers/document"
	"github.com/GriffinCanCode/webshell/backend/internal/shared/id"
	"github.com/GriffinCanCode/webshell/backend/internal/shared/loop"
)

// DefaultQueueSize is the loop queue capacity used when Options leaves it
// unset.
const DefaultQueueSize = 256

// Options configures every shell opened by a Registry.
type Options struct {
	StartLocation string
	PathConfig    *pathconfig.Configuration
	Destinations  navigation.Destinations
	Prober        session.RedirectProber
	// Opener receives locations outside the app. When nil, an engine that
	// implements navigation.ExternalOpener opens them itself.
	Opener         navigation.ExternalOpener
	Titles         *document.Extractor
	ThrottleWindow time.Duration
	ProbeTimeout   time.Duration
	QueueSize      int
	Logger         *zap.Logger
	Metrics        *monitoring.Metrics
}

// Shell is one hosted web view and its back stack.
type Shell struct {
	id        id.ShellID
	createdAt time.Time
	start     string
	titles    *document.Extractor
	logger    *zap.Logger

	loop      *loop.Loop
	session   *session.Session
	navigator *navigation.Navigator

	screens map[int]*Screen
	current *Screen
	lastErr error
}

// New creates a shell that drives engine. The shell does nothing until Run
// and Start are called.
func New(shellID id.ShellID, engine session.Engine, opts Options) (*Shell, error) {
	if opts.StartLocation == "" {
		return nil, fmt.Errorf("start location is required")
	}
	if opts.PathConfig == nil {
		opts.PathConfig = pathconfig.New(pathconfig.Config{})
	}
	if opts.Titles == nil {
		opts.Titles = document.NewExtractor()
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultQueueSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("shell", shellID.String()))

	opener := opts.Opener
	if opener == nil {
		if o, ok := engine.(navigation.ExternalOpener); ok {
			opener = o
		}
	}
	handlers := []navigation.RouteHandler{navigation.AppNavigationHandler{}}
	if opener != nil {
		handlers = append(handlers, navigation.ExternalHandler{Opener: opener, Logger: logger})
	}
	router, err := navigation.NewRouter(opts.StartLocation, logger, handlers...)
	if err != nil {
		return nil, fmt.Errorf("invalid start location: %w", err)
	}

	s := &Shell{
		id:        shellID,
		createdAt: time.Now(),
		start:     opts.StartLocation,
		titles:    opts.Titles,
		logger:    logger,
		loop:      loop.New(opts.QueueSize),
		screens:   make(map[int]*Screen),
	}
	s.session = session.New(session.Config{
		Engine:         engine,
		Executor:       s.loop,
		Prober:         opts.Prober,
		Logger:         logger,
		Metrics:        opts.Metrics,
		ThrottleWindow: opts.ThrottleWindow,
		ProbeTimeout:   opts.ProbeTimeout,
	})
	s.navigator = navigation.NewNavigator(navigation.NavigatorConfig{
		Resolver:     opts.PathConfig,
		Destinations: opts.Destinations,
		Router:       router,
		Host:         s,
		Logger:       logger,
		Metrics:      opts.Metrics,
	})
	s.navigator.ModalResults().OnResult = s.modalResultSent
	return s, nil
}

func (s *Shell) modalResultSent(r navigation.ModalResult) {
	s.logger.Debug("Modal result",
		zap.String("location", r.Location),
		zap.Bool("navigate", r.ShouldNavigate))
}

// ID returns the shell identifier.
func (s *Shell) ID() id.ShellID {
	return s.id
}

// Run processes posted work until ctx ends or the shell is closed.
func (s *Shell) Run(ctx context.Context) {
	s.loop.Run(ctx)
}

// Start routes the start location onto an empty back stack.
func (s *Shell) Start(ctx context.Context) error {
	var err error
	if callErr := s.loop.Call(ctx, func() { err = s.navigator.Start(s.start) }); callErr != nil {
		return callErr
	}
	return err
}

// Dispatch posts a bridge event onto the shell loop.
func (s *Shell) Dispatch(ev session.Event) {
	s.loop.Post(func() { s.session.Handle(ev) })
}

// ShouldOverride asks the session whether the native side takes over a
// navigation the web view is about to perform.
func (s *Shell) ShouldOverride(ctx context.Context, ev session.LocationOverride) (bool, error) {
	var override bool
	err := s.loop.Call(ctx, func() {
		// The caller already answered false once ctx expired.
		if ctx.Err() != nil {
			return
		}
		override = s.session.ShouldOverride(ev)
	})
	return override, err
}

// Route routes location through the navigator. A configuration error is
// returned as is.
func (s *Shell) Route(ctx context.Context, location string, options visit.Options) error {
	var err error
	if callErr := s.loop.Call(ctx, func() { err = s.navigator.Route(location, options) }); callErr != nil {
		return callErr
	}
	return err
}

// Pop removes the top screen.
func (s *Shell) Pop(ctx context.Context) error {
	return s.loop.Call(ctx, s.navigator.Pop)
}

// ClearAll pops back to the start screen.
func (s *Shell) ClearAll(ctx context.Context) error {
	return s.loop.Call(ctx, s.navigator.ClearAll)
}

// Inspect captures the shell state.
func (s *Shell) Inspect(ctx context.Context) (Inspection, error) {
	var in Inspection
	err := s.loop.Call(ctx, func() { in = s.inspect() })
	return in, err
}

// Close stops the loop and cancels in-flight redirect probes.
func (s *Shell) Close() {
	s.session.Close()
	s.loop.Close()
}

// Done is closed once the shell has stopped.
func (s *Shell) Done() <-chan struct{} {
	return s.loop.Done()
}

// PrepareNavigation implements navigation.Host.
func (s *Shell) PrepareNavigation(onReady func()) {
	onReady()
}

// Refresh implements navigation.Host by reloading the current screen.
func (s *Shell) Refresh() {
	if s.current != nil {
		s.current.reload()
	}
}

// Navigated implements navigation.Host.
func (s *Shell) Navigated(t navigation.Transition) {
	for _, e := range t.Popped {
		delete(s.screens, e.ID)
	}

	outgoing := s.current
	screen, ok := s.screens[t.Current.ID]
	if !ok {
		screen = newScreen(s, t.Current)
		s.screens[t.Current.ID] = screen
	}
	s.current = screen
	if outgoing != nil && outgoing != screen {
		s.session.RemoveCallback(outgoing)
	}

	if t.Pushed {
		screen.visit(t.Current.Options, false)
		return
	}
	screen.resume()
}

// routeFromScreen routes a navigation the page asked for. There is no caller
// to hand a configuration error to, so it is kept for inspection.
func (s *Shell) routeFromScreen(location string, options visit.Options) {
	if err := s.navigator.Route(location, options); err != nil {
		s.lastErr = err
	}
}

func (s *Shell) inspect() Inspection {
	entries := s.navigator.Backstack().Entries()
	screens := make([]ScreenState, 0, len(entries))
	for _, e := range entries {
		if screen, ok := s.screens[e.ID]; ok {
			screens = append(screens, screen.state())
		}
	}

	in := Inspection{
		ID:           s.id.String(),
		CreatedAt:    s.createdAt,
		Start:        s.start,
		Session:      s.session.Snapshot(),
		Backstack:    entries,
		Screens:      screens,
		ModalPending: s.navigator.ModalResults().Pending(),
	}
	if s.current != nil {
		in.Current = s.current.entry.ID
	}
	if s.lastErr != nil {
		in.LastError = s.lastErr.Error()
	}
	return in
}

// Inspection is a read-only view of a shell.
type Inspection struct {
	ID           string             `json:"id"`
	CreatedAt    time.Time          `json:"createdAt"`
	Start        string             `json:"startLocation"`
	Current      int                `json:"currentEntry"`
	Session      session.Snapshot   `json:"session"`
	Backstack    []navigation.Entry `json:"backstack"`
	Screens      []ScreenState      `json:"screens"`
	ModalPending bool               `json:"modalResultPending"`
	LastError    string             `json:"lastError,omitempty"`
}

func locationPath(location string) string {
	u, err := url.Parse(location)
	if err != nil || u.Path == "" {
		return location
	}
	return u.Path
}
