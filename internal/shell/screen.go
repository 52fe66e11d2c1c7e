package shell

import (
	"errors"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/webshell/backend/internal/domain/navigation"
	"github.com/GriffinCanCode/webshell/backend/internal/domain/session"
	"github.com/GriffinCanCode/webshell/backend/internal/domain/visit"
)

// Status is the lifecycle state of a screen's latest visit.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusStarted   Status = "started"
	StatusRequested Status = "requested"
	StatusRendered  Status = "rendered"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCrashed   Status = "crashed"
)

// Screen presents one back stack entry in the shared web view. It receives
// session callbacks while it is the current screen.
type Screen struct {
	shell  *Shell
	entry  navigation.Entry
	logger *zap.Logger

	status     Status
	title      string
	err        error
	stale      bool
	visits     int
	submitting string
}

func newScreen(s *Shell, e navigation.Entry) *Screen {
	return &Screen{
		shell:  s,
		entry:  e,
		logger: s.logger.With(zap.Int("entry", e.ID), zap.String("location", e.Location)),
		status: StatusIdle,
	}
}

func (sc *Screen) visit(options visit.Options, reload bool) {
	sc.visits++
	sc.err = nil
	sc.stale = false
	sc.shell.session.Visit(&session.Visit{
		Location:                  sc.entry.Location,
		DestinationID:             sc.entry.ID,
		RestoreWithCachedSnapshot: options.Action == visit.ActionRestore,
		Reload:                    reload,
		Options:                   options,
		Callback:                  sc,
	})
}

func (sc *Screen) reload() {
	sc.visit(visit.DefaultOptions(), true)
}

// resume shows the screen again after the entries above it were removed,
// then hands it any modal result left by a dismissed modal.
func (sc *Screen) resume() {
	if !sc.shell.session.RestoreCurrentVisit(sc.entry.ID, sc) {
		sc.visit(visit.DefaultOptions().WithAction(visit.ActionRestore), false)
	}

	result, ok := sc.shell.navigator.ModalResults().Consume()
	if !ok || !result.ShouldNavigate {
		return
	}
	sc.logger.Debug("Routing modal result", zap.String("target", result.Location))
	req := navigation.Request{Location: result.Location, Options: result.Options, ExtraData: result.ExtraData}
	sc.shell.loop.Defer(func() {
		if err := sc.shell.navigator.RouteRequest(req); err != nil {
			sc.shell.lastErr = err
		}
	})
}

func (sc *Screen) resolveTitle() {
	if title := sc.entry.Properties.Title(); title != "" {
		sc.title = title
		return
	}
	if current := sc.shell.session.Current(); current != nil {
		if title := sc.shell.titles.Title(current.Options.HTML()); title != "" {
			sc.title = title
			return
		}
	}
	sc.title = locationPath(sc.entry.Location)
}

func (sc *Screen) state() ScreenState {
	st := ScreenState{
		Entry:        sc.entry.ID,
		Location:     sc.entry.Location,
		Title:        sc.title,
		Status:       sc.status,
		StaleContent: sc.stale,
		Visits:       sc.visits,
		Submitting:   sc.submitting,
	}
	if sc.err != nil {
		st.Error = sc.err.Error()
	}
	return st
}

// ScreenState is a read-only view of a screen.
type ScreenState struct {
	Entry        int    `json:"entry"`
	Location     string `json:"location"`
	Title        string `json:"title"`
	Status       Status `json:"status"`
	Error        string `json:"error,omitempty"`
	StaleContent bool   `json:"staleContent"`
	Visits       int    `json:"visits"`
	Submitting   string `json:"submitting,omitempty"`
}

func (sc *Screen) PageStarted(location string) {
	sc.logger.Debug("Page started", zap.String("page", location))
}

func (sc *Screen) PageFinished(location string) {
	sc.logger.Debug("Page finished", zap.String("page", location))
}

func (sc *Screen) ReceivedError(err error) {
	sc.status = StatusFailed
	sc.err = err
	sc.logger.Warn("Web view error", zap.Error(err))
}

// RenderProcessGone restarts the page with a fresh cold boot.
func (sc *Screen) RenderProcessGone() {
	sc.status = StatusCrashed
	sc.logger.Warn("Render process gone")
	sc.shell.session.Reset()
	sc.visit(visit.DefaultOptions(), false)
}

func (sc *Screen) PageInvalidated() {
	sc.logger.Debug("Page invalidated")
	sc.reload()
}

func (sc *Screen) RequestStarted() {
	sc.status = StatusRequested
}

func (sc *Screen) RequestFinished() {}

func (sc *Screen) RequestFailedWithError(hasCachedSnapshot bool, err error) {
	sc.status = StatusFailed
	sc.err = err
	var stale *visit.StaleContentError
	sc.stale = errors.As(err, &stale)
	sc.logger.Info("Visit failed", zap.Bool("cachedSnapshot", hasCachedSnapshot), zap.String("kind", visit.Kind(err)), zap.Error(err))
}

func (sc *Screen) VisitRendered() {
	sc.status = StatusRendered
	sc.resolveTitle()
}

func (sc *Screen) VisitCompleted(completedOffline bool) {
	sc.status = StatusCompleted
	sc.logger.Debug("Visit completed", zap.Bool("offline", completedOffline))
}

func (sc *Screen) VisitLocationStarted(location string) {
	sc.status = StatusStarted
	if sc.title == "" {
		sc.title = locationPath(location)
	}
}

func (sc *Screen) VisitProposedToLocation(location string, options visit.Options) {
	sc.shell.routeFromScreen(location, options)
}

// VisitProposedToCrossOriginRedirect drops this screen and lets the router
// decide what to do with the foreign location.
func (sc *Screen) VisitProposedToCrossOriginRedirect(location string) {
	sc.logger.Info("Cross-origin redirect", zap.String("target", location))
	sc.shell.navigator.Pop()
	sc.shell.routeFromScreen(location, visit.DefaultOptions())
}

func (sc *Screen) FormSubmissionStarted(location string) {
	sc.submitting = location
}

func (sc *Screen) FormSubmissionFinished(string) {
	sc.submitting = ""
}
