package session

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/GriffinCanCode/webshell/backend/internal/domain/visit"
	"github.com/GriffinCanCode/webshell/backend/internal/providers/redirect"
)

type engineCall struct {
	Method        string
	Location      string
	Action        visit.Action
	RestorationID string
}

type fakeEngine struct {
	calls []engineCall
}

func (e *fakeEngine) LoadURL(location string) {
	e.calls = append(e.calls, engineCall{Method: "loadURL", Location: location})
}

func (e *fakeEngine) Reload() {
	e.calls = append(e.calls, engineCall{Method: "reload"})
}

func (e *fakeEngine) VisitLocation(location string, options visit.Options, restorationID string) {
	e.calls = append(e.calls, engineCall{Method: "visitLocation", Location: location, Action: options.Action, RestorationID: restorationID})
}

func (e *fakeEngine) InstallBridge() {
	e.calls = append(e.calls, engineCall{Method: "installBridge"})
}

type recorder struct {
	events    []string
	errs      []error
	proposals []visit.Options
}

func (r *recorder) add(format string, args ...any) {
	r.events = append(r.events, fmt.Sprintf(format, args...))
}

func (r *recorder) PageStarted(location string)  { r.add("pageStarted %s", location) }
func (r *recorder) PageFinished(location string) { r.add("pageFinished %s", location) }
func (r *recorder) ReceivedError(err error)      { r.add("receivedError"); r.errs = append(r.errs, err) }
func (r *recorder) RenderProcessGone()           { r.add("renderProcessGone") }
func (r *recorder) PageInvalidated()             { r.add("pageInvalidated") }
func (r *recorder) RequestStarted()              { r.add("requestStarted") }
func (r *recorder) RequestFinished()             { r.add("requestFinished") }
func (r *recorder) RequestFailedWithError(hasCachedSnapshot bool, err error) {
	r.add("requestFailed cached=%t", hasCachedSnapshot)
	r.errs = append(r.errs, err)
}
func (r *recorder) VisitRendered() { r.add("rendered") }
func (r *recorder) VisitCompleted(completedOffline bool) {
	r.add("completed offline=%t", completedOffline)
}
func (r *recorder) VisitLocationStarted(location string) { r.add("started %s", location) }
func (r *recorder) VisitProposedToLocation(location string, options visit.Options) {
	r.add("proposed %s %s", location, options.Action)
	r.proposals = append(r.proposals, options)
}
func (r *recorder) VisitProposedToCrossOriginRedirect(location string) {
	r.add("crossOrigin %s", location)
}
func (r *recorder) FormSubmissionStarted(location string)  { r.add("formStarted %s", location) }
func (r *recorder) FormSubmissionFinished(location string) { r.add("formFinished %s", location) }

type fakeProber struct {
	result redirect.Result
	calls  chan string
}

func (p *fakeProber) Fetch(_ context.Context, location string) redirect.Result {
	p.calls <- location
	return p.result
}

type harness struct {
	session *Session
	engine  *fakeEngine
	cb      *recorder
	now     time.Time
	posted  chan func()
}

func newHarness(t *testing.T, prober RedirectProber) *harness {
	t.Helper()
	h := &harness{
		engine: &fakeEngine{},
		cb:     &recorder{},
		now:    time.Unix(1000, 0),
		posted: make(chan func(), 4),
	}
	h.session = New(Config{
		Engine:   h.engine,
		Prober:   prober,
		Executor: executorFunc(func(fn func()) { h.posted <- fn }),
		Now:      func() time.Time { return h.now },
	})
	t.Cleanup(h.session.Close)
	return h
}

type executorFunc func(fn func())

func (f executorFunc) Post(fn func()) { f(fn) }

func (h *harness) visit(location string, action visit.Action) *Visit {
	v := &Visit{
		Location:      location,
		DestinationID: 1,
		Options:       visit.DefaultOptions().WithAction(action),
		Callback:      h.cb,
	}
	h.session.Visit(v)
	return v
}

// coldBoot drives a first visit through a full page load until ready.
func (h *harness) coldBoot(location string) {
	h.visit(location, visit.ActionAdvance)
	h.session.Handle(PageStarted{Location: location})
	h.session.Handle(PageFinished{Location: location})
	h.session.Handle(TurboIsReady{IsReady: true})
}

func TestColdBootReplaysRenderedAndCompleted(t *testing.T) {
	h := newHarness(t, nil)

	h.coldBoot("https://example.com/home")

	assert.Equal(t, []engineCall{
		{Method: "loadURL", Location: "https://example.com/home"},
		{Method: "installBridge"},
	}, h.engine.calls)
	assert.Equal(t, []string{
		"started https://example.com/home",
		"pageStarted https://example.com/home",
		"pageFinished https://example.com/home",
		"rendered",
		"completed offline=false",
	}, h.cb.events)

	snap := h.session.Snapshot()
	assert.True(t, snap.Ready)
	assert.False(t, snap.ColdBooting)
	assert.NotEmpty(t, snap.ColdBootIdentifier)
}

func TestDuplicatePageFinishedIsIgnored(t *testing.T) {
	h := newHarness(t, nil)
	h.visit("https://example.com/home", visit.ActionAdvance)

	h.session.Handle(PageFinished{Location: "https://example.com/home"})
	h.session.Handle(PageFinished{Location: "https://example.com/home"})

	assert.Equal(t, []engineCall{
		{Method: "loadURL", Location: "https://example.com/home"},
		{Method: "installBridge"},
	}, h.engine.calls)
}

func TestVisitDuringColdBootIsIssuedOnceWhenReady(t *testing.T) {
	h := newHarness(t, nil)
	h.visit("https://example.com/home", visit.ActionAdvance)
	h.session.Handle(PageFinished{Location: "https://example.com/home"})

	h.visit("https://example.com/posts", visit.ActionAdvance)
	assert.True(t, h.session.Snapshot().Pending)

	h.session.Handle(TurboIsReady{IsReady: true})
	h.session.Handle(TurboIsReady{IsReady: true})

	var visits []engineCall
	for _, c := range h.engine.calls {
		if c.Method == "visitLocation" {
			visits = append(visits, c)
		}
	}
	require.Len(t, visits, 1)
	assert.Equal(t, "https://example.com/posts", visits[0].Location)
	assert.False(t, h.session.Snapshot().Pending)
}

func TestWarmRestoreWithoutTokenIsIssuedAsAdvance(t *testing.T) {
	h := newHarness(t, nil)
	h.coldBoot("https://example.com/home")
	h.session.Reset()
	h.session.Handle(TurboIsReady{IsReady: true})

	h.visit("https://example.com/home", visit.ActionRestore)

	last := h.engine.calls[len(h.engine.calls)-1]
	assert.Equal(t, engineCall{Method: "visitLocation", Location: "https://example.com/home", Action: visit.ActionAdvance}, last)
}

func TestWarmRestoreUsesRecordedToken(t *testing.T) {
	h := newHarness(t, nil)
	h.coldBoot("https://example.com/home")
	h.session.Handle(PageLoaded{RestorationID: "token-1"})

	h.visit("https://example.com/home", visit.ActionRestore)

	last := h.engine.calls[len(h.engine.calls)-1]
	assert.Equal(t, engineCall{Method: "visitLocation", Location: "https://example.com/home", Action: visit.ActionRestore, RestorationID: "token-1"}, last)
}

func TestWarmVisitLifecycle(t *testing.T) {
	h := newHarness(t, nil)
	h.coldBoot("https://example.com/home")
	h.cb.events = nil

	v := h.visit("https://example.com/posts", visit.ActionAdvance)
	h.session.Handle(VisitStarted{ID: "v1", Location: v.Location})
	h.session.Handle(VisitStarted{ID: "v2", Location: v.Location})
	h.session.Handle(VisitRequestStarted{ID: "v1"})
	h.session.Handle(VisitRequestStarted{ID: "v2"})
	h.session.Handle(VisitRequestCompleted{ID: "v2"})
	h.session.Handle(VisitRequestFinished{ID: "v2"})
	h.session.Handle(VisitRendered{ID: "v2"})
	h.session.Handle(VisitCompleted{ID: "v2", RestorationID: "r1"})

	assert.Equal(t, "v2", v.Identifier)
	assert.Equal(t, []string{
		"started https://example.com/posts",
		"requestStarted",
		"requestFinished",
		"rendered",
		"completed offline=false",
	}, h.cb.events)
	assert.Equal(t, 1, h.session.Snapshot().Restorations)
}

func TestLateStartOfSupersededVisitIsIgnored(t *testing.T) {
	h := newHarness(t, nil)
	h.coldBoot("https://example.com/home")

	h.visit("https://example.com/a", visit.ActionAdvance)
	b := h.visit("https://example.com/b", visit.ActionAdvance)
	h.cb.events = nil

	h.session.Handle(VisitStarted{ID: "A", Location: "https://example.com/a"})
	h.session.Handle(VisitStarted{ID: "B", Location: "https://example.com/b"})
	h.session.Handle(VisitRequestStarted{ID: "B"})
	h.session.Handle(VisitRendered{ID: "B"})
	h.session.Handle(VisitCompleted{ID: "B"})

	assert.Equal(t, "B", b.Identifier)
	assert.Equal(t, []string{
		"requestStarted",
		"rendered",
		"completed offline=false",
	}, h.cb.events)
}

func TestStaleEventsAreDropped(t *testing.T) {
	h := newHarness(t, nil)
	h.coldBoot("https://example.com/home")
	v := h.visit("https://example.com/posts", visit.ActionAdvance)
	h.session.Handle(VisitStarted{ID: "current"})
	h.cb.events = nil
	before := h.session.Snapshot()

	h.session.Handle(VisitRequestStarted{ID: "old"})
	h.session.Handle(VisitRequestFailed{ID: "old", StatusCode: 500})
	h.session.Handle(VisitRendered{ID: "old"})
	h.session.Handle(VisitCompleted{ID: "old", RestorationID: "stale-token"})
	h.session.Handle(VisitRendered{ID: ""})

	assert.Empty(t, h.cb.events)
	assert.Equal(t, before, h.session.Snapshot())
	assert.Equal(t, "current", v.Identifier)
}

func TestResetIsIdempotent(t *testing.T) {
	h := newHarness(t, nil)
	h.coldBoot("https://example.com/home")
	h.session.Handle(VisitStarted{ID: "v1"})
	h.session.Handle(PageLoaded{RestorationID: "r1"})

	h.session.Reset()
	once := h.session.Snapshot()
	h.session.Reset()
	twice := h.session.Snapshot()

	assert.Equal(t, once, twice)
	assert.False(t, twice.Ready)
	assert.False(t, twice.Pending)
	assert.False(t, twice.ColdBooting)
	assert.Empty(t, twice.Identifier)
	assert.Empty(t, twice.ColdBootIdentifier)
	assert.Zero(t, twice.Restorations)
}

func TestRequestFailedReportsHTTPError(t *testing.T) {
	h := newHarness(t, nil)
	h.coldBoot("https://example.com/home")
	h.visit("https://example.com/missing", visit.ActionAdvance)
	h.session.Handle(VisitStarted{ID: "v1"})

	h.session.Handle(VisitRequestFailed{ID: "v1", StatusCode: 404})
	h.session.Handle(VisitRequestFailed{ID: "v1", StatusCode: 503, HasCachedSnapshot: true})

	require.Len(t, h.cb.errs, 2)
	var httpErr *visit.HTTPError
	require.ErrorAs(t, h.cb.errs[0], &httpErr)
	assert.Equal(t, 404, httpErr.StatusCode)
	assert.Equal(t, visit.FamilyClient, httpErr.Family)

	var stale *visit.StaleContentError
	require.ErrorAs(t, h.cb.errs[1], &stale)
	require.ErrorAs(t, h.cb.errs[1], &httpErr)
	assert.Equal(t, visit.FamilyServer, httpErr.Family)
}

func TestTurboNotReadyResetsAndReports(t *testing.T) {
	h := newHarness(t, nil)
	h.visit("https://example.com/home", visit.ActionAdvance)
	h.session.Handle(PageFinished{Location: "https://example.com/home"})

	h.session.Handle(TurboIsReady{IsReady: false})

	require.Len(t, h.cb.errs, 1)
	assert.ErrorIs(t, h.cb.errs[0], visit.ErrNotReady)
	snap := h.session.Snapshot()
	assert.False(t, snap.Ready)
	assert.False(t, snap.ColdBooting)
}

func TestTurboFailedToLoad(t *testing.T) {
	h := newHarness(t, nil)
	h.visit("https://example.com/home", visit.ActionAdvance)

	h.session.Handle(TurboFailedToLoad{})

	require.Len(t, h.cb.errs, 1)
	assert.ErrorIs(t, h.cb.errs[0], visit.ErrNotPresent)
	assert.Contains(t, h.cb.events, "receivedError")
}

func TestVisitProposalsAreThrottledPerLocation(t *testing.T) {
	h := newHarness(t, nil)
	h.coldBoot("https://example.com/home")

	h.session.Handle(VisitProposed{Location: "https://example.com/a", Options: `{"action":"replace"}`})
	h.now = h.now.Add(100 * time.Millisecond)
	h.session.Handle(VisitProposed{Location: "https://example.com/a", Options: `{"action":"replace"}`})
	h.now = h.now.Add(600 * time.Millisecond)
	h.session.Handle(VisitProposed{Location: "https://example.com/a", Options: "garbage"})

	require.Len(t, h.cb.proposals, 2)
	assert.Equal(t, visit.ActionReplace, h.cb.proposals[0].Action)
	assert.Equal(t, visit.ActionAdvance, h.cb.proposals[1].Action)
}

func TestOverrideWhenReady(t *testing.T) {
	h := newHarness(t, nil)
	h.coldBoot("https://example.com/home")

	assert.True(t, h.session.ShouldOverride(LocationOverride{Location: "https://example.com/a", IsHTTPGet: true, IsMainFrame: true}))
	h.now = h.now.Add(100 * time.Millisecond)
	assert.True(t, h.session.ShouldOverride(LocationOverride{Location: "https://example.com/b", IsHTTPGet: true, IsMainFrame: true}))
	assert.True(t, h.session.ShouldOverride(LocationOverride{Location: "https://example.com/frame", IsMainFrame: false}))

	assert.Equal(t, []string{"proposed https://example.com/a advance"}, h.cb.events[len(h.cb.events)-1:])
	assert.Len(t, h.cb.proposals, 1)
}

func TestOverrideNotReadyIsDeclined(t *testing.T) {
	h := newHarness(t, nil)

	assert.False(t, h.session.ShouldOverride(LocationOverride{Location: "https://example.com/a", IsHTTPGet: true, IsMainFrame: true}))
	assert.Empty(t, h.cb.proposals)
}

func TestColdBootRedirectResetsAndProposesReplace(t *testing.T) {
	h := newHarness(t, nil)
	h.visit("https://example.com/home", visit.ActionAdvance)
	h.session.Handle(PageFinished{Location: "https://example.com/home"})

	override := h.session.ShouldOverride(LocationOverride{Location: "https://example.com/login", IsHTTPGet: true, IsMainFrame: true})

	assert.True(t, override)
	require.Len(t, h.cb.proposals, 1)
	assert.Equal(t, visit.ActionReplace, h.cb.proposals[0].Action)
	snap := h.session.Snapshot()
	assert.False(t, snap.ColdBooting)
	assert.Empty(t, snap.ColdBootIdentifier)
}

func TestMainFrameErrorsReset(t *testing.T) {
	h := newHarness(t, nil)
	h.coldBoot("https://example.com/home")

	h.session.Handle(ReceivedHTTPError{StatusCode: 500, IsMainFrame: false})
	assert.True(t, h.session.IsReady())

	h.session.Handle(ReceivedWebError{Code: -2, Description: "net::ERR_NAME_NOT_RESOLVED", IsMainFrame: true})
	assert.False(t, h.session.IsReady())
	require.Len(t, h.cb.errs, 1)
	var webErr *visit.WebError
	require.ErrorAs(t, h.cb.errs[0], &webErr)
	assert.Equal(t, -2, webErr.Code)
}

func TestNonHTTPFailureCrossOriginRedirect(t *testing.T) {
	prober := &fakeProber{
		result: redirect.Result{Kind: redirect.CrossOriginRedirect, Location: "https://login.example.net/"},
		calls:  make(chan string, 1),
	}
	h := newHarness(t, prober)
	h.coldBoot("https://example.com/home")
	h.visit("https://example.com/account", visit.ActionAdvance)
	h.session.Handle(VisitStarted{ID: "v1"})

	h.session.Handle(VisitRequestFailedNonHTTP{ID: "v1", Location: "https://example.com/account"})

	assert.Equal(t, "https://example.com/account", <-prober.calls)
	(<-h.posted)()

	assert.Contains(t, h.cb.events, "crossOrigin https://login.example.net/")
	assert.Empty(t, h.cb.errs)
}

func TestNonHTTPFailureWithoutRedirectDegradesToUnknown(t *testing.T) {
	prober := &fakeProber{
		result: redirect.Result{Kind: redirect.NoRedirect, Location: "https://example.com/account"},
		calls:  make(chan string, 1),
	}
	h := newHarness(t, prober)
	h.coldBoot("https://example.com/home")
	h.visit("https://example.com/account", visit.ActionAdvance)
	h.session.Handle(VisitStarted{ID: "v1"})

	h.session.Handle(VisitRequestFailedNonHTTP{ID: "v1", Location: "https://example.com/account", HasCachedSnapshot: true})
	<-prober.calls
	(<-h.posted)()

	require.Len(t, h.cb.errs, 1)
	assert.ErrorIs(t, h.cb.errs[0], visit.WebErrorUnknown)
	var stale *visit.StaleContentError
	assert.ErrorAs(t, h.cb.errs[0], &stale)
}

func TestFailedProbeLogsTransportError(t *testing.T) {
	prober := &fakeProber{
		result: redirect.Result{Kind: redirect.Error, Err: &net.DNSError{Err: "no such host", Name: "example.com"}},
		calls:  make(chan string, 1),
	}
	h := newHarness(t, prober)
	core, logs := observer.New(zapcore.DebugLevel)
	h.session.logger = zap.New(core)
	h.coldBoot("https://example.com/home")
	h.visit("https://example.com/account", visit.ActionAdvance)
	h.session.Handle(VisitStarted{ID: "v1"})

	h.session.Handle(VisitRequestFailedNonHTTP{ID: "v1", Location: "https://example.com/account"})
	<-prober.calls
	(<-h.posted)()

	require.Len(t, h.cb.errs, 1)
	assert.ErrorIs(t, h.cb.errs[0], visit.WebErrorUnknown)
	entries := logs.FilterMessage("Redirect probe failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "Host Lookup", entries[0].ContextMap()["transport"])
}

func TestProbeResultForSupersededVisitIsDropped(t *testing.T) {
	prober := &fakeProber{
		result: redirect.Result{Kind: redirect.CrossOriginRedirect, Location: "https://login.example.net/"},
		calls:  make(chan string, 1),
	}
	h := newHarness(t, prober)
	h.coldBoot("https://example.com/home")
	h.visit("https://example.com/account", visit.ActionAdvance)
	h.session.Handle(VisitStarted{ID: "v1"})
	h.session.Handle(VisitRequestFailedNonHTTP{ID: "v1", Location: "https://example.com/account"})
	<-prober.calls

	h.visit("https://example.com/other", visit.ActionAdvance)
	h.session.Handle(VisitStarted{ID: "v2"})
	h.cb.events = nil
	(<-h.posted)()

	assert.Empty(t, h.cb.events)
}

func TestRestoreCurrentVisit(t *testing.T) {
	h := newHarness(t, nil)
	other := &recorder{}

	assert.False(t, h.session.RestoreCurrentVisit(1, other))

	h.coldBoot("https://example.com/home")
	assert.False(t, h.session.RestoreCurrentVisit(1, other))

	h.session.Handle(PageLoaded{RestorationID: "r1"})
	assert.True(t, h.session.RestoreCurrentVisit(1, other))
	assert.Equal(t, []string{"started https://example.com/home", "rendered", "completed offline=false"}, other.events)
	assert.Same(t, other, h.session.Current().Callback)

	assert.False(t, h.session.RestoreCurrentVisit(2, other))
}

func TestRemoveCallbackStopsNotifications(t *testing.T) {
	h := newHarness(t, nil)
	h.coldBoot("https://example.com/home")
	h.cb.events = nil

	h.session.RemoveCallback(&recorder{})
	h.session.Handle(PageInvalidated{})
	require.Equal(t, []string{"pageInvalidated"}, h.cb.events)

	h.session.RemoveCallback(h.cb)
	h.session.Handle(PageInvalidated{})
	assert.Equal(t, []string{"pageInvalidated"}, h.cb.events)
}

func TestReloadVisitColdBootsWithReload(t *testing.T) {
	h := newHarness(t, nil)
	h.coldBoot("https://example.com/home")

	h.session.Visit(&Visit{Location: "https://example.com/home", DestinationID: 1, Reload: true, Options: visit.DefaultOptions(), Callback: h.cb})

	assert.Equal(t, engineCall{Method: "reload"}, h.engine.calls[len(h.engine.calls)-1])
	assert.True(t, h.session.Snapshot().ColdBooting)
}

func TestFormSubmissionAndRenderProcessGone(t *testing.T) {
	h := newHarness(t, nil)
	h.coldBoot("https://example.com/home")
	h.cb.events = nil

	h.session.Handle(FormSubmissionStarted{Location: "https://example.com/posts"})
	h.session.Handle(FormSubmissionFinished{Location: "https://example.com/posts"})
	h.session.Handle(RenderProcessGone{})

	assert.Equal(t, []string{
		"formStarted https://example.com/posts",
		"formFinished https://example.com/posts",
		"renderProcessGone",
	}, h.cb.events)
	assert.False(t, h.session.IsReady())
}
