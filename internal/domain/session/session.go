package session

import (
	"context"
	"hash/fnv"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/webshell/backend/internal/domain/visit"
	"github.com/GriffinCanCode/webshell/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/webshell/backend/internal/providers/redirect"
	"github.com/GriffinCanCode/webshell/backend/internal/shared/loop"
)

const (
	// DefaultThrottleWindow coalesces duplicate proposals from a single tap.
	DefaultThrottleWindow = 500 * time.Millisecond
	// DefaultProbeTimeout bounds a redirect probe.
	DefaultProbeTimeout = 15 * time.Second
)

// Config configures a Session.
type Config struct {
	Engine Engine
	// Executor runs probe results on the session's loop. Defaults to
	// running them on the probe goroutine, which is only safe in tests.
	Executor       loop.Executor
	Prober         RedirectProber
	Logger         *zap.Logger
	Metrics        *monitoring.Metrics
	ThrottleWindow time.Duration
	ProbeTimeout   time.Duration
	// Now replaces time.Now for throttling.
	Now func() time.Time
}

// Session is the visit coordinator for one web view.
type Session struct {
	engine   Engine
	executor loop.Executor
	prober   RedirectProber
	logger   *zap.Logger
	metrics  *monitoring.Metrics

	probeTimeout time.Duration
	ctx          context.Context
	cancel       context.CancelFunc

	current      *Visit
	coldBootID   string
	restorations map[int]string
	isReady      bool
	isColdBoot   bool
	isPending    bool

	proposals *throttle
	overrides *throttle
}

// New creates a session around engine.
func New(cfg Config) *Session {
	if cfg.Executor == nil {
		cfg.Executor = loop.Immediate
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.ThrottleWindow == 0 {
		cfg.ThrottleWindow = DefaultThrottleWindow
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = DefaultProbeTimeout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		engine:       cfg.Engine,
		executor:     cfg.Executor,
		prober:       cfg.Prober,
		logger:       cfg.Logger,
		metrics:      cfg.Metrics,
		probeTimeout: cfg.ProbeTimeout,
		ctx:          ctx,
		cancel:       cancel,
		restorations: make(map[int]string),
		proposals:    newThrottle(cfg.ThrottleWindow, cfg.Now),
		overrides:    newThrottle(cfg.ThrottleWindow, cfg.Now),
	}
}

// Current returns the current visit, or nil.
func (s *Session) Current() *Visit {
	return s.current
}

// IsReady reports whether the page's navigation library is ready for warm
// visits.
func (s *Session) IsReady() bool {
	return s.isReady
}

// Visit makes v the current visit and issues it.
func (s *Session) Visit(v *Visit) {
	s.current = v
	s.metrics.RecordVisit("started")
	s.logger.Debug("Visit",
		zap.String("location", v.Location),
		zap.Int("destination", v.DestinationID),
		zap.String("action", string(v.Options.Action)),
		zap.Bool("reload", v.Reload))

	s.notify(func(cb Callback) { cb.VisitLocationStarted(v.Location) })

	if v.Reload {
		s.Reset()
	}

	switch {
	case s.isColdBoot:
		s.isPending = true
	case s.isReady:
		s.visitWarm(v)
	default:
		s.visitCold(v)
	}
}

// Reset forgets every identifier and restoration token and marks the page
// not ready. The current visit stays but loses its identifier.
func (s *Session) Reset() {
	if s.current != nil {
		s.current.Identifier = ""
	}
	s.coldBootID = ""
	clear(s.restorations)
	s.isPending = false
	s.isReady = false
	s.isColdBoot = false
}

// RestoreCurrentVisit re-renders the current visit for cb without a request
// when the page is ready and a restoration token exists for destinationID.
func (s *Session) RestoreCurrentVisit(destinationID int, cb Callback) bool {
	v := s.current
	if v == nil || !s.isReady || v.DestinationID != destinationID {
		return false
	}
	if _, ok := s.restorations[destinationID]; !ok {
		return false
	}

	s.logger.Debug("Restoring visit", zap.String("location", v.Location), zap.Int("destination", destinationID))
	v.Callback = cb
	cb.VisitLocationStarted(v.Location)
	cb.VisitRendered()
	cb.VisitCompleted(false)
	return true
}

// RemoveCallback detaches cb from the current visit.
func (s *Session) RemoveCallback(cb Callback) {
	if s.current != nil && s.current.Callback == cb {
		s.current.Callback = nil
	}
}

// Close cancels in-flight redirect probes.
func (s *Session) Close() {
	s.cancel()
}

// ShouldOverride reports whether the native side takes over a navigation the
// web view is about to perform. Main-frame overrides become proposals.
func (s *Session) ShouldOverride(ev LocationOverride) bool {
	coldBootRedirect := s.isColdBoot && ev.IsHTTPGet && s.current != nil && ev.Location != s.current.Location
	override := s.isReady || coldBootRedirect

	if coldBootRedirect {
		s.logger.Debug("Cold boot redirect", zap.String("location", ev.Location))
		s.Reset()
	}

	if override && ev.IsMainFrame {
		options := visit.DefaultOptions()
		if coldBootRedirect {
			options = options.WithAction(visit.ActionReplace)
		}
		if s.overrides.allow("") {
			s.metrics.RecordProposal("forwarded")
			s.notify(func(cb Callback) { cb.VisitProposedToLocation(ev.Location, options) })
		} else {
			s.metrics.RecordProposal("throttled")
		}
	}
	return override
}

// Handle applies one event.
func (s *Session) Handle(ev Event) {
	if !s.accepts(ev) {
		s.metrics.RecordVisit("stale")
		s.logger.Debug("Dropping stale event", zap.String("event", ev.Name()), zap.String("identifier", s.identifier()))
		return
	}
	s.logger.Debug("Event", zap.String("event", ev.Name()), zap.String("location", s.location()), zap.String("identifier", s.identifier()))

	switch e := ev.(type) {
	case VisitProposed:
		if !s.proposals.allow(e.Location) {
			s.metrics.RecordProposal("throttled")
			return
		}
		s.metrics.RecordProposal("forwarded")
		options := visit.OptionsFromJSON(e.Options)
		s.notify(func(cb Callback) { cb.VisitProposedToLocation(e.Location, options) })

	case VisitStarted:
		// A superseded visit can still report its start; only the current
		// location may claim the identifier, and the latest start wins.
		if s.current != nil && (e.Location == "" || e.Location == s.current.Location) {
			s.current.Identifier = e.ID
		}

	case VisitRequestStarted:
		s.notify(func(cb Callback) { cb.RequestStarted() })

	case VisitRequestCompleted:

	case VisitRequestFinished:
		s.notify(func(cb Callback) { cb.RequestFinished() })

	case VisitRequestFailed:
		s.fail(e.HasCachedSnapshot, visit.HTTPErrorFrom(e.StatusCode))

	case VisitRequestFailedNonHTTP:
		s.probe(e)

	case RedirectProbeFinished:
		s.resolveProbe(e)

	case PageLoaded:
		if s.current != nil {
			s.restorations[s.current.DestinationID] = e.RestorationID
		}

	case VisitRendered:
		s.metrics.RecordVisit("rendered")
		s.notify(func(cb Callback) { cb.VisitRendered() })

	case VisitCompleted:
		if s.current != nil && e.RestorationID != "" {
			s.restorations[s.current.DestinationID] = e.RestorationID
		}
		s.metrics.RecordVisit("completed")
		offline := s.current != nil && s.current.CompletedOffline
		s.notify(func(cb Callback) { cb.VisitCompleted(offline) })

	case FormSubmissionStarted:
		s.notify(func(cb Callback) { cb.FormSubmissionStarted(e.Location) })

	case FormSubmissionFinished:
		s.notify(func(cb Callback) { cb.FormSubmissionFinished(e.Location) })

	case PageInvalidated:
		s.notify(func(cb Callback) { cb.PageInvalidated() })

	case TurboIsReady:
		s.ready(e.IsReady)

	case TurboFailedToLoad:
		s.Reset()
		s.receivedError(visit.ErrNotPresent)

	case PageStarted:
		s.coldBootID = ""
		s.notify(func(cb Callback) { cb.PageStarted(e.Location) })

	case PageFinished:
		id := coldBootIdentifier(e.Location)
		if id == s.coldBootID {
			return
		}
		s.coldBootID = id
		s.notify(func(cb Callback) { cb.PageFinished(e.Location) })
		s.engine.InstallBridge()

	case LocationOverride:
		s.ShouldOverride(e)

	case ReceivedHTTPError:
		if e.IsMainFrame {
			s.Reset()
			s.receivedError(visit.HTTPErrorFrom(e.StatusCode))
		}

	case ReceivedWebError:
		if e.IsMainFrame {
			s.Reset()
			s.receivedError(visit.WebErrorForCode(e.Code, e.Description))
		}

	case RenderProcessGone:
		s.Reset()
		s.notify(func(cb Callback) { cb.RenderProcessGone() })
	}
}

// accepts is the stale-identifier guard. Visit-scoped events must carry the
// current visit's identifier; rendered and completed also accept the cold
// boot identifier.
func (s *Session) accepts(ev Event) bool {
	var (
		id            string
		allowColdBoot bool
	)
	switch e := ev.(type) {
	case VisitRequestStarted:
		id = e.ID
	case VisitRequestCompleted:
		id = e.ID
	case VisitRequestFinished:
		id = e.ID
	case VisitRequestFailed:
		id = e.ID
	case VisitRequestFailedNonHTTP:
		id = e.ID
	case RedirectProbeFinished:
		id = e.ID
	case VisitRendered:
		id, allowColdBoot = e.ID, true
	case VisitCompleted:
		id, allowColdBoot = e.ID, true
	default:
		return true
	}

	if id == "" {
		return false
	}
	if s.current != nil && id == s.current.Identifier {
		return true
	}
	return allowColdBoot && id == s.coldBootID
}

func (s *Session) ready(isReady bool) {
	if !isReady {
		s.Reset()
		s.fail(false, visit.ErrNotReady)
		return
	}

	s.isReady = true
	s.isColdBoot = false

	if s.isPending {
		s.isPending = false
		if s.current != nil {
			s.visitWarm(s.current)
		}
		return
	}

	coldBootID := s.coldBootID
	restorationID := ""
	if s.current != nil {
		restorationID = s.restorations[s.current.DestinationID]
	}
	s.Handle(VisitRendered{ID: coldBootID})
	s.Handle(VisitCompleted{ID: coldBootID, RestorationID: restorationID})
}

func (s *Session) visitWarm(v *Visit) {
	options := v.Options
	restorationID := ""
	if options.Action == visit.ActionRestore {
		restorationID = s.restorations[v.DestinationID]
		if restorationID == "" {
			options = options.WithAction(visit.ActionAdvance)
		}
	}
	s.engine.VisitLocation(v.Location, options, restorationID)
}

func (s *Session) visitCold(v *Visit) {
	s.isColdBoot = true
	if v.Reload {
		s.engine.Reload()
		return
	}
	s.engine.LoadURL(v.Location)
}

func (s *Session) probe(e VisitRequestFailedNonHTTP) {
	if s.prober == nil {
		s.fail(e.HasCachedSnapshot, visit.WebErrorUnknown)
		return
	}

	ctx, cancel := context.WithTimeout(s.ctx, s.probeTimeout)
	go func() {
		defer cancel()
		result := s.prober.Fetch(ctx, e.Location)
		if s.ctx.Err() != nil {
			return
		}
		s.executor.Post(func() {
			s.Handle(RedirectProbeFinished{
				ID:                e.ID,
				Location:          e.Location,
				HasCachedSnapshot: e.HasCachedSnapshot,
				Result:            result,
			})
		})
	}()
}

func (s *Session) resolveProbe(e RedirectProbeFinished) {
	if e.Result.Kind == redirect.CrossOriginRedirect {
		s.logger.Debug("Cross-origin redirect", zap.String("location", e.Location), zap.String("target", e.Result.Location))
		s.notify(func(cb Callback) { cb.VisitProposedToCrossOriginRedirect(e.Result.Location) })
		return
	}
	if e.Result.Err != nil {
		s.logger.Debug("Redirect probe failed",
			zap.String("location", e.Location),
			zap.String("transport", visit.WebErrorFrom(e.Result.Err).Description()),
			zap.Error(e.Result.Err))
	}
	s.fail(e.HasCachedSnapshot, visit.WebErrorUnknown)
}

func (s *Session) fail(hasCachedSnapshot bool, err error) {
	err = visit.Failure(hasCachedSnapshot, err)
	s.metrics.RecordVisit("failed")
	s.metrics.RecordVisitError(visit.Kind(err))
	s.logger.Debug("Visit failed", zap.String("location", s.location()), zap.Bool("cachedSnapshot", hasCachedSnapshot), zap.Error(err))
	s.notify(func(cb Callback) { cb.RequestFailedWithError(hasCachedSnapshot, err) })
}

func (s *Session) receivedError(err error) {
	s.metrics.RecordVisitError(visit.Kind(err))
	s.logger.Debug("Received error", zap.String("location", s.location()), zap.Error(err))
	s.notify(func(cb Callback) { cb.ReceivedError(err) })
}

func (s *Session) notify(fn func(Callback)) {
	if s.current == nil || s.current.Callback == nil {
		return
	}
	fn(s.current.Callback)
}

func (s *Session) identifier() string {
	if s.current == nil {
		return ""
	}
	return s.current.Identifier
}

func (s *Session) location() string {
	if s.current == nil {
		return ""
	}
	return s.current.Location
}

// coldBootIdentifier derives a stable identifier for a full page load.
func coldBootIdentifier(location string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(location))
	return strconv.FormatUint(uint64(h.Sum32()), 16)
}

// Snapshot is a read-only view of session state.
type Snapshot struct {
	Location           string `json:"location"`
	DestinationID      int    `json:"destinationId"`
	Identifier         string `json:"identifier"`
	ColdBootIdentifier string `json:"coldBootIdentifier"`
	Ready              bool   `json:"ready"`
	ColdBooting        bool   `json:"coldBooting"`
	Pending            bool   `json:"pending"`
	Restorations       int    `json:"restorations"`
}

// Snapshot captures the current state.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		ColdBootIdentifier: s.coldBootID,
		Ready:              s.isReady,
		ColdBooting:        s.isColdBoot,
		Pending:            s.isPending,
		Restorations:       len(s.restorations),
	}
	if s.current != nil {
		snap.Location = s.current.Location
		snap.DestinationID = s.current.DestinationID
		snap.Identifier = s.current.Identifier
	}
	return snap
}
