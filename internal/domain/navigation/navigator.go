package navigation

import (
	"go.uber.org/zap"

	"github.com/GriffinCanCode/webshell/backend/internal/domain/pathconfig"
	"github.com/GriffinCanCode/webshell/backend/internal/domain/visit"
	"github.com/GriffinCanCode/webshell/backend/internal/infrastructure/monitoring"
)

// Operation names a back stack mutation.
type Operation string

const (
	OpStart        Operation = "start"
	OpPush         Operation = "push"
	OpPop          Operation = "pop"
	OpReplace      Operation = "replace"
	OpReplaceRoot  Operation = "replace_root"
	OpClearAll     Operation = "clear_all"
	OpPushModal    Operation = "push_modal"
	OpDismissModal Operation = "dismiss_modal"
	OpRefresh      Operation = "refresh"
)

// Transition describes a completed mutation. Current is the new top entry;
// Pushed is set when Current was added by this transition.
type Transition struct {
	Operation Operation
	Rule      *Rule
	Current   Entry
	Pushed    bool
	Popped    []Entry
}

// Host is the native side the navigator drives.
type Host interface {
	// PrepareNavigation lets the outgoing screen release shared resources.
	// It must call onReady exactly once, after which the stack mutates.
	PrepareNavigation(onReady func())
	// Refresh reloads the current screen in place.
	Refresh()
	// Navigated reports a completed mutation.
	Navigated(t Transition)
}

// NavigatorConfig configures a Navigator.
type NavigatorConfig struct {
	Resolver     PropertiesResolver
	Destinations Destinations
	Router       *Router
	Host         Host
	Logger       *zap.Logger
	Metrics      *monitoring.Metrics
}

// Navigator applies routing decisions to a back stack.
type Navigator struct {
	stack        *Backstack
	resolver     PropertiesResolver
	destinations Destinations
	router       *Router
	host         Host
	results      *ModalResults
	logger       *zap.Logger
	metrics      *monitoring.Metrics
}

// NewNavigator creates a navigator with an empty back stack.
func NewNavigator(cfg NavigatorConfig) *Navigator {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Navigator{
		stack:        NewBackstack(),
		resolver:     cfg.Resolver,
		destinations: cfg.Destinations,
		router:       cfg.Router,
		host:         cfg.Host,
		results:      &ModalResults{},
		logger:       logger,
		metrics:      cfg.Metrics,
	}
}

// Backstack exposes the stack for inspection.
func (n *Navigator) Backstack() *Backstack {
	return n.stack
}

// ModalResults exposes the modal result mailbox.
func (n *Navigator) ModalResults() *ModalResults {
	return n.results
}

// Start makes location the start destination.
func (n *Navigator) Start(location string) error {
	props := n.resolver.Properties(location)
	uri, kind, err := resolveDestination(props, n.destinations)
	if err != nil {
		return err
	}
	entry := Entry{
		Location:   location,
		Kind:       kind,
		Context:    pathconfig.ContextDefault,
		Options:    visit.DefaultOptions(),
		URI:        uri,
		Properties: props,
	}
	n.prepare(func() {
		current, popped := n.stack.ReplaceRoot(entry)
		n.finish(Transition{Operation: OpStart, Current: current, Pushed: true, Popped: popped})
	})
	return nil
}

// Route routes location with options.
func (n *Navigator) Route(location string, options visit.Options) error {
	return n.RouteRequest(Request{Location: location, Options: options})
}

// RouteRequest routes req. A ConfigurationError is returned untouched; a
// router cancellation is not an error.
func (n *Navigator) RouteRequest(req Request) error {
	if n.router != nil && n.router.Decide(req.Location) == DecisionCancel {
		return nil
	}

	rule, err := NewRule(req, n.stack, n.resolver, n.destinations)
	if err != nil {
		n.logger.Error("Invalid navigation rule", zap.String("location", req.Location), zap.Error(err))
		return err
	}

	n.logger.Debug("Route",
		zap.String("location", req.Location),
		zap.String("current", rule.CurrentLocation),
		zap.String("presentation", rule.Presentation.String()),
		zap.String("mode", rule.Mode.String()),
		zap.String("context", rule.NewContext.String()))

	switch rule.Mode {
	case ModeNone:
	case ModeRefresh:
		n.refresh()
	case ModeDismissModal:
		n.prepare(func() { n.dismissModal(rule) })
	case ModeToModal:
		n.prepare(func() { n.toModal(rule) })
	default:
		n.prepare(func() { n.inContext(rule) })
	}
	return nil
}

// Pop removes the top entry.
func (n *Navigator) Pop() {
	n.prepare(func() {
		popped, ok := n.stack.Pop()
		if !ok {
			return
		}
		n.finishCurrent(OpPop, nil, []Entry{popped})
	})
}

// ClearAll pops back to the start destination.
func (n *Navigator) ClearAll() {
	n.prepare(func() {
		popped := n.stack.PopToStart()
		if len(popped) == 0 {
			return
		}
		n.finishCurrent(OpClearAll, nil, popped)
	})
}

// Refresh reloads the current screen in place.
func (n *Navigator) Refresh() {
	n.refresh()
}

func (n *Navigator) refresh() {
	n.metrics.RecordNavigation(string(OpRefresh))
	if n.host != nil {
		n.host.Refresh()
	}
}

func (n *Navigator) inContext(rule *Rule) {
	switch rule.Presentation {
	case pathconfig.PresentationPop:
		popped, ok := n.stack.Pop()
		if ok {
			n.finishCurrent(OpPop, rule, []Entry{popped})
		}

	case pathconfig.PresentationReplace:
		if n.stack.IsAtStart() {
			n.replaceRoot(rule)
			return
		}
		popped, _ := n.stack.Pop()
		current := n.stack.Push(n.entryFor(rule))
		n.finish(Transition{Operation: OpReplace, Rule: rule, Current: current, Pushed: true, Popped: []Entry{popped}})

	case pathconfig.PresentationReplaceRoot:
		n.replaceRoot(rule)

	case pathconfig.PresentationClearAll:
		popped := n.stack.PopToStart()
		n.finishCurrent(OpClearAll, rule, popped)

	default:
		var popped []Entry
		if top, ok := n.stack.Current(); ok && top.Kind == KindOverlay {
			if e, ok := n.stack.Pop(); ok {
				popped = append(popped, e)
			}
		}
		current := n.stack.Push(n.entryFor(rule))
		n.finish(Transition{Operation: OpPush, Rule: rule, Current: current, Pushed: true, Popped: popped})
	}
}

func (n *Navigator) toModal(rule *Rule) {
	switch rule.Presentation {
	case pathconfig.PresentationPop:
		popped, ok := n.stack.Pop()
		if ok {
			n.finishCurrent(OpPop, rule, []Entry{popped})
		}

	case pathconfig.PresentationClearAll:
		n.finishCurrent(OpClearAll, rule, n.stack.PopToStart())

	default:
		var popped []Entry
		if rule.Presentation == pathconfig.PresentationReplace {
			if e, ok := n.stack.Pop(); ok {
				popped = append(popped, e)
			}
		}
		current := n.stack.Push(n.entryFor(rule))
		n.finish(Transition{Operation: OpPushModal, Rule: rule, Current: current, Pushed: true, Popped: popped})
	}
}

func (n *Navigator) dismissModal(rule *Rule) {
	top, _ := n.stack.Current()

	var popped []Entry
	if top.Kind == KindOverlay {
		popped = n.stack.PopModal()
		n.results.Send(*rule.ModalResult)
	} else {
		n.results.Send(*rule.ModalResult)
		popped = n.stack.PopModal()
	}
	n.finishCurrent(OpDismissModal, rule, popped)
}

func (n *Navigator) replaceRoot(rule *Rule) {
	current, popped := n.stack.ReplaceRoot(n.entryFor(rule))
	n.finish(Transition{Operation: OpReplaceRoot, Rule: rule, Current: current, Pushed: true, Popped: popped})
}

func (n *Navigator) entryFor(rule *Rule) Entry {
	return Entry{
		Location:   rule.Request.Location,
		Kind:       rule.Kind,
		Context:    rule.NewContext,
		Options:    rule.Request.Options,
		URI:        rule.URI,
		Properties: rule.NewProperties,
	}
}

func (n *Navigator) finishCurrent(op Operation, rule *Rule, popped []Entry) {
	current, _ := n.stack.Current()
	n.finish(Transition{Operation: op, Rule: rule, Current: current, Popped: popped})
}

func (n *Navigator) finish(t Transition) {
	n.metrics.RecordNavigation(string(t.Operation))
	n.logger.Debug("Navigated",
		zap.String("operation", string(t.Operation)),
		zap.String("location", t.Current.Location),
		zap.Int("entry", t.Current.ID),
		zap.Int("popped", len(t.Popped)),
		zap.Int("depth", n.stack.Len()))
	if n.host != nil {
		n.host.Navigated(t)
	}
}

func (n *Navigator) prepare(fn func()) {
	if n.host == nil {
		fn()
		return
	}
	n.host.PrepareNavigation(fn)
}
