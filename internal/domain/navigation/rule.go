package navigation

import (
	"fmt"
	"net/url"

	"github.com/GriffinCanCode/webshell/backend/internal/domain/pathconfig"
	"github.com/GriffinCanCode/webshell/backend/internal/domain/visit"
)

// Mode is how a decision moves between presentation contexts.
type Mode int

const (
	ModeInContext Mode = iota
	ModeToModal
	ModeDismissModal
	ModeRefresh
	ModeNone
)

func (m Mode) String() string {
	switch m {
	case ModeToModal:
		return "to_modal"
	case ModeDismissModal:
		return "dismiss_modal"
	case ModeRefresh:
		return "refresh"
	case ModeNone:
		return "none"
	default:
		return "in_context"
	}
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// PropertiesResolver resolves path properties for a location.
type PropertiesResolver interface {
	Properties(location string) pathconfig.Properties
}

// Destinations maps a destination URI to how it is displayed.
type Destinations map[string]Kind

// Request is a location to route to.
type Request struct {
	Location  string
	Options   visit.Options
	ExtraData map[string]string
}

// ModalResult hands a location from a dismissed modal to the screen
// beneath it.
type ModalResult struct {
	Location       string            `json:"location"`
	Options        visit.Options     `json:"options"`
	ExtraData      map[string]string `json:"extraData,omitempty"`
	ShouldNavigate bool              `json:"shouldNavigate"`
}

// Rule is the decision for one routed location.
type Rule struct {
	Request           Request
	CurrentLocation   string
	CurrentProperties pathconfig.Properties
	NewProperties     pathconfig.Properties
	CurrentContext    pathconfig.PresentationContext
	NewContext        pathconfig.PresentationContext
	Presentation      pathconfig.Presentation
	Mode              Mode
	ModalResult       *ModalResult
	// URI and Kind describe the destination hosting the new location. They
	// are only set when the decision adds an entry.
	URI  string
	Kind Kind
}

// NewRule computes the decision for req against stack.
func NewRule(req Request, stack *Backstack, resolver PropertiesResolver, destinations Destinations) (*Rule, error) {
	current, hasCurrent := stack.Current()

	r := &Rule{
		Request:         req,
		CurrentLocation: current.Location,
		NewProperties:   resolver.Properties(req.Location),
	}
	if hasCurrent {
		r.CurrentProperties = resolver.Properties(current.Location)
	} else {
		r.CurrentProperties = pathconfig.Properties{}
	}
	r.CurrentContext = r.CurrentProperties.Context()
	r.NewContext = r.NewProperties.Context()

	r.Presentation = r.presentation(stack, hasCurrent)
	r.Mode = r.mode()

	if r.Presentation == pathconfig.PresentationReplaceRoot && r.NewContext == pathconfig.ContextModal {
		return nil, &visit.ConfigurationError{
			Message: fmt.Sprintf("presentation replace_root is not allowed in a modal context (%s)", req.Location),
		}
	}

	if r.Mode == ModeDismissModal {
		r.ModalResult = &ModalResult{
			Location:       req.Location,
			Options:        req.Options,
			ExtraData:      req.ExtraData,
			ShouldNavigate: r.NewProperties.Presentation() != pathconfig.PresentationNone,
		}
	}

	if r.addsEntry() {
		uri, kind, err := resolveDestination(r.NewProperties, destinations)
		if err != nil {
			return nil, err
		}
		r.URI, r.Kind = uri, kind
	}
	return r, nil
}

func (r *Rule) presentation(stack *Backstack, hasCurrent bool) pathconfig.Presentation {
	if explicit := r.NewProperties.Presentation(); explicit != pathconfig.PresentationDefault {
		if explicit == pathconfig.PresentationPop && stack.IsAtStart() {
			return pathconfig.PresentationNone
		}
		return explicit
	}
	if !hasCurrent {
		return pathconfig.PresentationReplaceRoot
	}

	queryReplace := r.NewProperties.QueryStringPresentation() == pathconfig.QueryStringReplace
	previous, hasPrevious := stack.Previous()

	switch {
	case hasPrevious && sameLocation(r.Request.Location, previous.Location, queryReplace):
		return pathconfig.PresentationPop
	case sameLocation(r.Request.Location, r.CurrentLocation, queryReplace) && stack.IsAtStart():
		return pathconfig.PresentationReplaceRoot
	case sameLocation(r.Request.Location, r.CurrentLocation, queryReplace) || r.Request.Options.Action == visit.ActionReplace:
		return pathconfig.PresentationReplace
	default:
		return pathconfig.PresentationPush
	}
}

func (r *Rule) mode() Mode {
	replaceRoot := r.Presentation == pathconfig.PresentationReplaceRoot
	switch {
	case r.CurrentContext == pathconfig.ContextModal && r.NewContext == pathconfig.ContextDefault && !replaceRoot:
		return ModeDismissModal
	case r.CurrentContext == pathconfig.ContextDefault && r.NewContext == pathconfig.ContextModal && !replaceRoot:
		return ModeToModal
	case r.Presentation == pathconfig.PresentationRefresh:
		return ModeRefresh
	case r.Presentation == pathconfig.PresentationNone:
		return ModeNone
	default:
		return ModeInContext
	}
}

func (r *Rule) addsEntry() bool {
	if r.Mode != ModeInContext && r.Mode != ModeToModal {
		return false
	}
	switch r.Presentation {
	case pathconfig.PresentationPush, pathconfig.PresentationReplace, pathconfig.PresentationReplaceRoot:
		return true
	}
	return false
}

func resolveDestination(props pathconfig.Properties, destinations Destinations) (string, Kind, error) {
	uri := props.URI()
	if kind, ok := destinations[uri]; ok {
		return uri, kind, nil
	}
	if fallback := props.FallbackURI(); fallback != "" {
		if kind, ok := destinations[fallback]; ok {
			return fallback, kind, nil
		}
	}
	return "", KindScreen, &visit.ConfigurationError{
		Message: fmt.Sprintf("no destination registered for uri %q", uri),
	}
}

// sameLocation compares paths, and queries unless ignoreQuery is set.
func sameLocation(a, b string, ignoreQuery bool) bool {
	if a == "" || b == "" {
		return false
	}
	ua, errA := url.Parse(a)
	ub, errB := url.Parse(b)
	if errA != nil || errB != nil {
		return a == b
	}
	if ua.Path != ub.Path {
		return false
	}
	return ignoreQuery || ua.RawQuery == ub.RawQuery
}
