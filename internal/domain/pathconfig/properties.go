package pathconfig

import (
	"strconv"
	"strings"
)

// Property keys understood by the navigation layer.
const (
	KeyPresentation            = "presentation"
	KeyContext                 = "context"
	KeyQueryStringPresentation = "query_string_presentation"
	KeyURI                     = "uri"
	KeyFallbackURI             = "fallback_uri"
	KeyTitle                   = "title"
	KeyPullToRefreshEnabled    = "pull_to_refresh_enabled"
	KeyAnimated                = "animated"
)

// DefaultURI is the destination used for locations without a "uri" property.
const DefaultURI = "hotwire://fragment/web"

// Presentation is the backstack operation requested for a location.
type Presentation int

const (
	PresentationDefault Presentation = iota
	PresentationPush
	PresentationPop
	PresentationReplace
	PresentationReplaceRoot
	PresentationClearAll
	PresentationRefresh
	PresentationNone
)

var presentationNames = map[Presentation]string{
	PresentationDefault:     "default",
	PresentationPush:        "push",
	PresentationPop:         "pop",
	PresentationReplace:     "replace",
	PresentationReplaceRoot: "replace_root",
	PresentationClearAll:    "clear_all",
	PresentationRefresh:     "refresh",
	PresentationNone:        "none",
}

func (p Presentation) String() string {
	if name, ok := presentationNames[p]; ok {
		return name
	}
	return "default"
}

func (p Presentation) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// ParsePresentation maps a property value to a Presentation. Unknown values
// are PresentationDefault.
func ParsePresentation(value string) Presentation {
	value = strings.ToLower(strings.TrimSpace(value))
	for p, name := range presentationNames {
		if name == value {
			return p
		}
	}
	return PresentationDefault
}

// PresentationContext tells whether a location lives in the main stack or in
// a modal stack on top of it.
type PresentationContext int

const (
	ContextDefault PresentationContext = iota
	ContextModal
)

func (c PresentationContext) String() string {
	if c == ContextModal {
		return "modal"
	}
	return "default"
}

func (c PresentationContext) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// ParseContext maps a property value to a PresentationContext.
func ParseContext(value string) PresentationContext {
	if strings.EqualFold(strings.TrimSpace(value), "modal") {
		return ContextModal
	}
	return ContextDefault
}

// QueryStringPresentation controls whether two locations differing only by
// query string count as the same location.
type QueryStringPresentation int

const (
	QueryStringDefault QueryStringPresentation = iota
	QueryStringReplace
)

func (q QueryStringPresentation) String() string {
	if q == QueryStringReplace {
		return "replace"
	}
	return "default"
}

// ParseQueryStringPresentation maps a property value.
func ParseQueryStringPresentation(value string) QueryStringPresentation {
	if strings.EqualFold(strings.TrimSpace(value), "replace") {
		return QueryStringReplace
	}
	return QueryStringDefault
}

// Properties are the merged key/value pairs resolved for one location.
type Properties map[string]string

func (p Properties) Presentation() Presentation {
	return ParsePresentation(p[KeyPresentation])
}

func (p Properties) Context() PresentationContext {
	return ParseContext(p[KeyContext])
}

func (p Properties) QueryStringPresentation() QueryStringPresentation {
	return ParseQueryStringPresentation(p[KeyQueryStringPresentation])
}

// URI is the destination route, DefaultURI when unset.
func (p Properties) URI() string {
	if uri := p[KeyURI]; uri != "" {
		return uri
	}
	return DefaultURI
}

// FallbackURI is the route to try when URI has no registered destination.
func (p Properties) FallbackURI() string {
	return p[KeyFallbackURI]
}

func (p Properties) Title() string {
	return p[KeyTitle]
}

func (p Properties) PullToRefreshEnabled() bool {
	return p.boolValue(KeyPullToRefreshEnabled, false)
}

func (p Properties) Animated() bool {
	return p.boolValue(KeyAnimated, true)
}

func (p Properties) boolValue(key string, fallback bool) bool {
	raw, ok := p[key]
	if !ok {
		return fallback
	}
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return v
}

// Settings are the document-wide values of a path configuration.
type Settings map[string]string
