package session

import (
	"github.com/GriffinCanCode/webshell/backend/internal/providers/redirect"
)

// Event is a bridge or engine notification. The set is closed: only the
// types in this file implement it.
type Event interface {
	// Name is the bridge method name the event arrives as.
	Name() string
	event()
}

// Bridge events, sent by the page's navigation library.

type VisitProposed struct {
	Location string `json:"location"`
	Options  string `json:"options"`
}

type VisitStarted struct {
	ID                string `json:"identifier"`
	HasCachedSnapshot bool   `json:"hasCachedSnapshot"`
	IsPageRefresh     bool   `json:"isPageRefresh"`
	Location          string `json:"location"`
}

type VisitRequestStarted struct {
	ID string `json:"identifier"`
}

type VisitRequestCompleted struct {
	ID string `json:"identifier"`
}

type VisitRequestFinished struct {
	ID string `json:"identifier"`
}

type VisitRequestFailed struct {
	Location          string `json:"location"`
	ID                string `json:"identifier"`
	HasCachedSnapshot bool   `json:"hasCachedSnapshot"`
	StatusCode        int    `json:"statusCode"`
}

// VisitRequestFailedNonHTTP is a failure without a status code, typically a
// redirect the page was not allowed to follow.
type VisitRequestFailedNonHTTP struct {
	Location          string `json:"location"`
	ID                string `json:"identifier"`
	HasCachedSnapshot bool   `json:"hasCachedSnapshot"`
}

type PageLoaded struct {
	RestorationID string `json:"restorationIdentifier"`
}

type VisitRendered struct {
	ID string `json:"identifier"`
}

type VisitCompleted struct {
	ID            string `json:"identifier"`
	RestorationID string `json:"restorationIdentifier"`
}

type FormSubmissionStarted struct {
	Location string `json:"location"`
}

type FormSubmissionFinished struct {
	Location string `json:"location"`
}

type PageInvalidated struct{}

type TurboIsReady struct {
	IsReady bool `json:"isReady"`
}

type TurboFailedToLoad struct{}

// Engine events, raised by the web view itself.

type PageStarted struct {
	Location string `json:"location"`
}

type PageFinished struct {
	Location string `json:"location"`
}

// LocationOverride asks whether the native side takes over a navigation the
// web view is about to perform.
type LocationOverride struct {
	Location    string `json:"location"`
	IsHTTPGet   bool   `json:"isHttpGet"`
	IsMainFrame bool   `json:"isMainFrame"`
}

type ReceivedHTTPError struct {
	StatusCode  int  `json:"statusCode"`
	IsMainFrame bool `json:"isMainFrame"`
}

type ReceivedWebError struct {
	Code        int    `json:"errorCode"`
	Description string `json:"description"`
	IsMainFrame bool   `json:"isMainFrame"`
}

type RenderProcessGone struct{}

// RedirectProbeFinished carries a probe result back onto the session loop.
type RedirectProbeFinished struct {
	ID                string
	Location          string
	HasCachedSnapshot bool
	Result            redirect.Result
}

func (VisitProposed) Name() string             { return "visitProposedToLocation" }
func (VisitStarted) Name() string              { return "visitStarted" }
func (VisitRequestStarted) Name() string       { return "visitRequestStarted" }
func (VisitRequestCompleted) Name() string     { return "visitRequestCompleted" }
func (VisitRequestFinished) Name() string      { return "visitRequestFinished" }
func (VisitRequestFailed) Name() string        { return "visitRequestFailedWithStatusCode" }
func (VisitRequestFailedNonHTTP) Name() string { return "visitRequestFailedWithNonHttpStatusCode" }
func (PageLoaded) Name() string                { return "pageLoaded" }
func (VisitRendered) Name() string             { return "visitRendered" }
func (VisitCompleted) Name() string            { return "visitCompleted" }
func (FormSubmissionStarted) Name() string     { return "formSubmissionStarted" }
func (FormSubmissionFinished) Name() string    { return "formSubmissionFinished" }
func (PageInvalidated) Name() string           { return "pageInvalidated" }
func (TurboIsReady) Name() string              { return "turboIsReady" }
func (TurboFailedToLoad) Name() string         { return "turboFailedToLoad" }
func (PageStarted) Name() string               { return "pageStarted" }
func (PageFinished) Name() string              { return "pageFinished" }
func (LocationOverride) Name() string          { return "shouldOverrideUrlLoading" }
func (ReceivedHTTPError) Name() string         { return "receivedHttpError" }
func (ReceivedWebError) Name() string          { return "receivedError" }
func (RenderProcessGone) Name() string         { return "renderProcessGone" }
func (RedirectProbeFinished) Name() string     { return "redirectProbeFinished" }

func (VisitProposed) event()             {}
func (VisitStarted) event()              {}
func (VisitRequestStarted) event()       {}
func (VisitRequestCompleted) event()     {}
func (VisitRequestFinished) event()      {}
func (VisitRequestFailed) event()        {}
func (VisitRequestFailedNonHTTP) event() {}
func (PageLoaded) event()                {}
func (VisitRendered) event()             {}
func (VisitCompleted) event()            {}
func (FormSubmissionStarted) event()     {}
func (FormSubmissionFinished) event()    {}
func (PageInvalidated) event()           {}
func (TurboIsReady) event()              {}
func (TurboFailedToLoad) event()         {}
func (PageStarted) event()               {}
func (PageFinished) event()              {}
func (LocationOverride) event()          {}
func (ReceivedHTTPError) event()         {}
func (ReceivedWebError) event()          {}
func (RenderProcessGone) event()         {}
func (RedirectProbeFinished) event()     {}
