package session

import (
	"github.com/GriffinCanCode/webshell/backend/internal/domain/visit"
)

// Callback receives the outcome of a visit. Implementations must be
// comparable (pointer types) so a screen can detach itself.
type Callback interface {
	PageStarted(location string)
	PageFinished(location string)
	ReceivedError(err error)
	RenderProcessGone()
	PageInvalidated()
	RequestStarted()
	RequestFinished()
	RequestFailedWithError(hasCachedSnapshot bool, err error)
	VisitRendered()
	VisitCompleted(completedOffline bool)
	VisitLocationStarted(location string)
	VisitProposedToLocation(location string, options visit.Options)
	VisitProposedToCrossOriginRedirect(location string)
	FormSubmissionStarted(location string)
	FormSubmissionFinished(location string)
}

// NopCallback implements Callback with no-ops. Embed it to override only
// the notifications you need.
type NopCallback struct{}

func (NopCallback) PageStarted(string)                            {}
func (NopCallback) PageFinished(string)                           {}
func (NopCallback) ReceivedError(error)                           {}
func (NopCallback) RenderProcessGone()                            {}
func (NopCallback) PageInvalidated()                              {}
func (NopCallback) RequestStarted()                               {}
func (NopCallback) RequestFinished()                              {}
func (NopCallback) RequestFailedWithError(bool, error)            {}
func (NopCallback) VisitRendered()                                {}
func (NopCallback) VisitCompleted(bool)                           {}
func (NopCallback) VisitLocationStarted(string)                   {}
func (NopCallback) VisitProposedToLocation(string, visit.Options) {}
func (NopCallback) VisitProposedToCrossOriginRedirect(string)     {}
func (NopCallback) FormSubmissionStarted(string)                  {}
func (NopCallback) FormSubmissionFinished(string)                 {}

// Visit is a navigation request for one screen.
type Visit struct {
	Location string
	// DestinationID identifies the screen hosting the visit.
	DestinationID             int
	RestoreWithCachedSnapshot bool
	Reload                    bool
	// Identifier is assigned by the web view when it starts the visit and
	// never changes afterwards.
	Identifier       string
	CompletedOffline bool
	Options          visit.Options
	Callback         Callback
}
