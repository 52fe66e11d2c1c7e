package ws

import (
	"encoding/json"
	"fmt"

	"github.com/bytedance/sonic"

	"github.com/GriffinCanCode/webshell/backend/internal/domain/session"
)

const namePing = "ping"

// Inbound is a message from the engine.
type Inbound struct {
	Name string          `json:"name"`
	ID   int64           `json:"id,omitempty"`
	Args json.RawMessage `json:"args,omitempty"`
}

// Outbound is a message to the engine.
type Outbound struct {
	Type          string `json:"type"`
	Command       string `json:"command,omitempty"`
	Location      string `json:"location,omitempty"`
	Options       string `json:"options,omitempty"`
	RestorationID string `json:"restorationIdentifier,omitempty"`
	ID            int64  `json:"id,omitempty"`
	Override      *bool  `json:"override,omitempty"`
	ShellID       string `json:"shellId,omitempty"`
	Message       string `json:"message,omitempty"`
}

type decoder func(args []byte) (session.Event, error)

func decodeAs[T session.Event](args []byte) (session.Event, error) {
	var ev T
	if len(args) > 0 {
		if err := sonic.Unmarshal(args, &ev); err != nil {
			return nil, err
		}
	}
	return ev, nil
}

// decoders covers every event an engine may send. Redirect probe results
// are produced on the server and never accepted from the wire.
var decoders = map[string]decoder{}

func register[T session.Event]() {
	var zero T
	decoders[zero.Name()] = decodeAs[T]
}

func init() {
	register[session.VisitProposed]()
	register[session.VisitStarted]()
	register[session.VisitRequestStarted]()
	register[session.VisitRequestCompleted]()
	register[session.VisitRequestFinished]()
	register[session.VisitRequestFailed]()
	register[session.VisitRequestFailedNonHTTP]()
	register[session.PageLoaded]()
	register[session.VisitRendered]()
	register[session.VisitCompleted]()
	register[session.FormSubmissionStarted]()
	register[session.FormSubmissionFinished]()
	register[session.PageInvalidated]()
	register[session.TurboIsReady]()
	register[session.TurboFailedToLoad]()
	register[session.PageStarted]()
	register[session.PageFinished]()
	register[session.LocationOverride]()
	register[session.ReceivedHTTPError]()
	register[session.ReceivedWebError]()
	register[session.RenderProcessGone]()
}

// DecodeEvent turns an inbound message into a session event.
func DecodeEvent(msg Inbound) (session.Event, error) {
	decode, ok := decoders[msg.Name]
	if !ok {
		return nil, fmt.Errorf("unknown message %q", msg.Name)
	}
	ev, err := decode(msg.Args)
	if err != nil {
		return nil, fmt.Errorf("invalid %s arguments: %w", msg.Name, err)
	}
	return ev, nil
}
