package visit

import (
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
)

// Action describes how a visit affects the engine's history.
type Action string

const (
	ActionAdvance Action = "advance"
	ActionReplace Action = "replace"
	ActionRestore Action = "restore"
)

// ParseAction maps a wire value to an Action. Unknown values advance.
func ParseAction(value string) Action {
	switch Action(strings.ToLower(strings.TrimSpace(value))) {
	case ActionReplace:
		return ActionReplace
	case ActionRestore:
		return ActionRestore
	default:
		return ActionAdvance
	}
}

// Response carries the server response that produced a visit, when the
// engine already has it (form submissions).
type Response struct {
	StatusCode   int     `json:"statusCode"`
	ResponseHTML *string `json:"responseHTML"`
}

// Options are the per-visit parameters exchanged with the engine.
type Options struct {
	Action       Action    `json:"action"`
	SnapshotHTML *string   `json:"snapshotHTML"`
	Response     *Response `json:"response"`
}

// DefaultOptions returns options for a plain advance visit.
func DefaultOptions() Options {
	return Options{Action: ActionAdvance}
}

// ParseOptions decodes the wire form. Unknown fields are ignored.
func ParseOptions(data string) (*Options, error) {
	if strings.TrimSpace(data) == "" {
		return nil, fmt.Errorf("failed to parse visit options: empty payload")
	}

	var opts Options
	if err := sonic.UnmarshalString(data, &opts); err != nil {
		return nil, fmt.Errorf("failed to parse visit options: %w", err)
	}
	opts.Action = ParseAction(string(opts.Action))
	return &opts, nil
}

// OptionsFromJSON decodes the wire form, falling back to DefaultOptions for
// payloads that cannot be parsed.
func OptionsFromJSON(data string) Options {
	opts, err := ParseOptions(data)
	if err != nil {
		return DefaultOptions()
	}
	return *opts
}

// JSON encodes the options in their wire form.
func (o Options) JSON() (string, error) {
	if o.Action == "" {
		o.Action = ActionAdvance
	}
	out, err := sonic.MarshalString(o)
	if err != nil {
		return "", fmt.Errorf("failed to encode visit options: %w", err)
	}
	return out, nil
}

// WithAction returns a copy of the options using action.
func (o Options) WithAction(action Action) Options {
	o.Action = action
	return o
}

// HTML returns the markup the engine already holds for this visit, preferring
// the server response over a cached snapshot.
func (o Options) HTML() string {
	if o.Response != nil && o.Response.ResponseHTML != nil {
		return *o.Response.ResponseHTML
	}
	if o.SnapshotHTML != nil {
		return *o.SnapshotHTML
	}
	return ""
}
