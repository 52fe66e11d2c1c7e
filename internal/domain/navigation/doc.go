/*
Package navigation decides how a proposed location is presented and applies
the decision to a back stack.

# Rules

NewRule resolves path properties for the current and the proposed location
and derives:

  - Presentation: an explicit non-default "presentation" property wins
    (POP at the start of the stack becomes NONE). Otherwise the location is
    compared with the previous and current entries: previous is POP, current
    at the start is REPLACE_ROOT, current or a "replace" visit action is
    REPLACE, anything else is PUSH.
  - Mode: leaving a modal context is DISMISS_MODAL, entering one is
    TO_MODAL, then REFRESH and NONE by presentation, else IN_CONTEXT.
  - ModalResult: set when dismissing, so the screen underneath can continue
    with the location.

Locations compare by path, and by query too unless the proposed location's
"query_string_presentation" is "replace". Comparison is literal: no trailing
slash or percent-encoding normalization.

REPLACE_ROOT into a modal context is a ConfigurationError.

# Navigator

Navigator runs rules against a Backstack. Every mutation waits for the
Host's PrepareNavigation hook, then reports a Transition. Routes are first
offered to a Router, whose handlers may cancel navigation (for example to
open an external URL).

A Navigator is not safe for concurrent use.
*/
package navigation
