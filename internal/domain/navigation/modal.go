package navigation

// ModalResults holds the result of the last dismissed modal until the
// screen underneath consumes it.
type ModalResults struct {
	pending *ModalResult
	// OnResult, when set, is told about each result as it is sent.
	OnResult func(ModalResult)
}

// Send stores r, replacing any unconsumed result.
func (m *ModalResults) Send(r ModalResult) {
	m.pending = &r
	if m.OnResult != nil {
		m.OnResult(r)
	}
}

// Consume returns and clears the stored result.
func (m *ModalResults) Consume() (ModalResult, bool) {
	if m.pending == nil {
		return ModalResult{}, false
	}
	r := *m.pending
	m.pending = nil
	return r, true
}

// Pending reports whether a result is waiting.
func (m *ModalResults) Pending() bool {
	return m.pending != nil
}
