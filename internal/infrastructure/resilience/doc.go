// Package resilience guards outbound calls with a circuit breaker.
//
// The shell talks to the web origin for two things outside the web view: the
// remote path configuration and redirect probes after a failed visit. Both
// go through a Breaker so a dead origin fails fast instead of stacking up
// timeouts on every visit.
//
// A breaker is closed until ReadyToTrip says otherwise, stays open for
// Cooldown, then lets HalfOpenRequests trial calls through. All trials
// succeeding closes it again; any trial failing reopens it.
//
//	b := resilience.New("origin", resilience.Settings{Cooldown: 10 * time.Second})
//	body, err := resilience.Do(b, func() ([]byte, error) { return fetch(ctx) })
package resilience
