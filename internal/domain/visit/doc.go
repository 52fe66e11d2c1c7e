// Package visit defines the options and failure taxonomy shared by every
// navigation in the shell.
//
// A visit is a single request to render a location inside the hosted content
// engine. Its options travel over the bridge as JSON:
//
//	{"action": "advance", "snapshotHTML": null, "response": {"statusCode": 200, "responseHTML": "..."}}
//
// Failures are reported as typed errors:
//   - LoadError: the engine's navigation library is absent or never became ready
//   - HTTPError: the server answered with a 4xx/5xx status
//   - WebError: the request failed below HTTP (DNS, connect, timeout, unknown)
//   - ConfigurationError: the path configuration asks for an illegal transition
//   - StaleContentError: any of the above while a cached snapshot is on screen
//
// Classify with errors.As:
//
//	var httpErr *visit.HTTPError
//	if errors.As(err, &httpErr) && httpErr.Family == visit.FamilyClient {
//		...
//	}
package visit
