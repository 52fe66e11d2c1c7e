// Package session coordinates visits between the native shell and one
// embedded web view.
//
// A Session owns the single current Visit. Bridge and engine callbacks arrive
// as Events and go through Handle, which drops events whose identifier no
// longer matches the current visit (or the cold boot) and translates the rest
// into Callback notifications for the screen that requested the visit.
//
// Lifecycle:
//
//	Visit(v)        -> VisitLocationStarted
//	  not ready     -> Engine.LoadURL (cold boot), PageFinished -> InstallBridge
//	  TurboIsReady  -> pending visit issued, or VisitRendered + VisitCompleted replayed
//	  ready         -> Engine.VisitLocation (warm)
//	VisitStarted    -> identifier assigned
//	VisitRendered   -> VisitRendered
//	VisitCompleted  -> restoration token recorded, VisitCompleted
//
// Reset is the only recovery primitive. It runs when the bridge reports it is
// not ready or missing, on main-frame load errors, on a cold-boot redirect and
// when a visit asks for a reload.
//
// A Session is not safe for concurrent use. Every method must run on the
// owning loop; background work (redirect probes) posts its result back
// through the configured Executor.
package session
