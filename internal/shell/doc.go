// Package shell hosts one web view per connected engine and drives it from a
// navigation back stack.
//
// A Shell owns a session (the visit coordinator), a navigator and one Screen
// per back stack entry. All of them run on the shell's loop; the bridge and
// the inspection API only ever post work onto it.
package shell
