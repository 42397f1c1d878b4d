// Package session drives the interactive fit workflow over a list of dataset
// folders.
//
// A [Session] loads one dataset at a time through a [Loader], hands it to a
// presentation [Surface], turns boundary positions into fit windows and
// pushes fitted curves back to the surface. It is a single-threaded state
// machine: the caller dispatches events one at a time.
package session
