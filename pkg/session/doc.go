// Package session holds the state of one user's pass through a form and
// implements the section pagination rules on top of it.
//
// Navigation is an explicit state machine. Next and Prev move the machine to
// PhaseTransitioning and the index changes once the transition delay elapses
// (PhaseSettled). Requests that arrive while a transition is pending return
// ErrTransitionPending and change nothing. Next and BeginSubmit validate the
// active section first; Prev never validates.
package session
