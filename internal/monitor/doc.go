// Package monitor provides the terminal dashboard for the simulate command.
//
// The dashboard polls the agent for its current state and renders the
// connection status, LED indication, uptime, and stored-credential state.
// Key bindings inject simulated events (link loss, radio fault, button
// presses) into the simulated radio, which is how the reconnection and
// factory-reset paths are exercised interactively.
package monitor
