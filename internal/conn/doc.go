// Package conn implements the connection lifecycle orchestrator for the
// picoprov agent.
//
// The Manager is a state machine over five states (Disconnected, Connecting,
// Connected, ConfigMode, Error) that decides which network mode the device is
// in, drives the bounded reconnection policy, owns the reset-button
// debounce/long-press logic, and emits lifecycle events to a Listener.
//
// # Capability set
//
// The Manager never touches hardware directly. It consumes a minimal
// capability set supplied at construction:
//   - Radio: join/leave a network and report link status
//   - Portal: activate/deactivate the local setup access point
//   - Button: polled reset-button state (optional)
//   - Restarter: device restart after factory reset (optional)
//
// The setup portal calls back into the Manager through SubmitCredentials and
// RequestReset when the user acts on the configuration UI.
//
// # Cooperative loop
//
// The Manager is driven by repeated non-blocking Tick calls from one control
// loop; there is no preemptive multitasking assumption. Only Radio.Join may
// block, for at most the configured connect timeout. All timers are measured
// as wall-clock deltas from an injectable clock, so a missed poll delays
// detection but never causes spurious firing.
//
// # Never unreachable
//
// The design invariant is that the device can always be configured again:
// join failures degrade through the reconnection policy into ConfigMode, and
// corruption is absorbed by the storage layer. Only a radio hard fault or an
// unavailable storage medium leave the device requiring manual intervention.
package conn
