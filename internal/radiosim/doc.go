// Package radiosim provides a simulated WiFi radio for running the agent on a
// development host without real hardware.
//
// The simulated radio holds a set of known networks. A join succeeds when the
// submitted SSID and password match a known network, fails with a timeout for
// an unknown SSID, and fails with an authentication error for a wrong
// password. Link loss and hard radio faults can be injected at runtime, which
// is how the simulate command exercises the reconnection and error paths of
// the connection manager.
//
// All methods are safe for concurrent use: the control loop polls the radio
// while the monitor UI injects events from its own goroutine.
package radiosim
