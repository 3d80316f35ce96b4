package conn

import "time"

// LinkStatus reports the current radio link state.
type LinkStatus struct {
	Joined bool
	Signal int // dBm, 0 when not joined
}

// Radio is the capability the manager uses to drive the vendor radio stack.
type Radio interface {
	// Join attempts to associate with the given network. It may block
	// synchronously for up to timeout. A nil return means the link is up.
	// Hard link failures are reported as a RadioFaultError; anything else is
	// treated as a recoverable join failure.
	Join(ssid, password string, timeout time.Duration) error

	// Status reports the current link state without blocking.
	Status() LinkStatus

	// Leave drops the current association, if any.
	Leave()
}

// Portal is the capability the manager uses to run the local setup access
// point. The portal implementation is expected to call back into the manager
// (SubmitCredentials, RequestReset) when the user acts on the UI.
type Portal interface {
	// Activate brings up the setup access point with the given AP
	// credentials and starts serving the configuration UI.
	Activate(apSSID, apPassword string) error

	// Deactivate tears the access point down. Must be safe to call when the
	// portal is not active.
	Deactivate()
}

// Button is the polled reset-button input. There is no edge-interrupt
// assumption; the manager samples Pressed on every tick and tracks press
// duration itself.
type Button interface {
	Pressed() bool
}

// Restarter restarts the device. Invoked after a factory reset has cleared
// persistent storage.
type Restarter interface {
	Restart()
}
