package conn

import (
	"testing"
	"time"
)

// pressFor simulates holding the button for the given duration across two
// ticks: one with the button down, one after release.
func (rig *testRig) pressFor(d time.Duration) {
	rig.button.pressed = true
	rig.manager.Tick()
	rig.clock.Advance(d)
	rig.button.pressed = false
	rig.manager.Tick()
}

func TestButtonLongPressFactoryResets(t *testing.T) {
	rig := newTestRig(t, Config{})
	rig.saveCredentials(t, "HomeNet", "pw")

	if err := rig.manager.AutoConnect(); err != nil {
		t.Fatalf("AutoConnect() error = %v", err)
	}

	rig.pressFor(3500 * time.Millisecond)

	if rig.vault.HasWiFiCredentials() {
		t.Errorf("credentials survived factory reset")
	}
	if rig.radio.leaveCalls != 1 {
		t.Errorf("leaveCalls = %d, want 1", rig.radio.leaveCalls)
	}
	if rig.restarter.restarts != 1 {
		t.Errorf("restarts = %d, want 1", rig.restarter.restarts)
	}
	if rig.manager.Status() != StatusDisconnected {
		t.Errorf("Status() = %v, want Disconnected", rig.manager.Status())
	}
}

func TestButtonShortPressStartsPortal(t *testing.T) {
	rig := newTestRig(t, Config{})
	rig.saveCredentials(t, "HomeNet", "pw")

	if err := rig.manager.AutoConnect(); err != nil {
		t.Fatalf("AutoConnect() error = %v", err)
	}

	rig.pressFor(500 * time.Millisecond)

	if !rig.manager.IsConfigMode() {
		t.Errorf("short press did not start the portal")
	}
	// Storage untouched: a short press never resets.
	if !rig.vault.HasWiFiCredentials() {
		t.Errorf("short press cleared credentials")
	}
	if rig.restarter.restarts != 0 {
		t.Errorf("short press restarted the device")
	}
}

func TestButtonNoiseIgnored(t *testing.T) {
	rig := newTestRig(t, Config{})
	rig.saveCredentials(t, "HomeNet", "pw")

	if err := rig.manager.AutoConnect(); err != nil {
		t.Fatalf("AutoConnect() error = %v", err)
	}

	// Below the debounce threshold: no action at all.
	rig.pressFor(50 * time.Millisecond)

	if rig.manager.IsConfigMode() {
		t.Errorf("sub-debounce press started the portal")
	}
	if rig.manager.Status() != StatusConnected {
		t.Errorf("Status() = %v, want Connected", rig.manager.Status())
	}
}

func TestButtonShortPressWhilePortalActive(t *testing.T) {
	rig := newTestRig(t, Config{})
	if err := rig.manager.StartPortal(); err != nil {
		t.Fatalf("StartPortal() error = %v", err)
	}

	rig.pressFor(500 * time.Millisecond)

	if !rig.manager.IsConfigMode() {
		t.Errorf("portal deactivated by short press")
	}
	if rig.portal.activations != 1 {
		t.Errorf("activations = %d, want 1", rig.portal.activations)
	}
}

func TestButtonHeldAcrossManyTicks(t *testing.T) {
	rig := newTestRig(t, Config{})
	rig.saveCredentials(t, "HomeNet", "pw")

	if err := rig.manager.AutoConnect(); err != nil {
		t.Fatalf("AutoConnect() error = %v", err)
	}

	// Holding through intermediate ticks must not fire anything early.
	rig.button.pressed = true
	for i := 0; i < 35; i++ {
		rig.manager.Tick()
		rig.clock.Advance(100 * time.Millisecond)
	}
	if !rig.vault.HasWiFiCredentials() {
		t.Fatalf("reset fired before release")
	}

	rig.button.pressed = false
	rig.manager.Tick()

	if rig.vault.HasWiFiCredentials() {
		t.Errorf("release after long hold did not factory reset")
	}
}
