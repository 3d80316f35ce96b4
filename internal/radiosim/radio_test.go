package radiosim

import (
	"errors"
	"testing"
	"time"

	"github.com/muurk/picoprov/internal/conn"
)

func TestJoinKnownNetwork(t *testing.T) {
	r := NewRadio()
	r.AddNetwork("HomeNet", "pw123", -40)

	if err := r.Join("HomeNet", "pw123", time.Second); err != nil {
		t.Fatalf("Join() error = %v", err)
	}

	status := r.Status()
	if !status.Joined {
		t.Error("Status().Joined = false after successful join")
	}
	if status.Signal != -40 {
		t.Errorf("Status().Signal = %d, want -40", status.Signal)
	}
	if r.Joined() != "HomeNet" {
		t.Errorf("Joined() = %q, want HomeNet", r.Joined())
	}
}

func TestJoinUnknownNetworkTimesOut(t *testing.T) {
	r := NewRadio()

	err := r.Join("NoSuchNet", "pw", time.Second)
	if err == nil {
		t.Fatal("Join() expected error for unknown network")
	}
	if !conn.IsJoinFailure(err) {
		t.Errorf("error = %v, want join failure", err)
	}

	var joinErr *conn.JoinError
	if !errors.As(err, &joinErr) || !joinErr.Timeout {
		t.Errorf("unknown network should fail as a timeout, got %v", err)
	}
}

func TestJoinWrongPassword(t *testing.T) {
	r := NewRadio()
	r.AddNetwork("HomeNet", "correct", 0)

	err := r.Join("HomeNet", "wrong", time.Second)
	if err == nil {
		t.Fatal("Join() expected error for wrong password")
	}
	if !conn.IsJoinFailure(err) {
		t.Errorf("error = %v, want join failure", err)
	}
	if conn.IsRadioFault(err) {
		t.Errorf("wrong password should not be a radio fault")
	}
	if r.Status().Joined {
		t.Error("joined after failed authentication")
	}
}

func TestInjectFaultConsumedByOneJoin(t *testing.T) {
	r := NewRadio()
	r.AddNetwork("HomeNet", "pw", 0)
	r.InjectFault("firmware wedged")

	err := r.Join("HomeNet", "pw", time.Second)
	if !conn.IsRadioFault(err) {
		t.Fatalf("error = %v, want radio fault", err)
	}

	// The fault is one-shot; the next join succeeds.
	if err := r.Join("HomeNet", "pw", time.Second); err != nil {
		t.Errorf("Join() after fault consumed error = %v", err)
	}
}

func TestDropLink(t *testing.T) {
	r := NewRadio()
	r.AddNetwork("HomeNet", "pw", 0)
	if err := r.Join("HomeNet", "pw", time.Second); err != nil {
		t.Fatalf("Join() error = %v", err)
	}

	r.DropLink()

	status := r.Status()
	if status.Joined {
		t.Error("still joined after DropLink")
	}
	if status.Signal != 0 {
		t.Errorf("Signal = %d, want 0 when down", status.Signal)
	}
}

func TestDefaultSignal(t *testing.T) {
	r := NewRadio()
	r.AddNetwork("HomeNet", "pw", 0)
	if err := r.Join("HomeNet", "pw", time.Second); err != nil {
		t.Fatalf("Join() error = %v", err)
	}
	if got := r.Status().Signal; got != DefaultSignal {
		t.Errorf("Signal = %d, want %d", got, DefaultSignal)
	}
}

func TestButton(t *testing.T) {
	b := NewButton()
	if b.Pressed() {
		t.Error("new button reports pressed")
	}
	b.Press()
	if !b.Pressed() {
		t.Error("Pressed() = false after Press")
	}
	b.Release()
	if b.Pressed() {
		t.Error("Pressed() = true after Release")
	}
}

func TestRestarterNotify(t *testing.T) {
	fired := 0
	r := NewRestarter(func() { fired++ })

	r.Restart()
	r.Restart()

	if r.Restarts() != 2 {
		t.Errorf("Restarts() = %d, want 2", r.Restarts())
	}
	if fired != 2 {
		t.Errorf("notify fired %d times, want 2", fired)
	}
}
