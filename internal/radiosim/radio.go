package radiosim

import (
	"sync"
	"time"

	"github.com/muurk/picoprov/internal/conn"
)

// DefaultSignal is the signal strength reported for a joined simulated
// network unless the network specifies its own.
const DefaultSignal = -55

type network struct {
	password string
	signal   int
}

// Radio is a simulated WiFi radio. The zero value knows no networks; every
// join fails with a timeout until AddNetwork is called.
type Radio struct {
	mu       sync.Mutex
	networks map[string]network
	latency  time.Duration
	joined   string
	signal   int
	fault    string
}

// NewRadio creates a simulated radio with no known networks.
func NewRadio() *Radio {
	return &Radio{networks: make(map[string]network)}
}

// AddNetwork makes a network joinable. A signal of 0 selects DefaultSignal.
func (r *Radio) AddNetwork(ssid, password string, signal int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if signal == 0 {
		signal = DefaultSignal
	}
	r.networks[ssid] = network{password: password, signal: signal}
}

// RemoveNetwork makes a network unjoinable. An active link to it survives
// until DropLink; removal only affects future joins.
func (r *Radio) RemoveNetwork(ssid string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.networks, ssid)
}

// SetLatency makes Join block for d, simulating association time.
func (r *Radio) SetLatency(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.latency = d
}

// DropLink simulates losing the association. The manager observes this on
// its next tick via Status.
func (r *Radio) DropLink() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.joined = ""
	r.signal = 0
}

// InjectFault makes the next join fail hard with the given reason. The fault
// is consumed by one join.
func (r *Radio) InjectFault(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fault = reason
}

// Joined returns the SSID of the current link, or empty when down.
func (r *Radio) Joined() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.joined
}

// Join simulates one association attempt.
func (r *Radio) Join(ssid, password string, timeout time.Duration) error {
	r.mu.Lock()
	latency := r.latency
	r.mu.Unlock()

	if latency > 0 {
		if latency > timeout {
			latency = timeout
		}
		time.Sleep(latency)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.fault != "" {
		reason := r.fault
		r.fault = ""
		r.joined = ""
		r.signal = 0
		return &conn.RadioFaultError{Reason: reason}
	}

	net, known := r.networks[ssid]
	if !known {
		// An absent network looks like a scan timeout, not a rejection.
		r.joined = ""
		r.signal = 0
		return &conn.JoinError{SSID: ssid, Timeout: true}
	}
	if net.password != password {
		r.joined = ""
		r.signal = 0
		return &conn.JoinError{SSID: ssid}
	}

	r.joined = ssid
	r.signal = net.signal
	return nil
}

// Status reports the simulated link state.
func (r *Radio) Status() conn.LinkStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return conn.LinkStatus{Joined: r.joined != "", Signal: r.signal}
}

// Leave drops the association.
func (r *Radio) Leave() {
	r.DropLink()
}
