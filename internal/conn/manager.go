package conn

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/picoprov/internal/logging"
	"github.com/muurk/picoprov/internal/storage"
)

// Timing policy constants.
const (
	// ReconnectInterval is the minimum spacing between reconnection attempts.
	ReconnectInterval = 10 * time.Second

	// ButtonDebounce is the minimum hold time before a button press is
	// recognized, filtering electrical noise.
	ButtonDebounce = 100 * time.Millisecond

	// ButtonLongPress is the hold time after which a release triggers a
	// factory reset instead of toggling the portal.
	ButtonLongPress = 3000 * time.Millisecond
)

// Config holds the manager's setup-mode identity and portal policy. The
// connection policy itself (auto-reconnect, attempt limit, join timeout)
// lives in the persisted device configuration and is read through the vault.
type Config struct {
	// DeviceName is the SSID of the setup access point.
	DeviceName string

	// APPassword protects the setup access point. Empty means open.
	APPassword string

	// PortalTimeout bounds how long the portal waits for a submission before
	// the timeout policy applies. Zero disables the timeout.
	PortalTimeout time.Duration
}

// Deps carries the capability set the manager operates on. Vault, Radio and
// Portal are required; the rest are optional.
type Deps struct {
	Vault     *storage.Vault
	Radio     Radio
	Portal    Portal
	Button    Button
	Restarter Restarter
	Listener  Listener

	// Clock overrides the time source. Tests use this to drive timers
	// deterministically. Defaults to time.Now.
	Clock func() time.Time
}

// Manager is the connection lifecycle orchestrator. It exclusively owns the
// in-memory status and reconnection counters; external components read status
// via accessors only. Not safe for concurrent use: drive it from one
// cooperative control loop.
type Manager struct {
	cfg      Config
	vault    *storage.Vault
	radio    Radio
	portal   Portal
	button   Button
	restart  Restarter
	listener Listener
	now      func() time.Time

	status     Status
	configMode bool
	started    bool
	startTime  time.Time

	reconnectAttempts int
	lastReconnect     time.Time
	portalDeadline    time.Time

	btnPressed    bool
	btnPressStart time.Time
}

// NewManager creates a manager over the given capability set.
func NewManager(cfg Config, deps Deps) *Manager {
	if deps.Listener == nil {
		deps.Listener = BaseListener{}
	}
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	return &Manager{
		cfg:      cfg,
		vault:    deps.Vault,
		radio:    deps.Radio,
		portal:   deps.Portal,
		button:   deps.Button,
		restart:  deps.Restarter,
		listener: deps.Listener,
		now:      deps.Clock,
		status:   StatusDisconnected,
	}
}

// Begin opens persistent storage and prepares the manager. Fails only when
// the storage medium is unavailable.
func (m *Manager) Begin() error {
	if m.started {
		return nil
	}
	if err := m.vault.Open(); err != nil {
		return err
	}
	m.startTime = m.now()
	m.started = true
	logging.Info("Connection manager started",
		zap.String("device_name", m.cfg.DeviceName),
		zap.Bool("has_credentials", m.vault.HasWiFiCredentials()),
	)
	return nil
}

// AutoConnect drives the boot-time decision: join with stored credentials if
// any exist, otherwise activate the setup portal. A failed join with stored
// credentials also escalates to the portal. Returns an error only for hard
// failures (storage unavailable, radio fault, portal activation failure).
func (m *Manager) AutoConnect() error {
	if err := m.Begin(); err != nil {
		return err
	}

	creds, found := m.vault.LoadWiFiCredentials()
	if !found {
		logging.Info("No saved credentials, starting config portal")
		return m.StartPortal()
	}

	logging.Info("Attempting auto-connect", zap.String("ssid", creds.SSID))
	return m.Connect(creds.SSID, creds.Password)
}

// Connect attempts to join the given network, escalating to the setup portal
// if the join fails. This is the "caller explicitly requested" path.
func (m *Manager) Connect(ssid, password string) error {
	err := m.join(ssid, password)
	if err == nil {
		return nil
	}
	if IsRadioFault(err) {
		return err
	}
	logging.Warn("Connect failed, starting config portal", zap.Error(err))
	return m.StartPortal()
}

// join performs one synchronous join attempt and applies the resulting state
// transition. On failure the status returns to Disconnected; fault errors
// move to Error.
func (m *Manager) join(ssid, password string) error {
	if err := storage.ValidateSSID(ssid); err != nil {
		return err
	}

	devCfg, _ := m.vault.LoadDeviceConfig()
	timeout := time.Duration(devCfg.ConnectTimeout) * time.Second

	m.setStatus(StatusConnecting)

	err := m.radio.Join(ssid, password, timeout)
	if err == nil {
		m.reconnectAttempts = 0
		m.setStatus(StatusConnected)
		m.listener.OnConnect()
		logging.Info("Connected", zap.String("ssid", ssid))
		return nil
	}

	if IsRadioFault(err) {
		logging.Error("Radio fault during join", zap.Error(err))
		m.setStatus(StatusError)
		return err
	}

	logging.Warn("Join failed", zap.String("ssid", ssid), zap.Error(err))
	m.setStatus(StatusDisconnected)
	return err
}

// Tick advances all time-based behavior: button sampling, portal timeout,
// link-loss detection, and the reconnection policy. Non-blocking except when
// a reconnection attempt triggers a synchronous join. Call it from the
// control loop at a steady cadence.
func (m *Manager) Tick() {
	if !m.started {
		return
	}

	now := m.now()
	m.pollButton(now)

	if m.configMode {
		m.checkPortalTimeout(now)
		return
	}

	devCfg, _ := m.vault.LoadDeviceConfig()
	if devCfg.AutoReconnect {
		m.handleReconnection(now, devCfg)
	}
}

// handleReconnection applies the bounded retry policy: detect link loss,
// space attempts at least ReconnectInterval apart, and give up into config
// mode after the configured number of consecutive failures.
func (m *Manager) handleReconnection(now time.Time, devCfg storage.DeviceConfig) {
	switch m.status {
	case StatusConnected:
		if m.radio.Status().Joined {
			return
		}
		logging.Warn("Link lost")
		m.listener.OnDisconnect()
		m.setStatus(StatusDisconnected)
		return
	case StatusDisconnected:
		// Fall through to retry logic.
	default:
		// Connecting is never observed here (joins are synchronous) and
		// Error requires external intervention.
		return
	}

	if !m.lastReconnect.IsZero() && now.Sub(m.lastReconnect) < ReconnectInterval {
		return
	}

	creds, found := m.vault.LoadWiFiCredentials()
	if !found {
		return
	}

	if m.reconnectAttempts >= int(devCfg.MaxReconnectAttempts) {
		logging.Warn("Max reconnection attempts reached, starting config portal",
			zap.Int("attempts", m.reconnectAttempts),
		)
		if err := m.StartPortal(); err != nil {
			logging.Error("Failed to start config portal", zap.Error(err))
		}
		return
	}

	m.lastReconnect = now
	m.reconnectAttempts++
	logging.LogJoinAttempt(creds.SSID, m.reconnectAttempts, int(devCfg.MaxReconnectAttempts))

	// Reconnection never escalates directly; the attempt counter decides
	// when to give up.
	_ = m.join(creds.SSID, creds.Password)
}

// StartPortal activates the setup access point and enters config mode.
// Idempotent: starting an already-active portal is a no-op. Activating the
// portal supersedes any pending reconnection attempt.
func (m *Manager) StartPortal() error {
	if !m.started {
		return fmt.Errorf("manager not started")
	}
	if m.configMode {
		return nil
	}

	logging.Info("Starting config portal", zap.String("ap_ssid", m.cfg.DeviceName))

	if err := m.portal.Activate(m.cfg.DeviceName, m.cfg.APPassword); err != nil {
		logging.Error("Failed to start config portal", zap.Error(err))
		m.setStatus(StatusError)
		return err
	}

	m.configMode = true
	if m.cfg.PortalTimeout > 0 {
		m.portalDeadline = m.now().Add(m.cfg.PortalTimeout)
	}
	m.setStatus(StatusConfigMode)
	m.listener.OnConfigModeStart()
	return nil
}

// StopPortal deactivates the setup access point and leaves config mode.
func (m *Manager) StopPortal() {
	if !m.configMode {
		return
	}
	logging.Info("Stopping config portal")
	m.portal.Deactivate()
	m.configMode = false
	m.portalDeadline = time.Time{}
	m.listener.OnConfigModeEnd()
	if m.status == StatusConfigMode {
		m.setStatus(StatusDisconnected)
	}
}

// checkPortalTimeout applies the portal-timeout policy. With stored
// credentials the manager leaves config mode and resumes the reconnection
// policy with a fresh attempt budget; without credentials the portal is
// bounced and the timer re-armed so the device stays configurable.
func (m *Manager) checkPortalTimeout(now time.Time) {
	if m.cfg.PortalTimeout <= 0 || m.portalDeadline.IsZero() || now.Before(m.portalDeadline) {
		return
	}

	if m.vault.HasWiFiCredentials() {
		logging.Info("Portal timeout with stored credentials, resuming reconnection")
		m.StopPortal()
		m.reconnectAttempts = 0
		m.lastReconnect = time.Time{}
		return
	}

	logging.Info("Portal timeout with no credentials, restarting portal")
	m.portal.Deactivate()
	if err := m.portal.Activate(m.cfg.DeviceName, m.cfg.APPassword); err != nil {
		logging.Error("Failed to restart config portal", zap.Error(err))
		m.configMode = false
		m.setStatus(StatusError)
		return
	}
	m.portalDeadline = now.Add(m.cfg.PortalTimeout)
}

// SubmitCredentials is the portal's connect callback. It validates and tries
// the submitted credentials; on success they are persisted, the portal is
// deactivated, and the device is connected. On a failed join the device
// stays in config mode so the user can retry.
func (m *Manager) SubmitCredentials(ssid, password string) error {
	if !m.configMode {
		return fmt.Errorf("no active config portal")
	}

	logging.Info("Portal connect request", zap.String("ssid", ssid))

	err := m.join(ssid, password)
	if err == nil {
		if saveErr := m.vault.SaveWiFiCredentials(ssid, password); saveErr != nil {
			logging.Error("Failed to persist credentials", zap.Error(saveErr))
		}
		m.StopPortal()
		m.setStatus(StatusConnected)
		return nil
	}

	if IsRadioFault(err) {
		return err
	}

	// Stay configurable: the join dropped us to Disconnected, move back.
	m.setStatus(StatusConfigMode)
	return err
}

// RequestReset is the portal's reset callback.
func (m *Manager) RequestReset() {
	logging.Info("Reset requested from portal")
	m.FactoryReset()
}

// FactoryReset clears all persisted configuration and restarts the device.
func (m *Manager) FactoryReset() {
	logging.Info("Performing factory reset")

	m.StopPortal()
	m.radio.Leave()

	if err := m.vault.ClearAll(); err != nil {
		logging.Error("Failed to clear storage", zap.Error(err))
	}

	m.setStatus(StatusDisconnected)
	m.reconnectAttempts = 0
	m.lastReconnect = time.Time{}

	if m.restart != nil {
		m.restart.Restart()
	}
}

// pollButton tracks the reset button across ticks. A press is recognized
// once held longer than ButtonDebounce; releasing after ButtonLongPress
// triggers a factory reset, releasing earlier (but past the debounce)
// starts the portal if it is not already active.
func (m *Manager) pollButton(now time.Time) {
	if m.button == nil {
		return
	}

	pressed := m.button.Pressed()

	if pressed && !m.btnPressed {
		m.btnPressed = true
		m.btnPressStart = now
		return
	}

	if !pressed && m.btnPressed {
		m.btnPressed = false
		held := now.Sub(m.btnPressStart)

		switch {
		case held > ButtonLongPress:
			logging.Info("Factory reset triggered by button",
				zap.Duration("held", held),
			)
			m.FactoryReset()
		case held > ButtonDebounce:
			logging.Info("Config portal toggle triggered by button",
				zap.Duration("held", held),
			)
			if !m.configMode {
				if err := m.StartPortal(); err != nil {
					logging.Error("Failed to start config portal", zap.Error(err))
				}
			}
		}
	}
}

// setStatus applies a state transition, firing exactly one notification when
// the externally visible state actually changes.
func (m *Manager) setStatus(status Status) {
	if m.status == status {
		return
	}
	old := m.status
	m.status = status
	logging.LogStatusChange(old.String(), status.String())
	m.listener.OnStatusChange(old, status)
}

// Status returns the current connection state.
func (m *Manager) Status() Status {
	return m.status
}

// IsConnected reports whether the device has a live link.
func (m *Manager) IsConnected() bool {
	return m.status == StatusConnected && m.radio.Status().Joined
}

// IsConfigMode reports whether the setup portal is active.
func (m *Manager) IsConfigMode() bool {
	return m.configMode
}

// ReconnectAttempts returns the consecutive failed attempt count.
func (m *Manager) ReconnectAttempts() int {
	return m.reconnectAttempts
}

// Uptime returns time elapsed since Begin.
func (m *Manager) Uptime() time.Duration {
	if !m.started {
		return 0
	}
	return m.now().Sub(m.startTime)
}

// Diagnostics returns a human-readable dump of manager and storage state.
// Informational only; no programmatic contract.
func (m *Manager) Diagnostics() string {
	var sb strings.Builder
	sb.WriteString("=== Connection Manager Diagnostics ===\n")
	fmt.Fprintf(&sb, "Status: %s\n", m.status)
	fmt.Fprintf(&sb, "Config Mode: %v\n", m.configMode)
	fmt.Fprintf(&sb, "Uptime: %s\n", m.Uptime().Round(time.Second))
	fmt.Fprintf(&sb, "Reconnect Attempts: %d\n", m.reconnectAttempts)
	fmt.Fprintf(&sb, "Free Memory (est): %d bytes\n", freeMemoryEstimate())
	if link := m.radio.Status(); link.Joined {
		fmt.Fprintf(&sb, "Signal: %d dBm\n", link.Signal)
	}
	sb.WriteString(m.vault.Store().Diagnostics())
	return sb.String()
}

// freeMemoryEstimate approximates memory headroom from runtime heap stats.
func freeMemoryEstimate() uint64 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	if ms.HeapSys < ms.HeapAlloc {
		return 0
	}
	return ms.HeapSys - ms.HeapAlloc
}
