package agent

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/picoprov/internal/config"
	"github.com/muurk/picoprov/internal/conn"
	"github.com/muurk/picoprov/internal/discovery"
	"github.com/muurk/picoprov/internal/logging"
	"github.com/muurk/picoprov/internal/portal"
	"github.com/muurk/picoprov/internal/storage"
	"github.com/muurk/picoprov/internal/version"
)

// TickInterval is the control loop cadence. Button sampling resolution and
// timeout precision both derive from it.
const TickInterval = 100 * time.Millisecond

// Options configures an Agent. Config and Radio are required.
type Options struct {
	Config *config.AgentConfig
	Radio  conn.Radio

	// Button is the reset button input. Nil means no button.
	Button conn.Button

	// Restarter handles the post-factory-reset restart. Nil means no restart.
	Restarter conn.Restarter

	// Listener receives lifecycle events in addition to the agent's own
	// listeners. Nil is fine.
	Listener conn.Listener

	// Backend overrides the credential store medium. Nil selects a file
	// backend at the configured (or default) storage path.
	Backend storage.Backend

	// TickInterval overrides the control loop cadence. Zero selects
	// TickInterval. Tests use this to run faster.
	TickInterval time.Duration
}

// Agent is the assembled provisioning agent.
type Agent struct {
	cfg    *config.AgentConfig
	vault  *storage.Vault
	portal *portal.Server
	radio  conn.Radio

	mu      sync.Mutex
	manager *conn.Manager

	announceMu sync.Mutex
	announcer  *portal.Announcer

	tick time.Duration
}

// New assembles an agent from the given options.
func New(opts Options) (*Agent, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if opts.Radio == nil {
		return nil, fmt.Errorf("radio is required")
	}

	backend := opts.Backend
	if backend == nil {
		path := opts.Config.Storage.Path
		if path == "" {
			defaultPath, err := config.DefaultStoragePath()
			if err != nil {
				return nil, fmt.Errorf("failed to resolve storage path: %w", err)
			}
			path = defaultPath
		}
		backend = storage.NewFileBackend(path, opts.Config.Storage.Capacity)
	}

	tick := opts.TickInterval
	if tick <= 0 {
		tick = TickInterval
	}

	a := &Agent{
		cfg:   opts.Config,
		vault: storage.NewVault(storage.NewStore(backend)),
		radio: opts.Radio,
		tick:  tick,
	}

	a.portal = portal.NewServer(portal.Config{
		ListenAddr: opts.Config.Portal.ListenAddr,
		Hostname:   opts.Config.Device.Hostname,
		Announce:   opts.Config.Portal.Announce,
	}, a)

	listeners := []conn.Listener{a.portal, agentListener{a}}
	if opts.Listener != nil {
		listeners = append(listeners, opts.Listener)
	}

	a.manager = conn.NewManager(conn.Config{
		DeviceName:    opts.Config.Device.Name,
		APPassword:    opts.Config.Device.APPassword,
		PortalTimeout: time.Duration(opts.Config.Portal.TimeoutSeconds) * time.Second,
	}, conn.Deps{
		Vault:     a.vault,
		Radio:     opts.Radio,
		Portal:    a.portal,
		Button:    opts.Button,
		Restarter: opts.Restarter,
		Listener:  multiListener(listeners),
	})

	return a, nil
}

// Run starts the agent and blocks until ctx is cancelled. The boot decision
// (join with stored credentials or open the portal) happens first, then the
// control loop ticks until shutdown.
func (a *Agent) Run(ctx context.Context) error {
	logging.Info("Agent starting",
		zap.String("device_name", a.cfg.Device.Name),
		zap.String("version", version.Version),
	)

	a.mu.Lock()
	err := a.manager.AutoConnect()
	a.mu.Unlock()
	if err != nil {
		if conn.IsRadioFault(err) {
			// The loop keeps running: the button and a later portal start
			// still work from the Error state.
			logging.Error("Boot connect failed with radio fault", zap.Error(err))
		} else {
			return err
		}
	}

	ticker := time.NewTicker(a.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.shutdown()
			return nil
		case <-ticker.C:
			a.mu.Lock()
			a.manager.Tick()
			a.mu.Unlock()
		}
	}
}

func (a *Agent) shutdown() {
	logging.Info("Agent shutting down")

	a.mu.Lock()
	a.manager.StopPortal()
	a.mu.Unlock()

	a.portal.Deactivate()
	a.stopAnnounce()
	a.radio.Leave()
}

// SubmitCredentials implements portal.Orchestrator.
func (a *Agent) SubmitCredentials(ssid, password string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.manager.SubmitCredentials(ssid, password)
}

// RequestReset implements portal.Orchestrator.
func (a *Agent) RequestReset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.manager.RequestReset()
}

// Status implements portal.Orchestrator.
func (a *Agent) Status() conn.Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.manager.Status()
}

// ReconnectAttempts implements portal.Orchestrator.
func (a *Agent) ReconnectAttempts() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.manager.ReconnectAttempts()
}

// Uptime implements portal.Orchestrator.
func (a *Agent) Uptime() time.Duration {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.manager.Uptime()
}

// IsConfigMode reports whether the setup portal is active.
func (a *Agent) IsConfigMode() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.manager.IsConfigMode()
}

// Diagnostics returns the manager's diagnostic dump.
func (a *Agent) Diagnostics() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.manager.Diagnostics()
}

// StartPortal activates the setup portal on demand.
func (a *Agent) StartPortal() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.manager.StartPortal()
}

// Vault exposes the credential store, read-only by convention. The monitor
// uses it to display whether credentials exist.
func (a *Agent) Vault() *storage.Vault {
	return a.vault
}

// PortalPort returns the portal's bound port while active, 0 otherwise.
func (a *Agent) PortalPort() int {
	return a.portal.Port()
}

// startAnnounce registers the connected-state mDNS service.
func (a *Agent) startAnnounce() {
	if !a.cfg.Portal.Announce {
		return
	}

	a.announceMu.Lock()
	defer a.announceMu.Unlock()
	if a.announcer != nil {
		return
	}

	port := listenPort(a.cfg.Portal.ListenAddr)
	txt := []string{
		"hostname=" + a.cfg.Device.Hostname,
		"version=" + version.Version,
	}
	announcer, err := portal.Announce(a.cfg.Device.Hostname, discovery.AgentServiceType, port, txt)
	if err != nil {
		logging.Warn("Connected-state mDNS announce failed", zap.Error(err))
		return
	}
	a.announcer = announcer
}

func (a *Agent) stopAnnounce() {
	a.announceMu.Lock()
	defer a.announceMu.Unlock()
	a.announcer.Shutdown()
	a.announcer = nil
}

// listenPort extracts the port from a listen address, defaulting to 80 when
// it cannot be parsed.
func listenPort(addr string) int {
	_, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return 80
	}
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 {
		return 80
	}
	return port
}

// agentListener manages the connected-state mDNS advertisement from
// lifecycle events.
type agentListener struct {
	a *Agent
}

func (l agentListener) OnStatusChange(from, to conn.Status) {}

func (l agentListener) OnConnect() {
	l.a.startAnnounce()
}

func (l agentListener) OnDisconnect() {
	l.a.stopAnnounce()
}

func (l agentListener) OnConfigModeStart() {
	l.a.stopAnnounce()
}

func (l agentListener) OnConfigModeEnd() {}

// multiListener fans lifecycle events out to several listeners in order.
type multiListener []conn.Listener

func (m multiListener) OnStatusChange(from, to conn.Status) {
	for _, l := range m {
		l.OnStatusChange(from, to)
	}
}

func (m multiListener) OnConnect() {
	for _, l := range m {
		l.OnConnect()
	}
}

func (m multiListener) OnDisconnect() {
	for _, l := range m {
		l.OnDisconnect()
	}
}

func (m multiListener) OnConfigModeStart() {
	for _, l := range m {
		l.OnConfigModeStart()
	}
}

func (m multiListener) OnConfigModeEnd() {
	for _, l := range m {
		l.OnConfigModeEnd()
	}
}
