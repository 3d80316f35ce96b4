package config

import (
	"fmt"

	"github.com/muurk/picoprov/internal/storage"
)

// AgentConfig is the host-side agent configuration file. It controls the
// setup portal identity and transport; the provisioned WiFi credentials
// themselves live in the binary credential store, never here.
type AgentConfig struct {
	Version  int              `yaml:"version"`
	Device   *DeviceSettings  `yaml:"device,omitempty"`
	Portal   *PortalSettings  `yaml:"portal,omitempty"`
	Storage  *StorageSettings `yaml:"storage,omitempty"`
	LogLevel string           `yaml:"log_level,omitempty"` // debug, info, warn, error
}

// DeviceSettings identifies the device and its setup access point.
type DeviceSettings struct {
	Name       string `yaml:"name"`                  // Setup AP SSID
	APPassword string `yaml:"ap_password,omitempty"` // Empty means an open AP
	Hostname   string `yaml:"hostname,omitempty"`    // Network hostname
}

// PortalSettings controls the configuration portal transport.
type PortalSettings struct {
	ListenAddr     string `yaml:"listen_addr"`       // HTTP listen address
	TimeoutSeconds int    `yaml:"timeout_seconds"`   // Portal timeout, 0 disables
	Announce       bool   `yaml:"announce"`          // Advertise via mDNS
}

// StorageSettings locates the binary credential store.
type StorageSettings struct {
	Path     string `yaml:"path,omitempty"`     // Empty means the default location
	Capacity int    `yaml:"capacity,omitempty"` // Medium size in bytes, 0 means default
}

// NewAgentConfig creates a config populated with defaults.
func NewAgentConfig() *AgentConfig {
	return &AgentConfig{
		Version: 1,
		Device: &DeviceSettings{
			Name:     "PicoProv-Setup",
			Hostname: "pico2w",
		},
		Portal: &PortalSettings{
			ListenAddr:     ":8080",
			TimeoutSeconds: 300,
			Announce:       true,
		},
		Storage:  &StorageSettings{},
		LogLevel: "info",
	}
}

// normalize fills in nil sections and empty fields with defaults so callers
// never have to nil-check.
func (c *AgentConfig) normalize() {
	defaults := NewAgentConfig()
	if c.Device == nil {
		c.Device = defaults.Device
	}
	if c.Portal == nil {
		c.Portal = defaults.Portal
	}
	if c.Storage == nil {
		c.Storage = defaults.Storage
	}
	if c.Device.Name == "" {
		c.Device.Name = defaults.Device.Name
	}
	if c.Device.Hostname == "" {
		c.Device.Hostname = defaults.Device.Hostname
	}
	if c.Portal.ListenAddr == "" {
		c.Portal.ListenAddr = defaults.Portal.ListenAddr
	}
	if c.LogLevel == "" {
		c.LogLevel = defaults.LogLevel
	}
}

// Validate checks the configuration for values the agent cannot run with.
func (c *AgentConfig) Validate() error {
	if err := storage.ValidateSSID(c.Device.Name); err != nil {
		return fmt.Errorf("invalid device name: %w", err)
	}
	if err := storage.ValidateHostname(c.Device.Hostname); err != nil {
		return fmt.Errorf("invalid hostname: %w", err)
	}
	if err := storage.ValidatePassword(c.Device.APPassword); err != nil {
		return fmt.Errorf("invalid ap password: %w", err)
	}
	if c.Portal.TimeoutSeconds < 0 {
		return fmt.Errorf("portal timeout must not be negative: %d", c.Portal.TimeoutSeconds)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level: %q", c.LogLevel)
	}
	return nil
}
