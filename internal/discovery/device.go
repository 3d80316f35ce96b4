package discovery

import (
	"fmt"
	"time"
)

// Device represents a discovered PicoProv device on the network
type Device struct {
	// Instance is the mDNS instance name (the setup AP SSID, e.g. "PicoProv-Setup")
	Instance string

	// Hostname is the mDNS hostname (e.g., "pico2w.local.")
	Hostname string

	// IP is the IPv4 address (e.g., "192.168.4.1")
	IP string

	// Port is the portal HTTP port
	Port int

	// Metadata contains additional mDNS TXT record data
	// Common fields: "hostname=pico2w", "version=v1.0.0"
	Metadata map[string]string

	// DiscoveredAt is when the device was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the device
func (d *Device) String() string {
	return fmt.Sprintf("PicoProv Device %s (%s) at %s:%d", d.Instance, d.Hostname, d.IP, d.Port)
}

// BaseURL returns the HTTP base URL for the device's portal
func (d *Device) BaseURL() string {
	return fmt.Sprintf("http://%s:%d", d.IP, d.Port)
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (d *Device) GetMetadata(key string) string {
	if d.Metadata == nil {
		return ""
	}
	return d.Metadata[key]
}
