package discovery

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/grandcat/zeroconf"
)

const (
	// SetupServiceType is the mDNS service type a device advertises while its
	// setup portal is active.
	SetupServiceType = "_picoprov-setup._tcp"

	// AgentServiceType is the mDNS service type a device advertises once it
	// is connected to a network.
	AgentServiceType = "_picoprov._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// DefaultScanTimeout is the default timeout for device discovery
	DefaultScanTimeout = 10 * time.Second

	// DefaultPort is the fallback portal port when the advertisement omits one
	DefaultPort = 8080
)

// Scanner handles mDNS device discovery
type Scanner struct {
	// ServiceType is the mDNS service type to browse for
	ServiceType string

	// Timeout is the maximum time to wait for device discovery
	Timeout time.Duration
}

// NewScanner creates a scanner for devices in setup mode
func NewScanner() *Scanner {
	return &Scanner{
		ServiceType: SetupServiceType,
		Timeout:     DefaultScanTimeout,
	}
}

// ScanForDevices discovers all PicoProv devices on the local network
// Returns a list of discovered devices or an error
func (s *Scanner) ScanForDevices() ([]*Device, error) {
	return s.ScanForDevicesWithContext(context.Background())
}

// ScanForDevicesWithContext discovers devices with a custom context
func (s *Scanner) ScanForDevicesWithContext(ctx context.Context) ([]*Device, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	devices := make([]*Device, 0)

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	// Collect entries in a goroutine; Browse closes the channel when done.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for entry := range entries {
			device := s.parseServiceEntry(entry)
			if device != nil {
				devices = append(devices, device)
			}
		}
	}()

	if err := resolver.Browse(ctx, s.ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	<-ctx.Done()
	<-done

	return devices, nil
}

// WaitForDevice waits for a specific device by instance name
// Returns the device or an error if not found within timeout
func (s *Scanner) WaitForDevice(instance string) (*Device, error) {
	return s.WaitForDeviceWithContext(context.Background(), instance)
}

// WaitForDeviceWithContext waits for a specific device with a custom context
func (s *Scanner) WaitForDeviceWithContext(ctx context.Context, instance string) (*Device, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry)
	deviceChan := make(chan *Device, 1)

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	go func() {
		for entry := range entries {
			device := s.parseServiceEntry(entry)
			if device != nil && device.Instance == instance {
				deviceChan <- device
				cancel() // Found the device, cancel context
				return
			}
		}
	}()

	if err := resolver.Browse(ctx, s.ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	select {
	case device := <-deviceChan:
		return device, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("device %q not found within timeout", instance)
	}
}

// parseServiceEntry converts a zeroconf service entry to a Device
// Returns nil if the entry is unusable (no address)
func (s *Scanner) parseServiceEntry(entry *zeroconf.ServiceEntry) *Device {
	if entry.Instance == "" {
		return nil
	}

	// Get IP address (prefer IPv4)
	var ip string
	for _, addr := range entry.AddrIPv4 {
		ip = addr.String()
		break
	}

	// Fallback to IPv6 if no IPv4
	if ip == "" && len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}

	if ip == "" {
		return nil
	}

	port := entry.Port
	if port == 0 {
		port = DefaultPort
	}

	// Parse TXT records into metadata
	metadata := make(map[string]string)
	for _, txt := range entry.Text {
		// TXT records are in "key=value" format
		parts := strings.SplitN(txt, "=", 2)
		if len(parts) == 2 {
			metadata[parts[0]] = parts[1]
		} else {
			metadata[parts[0]] = ""
		}
	}

	return &Device{
		Instance:     entry.Instance,
		Hostname:     entry.HostName,
		IP:           ip,
		Port:         port,
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
}

// ScanForDevices is a convenience function to scan for setup-mode devices
// with a custom timeout
func ScanForDevices(timeout time.Duration) ([]*Device, error) {
	scanner := NewScanner()
	scanner.Timeout = timeout
	return scanner.ScanForDevices()
}

// ScanForConnectedDevices scans for devices already joined to the network
func ScanForConnectedDevices(timeout time.Duration) ([]*Device, error) {
	scanner := NewScanner()
	scanner.ServiceType = AgentServiceType
	scanner.Timeout = timeout
	return scanner.ScanForDevices()
}
