package discovery

import (
	"net"
	"testing"

	"github.com/grandcat/zeroconf"
)

func TestScannerParseServiceEntry(t *testing.T) {
	scanner := NewScanner()

	tests := []struct {
		name         string
		entry        *zeroconf.ServiceEntry
		wantNil      bool
		wantInstance string
		wantIP       string
		wantPort     int
	}{
		{
			name: "setup device with IPv4",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "PicoProv-Setup"},
				HostName:      "pico2w.local.",
				Port:          8080,
				AddrIPv4:      []net.IP{net.ParseIP("192.168.4.1")},
				Text:          []string{"hostname=pico2w", "version=v1.0.0"},
			},
			wantInstance: "PicoProv-Setup",
			wantIP:       "192.168.4.1",
			wantPort:     8080,
		},
		{
			name: "device with no port specified (should default)",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "Workshop-Setup"},
				HostName:      "pico2w.local.",
				Port:          0,
				AddrIPv4:      []net.IP{net.ParseIP("172.16.0.1")},
			},
			wantInstance: "Workshop-Setup",
			wantIP:       "172.16.0.1",
			wantPort:     DefaultPort,
		},
		{
			name: "IPv6 only device",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "PicoProv-Setup"},
				HostName:      "pico2w.local.",
				Port:          8080,
				AddrIPv6:      []net.IP{net.ParseIP("fe80::1")},
			},
			wantInstance: "PicoProv-Setup",
			wantIP:       "fe80::1",
			wantPort:     8080,
		},
		{
			name: "empty instance",
			entry: &zeroconf.ServiceEntry{
				HostName: "pico2w.local.",
				Port:     8080,
				AddrIPv4: []net.IP{net.ParseIP("192.168.4.1")},
			},
			wantNil: true,
		},
		{
			name: "no address at all",
			entry: &zeroconf.ServiceEntry{
				ServiceRecord: zeroconf.ServiceRecord{Instance: "PicoProv-Setup"},
				HostName:      "pico2w.local.",
				Port:          8080,
			},
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			device := scanner.parseServiceEntry(tt.entry)

			if tt.wantNil {
				if device != nil {
					t.Errorf("parseServiceEntry() = %+v, want nil", device)
				}
				return
			}

			if device == nil {
				t.Fatal("parseServiceEntry() = nil, want device")
			}
			if device.Instance != tt.wantInstance {
				t.Errorf("Instance = %q, want %q", device.Instance, tt.wantInstance)
			}
			if device.IP != tt.wantIP {
				t.Errorf("IP = %q, want %q", device.IP, tt.wantIP)
			}
			if device.Port != tt.wantPort {
				t.Errorf("Port = %d, want %d", device.Port, tt.wantPort)
			}
		})
	}
}

func TestParseServiceEntryMetadata(t *testing.T) {
	scanner := NewScanner()

	entry := &zeroconf.ServiceEntry{
		ServiceRecord: zeroconf.ServiceRecord{Instance: "PicoProv-Setup"},
		HostName:      "pico2w.local.",
		Port:          8080,
		AddrIPv4:      []net.IP{net.ParseIP("192.168.4.1")},
		Text:          []string{"hostname=pico2w", "version=v1.0.0", "flag"},
	}

	device := scanner.parseServiceEntry(entry)
	if device == nil {
		t.Fatal("parseServiceEntry() = nil")
	}

	if got := device.GetMetadata("hostname"); got != "pico2w" {
		t.Errorf("GetMetadata(hostname) = %q, want pico2w", got)
	}
	if got := device.GetMetadata("version"); got != "v1.0.0" {
		t.Errorf("GetMetadata(version) = %q, want v1.0.0", got)
	}
	// Key without value is stored with an empty value.
	if _, ok := device.Metadata["flag"]; !ok {
		t.Errorf("valueless TXT key not recorded")
	}
	if got := device.GetMetadata("missing"); got != "" {
		t.Errorf("GetMetadata(missing) = %q, want empty", got)
	}
}

func TestDeviceString(t *testing.T) {
	d := &Device{
		Instance: "PicoProv-Setup",
		Hostname: "pico2w.local.",
		IP:       "192.168.4.1",
		Port:     8080,
	}

	want := "PicoProv Device PicoProv-Setup (pico2w.local.) at 192.168.4.1:8080"
	if got := d.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	if got := d.BaseURL(); got != "http://192.168.4.1:8080" {
		t.Errorf("BaseURL() = %q", got)
	}
}
